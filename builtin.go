package looptest

import (
	"context"
	"errors"
	"fmt"

	"github.com/looptest/looptest/internal/netutil"
	"github.com/looptest/looptest/internal/sched"
)

// PortFactory returns a new unused TCP port on each call, never repeating a
// port within the lifetime of the test that owns it.
type PortFactory func() (int, error)

// registerBuiltins installs the fixtures every suite provides. Registration
// cannot fail here: the descriptors are well-formed by construction.
func (s *Suite) registerBuiltins() {
	s.MustFixture(NewFixture(FixtureEventLoop, FixtureFunc(s.eventLoopFixture), FixtureRequest))
	s.MustFixture(NewFixture(FixtureUnusedTCPPort, FixtureFunc(unusedTCPPortFixture)))
	s.MustFixture(NewFixture(FixtureUnusedTCPPortFactory, FixtureFunc(s.portFactoryFixture), FixtureRequest))
}

// eventLoopFixture creates the per-test event loop and registers the
// finalizer that closes it unconditionally after the test.
//
// When the requesting item carries a marker that maps to this fixture, the
// new loop is additionally installed in the process-wide ambient slot: the
// previous value is read first (ErrNoLoop means "no prior loop" and restores
// to none; any other read failure is fatal), and a finalizer restores it
// after the test. The ambient ownership gate serializes marked tests running
// in parallel subtests.
func (s *Suite) eventLoopFixture(args Args) (any, error) {
	req, ok := args[FixtureRequest].(*Request)
	if !ok {
		return nil, fmt.Errorf("fixture %q: request argument missing", FixtureEventLoop)
	}

	loop := sched.New()
	req.AddFinalizer(loop.Close)

	if !s.marksLoopFixture(req, FixtureEventLoop) {
		return loop, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.AmbientLockTimeout)
	defer cancel()
	if err := sched.LockAmbient(ctx); err != nil {
		return nil, fmt.Errorf("acquire ambient loop slot: %w", err)
	}

	prev, err := sched.Current()
	if err != nil && !errors.Is(err, sched.ErrNoLoop) {
		sched.UnlockAmbient()
		return nil, fmt.Errorf("read previous ambient loop: %w", err)
	}

	sched.SetCurrent(loop)
	req.AddFinalizer(func() error {
		sched.SetCurrent(prev) // nil restores "none set"
		sched.UnlockAmbient()
		return nil
	})
	return loop, nil
}

// marksLoopFixture reports whether the requesting item carries any marker
// that the marker-to-fixture table maps to the named fixture.
func (s *Suite) marksLoopFixture(req *Request, fixture string) bool {
	for marker, mapped := range s.cfg.MarkerFixtures {
		if mapped == fixture && req.HasKeyword(marker) {
			return true
		}
	}
	return false
}

// unusedTCPPortFixture resolves to one kernel-assigned TCP port. No
// uniqueness guarantee across separate requests.
func unusedTCPPortFixture(Args) (any, error) {
	return netutil.EphemeralPort()
}

// portFactoryFixture resolves to a PortFactory whose issued set lives and
// dies with the requesting test. With a configured lease directory the
// factory also holds cross-process leases, released by the finalizer.
func (s *Suite) portFactoryFixture(args Args) (any, error) {
	req, ok := args[FixtureRequest].(*Request)
	if !ok {
		return nil, fmt.Errorf("fixture %q: request argument missing", FixtureUnusedTCPPortFactory)
	}

	factory := netutil.NewFactory(s.cfg.PortLeaseDir, sched.Logger())
	req.AddFinalizer(factory.Close)
	return PortFactory(factory.Next), nil
}
