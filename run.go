package looptest

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/looptest/looptest/internal/journal"
	"github.com/looptest/looptest/internal/sched"
)

// Run executes one collected item through the full pipeline: per-item setup,
// fixture resolution, invocation (direct call or async bridge), then
// finalization in reverse registration order. Failures are reported through
// t; when a journal is configured the outcome and duration are recorded.
func (s *Suite) Run(t *testing.T, item *Item) {
	t.Helper()

	start := time.Now()
	err := s.runItem(t, item)
	s.recordOutcome(item.name, err, time.Since(start))
	if err != nil {
		t.Fatalf("%s: %v", item.name, err)
	}
}

// runItem is the pipeline body, separated from Run so the outcome can be
// observed before the test is failed.
func (s *Suite) runItem(t testing.TB, item *Item) (err error) {
	if err := s.setupItem(item); err != nil {
		return err
	}

	req := newRequest(t, item)
	defer func() {
		// Finalizers run regardless of the body's outcome; their
		// failures join the body's error rather than masking it.
		if ferr := req.finalize(); ferr != nil {
			err = errors.Join(err, ferr)
		}
	}()

	for _, name := range item.fixtureNames {
		if _, rerr := s.resolveFixture(req, name, nil); rerr != nil {
			return rerr
		}
	}

	handled, err := s.callItem(item, req)
	if err != nil || handled {
		return err
	}
	return s.callSync(item, req)
}

// resolveFixture resolves the named fixture for this request, memoizing the
// value so each fixture is invoked at most once per test. stack carries the
// resolution path for cycle detection.
func (s *Suite) resolveFixture(req *Request, name string, stack []string) (any, error) {
	if v, ok := req.values[name]; ok {
		return v, nil
	}
	if name == FixtureRequest {
		req.values[name] = req
		return req, nil
	}
	if slices.Contains(stack, name) {
		return nil, fmt.Errorf("fixture dependency cycle: %s -> %s", strings.Join(stack, " -> "), name)
	}

	def, ok := s.lookupFixture(name)
	if !ok {
		return nil, fmt.Errorf("fixture %q: %w", name, ErrUnknownFixture)
	}

	stack = append(stack, name)
	args := make(Args, len(def.params))
	for _, p := range def.params {
		v, err := s.resolveFixture(req, p, stack)
		if err != nil {
			return nil, err
		}
		args[p] = v
	}

	v, err := def.resolve(args)
	if err != nil {
		return nil, err
	}
	req.values[name] = v
	return v, nil
}

// callItem is the test invocation bridge. For an item carrying a marker from
// the marker-to-fixture table (and no property integration), it looks up the
// loop among the already-resolved fixture values, builds the argument set
// strictly from the item's declared fixture names, and drives the body to
// completion on that loop as a single unit of work. handled=true means the
// synchronous invocation path must be skipped.
func (s *Suite) callItem(item *Item, req *Request) (handled bool, err error) {
	for marker, fixtureName := range s.cfg.MarkerFixtures {
		if !item.HasKeyword(marker) || item.property != nil {
			continue
		}

		loopAny, ok := req.Fixture(fixtureName)
		if !ok {
			return false, fmt.Errorf("item %q: loop fixture %q was not resolved", item.name, fixtureName)
		}
		loop, ok := loopAny.(*Loop)
		if !ok {
			return false, fmt.Errorf("item %q: fixture %q resolved to %T, not a loop", item.name, fixtureName, loopAny)
		}

		args := s.itemArgs(item, req)
		switch fn := item.fn.(type) {
		case AsyncTestFunc:
			return true, loop.RunUntilComplete(func(task *Task) error { return fn(task, args) })
		case func(*Task, Args) error:
			return true, loop.RunUntilComplete(func(task *Task) error { return fn(task, args) })
		case CtxTestFunc:
			return true, driveCtxTest(loop, fn, args)
		case func(context.Context, Args) error:
			return true, driveCtxTest(loop, fn, args)
		default:
			// Explicitly marked but synchronous callable: fall
			// through to the direct call.
			return false, nil
		}
	}
	return false, nil
}

// callSync is the normal synchronous invocation path.
func (s *Suite) callSync(item *Item, req *Request) error {
	args := s.itemArgs(item, req)

	if item.property != nil {
		pr, ok := item.property.(PropertyRunner)
		if !ok {
			return fmt.Errorf("item %q: property integration %T does not implement PropertyRunner", item.name, item.property)
		}
		return pr.RunProperty(args)
	}

	switch fn := item.fn.(type) {
	case TestFunc:
		return fn(args)
	case func(Args) error:
		return fn(args)
	default:
		return fmt.Errorf("item %q: cannot invoke %T synchronously: %w", item.name, item.fn, ErrUnknownShape)
	}
}

// itemArgs builds the test argument set strictly from the item's declared
// fixture names — injected fixtures beyond the declared ones stay out.
func (s *Suite) itemArgs(item *Item, req *Request) Args {
	args := make(Args, len(item.params))
	for _, p := range item.params {
		args[p] = req.values[p]
	}
	return args
}

// driveCtxTest runs a context-style test body on the loop, attaching the
// loop to the context it receives.
func driveCtxTest(loop *Loop, fn func(context.Context, Args) error, args Args) error {
	return loop.RunUntilComplete(func(_ *Task) error {
		return fn(sched.NewContext(context.Background(), loop), args)
	})
}

// recordOutcome writes the item's result to the journal when one is
// configured. Journal problems are logged and never fail the test.
func (s *Suite) recordOutcome(name string, runErr error, d time.Duration) {
	j, err := s.ensureJournal()
	if err != nil {
		sched.Logger().Warn("run journal unavailable", "error", err)
		return
	}
	if j == nil {
		return
	}

	outcome := journal.OutcomePassed
	if runErr != nil {
		outcome = journal.OutcomeFailed
	}
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.JournalTimeout)
	defer cancel()
	if err := j.Record(ctx, name, outcome, d); err != nil {
		sched.Logger().Warn("record run outcome", "item", name, "error", err)
	}
}
