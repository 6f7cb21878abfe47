package looptest

import (
	"github.com/looptest/looptest/internal/sched"
	"github.com/looptest/looptest/internal/sentinel"
)

// Sentinel errors for error inspection with errors.Is.
// These are immutable constants safe for use in wrapped error chain comparison.
const (
	// ErrNoLoop is returned by CurrentLoop when no ambient loop is
	// installed. The event_loop lifecycle treats it as "no prior loop";
	// any other failure reading the slot propagates.
	ErrNoLoop = sched.ErrNoLoop

	// ErrLoopClosed is returned when work is submitted to a closed loop.
	ErrLoopClosed = sched.ErrLoopClosed

	// ErrLoopBusy is returned when a loop is re-entered while already
	// driving work.
	ErrLoopBusy = sched.ErrLoopBusy

	// ErrFixtureYieldedTwice reports an async generator fixture that
	// yielded a second value during teardown instead of completing.
	ErrFixtureYieldedTwice = sentinel.Error("looptest: async generator fixture yielded more than once; yield exactly once")

	// ErrFixtureNeverYielded reports an async generator fixture that
	// completed during setup without yielding a value.
	ErrFixtureNeverYielded = sentinel.Error("looptest: async generator fixture finished without yielding")

	// ErrIncompatibleProperty reports an asyncio-marked item combined with
	// a property-based integration that does not expose an overridable
	// inner test. The item fails at setup, before the body runs.
	ErrIncompatibleProperty = sentinel.Error("looptest: property-based integration does not expose an overridable inner test")

	// ErrUnknownShape reports a callable that matches none of the accepted
	// fixture or test function shapes.
	ErrUnknownShape = sentinel.Error("looptest: callable shape not recognized")

	// ErrUnknownFixture is returned when resolution reaches a fixture name
	// that was never registered.
	ErrUnknownFixture = sentinel.Error("looptest: fixture not registered")

	// ErrDuplicateFixture is returned by Suite.Fixture for an already
	// registered name.
	ErrDuplicateFixture = sentinel.Error("looptest: fixture already registered")
)
