package looptest

import (
	"context"

	"github.com/looptest/looptest/internal/sched"
)

// Args carries resolved fixture values into a test or fixture body, keyed by
// the declared parameter name.
type Args map[string]any

// Aliases for the scheduler types appearing in user-written callables.
// Aliases (not named types) so the underlying methods are part of the public
// API without redeclaring them here.
type (
	// Loop is the per-test cooperative event loop.
	Loop = sched.Loop

	// Task is one cooperatively scheduled unit of work; async bodies
	// receive it to Yield and Spawn.
	Task = sched.Task

	// Yielder is handed to async generator fixtures to publish their
	// single value.
	Yielder = sched.Yielder
)

// Accepted fixture function shapes.
type (
	// FixtureFunc is a plain synchronous fixture body.
	FixtureFunc func(args Args) (any, error)

	// AsyncFixtureFunc is a single-shot asynchronous fixture body, driven
	// to completion on the test's loop; its result becomes the fixture
	// value.
	AsyncFixtureFunc func(task *Task, args Args) (any, error)

	// CtxFixtureFunc is the context-style asynchronous fixture shape kept
	// for callables predating the task-based one. The context carries the
	// test's loop (see LoopFromContext).
	CtxFixtureFunc func(ctx context.Context, args Args) (any, error)

	// AsyncGenFixtureFunc is a generator-style fixture body. It must call
	// y.Yield exactly once: the yielded value is the fixture value, and
	// the code after the yield is the teardown half.
	AsyncGenFixtureFunc func(y *Yielder, args Args) error
)

// Accepted test function shapes.
type (
	// TestFunc is a plain synchronous test body.
	TestFunc func(args Args) error

	// AsyncTestFunc is an asynchronous test body, driven to completion on
	// the test's loop.
	AsyncTestFunc func(task *Task, args Args) error

	// CtxTestFunc is the context-style asynchronous test shape.
	CtxTestFunc func(ctx context.Context, args Args) error
)

// Kind is the classified shape of a callable, computed once at registration
// or collection time and consumed thereafter.
type Kind int

const (
	// KindPlain is a synchronous callable.
	KindPlain Kind = iota

	// KindCoroutine is a task-based asynchronous callable producing one
	// final result.
	KindCoroutine

	// KindContextCoroutine is the context-style asynchronous callable
	// shape.
	KindContextCoroutine

	// KindAsyncGenerator is a generator-style callable constrained to a
	// single yield.
	KindAsyncGenerator
)

// String returns the kind name (implements [fmt.Stringer]).
func (k Kind) String() string {
	switch k {
	case KindPlain:
		return "plain"
	case KindCoroutine:
		return "coroutine"
	case KindContextCoroutine:
		return "context-coroutine"
	case KindAsyncGenerator:
		return "async-generator"
	default:
		return "unknown"
	}
}

// Classify reports the shape of fn. ok is false when fn matches none of the
// accepted fixture or test shapes. Pure: no side effects, safe on any value.
//
// Both the named shape types and their underlying unnamed function types are
// recognized, so callers may pass either.
func Classify(fn any) (kind Kind, ok bool) {
	switch fn.(type) {
	case FixtureFunc, func(Args) (any, error),
		TestFunc, func(Args) error:
		return KindPlain, true
	case AsyncFixtureFunc, func(*Task, Args) (any, error),
		AsyncTestFunc, func(*Task, Args) error:
		return KindCoroutine, true
	case CtxFixtureFunc, func(context.Context, Args) (any, error),
		CtxTestFunc, func(context.Context, Args) error:
		return KindContextCoroutine, true
	case AsyncGenFixtureFunc, func(*Yielder, Args) error:
		return KindAsyncGenerator, true
	default:
		return KindPlain, false
	}
}

// IsAsync reports whether fn is a recognized asynchronous callable: one whose
// body runs as a suspended computation on a loop, or a generator-style
// callable producing an asynchronous generator.
func IsAsync(fn any) bool {
	kind, ok := Classify(fn)
	return ok && kind != KindPlain
}

// CurrentLoop returns the process-wide ambient loop: the loop of the marked
// test currently running. Returns ErrNoLoop when none is installed.
func CurrentLoop() (*Loop, error) {
	return sched.Current()
}

// LoopFromContext returns the loop attached to a context handed to a
// context-style callable.
func LoopFromContext(ctx context.Context) (*Loop, bool) {
	return sched.FromContext(ctx)
}
