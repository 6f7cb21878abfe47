package looptest

import (
	"context"
	"fmt"
	"slices"

	"github.com/looptest/looptest/internal/sched"
)

// PropertyRunner is the boundary contract for third-party randomized-input
// ("property-based") integrations. The harness never generates inputs itself:
// the integration calls the inner test repeatedly with generated arguments
// and reports the combined result.
type PropertyRunner interface {
	RunProperty(args Args) error
}

// InnerTestOverrider is the hook a property-based integration must expose
// for asyncio-marked items: the harness replaces the inner test with a
// synchronous adapter that drives asynchronous inner calls on a private
// loop. Integrations lacking this hook cannot host asynchronous inner tests
// and fail the item at setup.
type InnerTestOverrider interface {
	// InnerTest returns the current per-example test callable.
	InnerTest() any

	// SetInnerTest replaces the per-example test callable.
	SetInnerTest(fn any)
}

// setupItem is the per-test setup hook, run before fixture resolution.
//
// First, every marker in the marker-to-fixture table that the item carries
// gets its loop fixture injected into the item's requested fixture names, so
// the loop exists even when the test never declared it. Second, an
// asyncio-marked property item has its inner test rewrapped through
// wrapInSync — or, when the integration exposes no override hook, the item
// fails here with a diagnostic, before the body runs.
func (s *Suite) setupItem(item *Item) error {
	for marker, fixture := range s.cfg.MarkerFixtures {
		if item.HasKeyword(marker) && !slices.Contains(item.fixtureNames, fixture) {
			item.fixtureNames = append(item.fixtureNames, fixture)
		}
	}

	if !item.HasKeyword(MarkerAsyncIO) || item.property == nil {
		return nil
	}
	overrider, ok := item.property.(InnerTestOverrider)
	if !ok {
		return fmt.Errorf("item %q combines the %q marker with integration %T: %w",
			item.name, MarkerAsyncIO, item.property, ErrIncompatibleProperty)
	}
	overrider.SetInnerTest(wrapInSync(overrider.InnerTest()))
	return nil
}

// wrapInSync returns a synchronous adapter around a possibly-asynchronous
// inner test. Each call opens a fresh loop, drives the inner call to
// completion on it, and closes the loop — scoped acquisition with guaranteed
// release even when the inner call fails.
func wrapInSync(inner any) TestFunc {
	return func(args Args) error {
		loop := sched.New()
		defer func() {
			if cerr := loop.Close(); cerr != nil {
				sched.Logger().Warn("close property-test loop", "loop_id", loop.ID(), "error", cerr)
			}
		}()

		switch fn := inner.(type) {
		case AsyncTestFunc:
			return loop.RunUntilComplete(func(task *Task) error { return fn(task, args) })
		case func(*Task, Args) error:
			return loop.RunUntilComplete(func(task *Task) error { return fn(task, args) })
		case CtxTestFunc:
			return driveCtxTest(loop, fn, args)
		case func(context.Context, Args) error:
			return driveCtxTest(loop, fn, args)
		case TestFunc:
			return fn(args)
		case func(Args) error:
			return fn(args)
		default:
			return fmt.Errorf("property inner test %T: %w", inner, ErrUnknownShape)
		}
	}
}
