package looptest

import (
	"context"
	"fmt"
	"slices"

	"github.com/looptest/looptest/internal/sched"
)

// FixtureDef describes one named setup/teardown unit: a name, the declared
// parameter names (fixtures it depends on), and the underlying function.
// Registration classifies the function once and, for asynchronous shapes,
// replaces the resolution step with an adapted wrapper so that dependents
// never need to know the fixture was asynchronous.
type FixtureDef struct {
	name   string
	params []string
	fn     any
	kind   Kind

	// resolve is the adapted resolution step installed at registration.
	// args holds the resolved values for params, in declared-name keys.
	resolve func(args Args) (any, error)

	// stripLoop and stripRequest record which spliced parameters are
	// synthetic and must be removed from the user function's arguments.
	stripLoop    bool
	stripRequest bool
}

// NewFixture creates a fixture descriptor. params are the names of the
// fixtures the function depends on; their resolved values arrive in the Args
// passed to fn. The descriptor is inert until registered with Suite.Fixture.
func NewFixture(name string, fn any, params ...string) *FixtureDef {
	return &FixtureDef{
		name:   name,
		params: slices.Clone(params),
		fn:     fn,
	}
}

// Name returns the fixture's registered name.
func (d *FixtureDef) Name() string {
	return d.name
}

// Params returns a copy of the declared parameter names, including any
// spliced synthetic ones after registration.
func (d *FixtureDef) Params() []string {
	return slices.Clone(d.params)
}

// Kind returns the classified shape of the underlying function. Meaningful
// only after registration.
func (d *FixtureDef) Kind() Kind {
	return d.kind
}

// wrap classifies the descriptor's function and installs the adapted
// resolution step. The classifier result decides the variant; the finer
// coroutine-vs-generator distinction is re-checked here rather than trusted
// from collection time.
func (s *Suite) wrap(def *FixtureDef) error {
	kind, ok := Classify(def.fn)
	if !ok {
		return fmt.Errorf("fixture %q (%T): %w", def.name, def.fn, ErrUnknownShape)
	}
	def.kind = kind

	switch kind {
	case KindAsyncGenerator:
		s.wrapAsyncGen(def)
	case KindCoroutine, KindContextCoroutine:
		s.wrapCoroutine(def)
	case KindPlain:
		fn := asFixtureFunc(def.fn)
		def.resolve = func(args Args) (any, error) {
			return fn(args)
		}
	}
	return nil
}

// wrapAsyncGen installs the generator-variant adapter: setup resumes the
// generator to its first yielded value, a finalizer resumes it a second time
// expecting completion. Both the loop and the request handle are spliced in
// when not declared.
func (s *Suite) wrapAsyncGen(def *FixtureDef) {
	fn := asAsyncGenFixtureFunc(def.fn)
	def.params, def.stripLoop = ensureParam(def.params, FixtureEventLoop)
	def.params, def.stripRequest = ensureParam(def.params, FixtureRequest)

	def.resolve = func(args Args) (any, error) {
		loop, req, err := splicedHandles(def, args)
		if err != nil {
			return nil, err
		}

		var synthetic []string
		if def.stripLoop {
			synthetic = append(synthetic, FixtureEventLoop)
		}
		if def.stripRequest {
			synthetic = append(synthetic, FixtureRequest)
		}
		clean := userArgs(args, synthetic...)

		gen := loop.NewGen(func(y *Yielder) error {
			return fn(y, clean)
		})

		value, yielded, err := gen.Resume()
		if err != nil {
			return nil, fmt.Errorf("fixture %q setup: %w", def.name, err)
		}
		if !yielded {
			return nil, fmt.Errorf("fixture %q: %w", def.name, ErrFixtureNeverYielded)
		}

		req.AddFinalizer(func() error {
			_, yielded, err := gen.Resume()
			if err != nil {
				return fmt.Errorf("fixture %q teardown: %w", def.name, err)
			}
			if yielded {
				return fmt.Errorf("fixture %q: %w", def.name, ErrFixtureYieldedTwice)
			}
			return nil
		})
		return value, nil
	}
}

// wrapCoroutine installs the coroutine-variant adapter: the body runs to
// completion on the loop and its result becomes the fixture value. No
// finalizer is implied by this variant. Only the loop is spliced; a fixture
// wanting the request handle declares it.
func (s *Suite) wrapCoroutine(def *FixtureDef) {
	var run func(loop *Loop, args Args) (any, error)
	switch fn := def.fn.(type) {
	case AsyncFixtureFunc:
		run = driveFixture(fn)
	case func(*Task, Args) (any, error):
		run = driveFixture(fn)
	case CtxFixtureFunc:
		run = driveCtxFixture(fn)
	case func(context.Context, Args) (any, error):
		run = driveCtxFixture(fn)
	default:
		// A coroutine-classified test shape registered as a fixture.
		def.resolve = func(Args) (any, error) {
			return nil, fmt.Errorf("fixture %q: %T is a test shape, not a fixture shape: %w", def.name, def.fn, ErrUnknownShape)
		}
		return
	}

	def.params, def.stripLoop = ensureParam(def.params, FixtureEventLoop)

	def.resolve = func(args Args) (any, error) {
		loop, err := splicedLoop(def, args)
		if err != nil {
			return nil, err
		}
		clean := args
		if def.stripLoop {
			clean = userArgs(args, FixtureEventLoop)
		}
		value, err := run(loop, clean)
		if err != nil {
			return nil, fmt.Errorf("fixture %q: %w", def.name, err)
		}
		return value, nil
	}
}

// driveFixture runs a task-based fixture body to completion on the loop.
func driveFixture(fn func(*Task, Args) (any, error)) func(*Loop, Args) (any, error) {
	return func(loop *Loop, args Args) (any, error) {
		var out any
		err := loop.RunUntilComplete(func(task *Task) error {
			v, err := fn(task, args)
			out = v
			return err
		})
		return out, err
	}
}

// driveCtxFixture runs a context-style fixture body on the loop, attaching
// the loop to the context it receives.
func driveCtxFixture(fn func(context.Context, Args) (any, error)) func(*Loop, Args) (any, error) {
	return func(loop *Loop, args Args) (any, error) {
		var out any
		err := loop.RunUntilComplete(func(_ *Task) error {
			v, err := fn(sched.NewContext(context.Background(), loop), args)
			out = v
			return err
		})
		return out, err
	}
}

// splicedLoop extracts the loop handle injected through the spliced
// event_loop parameter.
func splicedLoop(def *FixtureDef, args Args) (*Loop, error) {
	loop, ok := args[FixtureEventLoop].(*Loop)
	if !ok {
		return nil, fmt.Errorf("fixture %q: spliced %s argument missing or of wrong type", def.name, FixtureEventLoop)
	}
	return loop, nil
}

// splicedHandles extracts both the loop and the request handle.
func splicedHandles(def *FixtureDef, args Args) (*Loop, *Request, error) {
	loop, err := splicedLoop(def, args)
	if err != nil {
		return nil, nil, err
	}
	req, ok := args[FixtureRequest].(*Request)
	if !ok {
		return nil, nil, fmt.Errorf("fixture %q: spliced %s argument missing or of wrong type", def.name, FixtureRequest)
	}
	return loop, req, nil
}

// asFixtureFunc normalizes the two accepted plain shapes.
func asFixtureFunc(fn any) FixtureFunc {
	switch fn := fn.(type) {
	case FixtureFunc:
		return fn
	case func(Args) (any, error):
		return fn
	default:
		// Classified KindPlain but not a fixture shape: a plain test
		// shape registered as a fixture. Surface it at resolution.
		return func(Args) (any, error) {
			return nil, fmt.Errorf("%T is a test shape, not a fixture shape: %w", fn, ErrUnknownShape)
		}
	}
}

// asAsyncGenFixtureFunc normalizes the two accepted generator shapes.
func asAsyncGenFixtureFunc(fn any) AsyncGenFixtureFunc {
	switch fn := fn.(type) {
	case AsyncGenFixtureFunc:
		return fn
	case func(*Yielder, Args) error:
		return fn
	default:
		panic(fmt.Sprintf("looptest: internal error: %T classified as async generator", fn))
	}
}
