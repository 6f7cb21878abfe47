package looptest

import (
	"errors"
	"testing"
)

// Request is the per-test context handle. It gives fixtures access to the
// current item's keyword set, finalizer registration, and read access to
// already-resolved fixture values by name. A fixture receives it by declaring
// the "request" parameter (or through splicing, for generator fixtures).
type Request struct {
	t    testing.TB
	item *Item

	// values memoizes resolved fixture values so each fixture is invoked
	// at most once per requesting test.
	values map[string]any

	// finalizers run in reverse registration order after the test.
	finalizers []func() error
}

func newRequest(t testing.TB, item *Item) *Request {
	return &Request{
		t:      t,
		item:   item,
		values: make(map[string]any),
	}
}

// Item returns the test item this request belongs to.
func (r *Request) Item() *Item {
	return r.item
}

// HasKeyword reports whether the item's keyword set contains name.
func (r *Request) HasKeyword(name string) bool {
	return r.item.HasKeyword(name)
}

// AddFinalizer registers f to run after the test, in reverse registration
// order. Finalizers run regardless of the test outcome.
func (r *Request) AddFinalizer(f func() error) {
	r.finalizers = append(r.finalizers, f)
}

// Fixture returns the already-resolved value of the named fixture.
func (r *Request) Fixture(name string) (any, bool) {
	v, ok := r.values[name]
	return v, ok
}

// finalize runs all registered finalizers in reverse order. Every finalizer
// runs even when an earlier one fails; the errors are joined.
func (r *Request) finalize() error {
	var errs []error
	for i := len(r.finalizers) - 1; i >= 0; i-- {
		if err := r.finalizers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	r.finalizers = nil
	return errors.Join(errs...)
}
