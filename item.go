package looptest

import (
	"fmt"
	"slices"
	"strings"
)

// Item is a collected test callable plus its keyword set. Created once at
// collection time, consumed once by Suite.Run, not reused across runs.
type Item struct {
	name     string
	fn       any
	params   []string
	keywords map[string]struct{}
	kind     Kind

	// property is the attached property-based integration, nil for
	// ordinary items. When set, the integration (not the harness) calls
	// the inner test repeatedly with generated inputs.
	property any

	// fixtureNames is the full set of fixtures the item will request,
	// starting as a copy of params and possibly extended at setup time.
	fixtureNames []string
}

// ItemOption configures an Item during collection.
type ItemOption func(*Item)

// WithParams declares the fixture names the test body receives as arguments.
func WithParams(names ...string) ItemOption {
	return func(it *Item) {
		it.params = append(it.params, names...)
	}
}

// WithKeywords attaches explicit marker keywords, in addition to any the
// classifier attaches.
func WithKeywords(names ...string) ItemOption {
	return func(it *Item) {
		for _, name := range names {
			it.keywords[name] = struct{}{}
		}
	}
}

// WithProperty attaches a property-based integration to the item. The
// integration should implement PropertyRunner; for asyncio-marked items it
// must also implement InnerTestOverrider or the item fails at setup.
func WithProperty(p any) ItemOption {
	return func(it *Item) {
		it.property = p
	}
}

// Collect runs the collection hook on a candidate callable. It returns
// (nil, nil) when name does not pass the suite's name filter — the candidate
// is not a test. Otherwise the callable is classified, asynchronous callables
// get the asyncio marker keyword, and a fully-formed item is returned.
//
// fn may be nil only when WithProperty attaches an integration, in which case
// the asyncio marker must be set explicitly via WithKeywords if the inner
// test is asynchronous.
func (s *Suite) Collect(name string, fn any, opts ...ItemOption) (*Item, error) {
	if !strings.HasPrefix(name, s.cfg.NamePrefix) {
		return nil, nil
	}

	it := &Item{
		name:     name,
		fn:       fn,
		keywords: make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(it)
	}

	if fn == nil && it.property == nil {
		return nil, fmt.Errorf("collect %q: nil callable without a property integration", name)
	}
	if fn != nil {
		kind, ok := Classify(fn)
		if !ok {
			return nil, fmt.Errorf("collect %q (%T): %w", name, fn, ErrUnknownShape)
		}
		it.kind = kind
		if kind != KindPlain {
			it.keywords[MarkerAsyncIO] = struct{}{}
		}
	}

	it.fixtureNames = slices.Clone(it.params)
	return it, nil
}

// Name returns the item's collected name.
func (it *Item) Name() string {
	return it.name
}

// HasKeyword reports whether the item's keyword set contains name.
func (it *Item) HasKeyword(name string) bool {
	_, ok := it.keywords[name]
	return ok
}

// Keywords returns a sorted copy of the item's keyword set.
func (it *Item) Keywords() []string {
	out := make([]string, 0, len(it.keywords))
	for k := range it.keywords {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}

// FixtureNames returns a copy of the fixture names the item will request.
func (it *Item) FixtureNames() []string {
	return slices.Clone(it.fixtureNames)
}
