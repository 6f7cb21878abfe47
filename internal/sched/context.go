package sched

import "context"

// loopKey is the context key under which a Loop travels. Unexported struct
// key per the context package's guidance.
type loopKey struct{}

// NewContext returns a context carrying l. The bridge attaches the test's
// loop before driving context-style callables so they can reach it without
// going through the ambient slot.
func NewContext(parent context.Context, l *Loop) context.Context {
	return context.WithValue(parent, loopKey{}, l)
}

// FromContext returns the Loop attached to ctx, if any.
func FromContext(ctx context.Context) (*Loop, bool) {
	l, ok := ctx.Value(loopKey{}).(*Loop)
	return l, ok
}
