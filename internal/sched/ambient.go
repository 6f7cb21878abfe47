package sched

import (
	"context"
	"sync"

	"golang.org/x/sync/semaphore"
)

// The ambient slot is the process-wide "current event loop for this test"
// reference. It exists so code with no direct handle on the loop (helpers
// deep inside a fixture, legacy context-style callables) can discover it.
//
// Discipline: only the event_loop lifecycle fixture writes the slot, exactly
// once per marked test, saving the previous value and restoring it through a
// registered finalizer. The weight-1 gate serializes marked tests running in
// parallel go-test subtests so one test's install/restore pair never
// interleaves with another's.
var (
	ambientMu   sync.Mutex
	ambientLoop *Loop

	ambientGate = semaphore.NewWeighted(1)
)

// Current returns the ambient loop. Returns ErrNoLoop when no loop is
// installed; callers that treat "none set" as a valid prior state must check
// for it with errors.Is and propagate anything else.
func Current() (*Loop, error) {
	ambientMu.Lock()
	defer ambientMu.Unlock()
	if ambientLoop == nil {
		return nil, ErrNoLoop
	}
	return ambientLoop, nil
}

// SetCurrent installs l as the ambient loop. A nil l clears the slot, making
// subsequent Current calls return ErrNoLoop again.
func SetCurrent(l *Loop) {
	ambientMu.Lock()
	ambientLoop = l
	ambientMu.Unlock()
}

// LockAmbient acquires exclusive ownership of the ambient slot, blocking
// until the previous owner releases it or ctx expires.
func LockAmbient(ctx context.Context) error {
	return ambientGate.Acquire(ctx, 1)
}

// UnlockAmbient releases ownership acquired with LockAmbient.
func UnlockAmbient() {
	ambientGate.Release(1)
}
