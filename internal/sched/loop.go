package sched

import (
	"sync"

	"github.com/google/uuid"
)

// Loop is a single-threaded cooperative run-to-completion driver.
// One Loop is created per test case and closed unconditionally after it,
// regardless of the test outcome. A Loop is owned by the test case that
// created it and must not be shared across concurrent test cases.
type Loop struct {
	id string

	// mu protects closed, running, ready and gens. Loop methods are not
	// meant for concurrent use, but the flags keep misuse (re-entrant
	// RunUntilComplete, Close from a finalizer racing a run) detectable
	// instead of deadlocking the channel handoff.
	mu      sync.Mutex
	closed  bool
	running bool
	ready   []*Task
	gens    []*Gen
}

// New creates a fresh, open event loop.
func New() *Loop {
	l := &Loop{id: uuid.NewString()}
	Logger().Debug("event loop created", "loop_id", l.id)
	return l
}

// ID returns a unique identifier for this loop.
func (l *Loop) ID() string {
	return l.id
}

// RunUntilComplete drives fn and every task it spawns until fn itself
// completes, then returns fn's error. Spawned tasks that are still suspended
// when fn completes stay parked in the ready queue; they are resumed by the
// next RunUntilComplete call or unwound by Close.
//
// There is no deadline: a task that never finishes its suspended work blocks
// RunUntilComplete indefinitely.
//
// Returns ErrLoopClosed on a closed loop and ErrLoopBusy when called from
// inside a task already running on this loop.
func (l *Loop) RunUntilComplete(fn TaskFunc) error {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return ErrLoopClosed
	}
	if l.running {
		l.mu.Unlock()
		return ErrLoopBusy
	}
	l.running = true
	l.mu.Unlock()

	defer func() {
		l.mu.Lock()
		l.running = false
		l.mu.Unlock()
	}()

	root := l.newTask(fn)
	l.push(root)

	// Round-robin over the ready queue. A suspended task goes back to the
	// tail, so the queue cannot drain before the root task completes.
	for !root.done {
		t := l.pop()
		t.step(resumeRun)
		if !t.done {
			l.push(t)
		}
	}
	return root.err
}

// Close shuts the loop down. Parked tasks and unfinished generators are
// unwound (their goroutines exit without running further user code), after
// which submitting work returns ErrLoopClosed. Close is idempotent: closing
// an already closed loop returns nil.
//
// Returns ErrLoopBusy if the loop is currently driving work.
func (l *Loop) Close() error {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return nil
	}
	if l.running {
		l.mu.Unlock()
		return ErrLoopBusy
	}
	l.closed = true
	pending := l.ready
	l.ready = nil
	gens := l.gens
	l.gens = nil
	l.mu.Unlock()

	for _, t := range pending {
		t.step(resumeCancel)
	}
	for _, g := range gens {
		g.cancel()
	}

	Logger().Debug("event loop closed", "loop_id", l.id,
		"canceled_tasks", len(pending), "canceled_generators", len(gens))
	return nil
}

// Closed reports whether Close has been called.
func (l *Loop) Closed() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.closed
}

func (l *Loop) push(t *Task) {
	l.mu.Lock()
	l.ready = append(l.ready, t)
	l.mu.Unlock()
}

func (l *Loop) pop() *Task {
	l.mu.Lock()
	defer l.mu.Unlock()
	t := l.ready[0]
	l.ready = l.ready[1:]
	return t
}
