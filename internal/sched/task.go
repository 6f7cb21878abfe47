package sched

import "fmt"

// TaskFunc is the body of a cooperative unit of work.
type TaskFunc func(t *Task) error

type resumeMode int

const (
	resumeRun resumeMode = iota
	resumeCancel
)

// canceled is the panic payload used to unwind a parked task when its loop
// closes. It never escapes the task goroutine.
type canceled struct{}

// Task is one cooperatively scheduled unit of work. The task body runs on its
// own goroutine, but control is handed back and forth with the loop over
// unbuffered channels so that only one side executes at a time.
type Task struct {
	loop    *Loop
	resume  chan resumeMode
	suspend chan struct{}

	// done and err are written by the task goroutine before its final
	// handoff on suspend, and read by the loop after receiving it.
	done bool
	err  error
}

// newTask starts the task goroutine parked at its first resume point.
func (l *Loop) newTask(fn TaskFunc) *Task {
	t := &Task{
		loop:    l,
		resume:  make(chan resumeMode),
		suspend: make(chan struct{}),
	}
	go func() {
		defer func() {
			if r := recover(); r != nil {
				if _, ok := r.(canceled); !ok {
					t.err = fmt.Errorf("task panicked: %v", r)
				}
			}
			t.done = true
			t.suspend <- struct{}{}
		}()
		if <-t.resume == resumeCancel {
			panic(canceled{})
		}
		t.err = fn(t)
	}()
	return t
}

// step resumes the task once and waits for it to suspend or finish.
// Called only by the loop.
func (t *Task) step(mode resumeMode) {
	t.resume <- mode
	<-t.suspend
}

// Yield suspends the task and hands control back to the loop. The task is
// resumed after every other ready task has had a turn.
func (t *Task) Yield() {
	t.suspend <- struct{}{}
	if <-t.resume == resumeCancel {
		panic(canceled{})
	}
}

// Spawn schedules fn as a sibling task on the same loop. The new task starts
// running at the loop's next scheduling turn. Its error, if any, is reported
// through the returned task's Err after it completes; the root task's result
// is unaffected.
func (t *Task) Spawn(fn TaskFunc) *Task {
	child := t.loop.newTask(fn)
	t.loop.push(child)
	return child
}

// Done reports whether the task body has completed.
func (t *Task) Done() bool {
	return t.done
}

// Err returns the task body's error. Meaningful only after Done reports true.
func (t *Task) Err() error {
	return t.err
}
