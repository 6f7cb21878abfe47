package sched

import (
	"errors"
	"strings"
	"testing"
)

func TestLoop_RunUntilComplete(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		fn      TaskFunc
		wantErr string
	}{
		"plain completion": {
			fn: func(_ *Task) error { return nil },
		},
		"error propagates unchanged": {
			fn: func(_ *Task) error { return errors.New("boom") },
			wantErr: "boom",
		},
		"yield then complete": {
			fn: func(task *Task) error {
				task.Yield()
				task.Yield()
				return nil
			},
		},
		"panic converted to error": {
			fn:      func(_ *Task) error { panic("kaput") },
			wantErr: "task panicked: kaput",
		},
	}

	for name, tc := range tests {
		tc := tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			l := New()
			defer func() {
				if err := l.Close(); err != nil {
					t.Errorf("Close() error: %v", err)
				}
			}()

			err := l.RunUntilComplete(tc.fn)
			if tc.wantErr == "" {
				if err != nil {
					t.Fatalf("RunUntilComplete() error: %v", err)
				}
				return
			}
			if err == nil || err.Error() != tc.wantErr {
				t.Fatalf("RunUntilComplete() error = %v, want %q", err, tc.wantErr)
			}
		})
	}
}

func TestLoop_SpawnInterleaving(t *testing.T) {
	t.Parallel()

	l := New()
	defer l.Close() //nolint:errcheck // Close error checked in dedicated tests.

	// The root task and a spawned sibling alternate through yields; the
	// recorded order proves FIFO round-robin scheduling.
	var order []string
	err := l.RunUntilComplete(func(task *Task) error {
		task.Spawn(func(child *Task) error {
			order = append(order, "child-1")
			child.Yield()
			order = append(order, "child-2")
			return nil
		})
		order = append(order, "root-1")
		task.Yield()
		order = append(order, "root-2")
		task.Yield()
		order = append(order, "root-3")
		return nil
	})
	if err != nil {
		t.Fatalf("RunUntilComplete() error: %v", err)
	}

	want := "root-1,child-1,root-2,child-2,root-3"
	if got := strings.Join(order, ","); got != want {
		t.Errorf("scheduling order = %q, want %q", got, want)
	}
}

func TestLoop_SpawnedTaskError(t *testing.T) {
	t.Parallel()

	l := New()
	defer l.Close() //nolint:errcheck

	var child *Task
	err := l.RunUntilComplete(func(task *Task) error {
		child = task.Spawn(func(_ *Task) error { return errors.New("child failed") })
		task.Yield() // give the child a turn
		return nil
	})
	if err != nil {
		t.Fatalf("root error: %v", err)
	}
	if !child.Done() {
		t.Fatal("child should have completed before the root finished yielding")
	}
	if child.Err() == nil || child.Err().Error() != "child failed" {
		t.Errorf("child.Err() = %v, want %q", child.Err(), "child failed")
	}
}

func TestLoop_CloseCancelsParkedTasks(t *testing.T) {
	t.Parallel()

	l := New()

	// The spawned task yields forever; after the root completes it stays
	// parked in the ready queue. Close must unwind it (TestMain's leak
	// check proves the goroutine exits) without running more of its body.
	resumed := 0
	err := l.RunUntilComplete(func(task *Task) error {
		task.Spawn(func(child *Task) error {
			for {
				resumed++
				child.Yield()
			}
		})
		task.Yield()
		return nil
	})
	if err != nil {
		t.Fatalf("RunUntilComplete() error: %v", err)
	}

	before := resumed
	if err := l.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}
	if resumed != before {
		t.Errorf("parked task body ran during Close: %d extra resumes", resumed-before)
	}
}

func TestLoop_Closed(t *testing.T) {
	t.Parallel()

	l := New()
	if l.Closed() {
		t.Fatal("new loop should not report closed")
	}
	if err := l.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}
	if !l.Closed() {
		t.Fatal("loop should report closed after Close")
	}

	// Idempotent: a second Close is a no-op.
	if err := l.Close(); err != nil {
		t.Fatalf("second Close() error: %v", err)
	}

	if err := l.RunUntilComplete(func(_ *Task) error { return nil }); !errors.Is(err, ErrLoopClosed) {
		t.Errorf("RunUntilComplete on closed loop = %v, want ErrLoopClosed", err)
	}
}

func TestLoop_ReentrantRunRejected(t *testing.T) {
	t.Parallel()

	l := New()
	defer l.Close() //nolint:errcheck

	var inner error
	err := l.RunUntilComplete(func(_ *Task) error {
		inner = l.RunUntilComplete(func(_ *Task) error { return nil })
		return nil
	})
	if err != nil {
		t.Fatalf("outer RunUntilComplete() error: %v", err)
	}
	if !errors.Is(inner, ErrLoopBusy) {
		t.Errorf("re-entrant RunUntilComplete = %v, want ErrLoopBusy", inner)
	}
}

func TestLoop_ID(t *testing.T) {
	t.Parallel()

	a, b := New(), New()
	defer a.Close() //nolint:errcheck
	defer b.Close() //nolint:errcheck

	if a.ID() == "" {
		t.Fatal("loop ID should not be empty")
	}
	if a.ID() == b.ID() {
		t.Errorf("distinct loops share ID %q", a.ID())
	}
}
