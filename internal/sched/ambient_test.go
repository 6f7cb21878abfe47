package sched

import (
	"context"
	"errors"
	"testing"
	"time"
)

// Ambient-slot tests mutate process-wide state, so they are deliberately not
// parallel and restore the slot to empty before returning.

func TestCurrent_NoLoop(t *testing.T) {
	SetCurrent(nil)

	if _, err := Current(); !errors.Is(err, ErrNoLoop) {
		t.Fatalf("Current() with empty slot = %v, want ErrNoLoop", err)
	}
}

func TestSetCurrent_SaveRestore(t *testing.T) {
	defer SetCurrent(nil)

	prev := New()
	defer prev.Close() //nolint:errcheck
	next := New()
	defer next.Close() //nolint:errcheck

	SetCurrent(prev)

	// Save, install, restore: the exact previous instance must come back.
	saved, err := Current()
	if err != nil {
		t.Fatalf("Current() error: %v", err)
	}
	SetCurrent(next)

	if got, _ := Current(); got != next {
		t.Fatalf("Current() = %v, want the installed loop", got)
	}

	SetCurrent(saved)
	got, err := Current()
	if err != nil {
		t.Fatalf("Current() after restore error: %v", err)
	}
	if got != prev {
		t.Errorf("restored loop = %q, want %q", got.ID(), prev.ID())
	}
}

func TestLockAmbient_Exclusive(t *testing.T) {
	if err := LockAmbient(context.Background()); err != nil {
		t.Fatalf("LockAmbient() error: %v", err)
	}

	// A second acquisition must block until released.
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := LockAmbient(ctx); !errors.Is(err, context.DeadlineExceeded) {
		if err == nil {
			UnlockAmbient()
		}
		t.Fatalf("second LockAmbient() = %v, want deadline exceeded", err)
	}

	UnlockAmbient()

	if err := LockAmbient(context.Background()); err != nil {
		t.Fatalf("LockAmbient() after release error: %v", err)
	}
	UnlockAmbient()
}

func TestFromContext(t *testing.T) {
	t.Parallel()

	l := New()
	defer l.Close() //nolint:errcheck

	if _, ok := FromContext(context.Background()); ok {
		t.Fatal("bare context should carry no loop")
	}

	ctx := NewContext(context.Background(), l)
	got, ok := FromContext(ctx)
	if !ok {
		t.Fatal("context should carry the attached loop")
	}
	if got != l {
		t.Errorf("FromContext() = %q, want %q", got.ID(), l.ID())
	}
}
