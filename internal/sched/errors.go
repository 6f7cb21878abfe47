package sched

import "github.com/looptest/looptest/internal/sentinel"

// Sentinel errors for error inspection with errors.Is.
const (
	// ErrNoLoop is returned by Current when no ambient loop is installed.
	// Callers that treat "no prior loop" as a valid state must check for
	// this error specifically; any other failure is a programming error.
	ErrNoLoop = sentinel.Error("sched: no ambient event loop is set")

	// ErrLoopClosed is returned when work is submitted to a closed loop.
	ErrLoopClosed = sentinel.Error("sched: event loop is closed")

	// ErrLoopBusy is returned when RunUntilComplete or Close is called
	// while the loop is already driving work. A loop is single-threaded;
	// re-entering it from inside a task would deadlock the handoff.
	ErrLoopBusy = sentinel.Error("sched: event loop is already running")

	// ErrGenFinished is returned by Gen.Resume after the generator body
	// has completed.
	ErrGenFinished = sentinel.Error("sched: generator already finished")
)
