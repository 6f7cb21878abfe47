// Package sched implements the per-test cooperative scheduler used by looptest.
//
// A Loop is a single-threaded run-to-completion driver for suspended units of
// work. Each unit (a Task) runs on its own goroutine, but the loop and its
// tasks hand control back and forth over unbuffered channels, so at most one
// of them executes at any moment. A task suspends by calling Task.Yield and is
// resumed in FIFO order together with any tasks it spawned.
//
// A Gen is a resumable generator constrained to the two-resume protocol used
// for setup/teardown fixtures: the first Resume runs the body to its single
// Yield, the second runs it to completion. Gens are registered with their Loop
// so that Close can unwind a generator that was never finalized.
//
// Loops are owned by exactly one test case. Loop methods are not safe for
// concurrent use; the ambient-slot accessors (Current, SetCurrent) and the
// ownership gate (LockAmbient, UnlockAmbient) are.
package sched
