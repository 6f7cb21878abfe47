package sched

import "fmt"

// GenFunc is the body of a resumable generator. It must call y.Yield exactly
// once: everything before the yield is setup, everything after is teardown.
type GenFunc func(y *Yielder) error

// Yielder is handed to a generator body to publish its single value.
type Yielder struct {
	g *Gen
}

// Yield hands v to the consumer and parks the generator until the next Resume.
func (y *Yielder) Yield(v any) {
	y.g.out <- genEvent{value: v, yielded: true}
	if <-y.g.resume == resumeCancel {
		panic(canceled{})
	}
}

// genEvent is one handoff from the generator goroutine to its consumer:
// either a yielded value or the completion of the body.
type genEvent struct {
	value   any
	yielded bool
	err     error
}

// Gen is a generator following the two-phase state machine
// Created -> Yielded -> Finished. Resuming past a yield when the body yields
// again is the caller's contract violation to detect: Resume simply reports
// yielded=true a second time.
type Gen struct {
	loop     *Loop
	fn       GenFunc
	started  bool
	finished bool
	resume   chan resumeMode
	out      chan genEvent
}

// NewGen creates a generator owned by this loop. The body does not start
// until the first Resume. The loop tracks the generator so Close can unwind
// it if it is never driven to completion.
func (l *Loop) NewGen(fn GenFunc) *Gen {
	g := &Gen{
		loop:   l,
		fn:     fn,
		resume: make(chan resumeMode),
		out:    make(chan genEvent),
	}
	l.mu.Lock()
	l.gens = append(l.gens, g)
	l.mu.Unlock()
	return g
}

// Resume drives the generator to its next suspension point. It returns the
// yielded value with yielded=true when the body suspended at a Yield, and
// yielded=false with the body's error when it ran to completion.
//
// Returns ErrLoopClosed on a closed loop and ErrGenFinished when the body has
// already completed.
func (g *Gen) Resume() (value any, yielded bool, err error) {
	if g.loop.Closed() {
		return nil, false, ErrLoopClosed
	}
	if g.finished {
		return nil, false, ErrGenFinished
	}

	if !g.started {
		g.started = true
		go func() {
			var runErr error
			defer func() {
				if r := recover(); r != nil {
					if _, ok := r.(canceled); !ok {
						runErr = fmt.Errorf("generator panicked: %v", r)
					}
				}
				g.out <- genEvent{err: runErr}
			}()
			if <-g.resume == resumeCancel {
				panic(canceled{})
			}
			runErr = g.fn(&Yielder{g: g})
		}()
	}

	g.resume <- resumeRun
	ev := <-g.out
	if !ev.yielded {
		g.finished = true
	}
	return ev.value, ev.yielded, ev.err
}

// cancel unwinds a started, unfinished generator so its goroutine exits.
// Called by Loop.Close with the generator parked at a yield (or at its
// initial resume point if it was never started, in which case there is no
// goroutine to unwind).
func (g *Gen) cancel() {
	if !g.started || g.finished {
		return
	}
	g.resume <- resumeCancel
	<-g.out
	g.finished = true
}
