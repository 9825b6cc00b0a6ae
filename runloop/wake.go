package runloop

import (
	"time"
)

// waker is the native wait primitive a running loop blocks on between
// scheduler passes. Wake tokens are sticky: a wake delivered while the loop
// is not waiting makes the next wait return immediately.
type waker interface {
	// wake is safe to call from any goroutine, including after close.
	wake()
	// wait blocks until woken, or timeout elapses. A negative timeout waits
	// indefinitely, zero only consumes a pending token.
	wait(timeout time.Duration)
	close() error
}

// chanWaker is the portable waker, a single-slot channel.
type chanWaker struct {
	ch chan struct{}
}

func newChanWaker() *chanWaker {
	return &chanWaker{ch: make(chan struct{}, 1)}
}

func (w *chanWaker) wake() {
	select {
	case w.ch <- struct{}{}:
	default:
	}
}

func (w *chanWaker) wait(timeout time.Duration) {
	switch {
	case timeout < 0:
		<-w.ch
	case timeout == 0:
		select {
		case <-w.ch:
		default:
		}
	default:
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		select {
		case <-w.ch:
		case <-timer.C:
		}
	}
}

func (w *chanWaker) close() error { return nil }

// timeoutMillis converts a wait timeout to poll(2) milliseconds, rounding up
// so a sub-millisecond deadline does not spin.
func timeoutMillis(timeout time.Duration) int {
	if timeout < 0 {
		return -1
	}
	return int((timeout + time.Millisecond - 1) / time.Millisecond)
}
