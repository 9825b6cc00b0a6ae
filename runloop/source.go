package runloop

import (
	"fmt"
)

// EventSource is an external event source integrated into a [RunLoop], such
// as a platform's native input queue. The loop polls every source on each
// scheduler pass, and sources signal new events through the loop's wake
// primitive, so a loop blocked with nothing queued still notices them.
type EventSource interface {
	// Start is called on the loop's thread when Run starts (or when the
	// source is added to a running loop). wake is safe to call from any
	// goroutine, at any time.
	Start(wake func()) error

	// Drain dispatches pending events, on the loop's thread, reporting
	// whether any were handled.
	Drain() bool

	// Stop is called on the loop's thread when Run returns, or the source is
	// removed from a running loop. It must not block on events still to be
	// delivered. A stopped source may be started again by a later Run.
	Stop()
}

// AddSource registers src with the loop. It must be called on the loop's
// thread; if the loop is running, src is started immediately.
func (l *RunLoop) AddSource(src EventSource) error {
	if src == nil {
		return fmt.Errorf("runloop: nil event source")
	}
	if !l.IsCurrent() {
		return l.diag.invariant(fmt.Errorf("add source: %w", ErrWrongThread), `add source`)
	}
	l.mu.Lock()
	if l.state.load() == StateDestroyed {
		l.mu.Unlock()
		return ErrLoopDestroyed
	}
	l.sources = append(l.sources, src)
	w := l.waker
	l.mu.Unlock()
	if w != nil {
		if err := src.Start(w.wake); err != nil {
			l.removeSource(src)
			return fmt.Errorf("runloop: start event source: %w", err)
		}
	}
	return nil
}

// RemoveSource deregisters and, if the loop is running, stops src. It must
// be called on the loop's thread.
func (l *RunLoop) RemoveSource(src EventSource) bool {
	if !l.IsCurrent() {
		_ = l.diag.invariant(fmt.Errorf("remove source: %w", ErrWrongThread), `remove source`)
		return false
	}
	if !l.removeSource(src) {
		return false
	}
	if l.Running() {
		l.diag.safeCall(`source stop`, src.Stop)
	}
	return true
}

func (l *RunLoop) removeSource(src EventSource) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i, v := range l.sources {
		if v == src {
			l.sources = append(l.sources[:i:i], l.sources[i+1:]...)
			return true
		}
	}
	return false
}

// startSources starts every registered source, deregistering any that fail.
func (l *RunLoop) startSources(wake func()) {
	l.mu.Lock()
	sources := append([]EventSource(nil), l.sources...)
	l.mu.Unlock()
	for _, src := range sources {
		var err error
		if l.diag.safeCall(`source start`, func() { err = src.Start(wake) }) {
			err = fmt.Errorf("runloop: event source panicked on start")
		}
		if err != nil {
			l.removeSource(src)
			l.thread.proc.opts.logger.Err().
				Err(err).
				Str(`thread`, l.thread.name).
				Log(`event source failed to start`)
		}
	}
}

// stopSources stops every registered source, which are all started while
// the loop is running.
func (l *RunLoop) stopSources() {
	l.mu.Lock()
	sources := append([]EventSource(nil), l.sources...)
	l.mu.Unlock()
	for _, src := range sources {
		l.diag.safeCall(`source stop`, src.Stop)
	}
}

// drainSources polls every registered source once.
func (l *RunLoop) drainSources() (drained bool) {
	l.mu.Lock()
	if len(l.sources) == 0 {
		l.mu.Unlock()
		return false
	}
	sources := append([]EventSource(nil), l.sources...)
	l.mu.Unlock()
	for _, src := range sources {
		var ok bool
		l.diag.safeCall(`source drain`, func() { ok = src.Drain() })
		drained = drained || ok
	}
	return drained
}
