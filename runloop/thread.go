package runloop

import (
	"sync"
	"sync/atomic"
	"time"
)

// Thread is a registered worker: a goroutine started by [Process.Spawn]
// (locked to its OS thread), or an adopted goroutine. It owns at most one
// [RunLoop] at a time.
type Thread struct {
	proc      *Process
	loop      *RunLoop
	wakeCh    chan struct{}
	abortCh   chan struct{}
	done      chan struct{}
	name      string
	onEnd     []func(t *Thread)
	abortOnce sync.Once
	endOnce   sync.Once
	mu        sync.Mutex
	id        ThreadID
	goid      atomic.Uint64
	aborted   atomic.Bool
	ended     bool
	adopted   bool
}

func newThread(p *Process, id ThreadID, name string, adopted bool) *Thread {
	return &Thread{
		proc:    p,
		id:      id,
		name:    name,
		adopted: adopted,
		wakeCh:  make(chan struct{}, 1),
		abortCh: make(chan struct{}),
		done:    make(chan struct{}),
	}
}

// ID returns the thread's id.
func (t *Thread) ID() ThreadID { return t.id }

// Name returns the name the thread was spawned with.
func (t *Thread) Name() string { return t.name }

// Process returns the owning process.
func (t *Thread) Process() *Process { return t.proc }

// Adopted reports whether the thread was adopted rather than spawned.
func (t *Thread) Adopted() bool { return t.adopted }

// Aborted reports whether the thread has been aborted, or has ended.
func (t *Thread) Aborted() bool { return t.aborted.Load() }

// Aborting is closed when the thread is aborted.
func (t *Thread) Aborting() <-chan struct{} { return t.abortCh }

// Done is closed once the thread has ended and its end listeners have run.
func (t *Thread) Done() <-chan struct{} { return t.done }

// IsCurrent reports whether the calling goroutine is this thread.
func (t *Thread) IsCurrent() bool {
	goid := t.goid.Load()
	return goid != 0 && goid == getGoroutineID()
}

// Loop returns the thread's loop. Called on the thread itself, it creates
// the loop on first use, and always returns the same loop until that loop is
// destroyed. Called from elsewhere it returns the existing loop, or nil.
func (t *Thread) Loop() *RunLoop {
	if !t.IsCurrent() {
		return t.existingLoop()
	}
	t.mu.Lock()
	if t.loop != nil || t.ended {
		l := t.loop
		t.mu.Unlock()
		return l
	}
	l := newRunLoop(t)
	t.loop = l
	t.mu.Unlock()
	t.proc.loopCreated(l)
	return l
}

func (t *Thread) existingLoop() *RunLoop {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.loop
}

func (t *Thread) loopDestroyed(l *RunLoop) {
	t.mu.Lock()
	if t.loop == l {
		t.loop = nil
	}
	t.mu.Unlock()
	t.proc.loopDestroyed(l)
}

// Sleep blocks the calling goroutine for d, returning early (false) if the
// thread is aborted.
func (t *Thread) Sleep(d time.Duration) bool {
	if t.Aborted() {
		return false
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-t.abortCh:
		return false
	}
}

// Pause blocks the calling goroutine until [Thread.Resume], abort, or until
// timeout elapses (a timeout <= 0 waits indefinitely). It returns false if
// the thread was aborted. Must be called by the thread itself.
func (t *Thread) Pause(timeout time.Duration) bool {
	if t.Aborted() {
		return false
	}
	var timeoutCh <-chan time.Time
	if timeout > 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		timeoutCh = timer.C
	}
	select {
	case <-t.wakeCh:
		return !t.Aborted()
	case <-t.abortCh:
		return false
	case <-timeoutCh:
		return true
	}
}

// Resume wakes the thread from Pause. A resume delivered while the thread is
// not paused is kept, and consumed by the next Pause.
func (t *Thread) Resume() {
	select {
	case t.wakeCh <- struct{}{}:
	default:
	}
}

// Abort marks the thread aborted, so its loop refuses further work, stops
// the loop, and wakes the thread from Pause or Sleep. The goroutine itself is
// not interrupted, it is up to exec to observe the abort.
func (t *Thread) Abort() {
	t.aborted.Store(true)
	t.abortOnce.Do(func() { close(t.abortCh) })
	if l := t.existingLoop(); l != nil {
		l.Stop()
	}
	t.Resume()
}

// OnEnd registers fn to be called once the thread ends, on the ending
// goroutine. It returns false if the thread has already ended.
func (t *Thread) OnEnd(fn func(t *Thread)) bool {
	if fn == nil {
		return false
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.ended {
		return false
	}
	t.onEnd = append(t.onEnd, fn)
	return true
}

// Detach ends an adopted thread, running the same teardown as a spawned
// thread whose exec returned. It must be called by the thread itself, and is
// a no-op for spawned threads.
func (t *Thread) Detach() {
	if !t.adopted || !t.IsCurrent() {
		return
	}
	t.end()
}

func (t *Thread) join(timeout time.Duration) error {
	if timeout <= 0 {
		<-t.done
		return nil
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-t.done:
		return nil
	case <-timer.C:
		return ErrJoinTimeout
	}
}

// end tears the thread down: marks it aborted, destroys its loop, runs end
// listeners, unregisters it, and releases joiners.
func (t *Thread) end() {
	t.endOnce.Do(func() {
		t.aborted.Store(true)
		t.abortOnce.Do(func() { close(t.abortCh) })

		t.mu.Lock()
		t.ended = true
		l := t.loop
		listeners := t.onEnd
		t.onEnd = nil
		t.mu.Unlock()

		if l != nil {
			if l.Running() {
				_ = t.proc.diag.invariant(ErrLoopAlreadyRunning, `thread ended with its loop running`)
			}
			if err := l.Destroy(); err != nil {
				t.proc.opts.logger.Warning().
					Err(err).
					Uint64(`thread`, uint64(t.id)).
					Str(`name`, t.name).
					Log(`thread ended with outstanding loop work`)
			}
		}

		for _, fn := range listeners {
			t.proc.diag.safeCall(`thread end listener`, func() { fn(t) })
		}

		t.proc.unregister(t)
		close(t.done)

		t.proc.opts.logger.Debug().
			Uint64(`thread`, uint64(t.id)).
			Str(`name`, t.name).
			Log(`thread ended`)
	})
}
