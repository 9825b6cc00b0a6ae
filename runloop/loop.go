package runloop

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

// taskBudget bounds the number of tasks run per scheduler pass, before the
// loop re-polls its event sources.
const taskBudget = 1024

// RunLoop is a single-threaded cooperative scheduler, bound to one [Thread].
//
// Any goroutine may post tasks, cancel them, or request keep-alive guards and
// work. Tasks only ever run on the owning thread, inside [RunLoop.Run], in
// due-time order with ties broken by insertion order.
//
// Thread Safety:
// RunLoop is safe for concurrent use. The queue, guard set and work set are
// guarded by a per-loop mutex, which is always released before callbacks run.
type RunLoop struct {
	thread    *Thread
	diag      *diagnostics
	queue     *taskQueue
	keeps     map[uint64]*KeepLoop
	works     map[WorkID]*work
	waker     waker
	sources   []EventSource
	executed  atomic.Uint64
	state     loopState
	mu        sync.Mutex
	nextGroup uint64
	nextWork  WorkID
	stopReq   bool
}

func newRunLoop(t *Thread) *RunLoop {
	return &RunLoop{
		thread: t,
		diag:   t.proc.diag,
		queue:  newTaskQueue(),
		keeps:  make(map[uint64]*KeepLoop),
		works:  make(map[WorkID]*work),
	}
}

// Thread returns the owning thread.
func (l *RunLoop) Thread() *Thread { return l.thread }

// Process returns the owning process.
func (l *RunLoop) Process() *Process { return l.thread.proc }

// State returns the loop's lifecycle state.
func (l *RunLoop) State() LoopState { return l.state.load() }

// Running reports whether the loop is inside Run.
func (l *RunLoop) Running() bool { return l.state.running() }

// IsCurrent reports whether the calling goroutine is the owning thread.
func (l *RunLoop) IsCurrent() bool { return l.thread.IsCurrent() }

// Post schedules fn to run on the loop after delay, returning its id. The
// loop is always woken, so a blocked Run notices the task without waiting
// out its current timeout.
//
// Post returns 0, without scheduling fn, if the owning thread has been
// aborted or the loop destroyed.
func (l *RunLoop) Post(fn func(), delay time.Duration) TaskID {
	return l.post(fn, delay, 0)
}

func (l *RunLoop) post(fn func(), delay time.Duration, group uint64) TaskID {
	if fn == nil {
		return 0
	}
	if l.thread.Aborted() {
		l.diag.benign(`post-aborted`).Str(`thread`, l.thread.name).Log(`post refused, thread aborted`)
		return 0
	}
	if delay < 0 {
		delay = 0
	}
	l.mu.Lock()
	if l.state.load() == StateDestroyed {
		l.mu.Unlock()
		l.diag.benign(`post-destroyed`).Str(`thread`, l.thread.name).Log(`post refused, loop destroyed`)
		return 0
	}
	id := l.queue.push(fn, time.Now().Add(delay), group)
	w := l.waker
	l.mu.Unlock()
	if w != nil {
		w.wake()
	}
	return id
}

// Cancel removes a queued task. It returns false if the task has already
// run, is running, or was never queued, which callers must tolerate.
func (l *RunLoop) Cancel(id TaskID) bool {
	l.mu.Lock()
	ok := l.queue.remove(id)
	l.mu.Unlock()
	if !ok {
		l.diag.benign(`cancel-missed`).Uint64(`task`, uint64(id)).Log(`cancel missed, task not queued`)
	}
	return ok
}

// PostSync runs fn on the loop, blocking until it has completed.
//
// Called on the owning thread, fn runs inline, immediately, ahead of any
// queued task. Called from another goroutine, fn is queued behind every task
// already due, and the caller blocks until it has run. PostSync returns
// false if fn could not be run: the thread was aborted (before or while
// waiting) or the loop destroyed.
//
// Two loops calling PostSync on each other at the same time deadlock.
func (l *RunLoop) PostSync(fn func()) bool {
	return l.postSync(fn, 0, nil)
}

func (l *RunLoop) postSync(fn func(), group uint64, released <-chan struct{}) bool {
	if fn == nil {
		return false
	}
	if l.IsCurrent() {
		if l.thread.Aborted() {
			l.diag.benign(`post-aborted`).Str(`thread`, l.thread.name).Log(`post sync refused, thread aborted`)
			return false
		}
		l.diag.safeCall(`post sync`, fn)
		return true
	}
	done := make(chan struct{})
	id := l.post(func() {
		defer close(done)
		fn()
	}, 0, group)
	if id == 0 {
		return false
	}
	select {
	case <-done:
		return true
	case <-l.thread.abortCh:
	case <-released:
	}
	// the task may have started before the abort was observed
	if !l.Cancel(id) {
		select {
		case <-done:
			return true
		default:
		}
	}
	return false
}

// Stop makes a running Run return once the current task completes. Queued
// tasks are retained for a subsequent Run.
func (l *RunLoop) Stop() {
	l.mu.Lock()
	if !l.state.running() {
		l.mu.Unlock()
		return
	}
	l.stopReq = true
	w := l.waker
	l.mu.Unlock()
	if w != nil {
		w.wake()
	}
}

// Run executes the scheduler on the calling goroutine, which must be the
// owning thread, until one of:
//
//   - Stop is called, or the thread is aborted
//   - ctx is done
//   - the loop is idle (no queued tasks, guards or work) for idleTimeout
//
// An idleTimeout of 0 returns as soon as the loop is idle; a negative
// idleTimeout disables idle shutdown.
//
// Calling Run while the loop is already running is a programming error.
func (l *RunLoop) Run(ctx context.Context, idleTimeout time.Duration) error {
	if !l.IsCurrent() {
		return l.diag.invariant(ErrWrongThread, `run`)
	}
	if l.thread.Aborted() {
		return ErrThreadAborted
	}
	if !l.state.tryTransition(StateNotRunning, StateRunning) {
		if l.state.load() == StateDestroyed {
			return ErrLoopDestroyed
		}
		return l.diag.invariant(ErrLoopAlreadyRunning, `reentrant run`)
	}

	w, err := newWaker()
	if err != nil {
		l.state.store(StateNotRunning)
		return fmt.Errorf("runloop: create waker: %w", err)
	}

	l.mu.Lock()
	l.waker = w
	l.mu.Unlock()

	l.startSources(w.wake)

	stopAfter := context.AfterFunc(ctx, l.Stop)

	defer func() {
		stopAfter()
		l.stopSources()
		l.mu.Lock()
		l.waker = nil
		l.stopReq = false
		l.state.store(StateNotRunning)
		l.mu.Unlock()
		_ = w.close()
	}()

	var idleSince time.Time
	for {
		drained := l.drainSources()
		ran := l.runDue()

		wait, idle, stop := l.schedule()
		switch {
		case stop:
			if err := ctx.Err(); err != nil {
				return err
			}
			if l.thread.Aborted() {
				return ErrThreadAborted
			}
			return nil
		case drained || ran != 0 || !idle:
			if !idleSince.IsZero() {
				idleSince = time.Time{}
				l.state.tryTransition(StateDraining, StateRunning)
			}
			if drained || ran != 0 {
				// re-check sources and the queue before blocking
				continue
			}
		case idleTimeout == 0:
			return nil
		case idleTimeout > 0:
			now := time.Now()
			if idleSince.IsZero() {
				idleSince = now
				l.state.tryTransition(StateRunning, StateDraining)
			}
			remaining := idleTimeout - now.Sub(idleSince)
			if remaining <= 0 {
				l.thread.proc.opts.logger.Debug().
					Str(`thread`, l.thread.name).
					Dur(`idle`, idleTimeout).
					Log(`loop idle timeout`)
				return nil
			}
			if wait < 0 || wait > remaining {
				wait = remaining
			}
		}

		w.wait(wait)
	}
}

// schedule computes the next wait: -1 for indefinitely, otherwise the time
// until the earliest task is due. idle reports whether the queue, guard set
// and work set are all empty.
func (l *RunLoop) schedule() (wait time.Duration, idle, stop bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.stopReq || l.thread.Aborted() {
		return 0, false, true
	}
	wait = -1
	if due, ok := l.queue.next(); ok {
		wait = max(time.Until(due), 0)
	}
	idle = l.queue.len() == 0 && len(l.keeps) == 0 && len(l.works) == 0
	return wait, idle, false
}

// runDue runs up to taskBudget due tasks, one at a time, releasing the lock
// around each.
func (l *RunLoop) runDue() (ran int) {
	for ran < taskBudget {
		l.mu.Lock()
		if l.stopReq {
			l.mu.Unlock()
			return ran
		}
		t := l.queue.popDue(time.Now())
		l.mu.Unlock()
		if t == nil {
			return ran
		}
		l.diag.safeCall(``, t.fn)
		l.executed.Add(1)
		ran++
	}
	return ran
}

// Destroy tears the loop down. It must not be running. Any queued tasks are
// dropped, guards are detached (their operations become no-ops), and work is
// cancelled without redelivery; if there were any, they are logged, and
// reported as [ErrLoopOutstanding]. The owning thread may create a new loop
// afterwards.
func (l *RunLoop) Destroy() error {
	l.mu.Lock()
	switch {
	case l.state.load() == StateDestroyed:
		l.mu.Unlock()
		return nil
	case l.state.running():
		l.mu.Unlock()
		return l.diag.invariant(fmt.Errorf("destroy: %w", ErrLoopAlreadyRunning), `destroy running loop`)
	}
	l.state.store(StateDestroyed)
	tasks, keeps, works := l.queue.len(), len(l.keeps), len(l.works)
	l.queue = newTaskQueue()
	detached := make([]*KeepLoop, 0, len(l.keeps))
	for _, k := range l.keeps {
		detached = append(detached, k)
	}
	l.keeps = make(map[uint64]*KeepLoop)
	cancelled := make([]*work, 0, len(l.works))
	for _, w := range l.works {
		cancelled = append(cancelled, w)
	}
	l.works = make(map[WorkID]*work)
	l.sources = nil
	l.mu.Unlock()

	for _, k := range detached {
		k.detach(l)
	}
	for _, w := range cancelled {
		w.cancel()
	}

	l.thread.loopDestroyed(l)

	if tasks+keeps+works == 0 {
		return nil
	}
	err := fmt.Errorf("%w: tasks=%d guards=%d work=%d", ErrLoopOutstanding, tasks, keeps, works)
	l.thread.proc.opts.logger.Warning().
		Err(err).
		Str(`thread`, l.thread.name).
		Log(`loop destroyed with outstanding items`)
	return err
}

// LoopStats is a point-in-time snapshot of a loop.
type LoopStats struct {
	State    string `json:"state"`
	Queued   int    `json:"queued"`
	Guards   int    `json:"guards"`
	Work     int    `json:"work"`
	Sources  int    `json:"sources"`
	Executed uint64 `json:"executed"`
}

// Stats returns a snapshot of the loop's bookkeeping.
func (l *RunLoop) Stats() LoopStats {
	l.mu.Lock()
	defer l.mu.Unlock()
	return LoopStats{
		State:    l.state.load().String(),
		Queued:   l.queue.len(),
		Guards:   len(l.keeps),
		Work:     len(l.works),
		Sources:  len(l.sources),
		Executed: l.executed.Load(),
	}
}

// wakeIfRunning wakes a blocked Run, e.g. so it re-evaluates idleness.
func (l *RunLoop) wakeIfRunning() {
	l.mu.Lock()
	w := l.waker
	l.mu.Unlock()
	if w != nil {
		w.wake()
	}
}
