package runloop

import (
	"sync"
	"sync/atomic"
	"time"
)

// KeepLoop is a keep-alive guard issued by [RunLoop.KeepAlive]. While any
// guard is outstanding its loop does not idle-shutdown. Tasks posted through
// the guard are tagged with its group, so they can be cancelled together.
//
// A guard outlives its loop safely: once the loop is destroyed, every method
// is a no-op.
type KeepLoop struct {
	loop         atomic.Pointer[RunLoop]
	diag         *diagnostics
	releasedCh   chan struct{}
	name         string
	group        uint64
	releaseOnce  sync.Once
	cleanRelease bool
}

// KeepAlive registers a new guard on the loop. If cleanOnRelease is set,
// releasing the guard cancels every task still queued through it.
//
// On a destroyed loop KeepAlive returns a detached guard.
func (l *RunLoop) KeepAlive(name string, cleanOnRelease bool) *KeepLoop {
	k := &KeepLoop{
		name:         name,
		cleanRelease: cleanOnRelease,
		releasedCh:   make(chan struct{}),
		diag:         l.diag,
	}
	l.mu.Lock()
	if l.state.load() == StateDestroyed {
		l.mu.Unlock()
		l.diag.benign(`keep-destroyed`).Str(`guard`, name).Log(`keep alive on destroyed loop`)
		return k
	}
	l.nextGroup++
	k.group = l.nextGroup
	k.loop.Store(l)
	l.keeps[k.group] = k
	w := l.waker
	l.mu.Unlock()
	if w != nil {
		// leave any idle countdown
		w.wake()
	}
	return k
}

// Name returns the name the guard was registered with.
func (k *KeepLoop) Name() string { return k.name }

// Loop returns the guarded loop, or nil once released or detached.
func (k *KeepLoop) Loop() *RunLoop { return k.loop.Load() }

// Post is [RunLoop.Post], tagging the task with the guard's group. It
// returns 0 once the guard is released, or its loop gone.
func (k *KeepLoop) Post(fn func(), delay time.Duration) TaskID {
	l := k.loop.Load()
	if l == nil {
		k.refused()
		return 0
	}
	return l.post(fn, delay, k.group)
}

// PostSync is [RunLoop.PostSync], tagging the task with the guard's group.
// A caller blocked waiting is released (returning false) if the guard is
// released first.
func (k *KeepLoop) PostSync(fn func()) bool {
	l := k.loop.Load()
	if l == nil {
		k.refused()
		return false
	}
	return l.postSync(fn, k.group, k.releasedCh)
}

// Cancel is [RunLoop.Cancel].
func (k *KeepLoop) Cancel(id TaskID) bool {
	if l := k.loop.Load(); l != nil {
		return l.Cancel(id)
	}
	return false
}

// Pending returns the number of tasks queued through the guard.
func (k *KeepLoop) Pending() int {
	l := k.loop.Load()
	if l == nil {
		return 0
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.queue.groupLen(k.group)
}

// Release deregisters the guard, first cancelling its queued tasks if it was
// created with cleanOnRelease. If no other guards or work remain, the loop
// is woken so it can re-evaluate idle shutdown. Release is idempotent.
func (k *KeepLoop) Release() {
	k.releaseOnce.Do(func() {
		close(k.releasedCh)
		l := k.loop.Swap(nil)
		if l == nil {
			return
		}
		l.releaseKeep(k)
	})
}

func (k *KeepLoop) refused() {
	k.diag.benign(`keep-detached`).Str(`guard`, k.name).Log(`post refused, guard released or loop gone`)
}

// detach severs the guard from a destroyed loop.
func (k *KeepLoop) detach(l *RunLoop) {
	k.loop.CompareAndSwap(l, nil)
}

func (l *RunLoop) releaseKeep(k *KeepLoop) {
	l.mu.Lock()
	var cancelled int
	if k.cleanRelease {
		cancelled = l.queue.removeGroup(k.group)
	}
	delete(l.keeps, k.group)
	empty := len(l.keeps) == 0 && len(l.works) == 0
	w := l.waker
	l.mu.Unlock()

	if cancelled != 0 {
		l.thread.proc.opts.logger.Debug().
			Str(`guard`, k.name).
			Int(`cancelled`, cancelled).
			Log(`guard released, tasks cancelled`)
	}
	if empty && w != nil {
		w.wake()
	}
}
