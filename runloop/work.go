package runloop

import (
	"context"

	"github.com/joeycumines/go-microbatch"
)

// WorkID identifies an offloaded work item. The zero value is never issued,
// and signals refused work.
type WorkID uint64

type work struct {
	ctx    context.Context
	cancel context.CancelFunc
	fn     func(ctx context.Context)
	done   func(canceled bool)
	name   string
	id     WorkID
}

// Work runs fn on the process's background pool, then schedules done back
// onto the loop, so owners never observe callbacks outside their own loop's
// thread. canceled reports whether the work was cancelled (via
// [RunLoop.CancelWork] or loop teardown) before, or while, fn ran. The loop
// does not idle-shutdown while work is outstanding.
//
// Work returns 0 if the owning thread has been aborted or the loop destroyed.
func (l *RunLoop) Work(fn func(ctx context.Context), done func(canceled bool), name string) WorkID {
	if fn == nil {
		return 0
	}
	if l.thread.Aborted() {
		l.diag.benign(`work-aborted`).Str(`work`, name).Log(`work refused, thread aborted`)
		return 0
	}
	ctx, cancel := context.WithCancel(context.Background())
	l.mu.Lock()
	if l.state.load() == StateDestroyed {
		l.mu.Unlock()
		cancel()
		l.diag.benign(`work-destroyed`).Str(`work`, name).Log(`work refused, loop destroyed`)
		return 0
	}
	l.nextWork++
	w := &work{
		id:     l.nextWork,
		name:   name,
		ctx:    ctx,
		cancel: cancel,
		fn:     fn,
		done:   done,
	}
	l.works[w.id] = w
	l.mu.Unlock()

	l.thread.proc.workPool().submit(w, func() { l.finishWork(w) })

	return w.id
}

// CancelWork cancels outstanding work, delivering done(true) on the loop
// without waiting for fn to observe the cancellation. It returns false if
// the work has already completed, or was never issued.
func (l *RunLoop) CancelWork(id WorkID) bool {
	l.mu.Lock()
	w := l.works[id]
	delete(l.works, id)
	l.mu.Unlock()
	if w == nil {
		l.diag.benign(`cancel-work-missed`).Uint64(`work`, uint64(id)).Log(`cancel missed, work not outstanding`)
		return false
	}
	w.cancel()
	if l.post(func() { l.deliverWork(w, true) }, 0, 0) == 0 {
		l.wakeIfRunning()
	}
	return true
}

// finishWork is called on the pool once fn has returned (or been skipped).
func (l *RunLoop) finishWork(w *work) {
	if l.post(func() {
		l.mu.Lock()
		_, ok := l.works[w.id]
		delete(l.works, w.id)
		l.mu.Unlock()
		if ok {
			l.deliverWork(w, w.ctx.Err() != nil)
		}
	}, 0, 0) != 0 {
		return
	}
	// loop no longer accepting tasks, drop the item without redelivery
	l.mu.Lock()
	delete(l.works, w.id)
	l.mu.Unlock()
	w.cancel()
	l.wakeIfRunning()
}

func (l *RunLoop) deliverWork(w *work, canceled bool) {
	w.cancel()
	if w.done != nil {
		l.diag.safeCall(w.name, func() { w.done(canceled) })
	}
}

// workPool runs work items concurrently, bounded by the process's work
// concurrency. Each item is its own batch.
type workPool struct {
	batcher *microbatch.Batcher[*workJob]
	diag    *diagnostics
}

type workJob struct {
	w      *work
	finish func()
}

func (p *Process) workPool() *workPool {
	p.poolOnce.Do(func() {
		pool := &workPool{diag: p.diag}
		pool.batcher = microbatch.NewBatcher(&microbatch.BatcherConfig{
			MaxSize:        1,
			FlushInterval:  -1,
			MaxConcurrency: p.opts.workConcurrency,
		}, pool.process)
		p.mu.Lock()
		p.pool = pool
		p.mu.Unlock()
	})
	return p.existingPool()
}

func (p *Process) existingPool() *workPool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pool
}

func (x *workPool) process(ctx context.Context, jobs []*workJob) error {
	for _, job := range jobs {
		x.run(ctx, job)
	}
	return nil
}

func (x *workPool) run(ctx context.Context, job *workJob) {
	defer job.finish()
	if job.w.ctx.Err() != nil {
		return
	}
	// pool shutdown cancels the item
	stop := context.AfterFunc(ctx, job.w.cancel)
	defer stop()
	x.diag.safeCall(job.w.name, func() { job.w.fn(job.w.ctx) })
}

// submit hands the item to the batcher from a new goroutine, as Submit
// blocks while the pool is saturated.
func (x *workPool) submit(w *work, finish func()) {
	job := &workJob{w: w, finish: finish}
	go func() {
		if _, err := x.batcher.Submit(w.ctx, job); err != nil {
			// cancelled before it was accepted, or the pool is closed
			w.cancel()
			finish()
		}
	}()
}

// shutdown waits for running items until ctx is done, then cancels them,
// returning without waiting for items that ignore cancellation.
func (x *workPool) shutdown(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() { errCh <- x.batcher.Shutdown(ctx) }()
	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}
