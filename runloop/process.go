package runloop

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/joeycumines/go-uiloop/notice"
	"github.com/joeycumines/logiface"
	"golang.org/x/sync/errgroup"
)

// SafeExitEvent is the name of the process-wide notice fired once, before
// teardown, when the exit protocol starts. The event's ReturnValue starts as
// the requested exit code, and listeners may modify it.
const SafeExitEvent = `ProcessSafeExit`

// ThreadID identifies a thread within a [Process]. The zero value is never
// issued, and signals a refused spawn.
type ThreadID uint64

// Process is the process-wide context: the live thread registry, the first
// loop, the exit flag, and the background work pool. A program normally has
// one, created at startup and passed to the components that need it.
//
// Thread Safety:
// Process is safe for concurrent use. The registry and exit flag are guarded
// by one mutex, which is never held while user callbacks run.
type Process struct {
	exitDone chan struct{}
	opts     *processOptions
	diag     *diagnostics
	safeExit *notice.EventNoticer
	threads  map[ThreadID]*Thread
	byGoid   map[uint64]*Thread
	first    *RunLoop
	pool     *workPool
	keeps    []*KeepLoop
	started  time.Time
	exitOnce sync.Once
	poolOnce sync.Once
	mu       sync.Mutex
	nextID   ThreadID
	exitCode int
	// exitGoid is the goroutine running the exit protocol
	exitGoid atomic.Uint64
	exiting  atomic.Bool
	id       uuid.UUID
}

// NewProcess initializes a process context.
func NewProcess(opts ...ProcessOption) (*Process, error) {
	cfg, err := resolveProcessOptions(opts)
	if err != nil {
		return nil, err
	}
	p := &Process{
		id:       uuid.New(),
		opts:     cfg,
		diag:     newDiagnostics(cfg),
		threads:  make(map[ThreadID]*Thread),
		byGoid:   make(map[uint64]*Thread),
		exitDone: make(chan struct{}),
		started:  time.Now(),
	}
	p.safeExit = notice.NewEventNoticer(SafeExitEvent, p)
	return p, nil
}

// ID returns the process session id, used to correlate logs and diagnostics.
func (p *Process) ID() uuid.UUID { return p.id }

// Started returns the time the process context was created.
func (p *Process) Started() time.Time { return p.started }

// Logger returns the configured logger, which may be nil.
func (p *Process) Logger() *logiface.Logger[logiface.Event] { return p.opts.logger }

// SafeExit returns the noticer for [SafeExitEvent].
func (p *Process) SafeExit() *notice.EventNoticer { return p.safeExit }

// Exiting reports whether the exit protocol has started.
func (p *Process) Exiting() bool { return p.exiting.Load() }

// Done is closed once the exit protocol has completed.
func (p *Process) Done() <-chan struct{} { return p.exitDone }

// Spawn starts exec on a new goroutine, locked to its own OS thread, and
// registered as a [Thread] named name. The thread's identity is installed
// before Spawn returns. When exec returns the thread is marked aborted, its
// loop (if any) is destroyed, and joiners are released.
//
// Spawn returns 0 once the exit protocol has started.
func (p *Process) Spawn(name string, exec func(t *Thread)) ThreadID {
	if exec == nil {
		_ = p.diag.invariant(fmt.Errorf("runloop: spawn %q: nil exec", name), `spawn`)
		return 0
	}

	p.mu.Lock()
	if p.exiting.Load() {
		p.mu.Unlock()
		p.diag.benign(`spawn-exiting`).Str(`thread`, name).Log(`spawn refused, process exiting`)
		return 0
	}
	p.nextID++
	t := newThread(p, p.nextID, name, false)
	p.threads[t.id] = t
	p.mu.Unlock()

	ready := make(chan struct{})
	go func() {
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()

		goid := getGoroutineID()
		t.goid.Store(goid)
		p.mu.Lock()
		p.byGoid[goid] = t
		p.mu.Unlock()
		close(ready)

		defer t.end()
		p.diag.safeCall(name, func() { exec(t) })
	}()
	<-ready

	p.opts.logger.Debug().
		Uint64(`thread`, uint64(t.id)).
		Str(`name`, name).
		Log(`thread spawned`)

	return t.id
}

// Current returns the calling goroutine's thread. Goroutines not started by
// Spawn are adopted on first call, and remain registered until
// [Thread.Detach]. Current returns nil if the calling goroutine is unknown,
// and the exit protocol has started.
func (p *Process) Current() *Thread {
	goid := getGoroutineID()
	p.mu.Lock()
	defer p.mu.Unlock()
	if t := p.byGoid[goid]; t != nil {
		return t
	}
	if p.exiting.Load() {
		return nil
	}
	p.nextID++
	t := newThread(p, p.nextID, `adopted`, true)
	t.goid.Store(goid)
	p.threads[t.id] = t
	p.byGoid[goid] = t
	return t
}

// CurrentLoop returns the calling thread's loop, creating it on first use.
func (p *Process) CurrentLoop() *RunLoop {
	if t := p.Current(); t != nil {
		return t.Loop()
	}
	return nil
}

// FirstLoop returns the first loop created within the process, typically the
// main loop, or nil.
func (p *Process) FirstLoop() *RunLoop {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.first
}

func (p *Process) loopCreated(l *RunLoop) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.first == nil {
		p.first = l
	}
}

func (p *Process) loopDestroyed(l *RunLoop) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.first == l {
		p.first = nil
	}
}

// Lookup returns the live thread with the given id, or nil.
func (p *Process) Lookup(id ThreadID) *Thread {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.threads[id]
}

// Join blocks until the thread ends, or timeout elapses (a timeout <= 0
// waits indefinitely). Joining a thread that has already ended returns
// immediately. Timing out has no effect on the target thread.
func (p *Process) Join(id ThreadID, timeout time.Duration) error {
	t := p.Lookup(id)
	if t == nil {
		return nil
	}
	if t.goid.Load() == getGoroutineID() {
		return p.diag.invariant(fmt.Errorf("thread %d: %w", id, ErrJoinSelf), `join`)
	}
	return t.join(timeout)
}

// Resume wakes the thread if it is paused.
func (p *Process) Resume(id ThreadID) error {
	t := p.Lookup(id)
	if t == nil {
		return fmt.Errorf("thread %d: %w", id, ErrUnknownThread)
	}
	t.Resume()
	return nil
}

// Abort marks the thread aborted, stops its loop, and wakes it if paused.
func (p *Process) Abort(id ThreadID) error {
	t := p.Lookup(id)
	if t == nil {
		return fmt.Errorf("thread %d: %w", id, ErrUnknownThread)
	}
	t.Abort()
	return nil
}

// ThreadInfo is a point-in-time snapshot of a thread.
type ThreadInfo struct {
	Loop    *LoopStats `json:"loop,omitempty"`
	Name    string     `json:"name"`
	ID      ThreadID   `json:"id"`
	Adopted bool       `json:"adopted"`
	Aborted bool       `json:"aborted"`
}

// Threads returns a snapshot of the live threads, ordered by id.
func (p *Process) Threads() []ThreadInfo {
	p.mu.Lock()
	threads := make([]*Thread, 0, len(p.threads))
	for _, t := range p.threads {
		threads = append(threads, t)
	}
	p.mu.Unlock()

	sort.Slice(threads, func(i, j int) bool { return threads[i].id < threads[j].id })

	infos := make([]ThreadInfo, 0, len(threads))
	for _, t := range threads {
		info := ThreadInfo{
			ID:      t.id,
			Name:    t.name,
			Adopted: t.adopted,
			Aborted: t.Aborted(),
		}
		if l := t.existingLoop(); l != nil {
			stats := l.Stats()
			info.Loop = &stats
		}
		infos = append(infos, info)
	}
	return infos
}

// ReleaseOnExit registers a keep-alive guard to be released by the exit
// protocol. Guards registered after exit has started are released immediately.
func (p *Process) ReleaseOnExit(k *KeepLoop) {
	if k == nil {
		return
	}
	p.mu.Lock()
	if !p.exiting.Load() {
		p.keeps = append(p.keeps, k)
		p.mu.Unlock()
		return
	}
	p.mu.Unlock()
	k.Release()
}

func (p *Process) unregister(t *Thread) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.threads, t.id)
	if goid := t.goid.Load(); goid != 0 && p.byGoid[goid] == t {
		delete(p.byGoid, goid)
	}
}

// Exit runs the exit protocol, at most once, returning the final exit code.
// Concurrent and subsequent calls block until the protocol completes, and
// return the same code.
//
// The protocol: set the exit flag; fire [SafeExitEvent], whose ReturnValue
// becomes the exit code; abort every live thread; release the guards
// registered with ReleaseOnExit; join every spawned thread, each bounded by
// the join timeout; shut down the work pool.
//
// A [SafeExitEvent] listener calling Exit gets its code back immediately,
// without waiting on the protocol it is part of; set the event's
// ReturnValue instead.
//
// Exit does not terminate the program, it is the caller's responsibility to
// pass the result to os.Exit.
func (p *Process) Exit(code int) int {
	if p.exiting.Load() && p.exitGoid.Load() == getGoroutineID() {
		if b := p.diag.benign(`nested-exit`); b != nil {
			b.Int(`code`, code).Log(`exit called from within the exit protocol`)
		}
		return code
	}
	p.exitOnce.Do(func() {
		p.exitGoid.Store(getGoroutineID())
		p.exitCode = p.exit(code)
		close(p.exitDone)
	})
	<-p.exitDone
	return p.exitCode
}

func (p *Process) exit(code int) int {
	p.mu.Lock()
	p.exiting.Store(true)
	p.mu.Unlock()

	event := &notice.EventBase{Data: code, ReturnValue: code}
	p.diag.safeCall(SafeExitEvent, func() { p.safeExit.Trigger(event) })
	if event.ReturnValue != code {
		p.opts.logger.Info().
			Int(`requested`, code).
			Int(`code`, event.ReturnValue).
			Log(`exit code changed by safe exit listener`)
		code = event.ReturnValue
	}

	p.mu.Lock()
	threads := make([]*Thread, 0, len(p.threads))
	for _, t := range p.threads {
		threads = append(threads, t)
	}
	keeps := p.keeps
	p.keeps = nil
	p.mu.Unlock()

	p.opts.logger.Info().
		Str(`process`, p.id.String()).
		Int(`code`, code).
		Int(`threads`, len(threads)).
		Log(`process exiting`)

	for _, t := range threads {
		t.Abort()
	}
	for _, k := range keeps {
		k.Release()
	}

	self := getGoroutineID()
	var g errgroup.Group
	for _, t := range threads {
		if t.adopted || t.goid.Load() == self {
			continue
		}
		g.Go(func() error {
			if err := t.join(p.opts.joinTimeout); err != nil {
				return fmt.Errorf("thread %d (%s): %w", t.id, t.name, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		p.opts.logger.Warning().Err(err).Log(`exit join incomplete`)
	}

	if pool := p.existingPool(); pool != nil {
		ctx, cancel := context.WithTimeout(context.Background(), p.opts.joinTimeout)
		defer cancel()
		if err := pool.shutdown(ctx); err != nil {
			p.opts.logger.Warning().Err(err).Log(`work pool shutdown incomplete`)
		}
	}

	return code
}
