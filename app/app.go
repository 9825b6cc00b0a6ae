// Package app wires a process together: the main loop, adopted from the
// calling goroutine, receiving platform input through a dispatcher; a
// render loop on its own thread, ticked by a FrameDriver; the UI lock they
// share; and the exit protocol.
package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/joeycumines/go-catrate"
	"github.com/joeycumines/go-uiloop/config"
	"github.com/joeycumines/go-uiloop/diag"
	"github.com/joeycumines/go-uiloop/dispatch"
	"github.com/joeycumines/go-uiloop/internal/logx"
	"github.com/joeycumines/go-uiloop/notice"
	"github.com/joeycumines/go-uiloop/platform"
	"github.com/joeycumines/go-uiloop/runloop"
	"github.com/joeycumines/logiface"
)

// App is a running application.
type App struct {
	process    *runloop.Process
	main       *runloop.Thread
	mainLoop   *runloop.RunLoop
	renderLoop *runloop.RunLoop
	renderID   runloop.ThreadID
	frames     *FrameDriver
	dispatcher *dispatch.Dispatcher
	source     *platform.ChannelSource[platform.Event]
	events     chan platform.Event
	diag       *diag.Server
	diagAddr   net.Addr
	logger     *logiface.Logger[logiface.Event]
	limiter    *catrate.Limiter
	closeLog   func() error
	cfg        config.Config
	uiLock     sync.Mutex
}

// New builds an application from cfg (the defaults if nil). The calling
// goroutine becomes the main thread, and must be the one calling Run.
func New(cfg *config.Config, opts ...Option) (_ *App, err error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("app: %w", err)
	}
	o := appOptions{eventBuffer: DefaultEventBuffer}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt.applyApp(&o); err != nil {
			return nil, err
		}
	}

	a := &App{
		cfg:      *cfg,
		logger:   o.logger,
		closeLog: func() error { return nil },
		limiter:  catrate.NewLimiter(map[time.Duration]int{time.Second: 5}),
	}
	defer func() {
		if err != nil {
			a.teardown()
		}
	}()

	if a.logger == nil {
		w, closeLog, err := logx.OpenFile(cfg.Log.File)
		if err != nil {
			return nil, err
		}
		a.closeLog = closeLog
		if a.logger, err = logx.New(logx.Options{
			Writer:  w,
			Level:   cfg.Log.Level,
			Backend: cfg.Log.Backend,
			Format:  cfg.Log.Format,
		}); err != nil {
			return nil, err
		}
	}

	if a.process, err = runloop.NewProcess(
		runloop.WithLogger(a.logger),
		runloop.WithJoinTimeout(cfg.Loop.JoinTimeout),
		runloop.WithWorkConcurrency(cfg.Loop.WorkConcurrency),
		runloop.WithStrictInvariants(o.strict),
	); err != nil {
		return nil, err
	}
	if err := a.process.SafeExit().On(a.onSafeExit, a); err != nil {
		return nil, err
	}

	a.main = a.process.Current()
	if a.main == nil {
		return nil, runloop.ErrProcessExiting
	}
	a.mainLoop = a.main.Loop()

	keyTable := o.keyTable
	if keyTable == nil {
		if keyTable, err = dispatch.KeyTableByName(cfg.Input.KeyTable); err != nil {
			return nil, err
		}
	}
	if a.dispatcher, err = dispatch.New(a.mainLoop,
		dispatch.WithLogger(a.logger),
		dispatch.WithHost(o.host),
		dispatch.WithUILock(&a.uiLock),
		dispatch.WithClickThreshold(cfg.Input.ClickThreshold),
		dispatch.WithDeviceScale(cfg.Input.DeviceScale),
		dispatch.WithKeyTable(keyTable),
	); err != nil {
		return nil, err
	}

	a.events = make(chan platform.Event, o.eventBuffer)
	if a.source, err = platform.NewChannelSource(a.events, a.deliver, platform.WithLogger(a.logger)); err != nil {
		return nil, err
	}
	if err := a.mainLoop.AddSource(a.source); err != nil {
		return nil, err
	}

	if err := a.startRender(o.render); err != nil {
		return nil, err
	}

	if cfg.Diag.Addr != `` {
		a.diag = diag.New(a.process, a.dispatcher, a.logger)
	}

	a.logger.Info().
		Str(`process`, a.process.ID().String()).
		Dur(`frame_interval`, cfg.Loop.FrameInterval).
		Log(`application initialized`)
	return a, nil
}

// startRender spawns the render thread, which creates its frame driver
// before running its loop.
func (a *App) startRender(render func(Frame)) error {
	ready := make(chan *FrameDriver, 1)
	a.renderID = a.process.Spawn(`render`, func(th *runloop.Thread) {
		l := th.Loop()
		frames := NewFrameDriver(l, a.cfg.Loop.FrameInterval, &a.uiLock, render, a.logger)
		a.process.ReleaseOnExit(frames.keep)
		ready <- frames
		err := l.Run(context.Background(), a.cfg.Loop.IdleTimeout)
		frames.Close()
		if err != nil && !errors.Is(err, runloop.ErrThreadAborted) {
			a.logger.Err().Err(err).Log(`render loop failed`)
		}
	})
	if a.renderID == 0 {
		return runloop.ErrProcessExiting
	}
	a.frames = <-ready
	a.renderLoop = a.frames.keep.Loop()
	return nil
}

func (a *App) deliver(e platform.Event) {
	if !e.Deliver(a.dispatcher) {
		if b := a.limited(`unknown-event`); b != nil {
			b.Str(`kind`, e.Kind.String()).Log(`dropped platform event of unknown kind`)
		}
	}
}

func (a *App) limited(category string) *logiface.Builder[logiface.Event] {
	if _, ok := a.limiter.Allow(category); !ok {
		return nil
	}
	return a.logger.Warning().Str(`category`, category)
}

func (a *App) onSafeExit(e notice.Event) {
	if a.frames != nil {
		a.frames.Stop()
	}
	a.logger.Info().Int(`code`, e.Base().ReturnValue).Log(`application exiting`)
}

// Process returns the process context.
func (a *App) Process() *runloop.Process { return a.process }

// Dispatcher returns the event dispatcher, running on the main loop.
func (a *App) Dispatcher() *dispatch.Dispatcher { return a.dispatcher }

// MainLoop returns the main loop.
func (a *App) MainLoop() *runloop.RunLoop { return a.mainLoop }

// RenderLoop returns the render loop.
func (a *App) RenderLoop() *runloop.RunLoop { return a.renderLoop }

// Frames returns the frame driver.
func (a *App) Frames() *FrameDriver { return a.frames }

// UILock returns the lock guarding the view tree, shared by dispatch jobs
// and frames. Code on other goroutines must hold it to mutate the tree.
func (a *App) UILock() sync.Locker { return &a.uiLock }

// Send queues a platform event for the main loop, from any goroutine. It
// returns false if the event was dropped because the queue is full.
func (a *App) Send(e platform.Event) bool {
	select {
	case a.events <- e:
		return true
	default:
		if b := a.limited(`event-overflow`); b != nil {
			b.Str(`kind`, e.Kind.String()).Log(`dropped platform event, queue full`)
		}
		return false
	}
}

// DiagAddr returns the address the diagnostics server listens on, once
// Run has started it.
func (a *App) DiagAddr() net.Addr { return a.diagAddr }

// Post runs fn on the main loop, from any goroutine.
func (a *App) Post(fn func()) bool { return a.mainLoop.Post(fn, 0) != 0 }

// Exit starts the exit protocol, from any goroutine, without waiting for
// it. Run returns the final code once it completes. Listeners and dispatch
// jobs may call Exit while holding the UI lock, which the render thread may
// need before it can be joined.
func (a *App) Exit(code int) { go a.process.Exit(code) }

// Run starts rendering and the diagnostics server, then runs the main loop
// until Exit is called or ctx is done, returning the exit code. It must be
// called on the goroutine that called New, and tears the app down before
// returning.
func (a *App) Run(ctx context.Context) int {
	if a.diag != nil {
		addr, err := a.diag.Start(a.cfg.Diag.Addr)
		if err != nil {
			a.logger.Err().Err(err).Log(`diagnostics server unavailable`)
		}
		a.diagAddr = addr
	}
	a.frames.Start()

	err := a.mainLoop.Run(ctx, -1)
	switch {
	case err == nil, errors.Is(err, runloop.ErrThreadAborted), ctx.Err() != nil:
	default:
		a.logger.Err().Err(err).Log(`main loop failed`)
	}

	code := a.process.Exit(0)
	a.teardown()
	return code
}

func (a *App) teardown() {
	if a.diag != nil {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		if err := a.diag.Close(ctx); err != nil {
			a.logger.Warning().Err(err).Log(`diagnostics server shutdown incomplete`)
		}
		cancel()
	}
	if a.dispatcher != nil {
		a.dispatcher.Close()
	}
	if a.process != nil {
		a.process.Exit(0)
	}
	if a.main != nil {
		if a.mainLoop != nil && a.source != nil {
			a.mainLoop.RemoveSource(a.source)
		}
		a.main.Detach()
	}
	if err := a.closeLog(); err != nil {
		a.logger.Warning().Err(err).Log(`closing log file`)
	}
}
