package app

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/joeycumines/go-uiloop/runloop"
	"github.com/joeycumines/logiface"
)

// DefaultFrameInterval is a 60Hz render tick.
const DefaultFrameInterval = 16600 * time.Microsecond

// Frame describes one render tick.
type Frame struct {
	Time  time.Time
	Delta time.Duration
	Seq   uint64
}

// FrameDriver calls a render function on the render loop at a fixed
// interval, with the UI lock held. The next tick is scheduled from the
// start of the previous one, so slow frames shorten the gap rather than
// drift the rate.
//
// The driver holds a keep-alive guard on the render loop until Close.
type FrameDriver struct {
	keep     *runloop.KeepLoop
	lock     sync.Locker
	render   func(Frame)
	logger   *logiface.Logger[logiface.Event]
	interval time.Duration
	frames   atomic.Uint64

	// render loop only
	generation uint64
	nextGen    uint64
	last       time.Time
}

// NewFrameDriver returns a stopped driver for loop. lock may be nil.
func NewFrameDriver(loop *runloop.RunLoop, interval time.Duration, lock sync.Locker, render func(Frame), logger *logiface.Logger[logiface.Event]) *FrameDriver {
	if interval <= 0 {
		interval = DefaultFrameInterval
	}
	if lock == nil {
		lock = new(sync.Mutex)
	}
	return &FrameDriver{
		keep:     loop.KeepAlive(`frames`, true),
		lock:     lock,
		render:   render,
		logger:   logger,
		interval: interval,
	}
}

// Start begins ticking, if not already. It may be called from any
// goroutine.
func (f *FrameDriver) Start() {
	f.keep.Post(func() {
		if f.generation != 0 {
			return
		}
		f.nextGen++
		f.generation = f.nextGen
		f.last = time.Time{}
		f.tick(f.generation)
	}, 0)
}

// Stop stops ticking after any frame in progress. It may be called from
// any goroutine.
func (f *FrameDriver) Stop() {
	f.keep.Post(func() { f.generation = 0 }, 0)
}

// Close stops the driver for good, dropping the pending tick and releasing
// the render loop.
func (f *FrameDriver) Close() { f.keep.Release() }

// Frames returns the number of frames started.
func (f *FrameDriver) Frames() uint64 { return f.frames.Load() }

// Interval returns the tick interval.
func (f *FrameDriver) Interval() time.Duration { return f.interval }

func (f *FrameDriver) tick(gen uint64) {
	if gen != f.generation {
		return
	}
	start := time.Now()
	frame := Frame{Time: start, Seq: f.frames.Add(1)}
	if !f.last.IsZero() {
		frame.Delta = start.Sub(f.last)
	}
	f.last = start

	// rescheduled even if render panics
	defer func() {
		next := f.interval - time.Since(start)
		if next < 0 {
			f.logger.Debug().
				Uint64(`frame`, frame.Seq).
				Dur(`overrun`, -next).
				Log(`frame exceeded interval`)
			next = 0
		}
		f.keep.Post(func() { f.tick(gen) }, next)
	}()

	if f.render != nil {
		f.lock.Lock()
		defer f.lock.Unlock()
		f.render(frame)
	}
}
