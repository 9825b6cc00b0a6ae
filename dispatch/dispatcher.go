package dispatch

import (
	"errors"
	"sync"

	"github.com/joeycumines/go-catrate"
	"github.com/joeycumines/go-uiloop/notice"
	"github.com/joeycumines/go-uiloop/runloop"
	"github.com/joeycumines/logiface"
)

var (
	// ErrNilLoop is returned by New when no loop is provided.
	ErrNilLoop = errors.New("dispatch: nil loop")

	// ErrLoopUnavailable is returned by New when the loop is destroyed.
	ErrLoopUnavailable = errors.New("dispatch: loop unavailable")
)

// Dispatcher turns raw platform input into semantic events, delivered to the
// view tree. Platform entry points (the Dispatch* methods) may be called
// from any goroutine: each enqueues one job onto the main loop and returns
// immediately. Jobs run with the UI lock held, and own all interaction
// state (touches, mouse, focus, text input).
type Dispatcher struct {
	keep     *runloop.KeepLoop
	loop     *runloop.RunLoop
	logger   *logiface.Logger[logiface.Event]
	limiter  *catrate.Limiter
	host     Host
	uiLock   sync.Locker
	keyboard *KeyboardAdapter

	// state below is only accessed from dispatch jobs
	root      View
	focus     View
	textInput TextInput
	origins   map[View]*originTouch
	active    map[uint32]View
	mouse     mouseHandle

	threshold float64
	scale     float64
	inJob     bool
}

// New returns a dispatcher delivering events on loop, normally the main
// loop. The dispatcher holds a keep-alive guard on the loop until Close.
func New(loop *runloop.RunLoop, opts ...Option) (*Dispatcher, error) {
	if loop == nil {
		return nil, ErrNilLoop
	}
	cfg, err := resolveOptions(opts)
	if err != nil {
		return nil, err
	}
	d := &Dispatcher{
		loop:      loop,
		logger:    cfg.logger,
		host:      cfg.host,
		uiLock:    cfg.uiLock,
		keyboard:  NewKeyboardAdapter(cfg.keyTable),
		origins:   make(map[View]*originTouch),
		active:    make(map[uint32]View),
		threshold: cfg.clickThreshold,
		scale:     cfg.deviceScale,
	}
	if len(cfg.diagnosticRates) != 0 {
		d.limiter = catrate.NewLimiter(cfg.diagnosticRates)
	}
	d.keep = loop.KeepAlive(`dispatch`, true)
	if d.keep.Loop() == nil {
		return nil, ErrLoopUnavailable
	}
	return d, nil
}

// Loop returns the loop jobs run on.
func (d *Dispatcher) Loop() *runloop.RunLoop { return d.loop }

// Close releases the dispatcher's keep-alive guard. Jobs not yet run are
// dropped, and later input is ignored.
func (d *Dispatcher) Close() {
	d.keep.Release()
}

// post enqueues a dispatch job, logging if it was refused.
func (d *Dispatcher) post(name string, fn func()) {
	if d.keep.Post(func() { d.run(fn) }, 0) == 0 {
		d.limited(`dropped-job`, logiface.LevelDebug).Str(`job`, name).Log(`dispatch job refused`)
	}
}

// run executes fn as a dispatch job. Nested calls, e.g. from a listener,
// run inline under the lock already held.
func (d *Dispatcher) run(fn func()) {
	if d.inJob {
		fn()
		return
	}
	d.uiLock.Lock()
	d.inJob = true
	defer func() {
		d.inJob = false
		d.uiLock.Unlock()
	}()
	fn()
}

// Sync runs fn as a dispatch job, waiting for it to complete. On the main
// loop's own goroutine fn runs inline. It returns false if the job could not
// be run, e.g. after Close.
//
// Callers on other goroutines must not hold the UI lock.
func (d *Dispatcher) Sync(fn func()) bool {
	if d.loop.IsCurrent() {
		if d.keep.Loop() == nil {
			return false
		}
		d.run(fn)
		return true
	}
	return d.keep.PostSync(func() { d.run(fn) })
}

// limited returns a builder at level, or nil if category is currently rate
// limited. The caller must Log the result.
func (d *Dispatcher) limited(category string, level logiface.Level) *logiface.Builder[logiface.Event] {
	if d.logger == nil {
		return nil
	}
	if d.limiter != nil {
		if _, ok := d.limiter.Allow(category); !ok {
			return nil
		}
	}
	return d.logger.Build(level).Str(`category`, category)
}

// SetRoot replaces the root view. Interaction state referring to views
// outside the new tree is dropped.
func (d *Dispatcher) SetRoot(root View) {
	d.Sync(func() {
		if d.root == root {
			return
		}
		old := d.root
		d.root = root
		if old != nil {
			d.viewRemoved(old)
		}
	})
}

// Root returns the root view. Intended for dispatch jobs and listeners.
func (d *Dispatcher) Root() View { return d.root }

// ViewRemoved drops every reference the dispatcher holds to view and its
// descendants, which must be called when they are detached from the tree.
// Gestures in progress on them end without a click.
func (d *Dispatcher) ViewRemoved(view View) {
	if view == nil {
		return
	}
	d.Sync(func() { d.viewRemoved(view) })
}

func (d *Dispatcher) viewRemoved(view View) {
	within := func(v View) bool { return v != nil && (v == view || IsAncestor(view, v)) }
	for v, o := range d.origins {
		if within(v) {
			for id := range o.touches {
				delete(d.active, id)
			}
			delete(d.origins, v)
		}
	}
	if within(d.mouse.view) {
		d.mouse.view = nil
	}
	if within(d.mouse.down) {
		d.mouse.down = nil
	}
	if within(d.focus) {
		d.focus = nil
		d.setTextInput(nil)
	}
}

// attached reports whether view is in the current tree.
func (d *Dispatcher) attached(view View) bool {
	if view == nil || d.root == nil {
		return false
	}
	return view == d.root || IsAncestor(d.root, view)
}

// bubble raises event on view, then on each ancestor that receives events,
// until a listener cancels bubbling. Names that don't bubble are raised on
// view only.
func (d *Dispatcher) bubble(view View, name Name, event Event) {
	if !name.valid() {
		return
	}
	ui := event.UI()
	ui.SetOrigin(view)
	if !name.Bubbles() {
		if view.Receive() {
			view.Notification().Trigger(name, event)
		}
		return
	}
	for v := view; v != nil; v = v.Parent() {
		if v.Receive() {
			v.Notification().Trigger(name, event)
			if !ui.IsBubble() {
				return
			}
		}
	}
}

// highlight raises a highlighted event on view alone, constructing it only
// if something listens.
func (d *Dispatcher) highlight(view View, status HighlightedStatus) {
	view.Notification().TriggerFunc(NameHighlighted, func() notice.Event {
		e := &HighlightedEvent{UIEvent: newUIEvent(view), Status: status}
		e.SetOrigin(view)
		return e
	})
}

// hoverOrNormal is the resting style of view: hover while the mouse is
// over it, else normal.
func (d *Dispatcher) hoverOrNormal(view View) HighlightedStatus {
	if d.mouse.view != nil && (d.mouse.view == view || IsAncestor(view, d.mouse.view)) {
		return HighlightedHover
	}
	return HighlightedNormal
}

// click raises a click event, which bubbles.
func (d *Dispatcher) click(view View, pos Vec2, typ ClickType) *ClickEvent {
	e := &ClickEvent{UIEvent: newUIEvent(view), Position: pos, Type: typ, Count: 1}
	d.bubble(view, NameClick, e)
	return e
}
