package notice

import (
	"errors"
	"fmt"
	"reflect"
	"sync"
	"sync/atomic"
)

// ErrDuplicateListener is returned when a (callback, scope), (callback, data)
// or shell registration already exists on the noticer.
var ErrDuplicateListener = errors.New("notice: duplicate listener")

type (
	// Func is a method or lambda listener.
	Func func(event Event)

	// StaticFunc is a static listener, receiving the data it was registered with.
	StaticFunc func(event Event, data any)

	// Expirer may be implemented by listener scopes (or static data) that
	// can be cleared externally. Listeners whose scope reports expired are
	// pruned during Trigger, without being called.
	Expirer interface {
		Expired() bool
	}
)

type listenerKind uint8

const (
	kindMethod listenerKind = iota
	kindStatic
	kindFunc
	kindShell
)

// listener is a tagged variant over the supported listener kinds.
type listener struct { //nolint:govet // betteralign:ignore
	fn      Func
	sfn     StaticFunc
	scope   any // method scope, or static data
	shell   *EventNoticer
	ptr     uintptr
	id      int
	kind    listenerKind
	once    bool
	removed atomic.Bool
}

func (l *listener) expired() bool {
	if l.kind == kindShell {
		return false
	}
	e, ok := l.scope.(Expirer)
	return ok && e.Expired()
}

func (l *listener) call(n *EventNoticer, event Event) {
	switch l.kind {
	case kindMethod, kindFunc:
		l.fn(event)
	case kindStatic:
		l.sfn(event, l.scope)
	case kindShell:
		b := event.Base()
		l.shell.Trigger(event)
		// restore this noticer's identity for the remaining listeners
		b.noticer = n
		b.sender = n.sender
	}
}

// EventNoticer is the ordered listener list for one event name, on one sender.
//
// Thread Safety:
// EventNoticer is safe for concurrent use. Registration and removal may
// happen during Trigger, including from listeners; an in-flight Trigger
// iterates the list as it was when it started, skipping removed entries.
type EventNoticer struct {
	sender    any
	onChange  func(count int)
	name      string
	listeners []*listener // copy-on-write
	mu        sync.Mutex
}

// NewEventNoticer returns an empty noticer.
func NewEventNoticer(name string, sender any) *EventNoticer {
	return &EventNoticer{name: name, sender: sender}
}

// Name returns the event name.
func (n *EventNoticer) Name() string { return n.name }

// Sender returns the object that owns the noticer.
func (n *EventNoticer) Sender() any { return n.sender }

// Count returns the number of registered listeners.
func (n *EventNoticer) Count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.listeners)
}

// On registers a durable method listener. See the package docs for how
// duplicates are detected.
//
// fn is identified by its code pointer, so it should be a method value or a
// top-level function. Closures created from the same function literal share
// that pointer, and register as duplicates for the same scope even when they
// capture different values; use [EventNoticer.OnFunc] for those.
func (n *EventNoticer) On(fn Func, scope any) error {
	return n.addMethod(fn, scope, false)
}

// Once registers a method listener that is removed after its first call.
func (n *EventNoticer) Once(fn Func, scope any) error {
	return n.addMethod(fn, scope, true)
}

func (n *EventNoticer) addMethod(fn Func, scope any, once bool) error {
	if fn == nil {
		return fmt.Errorf("notice: %s: nil listener", n.name)
	}
	return n.add(&listener{
		kind:  kindMethod,
		fn:    fn,
		ptr:   reflect.ValueOf(fn).Pointer(),
		scope: scope,
		once:  once,
	})
}

// OnStatic registers a durable static listener, called with data. As with
// [EventNoticer.On], fn is identified by its code pointer, so capturing
// closures belong in [EventNoticer.OnFunc].
func (n *EventNoticer) OnStatic(fn StaticFunc, data any) error {
	return n.addStatic(fn, data, false)
}

// OnceStatic registers a static listener that is removed after its first call.
func (n *EventNoticer) OnceStatic(fn StaticFunc, data any) error {
	return n.addStatic(fn, data, true)
}

func (n *EventNoticer) addStatic(fn StaticFunc, data any, once bool) error {
	if fn == nil {
		return fmt.Errorf("notice: %s: nil listener", n.name)
	}
	return n.add(&listener{
		kind:  kindStatic,
		sfn:   fn,
		ptr:   reflect.ValueOf(fn).Pointer(),
		scope: data,
		once:  once,
	})
}

// OnFunc registers a durable lambda listener. Lambdas are not checked for
// duplicates, and several may share an id; [EventNoticer.OffFunc] removes
// all of them.
func (n *EventNoticer) OnFunc(fn Func, id int) {
	n.addFunc(fn, id, false)
}

// OnceFunc registers a lambda listener that is removed after its first call.
func (n *EventNoticer) OnceFunc(fn Func, id int) {
	n.addFunc(fn, id, true)
}

func (n *EventNoticer) addFunc(fn Func, id int, once bool) {
	if fn == nil {
		return
	}
	_ = n.add(&listener{
		kind: kindFunc,
		fn:   fn,
		id:   id,
		once: once,
	})
}

// OnShell registers target as a forwarding listener. An event triggered on n
// is triggered on target, with its origin left unchanged.
func (n *EventNoticer) OnShell(target *EventNoticer) error {
	if target == nil || target == n {
		return fmt.Errorf("notice: %s: invalid shell target", n.name)
	}
	return n.add(&listener{
		kind:  kindShell,
		shell: target,
	})
}

func (n *EventNoticer) add(l *listener) error {
	n.mu.Lock()
	if l.kind != kindFunc {
		for _, v := range n.listeners {
			if v.kind == l.kind && v.matches(l.ptr, l.scope, l.shell) {
				n.mu.Unlock()
				return fmt.Errorf("notice: %s: %w", n.name, ErrDuplicateListener)
			}
		}
	}
	listeners := make([]*listener, len(n.listeners), len(n.listeners)+1)
	copy(listeners, n.listeners)
	n.listeners = append(listeners, l)
	count := len(n.listeners)
	onChange := n.onChange
	n.mu.Unlock()
	if onChange != nil {
		onChange(count)
	}
	return nil
}

func (l *listener) matches(ptr uintptr, scope any, shell *EventNoticer) bool {
	switch l.kind {
	case kindShell:
		return l.shell == shell
	case kindMethod, kindStatic:
		return l.ptr == ptr && sameValue(l.scope, scope)
	default:
		return false
	}
}

// Off removes the method listener registered with (fn, scope).
func (n *EventNoticer) Off(fn Func, scope any) bool {
	if fn == nil {
		return false
	}
	ptr := reflect.ValueOf(fn).Pointer()
	return n.removeWhere(func(l *listener) bool {
		return l.kind == kindMethod && l.ptr == ptr && sameValue(l.scope, scope)
	}) != 0
}

// OffStatic removes the static listener registered with (fn, data).
func (n *EventNoticer) OffStatic(fn StaticFunc, data any) bool {
	if fn == nil {
		return false
	}
	ptr := reflect.ValueOf(fn).Pointer()
	return n.removeWhere(func(l *listener) bool {
		return l.kind == kindStatic && l.ptr == ptr && sameValue(l.scope, data)
	}) != 0
}

// OffFunc removes every lambda listener registered with id, returning the count.
func (n *EventNoticer) OffFunc(id int) int {
	return n.removeWhere(func(l *listener) bool {
		return l.kind == kindFunc && l.id == id
	})
}

// OffShell removes the shell forwarding to target.
func (n *EventNoticer) OffShell(target *EventNoticer) bool {
	return n.removeWhere(func(l *listener) bool {
		return l.kind == kindShell && l.shell == target
	}) != 0
}

// OffScope removes every method listener bound to scope, and every static
// listener registered with scope as its data, returning the count.
func (n *EventNoticer) OffScope(scope any) int {
	return n.removeWhere(func(l *listener) bool {
		return (l.kind == kindMethod || l.kind == kindStatic) && sameValue(l.scope, scope)
	})
}

// OffAll removes every listener, returning the count.
func (n *EventNoticer) OffAll() int {
	return n.removeWhere(func(*listener) bool { return true })
}

func (n *EventNoticer) removeWhere(match func(l *listener) bool) int {
	n.mu.Lock()
	var removed int
	listeners := make([]*listener, 0, len(n.listeners))
	for _, l := range n.listeners {
		if match(l) {
			l.removed.Store(true)
			removed++
			continue
		}
		listeners = append(listeners, l)
	}
	if removed == 0 {
		n.mu.Unlock()
		return 0
	}
	n.listeners = listeners
	count := len(listeners)
	onChange := n.onChange
	n.mu.Unlock()
	if onChange != nil {
		onChange(count)
	}
	return removed
}

func (n *EventNoticer) remove(target *listener) {
	n.removeWhere(func(l *listener) bool { return l == target })
}

// Trigger delivers event to every listener, in registration order. The
// event's noticer and sender are set to n, and its origin to n's sender if
// not already set.
//
// One-shot listeners are removed before they are called, so a listener that
// triggers the same noticer recursively does not observe itself twice.
func (n *EventNoticer) Trigger(event Event) {
	n.mu.Lock()
	listeners := n.listeners
	n.mu.Unlock()
	if len(listeners) == 0 || event == nil {
		return
	}
	n.deliver(listeners, event)
}

// TriggerFunc is like [EventNoticer.Trigger], but the event is only
// constructed if at least one listener is registered. It returns the event,
// or nil if there were no listeners.
func (n *EventNoticer) TriggerFunc(newEvent func() Event) Event {
	n.mu.Lock()
	listeners := n.listeners
	n.mu.Unlock()
	if len(listeners) == 0 {
		return nil
	}
	event := newEvent()
	if event == nil {
		return nil
	}
	n.deliver(listeners, event)
	return event
}

func (n *EventNoticer) deliver(listeners []*listener, event Event) {
	b := event.Base()
	b.noticer = n
	b.sender = n.sender
	if b.origin == nil {
		b.origin = n.sender
	}
	for _, l := range listeners {
		if l.removed.Load() {
			continue
		}
		if l.expired() {
			n.remove(l)
			continue
		}
		if l.once {
			if l.removed.Swap(true) {
				continue
			}
			n.remove(l)
		}
		l.call(n, event)
	}
}

// sameValue compares scopes, treating values of non-comparable types as
// distinct rather than panicking.
func sameValue(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	t := reflect.TypeOf(a)
	if t != reflect.TypeOf(b) || !t.Comparable() {
		return false
	}
	return a == b
}
