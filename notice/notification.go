package notice

import (
	"fmt"
	"sync"
)

// Notification is the per-instance set of noticers owned by one sender,
// keyed by event name. Noticers are created on first registration, and torn
// down once their last listener is removed.
//
// Thread Safety:
// Notification is safe for concurrent use. Lock order is Notification, then
// EventNoticer; listener callbacks never run with either held.
type Notification[N comparable] struct {
	sender   any
	nameOf   func(N) string
	onChange func(name N, count int)
	noticers map[N]*EventNoticer
	mu       sync.Mutex
}

// NewNotification returns an empty registry for sender. nameOf renders names
// for noticers (and errors), and defaults to fmt.Sprint.
func NewNotification[N comparable](sender any, nameOf func(N) string) *Notification[N] {
	if nameOf == nil {
		nameOf = func(name N) string { return fmt.Sprint(name) }
	}
	return &Notification[N]{sender: sender, nameOf: nameOf}
}

// SetListenerChange installs a hook, called after every registration or
// removal with the resulting listener count for name. Owners use it to
// start or stop producing events nobody listens to.
func (x *Notification[N]) SetListenerChange(fn func(name N, count int)) {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.onChange = fn
}

// Noticer returns the noticer for name, or nil if nothing listens to it.
func (x *Notification[N]) Noticer(name N) *EventNoticer {
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.noticers[name]
}

// HasListeners reports whether anything listens to name.
func (x *Notification[N]) HasListeners(name N) bool {
	n := x.Noticer(name)
	return n != nil && n.Count() != 0
}

// noticer returns the noticer for name, creating it if needed.
func (x *Notification[N]) noticer(name N) *EventNoticer {
	x.mu.Lock()
	defer x.mu.Unlock()
	if n := x.noticers[name]; n != nil {
		return n
	}
	if x.noticers == nil {
		x.noticers = make(map[N]*EventNoticer)
	}
	n := NewEventNoticer(x.nameOf(name), x.sender)
	n.onChange = func(count int) { x.changed(name, n, count) }
	x.noticers[name] = n
	return n
}

func (x *Notification[N]) changed(name N, n *EventNoticer, count int) {
	x.mu.Lock()
	switch current, ok := x.noticers[name]; {
	case count == 0 && current == n && n.Count() == 0:
		delete(x.noticers, name)
	case count != 0 && !ok:
		// raced with teardown, after the caller looked n up
		x.noticers[name] = n
	}
	onChange := x.onChange
	x.mu.Unlock()
	if onChange != nil {
		onChange(name, count)
	}
}

// On registers a durable method listener for name.
func (x *Notification[N]) On(name N, fn Func, scope any) error {
	return x.noticer(name).On(fn, scope)
}

// Once registers a one-shot method listener for name.
func (x *Notification[N]) Once(name N, fn Func, scope any) error {
	return x.noticer(name).Once(fn, scope)
}

// OnStatic registers a durable static listener for name.
func (x *Notification[N]) OnStatic(name N, fn StaticFunc, data any) error {
	return x.noticer(name).OnStatic(fn, data)
}

// OnceStatic registers a one-shot static listener for name.
func (x *Notification[N]) OnceStatic(name N, fn StaticFunc, data any) error {
	return x.noticer(name).OnceStatic(fn, data)
}

// OnFunc registers a durable lambda listener for name.
func (x *Notification[N]) OnFunc(name N, fn Func, id int) {
	x.noticer(name).OnFunc(fn, id)
}

// OnceFunc registers a one-shot lambda listener for name.
func (x *Notification[N]) OnceFunc(name N, fn Func, id int) {
	x.noticer(name).OnceFunc(fn, id)
}

// OnShell forwards events raised for name to target.
func (x *Notification[N]) OnShell(name N, target *EventNoticer) error {
	return x.noticer(name).OnShell(target)
}

// Off removes a method listener for name.
func (x *Notification[N]) Off(name N, fn Func, scope any) bool {
	if n := x.Noticer(name); n != nil {
		return n.Off(fn, scope)
	}
	return false
}

// OffStatic removes a static listener for name.
func (x *Notification[N]) OffStatic(name N, fn StaticFunc, data any) bool {
	if n := x.Noticer(name); n != nil {
		return n.OffStatic(fn, data)
	}
	return false
}

// OffFunc removes the lambda listeners for name registered with id.
func (x *Notification[N]) OffFunc(name N, id int) int {
	if n := x.Noticer(name); n != nil {
		return n.OffFunc(id)
	}
	return 0
}

// OffShell removes the shell for name forwarding to target.
func (x *Notification[N]) OffShell(name N, target *EventNoticer) bool {
	if n := x.Noticer(name); n != nil {
		return n.OffShell(target)
	}
	return false
}

// OffScope removes every listener bound to scope, across all names.
func (x *Notification[N]) OffScope(scope any) int {
	var removed int
	for _, n := range x.snapshot() {
		removed += n.OffScope(scope)
	}
	return removed
}

// OffAll removes every listener, across all names.
func (x *Notification[N]) OffAll() int {
	var removed int
	for _, n := range x.snapshot() {
		removed += n.OffAll()
	}
	return removed
}

func (x *Notification[N]) snapshot() []*EventNoticer {
	x.mu.Lock()
	defer x.mu.Unlock()
	noticers := make([]*EventNoticer, 0, len(x.noticers))
	for _, n := range x.noticers {
		noticers = append(noticers, n)
	}
	return noticers
}

// Trigger delivers event to the listeners of name, if any.
func (x *Notification[N]) Trigger(name N, event Event) {
	if n := x.Noticer(name); n != nil {
		n.Trigger(event)
	}
}

// TriggerFunc delivers the event built by newEvent to the listeners of
// name, constructing it only if there are any. It returns the event, or nil.
func (x *Notification[N]) TriggerFunc(name N, newEvent func() Event) Event {
	if n := x.Noticer(name); n != nil {
		return n.TriggerFunc(newEvent)
	}
	return nil
}
