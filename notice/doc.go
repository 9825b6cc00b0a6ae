// Package notice implements a named, per-instance observer registry.
//
// Every object that publishes events owns one [EventNoticer] per event name,
// usually through a [Notification], which creates noticers lazily on first
// registration and tears them down once their last listener is removed.
//
// Listener variants:
//
//   - method listeners ([EventNoticer.On], [EventNoticer.Once]): a callback
//     bound to a scope, typically the receiver of a method value. The
//     (callback, scope) pair must be unique per noticer.
//   - static listeners ([EventNoticer.OnStatic], [EventNoticer.OnceStatic]):
//     a callback receiving a fixed data value. The (callback, data) pair must
//     be unique per noticer.
//   - lambda listeners ([EventNoticer.OnFunc], [EventNoticer.OnceFunc]):
//     an arbitrary closure, tagged with a caller supplied id used for removal.
//   - shell listeners ([EventNoticer.OnShell]): forward every event to another
//     noticer, preserving the identity of the original raiser. Bubbling is
//     built from these.
//
// Callback identity is the callback's code pointer, as reported by
// reflect.Value.Pointer, meaning two closures created from the same function
// literal compare equal. Distinguish them by scope or data.
//
// Listeners run synchronously, on the triggering goroutine, in registration
// order. Panics propagate to the caller of Trigger.
package notice
