// Package dispatch delivers platform input to a view tree, as semantic UI
// events.
//
// A [Dispatcher] is fed raw input (touch points, mouse movement and
// buttons, key transitions, input method operations) from any goroutine,
// and runs each input as a job on the main [runloop.RunLoop], holding the UI
// lock. Jobs hit-test the tree topmost first, track per-view touch gestures
// and the hovered and pressed views, route keys to the focus view, and
// raise events through each view's [notice.Notification], bubbling from the
// target towards the root.
//
// The view tree itself is out of scope: it is consumed through the [View]
// interface, with [Box] as a minimal implementation.
package dispatch
