// Package platform carries raw input from a platform's native event queue
// into a [runloop.RunLoop].
//
// Native callbacks fire on their own goroutines. Each is converted to an
// [Event] and sent on a channel, which a [ChannelSource], registered with
// the main loop, receives in batches and hands to a [dispatch.Dispatcher].
package platform
