// Package runloop implements per-thread cooperative run loops.
//
// A [Process] is the explicit process-wide context: it registers threads
// (goroutines locked to OS threads, started by [Process.Spawn], or adopted),
// tracks the first loop, runs the background work pool, and owns the exit
// protocol. Each [Thread] hosts at most one [RunLoop], a single-threaded
// scheduler with an ordered task queue, a native wake primitive (an eventfd
// on linux), idle-timeout self-termination, and integration with external
// [EventSource] implementations. [KeepLoop] guards hold a loop alive, and
// scope a cancellable group of tasks.
//
// Cross-thread interaction is only ever: posting (or PostSync) onto a
// specific loop, pausing, resuming, aborting or joining threads, or
// offloading work whose completion is redelivered to the requesting loop.
//
// Failure taxonomy:
//
//   - programming-invariant violations (reentrant Run, joining self, ...)
//     are logged at crit and returned as errors, or panic when
//     [WithStrictInvariants] is enabled
//   - benign races (posting to an aborted loop, a guard outliving its loop,
//     cancelling a task that already ran) are tolerated no-ops, logged at
//     debug, rate limited per category
//   - refusals report a zero id
//
// Task panics are recovered and logged, they never stop the loop.
package runloop
