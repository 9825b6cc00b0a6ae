package runloop

import (
	"errors"
	"fmt"
)

var (
	// ErrLoopAlreadyRunning is returned when Run is called on a loop that is already running.
	ErrLoopAlreadyRunning = errors.New("runloop: loop is already running")

	// ErrWrongThread is returned when a loop operation restricted to the
	// owning thread is attempted from another goroutine.
	ErrWrongThread = errors.New("runloop: called from a goroutine other than the owning thread")

	// ErrThreadAborted is returned when an operation targets a thread that has
	// been aborted, or has ended.
	ErrThreadAborted = errors.New("runloop: thread aborted")

	// ErrProcessExiting is returned by operations refused because the process
	// exit protocol has started.
	ErrProcessExiting = errors.New("runloop: process is exiting")

	// ErrJoinSelf is returned when a thread attempts to join itself.
	ErrJoinSelf = errors.New("runloop: cannot join the calling thread")

	// ErrJoinTimeout is returned when Join gives up waiting.
	ErrJoinTimeout = errors.New("runloop: join timed out")

	// ErrUnknownThread is returned when a thread id is not registered.
	ErrUnknownThread = errors.New("runloop: unknown thread")

	// ErrLoopOutstanding is returned by Destroy while tasks, keep-alive guards,
	// or work items are still outstanding.
	ErrLoopOutstanding = errors.New("runloop: loop has outstanding tasks, guards, or work")

	// ErrLoopDestroyed is returned when operations are attempted on a destroyed loop.
	ErrLoopDestroyed = errors.New("runloop: loop has been destroyed")
)

// PanicError wraps a value recovered from a panicking task.
type PanicError struct {
	Value any
	Name  string
}

func (e PanicError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("runloop: %s panicked: %v", e.Name, e.Value)
	}
	return fmt.Sprintf("runloop: task panicked: %v", e.Value)
}

// Unwrap returns the panic value if it is an error, supporting [errors.Is]
// and [errors.As] through the cause chain.
func (e PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}
