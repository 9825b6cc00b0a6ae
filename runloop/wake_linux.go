//go:build linux

package runloop

import (
	"sync"
	"sync/atomic"
	"time"
	"unsafe"

	"golang.org/x/sys/unix"
)

// eventfdWaker wakes a loop blocked in poll(2) on an eventfd.
type eventfdWaker struct {
	mu      sync.RWMutex
	// drained is a test hook, called after the eventfd is drained and
	// before the dedup flag is cleared
	drained func()
	fd      int
	pending atomic.Uint32
}

func newWaker() (waker, error) {
	fd, err := unix.Eventfd(0, unix.EFD_CLOEXEC|unix.EFD_NONBLOCK)
	if err != nil {
		return nil, err
	}
	return &eventfdWaker{fd: fd}, nil
}

func (w *eventfdWaker) wake() {
	// dedup: one outstanding token is enough
	if !w.pending.CompareAndSwap(0, 1) {
		return
	}
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.fd < 0 {
		return
	}
	// native endianness
	var one uint64 = 1
	buf := (*[8]byte)(unsafe.Pointer(&one))[:]
	if _, err := unix.Write(w.fd, buf); err != nil && err != unix.EAGAIN {
		w.pending.Store(0)
	}
}

func (w *eventfdWaker) wait(timeout time.Duration) {
	w.mu.RLock()
	fd := w.fd
	w.mu.RUnlock()
	if fd < 0 {
		return
	}
	fds := []unix.PollFd{{Fd: int32(fd), Events: unix.POLLIN}}
	n, err := unix.Poll(fds, timeoutMillis(timeout))
	if err != nil || n <= 0 {
		// EINTR and timeouts both fall back to the scheduler pass
		return
	}
	// drain before clearing the flag, a wake landing in between must not
	// have its token consumed while the flag stays set
	var buf [8]byte
	for {
		if _, err := unix.Read(fd, buf[:]); err != nil {
			break
		}
	}
	if w.drained != nil {
		w.drained()
	}
	w.pending.Store(0)
}

func (w *eventfdWaker) close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.fd < 0 {
		return nil
	}
	err := unix.Close(w.fd)
	w.fd = -1
	return err
}
