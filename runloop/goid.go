package runloop

import (
	"runtime"
)

// getGoroutineID returns the current goroutine's ID, parsed from the
// "goroutine N [...]" header of runtime.Stack.
func getGoroutineID() uint64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	var id uint64
	for i := len("goroutine "); i < n; i++ {
		if buf[i] >= '0' && buf[i] <= '9' {
			id = id*10 + uint64(buf[i]-'0')
		} else {
			break
		}
	}
	return id
}
