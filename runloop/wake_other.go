//go:build !linux

package runloop

func newWaker() (waker, error) {
	return newChanWaker(), nil
}
