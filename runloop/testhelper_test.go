package runloop

import (
	"bytes"
	"context"
	"sync"
	"testing"
	"time"

	"github.com/joeycumines/logiface"
	"github.com/joeycumines/stumpy"
)

// syncBuffer is a goroutine safe log sink.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func newTestLogger(w *syncBuffer) *logiface.Logger[logiface.Event] {
	return stumpy.L.New(
		stumpy.L.WithStumpy(stumpy.WithWriter(w)),
		stumpy.L.WithLevel(logiface.LevelDebug),
	).Logger()
}

// newTestProcess returns a process logging to the returned buffer, exited on
// test cleanup.
func newTestProcess(t *testing.T, opts ...ProcessOption) (*Process, *syncBuffer) {
	t.Helper()
	logs := new(syncBuffer)
	p, err := NewProcess(append([]ProcessOption{
		WithLogger(newTestLogger(logs)),
		WithJoinTimeout(2 * time.Second),
		WithDiagnosticRates(nil),
	}, opts...)...)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		p.Exit(0)
		if t.Failed() {
			t.Logf("logs:\n%s", logs.String())
		}
	})
	return p, logs
}

// spawnLoop starts a thread running its loop with idleTimeout. The loop is
// held alive by a guard until release is called.
func spawnLoop(t *testing.T, p *Process, name string, idleTimeout time.Duration) (l *RunLoop, release func(), result <-chan error) {
	t.Helper()
	loopCh := make(chan *RunLoop, 1)
	keepCh := make(chan *KeepLoop, 1)
	errCh := make(chan error, 1)
	id := p.Spawn(name, func(th *Thread) {
		l := th.Loop()
		keepCh <- l.KeepAlive(`test`, false)
		loopCh <- l
		errCh <- l.Run(context.Background(), idleTimeout)
	})
	if id == 0 {
		t.Fatal("spawn refused")
	}
	l = <-loopCh
	k := <-keepCh
	return l, k.Release, errCh
}

func waitErr(t *testing.T, ch <-chan error, timeout time.Duration) error {
	t.Helper()
	select {
	case err := <-ch:
		return err
	case <-time.After(timeout):
		t.Fatal("timed out waiting for result")
		return nil
	}
}

func waitClosed(t *testing.T, ch <-chan struct{}, timeout time.Duration) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(timeout):
		t.Fatal("timed out waiting for channel close")
	}
}
