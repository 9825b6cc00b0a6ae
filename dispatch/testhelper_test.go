package dispatch

import (
	"bytes"
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/joeycumines/go-uiloop/notice"
	"github.com/joeycumines/go-uiloop/runloop"
	"github.com/joeycumines/logiface"
	"github.com/joeycumines/stumpy"
)

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

// harness runs a dispatcher on a loop owned by the test goroutine. Jobs run
// only when flush is called.
type harness struct {
	t      *testing.T
	loop   *runloop.RunLoop
	d      *Dispatcher
	logs   *syncBuffer
	root   *Box
	events []string
}

func newHarness(t *testing.T, opts ...Option) *harness {
	t.Helper()
	logs := new(syncBuffer)
	logger := newTestLogger(logs)
	p, err := runloop.NewProcess(
		runloop.WithLogger(logger),
		runloop.WithJoinTimeout(2*time.Second),
	)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		p.Exit(0)
		if t.Failed() {
			t.Logf("logs:\n%s", logs.String())
		}
	})
	th := p.Current()
	t.Cleanup(th.Detach)

	d, err := New(th.Loop(), append([]Option{
		WithLogger(logger),
		WithDiagnosticRates(nil),
	}, opts...)...)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(d.Close)

	h := &harness{
		t:    t,
		loop: th.Loop(),
		d:    d,
		logs: logs,
		root: NewBox(`root`, Rect{Size: Vec2{100, 100}}),
	}
	d.SetRoot(h.root)
	return h
}

// flush runs every queued dispatch job.
func (h *harness) flush() {
	h.t.Helper()
	h.loop.Post(h.loop.Stop, 0)
	if err := h.loop.Run(context.Background(), -1); err != nil {
		h.t.Fatal(err)
	}
}

// box appends a new box to parent.
func (h *harness) box(parent *Box, name string, x, y, w, hgt float64) *Box {
	b := NewBox(name, Rect{Origin: Vec2{x, y}, Size: Vec2{w, hgt}})
	parent.Append(b)
	return b
}

// listen records the named events delivered to view, as "view:Name", with
// the status appended for highlighted events.
func (h *harness) listen(view *Box, names ...Name) {
	for _, name := range names {
		name := name
		view.Notification().OnFunc(name, func(e notice.Event) {
			s := fmt.Sprintf("%s:%s", view, name)
			if he, ok := e.(*HighlightedEvent); ok {
				s += ":" + he.Status.String()
			}
			h.events = append(h.events, s)
		}, 0)
	}
}

// take returns and resets the recorded events.
func (h *harness) take() []string {
	events := h.events
	h.events = nil
	return events
}

func touch(id uint32, x, y float64) []RawTouch {
	return []RawTouch{{ID: id, X: x, Y: y, Force: 1}}
}

func count(events []string, s string) (n int) {
	for _, e := range events {
		if e == s {
			n++
		}
	}
	return n
}

type fakeHost struct {
	nopHost
	backs int
}

func (f *fakeHost) Back() { f.backs++ }
