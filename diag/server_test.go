package diag

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/joeycumines/go-uiloop/dispatch"
	"github.com/joeycumines/go-uiloop/runloop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	p    *runloop.Process
	main *runloop.Thread
	d    *dispatch.Dispatcher
	s    *Server
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	p, err := runloop.NewProcess()
	require.NoError(t, err)
	t.Cleanup(func() { p.Exit(0) })
	main := p.Current()
	t.Cleanup(main.Detach)
	d, err := dispatch.New(main.Loop())
	require.NoError(t, err)
	t.Cleanup(d.Close)
	return &fixture{p: p, main: main, d: d, s: New(p, d, nil)}
}

func (f *fixture) get(t *testing.T, path string, v any) int {
	t.Helper()
	rec := httptest.NewRecorder()
	f.s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	if v != nil {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
	}
	return rec.Code
}

func TestServer_Healthz(t *testing.T) {
	f := newFixture(t)
	var h health
	require.Equal(t, http.StatusOK, f.get(t, "/healthz", &h))
	assert.Equal(t, "ok", h.Status)
	assert.Equal(t, f.p.ID().String(), h.Process)
	assert.Equal(t, 1, h.Threads)

	f.p.Exit(0)
	require.Equal(t, http.StatusServiceUnavailable, f.get(t, "/healthz", &h))
	assert.Equal(t, "exiting", h.Status)
}

func TestServer_Threads(t *testing.T) {
	f := newFixture(t)
	f.main.Loop().Post(func() {}, time.Hour)

	var infos []runloop.ThreadInfo
	require.Equal(t, http.StatusOK, f.get(t, "/threads", &infos))
	require.Len(t, infos, 1)
	assert.Equal(t, f.main.ID(), infos[0].ID)
	require.NotNil(t, infos[0].Loop)
	assert.Equal(t, 1, infos[0].Loop.Queued)
	assert.Equal(t, 1, infos[0].Loop.Guards, "the dispatcher's guard")

	var info runloop.ThreadInfo
	require.Equal(t, http.StatusOK, f.get(t, "/threads/"+strconv.FormatUint(uint64(f.main.ID()), 10), &info))
	assert.True(t, info.Adopted)

	var e map[string]string
	assert.Equal(t, http.StatusNotFound, f.get(t, "/threads/999", &e))
	assert.Equal(t, http.StatusBadRequest, f.get(t, "/threads/main", &e))
	assert.Equal(t, "invalid thread id", e["error"])
}

func TestServer_Tree(t *testing.T) {
	f := newFixture(t)
	var e map[string]string
	assert.Equal(t, http.StatusNotFound, f.get(t, "/tree", &e))

	root := dispatch.NewBox(`root`, dispatch.Rect{Size: dispatch.Vec2{X: 100, Y: 50}})
	button := dispatch.NewBox(`button`, dispatch.Rect{Origin: dispatch.Vec2{X: 10, Y: 10}, Size: dispatch.Vec2{X: 20, Y: 10}})
	button.SetFocusable(true)
	hidden := dispatch.NewBox(`hidden`, dispatch.Rect{Size: dispatch.Vec2{X: 1, Y: 1}})
	hidden.SetVisible(false)
	root.Append(button)
	root.Append(hidden)
	f.d.SetRoot(root)
	require.True(t, f.d.Focus(button))

	var node ViewNode
	require.Equal(t, http.StatusOK, f.get(t, "/tree", &node))
	assert.Equal(t, `root`, node.Name)
	assert.Equal(t, SafeFloat(50), node.Bounds.Height)
	require.Len(t, node.Children, 2)
	assert.True(t, node.Children[0].Focused)
	assert.True(t, node.Children[0].Focusable)
	assert.False(t, node.Children[1].Visible)
}

func TestSafeFloat(t *testing.T) {
	for v, want := range map[float64]string{
		1.5:          `1.5`,
		math.Inf(1):  `"Infinity"`,
		math.Inf(-1): `"-Infinity"`,
	} {
		b, err := json.Marshal(SafeFloat(v))
		require.NoError(t, err)
		assert.Equal(t, want, string(b))
	}
	b, err := json.Marshal(SafeFloat(math.NaN()))
	require.NoError(t, err)
	assert.Equal(t, `"NaN"`, string(b))
}

func TestServer_StartClose(t *testing.T) {
	f := newFixture(t)
	addr, err := f.s.Start("127.0.0.1:0")
	require.NoError(t, err)
	_, err = f.s.Start("127.0.0.1:0")
	assert.Error(t, err)

	resp, err := http.Get(fmt.Sprintf("http://%s/healthz", addr))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, f.s.Close(ctx))
	require.NoError(t, f.s.Close(ctx))
	_, err = http.Get(fmt.Sprintf("http://%s/healthz", addr))
	assert.Error(t, err)
}
