package dispatch

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/joeycumines/go-uiloop/notice"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFocusGrid(h *harness) (a, b, c *Box) {
	a = h.box(h.root, `a`, 0, 0, 10, 10)
	b = h.box(h.root, `b`, 20, 0, 10, 10)
	c = h.box(h.root, `c`, 0, 20, 10, 10)
	for _, v := range []*Box{a, b, c} {
		v.SetFocusable(true)
	}
	return a, b, c
}

func TestDispatcher_Focus_Arrows(t *testing.T) {
	h := newHarness(t)
	a, b, c := newFocusGrid(h)
	require.True(t, h.d.Focus(a))
	for _, v := range []*Box{a, b, c} {
		h.listen(v, NameFocus, NameBlur, NameHighlighted)
	}

	var moves []View
	h.root.Notification().OnFunc(NameKeyDown, func(e notice.Event) {
		moves = append(moves, e.(*KeyEvent).FocusMove)
	}, 0)

	for _, code := range []int{x11Right, x11Down, x11Left} {
		h.d.DispatchKeyboard(KeyInput{Code: code, Down: true})
		h.d.DispatchKeyboard(KeyInput{Code: code})
	}
	h.flush()

	// left of c has nothing, so focus moves back in linear order
	assert.Equal(t, []View{b, c, b}, moves)
	assert.Same(t, b, h.d.FocusView())
	want := []string{
		`a:Blur`, `a:Highlighted:normal`, `b:Focus`, `b:Highlighted:hover`,
		`b:Blur`, `b:Highlighted:normal`, `c:Focus`, `c:Highlighted:hover`,
		`c:Blur`, `c:Highlighted:normal`, `b:Focus`, `b:Highlighted:hover`,
	}
	if diff := cmp.Diff(want, h.take()); diff != "" {
		t.Errorf("unexpected events (-want +got):\n%s", diff)
	}
}

func TestDispatcher_Focus_ListenerRedirects(t *testing.T) {
	h := newHarness(t)
	a, _, c := newFocusGrid(h)
	require.True(t, h.d.Focus(a))
	a.Notification().OnFunc(NameKeyDown, func(e notice.Event) { e.(*KeyEvent).FocusMove = c }, 0)

	h.d.DispatchKeyboard(KeyInput{Code: x11Right, Down: true})
	h.flush()

	assert.Same(t, c, h.d.FocusView())
}

func TestDispatcher_Focus_Rules(t *testing.T) {
	h := newHarness(t)
	a, b, _ := newFocusGrid(h)
	plain := h.box(h.root, `plain`, 50, 50, 10, 10)
	detached := NewBox(`detached`, Rect{Size: Vec2{10, 10}})
	detached.SetFocusable(true)

	assert.False(t, h.d.Focus(plain), "not focusable")
	assert.False(t, h.d.Focus(detached), "not in the tree")
	assert.False(t, h.d.Focus(nil))
	assert.Nil(t, h.d.FocusView())

	require.True(t, h.d.Focus(a))
	h.listen(a, NameFocus, NameBlur)
	assert.True(t, h.d.Focus(a), "already focused")
	assert.Empty(t, h.take())

	var related View
	b.Notification().OnFunc(NameFocus, func(e notice.Event) { related = e.(*FocusEvent).Related }, 0)
	require.True(t, h.d.Focus(b))
	assert.Same(t, a, related)
	assert.Equal(t, []string{`a:Blur`}, h.take())

	assert.True(t, h.d.MoveFocus(DirectionLeft))
	assert.Same(t, a, h.d.FocusView())
}

func TestDispatcher_Blur(t *testing.T) {
	h := newHarness(t)
	a, _, _ := newFocusGrid(h)
	require.True(t, h.d.Focus(a))
	h.listen(a, NameBlur)

	h.d.Blur()
	assert.Nil(t, h.d.FocusView())
	assert.Equal(t, []string{`a:Blur`}, h.take())
	h.d.Blur()
	assert.Empty(t, h.take())

	// a focusable root takes focus instead
	h.root.SetFocusable(true)
	require.True(t, h.d.Focus(a))
	h.d.Blur()
	assert.Same(t, h.root, h.d.FocusView())
}

func TestDispatcher_Focus_ViewRemoved(t *testing.T) {
	h := newHarness(t)
	parent := h.box(h.root, `parent`, 0, 0, 50, 50)
	a := h.box(parent, `a`, 0, 0, 10, 10)
	a.SetFocusable(true)
	require.True(t, h.d.Focus(a))

	parent.Remove()
	h.d.ViewRemoved(parent)
	assert.Nil(t, h.d.FocusView())

	// keys fall back to the root
	h.listen(h.root, NameKeyDown)
	h.d.DispatchKeyboard(KeyInput{Code: x11A, Down: true})
	h.flush()
	assert.Equal(t, []string{`root:KeyDown`}, h.take())
}

func TestDispatcher_SetRoot(t *testing.T) {
	h := newHarness(t)
	a, _, _ := newFocusGrid(h)
	require.True(t, h.d.Focus(a))
	h.d.DispatchTouchStart(touch(1, 5, 5))
	h.d.DispatchMouseMove(5, 5)
	h.flush()
	require.Len(t, h.d.origins, 1)

	next := NewBox(`next`, Rect{Size: Vec2{100, 100}})
	h.d.SetRoot(next)
	assert.Same(t, next, h.d.Root())
	assert.Nil(t, h.d.FocusView())
	assert.Empty(t, h.d.origins)
	assert.Empty(t, h.d.active)
	assert.Nil(t, h.d.mouse.view)
}

func TestNextFocus_Geometry(t *testing.T) {
	h := newHarness(t)
	// a row, with an offset view below the middle
	left := h.box(h.root, `left`, 0, 0, 10, 10)
	mid := h.box(h.root, `mid`, 30, 0, 10, 10)
	right := h.box(h.root, `right`, 60, 0, 10, 10)
	below := h.box(h.root, `below`, 35, 40, 10, 10)
	far := h.box(h.root, `far`, 0, 80, 10, 10)
	for _, v := range []*Box{left, mid, right, below, far} {
		v.SetFocusable(true)
	}

	for _, tc := range []struct {
		from *Box
		dir  Direction
		want *Box
	}{
		{mid, DirectionLeft, left},
		{mid, DirectionRight, right},
		{mid, DirectionDown, below},
		{left, DirectionDown, far},
		{below, DirectionUp, mid},
		// nothing to the right of right: linear order wraps to the next
		{right, DirectionRight, below},
		{left, DirectionUp, far},
	} {
		assert.Same(t, tc.want, h.d.nextFocus(tc.from, tc.dir), "%s %d", tc.from, tc.dir)
	}
}
