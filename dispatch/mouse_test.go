package dispatch

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/joeycumines/go-uiloop/notice"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var boundaryNames = []Name{NameMouseOver, NameMouseOut, NameMouseEnter, NameMouseLeave}

func TestDispatcher_Mouse_ParentToChild(t *testing.T) {
	h := newHarness(t)
	parent := h.box(h.root, `parent`, 0, 0, 60, 60)
	child := h.box(parent, `child`, 20, 20, 20, 20)
	h.listen(parent, boundaryNames...)
	h.listen(child, boundaryNames...)

	h.d.DispatchMouseMove(5, 5)
	h.flush()
	if diff := cmp.Diff([]string{`parent:MouseOver`, `parent:MouseEnter`}, h.take()); diff != "" {
		t.Errorf("unexpected events entering parent (-want +got):\n%s", diff)
	}

	h.d.DispatchMouseMove(25, 25)
	h.flush()
	want := []string{
		`parent:MouseOut`,
		`child:MouseOver`,
		`parent:MouseOver`,
	}
	if diff := cmp.Diff(want, h.take()); diff != "" {
		t.Errorf("unexpected events entering child (-want +got):\n%s", diff)
	}

	h.d.DispatchMouseMove(5, 5)
	h.flush()
	want = []string{
		`child:MouseOut`,
		`parent:MouseOut`,
		`child:MouseLeave`,
		`parent:MouseOver`,
	}
	if diff := cmp.Diff(want, h.take()); diff != "" {
		t.Errorf("unexpected events returning to parent (-want +got):\n%s", diff)
	}
}

func TestDispatcher_Mouse_Siblings(t *testing.T) {
	h := newHarness(t)
	a := h.box(h.root, `a`, 0, 0, 20, 20)
	b := h.box(h.root, `b`, 30, 0, 20, 20)
	h.listen(a, append(boundaryNames, NameHighlighted)...)
	h.listen(b, append(boundaryNames, NameHighlighted)...)

	h.d.DispatchMouseMove(5, 5)
	h.d.DispatchMouseMove(35, 5)
	h.flush()

	want := []string{
		`a:MouseOver`,
		`a:MouseEnter`,
		`a:Highlighted:hover`,
		`a:MouseOut`,
		`a:MouseLeave`,
		`a:Highlighted:normal`,
		`b:MouseOver`,
		`b:MouseEnter`,
		`b:Highlighted:hover`,
	}
	if diff := cmp.Diff(want, h.take()); diff != "" {
		t.Errorf("unexpected events (-want +got):\n%s", diff)
	}
}

func TestDispatcher_Mouse_MoveWithinView(t *testing.T) {
	h := newHarness(t)
	a := h.box(h.root, `a`, 0, 0, 20, 20)
	h.listen(a, NameMouseOver, NameMouseMove)

	h.d.DispatchMouseMove(5, 5)
	h.d.DispatchMouseMove(6, 6)
	h.flush()

	assert.Equal(t, []string{`a:MouseOver`, `a:MouseMove`, `a:MouseMove`}, h.take())
}

func TestDispatcher_Mouse_Click(t *testing.T) {
	h := newHarness(t)
	btn := h.box(h.root, `btn`, 10, 10, 20, 20)
	h.listen(btn, NameMouseDown, NameMouseUp, NameClick, NameHighlighted)

	var click *ClickEvent
	btn.Notification().OnFunc(NameClick, func(e notice.Event) { click = e.(*ClickEvent) }, 0)

	h.d.DispatchMouseMove(15, 15)
	h.d.DispatchMousePress(MouseLeft, true)
	h.d.DispatchMousePress(MouseLeft, false)
	h.flush()

	want := []string{
		`btn:Highlighted:hover`,
		`btn:MouseDown`,
		`btn:Highlighted:down`,
		`btn:MouseUp`,
		`btn:Highlighted:hover`,
		`btn:Click`,
	}
	if diff := cmp.Diff(want, h.take()); diff != "" {
		t.Errorf("unexpected events (-want +got):\n%s", diff)
	}
	require.NotNil(t, click)
	assert.Equal(t, ClickMouse, click.Type)
	assert.Equal(t, Vec2{15, 15}, click.Position)
}

func TestDispatcher_Mouse_NoClick(t *testing.T) {
	for _, tc := range []struct {
		name string
		run  func(h *harness, btn *Box)
	}{
		{`right button`, func(h *harness, btn *Box) {
			h.d.DispatchMouseMove(15, 15)
			h.d.DispatchMousePress(MouseRight, true)
			h.d.DispatchMousePress(MouseRight, false)
		}},
		{`released elsewhere`, func(h *harness, btn *Box) {
			h.d.DispatchMouseMove(15, 15)
			h.d.DispatchMousePress(MouseLeft, true)
			h.d.DispatchMouseMove(80, 80)
			h.d.DispatchMousePress(MouseLeft, false)
		}},
		{`default cancelled`, func(h *harness, btn *Box) {
			btn.Notification().OnFunc(NameMouseUp, func(e notice.Event) { e.(Event).UI().CancelDefault() }, 0)
			h.d.DispatchMouseMove(15, 15)
			h.d.DispatchMousePress(MouseLeft, true)
			h.d.DispatchMousePress(MouseLeft, false)
		}},
		{`view moved while pressed`, func(h *harness, btn *Box) {
			h.d.DispatchMouseMove(15, 15)
			h.d.DispatchMousePress(MouseLeft, true)
			h.flush()
			btn.SetRect(Rect{Origin: Vec2{5, 5}, Size: Vec2{20, 20}})
			h.d.DispatchMouseMove(16, 16)
			h.d.DispatchMousePress(MouseLeft, false)
		}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			h := newHarness(t)
			btn := h.box(h.root, `btn`, 10, 10, 20, 20)
			h.listen(btn, NameClick)
			tc.run(h, btn)
			h.flush()
			assert.Empty(t, h.take())
		})
	}
}

func TestDispatcher_Mouse_Wheel(t *testing.T) {
	h := newHarness(t)
	btn := h.box(h.root, `btn`, 10, 10, 20, 20)

	var deltas []Vec2
	btn.Notification().OnFunc(NameMouseWheel, func(e notice.Event) {
		deltas = append(deltas, e.(*WheelEvent).Delta)
	}, 0)

	// no hovered view yet
	h.d.DispatchMousePress(MouseWheelUp, true)
	h.d.DispatchMouseMove(15, 15)
	h.d.DispatchMousePress(MouseWheelUp, true)
	h.d.DispatchMousePress(MouseWheelUp, false)
	h.d.DispatchMousePress(MouseWheelRight, true)
	h.flush()

	assert.Equal(t, []Vec2{{0, wheelStep}, {-wheelStep, 0}}, deltas)
}

func TestDispatcher_Mouse_ViewRemoved(t *testing.T) {
	h := newHarness(t)
	btn := h.box(h.root, `btn`, 10, 10, 20, 20)
	h.listen(btn, NameMouseOut, NameMouseLeave)

	h.d.DispatchMouseMove(15, 15)
	h.d.DispatchMousePress(MouseLeft, true)
	h.flush()
	btn.Remove()
	h.d.ViewRemoved(btn)
	assert.Nil(t, h.d.mouse.view)
	assert.Nil(t, h.d.mouse.down)

	h.d.DispatchMouseMove(50, 50)
	h.flush()
	assert.Empty(t, h.take())
}
