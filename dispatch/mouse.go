package dispatch

import (
	"github.com/joeycumines/logiface"
)

// wheelStep is the scroll distance of one wheel tick, in logical units.
const wheelStep = 10

// mouseHandle tracks the hovered and pressed views.
type mouseHandle struct {
	view        View
	down        View
	downViewPos Vec2
	position    Vec2
}

// DispatchMouseMove reports the pointer position, in platform pixels.
func (d *Dispatcher) DispatchMouseMove(x, y float64) {
	pos := Vec2{x, y}.Scale(1 / d.scale)
	if !pos.Finite() {
		d.limited(`malformed-mouse`, logiface.LevelWarning).Log(`dropped mouse move with invalid position`)
		return
	}
	d.post(`mousemove`, func() {
		d.mouse.position = pos
		if view := d.hitView(pos); view != nil {
			d.mouseMove(view, pos)
		}
	})
}

// DispatchMousePress reports a button transition, or a wheel tick (on down
// only). Buttons act at the last reported pointer position.
func (d *Dispatcher) DispatchMousePress(code KeyCode, down bool) {
	switch code {
	case MouseLeft, MouseCenter, MouseRight:
		d.post(`mousepress`, func() {
			pos := d.mouse.position
			if view := d.hitView(pos); view != nil {
				d.mousePress(view, pos, code, down)
			}
		})
	case MouseWheelUp, MouseWheelDown, MouseWheelLeft, MouseWheelRight:
		if !down {
			return
		}
		d.post(`mousewheel`, func() { d.mouseWheel(code) })
	default:
		d.limited(`malformed-mouse`, logiface.LevelWarning).
			Str(`code`, code.String()).
			Log(`dropped press of unknown mouse button`)
	}
}

// hitView returns the topmost receiving view under pos, or the root.
func (d *Dispatcher) hitView(pos Vec2) View {
	if d.root == nil {
		return nil
	}
	if v := findReceiveView(d.root, pos); v != nil {
		return v
	}
	return d.root
}

func findReceiveView(view View, pos Vec2) View {
	if !view.Visible() {
		return nil
	}
	children := view.Children()
	if view.Clip() && len(children) != 0 && !view.Overlap(pos) {
		return nil
	}
	for i := len(children) - 1; i >= 0; i-- {
		if v := findReceiveView(children[i], pos); v != nil {
			return v
		}
	}
	if view.Receive() && view.Overlap(pos) {
		return view
	}
	return nil
}

func (d *Dispatcher) newMouseEvent(view View, pos Vec2, code KeyCode) *MouseEvent {
	return &MouseEvent{
		UIEvent:   newUIEvent(view),
		Position:  pos,
		Keycode:   code,
		Modifiers: d.keyboard.Modifiers(),
	}
}

func (d *Dispatcher) mouseMove(view View, pos Vec2) {
	if down := d.mouse.down; down != nil {
		if down.Position().Sub(d.mouse.downViewPos).Len() > d.threshold {
			// the pressed view moved, e.g. scrolled, so the press is no click
			if view == down {
				d.highlight(down, HighlightedHover)
			}
			d.mouse.down = nil
		}
	}

	old := d.mouse.view
	if old == view {
		d.bubble(view, NameMouseMove, d.newMouseEvent(view, pos, KeyUnknown))
		return
	}
	d.mouse.view = view

	if old != nil && d.attached(old) {
		e := d.newMouseEvent(old, pos, KeyUnknown)
		d.bubble(old, NameMouseOut, e)
		if e.IsDefault() {
			// moving into a descendant stays inside old
			if !IsAncestor(old, view) {
				d.bubble(old, NameMouseLeave, d.newMouseEvent(old, pos, KeyUnknown))
			}
			d.highlight(old, HighlightedNormal)
		}
	}

	e := d.newMouseEvent(view, pos, KeyUnknown)
	d.bubble(view, NameMouseOver, e)
	if e.IsDefault() {
		if old == nil || (!IsAncestor(old, view) && !IsAncestor(view, old)) {
			d.bubble(view, NameMouseEnter, d.newMouseEvent(view, pos, KeyUnknown))
		}
		status := HighlightedHover
		if down := d.mouse.down; down != nil && (view == down || IsAncestor(view, down)) {
			status = HighlightedDown
		}
		d.highlight(view, status)
	}
	d.bubble(view, NameMouseMove, d.newMouseEvent(view, pos, KeyUnknown))
}

func (d *Dispatcher) mousePress(view View, pos Vec2, code KeyCode, down bool) {
	if d.mouse.view != view {
		d.mouseMove(view, pos)
	}
	pressed := d.mouse.down
	e := d.newMouseEvent(view, pos, code)
	if down {
		d.mouse.down = view
		d.mouse.downViewPos = view.Position()
		d.bubble(view, NameMouseDown, e)
	} else {
		d.mouse.down = nil
		d.bubble(view, NameMouseUp, e)
	}

	if code != MouseLeft || !e.IsDefault() {
		return
	}
	if down {
		d.highlight(view, HighlightedDown)
		return
	}
	d.highlight(view, HighlightedHover)
	if pressed != nil && (view == pressed || IsAncestor(view, pressed)) {
		d.click(view, pos, ClickMouse)
	}
}

func (d *Dispatcher) mouseWheel(code KeyCode) {
	view := d.mouse.view
	if view == nil {
		return
	}
	var delta Vec2
	switch code {
	case MouseWheelUp:
		delta = Vec2{0, wheelStep}
	case MouseWheelDown:
		delta = Vec2{0, -wheelStep}
	case MouseWheelLeft:
		delta = Vec2{wheelStep, 0}
	case MouseWheelRight:
		delta = Vec2{-wheelStep, 0}
	}
	d.bubble(view, NameMouseWheel, &WheelEvent{
		MouseEvent: *d.newMouseEvent(view, d.mouse.position, code),
		Delta:      delta,
	})
}
