package dispatch

import (
	"github.com/joeycumines/logiface"
)

// RawTouch is one touch point as reported by the platform, in platform
// pixels.
type RawTouch struct {
	X     float64
	Y     float64
	Force float64
	ID    uint32
}

// originTouch is the gesture state of the touches that started over one
// view.
type originTouch struct {
	view     View
	touches  map[uint32]*TouchPoint
	startPos Vec2
	// clickDown is set while the view is highlighted as pressed
	clickDown bool
	// clickInvalid is set once the gesture moved too far to be a click
	clickInvalid bool
}

func (o *originTouch) anyClickIn() bool {
	for _, t := range o.touches {
		if t.ClickIn {
			return true
		}
	}
	return false
}

// DispatchTouchStart reports new touch points.
func (d *Dispatcher) DispatchTouchStart(points []RawTouch) {
	in := d.touchPoints(points)
	if len(in) == 0 {
		return
	}
	d.post(`touchstart`, func() { d.touchStart(in) })
}

// DispatchTouchMove reports movement of active touch points.
func (d *Dispatcher) DispatchTouchMove(points []RawTouch) {
	in := d.touchPoints(points)
	if len(in) == 0 {
		return
	}
	d.post(`touchmove`, func() { d.touchMove(in) })
}

// DispatchTouchEnd reports touch points lifted.
func (d *Dispatcher) DispatchTouchEnd(points []RawTouch) {
	in := d.touchPoints(points)
	if len(in) == 0 {
		return
	}
	d.post(`touchend`, func() { d.touchEnd(in, false) })
}

// DispatchTouchCancel reports touch points cancelled by the platform.
func (d *Dispatcher) DispatchTouchCancel(points []RawTouch) {
	in := d.touchPoints(points)
	if len(in) == 0 {
		return
	}
	d.post(`touchcancel`, func() { d.touchEnd(in, true) })
}

// touchPoints converts platform points to logical units, dropping malformed
// ones.
func (d *Dispatcher) touchPoints(points []RawTouch) []TouchPoint {
	out := make([]TouchPoint, 0, len(points))
	seen := make(map[uint32]struct{}, len(points))
	for _, p := range points {
		pos := Vec2{p.X, p.Y}.Scale(1 / d.scale)
		if !pos.Finite() {
			d.limited(`malformed-touch`, logiface.LevelWarning).
				Uint64(`id`, uint64(p.ID)).
				Log(`dropped touch point with invalid position`)
			continue
		}
		if _, ok := seen[p.ID]; ok {
			d.limited(`malformed-touch`, logiface.LevelWarning).
				Uint64(`id`, uint64(p.ID)).
				Log(`dropped duplicate touch point`)
			continue
		}
		seen[p.ID] = struct{}{}
		out = append(out, TouchPoint{ID: p.ID, Position: pos, Force: p.Force})
	}
	return out
}

func (d *Dispatcher) touchStart(in []TouchPoint) {
	if d.root == nil {
		return
	}
	fresh := in[:0:0]
	for _, t := range in {
		if _, ok := d.active[t.ID]; ok {
			d.limited(`malformed-touch`, logiface.LevelWarning).
				Uint64(`id`, uint64(t.ID)).
				Log(`dropped start of already active touch`)
			continue
		}
		fresh = append(fresh, t)
	}
	d.hitTouches(d.root, fresh)
}

// hitTouches assigns points to the topmost receiving views under them,
// walking children last to first. It returns the points left unassigned.
func (d *Dispatcher) hitTouches(view View, in []TouchPoint) []TouchPoint {
	if len(in) == 0 || !view.Visible() {
		return in
	}
	children := view.Children()
	if len(children) != 0 {
		if view.Clip() {
			var inside, outside []TouchPoint
			for _, t := range in {
				if view.Overlap(t.Position) {
					inside = append(inside, t)
				} else {
					outside = append(outside, t)
				}
			}
			for i := len(children) - 1; i >= 0 && len(inside) != 0; i-- {
				inside = d.hitTouches(children[i], inside)
			}
			inside = d.consumeTouches(view, inside)
			return append(outside, inside...)
		}
		for i := len(children) - 1; i >= 0 && len(in) != 0; i-- {
			in = d.hitTouches(children[i], in)
		}
	}
	return d.consumeTouches(view, in)
}

// consumeTouches takes the points over view, starting or extending its
// gesture.
func (d *Dispatcher) consumeTouches(view View, in []TouchPoint) []TouchPoint {
	if len(in) == 0 || !view.Receive() {
		return in
	}
	var (
		taken []TouchPoint
		rest  = in[:0]
	)
	for _, t := range in {
		if !view.Overlap(t.Position) {
			rest = append(rest, t)
			continue
		}
		t.Start = t.Position
		t.View = view
		t.ClickIn = true
		taken = append(taken, t)
	}
	if len(taken) == 0 {
		return rest
	}

	o := d.origins[view]
	if o == nil {
		o = &originTouch{
			view:     view,
			touches:  make(map[uint32]*TouchPoint),
			startPos: view.Position(),
		}
		d.origins[view] = o
	}
	for i := range taken {
		// a gesture invalidated by earlier touches stays invalid
		taken[i].ClickIn = !o.clickInvalid
		t := taken[i]
		o.touches[t.ID] = &t
		d.active[t.ID] = view
	}

	d.bubble(view, NameTouchStart, &TouchEvent{UIEvent: newUIEvent(view), Touches: taken})

	if !o.clickDown && !o.clickInvalid {
		o.clickDown = true
		d.highlight(view, HighlightedDown)
	}
	return rest
}

// groupTouches collects the active points of in by the view they belong to,
// preserving first appearance order.
func (d *Dispatcher) groupTouches(in []TouchPoint, op string) ([]*originTouch, map[*originTouch][]TouchPoint) {
	var order []*originTouch
	byOrigin := make(map[*originTouch][]TouchPoint)
	for _, t := range in {
		view, ok := d.active[t.ID]
		var o *originTouch
		if ok {
			o = d.origins[view]
		}
		if o == nil {
			d.limited(`unknown-touch`, logiface.LevelDebug).
				Uint64(`id`, uint64(t.ID)).
				Str(`op`, op).
				Log(`dropped unknown touch point`)
			continue
		}
		if _, ok := byOrigin[o]; !ok {
			order = append(order, o)
		}
		byOrigin[o] = append(byOrigin[o], t)
	}
	return order, byOrigin
}

func (d *Dispatcher) touchMove(in []TouchPoint) {
	order, byOrigin := d.groupTouches(in, `move`)
	for _, o := range order {
		view := o.view
		if !d.attached(view) {
			d.dropOrigin(o, `move`)
			continue
		}

		wasInvalid := o.clickInvalid
		if !o.clickInvalid && view.Position().Sub(o.startPos).Len() > d.threshold {
			o.clickInvalid = true
		}
		changed := make([]TouchPoint, 0, len(byOrigin[o]))
		for _, p := range byOrigin[o] {
			t := o.touches[p.ID]
			t.Position = p.Position
			t.Force = p.Force
			if !o.clickInvalid && t.Position.Sub(t.Start).Len() > d.threshold {
				o.clickInvalid = true
			}
			changed = append(changed, *t)
		}
		for _, t := range o.touches {
			t.ClickIn = !o.clickInvalid && view.Overlap(t.Position)
		}
		for i := range changed {
			changed[i].ClickIn = o.touches[changed[i].ID].ClickIn
		}

		d.bubble(view, NameTouchMove, &TouchEvent{UIEvent: newUIEvent(view), Touches: changed})

		switch {
		case o.clickInvalid:
			if !wasInvalid && o.clickDown {
				o.clickDown = false
				d.highlight(view, d.hoverOrNormal(view))
			}
		case o.anyClickIn():
			if !o.clickDown {
				o.clickDown = true
				d.highlight(view, HighlightedDown)
			}
		case o.clickDown:
			o.clickDown = false
			d.highlight(view, d.hoverOrNormal(view))
		}
	}
}

func (d *Dispatcher) touchEnd(in []TouchPoint, cancel bool) {
	op, name := `end`, NameTouchEnd
	if cancel {
		op, name = `cancel`, NameTouchCancel
	}
	order, byOrigin := d.groupTouches(in, op)
	for _, o := range order {
		view := o.view
		changed := make([]TouchPoint, 0, len(byOrigin[o]))
		for _, p := range byOrigin[o] {
			t := o.touches[p.ID]
			t.Position = p.Position
			t.Force = p.Force
			t.ClickIn = !o.clickInvalid && view.Overlap(t.Position)
			changed = append(changed, *t)
			delete(o.touches, p.ID)
			delete(d.active, p.ID)
		}
		ended := len(o.touches) == 0
		if ended {
			delete(d.origins, view)
		}

		if !d.attached(view) {
			if ended {
				d.limited(`detached-view`, logiface.LevelError).
					Str(`op`, op).
					Log(`touch gesture ended on a detached view`)
			}
			continue
		}

		e := &TouchEvent{UIEvent: newUIEvent(view), Touches: changed}
		d.bubble(view, name, e)

		if !ended {
			continue
		}
		var clickIn *TouchPoint
		for i := range changed {
			if changed[i].ClickIn {
				clickIn = &changed[i]
				break
			}
		}
		if o.clickDown {
			d.highlight(view, d.hoverOrNormal(view))
		}
		if clickIn != nil && !cancel && e.IsDefault() && view.Visible() {
			d.click(view, clickIn.Position, ClickTouch)
		}
	}
}

// dropOrigin abandons the gesture of a view no longer in the tree.
func (d *Dispatcher) dropOrigin(o *originTouch, op string) {
	for id := range o.touches {
		delete(d.active, id)
	}
	delete(d.origins, o.view)
	d.limited(`detached-view`, logiface.LevelError).
		Str(`op`, op).
		Log(`dropped touch gesture on a detached view`)
}
