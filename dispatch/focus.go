package dispatch

import (
	"math"
)

// Direction is a focus traversal direction.
type Direction uint8

const (
	DirectionLeft Direction = iota + 1
	DirectionUp
	DirectionRight
	DirectionDown
)

func arrowDirection(code KeyCode) (Direction, bool) {
	switch code {
	case KeyLeft:
		return DirectionLeft, true
	case KeyUp:
		return DirectionUp, true
	case KeyRight:
		return DirectionRight, true
	case KeyDown:
		return DirectionDown, true
	default:
		return 0, false
	}
}

// FocusView returns the focus view. Intended for dispatch jobs and
// listeners.
func (d *Dispatcher) FocusView() View { return d.focus }

// Focus moves focus to view, raising blur on the previous focus view and
// focus on the new one. It returns false if view can't take focus, because
// it is not focusable, or not in the tree.
func (d *Dispatcher) Focus(view View) (ok bool) {
	if view == nil {
		return false
	}
	d.Sync(func() { ok = d.setFocus(view) })
	return ok
}

// Blur clears focus, moving it to the root if the root is focusable.
func (d *Dispatcher) Blur() {
	d.Sync(func() {
		if d.focus == nil {
			return
		}
		if d.root != nil && d.root != d.focus && d.setFocus(d.root) {
			return
		}
		old := d.focus
		d.focus = nil
		d.setTextInput(nil)
		if d.attached(old) {
			d.bubble(old, NameBlur, &FocusEvent{UIEvent: newUIEvent(old)})
			d.highlight(old, HighlightedNormal)
		}
	})
}

// MoveFocus moves focus in dir, from the focus view, returning whether
// focus changed.
func (d *Dispatcher) MoveFocus(dir Direction) (ok bool) {
	d.Sync(func() {
		from := d.keyTarget()
		if from == nil {
			return
		}
		if next := d.nextFocus(from, dir); next != nil {
			ok = d.setFocus(next)
		}
	})
	return ok
}

func (d *Dispatcher) setFocus(view View) bool {
	if view == d.focus {
		return true
	}
	if !view.Focusable() || !d.attached(view) {
		return false
	}
	old := d.focus
	d.focus = view

	input, _ := view.(TextInput)
	d.setTextInput(input)

	if old != nil && d.attached(old) {
		d.bubble(old, NameBlur, &FocusEvent{UIEvent: newUIEvent(old), Related: view})
		d.highlight(old, HighlightedNormal)
	}
	d.bubble(view, NameFocus, &FocusEvent{UIEvent: newUIEvent(view), Related: old})
	d.highlight(view, HighlightedHover)
	return true
}

// focusables collects the focusable views of the tree, in paint order.
func (d *Dispatcher) focusables() []View {
	var views []View
	var walk func(v View)
	walk = func(v View) {
		if !v.Visible() {
			return
		}
		if v.Focusable() {
			views = append(views, v)
		}
		for _, c := range v.Children() {
			walk(c)
		}
	}
	if d.root != nil {
		walk(d.root)
	}
	return views
}

// nextFocus finds the best focusable view in dir from view, by geometry,
// falling back to linear order when nothing lies in that direction.
func (d *Dispatcher) nextFocus(from View, dir Direction) View {
	candidates := d.focusables()
	if len(candidates) == 0 {
		return nil
	}
	source := from.Bounds()
	if !source.Empty() {
		var (
			best      View
			bestScore = math.MaxFloat64
		)
		for _, v := range candidates {
			if v == from {
				continue
			}
			target := v.Bounds()
			if target.Empty() || !inDirection(source, target, dir) {
				continue
			}
			if score := directionalScore(source, target, dir); score < bestScore {
				best, bestScore = v, score
			}
		}
		if best != nil {
			return best
		}
	}

	delta := 1
	if dir == DirectionUp || dir == DirectionLeft {
		delta = -1
	}
	current := -1
	for i, v := range candidates {
		if v == from {
			current = i
			break
		}
	}
	if current == -1 && delta < 0 {
		current = 0
	}
	next := wrapIndex(current+delta, len(candidates))
	if candidates[next] == from {
		return nil
	}
	return candidates[next]
}

func inDirection(source, target Rect, dir Direction) bool {
	s, t := source.Center(), target.Center()
	switch dir {
	case DirectionUp:
		return t.Y < s.Y
	case DirectionDown:
		return t.Y > s.Y
	case DirectionLeft:
		return t.X < s.X
	case DirectionRight:
		return t.X > s.X
	}
	return false
}

// directionalScore is lower for closer targets, weighting misalignment on
// the cross axis double.
func directionalScore(source, target Rect, dir Direction) float64 {
	s, t := source.Center(), target.Center()
	primary, cross := math.Abs(t.X-s.X), math.Abs(t.Y-s.Y)
	if dir == DirectionUp || dir == DirectionDown {
		primary, cross = cross, primary
	}
	return primary + cross*2
}

func wrapIndex(index, count int) int {
	index %= count
	if index < 0 {
		index += count
	}
	return index
}
