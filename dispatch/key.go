package dispatch

// DispatchKeyboard reports a key transition.
func (d *Dispatcher) DispatchKeyboard(in KeyInput) {
	d.post(`keyboard`, func() {
		s := d.keyboard.decode(in)
		if s.down {
			d.keyDown(s)
		} else {
			d.keyUp(s)
		}
	})
}

// DispatchKeyboardClear resets the modifier state, e.g. when the window
// loses focus with a modifier held.
func (d *Dispatcher) DispatchKeyboardClear() {
	d.post(`keyboardclear`, d.keyboard.Clear)
}

// keyTarget is the focus view, or the root.
func (d *Dispatcher) keyTarget() View {
	if d.focus != nil && d.attached(d.focus) {
		return d.focus
	}
	return d.root
}

func (d *Dispatcher) newKeyEvent(view View, s keyState) *KeyEvent {
	return &KeyEvent{
		UIEvent:   newUIEvent(view),
		Keycode:   s.keycode,
		Keypress:  s.keypress,
		Modifiers: s.mods,
		Repeat:    s.repeat,
		Device:    s.device,
		Source:    s.source,
	}
}

func (d *Dispatcher) keyDown(s keyState) {
	view := d.keyTarget()
	if view == nil {
		return
	}
	e := d.newKeyEvent(view, s)
	if dir, ok := arrowDirection(s.keycode); ok {
		e.FocusMove = d.nextFocus(view, dir)
	}

	d.bubble(view, NameKeyDown, e)
	if !e.IsDefault() {
		return
	}
	if s.keycode == KeyEnter {
		e.ReturnValue |= ReturnBubble
		d.bubble(view, NameKeyEnter, e)
	}
	if s.keypress != 0 {
		e.ReturnValue |= ReturnBubble
		d.bubble(view, NameKeyPress, e)
	}
	if (s.keycode == KeyCenter || s.keycode == KeyEnter) && s.repeat == 0 {
		d.highlight(view, HighlightedDown)
	}
	if e.FocusMove != nil {
		d.setFocus(e.FocusMove)
	}
}

func (d *Dispatcher) keyUp(s keyState) {
	view := d.keyTarget()
	if view == nil {
		return
	}
	e := d.newKeyEvent(view, s)
	d.bubble(view, NameKeyUp, e)
	if !e.IsDefault() {
		return
	}
	center := view.Bounds().Center()
	switch s.keycode {
	case KeyBack:
		back := &ClickEvent{UIEvent: newUIEvent(view), Position: center, Type: ClickKeyboard, Count: 1}
		d.bubble(view, NameBack, back)
		if back.IsDefault() {
			d.host.Back()
		}
	case KeyCenter, KeyEnter:
		d.highlight(view, HighlightedHover)
		d.click(view, center, ClickKeyboard)
	}
}
