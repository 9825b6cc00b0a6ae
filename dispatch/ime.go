package dispatch

// TextInput returns the view currently receiving input method operations.
// Intended for dispatch jobs and listeners.
func (d *Dispatcher) TextInput() TextInput { return d.textInput }

// RefreshTextInput asks the host to reopen the input method for the current
// text input, without discarding its state, e.g. after the input changed
// its keyboard type.
func (d *Dispatcher) RefreshTextInput() {
	d.Sync(func() { d.setTextInput(d.textInput) })
}

// setTextInput makes input the text input. The input method is opened
// (cleared) or closed only when the input changes, and refreshed when the
// same input is set again.
func (d *Dispatcher) setTextInput(input TextInput) {
	if input != d.textInput {
		d.textInput = input
		if input == nil {
			d.host.IMEKeyboardClose()
			return
		}
		d.host.IMEKeyboardOpen(imeOptions(input, true))
		return
	}
	if input != nil {
		d.host.IMEKeyboardOpen(imeOptions(input, false))
	}
}

func imeOptions(input TextInput, clear bool) IMEOptions {
	return IMEOptions{
		Clear:  clear,
		Type:   input.InputKeyboardType(),
		Return: input.InputReturnType(),
		Spot:   input.InputSpotRect(),
	}
}

// UpdateSpotLocation tells the host where the caret of the current text
// input is, so the input method can position its candidate window.
func (d *Dispatcher) UpdateSpotLocation() {
	d.post(`imespot`, func() {
		if d.textInput != nil {
			d.host.IMEKeyboardSpotLocation(d.textInput.InputSpotRect().Origin)
		}
	})
}

// DispatchIMEInsert reports committed text.
func (d *Dispatcher) DispatchIMEInsert(text string) {
	d.post(`imeinsert`, func() {
		if d.textInput != nil {
			d.textInput.InputInsert(text)
		}
	})
}

// DispatchIMEDelete reports count characters deleted, negative counts
// deleting backwards.
func (d *Dispatcher) DispatchIMEDelete(count int) {
	d.post(`imedelete`, func() {
		if input := d.textInput; input != nil {
			input.InputDelete(count)
			d.host.IMEKeyboardCanBackspace(input.InputCanBackspace(), input.InputCanDelete())
		}
	})
}

// DispatchIMEMarked reports composing (marked) text.
func (d *Dispatcher) DispatchIMEMarked(text string) {
	d.post(`imemarked`, func() {
		if d.textInput != nil {
			d.textInput.InputMarked(text)
		}
	})
}

// DispatchIMEUnmark reports the end of composition, with the final text.
func (d *Dispatcher) DispatchIMEUnmark(text string) {
	d.post(`imeunmark`, func() {
		if d.textInput != nil {
			d.textInput.InputUnmark(text)
		}
	})
}

// DispatchIMEControl reports a control key from the input method, e.g.
// cursor movement.
func (d *Dispatcher) DispatchIMEControl(code KeyCode) {
	d.post(`imecontrol`, func() {
		if d.textInput != nil {
			d.textInput.InputControl(code)
		}
	})
}
