package main

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/joeycumines/go-uiloop/dispatch"
	"github.com/joeycumines/go-uiloop/platform"
	"github.com/joeycumines/logiface"
)

// terminalKeyTable maps bubbletea key types, reported as platform key codes
// for keys that don't produce text. Escape acts as the back key.
func terminalKeyTable() dispatch.KeyTable {
	t := dispatch.KeyTable{
		int(tea.KeyUp):        dispatch.KeyUp,
		int(tea.KeyDown):      dispatch.KeyDown,
		int(tea.KeyLeft):      dispatch.KeyLeft,
		int(tea.KeyRight):     dispatch.KeyRight,
		int(tea.KeyEnter):     dispatch.KeyEnter,
		int(tea.KeyTab):       dispatch.KeyTab,
		int(tea.KeyBackspace): dispatch.KeyBackSpace,
		int(tea.KeyDelete):    dispatch.KeyDelete,
		int(tea.KeyEsc):       dispatch.KeyBack,
		int(tea.KeyHome):      dispatch.KeyHome,
		int(tea.KeyEnd):       dispatch.KeyEnd,
		int(tea.KeyPgUp):      dispatch.KeyPageUp,
		int(tea.KeyPgDown):    dispatch.KeyPageDown,
		int(tea.KeyInsert):    dispatch.KeyInsert,
	}
	for i, k := range []tea.KeyType{
		tea.KeyF1, tea.KeyF2, tea.KeyF3, tea.KeyF4, tea.KeyF5, tea.KeyF6,
		tea.KeyF7, tea.KeyF8, tea.KeyF9, tea.KeyF10, tea.KeyF11, tea.KeyF12,
	} {
		t[int(k)] = dispatch.KeyF1 + dispatch.KeyCode(i)
	}
	return t
}

// translateKey converts a key message into platform events. Terminals only
// report presses, so each is a down and up pair.
func translateKey(msg tea.KeyMsg) []platform.Event {
	var inputs []dispatch.KeyInput
	switch msg.Type {
	case tea.KeyRunes:
		for _, r := range msg.Runes {
			inputs = append(inputs, dispatch.KeyInput{Code: int(r), ASCII: true})
		}
	case tea.KeySpace:
		inputs = append(inputs, dispatch.KeyInput{Code: ' ', ASCII: true})
	default:
		inputs = append(inputs, dispatch.KeyInput{Code: int(msg.Type)})
	}
	events := make([]platform.Event, 0, len(inputs)*2)
	for _, in := range inputs {
		in.Down = true
		events = append(events, platform.Keyboard(in))
		in.Down = false
		events = append(events, platform.Keyboard(in))
	}
	return events
}

// mouseTranslator converts mouse messages into platform events. Releases
// reported without a button apply to the last pressed one.
type mouseTranslator struct {
	pressed dispatch.KeyCode
}

func (m *mouseTranslator) translate(msg tea.MouseMsg) []platform.Event {
	move := platform.MouseMove(float64(msg.X), float64(msg.Y))
	switch msg.Button {
	case tea.MouseButtonWheelUp:
		return []platform.Event{move, platform.MousePress(dispatch.MouseWheelUp, true)}
	case tea.MouseButtonWheelDown:
		return []platform.Event{move, platform.MousePress(dispatch.MouseWheelDown, true)}
	case tea.MouseButtonWheelLeft:
		return []platform.Event{move, platform.MousePress(dispatch.MouseWheelLeft, true)}
	case tea.MouseButtonWheelRight:
		return []platform.Event{move, platform.MousePress(dispatch.MouseWheelRight, true)}
	}
	switch msg.Action {
	case tea.MouseActionPress:
		code, ok := mouseButton(msg.Button)
		if !ok {
			return []platform.Event{move}
		}
		m.pressed = code
		return []platform.Event{move, platform.MousePress(code, true)}
	case tea.MouseActionRelease:
		code, ok := mouseButton(msg.Button)
		if !ok {
			code = m.pressed
		}
		m.pressed = dispatch.KeyUnknown
		if code == dispatch.KeyUnknown {
			return []platform.Event{move}
		}
		return []platform.Event{move, platform.MousePress(code, false)}
	default:
		return []platform.Event{move}
	}
}

func mouseButton(b tea.MouseButton) (dispatch.KeyCode, bool) {
	switch b {
	case tea.MouseButtonLeft:
		return dispatch.MouseLeft, true
	case tea.MouseButtonMiddle:
		return dispatch.MouseCenter, true
	case tea.MouseButtonRight:
		return dispatch.MouseRight, true
	default:
		return dispatch.KeyUnknown, false
	}
}

// terminalHost is the dispatcher's view of the terminal. There is no soft
// keyboard, text arrives as key runes.
type terminalHost struct {
	logger *logiface.Logger[logiface.Event]
	exit   func(code int)
}

func (h *terminalHost) IMEKeyboardOpen(opts dispatch.IMEOptions) {
	h.logger.Debug().
		Int(`keyboard_type`, int(opts.Type)).
		Log(`input method requested, terminal input is used instead`)
}

func (h *terminalHost) IMEKeyboardClose() {}

func (h *terminalHost) IMEKeyboardCanBackspace(bool, bool) {}

func (h *terminalHost) IMEKeyboardSpotLocation(dispatch.Vec2) {}

func (h *terminalHost) Back() { h.exit(0) }

// frameMsg carries a rendered frame to the program.
type frameMsg string

// sender is the part of an App the model uses.
type sender interface {
	Send(e platform.Event) bool
	Exit(code int)
}

// model adapts the application to a bubbletea program. Frames rendered on
// the render loop arrive through frames, holding at most the latest.
type model struct {
	app    sender
	frames <-chan string
	resize func(width, height int)
	mouse  *mouseTranslator
	view   string
}

func newModel(app sender, frames <-chan string, resize func(width, height int)) model {
	return model{
		app:    app,
		frames: frames,
		resize: resize,
		mouse:  &mouseTranslator{},
	}
}

func (m model) Init() tea.Cmd {
	return m.receiveFrame()
}

func (m model) receiveFrame() tea.Cmd {
	return func() tea.Msg {
		s, ok := <-m.frames
		if !ok {
			return nil
		}
		return frameMsg(s)
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			m.app.Exit(130)
			return m, nil
		}
		m.send(translateKey(msg))

	case tea.MouseMsg:
		m.send(m.mouse.translate(msg))

	case tea.WindowSizeMsg:
		if m.resize != nil {
			m.resize(msg.Width, msg.Height)
		}

	case frameMsg:
		m.view = string(msg)
		return m, m.receiveFrame()
	}
	return m, nil
}

func (m model) send(events []platform.Event) {
	for _, e := range events {
		if !m.app.Send(e) {
			return
		}
	}
}

func (m model) View() string { return m.view }

// publishFrame replaces any unread frame in ch with s. It must only be
// called from a single goroutine.
func publishFrame(ch chan string, s string) {
	for {
		select {
		case ch <- s:
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
	}
}
