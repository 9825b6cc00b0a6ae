package platform

import (
	"strconv"

	"github.com/joeycumines/go-uiloop/dispatch"
)

// Kind identifies the dispatcher entry point an Event is delivered to.
type Kind uint8

const (
	KindUnknown Kind = iota
	KindTouchStart
	KindTouchMove
	KindTouchEnd
	KindTouchCancel
	KindMouseMove
	KindMousePress
	KindKeyboard
	KindKeyboardClear
	KindIMEInsert
	KindIMEDelete
	KindIMEMarked
	KindIMEUnmark
	KindIMEControl
)

var kindNames = [...]string{
	KindUnknown:       `unknown`,
	KindTouchStart:    `touchstart`,
	KindTouchMove:     `touchmove`,
	KindTouchEnd:      `touchend`,
	KindTouchCancel:   `touchcancel`,
	KindMouseMove:     `mousemove`,
	KindMousePress:    `mousepress`,
	KindKeyboard:      `keyboard`,
	KindKeyboardClear: `keyboardclear`,
	KindIMEInsert:     `imeinsert`,
	KindIMEDelete:     `imedelete`,
	KindIMEMarked:     `imemarked`,
	KindIMEUnmark:     `imeunmark`,
	KindIMEControl:    `imecontrol`,
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return `kind(` + strconv.Itoa(int(k)) + `)`
}

// Event is one raw platform input record. Which fields are meaningful
// depends on Kind.
type Event struct {
	// Touches is set for the touch kinds.
	Touches []dispatch.RawTouch
	// Text is set for KindIMEInsert, KindIMEMarked and KindIMEUnmark.
	Text string
	// Key is set for KindKeyboard.
	Key dispatch.KeyInput
	// X and Y are set for KindMouseMove, in platform pixels.
	X, Y float64
	// Count is set for KindIMEDelete.
	Count int
	// Code is set for KindMousePress and KindIMEControl.
	Code dispatch.KeyCode
	Kind Kind
	// Down is set for KindMousePress.
	Down bool
}

// TouchStart returns a touch start event.
func TouchStart(touches ...dispatch.RawTouch) Event {
	return Event{Kind: KindTouchStart, Touches: touches}
}

// TouchMove returns a touch move event.
func TouchMove(touches ...dispatch.RawTouch) Event {
	return Event{Kind: KindTouchMove, Touches: touches}
}

// TouchEnd returns a touch end event.
func TouchEnd(touches ...dispatch.RawTouch) Event {
	return Event{Kind: KindTouchEnd, Touches: touches}
}

// TouchCancel returns a touch cancel event.
func TouchCancel(touches ...dispatch.RawTouch) Event {
	return Event{Kind: KindTouchCancel, Touches: touches}
}

// MouseMove returns a cursor move event.
func MouseMove(x, y float64) Event { return Event{Kind: KindMouseMove, X: x, Y: y} }

// MousePress returns a button or wheel event.
func MousePress(code dispatch.KeyCode, down bool) Event {
	return Event{Kind: KindMousePress, Code: code, Down: down}
}

// Keyboard returns a key transition event.
func Keyboard(in dispatch.KeyInput) Event { return Event{Kind: KindKeyboard, Key: in} }

// IMEInsert returns a committed text event.
func IMEInsert(text string) Event { return Event{Kind: KindIMEInsert, Text: text} }

// IMEDelete returns a text deletion event.
func IMEDelete(count int) Event { return Event{Kind: KindIMEDelete, Count: count} }

// IMEMarked returns a composing text event.
func IMEMarked(text string) Event { return Event{Kind: KindIMEMarked, Text: text} }

// IMEUnmark returns a composition end event.
func IMEUnmark(text string) Event { return Event{Kind: KindIMEUnmark, Text: text} }

// IMEControl returns an input method control key event.
func IMEControl(code dispatch.KeyCode) Event { return Event{Kind: KindIMEControl, Code: code} }

// Deliver forwards e to the matching dispatcher entry point. It returns
// false for an unknown kind.
func (e Event) Deliver(d *dispatch.Dispatcher) bool {
	switch e.Kind {
	case KindTouchStart:
		d.DispatchTouchStart(e.Touches)
	case KindTouchMove:
		d.DispatchTouchMove(e.Touches)
	case KindTouchEnd:
		d.DispatchTouchEnd(e.Touches)
	case KindTouchCancel:
		d.DispatchTouchCancel(e.Touches)
	case KindMouseMove:
		d.DispatchMouseMove(e.X, e.Y)
	case KindMousePress:
		d.DispatchMousePress(e.Code, e.Down)
	case KindKeyboard:
		d.DispatchKeyboard(e.Key)
	case KindKeyboardClear:
		d.DispatchKeyboardClear()
	case KindIMEInsert:
		d.DispatchIMEInsert(e.Text)
	case KindIMEDelete:
		d.DispatchIMEDelete(e.Count)
	case KindIMEMarked:
		d.DispatchIMEMarked(e.Text)
	case KindIMEUnmark:
		d.DispatchIMEUnmark(e.Text)
	case KindIMEControl:
		d.DispatchIMEControl(e.Code)
	default:
		return false
	}
	return true
}
