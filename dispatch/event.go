package dispatch

import (
	"time"

	"github.com/joeycumines/go-uiloop/notice"
)

// Return value flags of a UIEvent. Both are set when the event is raised;
// listeners clear them to suppress the default action or stop bubbling.
const (
	ReturnDefault = 1 << iota
	ReturnBubble
)

// Event is implemented by every event the dispatcher raises.
type Event interface {
	notice.Event
	UI() *UIEvent
}

// UIEvent is embedded by all dispatcher events.
type UIEvent struct {
	notice.EventBase
	timestamp time.Time
	view      View
}

func newUIEvent(view View) UIEvent {
	e := UIEvent{timestamp: time.Now(), view: view}
	e.ReturnValue = ReturnDefault | ReturnBubble
	return e
}

// UI implements [Event].
func (e *UIEvent) UI() *UIEvent { return e }

// View returns the view the event was raised for, i.e. the hit or focus
// view, before any bubbling.
func (e *UIEvent) View() View { return e.view }

// Timestamp returns when the dispatcher raised the event.
func (e *UIEvent) Timestamp() time.Time { return e.timestamp }

// IsDefault reports whether the default action is still enabled.
func (e *UIEvent) IsDefault() bool { return e.ReturnValue&ReturnDefault != 0 }

// IsBubble reports whether the event will continue to bubble.
func (e *UIEvent) IsBubble() bool { return e.ReturnValue&ReturnBubble != 0 }

// CancelDefault suppresses the default action, e.g. the click following a
// mouse up.
func (e *UIEvent) CancelDefault() { e.ReturnValue &^= ReturnDefault }

// CancelBubble stops delivery to further ancestors.
func (e *UIEvent) CancelBubble() { e.ReturnValue &^= ReturnBubble }

// Modifiers is a snapshot of the keyboard modifier state.
type Modifiers struct {
	Shift   bool `json:"shift,omitempty"`
	Ctrl    bool `json:"ctrl,omitempty"`
	Alt     bool `json:"alt,omitempty"`
	Command bool `json:"command,omitempty"`
	Caps    bool `json:"caps,omitempty"`
}

// KeyEvent is raised for key down, press, up and enter.
type KeyEvent struct {
	UIEvent
	// FocusMove is the view focus moves to after the event, if its default
	// action is not cancelled. Listeners may replace it.
	FocusMove View
	Modifiers Modifiers
	Keycode   KeyCode
	// Keypress is the character produced by the key, or 0.
	Keypress rune
	Repeat   int
	Device   int
	Source   int
}

// ClickType identifies the input that produced a click.
type ClickType uint8

const (
	ClickTouch ClickType = iota + 1
	ClickKeyboard
	ClickMouse
)

func (t ClickType) String() string {
	switch t {
	case ClickTouch:
		return `touch`
	case ClickKeyboard:
		return `keyboard`
	case ClickMouse:
		return `mouse`
	default:
		return `unknown`
	}
}

// ClickEvent is raised for click and back.
type ClickEvent struct {
	UIEvent
	Position Vec2
	Type     ClickType
	Count    int
}

// MouseEvent is raised for the mouse names other than wheel.
type MouseEvent struct {
	UIEvent
	Position  Vec2
	Modifiers Modifiers
	Keycode   KeyCode
}

// WheelEvent is raised for mouse wheel ticks.
type WheelEvent struct {
	MouseEvent
	Delta Vec2
}

// HighlightedStatus is the interaction style a view should render.
type HighlightedStatus uint8

const (
	HighlightedNormal HighlightedStatus = iota + 1
	HighlightedHover
	HighlightedDown
)

func (s HighlightedStatus) String() string {
	switch s {
	case HighlightedNormal:
		return `normal`
	case HighlightedHover:
		return `hover`
	case HighlightedDown:
		return `down`
	default:
		return `unknown`
	}
}

// HighlightedEvent is raised on a single view, it never bubbles.
type HighlightedEvent struct {
	UIEvent
	Status HighlightedStatus
}

// TouchPoint is one contact of a touch gesture.
type TouchPoint struct {
	// View is the view the touch was assigned to when it started.
	View     View
	Start    Vec2
	Position Vec2
	Force    float64
	ID       uint32
	// ClickIn reports whether the point is over View, and the gesture has
	// not been invalidated.
	ClickIn bool
}

// TouchEvent is raised for touch start, move, end and cancel. Touches holds
// the changed points belonging to the event's view.
type TouchEvent struct {
	UIEvent
	Touches []TouchPoint
}

// FocusEvent is raised for focus and blur.
type FocusEvent struct {
	UIEvent
	// Related is the view losing focus (for focus), or gaining it (for
	// blur), if any.
	Related View
}
