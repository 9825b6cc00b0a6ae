package dispatch

// KeyboardType is the soft keyboard layout requested for a text input.
type KeyboardType uint8

const (
	KeyboardNormal KeyboardType = iota
	KeyboardASCII
	KeyboardNumber
	KeyboardURL
	KeyboardNumberPad
	KeyboardPhone
	KeyboardEmail
	KeyboardDecimal
)

// ReturnType is the label of the soft keyboard's return key.
type ReturnType uint8

const (
	ReturnNormal ReturnType = iota
	ReturnGo
	ReturnNext
	ReturnSearch
	ReturnSend
	ReturnDone
)

// IMEOptions describes how the host should present the input method.
type IMEOptions struct {
	// Spot is the caret rectangle, in screen coordinates.
	Spot   Rect
	Type   KeyboardType
	Return ReturnType
	// Clear is set when a different text input took over, and any
	// composition state held by the input method should be discarded.
	Clear bool
}

// TextInput is implemented by views that accept text. It receives the
// input method operations forwarded by the dispatcher.
type TextInput interface {
	InputInsert(text string)
	InputDelete(count int)
	InputMarked(text string)
	InputUnmark(text string)
	InputControl(code KeyCode)
	InputCanBackspace() bool
	InputCanDelete() bool
	InputKeyboardType() KeyboardType
	InputReturnType() ReturnType
	InputSpotRect() Rect
}

// Host is the platform glue, as seen by the dispatcher. Methods are called
// from dispatch jobs on the main loop, and may service requests
// asynchronously.
//
//go:generate mockgen -destination=../internal/mocks/host.go -package=mocks github.com/joeycumines/go-uiloop/dispatch Host
type Host interface {
	IMEKeyboardOpen(opts IMEOptions)
	IMEKeyboardClose()
	IMEKeyboardCanBackspace(canBackspace, canDelete bool)
	IMEKeyboardSpotLocation(p Vec2)
	// Back is called for an unhandled back key, and typically suspends or
	// exits the application.
	Back()
}

type nopHost struct{}

func (nopHost) IMEKeyboardOpen(IMEOptions)         {}
func (nopHost) IMEKeyboardClose()                  {}
func (nopHost) IMEKeyboardCanBackspace(bool, bool) {}
func (nopHost) IMEKeyboardSpotLocation(Vec2)       {}
func (nopHost) Back()                              {}
