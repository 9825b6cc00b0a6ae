package dispatch

import (
	"strconv"
)

// KeyCode is a logical, platform independent key.
type KeyCode uint16

const (
	KeyUnknown      KeyCode = 0
	KeyBackSpace    KeyCode = 8
	KeyTab          KeyCode = 9
	KeyClear        KeyCode = 12
	KeyEnter        KeyCode = 13
	KeyShift        KeyCode = 16
	KeyCtrl         KeyCode = 17
	KeyAlt          KeyCode = 18
	KeyBreak        KeyCode = 19
	KeyCapsLock     KeyCode = 20
	KeyEsc          KeyCode = 27
	KeySpace        KeyCode = 32
	KeyPageUp       KeyCode = 33
	KeyPageDown     KeyCode = 34
	KeyEnd          KeyCode = 35
	KeyHome         KeyCode = 36
	KeyLeft         KeyCode = 37
	KeyUp           KeyCode = 38
	KeyRight        KeyCode = 39
	KeyDown         KeyCode = 40
	KeySysRq        KeyCode = 42
	KeyInsert       KeyCode = 45
	KeyDelete       KeyCode = 46
	Key0            KeyCode = 48
	Key9            KeyCode = 57
	KeyA            KeyCode = 65
	KeyZ            KeyCode = 90
	KeyCommand      KeyCode = 91
	KeyMenu         KeyCode = 92
	KeyCommandRight KeyCode = 93
	KeyNumpad0      KeyCode = 96
	KeyNumpad9      KeyCode = 105
	KeyNumpadMul    KeyCode = 106
	KeyNumpadAdd    KeyCode = 107
	KeyNumpadEnter  KeyCode = 108
	KeyNumpadSub    KeyCode = 109
	KeyNumpadDot    KeyCode = 110
	KeyNumpadDiv    KeyCode = 111
	KeyF1           KeyCode = 112
	KeyF12          KeyCode = 123
	KeyNumLock      KeyCode = 144
	KeyScrollLock   KeyCode = 145
	KeySemicolon    KeyCode = 186
	KeyEquals       KeyCode = 187
	KeyComma        KeyCode = 188
	KeyMinus        KeyCode = 189
	KeyPeriod       KeyCode = 190
	KeySlash        KeyCode = 191
	KeyGrave        KeyCode = 192
	KeyLeftBracket  KeyCode = 219
	KeyBackSlash    KeyCode = 220
	KeyRightBracket KeyCode = 221
	KeyApostrophe   KeyCode = 222

	MouseLeft       KeyCode = 256
	MouseCenter     KeyCode = 257
	MouseRight      KeyCode = 258
	MouseWheelUp    KeyCode = 259
	MouseWheelDown  KeyCode = 260
	MouseWheelLeft  KeyCode = 261
	MouseWheelRight KeyCode = 262

	KeyDeviceHome KeyCode = 300
	KeyBack       KeyCode = 301
	KeyCenter     KeyCode = 306
	KeyVolumeUp   KeyCode = 307
	KeyVolumeDown KeyCode = 308
	KeyPower      KeyCode = 309
)

var keyNames = map[KeyCode]string{
	KeyBackSpace: `backspace`, KeyTab: `tab`, KeyClear: `clear`, KeyEnter: `enter`,
	KeyShift: `shift`, KeyCtrl: `ctrl`, KeyAlt: `alt`, KeyBreak: `break`,
	KeyCapsLock: `capslock`, KeyEsc: `esc`, KeySpace: `space`,
	KeyPageUp: `pageup`, KeyPageDown: `pagedown`, KeyEnd: `end`, KeyHome: `home`,
	KeyLeft: `left`, KeyUp: `up`, KeyRight: `right`, KeyDown: `down`,
	KeyInsert: `insert`, KeyDelete: `delete`, KeyCommand: `command`, KeyMenu: `menu`,
	MouseLeft: `mouse-left`, MouseCenter: `mouse-center`, MouseRight: `mouse-right`,
	MouseWheelUp: `wheel-up`, MouseWheelDown: `wheel-down`,
	MouseWheelLeft: `wheel-left`, MouseWheelRight: `wheel-right`,
	KeyDeviceHome: `device-home`, KeyBack: `back`, KeyCenter: `center`,
	KeyVolumeUp: `volume-up`, KeyVolumeDown: `volume-down`, KeyPower: `power`,
}

func (k KeyCode) String() string {
	switch {
	case k >= Key0 && k <= Key9, k >= KeyA && k <= KeyZ:
		return string(rune(k))
	case k >= KeyF1 && k <= KeyF12:
		return `f` + strconv.Itoa(int(k-KeyF1)+1)
	}
	if s, ok := keyNames[k]; ok {
		return s
	}
	return `key(` + strconv.Itoa(int(k)) + `)`
}

// Arrow reports whether k is one of the directional keys.
func (k KeyCode) Arrow() bool { return k >= KeyLeft && k <= KeyDown }

// Wheel reports whether k is a mouse wheel tick.
func (k KeyCode) Wheel() bool { return k >= MouseWheelUp && k <= MouseWheelRight }
