package dispatch

import (
	"fmt"
	"strings"
)

// KeyTable maps platform key codes to logical ones.
type KeyTable map[int]KeyCode

// KeyInput is one raw key transition, as reported by the platform.
type KeyInput struct {
	// Code is a platform key code, or a character if ASCII is set.
	Code     int
	Repeat   int
	Device   int
	Source   int
	ASCII    bool
	Down     bool
	CapsLock bool
}

// keyState is the decoded form of a KeyInput.
type keyState struct {
	mods     Modifiers
	keycode  KeyCode
	keypress rune
	repeat   int
	device   int
	source   int
	down     bool
}

type shiftPair struct{ normal, shift rune }

var keypressTable = map[KeyCode]shiftPair{
	Key0: {'0', ')'}, Key0 + 1: {'1', '!'}, Key0 + 2: {'2', '@'}, Key0 + 3: {'3', '#'},
	Key0 + 4: {'4', '$'}, Key0 + 5: {'5', '%'}, Key0 + 6: {'6', '^'}, Key0 + 7: {'7', '&'},
	Key0 + 8: {'8', '*'}, Key9: {'9', '('},
	KeySemicolon: {';', ':'}, KeyEquals: {'=', '+'}, KeyMinus: {'-', '_'},
	KeyComma: {',', '<'}, KeyPeriod: {'.', '>'}, KeySlash: {'/', '?'},
	KeyGrave: {'`', '~'}, KeyLeftBracket: {'[', '{'}, KeyBackSlash: {'\\', '|'},
	KeyRightBracket: {']', '}'}, KeyApostrophe: {'\'', '"'},
	KeyNumpadMul: {'*', '*'}, KeyNumpadAdd: {'+', '+'}, KeyNumpadSub: {'-', '-'},
	KeyNumpadDot: {'.', '.'}, KeyNumpadDiv: {'/', '/'},
	KeySpace: {' ', ' '},
}

type asciiKey struct {
	code  KeyCode
	shift bool
}

var asciiTable = func() map[rune]asciiKey {
	m := map[rune]asciiKey{
		'\b': {KeyBackSpace, false},
		'\t': {KeyTab, false},
		'\r': {KeyEnter, false},
		// no key produces a line feed, it is reported as a shifted enter
		'\n': {KeyEnter, true},
		0x1b: {KeyEsc, false},
		0x7f: {KeyDelete, false},
		' ':  {KeySpace, false},
	}
	for code, p := range keypressTable {
		if code >= KeyNumpadMul && code <= KeyNumpadDiv {
			continue
		}
		if _, ok := m[p.normal]; !ok {
			m[p.normal] = asciiKey{code, false}
		}
		if _, ok := m[p.shift]; !ok {
			m[p.shift] = asciiKey{code, true}
		}
	}
	for c := KeyA; c <= KeyZ; c++ {
		m[rune(c)] = asciiKey{c, true}
		m[rune(c)+32] = asciiKey{c, false}
	}
	return m
}()

// KeyboardAdapter converts platform key transitions into logical key codes,
// characters and modifier state. It is not safe for concurrent use, the
// dispatcher only calls it from dispatch jobs.
type KeyboardAdapter struct {
	table KeyTable
	mods  Modifiers
}

// NewKeyboardAdapter returns an adapter using table, which may be nil if
// only ASCII input is reported.
func NewKeyboardAdapter(table KeyTable) *KeyboardAdapter {
	return &KeyboardAdapter{table: table}
}

// Modifiers returns the current modifier state.
func (a *KeyboardAdapter) Modifiers() Modifiers { return a.mods }

// Clear resets the modifier state, e.g. after the window lost focus while a
// modifier was held.
func (a *KeyboardAdapter) Clear() { a.mods = Modifiers{} }

func (a *KeyboardAdapter) decode(in KeyInput) keyState {
	a.mods.Caps = in.CapsLock
	s := keyState{
		repeat: in.Repeat,
		device: in.Device,
		source: in.Source,
		down:   in.Down,
	}
	if in.ASCII {
		if k, ok := asciiTable[rune(in.Code)]; ok {
			a.mods.Shift = k.shift
			s.keycode = k.code
			s.keypress = a.keypress(k.code)
		} else {
			s.keycode = KeyUnknown
			s.keypress = rune(in.Code)
		}
		s.mods = a.mods
		// ascii input carries its own shift, which must not stick
		a.mods.Shift = false
		return s
	}
	if code, ok := a.table[in.Code]; ok {
		switch code {
		case KeyShift:
			a.mods.Shift = in.Down
		case KeyCtrl:
			a.mods.Ctrl = in.Down
		case KeyAlt:
			a.mods.Alt = in.Down
		case KeyCommand, KeyCommandRight:
			a.mods.Command = in.Down
		}
		s.keycode = code
		s.keypress = a.keypress(code)
	}
	s.mods = a.mods
	return s
}

func (a *KeyboardAdapter) keypress(code KeyCode) rune {
	if code >= KeyA && code <= KeyZ {
		if a.mods.Caps || a.mods.Shift {
			return rune(code)
		}
		return rune(code) + 32
	}
	if code >= KeyNumpad0 && code <= KeyNumpad9 {
		return '0' + rune(code-KeyNumpad0)
	}
	if p, ok := keypressTable[code]; ok {
		if a.mods.Shift {
			return p.shift
		}
		return p.normal
	}
	return 0
}

// LinuxKeyTable maps X11 hardware key codes.
func LinuxKeyTable() KeyTable {
	t := KeyTable{
		22: KeyBackSpace, 23: KeyTab, 36: KeyEnter,
		50: KeyShift, 62: KeyShift, 37: KeyCtrl, 105: KeyCtrl, 64: KeyAlt, 108: KeyAlt,
		127: KeyBreak, 66: KeyCapsLock, 9: KeyEsc, 65: KeySpace,
		112: KeyPageUp, 117: KeyPageDown, 115: KeyEnd, 110: KeyHome,
		113: KeyLeft, 111: KeyUp, 114: KeyRight, 116: KeyDown,
		118: KeyInsert, 119: KeyDelete, 107: KeySysRq,
		19: Key0,
		133: KeyCommand, 135: KeyMenu,
		90: KeyNumpad0, 87: KeyNumpad0 + 1, 88: KeyNumpad0 + 2, 89: KeyNumpad0 + 3,
		83: KeyNumpad0 + 4, 84: KeyNumpad0 + 5, 85: KeyNumpad0 + 6,
		79: KeyNumpad0 + 7, 80: KeyNumpad0 + 8, 81: KeyNumpad9,
		63: KeyNumpadMul, 86: KeyNumpadAdd, 104: KeyNumpadEnter, 82: KeyNumpadSub,
		91: KeyNumpadDot, 106: KeyNumpadDiv,
		95: KeyF1 + 10, 96: KeyF12,
		77: KeyNumLock, 78: KeyScrollLock,
		47: KeySemicolon, 21: KeyEquals, 20: KeyMinus, 59: KeyComma, 60: KeyPeriod,
		61: KeySlash, 49: KeyGrave, 34: KeyLeftBracket, 51: KeyBackSlash,
		35: KeyRightBracket, 48: KeyApostrophe,
		123: KeyVolumeUp, 122: KeyVolumeDown,
	}
	for i := 0; i < 9; i++ {
		t[10+i] = Key0 + 1 + KeyCode(i)
	}
	for i := 0; i < 10; i++ {
		t[67+i] = KeyF1 + KeyCode(i)
	}
	for code, key := range map[int]rune{
		38: 'A', 56: 'B', 54: 'C', 40: 'D', 26: 'E', 41: 'F', 42: 'G', 43: 'H', 31: 'I',
		44: 'J', 45: 'K', 46: 'L', 58: 'M', 57: 'N', 32: 'O', 33: 'P', 24: 'Q', 27: 'R',
		39: 'S', 28: 'T', 30: 'U', 55: 'V', 25: 'W', 53: 'X', 29: 'Y', 52: 'Z',
	} {
		t[code] = KeyCode(key)
	}
	return t
}

// AndroidKeyTable maps Android AKEYCODE values.
func AndroidKeyTable() KeyTable {
	t := KeyTable{
		67: KeyBackSpace, 61: KeyTab, 28: KeyClear, 66: KeyEnter,
		59: KeyShift, 60: KeyShift, 113: KeyCtrl, 114: KeyCtrl, 57: KeyAlt, 58: KeyAlt,
		121: KeyBreak, 115: KeyCapsLock, 111: KeyEsc, 62: KeySpace,
		92: KeyPageUp, 93: KeyPageDown, 123: KeyEnd, 122: KeyHome,
		21: KeyLeft, 19: KeyUp, 22: KeyRight, 20: KeyDown, 23: KeyCenter,
		124: KeyInsert, 112: KeyDelete, 120: KeySysRq,
		117: KeyCommand, 118: KeyCommandRight, 82: KeyMenu,
		143: KeyNumLock, 116: KeyScrollLock,
		74: KeySemicolon, 70: KeyEquals, 69: KeyMinus, 55: KeyComma, 56: KeyPeriod,
		76: KeySlash, 68: KeyGrave, 71: KeyLeftBracket, 73: KeyBackSlash,
		72: KeyRightBracket, 75: KeyApostrophe,
		155: KeyNumpadMul, 157: KeyNumpadAdd, 160: KeyNumpadEnter, 156: KeyNumpadSub,
		158: KeyNumpadDot, 154: KeyNumpadDiv,
		3: KeyDeviceHome, 4: KeyBack, 24: KeyVolumeUp, 25: KeyVolumeDown, 26: KeyPower,
	}
	for i := 0; i < 10; i++ {
		t[7+i] = Key0 + KeyCode(i)
		t[144+i] = KeyNumpad0 + KeyCode(i)
	}
	for i := 0; i < 26; i++ {
		t[29+i] = KeyA + KeyCode(i)
	}
	for i := 0; i < 12; i++ {
		t[131+i] = KeyF1 + KeyCode(i)
	}
	return t
}

// KeyTableByName returns the named platform table: "linux", "android", or
// "none" for ASCII only input.
func KeyTableByName(name string) (KeyTable, error) {
	switch strings.ToLower(name) {
	case `linux`, `x11`:
		return LinuxKeyTable(), nil
	case `android`:
		return AndroidKeyTable(), nil
	case ``, `none`:
		return KeyTable{}, nil
	default:
		return nil, fmt.Errorf("dispatch: unknown key table %q", name)
	}
}
