package dispatch

import (
	"fmt"
)

// Name identifies a UI event. Names are resolved through a static registry,
// built once, carrying each name's display string, category and flags.
type Name uint16

// Category groups related event names.
type Category uint8

const (
	CategoryDefault Category = iota
	CategoryKeyboard
	CategoryClick
	CategoryTouch
	CategoryMouse
	CategoryHighlighted
)

const (
	// NameUnknown is the zero value, never delivered.
	NameUnknown Name = iota
	NameClick
	NameBack
	NameKeyDown
	NameKeyPress
	NameKeyUp
	NameKeyEnter
	NameTouchStart
	NameTouchMove
	NameTouchEnd
	NameTouchCancel
	NameMouseOver
	NameMouseOut
	NameMouseLeave
	NameMouseEnter
	NameMouseMove
	NameMouseDown
	NameMouseUp
	NameMouseWheel
	NameFocus
	NameBlur
	NameHighlighted
	numNames
)

type nameInfo struct {
	name     string
	category Category
	bubble   bool
}

var nameTable = [numNames]nameInfo{
	NameUnknown:     {`Unknown`, CategoryDefault, false},
	NameClick:       {`Click`, CategoryClick, true},
	NameBack:        {`Back`, CategoryClick, true},
	NameKeyDown:     {`KeyDown`, CategoryKeyboard, true},
	NameKeyPress:    {`KeyPress`, CategoryKeyboard, true},
	NameKeyUp:       {`KeyUp`, CategoryKeyboard, true},
	NameKeyEnter:    {`KeyEnter`, CategoryKeyboard, true},
	NameTouchStart:  {`TouchStart`, CategoryTouch, true},
	NameTouchMove:   {`TouchMove`, CategoryTouch, true},
	NameTouchEnd:    {`TouchEnd`, CategoryTouch, true},
	NameTouchCancel: {`TouchCancel`, CategoryTouch, true},
	NameMouseOver:   {`MouseOver`, CategoryMouse, true},
	NameMouseOut:    {`MouseOut`, CategoryMouse, true},
	NameMouseLeave:  {`MouseLeave`, CategoryMouse, false},
	NameMouseEnter:  {`MouseEnter`, CategoryMouse, false},
	NameMouseMove:   {`MouseMove`, CategoryMouse, true},
	NameMouseDown:   {`MouseDown`, CategoryMouse, true},
	NameMouseUp:     {`MouseUp`, CategoryMouse, true},
	NameMouseWheel:  {`MouseWheel`, CategoryMouse, true},
	NameFocus:       {`Focus`, CategoryDefault, true},
	NameBlur:        {`Blur`, CategoryDefault, true},
	NameHighlighted: {`Highlighted`, CategoryHighlighted, false},
}

var nameIndex = func() map[string]Name {
	m := make(map[string]Name, numNames)
	for i := Name(1); i < numNames; i++ {
		m[nameTable[i].name] = i
	}
	return m
}()

// LookupName resolves a display name, e.g. "Click", to its Name.
func LookupName(s string) (Name, bool) {
	n, ok := nameIndex[s]
	return n, ok
}

// Names returns every registered name, in declaration order.
func Names() []Name {
	names := make([]Name, 0, numNames-1)
	for i := Name(1); i < numNames; i++ {
		names = append(names, i)
	}
	return names
}

func (n Name) valid() bool { return n > NameUnknown && n < numNames }

// String returns the display name.
func (n Name) String() string {
	if n < numNames {
		return nameTable[n].name
	}
	return fmt.Sprintf("Name(%d)", uint16(n))
}

// Category returns the name's category.
func (n Name) Category() Category {
	if n < numNames {
		return nameTable[n].category
	}
	return CategoryDefault
}

// Bubbles reports whether events with this name propagate up the parent
// chain. Non-bubbling names are delivered to their origin view only.
func (n Name) Bubbles() bool {
	return n < numNames && nameTable[n].bubble
}
