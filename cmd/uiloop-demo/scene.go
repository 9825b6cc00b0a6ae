package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/joeycumines/go-uiloop/dispatch"
	"github.com/joeycumines/go-uiloop/notice"
)

const (
	buttonWidth  = 14
	buttonHeight = 3
	buttonGap    = 2
	buttonRow    = 2
	statusRow    = buttonRow + buttonHeight + 1
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA"))

	buttonStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Width(buttonWidth-2).
			Align(lipgloss.Center)

	hoverStyle   = buttonStyle.BorderForeground(lipgloss.Color("#874BFD"))
	downStyle    = buttonStyle.BorderForeground(lipgloss.Color("#874BFD")).Reverse(true)
	focusedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229"))

	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
)

// button is a clickable box, with the interaction state it renders.
type button struct {
	box    *dispatch.Box
	action func()
	label  string
	status dispatch.HighlightedStatus
	focus  bool
}

// scene is the demo's view tree. It is mutated by listeners, on the main
// loop, and rendered on the render loop, both with the UI lock held.
type scene struct {
	root    *dispatch.Box
	buttons []*button
	status  string
	count   int
}

// newScene lays out the buttons left to right, one terminal cell per
// logical unit. quit is called by the quit button.
func newScene(width, height int, quit func()) *scene {
	s := &scene{
		root:   dispatch.NewBox(`root`, dispatch.Rect{Size: dispatch.Vec2{X: float64(width), Y: float64(height)}}),
		status: `arrows move focus, enter clicks, esc quits`,
	}
	s.root.Notification().OnFunc(dispatch.NameMouseWheel, func(e notice.Event) {
		if w, ok := e.(*dispatch.WheelEvent); ok {
			s.status = fmt.Sprintf(`wheel %s`, w.Keycode)
		}
	}, 0)
	s.root.Notification().OnFunc(dispatch.NameKeyPress, func(e notice.Event) {
		if k, ok := e.(*dispatch.KeyEvent); ok && k.Keypress == 'q' {
			quit()
		}
	}, 0)

	s.add(`Increment`, func() { s.count++ })
	s.add(`Reset`, func() { s.count = 0 })
	s.add(`Quit`, quit)
	return s
}

func (s *scene) add(label string, action func()) {
	x := buttonGap + len(s.buttons)*(buttonWidth+buttonGap)
	b := &button{
		box: dispatch.NewBox(strings.ToLower(label), dispatch.Rect{
			Origin: dispatch.Vec2{X: float64(x), Y: buttonRow},
			Size:   dispatch.Vec2{X: buttonWidth, Y: buttonHeight},
		}),
		label:  label,
		action: action,
		status: dispatch.HighlightedNormal,
	}
	b.box.SetFocusable(true)

	n := b.box.Notification()
	n.OnFunc(dispatch.NameClick, func(e notice.Event) {
		if c, ok := e.(*dispatch.ClickEvent); ok {
			s.status = fmt.Sprintf(`%s clicked (%s)`, label, c.Type)
		}
		b.action()
	}, 0)
	n.OnFunc(dispatch.NameHighlighted, func(e notice.Event) {
		if h, ok := e.(*dispatch.HighlightedEvent); ok {
			b.status = h.Status
		}
	}, 0)
	n.OnFunc(dispatch.NameFocus, func(notice.Event) { b.focus = true }, 0)
	n.OnFunc(dispatch.NameBlur, func(notice.Event) { b.focus = false }, 0)

	s.root.Append(b.box)
	s.buttons = append(s.buttons, b)
}

// resize must be called with the UI lock held.
func (s *scene) resize(width, height int) {
	s.root.SetRect(dispatch.Rect{Size: dispatch.Vec2{X: float64(width), Y: float64(height)}})
}

// render draws the scene. It must be called with the UI lock held.
func (s *scene) render() string {
	cells := make([]string, 0, len(s.buttons)*2+1)
	cells = append(cells, strings.Repeat(` `, buttonGap))
	for _, b := range s.buttons {
		style := buttonStyle
		switch b.status {
		case dispatch.HighlightedHover:
			style = hoverStyle
		case dispatch.HighlightedDown:
			style = downStyle
		}
		label := b.label
		if b.focus {
			label = focusedStyle.Render(label)
		}
		cells = append(cells, style.Render(label), strings.Repeat(` `, buttonGap))
	}

	var sb strings.Builder
	sb.WriteString(titleStyle.Render(fmt.Sprintf(`uiloop demo   count: %d`, s.count)))
	sb.WriteString(strings.Repeat("\n", buttonRow))
	sb.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	sb.WriteString(strings.Repeat("\n", statusRow-buttonRow-buttonHeight+1))
	sb.WriteString(statusStyle.Render(s.status))
	return sb.String()
}
