package dispatch

import (
	"sync"

	"github.com/joeycumines/go-uiloop/notice"
)

// View is the boundary to the view tree. The tree itself (layout, paint)
// is owned elsewhere; the dispatcher only reads it, from dispatch jobs
// running on the main loop with the UI lock held.
//
// Implementations must be comparable (typically pointers), as views are
// used as map keys.
type View interface {
	// Parent returns the parent view, or nil for the root or a detached view.
	Parent() View

	// Children returns the child views in paint order, back to front.
	Children() []View

	// Visible reports whether the view, and so its subtree, is drawn.
	Visible() bool

	// Receive reports whether the view accepts events. Views that don't
	// are skipped by hit-testing and bubbling, but their children are not.
	Receive() bool

	// Clip reports whether children are clipped to the view's bounds, in
	// which case points outside the view never reach its children.
	Clip() bool

	// Overlap reports whether p, in screen coordinates, is over the view.
	Overlap(p Vec2) bool

	// Position returns the view's current screen position, used to detect
	// views moving (e.g. scrolling) under an active gesture.
	Position() Vec2

	// Bounds returns the view's screen rectangle.
	Bounds() Rect

	// Focusable reports whether the view may become the focus view.
	Focusable() bool

	// Notification returns the view's listener registry.
	Notification() *notice.Notification[Name]
}

// IsAncestor reports whether ancestor is a strict ancestor of v.
func IsAncestor(ancestor, v View) bool {
	if ancestor == nil || v == nil {
		return false
	}
	for p := v.Parent(); p != nil; p = p.Parent() {
		if p == ancestor {
			return true
		}
	}
	return false
}

// Box is a minimal View, positioned in screen coordinates. It serves as the
// reference view for hosts without a layout engine, and in tests.
//
// Thread Safety:
// Box is safe for concurrent use, though tree mutations are expected to
// happen with the UI lock held.
type Box struct {
	parent       *Box
	notification *notice.Notification[Name]
	name         string
	children     []*Box
	rect         Rect
	mu           sync.RWMutex
	hidden       bool
	noReceive    bool
	clip         bool
	focusable    bool
}

var _ View = (*Box)(nil)

// NewBox returns a visible, event receiving box.
func NewBox(name string, rect Rect) *Box {
	b := &Box{name: name, rect: rect}
	b.notification = notice.NewNotification[Name](b, Name.String)
	return b
}

// String returns the box's name.
func (b *Box) String() string { return b.name }

// Append adds child as the topmost child of b, first removing it from any
// previous parent.
func (b *Box) Append(child *Box) {
	if child == nil || child == b {
		return
	}
	child.Remove()
	b.mu.Lock()
	b.children = append(b.children, child)
	b.mu.Unlock()
	child.mu.Lock()
	child.parent = b
	child.mu.Unlock()
}

// Remove detaches b from its parent. It returns false if b had no parent.
func (b *Box) Remove() bool {
	b.mu.Lock()
	parent := b.parent
	b.parent = nil
	b.mu.Unlock()
	if parent == nil {
		return false
	}
	parent.mu.Lock()
	defer parent.mu.Unlock()
	for i, c := range parent.children {
		if c == b {
			parent.children = append(parent.children[:i:i], parent.children[i+1:]...)
			break
		}
	}
	return true
}

// SetRect moves or resizes the box.
func (b *Box) SetRect(r Rect) {
	b.mu.Lock()
	b.rect = r
	b.mu.Unlock()
}

// SetVisible shows or hides the box.
func (b *Box) SetVisible(v bool) {
	b.mu.Lock()
	b.hidden = !v
	b.mu.Unlock()
}

// SetReceive toggles whether the box accepts events.
func (b *Box) SetReceive(v bool) {
	b.mu.Lock()
	b.noReceive = !v
	b.mu.Unlock()
}

// SetClip toggles clipping of children to the box's bounds.
func (b *Box) SetClip(v bool) {
	b.mu.Lock()
	b.clip = v
	b.mu.Unlock()
}

// SetFocusable toggles whether the box may become the focus view.
func (b *Box) SetFocusable(v bool) {
	b.mu.Lock()
	b.focusable = v
	b.mu.Unlock()
}

// Parent implements [View].
func (b *Box) Parent() View {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.parent == nil {
		return nil
	}
	return b.parent
}

// Children implements [View], returning a snapshot of the child boxes.
func (b *Box) Children() []View {
	b.mu.RLock()
	defer b.mu.RUnlock()
	views := make([]View, len(b.children))
	for i, c := range b.children {
		views[i] = c
	}
	return views
}

// Visible implements [View].
func (b *Box) Visible() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return !b.hidden
}

// Receive implements [View].
func (b *Box) Receive() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return !b.noReceive
}

// Clip implements [View].
func (b *Box) Clip() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.clip
}

// Overlap implements [View], testing p against the box's bounds.
func (b *Box) Overlap(p Vec2) bool {
	return b.Bounds().Contains(p)
}

// Position implements [View], as the origin of the box's bounds.
func (b *Box) Position() Vec2 {
	return b.Bounds().Origin
}

// Bounds implements [View].
func (b *Box) Bounds() Rect {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.rect
}

// Focusable implements [View].
func (b *Box) Focusable() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.focusable
}

// Notification implements [View].
func (b *Box) Notification() *notice.Notification[Name] { return b.notification }
