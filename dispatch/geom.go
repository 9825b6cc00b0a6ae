package dispatch

import (
	"math"
)

// Vec2 is a point or size in logical units.
type Vec2 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Add returns v+o.
func (v Vec2) Add(o Vec2) Vec2 { return Vec2{v.X + o.X, v.Y + o.Y} }

// Sub returns v-o.
func (v Vec2) Sub(o Vec2) Vec2 { return Vec2{v.X - o.X, v.Y - o.Y} }

// Scale returns v multiplied by f.
func (v Vec2) Scale(f float64) Vec2 { return Vec2{v.X * f, v.Y * f} }

// Len returns the length of v.
func (v Vec2) Len() float64 { return math.Hypot(v.X, v.Y) }

// Finite reports whether both components are finite numbers.
func (v Vec2) Finite() bool {
	return !math.IsNaN(v.X) && !math.IsInf(v.X, 0) && !math.IsNaN(v.Y) && !math.IsInf(v.Y, 0)
}

// Rect is an axis aligned rectangle.
type Rect struct {
	Origin Vec2 `json:"origin"`
	Size   Vec2 `json:"size"`
}

// Contains reports whether p lies within r, edges inclusive of the origin
// and exclusive of the far side.
func (r Rect) Contains(p Vec2) bool {
	return p.X >= r.Origin.X && p.Y >= r.Origin.Y &&
		p.X < r.Origin.X+r.Size.X && p.Y < r.Origin.Y+r.Size.Y
}

// Center returns the midpoint of r.
func (r Rect) Center() Vec2 {
	return Vec2{r.Origin.X + r.Size.X/2, r.Origin.Y + r.Size.Y/2}
}

// Empty reports whether r has no area.
func (r Rect) Empty() bool { return r.Size.X <= 0 || r.Size.Y <= 0 }
