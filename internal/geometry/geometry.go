// Package geometry holds the integer and floating point primitives used for
// layout math in logical coordinates.
package geometry

import (
	"fmt"
	"math"
)

// Point is a position in logical coordinates.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Add returns p translated by q.
func (p Point) Add(q Point) Point {
	return Point{X: p.X + q.X, Y: p.Y + q.Y}
}

// Sub returns p minus q.
func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

// ToF converts p to a fractional point.
func (p Point) ToF() PointF {
	return PointF{X: float64(p.X), Y: float64(p.Y)}
}

// PointF is a fractional position, used for pointer coordinates.
type PointF struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Sub returns p minus q.
func (p PointF) Sub(q PointF) PointF {
	return PointF{X: p.X - q.X, Y: p.Y - q.Y}
}

// Size is a width and height pair.
type Size struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Empty reports whether s covers no area.
func (s Size) Empty() bool {
	return s.Width <= 0 || s.Height <= 0
}

// Rect represents a position and size in logical coordinates.
type Rect struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// RectFrom builds a rectangle from a location and a size.
func RectFrom(loc Point, size Size) Rect {
	return Rect{X: loc.X, Y: loc.Y, Width: size.Width, Height: size.Height}
}

func (r Rect) String() string {
	return fmt.Sprintf("(%d,%d,%d,%d)", r.X, r.Y, r.Width, r.Height)
}

// Loc returns the top-left corner.
func (r Rect) Loc() Point {
	return Point{X: r.X, Y: r.Y}
}

// Size returns the width and height.
func (r Rect) Size() Size {
	return Size{Width: r.Width, Height: r.Height}
}

// Empty reports whether r covers no area.
func (r Rect) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Area returns the covered area, zero for degenerate rectangles.
func (r Rect) Area() int {
	if r.Empty() {
		return 0
	}
	return r.Width * r.Height
}

// Contains reports whether p lies inside r. The right and bottom edges are
// exclusive.
func (r Rect) Contains(p PointF) bool {
	if r.Empty() {
		return false
	}
	return p.X >= float64(r.X) && p.X < float64(r.X+r.Width) &&
		p.Y >= float64(r.Y) && p.Y < float64(r.Y+r.Height)
}

// Translate moves r by p.
func (r Rect) Translate(p Point) Rect {
	r.X += p.X
	r.Y += p.Y
	return r
}

// Intersect returns the overlapping part of r and o.
func (r Rect) Intersect(o Rect) (Rect, bool) {
	x1 := max(r.X, o.X)
	y1 := max(r.Y, o.Y)
	x2 := min(r.X+r.Width, o.X+o.Width)
	y2 := min(r.Y+r.Height, o.Y+o.Height)
	if x2 <= x1 || y2 <= y1 {
		return Rect{}, false
	}
	return Rect{X: x1, Y: y1, Width: x2 - x1, Height: y2 - y1}, true
}

// Overlaps reports whether r and o share any area.
func (r Rect) Overlaps(o Rect) bool {
	_, ok := r.Intersect(o)
	return ok
}

// Inset shrinks r by n on every side. A rectangle too small for the inset
// collapses to zero size at its centre.
func (r Rect) Inset(n int) Rect {
	if n == 0 {
		return r
	}
	out := Rect{X: r.X + n, Y: r.Y + n, Width: r.Width - 2*n, Height: r.Height - 2*n}
	if out.Width < 0 {
		out.X = r.X + r.Width/2
		out.Width = 0
	}
	if out.Height < 0 {
		out.Y = r.Y + r.Height/2
		out.Height = 0
	}
	return out
}

// Union returns the bounding rectangle of all non-empty rects. If every rect
// is empty the result is the zero Rect.
func Union(rects ...Rect) Rect {
	var out Rect
	found := false
	for _, r := range rects {
		if r.Empty() {
			continue
		}
		if !found {
			out = r
			found = true
			continue
		}
		x1 := min(out.X, r.X)
		y1 := min(out.Y, r.Y)
		x2 := max(out.X+out.Width, r.X+r.Width)
		y2 := max(out.Y+out.Height, r.Y+r.Height)
		out = Rect{X: x1, Y: y1, Width: x2 - x1, Height: y2 - y1}
	}
	return out
}

// ToLogical converts a physical size to logical units through a fractional
// scale, rounding up. A non-positive scale is treated as 1.
func ToLogical(s Size, scale float64) Size {
	if scale <= 0 || math.IsNaN(scale) || math.IsInf(scale, 0) {
		scale = 1
	}
	return Size{
		Width:  int(math.Ceil(float64(s.Width) / scale)),
		Height: int(math.Ceil(float64(s.Height) / scale)),
	}
}

// Clamp limits v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(v, hi))
}
