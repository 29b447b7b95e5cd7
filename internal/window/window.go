// Package window defines managed windows and the arena that owns them.
//
// The layout tree and a workspace's display list both refer to a window by
// its ID. Every rectangle update goes through the *Window stored in the
// Arena, so the two structures never hold diverging copies.
package window

import (
	"fmt"

	"github.com/1broseidon/strata/internal/geometry"
)

// ID identifies a managed window for its whole lifetime. IDs are never
// reused within an Arena; zero means "no window".
type ID int

func (id ID) String() string {
	return fmt.Sprintf("w%d", int(id))
}

// Element is one drawable produced by render composition.
type Element interface {
	Bounds() geometry.Rect
}

// Surface is the client surface behind a managed window.
//
// Surfaces are compared with ==, so implementations must be comparable,
// normally pointer types.
type Surface interface {
	// Geometry is the content rectangle relative to the surface origin.
	Geometry() geometry.Rect
	// BBox covers everything the surface draws, relative to the surface origin.
	BBox() geometry.Rect
	RenderElements(renderer any, loc geometry.Point, scale float64, alpha float32) []Element
	// InputRegionContains tests a point in surface-local coordinates.
	InputRegionContains(p geometry.PointF) bool
}

// Titled is implemented by surfaces that carry a human readable title.
type Titled interface {
	Title() string
}

// Identified is implemented by surfaces that report an application id.
type Identified interface {
	AppID() string
}

// Configurable is implemented by surfaces that resize themselves when the
// layout assigns a new rectangle.
type Configurable interface {
	Configure(rect geometry.Rect)
}

// Window is a surface under layout control plus its assigned rectangle.
type Window struct {
	ID      ID
	Surface Surface
	Rect    geometry.Rect
}

// RenderLocation is where the surface origin must be drawn so that its
// content lands on the assigned rectangle.
func (w *Window) RenderLocation() geometry.Point {
	return w.Rect.Loc().Sub(w.Surface.Geometry().Loc())
}

// BBox returns the surface bounding box in workspace coordinates.
func (w *Window) BBox() geometry.Rect {
	return w.Surface.BBox().Translate(w.RenderLocation())
}

// Title returns the surface title, or the window ID when the surface has none.
func (w *Window) Title() string {
	if t, ok := w.Surface.(Titled); ok && t.Title() != "" {
		return t.Title()
	}
	return w.ID.String()
}
