// Package headless provides in-memory surfaces and outputs for running the
// layout engine without a display server: the control socket maps windows
// through it, and the simulator and tests drive the engine with it.
package headless

import (
	"github.com/google/uuid"

	"github.com/1broseidon/strata/internal/geometry"
	"github.com/1broseidon/strata/internal/window"
)

// Surface is a solid rectangle with a title.
type Surface struct {
	id    uuid.UUID
	title string
	app   string
	size  geometry.Size
	// inset shrinks the input region on every side, like a client-side
	// shadow that should not take clicks.
	inset int
	color string
}

// NewSurface returns a surface with a fresh identity.
func NewSurface(title string) *Surface {
	return &Surface{id: uuid.New(), title: title, color: "#808080"}
}

// ID is the surface's stable identity.
func (s *Surface) ID() uuid.UUID { return s.id }

func (s *Surface) Title() string { return s.title }

// AppID is the application identifier, if any.
func (s *Surface) AppID() string { return s.app }

// SetAppID sets the application identifier.
func (s *Surface) SetAppID(app string) { s.app = app }

// SetSize sets the content size the client last committed.
func (s *Surface) SetSize(size geometry.Size) { s.size = size }

// SetInputInset excludes a border of n pixels from the input region.
func (s *Surface) SetInputInset(n int) { s.inset = n }

// SetColor sets the fill colour reported by RenderElements.
func (s *Surface) SetColor(c string) { s.color = c }

func (s *Surface) Geometry() geometry.Rect {
	return geometry.RectFrom(geometry.Point{X: s.inset, Y: s.inset}, s.size)
}

func (s *Surface) BBox() geometry.Rect {
	return geometry.Rect{Width: s.size.Width + 2*s.inset, Height: s.size.Height + 2*s.inset}
}

// Fill is the element a headless surface draws.
type Fill struct {
	Surface uuid.UUID
	Rect    geometry.Rect
	Color   string
	Scale   float64
	Alpha   float32
}

// Bounds implements window.Element.
func (f Fill) Bounds() geometry.Rect { return f.Rect }

func (s *Surface) RenderElements(_ any, loc geometry.Point, scale float64, alpha float32) []window.Element {
	return []window.Element{Fill{
		Surface: s.id,
		Rect:    s.BBox().Translate(loc),
		Color:   s.color,
		Scale:   scale,
		Alpha:   alpha,
	}}
}

func (s *Surface) InputRegionContains(p geometry.PointF) bool {
	return s.Geometry().Contains(p)
}

// Configure resizes the surface to fill rect, as a well-behaved client
// would after receiving a configure event.
func (s *Surface) Configure(rect geometry.Rect) {
	s.size = rect.Size()
}
