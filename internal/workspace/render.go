package workspace

import (
	"github.com/1broseidon/strata/internal/geometry"
	"github.com/1broseidon/strata/internal/window"
)

// RenderConfig is everything render composition needs besides the
// workspace itself.
type RenderConfig struct {
	BorderWidth   int
	ActiveColor   string
	InactiveColor string
	// Focused selects which window's border uses ActiveColor.
	Focused window.ID
	// Scale and Alpha are passed through to surfaces; zero means 1.
	Scale float64
	Alpha float32
	// Rects overrides assigned rectangles, e.g. while a transition runs.
	Rects map[window.ID]geometry.Rect
}

// Decoration is the border drawn around a window.
type Decoration struct {
	Window window.ID
	Rect   geometry.Rect
	Width  int
	Color  string
}

// Bounds implements window.Element.
func (d Decoration) Bounds() geometry.Rect {
	return d.Rect
}

// RenderElements composes the workspace bottom to top: for each window in
// display order a decoration, then the surface's own elements placed at
// its render location. Later elements draw over earlier ones.
func (w *Workspace) RenderElements(renderer any, cfg RenderConfig) []window.Element {
	scale := cfg.Scale
	if scale <= 0 {
		scale = 1
	}
	alpha := cfg.Alpha
	if alpha <= 0 {
		alpha = 1
	}

	var out []window.Element
	for win := range w.Windows() {
		rect := win.Rect
		if r, ok := cfg.Rects[win.ID]; ok {
			rect = r
		}
		if cfg.BorderWidth > 0 {
			color := cfg.InactiveColor
			if win.ID == cfg.Focused {
				color = cfg.ActiveColor
			}
			out = append(out, Decoration{
				Window: win.ID,
				Rect:   rect.Inset(-cfg.BorderWidth),
				Width:  cfg.BorderWidth,
				Color:  color,
			})
		}
		loc := rect.Loc().Sub(win.Surface.Geometry().Loc())
		out = append(out, win.Surface.RenderElements(renderer, loc, scale, alpha)...)
	}
	return out
}
