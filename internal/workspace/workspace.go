// Package workspace holds the per-workspace window model: a display-order
// list and a dwindle tree over the same window IDs, the outputs the
// workspace spans, and the render and hit-test queries built on top.
package workspace

import (
	"errors"
	"fmt"
	"iter"
	"slices"

	"github.com/1broseidon/strata/internal/geometry"
	"github.com/1broseidon/strata/internal/layout"
	"github.com/1broseidon/strata/internal/window"
)

// ErrUnknownWindow is returned when an ID has no window in the arena.
var ErrUnknownWindow = errors.New("unknown window")

// Output is a display the workspace is laid out on.
type Output interface {
	Name() string
	// CurrentMode reports the mode size in physical pixels, or false when the
	// output has no mode yet.
	CurrentMode() (geometry.Size, bool)
	CurrentTransform() geometry.Transform
	CurrentScale() float64
	// Location is the output origin in the global logical space.
	Location() geometry.Point
}

// Settings control geometry resolution.
type Settings struct {
	InnerGap int
	OuterGap int
	Ratio    float64
	// Fallback is the area used while the workspace has no outputs.
	Fallback geometry.Rect
}

// DefaultSettings returns gapless settings with an even split ratio and a
// 1920x1080 fallback area.
func DefaultSettings() Settings {
	return Settings{
		Ratio:    layout.DefaultRatio,
		Fallback: geometry.Rect{Width: 1920, Height: 1080},
	}
}

// Workspace is an ordered window list, a set of outputs, and one layout
// tree. The list and the tree always hold the same window IDs.
type Workspace struct {
	arena    *window.Arena
	windows  []window.ID
	outputs  []Output
	tree     *layout.Tree
	settings Settings
}

// New creates an empty workspace backed by arena.
func New(arena *window.Arena, settings Settings) *Workspace {
	return &Workspace{
		arena:    arena,
		tree:     layout.New(),
		settings: settings,
	}
}

// AddWindow appends id to the display list and inserts it into the tree,
// then re-resolves geometry. Adding a window that is already present moves
// it to the top of the stack and to the newest leaf.
func (w *Workspace) AddWindow(id window.ID) error {
	if _, ok := w.arena.Get(id); !ok {
		return fmt.Errorf("add %v: %w", id, ErrUnknownWindow)
	}
	w.windows = slices.DeleteFunc(w.windows, func(x window.ID) bool { return x == id })
	w.windows = append(w.windows, id)
	// Drop any old leaf before choosing the split axis.
	w.tree.Remove(id)
	w.tree.Insert(id, w.tree.NextSplit(), w.settings.Ratio)
	w.Refresh()
	return nil
}

// RemoveWindow takes id out of both the list and the tree and re-resolves
// geometry. The window stays in the arena so it can be attached elsewhere.
func (w *Workspace) RemoveWindow(id window.ID) (*window.Window, bool) {
	i := slices.Index(w.windows, id)
	if i < 0 {
		return nil, false
	}
	w.windows = slices.Delete(w.windows, i, i+1)
	w.tree.Remove(id)
	w.Refresh()

	win, ok := w.arena.Get(id)
	return win, ok
}

// ContainsWindow reports whether id is on this workspace.
func (w *Workspace) ContainsWindow(id window.ID) bool {
	return slices.Contains(w.windows, id)
}

// Len returns the number of windows.
func (w *Workspace) Len() int {
	return len(w.windows)
}

// IDs returns a copy of the display list, bottom of the stack first.
func (w *Workspace) IDs() []window.ID {
	return slices.Clone(w.windows)
}

// Windows yields windows in display order.
func (w *Workspace) Windows() iter.Seq[*window.Window] {
	return func(yield func(*window.Window) bool) {
		for _, id := range w.windows {
			win, ok := w.arena.Get(id)
			if !ok {
				continue
			}
			if !yield(win) {
				return
			}
		}
	}
}

// Resize sets the split ratio directly above id and re-resolves geometry.
func (w *Workspace) Resize(id window.ID, ratio float64) bool {
	if !w.tree.SetRatio(id, ratio) {
		return false
	}
	w.Refresh()
	return true
}

// WalkTree exposes the layout tree read-only.
func (w *Workspace) WalkTree(fn func(layout.NodeInfo) bool) {
	w.tree.Walk(fn)
}

// Settings returns the geometry settings.
func (w *Workspace) Settings() Settings {
	return w.settings
}

// SetSettings replaces the geometry settings and re-resolves geometry.
func (w *Workspace) SetSettings(s Settings) {
	w.settings = s
	w.Refresh()
}

// Outputs returns the associated outputs in the order they were added.
func (w *Workspace) Outputs() []Output {
	return slices.Clone(w.outputs)
}

// HasOutput reports whether o is associated with the workspace.
func (w *Workspace) HasOutput(o Output) bool {
	return slices.Contains(w.outputs, o)
}

// AddOutput associates o with the workspace.
func (w *Workspace) AddOutput(o Output) {
	if w.HasOutput(o) {
		return
	}
	w.outputs = append(w.outputs, o)
	w.Refresh()
}

// RemoveOutput drops o from the workspace.
func (w *Workspace) RemoveOutput(o Output) bool {
	i := slices.Index(w.outputs, o)
	if i < 0 {
		return false
	}
	w.outputs = slices.Delete(w.outputs, i, i+1)
	w.Refresh()
	return true
}

// OutputGeometry returns the logical rectangle of o: the transformed mode
// size divided by the fractional scale, rounded up, at origin (0,0). It
// reports false when o is not associated or has no mode.
func (w *Workspace) OutputGeometry(o Output) (geometry.Rect, bool) {
	if !w.HasOutput(o) {
		return geometry.Rect{}, false
	}
	return outputGeometry(o)
}

func outputGeometry(o Output) (geometry.Rect, bool) {
	mode, ok := o.CurrentMode()
	if !ok {
		return geometry.Rect{}, false
	}
	size := geometry.ToLogical(o.CurrentTransform().TransformSize(mode), o.CurrentScale())
	return geometry.RectFrom(geometry.Point{}, size), true
}

// ClampCoords limits p to the first output's logical size. Without outputs
// p is returned unchanged.
func (w *Workspace) ClampCoords(p geometry.PointF) geometry.PointF {
	if len(w.outputs) == 0 {
		return p
	}
	geo, ok := w.OutputGeometry(w.outputs[0])
	if !ok {
		return p
	}
	return geometry.PointF{
		X: geometry.Clamp(p.X, 0, float64(geo.Width)),
		Y: geometry.Clamp(p.Y, 0, float64(geo.Height)),
	}
}

// WindowUnder returns the topmost surface whose bounding box contains p and
// whose input region accepts it, along with the surface's render location.
// Subtracting the location from p gives surface-local coordinates.
func (w *Workspace) WindowUnder(p geometry.PointF) (window.Surface, geometry.Point, bool) {
	for i := len(w.windows) - 1; i >= 0; i-- {
		win, ok := w.arena.Get(w.windows[i])
		if !ok || !win.BBox().Contains(p) {
			continue
		}
		loc := win.RenderLocation()
		if win.Surface.InputRegionContains(p.Sub(loc.ToF())) {
			return win.Surface, loc, true
		}
	}
	return nil, geometry.Point{}, false
}

// Area is the union of the outputs' global rectangles, or the fallback
// area when there are none.
func (w *Workspace) Area() geometry.Rect {
	var rects []geometry.Rect
	for _, o := range w.outputs {
		geo, ok := outputGeometry(o)
		if !ok {
			continue
		}
		rects = append(rects, geo.Translate(o.Location()))
	}
	if len(rects) == 0 {
		return w.settings.Fallback
	}
	return geometry.Union(rects...)
}

// Refresh resolves the tree over the workspace area and writes each leaf's
// rectangle, less the inner gap, into its window.
func (w *Workspace) Refresh() {
	area := w.Area().Inset(w.settings.OuterGap)
	w.tree.Resolve(area, func(id window.ID, r geometry.Rect) {
		if win, ok := w.arena.Get(id); ok {
			win.Rect = r.Inset(w.settings.InnerGap)
		}
	})
}

// Verify checks that the display list and the tree hold exactly the same
// windows and that every one of them is alive in the arena.
func (w *Workspace) Verify() error {
	if err := w.tree.Check(); err != nil {
		return fmt.Errorf("tree: %w", err)
	}
	listed := make(map[window.ID]bool, len(w.windows))
	for _, id := range w.windows {
		if listed[id] {
			return fmt.Errorf("%v listed twice", id)
		}
		listed[id] = true
		if _, ok := w.arena.Get(id); !ok {
			return fmt.Errorf("%v listed but not in arena", id)
		}
		if !w.tree.Contains(id) {
			return fmt.Errorf("%v listed but has no leaf", id)
		}
	}
	for id := range w.tree.Leaves() {
		if !listed[id] {
			return fmt.Errorf("leaf %v is not listed", id)
		}
	}
	return nil
}
