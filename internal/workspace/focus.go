package workspace

import (
	"fmt"

	"github.com/1broseidon/strata/internal/geometry"
	"github.com/1broseidon/strata/internal/window"
)

// FocusTarget is whatever holds logical focus. It is one of WindowTarget,
// LayerSurfaceTarget or PopupTarget.
type FocusTarget interface {
	focusTarget()
}

// LayerSurface is a shell surface anchored to an output layer (panels,
// launchers, lock screens).
type LayerSurface interface {
	Namespace() string
}

// Popup is a transient surface positioned relative to a parent.
type Popup interface {
	Parent() window.Surface
	Geometry() geometry.Rect
}

// WindowTarget focuses a managed window.
type WindowTarget struct {
	Window window.ID
}

// LayerSurfaceTarget focuses a layer-shell surface.
type LayerSurfaceTarget struct {
	Surface LayerSurface
}

// PopupTarget focuses a popup.
type PopupTarget struct {
	Popup Popup
}

func (WindowTarget) focusTarget()       {}
func (LayerSurfaceTarget) focusTarget() {}
func (PopupTarget) focusTarget()        {}

// Describe renders a focus target for logs and status output.
func Describe(t FocusTarget) string {
	switch t := t.(type) {
	case WindowTarget:
		return "window " + t.Window.String()
	case LayerSurfaceTarget:
		return fmt.Sprintf("layer %q", t.Surface.Namespace())
	case PopupTarget:
		return fmt.Sprintf("popup at %v", t.Popup.Geometry())
	default:
		return "none"
	}
}

// SameTarget reports whether a and b refer to the same focus holder.
func SameTarget(a, b FocusTarget) bool {
	switch a := a.(type) {
	case WindowTarget:
		b, ok := b.(WindowTarget)
		return ok && a.Window == b.Window
	case LayerSurfaceTarget:
		b, ok := b.(LayerSurfaceTarget)
		return ok && a.Surface == b.Surface
	case PopupTarget:
		b, ok := b.(PopupTarget)
		return ok && a.Popup == b.Popup
	default:
		return a == nil && b == nil
	}
}
