package hotkeys

import (
	"errors"
	"fmt"

	"github.com/1broseidon/strata/internal/focus"
	"github.com/1broseidon/strata/internal/window"
)

// ErrNoFocus is returned by window actions when nothing is focused.
var ErrNoFocus = errors.New("no focused window")

// Controller is the part of the engine bindings act on.
type Controller interface {
	Activate(workspace int) error
	MoveWindow(id window.ID, workspace int) error
	Unmap(id window.ID) error
	FocusedWindow() (window.ID, bool)
	FocusDirection(dir focus.Direction) (window.ID, bool)
}

// Binding ties a keybind key sequence to an action.
type Binding struct {
	Keys        string
	Description string
	Run         func(Controller) error
}

// maxDigitWorkspaces is the number of workspaces reachable from the digit row.
const maxDigitWorkspaces = 9

// DefaultBindings returns the standard binding set for modifier (e.g.
// "Mod4"):
//
//	mod-1..9        activate workspace
//	mod-shift-1..9  move focused window to workspace
//	mod-h/j/k/l     focus left/down/up/right (arrows work too)
//	mod-shift-q     close focused window
//
// Only digits up to workspaces are bound.
func DefaultBindings(modifier string, workspaces int) []Binding {
	n := workspaces
	if n > maxDigitWorkspaces {
		n = maxDigitWorkspaces
	}

	var out []Binding
	for i := 0; i < n; i++ {
		ws := i
		digit := fmt.Sprintf("%d", i+1)
		out = append(out,
			Binding{
				Keys:        modifier + "-" + digit,
				Description: fmt.Sprintf("activate workspace %d", ws),
				Run: func(c Controller) error {
					return c.Activate(ws)
				},
			},
			Binding{
				Keys:        modifier + "-shift-" + digit,
				Description: fmt.Sprintf("move focused window to workspace %d", ws),
				Run: func(c Controller) error {
					id, ok := c.FocusedWindow()
					if !ok {
						return ErrNoFocus
					}
					return c.MoveWindow(id, ws)
				},
			},
		)
	}

	dirs := []struct {
		vi, arrow string
		dir       focus.Direction
	}{
		{"h", "Left", focus.Left},
		{"j", "Down", focus.Down},
		{"k", "Up", focus.Up},
		{"l", "Right", focus.Right},
	}
	for _, d := range dirs {
		dir := d.dir
		run := func(c Controller) error {
			c.FocusDirection(dir)
			return nil
		}
		desc := "focus " + dir.String()
		out = append(out,
			Binding{Keys: modifier + "-" + d.vi, Description: desc, Run: run},
			Binding{Keys: modifier + "-" + d.arrow, Description: desc, Run: run},
		)
	}

	out = append(out, Binding{
		Keys:        modifier + "-shift-q",
		Description: "close focused window",
		Run: func(c Controller) error {
			id, ok := c.FocusedWindow()
			if !ok {
				return ErrNoFocus
			}
			return c.Unmap(id)
		},
	})
	return out
}
