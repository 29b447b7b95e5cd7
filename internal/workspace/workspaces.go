package workspace

import (
	"errors"
	"fmt"
	"iter"
	"slices"

	"github.com/1broseidon/strata/internal/window"
)

// MaxWorkspaces bounds the size of a Workspaces collection.
const MaxWorkspaces = 32

// ErrInvalidWorkspace is returned for workspace indexes outside the
// collection. The cursor is never clamped.
var ErrInvalidWorkspace = errors.New("invalid workspace index")

// Workspaces is a fixed collection of workspaces sharing one window arena,
// plus the index of the active one.
type Workspaces struct {
	arena   *window.Arena
	spaces  []*Workspace
	current int
}

// NewWorkspaces creates count empty workspaces.
func NewWorkspaces(count int, arena *window.Arena, settings Settings) (*Workspaces, error) {
	if count < 1 || count > MaxWorkspaces {
		return nil, fmt.Errorf("workspace count %d out of range [1, %d]", count, MaxWorkspaces)
	}
	if arena == nil {
		arena = window.NewArena()
	}
	ws := &Workspaces{arena: arena, spaces: make([]*Workspace, count)}
	for i := range ws.spaces {
		ws.spaces[i] = New(arena, settings)
	}
	return ws, nil
}

// Arena returns the shared window arena.
func (ws *Workspaces) Arena() *window.Arena {
	return ws.arena
}

// Len returns the number of workspaces.
func (ws *Workspaces) Len() int {
	return len(ws.spaces)
}

// Current returns the active workspace.
func (ws *Workspaces) Current() *Workspace {
	return ws.spaces[ws.current]
}

// CurrentIndex returns the index of the active workspace.
func (ws *Workspaces) CurrentIndex() int {
	return ws.current
}

// Get returns workspace i.
func (ws *Workspaces) Get(i int) (*Workspace, error) {
	if i < 0 || i >= len(ws.spaces) {
		return nil, fmt.Errorf("workspace %d: %w", i, ErrInvalidWorkspace)
	}
	return ws.spaces[i], nil
}

// All yields every workspace with its index.
func (ws *Workspaces) All() iter.Seq2[int, *Workspace] {
	return slices.All(ws.spaces)
}

// Activate makes workspace id the active one.
func (ws *Workspaces) Activate(id int) error {
	if _, err := ws.Get(id); err != nil {
		return err
	}
	ws.current = id
	return nil
}

// WorkspaceFromWindow returns the workspace holding id and its index.
func (ws *Workspaces) WorkspaceFromWindow(id window.ID) (*Workspace, int, bool) {
	for i, w := range ws.spaces {
		if w.ContainsWindow(id) {
			return w, i, true
		}
	}
	return nil, -1, false
}

// MoveWindowToWorkspace detaches id from whichever workspace holds it and
// attaches it to target, refreshing geometry on both. A window that is on
// no workspace is left alone.
func (ws *Workspaces) MoveWindowToWorkspace(id window.ID, target int) error {
	dst, err := ws.Get(target)
	if err != nil {
		return err
	}
	src, _, ok := ws.WorkspaceFromWindow(id)
	if !ok {
		return nil
	}
	removed, ok := src.RemoveWindow(id)
	if !ok {
		return nil
	}
	return dst.AddWindow(removed.ID)
}

// AllWindows yields the windows of every workspace, workspace by workspace.
func (ws *Workspaces) AllWindows() iter.Seq[*window.Window] {
	return func(yield func(*window.Window) bool) {
		for _, w := range ws.spaces {
			for win := range w.Windows() {
				if !yield(win) {
					return
				}
			}
		}
	}
}

// Map registers a surface and places it on the active workspace. A surface
// that is already managed is returned as is.
func (ws *Workspaces) Map(s window.Surface) (*window.Window, error) {
	if win, ok := ws.arena.Lookup(s); ok {
		return win, nil
	}
	win := ws.arena.Insert(s)
	if err := ws.Current().AddWindow(win.ID); err != nil {
		ws.arena.Delete(win.ID)
		return nil, err
	}
	return win, nil
}

// Unmap removes a window from its workspace and destroys it.
func (ws *Workspaces) Unmap(id window.ID) (*window.Window, bool) {
	win, ok := ws.arena.Get(id)
	if !ok {
		return nil, false
	}
	if w, _, found := ws.WorkspaceFromWindow(id); found {
		w.RemoveWindow(id)
	}
	ws.arena.Delete(id)
	return win, true
}

// Outputs returns every output associated with any workspace, without
// duplicates.
func (ws *Workspaces) Outputs() []Output {
	var out []Output
	for _, w := range ws.spaces {
		for _, o := range w.outputs {
			if !slices.Contains(out, o) {
				out = append(out, o)
			}
		}
	}
	return out
}

// AddOutput associates o with every workspace.
func (ws *Workspaces) AddOutput(o Output) {
	for _, w := range ws.spaces {
		w.AddOutput(o)
	}
}

// RemoveOutput drops o from every workspace.
func (ws *Workspaces) RemoveOutput(o Output) bool {
	removed := false
	for _, w := range ws.spaces {
		if w.RemoveOutput(o) {
			removed = true
		}
	}
	return removed
}

// SetSettings applies geometry settings to every workspace.
func (ws *Workspaces) SetSettings(s Settings) {
	for _, w := range ws.spaces {
		w.SetSettings(s)
	}
}

// RefreshAll re-resolves geometry everywhere, e.g. after an output changed
// mode, scale or transform.
func (ws *Workspaces) RefreshAll() {
	for _, w := range ws.spaces {
		w.Refresh()
	}
}

// Verify checks every workspace and that no window is on two workspaces or
// on none.
func (ws *Workspaces) Verify() error {
	if ws.current < 0 || ws.current >= len(ws.spaces) {
		return fmt.Errorf("current %d: %w", ws.current, ErrInvalidWorkspace)
	}
	owner := make(map[window.ID]int)
	for i, w := range ws.spaces {
		if err := w.Verify(); err != nil {
			return fmt.Errorf("workspace %d: %w", i, err)
		}
		for _, id := range w.windows {
			if prev, dup := owner[id]; dup {
				return fmt.Errorf("%v is on workspaces %d and %d", id, prev, i)
			}
			owner[id] = i
		}
	}
	for win := range ws.arena.All() {
		if _, ok := owner[win.ID]; !ok {
			return fmt.Errorf("%v is on no workspace", win.ID)
		}
	}
	return nil
}
