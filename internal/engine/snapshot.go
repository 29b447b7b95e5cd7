package engine

import (
	"github.com/1broseidon/strata/internal/geometry"
	"github.com/1broseidon/strata/internal/layout"
	"github.com/1broseidon/strata/internal/window"
	"github.com/1broseidon/strata/internal/workspace"
)

// Snapshot is a point-in-time copy of the engine state, safe to read
// without holding the engine lock.
type Snapshot struct {
	Current    int             `json:"current"`
	Focused    window.ID       `json:"focused,omitempty"`
	Focus      string          `json:"focus"`
	Outputs    []OutputInfo    `json:"outputs"`
	Workspaces []WorkspaceInfo `json:"workspaces"`
}

type OutputInfo struct {
	Name      string         `json:"name"`
	Mode      geometry.Size  `json:"mode"`
	HasMode   bool           `json:"has_mode"`
	Transform string         `json:"transform"`
	Scale     float64        `json:"scale"`
	Location  geometry.Point `json:"location"`
	Geometry  geometry.Rect  `json:"geometry"`
}

type WorkspaceInfo struct {
	Index   int           `json:"index"`
	Active  bool          `json:"active"`
	Area    geometry.Rect `json:"area"`
	Windows []WindowInfo  `json:"windows"`
	Tree    []TreeNode    `json:"tree,omitempty"`
}

type WindowInfo struct {
	ID    window.ID     `json:"id"`
	Title string        `json:"title,omitempty"`
	Rect  geometry.Rect `json:"rect"`
}

// TreeNode is one node of a workspace layout tree, in pre-order. Parent is
// -1 for the root; Window is set for leaves only.
type TreeNode struct {
	Index  int       `json:"index"`
	Parent int       `json:"parent"`
	Leaf   bool      `json:"leaf"`
	Axis   string    `json:"axis,omitempty"`
	Ratio  float64   `json:"ratio,omitempty"`
	Window window.ID `json:"window,omitempty"`
	Depth  int       `json:"depth"`
}

// Workspace returns the snapshot of workspace i.
func (s Snapshot) Workspace(i int) (WorkspaceInfo, bool) {
	if i < 0 || i >= len(s.Workspaces) {
		return WorkspaceInfo{}, false
	}
	return s.Workspaces[i], true
}

// WindowCount returns the number of windows across all workspaces.
func (s Snapshot) WindowCount() int {
	n := 0
	for _, ws := range s.Workspaces {
		n += len(ws.Windows)
	}
	return n
}

// Snapshot copies the engine state.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	snap := Snapshot{
		Current: e.spaces.CurrentIndex(),
		Focused: e.focusedWindowLocked(),
		Focus:   workspace.Describe(e.focused),
	}
	cur := e.spaces.Current()
	for _, o := range e.spaces.Outputs() {
		mode, hasMode := o.CurrentMode()
		geo, _ := cur.OutputGeometry(o)
		snap.Outputs = append(snap.Outputs, OutputInfo{
			Name:      o.Name(),
			Mode:      mode,
			HasMode:   hasMode,
			Transform: o.CurrentTransform().String(),
			Scale:     o.CurrentScale(),
			Location:  o.Location(),
			Geometry:  geo,
		})
	}
	for i, w := range e.spaces.All() {
		info := WorkspaceInfo{
			Index:   i,
			Active:  i == snap.Current,
			Area:    w.Area(),
			Windows: []WindowInfo{},
		}
		for win := range w.Windows() {
			info.Windows = append(info.Windows, WindowInfo{ID: win.ID, Title: win.Title(), Rect: win.Rect})
		}
		w.WalkTree(func(n layout.NodeInfo) bool {
			node := TreeNode{
				Index:  n.Index,
				Parent: n.Parent,
				Leaf:   n.Kind == layout.KindLeaf,
				Depth:  n.Depth,
			}
			if node.Leaf {
				node.Window = n.Window
			} else {
				node.Axis = n.Axis.String()
				node.Ratio = n.Ratio
			}
			info.Tree = append(info.Tree, node)
			return true
		})
		snap.Workspaces = append(snap.Workspaces, info)
	}
	return snap
}
