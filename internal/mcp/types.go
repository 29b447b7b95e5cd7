package mcp

import (
	"github.com/1broseidon/strata/internal/engine"
	"github.com/1broseidon/strata/internal/geometry"
	"github.com/1broseidon/strata/internal/ipc"
	"github.com/1broseidon/strata/internal/window"
)

// ListWorkspacesInput has no parameters.
type ListWorkspacesInput struct{}

// ListWorkspacesOutput is the output of the list_workspaces tool.
type ListWorkspacesOutput struct {
	Current    int                    `json:"current"`
	Workspaces []ipc.WorkspaceSummary `json:"workspaces"`
}

// ActivateWorkspaceInput is the input for the activate_workspace tool.
type ActivateWorkspaceInput struct {
	Workspace int `json:"workspace" jsonschema:"required,Index of the workspace to activate"`
}

type ActivateWorkspaceOutput struct {
	Workspace int `json:"workspace"`
}

// MapWindowInput is the input for the map_window tool.
type MapWindowInput struct {
	Title     string `json:"title" jsonschema:"required,Window title"`
	AppID     string `json:"app_id,omitempty" jsonschema:"Application identifier recorded on the surface"`
	Workspace *int   `json:"workspace,omitempty" jsonschema:"Target workspace index (defaults to the active workspace)"`
}

type MapWindowOutput struct {
	Window    window.ID     `json:"window"`
	Workspace int           `json:"workspace"`
	Rect      geometry.Rect `json:"rect"`
}

// UnmapWindowInput is the input for the unmap_window tool.
type UnmapWindowInput struct {
	Window window.ID `json:"window" jsonschema:"required,Id of the window to remove"`
}

type UnmapWindowOutput struct {
	Window   window.ID `json:"window"`
	Unmapped bool      `json:"unmapped"`
}

// MoveWindowInput is the input for the move_window tool.
type MoveWindowInput struct {
	Window    window.ID `json:"window" jsonschema:"required,Id of the window to move"`
	Workspace int       `json:"workspace" jsonschema:"required,Index of the destination workspace"`
}

type MoveWindowOutput struct {
	Window    window.ID `json:"window"`
	Workspace int       `json:"workspace"`
}

// GetLayoutInput is the input for the get_layout tool.
type GetLayoutInput struct {
	Workspace *int `json:"workspace,omitempty" jsonschema:"Restrict the result to this workspace index"`
}

// GetLayoutOutput is the output of the get_layout tool.
type GetLayoutOutput struct {
	Current    int                    `json:"current"`
	Focus      string                 `json:"focus"`
	Outputs    []engine.OutputInfo    `json:"outputs"`
	Workspaces []engine.WorkspaceInfo `json:"workspaces"`
}
