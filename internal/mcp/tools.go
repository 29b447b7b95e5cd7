package mcp

import (
	"context"
	"fmt"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/strata/internal/engine"
)

func (s *Server) handleListWorkspaces(_ context.Context, _ *mcpsdk.CallToolRequest, _ ListWorkspacesInput) (*mcpsdk.CallToolResult, ListWorkspacesOutput, error) {
	data, err := s.ctrl.ListWorkspaces()
	if err != nil {
		return nil, ListWorkspacesOutput{}, err
	}
	return nil, ListWorkspacesOutput{
		Current:    data.Current,
		Workspaces: data.Workspaces,
	}, nil
}

func (s *Server) handleActivateWorkspace(_ context.Context, _ *mcpsdk.CallToolRequest, args ActivateWorkspaceInput) (*mcpsdk.CallToolResult, ActivateWorkspaceOutput, error) {
	if args.Workspace < 0 {
		return nil, ActivateWorkspaceOutput{}, fmt.Errorf("workspace must be >= 0, got %d", args.Workspace)
	}
	if err := s.ctrl.ActivateWorkspace(args.Workspace); err != nil {
		s.logger.Warn("activate_workspace failed", "workspace", args.Workspace, "err", err)
		return nil, ActivateWorkspaceOutput{}, err
	}
	s.logger.Info("activate_workspace", "workspace", args.Workspace)
	return nil, ActivateWorkspaceOutput{Workspace: args.Workspace}, nil
}

func (s *Server) handleMapWindow(_ context.Context, _ *mcpsdk.CallToolRequest, args MapWindowInput) (*mcpsdk.CallToolResult, MapWindowOutput, error) {
	if args.Title == "" {
		return nil, MapWindowOutput{}, fmt.Errorf("title is required")
	}
	if args.Workspace != nil && *args.Workspace < 0 {
		return nil, MapWindowOutput{}, fmt.Errorf("workspace must be >= 0, got %d", *args.Workspace)
	}
	data, err := s.ctrl.MapWindow(args.Title, args.AppID, args.Workspace)
	if err != nil {
		s.logger.Warn("map_window failed", "title", args.Title, "err", err)
		return nil, MapWindowOutput{}, err
	}
	s.logger.Info("map_window", "window", data.Window, "workspace", data.Workspace)
	return nil, MapWindowOutput{
		Window:    data.Window,
		Workspace: data.Workspace,
		Rect:      data.Rect,
	}, nil
}

func (s *Server) handleUnmapWindow(_ context.Context, _ *mcpsdk.CallToolRequest, args UnmapWindowInput) (*mcpsdk.CallToolResult, UnmapWindowOutput, error) {
	if args.Window <= 0 {
		return nil, UnmapWindowOutput{}, fmt.Errorf("window must be a positive id, got %d", args.Window)
	}
	if err := s.ctrl.UnmapWindow(args.Window); err != nil {
		return nil, UnmapWindowOutput{}, err
	}
	s.logger.Info("unmap_window", "window", args.Window)
	return nil, UnmapWindowOutput{Window: args.Window, Unmapped: true}, nil
}

func (s *Server) handleMoveWindow(_ context.Context, _ *mcpsdk.CallToolRequest, args MoveWindowInput) (*mcpsdk.CallToolResult, MoveWindowOutput, error) {
	if args.Window <= 0 {
		return nil, MoveWindowOutput{}, fmt.Errorf("window must be a positive id, got %d", args.Window)
	}
	if args.Workspace < 0 {
		return nil, MoveWindowOutput{}, fmt.Errorf("workspace must be >= 0, got %d", args.Workspace)
	}
	if err := s.ctrl.MoveWindow(args.Window, args.Workspace); err != nil {
		return nil, MoveWindowOutput{}, err
	}
	s.logger.Info("move_window", "window", args.Window, "workspace", args.Workspace)
	return nil, MoveWindowOutput{Window: args.Window, Workspace: args.Workspace}, nil
}

func (s *Server) handleGetLayout(_ context.Context, _ *mcpsdk.CallToolRequest, args GetLayoutInput) (*mcpsdk.CallToolResult, GetLayoutOutput, error) {
	snap, err := s.ctrl.GetLayout()
	if err != nil {
		return nil, GetLayoutOutput{}, err
	}

	out := GetLayoutOutput{
		Current:    snap.Current,
		Focus:      snap.Focus,
		Outputs:    snap.Outputs,
		Workspaces: snap.Workspaces,
	}
	if args.Workspace != nil {
		ws, ok := snap.Workspace(*args.Workspace)
		if !ok {
			return nil, GetLayoutOutput{}, fmt.Errorf("workspace %d does not exist (have %d)", *args.Workspace, len(snap.Workspaces))
		}
		out.Workspaces = []engine.WorkspaceInfo{ws}
	}
	return nil, out, nil
}
