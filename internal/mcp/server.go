package mcp

import (
	"context"
	"log/slog"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/strata/internal/engine"
	"github.com/1broseidon/strata/internal/ipc"
	"github.com/1broseidon/strata/internal/logging"
	"github.com/1broseidon/strata/internal/window"
)

const (
	ServerName    = "strata"
	ServerVersion = "0.1.0"
)

// Controller is the daemon surface the tools drive. *ipc.Client satisfies it.
type Controller interface {
	ListWorkspaces() (*ipc.WorkspacesData, error)
	ActivateWorkspace(workspace int) error
	MapWindow(title, appID string, workspace *int) (*ipc.MapWindowData, error)
	UnmapWindow(id window.ID) error
	MoveWindow(id window.ID, workspace int) error
	GetLayout() (*engine.Snapshot, error)
}

var _ Controller = (*ipc.Client)(nil)

// Server is the MCP server exposing workspace and window tools.
type Server struct {
	mcpServer *mcpsdk.Server
	ctrl      Controller
	logger    *slog.Logger
}

// NewServer creates a new MCP server backed by ctrl.
func NewServer(ctrl Controller, logger *slog.Logger) *Server {
	if logger == nil {
		logger = logging.Discard()
	}
	s := &Server{
		ctrl:   ctrl,
		logger: logger,
	}

	s.mcpServer = mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    ServerName,
			Version: ServerVersion,
		},
		nil,
	)

	s.registerTools()
	return s
}

// Run starts the MCP server on stdio transport, blocking until done.
func (s *Server) Run(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
}

func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "list_workspaces",
		Description: "List every workspace with its index, whether it is active, its tiling area and the ids of the windows it holds.",
	}, s.handleListWorkspaces)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "activate_workspace",
		Description: "Make the workspace at the given index the active one. Only the active workspace is rendered.",
	}, s.handleActivateWorkspace)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "map_window",
		Description: "Map a new headless window. It splits the most recently inserted window of the target workspace (the active one by default) and receives focus. Returns the window id and its tiled rectangle.",
	}, s.handleMapWindow)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "unmap_window",
		Description: "Remove a window. Its sibling takes over the space the split occupied.",
	}, s.handleUnmapWindow)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "move_window",
		Description: "Move a window to another workspace. Moving it to the workspace it is already on is a no-op.",
	}, s.handleMoveWindow)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "get_layout",
		Description: "Return the resolved layout: outputs, and for each workspace its windows with rectangles and the split tree. Pass workspace to restrict the result to one workspace.",
	}, s.handleGetLayout)
}
