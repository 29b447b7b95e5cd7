package ipc

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/1broseidon/strata/internal/config"
	"github.com/1broseidon/strata/internal/engine"
	"github.com/1broseidon/strata/internal/focus"
	"github.com/1broseidon/strata/internal/geometry"
	"github.com/1broseidon/strata/internal/headless"
	"github.com/1broseidon/strata/internal/logging"
	"github.com/1broseidon/strata/internal/runtimepath"
	"github.com/1broseidon/strata/internal/window"
)

// Server handles IPC requests from clients
type Server struct {
	socketPath   string
	configPath   string
	listener     net.Listener
	engine       *engine.Engine
	logger       *slog.Logger
	sessionID    string
	startTime    time.Time
	reloadChan   chan struct{}
	shuttingDown bool
	shutdownMu   sync.Mutex
}

// NewServer creates a new IPC server. configPath is re-read on RELOAD; an
// empty path means the default location. reloadChan, if non-nil, is
// signalled after a successful reload.
func NewServer(eng *engine.Engine, configPath string, reloadChan chan struct{}, logger *slog.Logger) (*Server, error) {
	socketPath, err := runtimepath.SocketPath()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve IPC socket path: %w", err)
	}
	if logger == nil {
		logger = logging.Discard()
	}

	// Remove existing socket if present
	os.Remove(socketPath)

	return &Server{
		socketPath: socketPath,
		configPath: configPath,
		engine:     eng,
		logger:     logger,
		sessionID:  uuid.NewString(),
		startTime:  time.Now(),
		reloadChan: reloadChan,
	}, nil
}

// SocketPath returns the socket the server listens on.
func (s *Server) SocketPath() string {
	return s.socketPath
}

// SessionID identifies this daemon run.
func (s *Server) SessionID() string {
	return s.sessionID
}

// Start begins listening for IPC connections
func (s *Server) Start() error {
	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("failed to create IPC socket: %w", err)
	}
	s.listener = listener

	if err := os.Chmod(s.socketPath, 0600); err != nil {
		listener.Close()
		return fmt.Errorf("failed to set socket permissions: %w", err)
	}

	s.logger.Info("IPC server listening", "socket", s.socketPath, "session", s.sessionID)

	go s.acceptLoop()

	return nil
}

func (s *Server) acceptLoop() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			s.shutdownMu.Lock()
			if s.shuttingDown {
				s.shutdownMu.Unlock()
				return
			}
			s.shutdownMu.Unlock()
			s.logger.Warn("IPC accept error", "err", err)
			if errors.Is(err, net.ErrClosed) {
				return
			}
			continue
		}

		go s.handleConnection(conn)
	}
}

// handleConnection reads one JSON request line and writes one response line.
func (s *Server) handleConnection(conn net.Conn) {
	defer conn.Close()

	reader := bufio.NewReader(conn)
	data, err := reader.ReadBytes('\n')
	if err != nil && err != io.EOF {
		s.logger.Warn("IPC read error", "err", err)
		return
	}

	req, err := ParseRequest(data)
	if err != nil {
		s.sendError(conn, fmt.Sprintf("Invalid request: %v", err))
		return
	}

	resp := s.handleCommand(req)

	respData, err := resp.Marshal()
	if err != nil {
		s.logger.Error("failed to marshal response", "err", err)
		return
	}

	respData = append(respData, '\n')
	if _, err := conn.Write(respData); err != nil {
		s.logger.Warn("failed to send response", "err", err)
	}
}

func (s *Server) handleCommand(req *Request) *Response {
	s.logger.Debug("IPC request", "command", req.Command)
	switch req.Command {
	case CommandReload:
		return s.handleReload()
	case CommandGetStatus:
		return s.handleGetStatus()
	case CommandListWorkspaces:
		return s.handleListWorkspaces()
	case CommandActivateWorkspace:
		return s.handleActivateWorkspace(req.Payload)
	case CommandMapWindow:
		return s.handleMapWindow(req.Payload)
	case CommandUnmapWindow:
		return s.handleUnmapWindow(req.Payload)
	case CommandMoveWindow:
		return s.handleMoveWindow(req.Payload)
	case CommandResizeWindow:
		return s.handleResizeWindow(req.Payload)
	case CommandFocus:
		return s.handleFocus(req.Payload)
	case CommandWindowAt:
		return s.handleWindowAt(req.Payload)
	case CommandGetLayout:
		return ok(s.engine.Snapshot())
	case CommandAddOutput:
		return s.handleAddOutput(req.Payload)
	case CommandRemoveOutput:
		return s.handleRemoveOutput(req.Payload)
	default:
		return NewErrorResponse(fmt.Sprintf("Unknown command: %s", req.Command))
	}
}

func ok(data any) *Response {
	resp, err := NewOKResponse(data)
	if err != nil {
		return NewErrorResponse(err.Error())
	}
	return resp
}

func decodePayload(payload json.RawMessage, v any) error {
	if len(payload) == 0 {
		return fmt.Errorf("missing payload")
	}
	return json.Unmarshal(payload, v)
}

// handleReload re-reads the config file and applies it to the engine.
func (s *Server) handleReload() *Response {
	s.logger.Info("IPC: received RELOAD command")

	var (
		cfg *config.Config
		err error
	)
	if s.configPath == "" {
		cfg, err = config.Load()
	} else {
		var res *config.LoadResult
		res, err = config.LoadFromPath(s.configPath)
		if err == nil {
			cfg = res.Config
		}
	}
	if err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to reload config: %v", err))
	}
	if err := s.engine.UpdateConfig(cfg); err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to apply config: %v", err))
	}

	// Notify the daemon loop (non-blocking)
	select {
	case s.reloadChan <- struct{}{}:
	default:
	}

	return ok(nil)
}

func (s *Server) handleGetStatus() *Response {
	snap := s.engine.Snapshot()
	return ok(StatusData{
		SessionID:        s.sessionID,
		Workspaces:       len(snap.Workspaces),
		CurrentWorkspace: snap.Current,
		WindowCount:      snap.WindowCount(),
		OutputCount:      len(snap.Outputs),
		Focus:            snap.Focus,
		UptimeSeconds:    int64(time.Since(s.startTime).Seconds()),
		DaemonRunning:    true,
	})
}

func (s *Server) handleListWorkspaces() *Response {
	snap := s.engine.Snapshot()
	data := WorkspacesData{Current: snap.Current}
	for _, ws := range snap.Workspaces {
		sum := WorkspaceSummary{Index: ws.Index, Active: ws.Active, Area: ws.Area}
		for _, w := range ws.Windows {
			sum.Windows = append(sum.Windows, w.ID)
		}
		data.Workspaces = append(data.Workspaces, sum)
	}
	return ok(data)
}

func (s *Server) handleActivateWorkspace(payload json.RawMessage) *Response {
	var req ActivateWorkspacePayload
	if err := decodePayload(payload, &req); err != nil {
		return NewErrorResponse(fmt.Sprintf("Invalid activate payload: %v", err))
	}
	if err := s.engine.Activate(req.Workspace); err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to activate workspace %d: %v", req.Workspace, err))
	}
	return ok(nil)
}

func (s *Server) handleMapWindow(payload json.RawMessage) *Response {
	var req MapWindowPayload
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &req); err != nil {
			return NewErrorResponse(fmt.Sprintf("Invalid map payload: %v", err))
		}
	}

	surface := headless.NewSurface(req.Title)
	surface.SetAppID(req.AppID)
	var (
		id  window.ID
		err error
	)
	if req.Workspace != nil {
		id, err = s.engine.MapTo(surface, *req.Workspace)
	} else {
		id, err = s.engine.Map(surface)
	}
	if err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to map window: %v", err))
	}

	data := MapWindowData{Window: id}
	snap := s.engine.Snapshot()
	for _, ws := range snap.Workspaces {
		for _, w := range ws.Windows {
			if w.ID == id {
				data.Workspace = ws.Index
				data.Rect = w.Rect
			}
		}
	}
	return ok(data)
}

func (s *Server) handleUnmapWindow(payload json.RawMessage) *Response {
	var req WindowPayload
	if err := decodePayload(payload, &req); err != nil {
		return NewErrorResponse(fmt.Sprintf("Invalid unmap payload: %v", err))
	}
	if err := s.engine.Unmap(req.Window); err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to unmap window: %v", err))
	}
	return ok(nil)
}

func (s *Server) handleMoveWindow(payload json.RawMessage) *Response {
	var req MoveWindowPayload
	if err := decodePayload(payload, &req); err != nil {
		return NewErrorResponse(fmt.Sprintf("Invalid move payload: %v", err))
	}
	if err := s.engine.MoveWindow(req.Window, req.Workspace); err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to move window: %v", err))
	}
	return ok(nil)
}

func (s *Server) handleResizeWindow(payload json.RawMessage) *Response {
	var req ResizeWindowPayload
	if err := decodePayload(payload, &req); err != nil {
		return NewErrorResponse(fmt.Sprintf("Invalid resize payload: %v", err))
	}
	if err := s.engine.Resize(req.Window, req.Ratio); err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to resize window: %v", err))
	}
	return ok(nil)
}

func (s *Server) handleFocus(payload json.RawMessage) *Response {
	var req FocusPayload
	if err := decodePayload(payload, &req); err != nil {
		return NewErrorResponse(fmt.Sprintf("Invalid focus payload: %v", err))
	}

	switch {
	case req.Window != 0:
		if err := s.engine.FocusWindow(req.Window); err != nil {
			return NewErrorResponse(fmt.Sprintf("Failed to focus window: %v", err))
		}
	case req.Direction != "":
		dir, err := focus.ParseDirection(req.Direction)
		if err != nil {
			return NewErrorResponse(err.Error())
		}
		s.engine.FocusDirection(dir)
	case req.Point != nil:
		s.engine.FocusAt(*req.Point)
	default:
		return NewErrorResponse("focus needs a window, direction or point")
	}

	id, _ := s.engine.FocusedWindow()
	return ok(FocusData{Window: id, Focus: s.engine.Snapshot().Focus})
}

func (s *Server) handleWindowAt(payload json.RawMessage) *Response {
	var req WindowAtPayload
	if err := decodePayload(payload, &req); err != nil {
		return NewErrorResponse(fmt.Sprintf("Invalid window-at payload: %v", err))
	}
	id, loc, found := s.engine.WindowAt(geometry.PointF{X: req.X, Y: req.Y})
	return ok(WindowAtData{Found: found, Window: id, Location: loc})
}

func (s *Server) handleAddOutput(payload json.RawMessage) *Response {
	var req AddOutputPayload
	if err := decodePayload(payload, &req); err != nil {
		return NewErrorResponse(fmt.Sprintf("Invalid output payload: %v", err))
	}
	if req.Name == "" {
		return NewErrorResponse("output name is required")
	}

	out := headless.NewOutput(req.Name, req.Width, req.Height)
	out.SetLocation(geometry.Point{X: req.X, Y: req.Y})

	scale, transform := req.Scale, req.Transform
	if override, found := s.engine.Config().OutputOverride(req.Name); found {
		if scale == 0 {
			scale = override.Scale
		}
		if transform == "" {
			transform = override.Transform
		}
	}
	if scale > 0 {
		out.SetScale(scale)
	}
	t, err := geometry.ParseTransform(transform)
	if err != nil {
		return NewErrorResponse(err.Error())
	}
	out.SetTransform(t)

	s.engine.AddOutput(out)
	return ok(nil)
}

func (s *Server) handleRemoveOutput(payload json.RawMessage) *Response {
	var req OutputPayload
	if err := decodePayload(payload, &req); err != nil {
		return NewErrorResponse(fmt.Sprintf("Invalid output payload: %v", err))
	}
	if err := s.engine.RemoveOutput(req.Name); err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to remove output: %v", err))
	}
	return ok(nil)
}

func (s *Server) sendError(conn net.Conn, errMsg string) {
	resp := NewErrorResponse(errMsg)
	data, _ := resp.Marshal()
	data = append(data, '\n')
	conn.Write(data)
}

// Stop gracefully shuts down the IPC server
func (s *Server) Stop() {
	s.shutdownMu.Lock()
	s.shuttingDown = true
	s.shutdownMu.Unlock()

	if s.listener != nil {
		s.listener.Close()
	}
	os.Remove(s.socketPath)
}
