package ipc

import (
	"encoding/json"
	"fmt"

	"github.com/1broseidon/strata/internal/geometry"
	"github.com/1broseidon/strata/internal/window"
)

// CommandType represents different IPC command types
type CommandType string

const (
	CommandReload            CommandType = "RELOAD"
	CommandGetStatus         CommandType = "GET_STATUS"
	CommandListWorkspaces    CommandType = "LIST_WORKSPACES"
	CommandActivateWorkspace CommandType = "ACTIVATE_WORKSPACE"
	CommandMapWindow         CommandType = "MAP_WINDOW"
	CommandUnmapWindow       CommandType = "UNMAP_WINDOW"
	CommandMoveWindow        CommandType = "MOVE_WINDOW"
	CommandResizeWindow      CommandType = "RESIZE_WINDOW"
	CommandFocus             CommandType = "FOCUS"
	CommandWindowAt          CommandType = "WINDOW_AT"
	CommandGetLayout         CommandType = "GET_LAYOUT"
	CommandAddOutput         CommandType = "ADD_OUTPUT"
	CommandRemoveOutput      CommandType = "REMOVE_OUTPUT"
)

// Request represents an IPC request from client to server
type Request struct {
	Command CommandType     `json:"command"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Response represents an IPC response from server to client
type Response struct {
	Status string          `json:"status"` // "OK" or "ERROR"
	Data   json.RawMessage `json:"data,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// StatusData represents the data returned by GET_STATUS
type StatusData struct {
	SessionID        string `json:"session_id"`
	Workspaces       int    `json:"workspaces"`
	CurrentWorkspace int    `json:"current_workspace"`
	WindowCount      int    `json:"window_count"`
	OutputCount      int    `json:"output_count"`
	Focus            string `json:"focus"`
	UptimeSeconds    int64  `json:"uptime_seconds"`
	DaemonRunning    bool   `json:"daemon_running"`
}

// WorkspaceSummary is one entry of LIST_WORKSPACES.
type WorkspaceSummary struct {
	Index   int           `json:"index"`
	Active  bool          `json:"active"`
	Windows []window.ID   `json:"windows"`
	Area    geometry.Rect `json:"area"`
}

type WorkspacesData struct {
	Current    int                `json:"current"`
	Workspaces []WorkspaceSummary `json:"workspaces"`
}

type ActivateWorkspacePayload struct {
	Workspace int `json:"workspace"`
}

// MapWindowPayload asks the daemon to map a headless window. Workspace is
// optional; without it the window lands on the active workspace.
type MapWindowPayload struct {
	Title     string `json:"title"`
	AppID     string `json:"app_id,omitempty"`
	Workspace *int   `json:"workspace,omitempty"`
}

type MapWindowData struct {
	Window    window.ID     `json:"window"`
	Workspace int           `json:"workspace"`
	Rect      geometry.Rect `json:"rect"`
}

type WindowPayload struct {
	Window window.ID `json:"window"`
}

type MoveWindowPayload struct {
	Window    window.ID `json:"window"`
	Workspace int       `json:"workspace"`
}

type ResizeWindowPayload struct {
	Window window.ID `json:"window"`
	Ratio  float64   `json:"ratio"`
}

// FocusPayload selects the focus target: a window ID, a direction
// (left/right/up/down) or a point, checked in that order.
type FocusPayload struct {
	Window    window.ID        `json:"window,omitempty"`
	Direction string           `json:"direction,omitempty"`
	Point     *geometry.PointF `json:"point,omitempty"`
}

type FocusData struct {
	Window window.ID `json:"window,omitempty"`
	Focus  string    `json:"focus"`
}

type WindowAtPayload struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// WindowAtData reports the window under a point and the surface render
// location; point minus location is surface-local.
type WindowAtData struct {
	Found    bool           `json:"found"`
	Window   window.ID      `json:"window,omitempty"`
	Location geometry.Point `json:"location"`
}

type AddOutputPayload struct {
	Name      string  `json:"name"`
	Width     int     `json:"width"`
	Height    int     `json:"height"`
	X         int     `json:"x,omitempty"`
	Y         int     `json:"y,omitempty"`
	Scale     float64 `json:"scale,omitempty"`
	Transform string  `json:"transform,omitempty"`
}

type OutputPayload struct {
	Name string `json:"name"`
}

// NewOKResponse creates a successful response with optional data
func NewOKResponse(data interface{}) (*Response, error) {
	var dataBytes json.RawMessage
	if data != nil {
		bytes, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal response data: %w", err)
		}
		dataBytes = bytes
	}

	return &Response{
		Status: "OK",
		Data:   dataBytes,
	}, nil
}

// NewErrorResponse creates an error response with a message
func NewErrorResponse(errMsg string) *Response {
	return &Response{
		Status: "ERROR",
		Error:  errMsg,
	}
}

// ParseRequest parses a request from JSON bytes
func ParseRequest(data []byte) (*Request, error) {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("failed to parse request: %w", err)
	}
	return &req, nil
}

// Marshal converts a response to JSON bytes
func (r *Response) Marshal() ([]byte, error) {
	return json.Marshal(r)
}
