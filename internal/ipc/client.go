package ipc

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"time"

	"github.com/1broseidon/strata/internal/engine"
	"github.com/1broseidon/strata/internal/runtimepath"
	"github.com/1broseidon/strata/internal/window"
)

// Client handles IPC communication with the daemon
type Client struct {
	socketPath string
	timeout    time.Duration
}

// NewClient creates a new IPC client
func NewClient() *Client {
	socketPath, err := runtimepath.SocketPath()
	if err != nil {
		// Keep constructor non-failing; sendRequest surfaces connection errors.
		socketPath = ""
	}

	return &Client{
		socketPath: socketPath,
		timeout:    5 * time.Second,
	}
}

// sendRequest sends a request and waits for a response
func (c *Client) sendRequest(req *Request) (*Response, error) {
	conn, err := net.DialTimeout("unix", c.socketPath, c.timeout)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to daemon: %w (is the daemon running?)", err)
	}
	defer conn.Close()

	conn.SetDeadline(time.Now().Add(c.timeout))

	reqData, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	reqData = append(reqData, '\n')
	if _, err := conn.Write(reqData); err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	reader := bufio.NewReader(conn)
	respData, err := reader.ReadBytes('\n')
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var resp Response
	if err := json.Unmarshal(respData, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if resp.Status == "ERROR" {
		return nil, fmt.Errorf("daemon error: %s", resp.Error)
	}

	return &resp, nil
}

// call sends cmd with an optional payload and decodes the response data
// into out when out is non-nil.
func (c *Client) call(cmd CommandType, payload any, out any) error {
	req := &Request{Command: cmd}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal %s payload: %w", cmd, err)
		}
		req.Payload = data
	}

	resp, err := c.sendRequest(req)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(resp.Data, out); err != nil {
		return fmt.Errorf("failed to parse %s data: %w", cmd, err)
	}
	return nil
}

// Reload sends a RELOAD command to the daemon
func (c *Client) Reload() error {
	return c.call(CommandReload, nil, nil)
}

// GetStatus retrieves daemon status
func (c *Client) GetStatus() (*StatusData, error) {
	var status StatusData
	if err := c.call(CommandGetStatus, nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

func (c *Client) ListWorkspaces() (*WorkspacesData, error) {
	var data WorkspacesData
	if err := c.call(CommandListWorkspaces, nil, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

func (c *Client) ActivateWorkspace(workspace int) error {
	return c.call(CommandActivateWorkspace, ActivateWorkspacePayload{Workspace: workspace}, nil)
}

// MapWindow maps a headless window. A nil workspace means the active one.
func (c *Client) MapWindow(title, appID string, workspace *int) (*MapWindowData, error) {
	var data MapWindowData
	payload := MapWindowPayload{Title: title, AppID: appID, Workspace: workspace}
	if err := c.call(CommandMapWindow, payload, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

func (c *Client) UnmapWindow(id window.ID) error {
	return c.call(CommandUnmapWindow, WindowPayload{Window: id}, nil)
}

func (c *Client) MoveWindow(id window.ID, workspace int) error {
	return c.call(CommandMoveWindow, MoveWindowPayload{Window: id, Workspace: workspace}, nil)
}

func (c *Client) ResizeWindow(id window.ID, ratio float64) error {
	return c.call(CommandResizeWindow, ResizeWindowPayload{Window: id, Ratio: ratio}, nil)
}

func (c *Client) Focus(req FocusPayload) (*FocusData, error) {
	var data FocusData
	if err := c.call(CommandFocus, req, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

func (c *Client) WindowAt(x, y float64) (*WindowAtData, error) {
	var data WindowAtData
	if err := c.call(CommandWindowAt, WindowAtPayload{X: x, Y: y}, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetLayout returns the daemon's full engine snapshot.
func (c *Client) GetLayout() (*engine.Snapshot, error) {
	var snap engine.Snapshot
	if err := c.call(CommandGetLayout, nil, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

func (c *Client) AddOutput(req AddOutputPayload) error {
	return c.call(CommandAddOutput, req, nil)
}

func (c *Client) RemoveOutput(name string) error {
	return c.call(CommandRemoveOutput, OutputPayload{Name: name}, nil)
}

// Ping checks if the daemon is responding
func (c *Client) Ping() error {
	_, err := c.GetStatus()
	return err
}
