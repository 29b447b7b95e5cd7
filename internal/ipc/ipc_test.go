package ipc

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/1broseidon/strata/internal/config"
	"github.com/1broseidon/strata/internal/engine"
	"github.com/1broseidon/strata/internal/geometry"
	"github.com/1broseidon/strata/internal/headless"
	"github.com/1broseidon/strata/internal/runtimepath"
)

func startServer(t *testing.T, configPath string, reload chan struct{}) (*engine.Engine, *Client) {
	t.Helper()
	// Short directory: unix socket paths are limited to ~108 bytes.
	dir, err := os.MkdirTemp("", "strata-ipc")
	if err != nil {
		t.Fatalf("MkdirTemp: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(dir) })
	t.Setenv("XDG_RUNTIME_DIR", dir)
	t.Setenv(runtimepath.SocketEnv, "")

	cfg := config.DefaultConfig()
	cfg.Workspaces = 3
	eng, err := engine.New(cfg, nil)
	if err != nil {
		t.Fatalf("engine.New: %v", err)
	}
	eng.AddOutput(headless.NewOutput("HEADLESS-1", 1920, 1080))

	srv, err := NewServer(eng, configPath, reload, nil)
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	if err := srv.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	t.Cleanup(srv.Stop)

	info, err := os.Stat(srv.SocketPath())
	if err != nil {
		t.Fatalf("stat socket: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Fatalf("socket perm = %o, want 600", perm)
	}
	return eng, NewClient()
}

func TestParseRequest(t *testing.T) {
	req, err := ParseRequest([]byte(`{"command":"MOVE_WINDOW","payload":{"window":3,"workspace":1}}`))
	if err != nil {
		t.Fatalf("ParseRequest: %v", err)
	}
	if req.Command != CommandMoveWindow {
		t.Fatalf("command = %q", req.Command)
	}
	if _, err := ParseRequest([]byte(`{`)); err == nil {
		t.Fatalf("expected error for truncated JSON")
	}
}

func TestNewOKResponse(t *testing.T) {
	resp, err := NewOKResponse(map[string]int{"n": 1})
	if err != nil {
		t.Fatalf("NewOKResponse: %v", err)
	}
	data, err := resp.Marshal()
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if got, want := string(data), `{"status":"OK","data":{"n":1}}`; got != want {
		t.Fatalf("response = %s, want %s", got, want)
	}

	empty, _ := NewOKResponse(nil)
	if empty.Data != nil {
		t.Fatalf("nil data should be omitted")
	}
}

func TestServer_WindowLifecycle(t *testing.T) {
	eng, client := startServer(t, "", nil)

	a, err := client.MapWindow("a", "term", nil)
	if err != nil {
		t.Fatalf("MapWindow a: %v", err)
	}
	if a.Workspace != 0 || a.Rect != (geometry.Rect{Width: 1920, Height: 1080}) {
		t.Fatalf("a = %+v", a)
	}

	two := 2
	b, err := client.MapWindow("b", "", &two)
	if err != nil {
		t.Fatalf("MapWindow b: %v", err)
	}
	if b.Workspace != 2 {
		t.Fatalf("b workspace = %d, want 2", b.Workspace)
	}

	list, err := client.ListWorkspaces()
	if err != nil {
		t.Fatalf("ListWorkspaces: %v", err)
	}
	if len(list.Workspaces) != 3 || len(list.Workspaces[0].Windows) != 1 || len(list.Workspaces[2].Windows) != 1 {
		t.Fatalf("workspaces = %+v", list.Workspaces)
	}

	if err := client.MoveWindow(b.Window, 0); err != nil {
		t.Fatalf("MoveWindow: %v", err)
	}
	if err := client.ResizeWindow(a.Window, 0.75); err != nil {
		t.Fatalf("ResizeWindow: %v", err)
	}

	snap, err := client.GetLayout()
	if err != nil {
		t.Fatalf("GetLayout: %v", err)
	}
	ws := snap.Workspaces[0]
	if len(ws.Windows) != 2 || ws.Windows[0].Rect.Width != 1440 {
		t.Fatalf("workspace 0 = %+v", ws)
	}
	if len(ws.Tree) != 3 {
		t.Fatalf("tree = %+v", ws.Tree)
	}

	if err := client.UnmapWindow(b.Window); err != nil {
		t.Fatalf("UnmapWindow: %v", err)
	}
	if err := client.UnmapWindow(b.Window); err == nil || !strings.Contains(err.Error(), "daemon error") {
		t.Fatalf("second UnmapWindow err = %v", err)
	}
	if err := eng.Verify(); err != nil {
		t.Fatalf("Verify: %v", err)
	}
}

func TestServer_MapWindowRejectsInvalidWorkspace(t *testing.T) {
	eng, client := startServer(t, "", nil)
	events, cancel := eng.Subscribe(16)
	defer cancel()

	nine := 9
	if _, err := client.MapWindow("a", "", &nine); err == nil || !strings.Contains(err.Error(), "invalid workspace") {
		t.Fatalf("MapWindow on workspace 9 err = %v", err)
	}
	if n := eng.Snapshot().WindowCount(); n != 0 {
		t.Fatalf("window count = %d, want 0", n)
	}
	select {
	case ev := <-events:
		t.Fatalf("rejected map published %+v", ev)
	default:
	}
	if err := eng.Verify(); err != nil {
		t.Fatalf("Verify: %v", err)
	}
}

func TestServer_StatusAndActivate(t *testing.T) {
	_, client := startServer(t, "", nil)

	if _, err := client.MapWindow("a", "", nil); err != nil {
		t.Fatalf("MapWindow: %v", err)
	}
	if err := client.ActivateWorkspace(1); err != nil {
		t.Fatalf("ActivateWorkspace: %v", err)
	}
	if err := client.ActivateWorkspace(9); err == nil {
		t.Fatalf("expected error for workspace 9")
	}

	status, err := client.GetStatus()
	if err != nil {
		t.Fatalf("GetStatus: %v", err)
	}
	if !status.DaemonRunning || status.Workspaces != 3 || status.CurrentWorkspace != 1 || status.WindowCount != 1 || status.OutputCount != 1 {
		t.Fatalf("status = %+v", status)
	}
	if status.SessionID == "" || status.Focus != "none" {
		t.Fatalf("status = %+v", status)
	}
	if err := client.Ping(); err != nil {
		t.Fatalf("Ping: %v", err)
	}
}

func TestServer_FocusAndWindowAt(t *testing.T) {
	_, client := startServer(t, "", nil)

	a, _ := client.MapWindow("a", "", nil)
	b, _ := client.MapWindow("b", "", nil)

	got, err := client.Focus(FocusPayload{Direction: "left"})
	if err != nil {
		t.Fatalf("Focus left: %v", err)
	}
	if got.Window != a.Window {
		t.Fatalf("focused = %s, want %s", got.Window, a.Window)
	}

	got, err = client.Focus(FocusPayload{Window: b.Window})
	if err != nil {
		t.Fatalf("Focus window: %v", err)
	}
	if got.Window != b.Window || got.Focus != "window "+b.Window.String() {
		t.Fatalf("focus = %+v", got)
	}

	got, err = client.Focus(FocusPayload{Point: &geometry.PointF{X: 10, Y: 10}})
	if err != nil || got.Window != a.Window {
		t.Fatalf("Focus point = %+v, %v", got, err)
	}

	if _, err := client.Focus(FocusPayload{Direction: "sideways"}); err == nil {
		t.Fatalf("expected error for bad direction")
	}
	if _, err := client.Focus(FocusPayload{}); err == nil {
		t.Fatalf("expected error for empty focus payload")
	}

	at, err := client.WindowAt(1500, 500)
	if err != nil {
		t.Fatalf("WindowAt: %v", err)
	}
	if !at.Found || at.Window != b.Window || at.Location != (geometry.Point{X: 960}) {
		t.Fatalf("WindowAt = %+v", at)
	}
	at, err = client.WindowAt(5000, 5000)
	if err != nil || at.Found {
		t.Fatalf("WindowAt outside = %+v, %v", at, err)
	}
}

func TestServer_Outputs(t *testing.T) {
	eng, client := startServer(t, "", nil)

	if err := client.AddOutput(AddOutputPayload{Name: "HEADLESS-2", Width: 2560, Height: 1440, X: 1920, Scale: 2}); err != nil {
		t.Fatalf("AddOutput: %v", err)
	}
	o, ok := eng.Output("HEADLESS-2")
	if !ok || o.CurrentScale() != 2 || o.Location() != (geometry.Point{X: 1920}) {
		t.Fatalf("output = %+v, %v", o, ok)
	}
	if err := client.AddOutput(AddOutputPayload{Name: "HEADLESS-3", Width: 10, Height: 10, Transform: "upside-down"}); err == nil {
		t.Fatalf("expected error for bad transform")
	}
	if err := client.AddOutput(AddOutputPayload{Width: 10, Height: 10}); err == nil {
		t.Fatalf("expected error for missing name")
	}

	if err := client.RemoveOutput("HEADLESS-2"); err != nil {
		t.Fatalf("RemoveOutput: %v", err)
	}
	if err := client.RemoveOutput("HEADLESS-2"); err == nil {
		t.Fatalf("expected error removing unknown output")
	}
}

func TestServer_Reload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("workspaces: 3\ntiling:\n  gaps:\n    outer: 20\n"), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	reload := make(chan struct{}, 1)
	eng, client := startServer(t, path, reload)

	if err := client.Reload(); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	select {
	case <-reload:
	default:
		t.Fatalf("reload channel not signalled")
	}
	if got := eng.Config().Tiling.Gaps.Outer; got != 20 {
		t.Fatalf("outer gap = %d, want 20", got)
	}

	if err := os.WriteFile(path, []byte("tiling:\n  ratio: 2\n"), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	err := client.Reload()
	if err == nil || !strings.Contains(err.Error(), "tiling.ratio") {
		t.Fatalf("Reload invalid err = %v", err)
	}
	if got := eng.Config().Tiling.Gaps.Outer; got != 20 {
		t.Fatalf("failed reload changed config")
	}
}

func TestServer_UnknownCommand(t *testing.T) {
	_, client := startServer(t, "", nil)

	err := client.call("BOGUS", nil, nil)
	if err == nil || !strings.Contains(err.Error(), "Unknown command: BOGUS") {
		t.Fatalf("err = %v", err)
	}
	if err := client.call(CommandMoveWindow, nil, nil); err == nil || !strings.Contains(err.Error(), "missing payload") {
		t.Fatalf("missing payload err = %v", err)
	}
}
