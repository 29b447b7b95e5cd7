package treeviz

import (
	"strings"
	"testing"

	"github.com/1broseidon/strata/internal/config"
	"github.com/1broseidon/strata/internal/engine"
	"github.com/1broseidon/strata/internal/headless"
)

func snapshotWithWindows(t *testing.T, titles ...string) engine.WorkspaceInfo {
	t.Helper()
	eng, err := engine.New(config.DefaultConfig(), nil)
	if err != nil {
		t.Fatalf("engine.New: %v", err)
	}
	eng.AddOutput(headless.NewOutput("HEADLESS-1", 1920, 1080))
	for _, title := range titles {
		if _, err := eng.Map(headless.NewSurface(title)); err != nil {
			t.Fatalf("Map: %v", err)
		}
	}
	ws, _ := eng.Snapshot().Workspace(0)
	return ws
}

func TestToDOT_ThreeWindows(t *testing.T) {
	ws := snapshotWithWindows(t, "editor", "shell", "logs")
	dot := ToDOT(ws, Options{Focused: ws.Windows[2].ID, Detailed: true})

	for _, want := range []string{
		`digraph "workspace 0" {`,
		`label="horizontal 0.50"`,
		`label="vertical 0.50"`,
		`label="editor\n(0,0,960,1080)"`,
		`label="logs\n(960,540,960,540)", fillcolor="#5e81ac"`,
		`[label="left"]`,
		`[label="right"]`,
		`[label="top"]`,
		`[label="bottom"]`,
	} {
		if !strings.Contains(dot, want) {
			t.Fatalf("DOT missing %q:\n%s", want, dot)
		}
	}
	if got := strings.Count(dot, "->"); got != 4 {
		t.Fatalf("edges = %d, want 4", got)
	}
}

func TestToDOT_Empty(t *testing.T) {
	ws := snapshotWithWindows(t)
	dot := ToDOT(ws, Options{})
	if strings.Contains(dot, "->") || strings.Contains(dot, "shape=") {
		t.Fatalf("empty workspace should have no nodes:\n%s", dot)
	}
	if !strings.HasSuffix(dot, "}\n") {
		t.Fatalf("DOT not terminated:\n%s", dot)
	}
}
