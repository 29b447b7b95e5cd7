package hotkeys

import (
	"errors"
	"testing"

	"github.com/1broseidon/strata/internal/config"
	"github.com/1broseidon/strata/internal/engine"
	"github.com/1broseidon/strata/internal/headless"
	"github.com/1broseidon/strata/internal/window"
)

func find(t *testing.T, bindings []Binding, keys string) Binding {
	t.Helper()
	for _, b := range bindings {
		if b.Keys == keys {
			return b
		}
	}
	t.Fatalf("no binding for %q", keys)
	return Binding{}
}

func TestDefaultBindings_Keys(t *testing.T) {
	bindings := DefaultBindings("Mod4", 3)

	seen := make(map[string]bool)
	for _, b := range bindings {
		if seen[b.Keys] {
			t.Fatalf("duplicate binding %q", b.Keys)
		}
		seen[b.Keys] = true
	}
	for _, keys := range []string{"Mod4-1", "Mod4-3", "Mod4-shift-3", "Mod4-h", "Mod4-Right", "Mod4-shift-q"} {
		if !seen[keys] {
			t.Errorf("missing binding %q", keys)
		}
	}
	if seen["Mod4-4"] {
		t.Errorf("bound a digit past the workspace count")
	}

	if got := len(DefaultBindings("Mod1", 20)); got != 9*2+8+1 {
		t.Errorf("binding count with 20 workspaces = %d, want %d", got, 9*2+8+1)
	}
}

func TestDefaultBindings_Run(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Workspaces = 3
	eng, err := engine.New(cfg, nil)
	if err != nil {
		t.Fatalf("engine.New: %v", err)
	}
	eng.AddOutput(headless.NewOutput("HEADLESS-1", 1920, 1080))

	a, err := eng.Map(headless.NewSurface("a"))
	if err != nil {
		t.Fatalf("Map: %v", err)
	}
	b, err := eng.Map(headless.NewSurface("b"))
	if err != nil {
		t.Fatalf("Map: %v", err)
	}
	bindings := DefaultBindings("Mod4", cfg.Workspaces)

	focused := func() window.ID {
		id, _ := eng.FocusedWindow()
		return id
	}

	if focused() != b {
		t.Fatalf("focus after map = %s, want %s", focused(), b)
	}
	if err := find(t, bindings, "Mod4-h").Run(eng); err != nil {
		t.Fatalf("focus left: %v", err)
	}
	if focused() != a {
		t.Fatalf("focus after Mod4-h = %s, want %s", focused(), a)
	}

	if err := find(t, bindings, "Mod4-shift-2").Run(eng); err != nil {
		t.Fatalf("move: %v", err)
	}
	if snap := eng.Snapshot(); len(snap.Workspaces[1].Windows) != 1 || snap.Workspaces[1].Windows[0].ID != a {
		t.Fatalf("workspace 1 = %+v, want [%s]", snap.Workspaces[1].Windows, a)
	}
	if focused() != b {
		t.Fatalf("focus after move = %s, want %s", focused(), b)
	}

	if err := find(t, bindings, "Mod4-2").Run(eng); err != nil {
		t.Fatalf("activate: %v", err)
	}
	if snap := eng.Snapshot(); snap.Current != 1 {
		t.Fatalf("current = %d, want 1", snap.Current)
	}

	closeFocused := find(t, bindings, "Mod4-shift-q")
	if err := closeFocused.Run(eng); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := closeFocused.Run(eng); !errors.Is(err, ErrNoFocus) {
		t.Fatalf("close on empty workspace err = %v, want ErrNoFocus", err)
	}
}

func TestIgnoreMasks(t *testing.T) {
	tests := []struct {
		name  string
		locks []uint16
		want  int
	}{
		{"caps only", []uint16{2, 0, 0}, 2},
		{"caps and numlock", []uint16{2, 16, 0}, 4},
		{"all three", []uint16{2, 16, 128}, 8},
		{"duplicate lock", []uint16{2, 2, 16}, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ignoreMasks(tt.locks...)
			if len(got) != tt.want {
				t.Fatalf("ignoreMasks(%v) = %v, want %d masks", tt.locks, got, tt.want)
			}
			if got[0] != 0 {
				t.Fatalf("first mask = %d, want 0", got[0])
			}
		})
	}
}
