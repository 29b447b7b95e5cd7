package workspace

import (
	"errors"
	"math/rand/v2"
	"testing"

	"github.com/1broseidon/strata/internal/geometry"
	"github.com/1broseidon/strata/internal/window"
)

func newWorkspaces(t *testing.T, count int) *Workspaces {
	t.Helper()
	ws, err := NewWorkspaces(count, window.NewArena(), DefaultSettings())
	if err != nil {
		t.Fatalf("new workspaces: %v", err)
	}
	return ws
}

func mapSurface(t *testing.T, ws *Workspaces) *window.Window {
	t.Helper()
	win, err := ws.Map(plainSurface())
	if err != nil {
		t.Fatalf("map: %v", err)
	}
	return win
}

func TestNewWorkspaces_CountBounds(t *testing.T) {
	for _, n := range []int{0, -1, MaxWorkspaces + 1} {
		if _, err := NewWorkspaces(n, nil, DefaultSettings()); err == nil {
			t.Fatalf("expected error for count %d", n)
		}
	}
	ws, err := NewWorkspaces(MaxWorkspaces, nil, DefaultSettings())
	if err != nil {
		t.Fatalf("expected %d workspaces to be allowed: %v", MaxWorkspaces, err)
	}
	if ws.Len() != MaxWorkspaces || ws.CurrentIndex() != 0 {
		t.Fatalf("unexpected collection: len=%d current=%d", ws.Len(), ws.CurrentIndex())
	}
}

func TestWorkspaces_ActivateRejectsOutOfRange(t *testing.T) {
	ws := newWorkspaces(t, 3)
	if err := ws.Activate(2); err != nil {
		t.Fatalf("activate: %v", err)
	}
	for _, id := range []int{3, -1, 100} {
		if err := ws.Activate(id); !errors.Is(err, ErrInvalidWorkspace) {
			t.Fatalf("activate(%d): expected ErrInvalidWorkspace, got %v", id, err)
		}
	}
	if ws.CurrentIndex() != 2 {
		t.Fatalf("expected current to stay at 2, got %d", ws.CurrentIndex())
	}
}

func TestWorkspaces_MapPlacesOnActiveWorkspace(t *testing.T) {
	ws := newWorkspaces(t, 2)
	s := plainSurface()
	first, err := ws.Map(s)
	if err != nil {
		t.Fatalf("map: %v", err)
	}

	ws.Activate(1)
	again, err := ws.Map(s)
	if err != nil {
		t.Fatalf("map: %v", err)
	}
	if again != first {
		t.Fatalf("expected mapping a managed surface to return its window")
	}
	if _, idx, _ := ws.WorkspaceFromWindow(first.ID); idx != 0 {
		t.Fatalf("expected window to stay on workspace 0, got %d", idx)
	}

	second := mapSurface(t, ws)
	if _, idx, _ := ws.WorkspaceFromWindow(second.ID); idx != 1 {
		t.Fatalf("expected new window on workspace 1, got %d", idx)
	}
	if err := ws.Verify(); err != nil {
		t.Fatalf("verify: %v", err)
	}
}

func TestWorkspaces_MoveWindowToWorkspace(t *testing.T) {
	ws := newWorkspaces(t, 2)
	ws.AddOutput(monitor("DP-1", 1920, 1080))
	a := mapSurface(t, ws)
	b := mapSurface(t, ws)

	if err := ws.MoveWindowToWorkspace(b.ID, 1); err != nil {
		t.Fatalf("move: %v", err)
	}

	src, _ := ws.Get(0)
	dst, _ := ws.Get(1)
	if src.ContainsWindow(b.ID) || !dst.ContainsWindow(b.ID) {
		t.Fatalf("expected B to be on workspace 1 only")
	}
	full := geometry.Rect{Width: 1920, Height: 1080}
	if a.Rect != full {
		t.Fatalf("expected A to fill workspace 0, got %v", a.Rect)
	}
	if b.Rect != full {
		t.Fatalf("expected B to fill workspace 1, got %v", b.Rect)
	}
	if err := ws.Verify(); err != nil {
		t.Fatalf("verify: %v", err)
	}

	if err := ws.MoveWindowToWorkspace(b.ID, 9); !errors.Is(err, ErrInvalidWorkspace) {
		t.Fatalf("expected ErrInvalidWorkspace, got %v", err)
	}
	if !dst.ContainsWindow(b.ID) {
		t.Fatalf("expected failed move to leave B in place")
	}

	// Moving onto the workspace the window is already on keeps it there.
	if err := ws.MoveWindowToWorkspace(b.ID, 1); err != nil {
		t.Fatalf("move to same workspace: %v", err)
	}
	if !dst.ContainsWindow(b.ID) || dst.Len() != 1 {
		t.Fatalf("expected B to remain alone on workspace 1")
	}
}

func TestWorkspaces_UnmapDestroysWindow(t *testing.T) {
	ws := newWorkspaces(t, 2)
	a := mapSurface(t, ws)
	b := mapSurface(t, ws)

	if _, ok := ws.Unmap(a.ID); !ok {
		t.Fatalf("expected unmap to succeed")
	}
	if _, ok := ws.Unmap(a.ID); ok {
		t.Fatalf("expected second unmap to fail")
	}
	if _, ok := ws.Arena().Get(a.ID); ok {
		t.Fatalf("expected window to leave the arena")
	}
	if _, _, ok := ws.WorkspaceFromWindow(a.ID); ok {
		t.Fatalf("expected window to leave its workspace")
	}
	if got := ws.Current().IDs(); len(got) != 1 || got[0] != b.ID {
		t.Fatalf("expected only B to remain, got %v", got)
	}
	if err := ws.Verify(); err != nil {
		t.Fatalf("verify: %v", err)
	}
}

func TestWorkspaces_AllWindows(t *testing.T) {
	ws := newWorkspaces(t, 3)
	var want []window.ID
	for i := 0; i < 3; i++ {
		ws.Activate(2 - i)
		want = append(want, mapSurface(t, ws).ID)
	}

	var got []window.ID
	for win := range ws.AllWindows() {
		got = append(got, win.ID)
	}
	// Workspace order, not mapping order.
	if len(got) != 3 || got[0] != want[2] || got[1] != want[1] || got[2] != want[0] {
		t.Fatalf("expected %v reversed, got %v", want, got)
	}
}

func TestWorkspaces_OutputsAreShared(t *testing.T) {
	ws := newWorkspaces(t, 2)
	out := monitor("DP-1", 1920, 1080)
	ws.AddOutput(out)
	ws.AddOutput(out)

	if got := ws.Outputs(); len(got) != 1 {
		t.Fatalf("expected one shared output, got %d", len(got))
	}
	for i, w := range ws.All() {
		if !w.HasOutput(out) {
			t.Fatalf("workspace %d is missing the output", i)
		}
	}
	if !ws.RemoveOutput(out) {
		t.Fatalf("expected output removal")
	}
	if ws.RemoveOutput(out) {
		t.Fatalf("expected second removal to report false")
	}
}

func TestWorkspaces_RefreshAllFollowsModeChange(t *testing.T) {
	ws := newWorkspaces(t, 2)
	out := monitor("DP-1", 1920, 1080)
	ws.AddOutput(out)
	a := mapSurface(t, ws)

	out.mode = geometry.Size{Width: 2560, Height: 1440}
	ws.RefreshAll()
	if want := (geometry.Rect{Width: 2560, Height: 1440}); a.Rect != want {
		t.Fatalf("expected %v after mode change, got %v", want, a.Rect)
	}
}

func TestWorkspaces_VerifyCatchesOrphans(t *testing.T) {
	ws := newWorkspaces(t, 1)
	mapSurface(t, ws)
	ws.Arena().Insert(plainSurface())
	if err := ws.Verify(); err == nil {
		t.Fatalf("expected verify to report a window on no workspace")
	}
}

func TestWorkspaces_RandomOperationsKeepListAndTreeInStep(t *testing.T) {
	const maxWindows = 10

	for seed := uint64(1); seed <= 25; seed++ {
		rng := rand.New(rand.NewPCG(seed, 7))
		ws := newWorkspaces(t, 3)
		ws.AddOutput(monitor("DP-1", 1920, 1080))
		var live []window.ID

		for step := 0; step < 200; step++ {
			op := rng.IntN(4)
			if len(live) == 0 {
				op = 0
			}
			switch op {
			case 0:
				if len(live) >= maxWindows {
					continue
				}
				live = append(live, mapSurface(t, ws).ID)

			case 1:
				id := live[rng.IntN(len(live))]
				w, _, ok := ws.WorkspaceFromWindow(id)
				if !ok {
					t.Fatalf("seed %d step %d: %v is on no workspace", seed, step, id)
				}
				if err := w.AddWindow(id); err != nil {
					t.Fatalf("seed %d step %d: re-add: %v", seed, step, err)
				}
				if newest, _ := w.tree.Cursor(); newest != id {
					t.Fatalf("seed %d step %d: cursor = %v after re-adding %v", seed, step, newest, id)
				}

			case 2:
				i := rng.IntN(len(live))
				id := live[i]
				w, _, _ := ws.WorkspaceFromWindow(id)
				if _, ok := w.RemoveWindow(id); !ok {
					t.Fatalf("seed %d step %d: remove %v failed", seed, step, id)
				}
				ws.Arena().Delete(id)
				live = append(live[:i], live[i+1:]...)

			case 3:
				id := live[rng.IntN(len(live))]
				if err := ws.MoveWindowToWorkspace(id, rng.IntN(ws.Len())); err != nil {
					t.Fatalf("seed %d step %d: move: %v", seed, step, err)
				}
			}

			if err := ws.Verify(); err != nil {
				t.Fatalf("seed %d step %d: %v", seed, step, err)
			}
			for i, w := range ws.All() {
				checkTiling(t, w, seed, step, i)
			}
		}
	}
}

// checkTiling asserts that the window rectangles of w cover its area
// exactly, without overlap.
func checkTiling(t *testing.T, w *Workspace, seed uint64, step, index int) {
	t.Helper()
	if w.Len() == 0 {
		return
	}
	area := w.Area()
	list := make([]geometry.Rect, 0, w.Len())
	sum := 0
	for win := range w.Windows() {
		if in, ok := area.Intersect(win.Rect); !ok || in != win.Rect {
			t.Fatalf("seed %d step %d ws %d: %v has rect %v outside %v", seed, step, index, win.ID, win.Rect, area)
		}
		for _, other := range list {
			if other.Overlaps(win.Rect) {
				t.Fatalf("seed %d step %d ws %d: %v overlaps %v", seed, step, index, win.Rect, other)
			}
		}
		list = append(list, win.Rect)
		sum += win.Rect.Area()
	}
	if sum != area.Area() {
		t.Fatalf("seed %d step %d ws %d: rects cover %d, area is %d", seed, step, index, sum, area.Area())
	}
}
