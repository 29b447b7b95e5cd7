package layout

import (
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/1broseidon/strata/internal/geometry"
	"github.com/1broseidon/strata/internal/window"
)

var fullHD = geometry.Rect{X: 0, Y: 0, Width: 1920, Height: 1080}

func resolve(t *testing.T, tree *Tree, area geometry.Rect) map[window.ID]geometry.Rect {
	t.Helper()
	out := make(map[window.ID]geometry.Rect)
	tree.Resolve(area, func(id window.ID, r geometry.Rect) {
		if _, dup := out[id]; dup {
			t.Fatalf("window %v resolved twice", id)
		}
		out[id] = r
	})
	return out
}

func insertNext(tree *Tree, id window.ID) {
	tree.Insert(id, tree.NextSplit(), DefaultRatio)
}

func TestTree_SingleOutputScenario(t *testing.T) {
	const a, b, c window.ID = 1, 2, 3
	tree := New()

	insertNext(tree, a)
	got := resolve(t, tree, fullHD)
	if got[a] != fullHD {
		t.Fatalf("expected A to fill the output, got %v", got[a])
	}

	if axis := tree.NextSplit(); axis != Horizontal {
		t.Fatalf("expected horizontal split for B, got %v", axis)
	}
	insertNext(tree, b)
	got = resolve(t, tree, fullHD)
	if want := (geometry.Rect{X: 0, Y: 0, Width: 960, Height: 1080}); got[a] != want {
		t.Fatalf("expected A=%v, got %v", want, got[a])
	}
	if want := (geometry.Rect{X: 960, Y: 0, Width: 960, Height: 1080}); got[b] != want {
		t.Fatalf("expected B=%v, got %v", want, got[b])
	}

	if axis := tree.NextSplit(); axis != Vertical {
		t.Fatalf("expected vertical split for C, got %v", axis)
	}
	insertNext(tree, c)
	got = resolve(t, tree, fullHD)
	if want := (geometry.Rect{X: 960, Y: 0, Width: 960, Height: 540}); got[b] != want {
		t.Fatalf("expected B=%v, got %v", want, got[b])
	}
	if want := (geometry.Rect{X: 960, Y: 540, Width: 960, Height: 540}); got[c] != want {
		t.Fatalf("expected C=%v, got %v", want, got[c])
	}

	if !tree.Remove(b) {
		t.Fatalf("expected B to be removed")
	}
	got = resolve(t, tree, fullHD)
	if want := (geometry.Rect{X: 960, Y: 0, Width: 960, Height: 1080}); got[c] != want {
		t.Fatalf("expected C=%v after removing B, got %v", want, got[c])
	}
	if want := (geometry.Rect{X: 0, Y: 0, Width: 960, Height: 1080}); got[a] != want {
		t.Fatalf("expected A unchanged at %v, got %v", want, got[a])
	}
}

func TestTree_NextSplitAlternatesWithDepth(t *testing.T) {
	tree := New()
	want := []Axis{Horizontal, Horizontal, Vertical, Horizontal, Vertical, Horizontal}
	for i, axis := range want {
		if got := tree.NextSplit(); got != axis {
			t.Fatalf("insertion %d: expected %v, got %v", i, axis, got)
		}
		insertNext(tree, window.ID(i+1))
	}
	if d, _ := tree.Depth(window.ID(len(want))); d != len(want)-1 {
		t.Fatalf("expected spiral depth %d, got %d", len(want)-1, d)
	}
}

func TestTree_SpiralOrder(t *testing.T) {
	const a, b, c window.ID = 1, 2, 3
	tree := New()

	insertNext(tree, a)
	regionA := resolve(t, tree, fullHD)[a]
	insertNext(tree, b)
	regionB := resolve(t, tree, fullHD)[b]
	insertNext(tree, c)
	final := resolve(t, tree, fullHD)

	union := geometry.Union(final[b], final[c])
	if !contains(regionA, union) {
		t.Fatalf("expected A's region %v to contain B∪C %v", regionA, union)
	}
	if !contains(regionB, final[c]) {
		t.Fatalf("expected B's region %v to contain C %v", regionB, final[c])
	}
	if contains(final[c], final[b]) {
		t.Fatalf("C must not contain B")
	}
}

func TestTree_RemovalPromotesSibling(t *testing.T) {
	tree := New()
	insertNext(tree, 1)
	insertNext(tree, 2)

	tree.Remove(1)
	got := resolve(t, tree, fullHD)
	if got[2] != fullHD {
		t.Fatalf("expected sibling to take the parent's rectangle, got %v", got[2])
	}
	if tree.Len() != 1 {
		t.Fatalf("expected 1 leaf, got %d", tree.Len())
	}
	if err := tree.Check(); err != nil {
		t.Fatalf("check: %v", err)
	}
}

func TestTree_RemoveEdgeCases(t *testing.T) {
	tree := New()
	if tree.Remove(7) {
		t.Fatalf("expected remove on empty tree to be a no-op")
	}

	insertNext(tree, 7)
	if !tree.Remove(7) {
		t.Fatalf("expected root leaf removal")
	}
	if !tree.Empty() {
		t.Fatalf("expected empty tree after removing root leaf")
	}
	if _, ok := tree.Cursor(); ok {
		t.Fatalf("expected no cursor on empty tree")
	}
	if err := tree.Check(); err != nil {
		t.Fatalf("check: %v", err)
	}
}

func TestTree_IdempotentReinsert(t *testing.T) {
	tree := New()
	insertNext(tree, 1)
	insertNext(tree, 2)
	insertNext(tree, 2)

	var leaves []window.ID
	for id := range tree.Leaves() {
		leaves = append(leaves, id)
	}
	if !slices.Equal(leaves, []window.ID{1, 2}) {
		t.Fatalf("expected exactly one leaf per window, got %v", leaves)
	}
	if err := tree.Check(); err != nil {
		t.Fatalf("check: %v", err)
	}
}

func TestTree_CursorFollowsNewestRemainingLeaf(t *testing.T) {
	tree := New()
	for id := window.ID(1); id <= 4; id++ {
		insertNext(tree, id)
	}
	// 4 is the cursor; removing it promotes 3, the newest remaining leaf.
	tree.Remove(4)
	if id, _ := tree.Cursor(); id != 3 {
		t.Fatalf("expected cursor 3, got %v", id)
	}

	// Removing a non-cursor leaf keeps the cursor.
	tree.Remove(1)
	if id, _ := tree.Cursor(); id != 3 {
		t.Fatalf("expected cursor to stay at 3, got %v", id)
	}

	insertNext(tree, 5)
	got := resolve(t, tree, fullHD)
	if !contains(geometry.Union(got[3], got[5]), got[5]) || got[3].Overlaps(got[5]) {
		t.Fatalf("expected 5 to split 3's tile, got 3=%v 5=%v", got[3], got[5])
	}
}

func TestTree_InvalidRatioFallsBackToDefault(t *testing.T) {
	tree := New()
	tree.Insert(1, Horizontal, 0.5)
	tree.Insert(2, Horizontal, 1.5)

	got := resolve(t, tree, fullHD)
	if got[1].Width != 960 || got[2].Width != 960 {
		t.Fatalf("expected an even split, got %v and %v", got[1], got[2])
	}
}

func TestTree_SetRatio(t *testing.T) {
	tree := New()
	insertNext(tree, 1)
	if tree.SetRatio(1, 0.3) {
		t.Fatalf("expected SetRatio on the only window to fail")
	}
	insertNext(tree, 2)
	if !tree.SetRatio(2, 0.25) {
		t.Fatalf("expected SetRatio to succeed")
	}
	got := resolve(t, tree, fullHD)
	if got[1].Width != 480 || got[2].Width != 1440 {
		t.Fatalf("expected 480/1440 split, got %v and %v", got[1], got[2])
	}

	tree.SetRatio(2, 0.01)
	got = resolve(t, tree, fullHD)
	if got[1].Width != 192 {
		t.Fatalf("expected ratio clamped to %.1f, got width %d", MinRatio, got[1].Width)
	}
}

func TestTree_ZeroAreaYieldsZeroSizedRects(t *testing.T) {
	tree := New()
	for id := window.ID(1); id <= 5; id++ {
		insertNext(tree, id)
	}
	for _, area := range []geometry.Rect{
		{X: 10, Y: 20, Width: 0, Height: 0},
		{X: 0, Y: 0, Width: 1920, Height: 0},
		{X: 0, Y: 0, Width: -5, Height: 100},
	} {
		for id, r := range resolve(t, tree, area) {
			if r.Width != 0 || r.Height != 0 {
				t.Fatalf("area %v: expected zero-size rect for %v, got %v", area, id, r)
			}
		}
	}
}

func TestTree_RandomSequencesKeepBijectionAndPartition(t *testing.T) {
	areas := []geometry.Rect{
		fullHD,
		{X: 1920, Y: 0, Width: 1281, Height: 1023},
		{X: 0, Y: 0, Width: 7, Height: 3},
	}

	for seed := uint64(1); seed <= 20; seed++ {
		rng := rand.New(rand.NewPCG(seed, 99))
		tree := New()
		present := map[window.ID]bool{}

		for step := 0; step < 300; step++ {
			id := window.ID(rng.IntN(16) + 1)
			if rng.IntN(3) == 0 {
				if tree.Remove(id) != present[id] {
					t.Fatalf("seed %d step %d: remove(%v) disagreed with model", seed, step, id)
				}
				delete(present, id)
			} else {
				insertNext(tree, id)
				present[id] = true
			}

			if err := tree.Check(); err != nil {
				t.Fatalf("seed %d step %d: %v", seed, step, err)
			}
			if tree.Len() != len(present) {
				t.Fatalf("seed %d step %d: expected %d leaves, got %d", seed, step, len(present), tree.Len())
			}
			for leaf := range tree.Leaves() {
				if !present[leaf] {
					t.Fatalf("seed %d step %d: unexpected leaf %v", seed, step, leaf)
				}
			}

			area := areas[step%len(areas)]
			assertPartition(t, resolve(t, tree, area), area, len(present))
		}
	}
}

func assertPartition(t *testing.T, rects map[window.ID]geometry.Rect, area geometry.Rect, n int) {
	t.Helper()
	if len(rects) != n {
		t.Fatalf("expected %d rects, got %d", n, len(rects))
	}
	if n == 0 {
		return
	}

	sum := 0
	list := make([]geometry.Rect, 0, len(rects))
	for _, r := range rects {
		if r.Width < 0 || r.Height < 0 {
			t.Fatalf("negative rect %v", r)
		}
		if r.Area() > 0 && !contains(area, r) {
			t.Fatalf("rect %v escapes area %v", r, area)
		}
		sum += r.Area()
		list = append(list, r)
	}
	if sum != area.Area() {
		t.Fatalf("expected leaf areas to sum to %d, got %d", area.Area(), sum)
	}
	for i := range list {
		for j := i + 1; j < len(list); j++ {
			if list[i].Overlaps(list[j]) {
				t.Fatalf("rects %v and %v overlap", list[i], list[j])
			}
		}
	}
}

func contains(outer, inner geometry.Rect) bool {
	return inner.X >= outer.X && inner.Y >= outer.Y &&
		inner.X+inner.Width <= outer.X+outer.Width &&
		inner.Y+inner.Height <= outer.Y+outer.Height
}
