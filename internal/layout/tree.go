// Package layout implements the dwindle tree: a binary space partition of a
// workspace area where every new window takes the far half of the most
// recently inserted leaf, which produces a spiral of shrinking tiles.
//
// Nodes live in a flat slice and refer to each other by index, with -1 as
// the "no node" sentinel. Leaves store window IDs, never window values.
package layout

import (
	"fmt"
	"iter"
	"math"

	"github.com/1broseidon/strata/internal/geometry"
	"github.com/1broseidon/strata/internal/window"
)

// Axis is the direction a split cuts its rectangle.
type Axis uint8

const (
	// Horizontal places the children side by side: the width is cut.
	Horizontal Axis = iota
	// Vertical stacks the children: the height is cut.
	Vertical
)

func (a Axis) String() string {
	if a == Vertical {
		return "vertical"
	}
	return "horizontal"
}

// Kind is the variant of a tree node.
type Kind uint8

const (
	KindEmpty Kind = iota
	KindLeaf
	KindSplit
)

func (k Kind) String() string {
	switch k {
	case KindLeaf:
		return "leaf"
	case KindSplit:
		return "split"
	default:
		return "empty"
	}
}

const (
	// DefaultRatio is the share of a split given to its left child.
	DefaultRatio = 0.5

	// MinRatio and MaxRatio bound ratios set through SetRatio.
	MinRatio = 0.1
	MaxRatio = 0.9

	none int32 = -1
)

type node struct {
	kind   Kind
	parent int32
	left   int32
	right  int32
	axis   Axis
	ratio  float64
	window window.ID
	seq    uint64
}

// Tree is a dwindle tree. The zero value is not usable; call New.
type Tree struct {
	nodes  []node
	free   []int32
	root   int32
	cursor int32
	leaves map[window.ID]int32
	seq    uint64
}

// New returns an empty tree.
func New() *Tree {
	return &Tree{
		root:   none,
		cursor: none,
		leaves: make(map[window.ID]int32),
	}
}

// Len returns the number of leaves.
func (t *Tree) Len() int {
	return len(t.leaves)
}

// Empty reports whether the tree holds no windows.
func (t *Tree) Empty() bool {
	return t.root == none
}

// Contains reports whether id has a leaf in the tree.
func (t *Tree) Contains(id window.ID) bool {
	_, ok := t.leaves[id]
	return ok
}

// Cursor returns the most recently inserted window still in the tree.
func (t *Tree) Cursor() (window.ID, bool) {
	if t.cursor == none {
		return 0, false
	}
	return t.nodes[t.cursor].window, true
}

// Depth returns how many splits sit above the leaf holding id.
func (t *Tree) Depth(id window.ID) (int, bool) {
	leaf, ok := t.leaves[id]
	if !ok {
		return 0, false
	}
	return t.depth(leaf), true
}

// NextSplit returns the axis the next insertion will use: the leaf that will
// be split is cut horizontally at even depth and vertically at odd depth.
func (t *Tree) NextSplit() Axis {
	target := t.target()
	if target == none || t.depth(target)%2 == 0 {
		return Horizontal
	}
	return Vertical
}

// Insert adds id to the tree. An empty tree becomes a single leaf; otherwise
// the leaf reached by descending toward the insertion cursor is replaced by a
// split whose left child is the old leaf and whose right child holds id.
// An id that is already present is removed first. A ratio outside (0,1) is
// replaced by DefaultRatio.
func (t *Tree) Insert(id window.ID, axis Axis, ratio float64) {
	if !validRatio(ratio) {
		ratio = DefaultRatio
	}
	if t.Contains(id) {
		t.Remove(id)
	}

	t.seq++
	leaf := t.alloc(node{kind: KindLeaf, parent: none, left: none, right: none, window: id, seq: t.seq})
	t.leaves[id] = leaf

	target := t.target()
	if target == none {
		t.root = leaf
		t.cursor = leaf
		return
	}

	parent := t.nodes[target].parent
	split := t.alloc(node{
		kind:   KindSplit,
		parent: parent,
		left:   target,
		right:  leaf,
		axis:   axis,
		ratio:  ratio,
	})
	t.replaceChild(parent, target, split)
	t.nodes[target].parent = split
	t.nodes[leaf].parent = split
	t.cursor = leaf
}

// Remove deletes the leaf holding id and promotes its sibling into the
// parent's place. It reports whether id was present.
func (t *Tree) Remove(id window.ID) bool {
	leaf, ok := t.leaves[id]
	if !ok {
		return false
	}
	delete(t.leaves, id)

	parent := t.nodes[leaf].parent
	if parent == none {
		t.release(leaf)
		t.root = none
		t.cursor = none
		return true
	}

	sibling := t.nodes[parent].left
	if sibling == leaf {
		sibling = t.nodes[parent].right
	}
	grand := t.nodes[parent].parent
	t.replaceChild(grand, parent, sibling)
	t.nodes[sibling].parent = grand

	t.release(parent)
	t.release(leaf)

	if t.cursor == leaf {
		t.cursor = t.newestLeaf(sibling)
	}
	return true
}

// SetRatio changes the ratio of the split directly above id, clamped to
// [MinRatio, MaxRatio]. It reports false when id is absent or is the only
// window.
func (t *Tree) SetRatio(id window.ID, ratio float64) bool {
	leaf, ok := t.leaves[id]
	if !ok || math.IsNaN(ratio) {
		return false
	}
	parent := t.nodes[leaf].parent
	if parent == none {
		return false
	}
	t.nodes[parent].ratio = math.Max(MinRatio, math.Min(ratio, MaxRatio))
	return true
}

// Resolve walks the tree top-down and calls fn with the rectangle of every
// leaf, left to right. An empty or negative area yields zero-size rectangles
// at the area origin.
func (t *Tree) Resolve(area geometry.Rect, fn func(window.ID, geometry.Rect)) {
	if t.root == none {
		return
	}
	if area.Empty() {
		area = geometry.Rect{X: area.X, Y: area.Y}
	}

	type frame struct {
		n    int32
		rect geometry.Rect
	}
	stack := []frame{{t.root, area}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		n := t.nodes[f.n]
		switch n.kind {
		case KindLeaf:
			fn(n.window, f.rect)
		case KindSplit:
			l, r := SplitRect(f.rect, n.axis, n.ratio)
			stack = append(stack, frame{n.right, r}, frame{n.left, l})
		}
	}
}

// SplitRect cuts r along axis. The first rectangle gets round(len*ratio) and
// the second the remainder, so the two always cover r exactly.
func SplitRect(r geometry.Rect, axis Axis, ratio float64) (geometry.Rect, geometry.Rect) {
	if axis == Horizontal {
		w := int(math.Round(float64(r.Width) * ratio))
		return geometry.Rect{X: r.X, Y: r.Y, Width: w, Height: r.Height},
			geometry.Rect{X: r.X + w, Y: r.Y, Width: r.Width - w, Height: r.Height}
	}
	h := int(math.Round(float64(r.Height) * ratio))
	return geometry.Rect{X: r.X, Y: r.Y, Width: r.Width, Height: h},
		geometry.Rect{X: r.X, Y: r.Y + h, Width: r.Width, Height: r.Height - h}
}

// Leaves yields window IDs in left-to-right tree order.
func (t *Tree) Leaves() iter.Seq[window.ID] {
	return func(yield func(window.ID) bool) {
		t.Walk(func(n NodeInfo) bool {
			if n.Kind != KindLeaf {
				return true
			}
			return yield(n.Window)
		})
	}
}

// NodeInfo describes one node during Walk.
type NodeInfo struct {
	Index  int
	Parent int // -1 for the root
	Kind   Kind
	Axis   Axis
	Ratio  float64
	Window window.ID
	Depth  int
}

// Walk visits nodes in pre-order until fn returns false.
func (t *Tree) Walk(fn func(NodeInfo) bool) {
	if t.root == none {
		return
	}
	type frame struct {
		n     int32
		depth int
	}
	stack := []frame{{t.root, 0}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		n := t.nodes[f.n]
		info := NodeInfo{
			Index:  int(f.n),
			Parent: int(n.parent),
			Kind:   n.kind,
			Window: n.window,
			Depth:  f.depth,
		}
		if n.kind == KindSplit {
			info.Axis = n.axis
			info.Ratio = n.ratio
		}
		if !fn(info) {
			return
		}
		if n.kind == KindSplit {
			stack = append(stack, frame{n.right, f.depth + 1}, frame{n.left, f.depth + 1})
		}
	}
}

// Check verifies the structural links of the tree: parent pointers, two
// children per split, and the leaf index.
func (t *Tree) Check() error {
	if t.root == none {
		if len(t.leaves) != 0 {
			return fmt.Errorf("empty tree indexes %d leaves", len(t.leaves))
		}
		return nil
	}
	if t.nodes[t.root].parent != none {
		return fmt.Errorf("root %d has parent %d", t.root, t.nodes[t.root].parent)
	}

	seen := 0
	stack := []int32{t.root}
	for len(stack) > 0 {
		i := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		n := t.nodes[i]
		switch n.kind {
		case KindLeaf:
			seen++
			if idx, ok := t.leaves[n.window]; !ok || idx != i {
				return fmt.Errorf("leaf %d for %v is not indexed", i, n.window)
			}
		case KindSplit:
			if n.left == none || n.right == none {
				return fmt.Errorf("split %d is missing a child", i)
			}
			for _, c := range []int32{n.left, n.right} {
				if t.nodes[c].parent != i {
					return fmt.Errorf("node %d does not point back to parent %d", c, i)
				}
			}
			stack = append(stack, n.left, n.right)
		default:
			return fmt.Errorf("released node %d is still linked", i)
		}
	}
	if seen != len(t.leaves) {
		return fmt.Errorf("reached %d leaves, index holds %d", seen, len(t.leaves))
	}
	if t.cursor != none && t.nodes[t.cursor].kind != KindLeaf {
		return fmt.Errorf("cursor %d is not a leaf", t.cursor)
	}
	return nil
}

// target is the leaf the next insertion splits: starting at the root, take
// the branch that leads to the cursor, or the right branch when the cursor
// is unset.
func (t *Tree) target() int32 {
	n := t.root
	for n != none && t.nodes[n].kind == KindSplit {
		sp := t.nodes[n]
		if t.isAncestor(sp.left, t.cursor) {
			n = sp.left
		} else {
			n = sp.right
		}
	}
	return n
}

func (t *Tree) isAncestor(a, i int32) bool {
	for i != none {
		if i == a {
			return true
		}
		i = t.nodes[i].parent
	}
	return false
}

func (t *Tree) depth(i int32) int {
	d := 0
	for p := t.nodes[i].parent; p != none; p = t.nodes[p].parent {
		d++
	}
	return d
}

// newestLeaf returns the most recently inserted leaf under n.
func (t *Tree) newestLeaf(n int32) int32 {
	best := none
	stack := []int32{n}
	for len(stack) > 0 {
		i := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		switch t.nodes[i].kind {
		case KindLeaf:
			if best == none || t.nodes[i].seq > t.nodes[best].seq {
				best = i
			}
		case KindSplit:
			stack = append(stack, t.nodes[i].left, t.nodes[i].right)
		}
	}
	return best
}

func (t *Tree) replaceChild(parent, old, repl int32) {
	if parent == none {
		t.root = repl
		return
	}
	if t.nodes[parent].left == old {
		t.nodes[parent].left = repl
	} else {
		t.nodes[parent].right = repl
	}
}

func (t *Tree) alloc(n node) int32 {
	if k := len(t.free); k > 0 {
		i := t.free[k-1]
		t.free = t.free[:k-1]
		t.nodes[i] = n
		return i
	}
	t.nodes = append(t.nodes, n)
	return int32(len(t.nodes) - 1)
}

func (t *Tree) release(i int32) {
	t.nodes[i] = node{kind: KindEmpty, parent: none, left: none, right: none}
	t.free = append(t.free, i)
}

func validRatio(r float64) bool {
	return r > 0 && r < 1 && !math.IsNaN(r)
}
