// Package treeviz exports workspace layout trees as Graphviz graphs.
package treeviz

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/1broseidon/strata/internal/engine"
	"github.com/1broseidon/strata/internal/window"
)

// Options configures DOT output.
type Options struct {
	// Focused is drawn with FocusColor.
	Focused    window.ID
	FocusColor string
	// Detailed adds the resolved rectangle to leaf labels.
	Detailed bool
}

// ToDOT converts one workspace's layout tree to Graphviz DOT. Splits are
// ellipses labelled with their axis and ratio; leaves are boxes labelled
// with the window title. Edges are labelled with the side each child
// occupies.
func ToDOT(ws engine.WorkspaceInfo, opts Options) string {
	focusColor := opts.FocusColor
	if focusColor == "" {
		focusColor = "#5e81ac"
	}

	windows := make(map[window.ID]engine.WindowInfo, len(ws.Windows))
	for _, w := range ws.Windows {
		windows[w.ID] = w
	}
	nodes := make(map[int]engine.TreeNode, len(ws.Tree))
	for _, n := range ws.Tree {
		nodes[n.Index] = n
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "digraph %q {\n", fmt.Sprintf("workspace %d", ws.Index))
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [fontsize=12, fontname=\"monospace\"];\n")
	buf.WriteString("\n")

	for _, n := range ws.Tree {
		fmt.Fprintf(&buf, "  %s [%s];\n", nodeID(n.Index), strings.Join(nodeAttrs(n, windows, opts, focusColor), ", "))
	}

	buf.WriteString("\n")
	seen := make(map[int]bool)
	for _, n := range ws.Tree {
		if n.Parent < 0 {
			continue
		}
		side := sideLabel(nodes[n.Parent].Axis, seen[n.Parent])
		seen[n.Parent] = true
		fmt.Fprintf(&buf, "  %s -> %s [label=%q];\n", nodeID(n.Parent), nodeID(n.Index), side)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func nodeID(i int) string {
	return fmt.Sprintf("n%d", i)
}

func nodeAttrs(n engine.TreeNode, windows map[window.ID]engine.WindowInfo, opts Options, focusColor string) []string {
	if !n.Leaf {
		return []string{
			"shape=ellipse",
			fmt.Sprintf("label=%q", fmt.Sprintf("%s %.2f", n.Axis, n.Ratio)),
		}
	}

	w := windows[n.Window]
	label := w.Title
	if label == "" {
		label = n.Window.String()
	}
	if opts.Detailed {
		label += "\n" + w.Rect.String()
	}
	attrs := []string{"shape=box", "style=\"rounded,filled\"", fmt.Sprintf("label=%q", label)}
	if n.Window == opts.Focused {
		attrs = append(attrs, fmt.Sprintf("fillcolor=%q", focusColor), "fontcolor=white")
	} else {
		attrs = append(attrs, "fillcolor=white")
	}
	return attrs
}

// sideLabel names the half a child occupies: the first child of a
// horizontal split is on the left, of a vertical split on top.
func sideLabel(axis string, second bool) string {
	switch {
	case axis == "vertical" && !second:
		return "top"
	case axis == "vertical":
		return "bottom"
	case !second:
		return "left"
	default:
		return "right"
	}
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}
