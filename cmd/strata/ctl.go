package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/1broseidon/strata/internal/engine"
	"github.com/1broseidon/strata/internal/geometry"
	"github.com/1broseidon/strata/internal/ipc"
	"github.com/1broseidon/strata/internal/treeviz"
	"github.com/1broseidon/strata/internal/window"
)

// parseWindowID accepts "3" or "w3".
func parseWindowID(s string) (window.ID, error) {
	n, err := strconv.Atoi(strings.TrimPrefix(s, "w"))
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid window id %q", s)
	}
	return window.ID(n), nil
}

// parsePoint accepts "X,Y".
func parsePoint(s string) (geometry.PointF, error) {
	xs, ys, ok := strings.Cut(s, ",")
	if !ok {
		return geometry.PointF{}, fmt.Errorf("invalid point %q (want X,Y)", s)
	}
	x, err := strconv.ParseFloat(strings.TrimSpace(xs), 64)
	if err != nil {
		return geometry.PointF{}, fmt.Errorf("invalid point %q: %w", s, err)
	}
	y, err := strconv.ParseFloat(strings.TrimSpace(ys), 64)
	if err != nil {
		return geometry.PointF{}, fmt.Errorf("invalid point %q: %w", s, err)
	}
	return geometry.PointF{X: x, Y: y}, nil
}

// parseSize accepts "WxH".
func parseSize(s string) (int, int, error) {
	ws, hs, ok := strings.Cut(strings.ToLower(s), "x")
	if !ok {
		return 0, 0, fmt.Errorf("invalid size %q (want WxH)", s)
	}
	w, err := strconv.Atoi(ws)
	if err != nil || w <= 0 {
		return 0, 0, fmt.Errorf("invalid width in %q", s)
	}
	h, err := strconv.Atoi(hs)
	if err != nil || h <= 0 {
		return 0, 0, fmt.Errorf("invalid height in %q", s)
	}
	return w, h, nil
}

func parseWorkspace(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid workspace index %q", s)
	}
	return n, nil
}

func printJSON(v any) int {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func fail(err error) int {
	fmt.Fprintln(os.Stderr, err)
	return 1
}

func printWorkspaceUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  strata workspace list [--json]")
	fmt.Fprintln(w, "  strata workspace activate <index>")
}

func runWorkspace(args []string) int {
	if len(args) == 0 || isHelpArg(args) {
		printWorkspaceUsage(os.Stderr)
		return 2
	}
	client := ipc.NewClient()

	switch args[0] {
	case "list":
		fs := flag.NewFlagSet("workspace list", flag.ContinueOnError)
		fs.SetOutput(os.Stderr)
		asJSON := fs.Bool("json", false, "Print JSON")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}
		data, err := client.ListWorkspaces()
		if err != nil {
			return fail(err)
		}
		if *asJSON {
			return printJSON(data)
		}
		for _, ws := range data.Workspaces {
			marker := " "
			if ws.Active {
				marker = "*"
			}
			ids := make([]string, len(ws.Windows))
			for i, id := range ws.Windows {
				ids[i] = id.String()
			}
			fmt.Printf("%s %2d  %s  [%s]\n", marker, ws.Index, ws.Area, strings.Join(ids, " "))
		}
		return 0

	case "activate":
		if len(args) != 2 {
			printWorkspaceUsage(os.Stderr)
			return 2
		}
		i, err := parseWorkspace(args[1])
		if err != nil {
			return fail(err)
		}
		if err := client.ActivateWorkspace(i); err != nil {
			return fail(err)
		}
		return 0

	default:
		fmt.Fprintf(os.Stderr, "Unknown workspace subcommand: %s\n", args[0])
		printWorkspaceUsage(os.Stderr)
		return 2
	}
}

func printWindowUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  strata window map [--app-id ID] [--workspace N] <title>")
	fmt.Fprintln(w, "  strata window unmap <window>")
	fmt.Fprintln(w, "  strata window move <window> <workspace>")
	fmt.Fprintln(w, "  strata window resize <window> <ratio>")
	fmt.Fprintln(w, "  strata window focus (<window> | --direction DIR | --at X,Y)")
	fmt.Fprintln(w, "  strata window at <x,y>")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Windows are named by id, e.g. 3 or w3. Workspaces are 0-based.")
}

func runWindow(args []string) int {
	if len(args) == 0 || isHelpArg(args) {
		printWindowUsage(os.Stderr)
		return 2
	}
	client := ipc.NewClient()

	switch args[0] {
	case "map":
		fs := flag.NewFlagSet("window map", flag.ContinueOnError)
		fs.SetOutput(os.Stderr)
		appID := fs.String("app-id", "", "Application id recorded on the surface")
		ws := fs.Int("workspace", -1, "Target workspace (default: active)")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}
		if fs.NArg() != 1 {
			printWindowUsage(os.Stderr)
			return 2
		}
		var target *int
		if *ws >= 0 {
			target = ws
		}
		data, err := client.MapWindow(fs.Arg(0), *appID, target)
		if err != nil {
			return fail(err)
		}
		fmt.Printf("%s workspace=%d rect=%s\n", data.Window, data.Workspace, data.Rect)
		return 0

	case "unmap":
		if len(args) != 2 {
			printWindowUsage(os.Stderr)
			return 2
		}
		id, err := parseWindowID(args[1])
		if err != nil {
			return fail(err)
		}
		if err := client.UnmapWindow(id); err != nil {
			return fail(err)
		}
		return 0

	case "move":
		if len(args) != 3 {
			printWindowUsage(os.Stderr)
			return 2
		}
		id, err := parseWindowID(args[1])
		if err != nil {
			return fail(err)
		}
		ws, err := parseWorkspace(args[2])
		if err != nil {
			return fail(err)
		}
		if err := client.MoveWindow(id, ws); err != nil {
			return fail(err)
		}
		return 0

	case "resize":
		if len(args) != 3 {
			printWindowUsage(os.Stderr)
			return 2
		}
		id, err := parseWindowID(args[1])
		if err != nil {
			return fail(err)
		}
		ratio, err := strconv.ParseFloat(args[2], 64)
		if err != nil {
			return fail(fmt.Errorf("invalid ratio %q", args[2]))
		}
		if err := client.ResizeWindow(id, ratio); err != nil {
			return fail(err)
		}
		return 0

	case "focus":
		fs := flag.NewFlagSet("window focus", flag.ContinueOnError)
		fs.SetOutput(os.Stderr)
		dir := fs.String("direction", "", "Focus the neighbour in this direction (left, right, up, down)")
		at := fs.String("at", "", "Focus the window at X,Y")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}
		var req ipc.FocusPayload
		switch {
		case fs.NArg() == 1:
			id, err := parseWindowID(fs.Arg(0))
			if err != nil {
				return fail(err)
			}
			req.Window = id
		case *dir != "":
			req.Direction = *dir
		case *at != "":
			p, err := parsePoint(*at)
			if err != nil {
				return fail(err)
			}
			req.Point = &p
		default:
			printWindowUsage(os.Stderr)
			return 2
		}
		data, err := client.Focus(req)
		if err != nil {
			return fail(err)
		}
		fmt.Println(data.Focus)
		return 0

	case "at":
		if len(args) != 2 {
			printWindowUsage(os.Stderr)
			return 2
		}
		p, err := parsePoint(args[1])
		if err != nil {
			return fail(err)
		}
		data, err := client.WindowAt(p.X, p.Y)
		if err != nil {
			return fail(err)
		}
		if !data.Found {
			fmt.Println("none")
			return 0
		}
		fmt.Printf("%s location=%d,%d\n", data.Window, data.Location.X, data.Location.Y)
		return 0

	default:
		fmt.Fprintf(os.Stderr, "Unknown window subcommand: %s\n", args[0])
		printWindowUsage(os.Stderr)
		return 2
	}
}

func printOutputUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  strata output add [--at X,Y] [--scale S] [--transform T] <name> <WxH>")
	fmt.Fprintln(w, "  strata output remove <name>")
}

func runOutput(args []string) int {
	if len(args) == 0 || isHelpArg(args) {
		printOutputUsage(os.Stderr)
		return 2
	}
	client := ipc.NewClient()

	switch args[0] {
	case "add":
		fs := flag.NewFlagSet("output add", flag.ContinueOnError)
		fs.SetOutput(os.Stderr)
		at := fs.String("at", "0,0", "Position in the global space, X,Y")
		scale := fs.Float64("scale", 0, "Scale factor (default: config override or 1)")
		transform := fs.String("transform", "", "normal, 90, 180, 270, flipped, flipped-90, flipped-180, flipped-270")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}
		if fs.NArg() != 2 {
			printOutputUsage(os.Stderr)
			return 2
		}
		w, h, err := parseSize(fs.Arg(1))
		if err != nil {
			return fail(err)
		}
		p, err := parsePoint(*at)
		if err != nil {
			return fail(err)
		}
		err = client.AddOutput(ipc.AddOutputPayload{
			Name:      fs.Arg(0),
			Width:     w,
			Height:    h,
			X:         int(p.X),
			Y:         int(p.Y),
			Scale:     *scale,
			Transform: *transform,
		})
		if err != nil {
			return fail(err)
		}
		return 0

	case "remove":
		if len(args) != 2 {
			printOutputUsage(os.Stderr)
			return 2
		}
		if err := client.RemoveOutput(args[1]); err != nil {
			return fail(err)
		}
		return 0

	default:
		fmt.Fprintf(os.Stderr, "Unknown output subcommand: %s\n", args[0])
		printOutputUsage(os.Stderr)
		return 2
	}
}

func runLayout(args []string) int {
	fs := flag.NewFlagSet("layout", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	asJSON := fs.Bool("json", false, "Print the full snapshot as JSON")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: strata layout [--json]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Print outputs and the resolved rectangle of every window.")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}

	snap, err := ipc.NewClient().GetLayout()
	if err != nil {
		return fail(err)
	}
	if *asJSON {
		return printJSON(snap)
	}
	printLayout(os.Stdout, snap)
	return 0
}

func printLayout(w io.Writer, snap *engine.Snapshot) {
	for _, o := range snap.Outputs {
		fmt.Fprintf(w, "output %s %s transform=%s scale=%g\n", o.Name, o.Geometry, o.Transform, o.Scale)
	}
	fmt.Fprintf(w, "focus %s\n", snap.Focus)
	for _, ws := range snap.Workspaces {
		if len(ws.Windows) == 0 && !ws.Active {
			continue
		}
		marker := ""
		if ws.Active {
			marker = " (active)"
		}
		fmt.Fprintf(w, "workspace %d%s %s\n", ws.Index, marker, ws.Area)
		for _, win := range ws.Windows {
			fmt.Fprintf(w, "  %-4s %-24s %s\n", win.ID, win.Title, win.Rect)
		}
	}
}

func runTree(args []string) int {
	fs := flag.NewFlagSet("tree", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	wsFlag := fs.Int("workspace", -1, "Workspace index (default: active)")
	svg := fs.Bool("svg", false, "Render SVG with Graphviz instead of printing DOT")
	out := fs.String("o", "", "Write to this file instead of stdout")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: strata tree [--workspace N] [--svg] [-o FILE]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Export a workspace's split tree as Graphviz DOT or SVG.")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}

	client := ipc.NewClient()
	snap, err := client.GetLayout()
	if err != nil {
		return fail(err)
	}
	idx := snap.Current
	if *wsFlag >= 0 {
		idx = *wsFlag
	}
	ws, ok := snap.Workspace(idx)
	if !ok {
		return fail(fmt.Errorf("workspace %d does not exist (have %d)", idx, len(snap.Workspaces)))
	}

	dot := treeviz.ToDOT(ws, treeviz.Options{Focused: snap.Focused, Detailed: true})
	data := []byte(dot)
	if *svg {
		data, err = treeviz.RenderSVG(context.Background(), dot)
		if err != nil {
			return fail(err)
		}
	}

	if *out == "" {
		os.Stdout.Write(data)
		return 0
	}
	if err := os.WriteFile(*out, data, 0644); err != nil {
		return fail(err)
	}
	return 0
}
