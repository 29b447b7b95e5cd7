package tui

import (
	"strings"

	"github.com/1broseidon/strata/internal/geometry"
	"github.com/1broseidon/strata/internal/window"
)

// tile is one window drawn in the preview.
type tile struct {
	ID      window.ID
	Rect    geometry.Rect
	Focused bool
}

// renderASCIIPreview draws tiles, given in area coordinates, scaled onto a
// width x height character canvas.
func renderASCIIPreview(area geometry.Rect, tiles []tile, width, height int) []string {
	if width < 5 || height < 3 {
		return emptyCanvas(width, height)
	}

	canvas := make([][]rune, height)
	for i := range canvas {
		canvas[i] = make([]rune, width)
		for j := range canvas[i] {
			canvas[i][j] = ' '
		}
	}

	drawBorder(canvas, width, height)

	if !area.Empty() {
		// Focused tile last so its border wins on shared edges.
		for _, t := range tiles {
			if !t.Focused {
				drawTile(canvas, area, t, width, height)
			}
		}
		for _, t := range tiles {
			if t.Focused {
				drawTile(canvas, area, t, width, height)
			}
		}
	}

	lines := make([]string, height)
	for i, row := range canvas {
		lines[i] = string(row)
	}
	return lines
}

type boxRunes struct {
	h, v, tl, tr, bl, br rune
}

var (
	lightBox = boxRunes{'─', '│', '┌', '┐', '└', '┘'}
	heavyBox = boxRunes{'━', '┃', '┏', '┓', '┗', '┛'}
)

func drawTile(canvas [][]rune, area geometry.Rect, t tile, canvasW, canvasH int) {
	// The inner canvas excludes the outer frame.
	innerW, innerH := canvasW-2, canvasH-2
	rect := t.Rect
	x1 := 1 + (rect.X-area.X)*innerW/area.Width
	y1 := 1 + (rect.Y-area.Y)*innerH/area.Height
	x2 := 1 + (rect.X+rect.Width-area.X)*innerW/area.Width - 1
	y2 := 1 + (rect.Y+rect.Height-area.Y)*innerH/area.Height - 1

	// Clamp to canvas bounds
	if x1 < 1 {
		x1 = 1
	}
	if y1 < 1 {
		y1 = 1
	}
	if x2 >= canvasW-1 {
		x2 = canvasW - 2
	}
	if y2 >= canvasH-1 {
		y2 = canvasH - 2
	}

	// Need at least 2x2 for a tile
	if x2 <= x1 || y2 <= y1 {
		return
	}

	box := lightBox
	if t.Focused {
		box = heavyBox
	}

	for x := x1; x <= x2; x++ {
		canvas[y1][x] = box.h
		canvas[y2][x] = box.h
	}
	for y := y1; y <= y2; y++ {
		canvas[y][x1] = box.v
		canvas[y][x2] = box.v
	}
	canvas[y1][x1] = box.tl
	canvas[y1][x2] = box.tr
	canvas[y2][x1] = box.bl
	canvas[y2][x2] = box.br

	// Window id in the centre
	centerY := (y1 + y2) / 2
	centerX := (x1 + x2) / 2
	if centerY > y1 && centerY < y2 && centerX > x1 && centerX < x2 {
		label := t.ID.String()
		startX := centerX - len(label)/2
		for i, r := range label {
			if startX+i > x1 && startX+i < x2 {
				canvas[centerY][startX+i] = r
			}
		}
	}
}

func drawBorder(canvas [][]rune, width, height int) {
	for x := 0; x < width; x++ {
		canvas[0][x] = '═'
		canvas[height-1][x] = '═'
	}
	for y := 0; y < height; y++ {
		canvas[y][0] = '║'
		canvas[y][width-1] = '║'
	}
	canvas[0][0] = '╔'
	canvas[0][width-1] = '╗'
	canvas[height-1][0] = '╚'
	canvas[height-1][width-1] = '╝'
}

func emptyCanvas(width, height int) []string {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	lines := make([]string, height)
	empty := strings.Repeat(" ", width)
	for i := range lines {
		lines[i] = empty
	}
	return lines
}
