// Package focus picks the next window to focus when moving in a direction
// across a tiled workspace.
package focus

import (
	"fmt"
	"strings"

	"github.com/1broseidon/strata/internal/geometry"
	"github.com/1broseidon/strata/internal/window"
)

// Direction is a navigation direction.
type Direction int

const (
	Left Direction = iota
	Right
	Up
	Down
)

func (d Direction) String() string {
	switch d {
	case Left:
		return "left"
	case Right:
		return "right"
	case Up:
		return "up"
	case Down:
		return "down"
	}
	return fmt.Sprintf("direction(%d)", int(d))
}

// ParseDirection accepts left/right/up/down and the vi keys h/l/k/j.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "left", "h":
		return Left, nil
	case "right", "l":
		return Right, nil
	case "up", "k":
		return Up, nil
	case "down", "j":
		return Down, nil
	}
	return Left, fmt.Errorf("unknown direction %q", s)
}

// Tile is a window and the rectangle it occupies.
type Tile struct {
	ID   window.ID
	Rect geometry.Rect
}

// Neighbour returns the tile to focus when moving from current in dir.
//
// The nearest tile whose centre lies in the direction wins, by Manhattan
// distance between centres. When nothing lies that way the search wraps to
// the far edge, preferring tiles aligned with current. It reports false
// when current is not among tiles or there is no other tile.
func Neighbour(tiles []Tile, current window.ID, dir Direction) (window.ID, bool) {
	idx := -1
	for i, t := range tiles {
		if t.ID == current {
			idx = i
			break
		}
	}
	if idx < 0 || len(tiles) < 2 {
		return 0, false
	}

	cx, cy := centre(tiles[idx].Rect)

	best, bestDist := -1, 0
	for i, t := range tiles {
		if i == idx {
			continue
		}
		tx, ty := centre(t.Rect)
		if !ahead(dir, cx, cy, tx, ty) {
			continue
		}
		dist := abs(tx-cx) + abs(ty-cy)
		if best < 0 || dist < bestDist {
			best, bestDist = i, dist
		}
	}
	if best >= 0 {
		return tiles[best].ID, true
	}

	best, bestScore := -1, 0
	for i, t := range tiles {
		if i == idx {
			continue
		}
		tx, ty := centre(t.Rect)
		var score int
		switch dir {
		case Up:
			score = ty*10000 - abs(tx-cx)
		case Down:
			score = -ty*10000 - abs(tx-cx)
		case Left:
			score = tx*10000 - abs(ty-cy)
		case Right:
			score = -tx*10000 - abs(ty-cy)
		}
		if best < 0 || score > bestScore {
			best, bestScore = i, score
		}
	}
	if best < 0 {
		return 0, false
	}
	return tiles[best].ID, true
}

// Closest returns the tile whose centre is nearest to p.
func Closest(tiles []Tile, p geometry.PointF) (window.ID, bool) {
	best := -1
	var bestDist float64
	for i, t := range tiles {
		x, y := centre(t.Rect)
		d := absf(float64(x)-p.X) + absf(float64(y)-p.Y)
		if best < 0 || d < bestDist {
			best, bestDist = i, d
		}
	}
	if best < 0 {
		return 0, false
	}
	return tiles[best].ID, true
}

func ahead(dir Direction, cx, cy, tx, ty int) bool {
	switch dir {
	case Up:
		return ty < cy
	case Down:
		return ty > cy
	case Left:
		return tx < cx
	case Right:
		return tx > cx
	}
	return false
}

func centre(r geometry.Rect) (int, int) {
	return r.X + r.Width/2, r.Y + r.Height/2
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

func absf(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
