// Package anim interpolates window rectangles when the layout changes.
//
// The layout engine assigns final rectangles immediately; the animator only
// affects what is drawn while a transition is running.
package anim

import (
	"fmt"
	"maps"
	"math"
	"slices"
	"strings"
	"time"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"

	"github.com/1broseidon/strata/internal/geometry"
	"github.com/1broseidon/strata/internal/window"
)

var easings = map[string]ease.TweenFunc{
	"linear":      ease.Linear,
	"in_out_quad": ease.InOutQuad,
	"out_cubic":   ease.OutCubic,
	"out_expo":    ease.OutExpo,
}

// ParseEasing maps a config name to an easing function.
func ParseEasing(name string) (ease.TweenFunc, error) {
	fn, ok := easings[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("unknown easing %q", name)
	}
	return fn, nil
}

// EasingNames lists the accepted easing names in sorted order.
func EasingNames() []string {
	return slices.Sorted(maps.Keys(easings))
}

type transition struct {
	tweens  [4]*gween.Tween
	current geometry.Rect
	target  geometry.Rect
}

func (tr *transition) update(dt float32) bool {
	var v [4]float32
	done := true
	for i, tw := range tr.tweens {
		val, finished := tw.Update(dt)
		v[i] = val
		if !finished {
			done = false
		}
	}
	if done {
		tr.current = tr.target
		return true
	}
	tr.current = geometry.Rect{
		X:      round(v[0]),
		Y:      round(v[1]),
		Width:  round(v[2]),
		Height: round(v[3]),
	}
	return false
}

// Animator tracks one rectangle transition per window. It is not safe for
// concurrent use.
type Animator struct {
	duration float32
	fn       ease.TweenFunc
	active   map[window.ID]*transition
}

// New returns an animator. A non-positive duration disables animation.
func New(duration time.Duration, fn ease.TweenFunc) *Animator {
	if fn == nil {
		fn = ease.Linear
	}
	return &Animator{
		duration: float32(duration.Seconds()),
		fn:       fn,
		active:   make(map[window.ID]*transition),
	}
}

// Enabled reports whether transitions are produced at all.
func (a *Animator) Enabled() bool {
	return a.duration > 0
}

// Retarget starts moving id towards to. If id is already animating it
// continues from its current on-screen rectangle.
func (a *Animator) Retarget(id window.ID, from, to geometry.Rect) {
	if !a.Enabled() {
		return
	}
	if tr, ok := a.active[id]; ok {
		if tr.target == to {
			return
		}
		from = tr.current
	}
	if from == to || from.Empty() {
		delete(a.active, id)
		return
	}
	a.active[id] = &transition{
		tweens: [4]*gween.Tween{
			gween.New(float32(from.X), float32(to.X), a.duration, a.fn),
			gween.New(float32(from.Y), float32(to.Y), a.duration, a.fn),
			gween.New(float32(from.Width), float32(to.Width), a.duration, a.fn),
			gween.New(float32(from.Height), float32(to.Height), a.duration, a.fn),
		},
		current: from,
		target:  to,
	}
}

// Tick advances every transition by dt and drops the finished ones. It
// reports whether any transition is still running.
func (a *Animator) Tick(dt time.Duration) bool {
	step := float32(dt.Seconds())
	for id, tr := range a.active {
		if tr.update(step) {
			delete(a.active, id)
		}
	}
	return len(a.active) > 0
}

// Drop forgets id, e.g. when the window is unmapped.
func (a *Animator) Drop(id window.ID) {
	delete(a.active, id)
}

// Reset cancels every transition.
func (a *Animator) Reset() {
	clear(a.active)
}

// Running reports the number of active transitions.
func (a *Animator) Running() int {
	return len(a.active)
}

// Rects returns the current on-screen rectangle of every animating window.
func (a *Animator) Rects() map[window.ID]geometry.Rect {
	if len(a.active) == 0 {
		return nil
	}
	out := make(map[window.ID]geometry.Rect, len(a.active))
	for id, tr := range a.active {
		out[id] = tr.current
	}
	return out
}

func round(v float32) int {
	return int(math.Round(float64(v)))
}
