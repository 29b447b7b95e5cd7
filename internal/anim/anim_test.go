package anim

import (
	"testing"
	"time"

	"github.com/tanema/gween/ease"

	"github.com/1broseidon/strata/internal/geometry"
)

func TestAnimator_LinearTransition(t *testing.T) {
	a := New(time.Second, ease.Linear)
	from := geometry.Rect{X: 0, Y: 0, Width: 1920, Height: 1080}
	to := geometry.Rect{X: 0, Y: 0, Width: 960, Height: 1080}
	a.Retarget(1, from, to)

	if !a.Tick(500 * time.Millisecond) {
		t.Fatalf("expected transition to still be running")
	}
	if got := a.Rects()[1]; got.Width != 1440 {
		t.Fatalf("expected halfway width 1440, got %v", got)
	}

	if a.Tick(600 * time.Millisecond) {
		t.Fatalf("expected transition to finish")
	}
	if a.Running() != 0 || a.Rects() != nil {
		t.Fatalf("expected no active transitions")
	}
}

func TestAnimator_DisabledOrNoop(t *testing.T) {
	off := New(0, nil)
	off.Retarget(1, geometry.Rect{Width: 10, Height: 10}, geometry.Rect{Width: 20, Height: 20})
	if off.Running() != 0 {
		t.Fatalf("expected disabled animator to ignore retargets")
	}

	a := New(time.Second, nil)
	same := geometry.Rect{Width: 10, Height: 10}
	a.Retarget(1, same, same)
	a.Retarget(2, geometry.Rect{}, same)
	if a.Running() != 0 {
		t.Fatalf("expected unchanged and fresh windows not to animate, got %d", a.Running())
	}
}

func TestAnimator_RetargetContinuesFromCurrent(t *testing.T) {
	a := New(time.Second, ease.Linear)
	a.Retarget(1, geometry.Rect{X: 0, Width: 100, Height: 100}, geometry.Rect{X: 100, Width: 100, Height: 100})
	a.Tick(500 * time.Millisecond)

	a.Retarget(1, geometry.Rect{X: 999, Width: 100, Height: 100}, geometry.Rect{X: 0, Width: 100, Height: 100})
	if got := a.Rects()[1]; got.X != 50 {
		t.Fatalf("expected retarget to start from the on-screen x=50, got %v", got)
	}

	a.Drop(1)
	if a.Running() != 0 {
		t.Fatalf("expected drop to cancel the transition")
	}
}

func TestParseEasing(t *testing.T) {
	for _, name := range EasingNames() {
		if _, err := ParseEasing(name); err != nil {
			t.Fatalf("ParseEasing(%q): %v", name, err)
		}
	}
	if _, err := ParseEasing("bounce"); err == nil {
		t.Fatalf("expected unknown easing to fail")
	}
}
