package headless

import (
	"github.com/1broseidon/strata/internal/geometry"
)

// Output is a virtual display. Its fields may be changed between engine
// calls; call Engine.ReconfigureOutputs afterwards.
type Output struct {
	name      string
	mode      geometry.Size
	transform geometry.Transform
	scale     float64
	loc       geometry.Point
}

// NewOutput creates an output with the given mode at scale 1.
func NewOutput(name string, width, height int) *Output {
	return &Output{name: name, mode: geometry.Size{Width: width, Height: height}, scale: 1}
}

func (o *Output) Name() string { return o.name }

// CurrentMode reports false for a zero mode.
func (o *Output) CurrentMode() (geometry.Size, bool) {
	return o.mode, !o.mode.Empty()
}

func (o *Output) CurrentTransform() geometry.Transform { return o.transform }

func (o *Output) CurrentScale() float64 {
	if o.scale <= 0 {
		return 1
	}
	return o.scale
}

func (o *Output) Location() geometry.Point { return o.loc }

// SetMode changes the physical mode size.
func (o *Output) SetMode(width, height int) {
	o.mode = geometry.Size{Width: width, Height: height}
}

func (o *Output) SetTransform(t geometry.Transform) { o.transform = t }

func (o *Output) SetScale(scale float64) { o.scale = scale }

// SetLocation moves the output in the global layout.
func (o *Output) SetLocation(p geometry.Point) { o.loc = p }
