package geometry

import (
	"fmt"
	"strings"
)

// Transform describes how an output's mode is rotated or mirrored before it
// is presented.
type Transform int

const (
	TransformNormal Transform = iota
	Transform90
	Transform180
	Transform270
	TransformFlipped
	TransformFlipped90
	TransformFlipped180
	TransformFlipped270
)

var transformNames = map[Transform]string{
	TransformNormal:     "normal",
	Transform90:         "90",
	Transform180:        "180",
	Transform270:        "270",
	TransformFlipped:    "flipped",
	TransformFlipped90:  "flipped-90",
	TransformFlipped180: "flipped-180",
	TransformFlipped270: "flipped-270",
}

func (t Transform) String() string {
	if name, ok := transformNames[t]; ok {
		return name
	}
	return fmt.Sprintf("transform(%d)", int(t))
}

// ParseTransform accepts the names produced by String. The empty string maps
// to TransformNormal.
func ParseTransform(s string) (Transform, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return TransformNormal, nil
	}
	for t, name := range transformNames {
		if name == s {
			return t, nil
		}
	}
	return TransformNormal, fmt.Errorf("unknown transform %q", s)
}

// Rotated reports whether the transform swaps width and height.
func (t Transform) Rotated() bool {
	switch t {
	case Transform90, Transform270, TransformFlipped90, TransformFlipped270:
		return true
	}
	return false
}

// TransformSize applies t to a mode size.
func (t Transform) TransformSize(s Size) Size {
	if t.Rotated() {
		return Size{Width: s.Height, Height: s.Width}
	}
	return s
}
