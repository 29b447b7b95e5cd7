package x11

import (
	"fmt"
	"log/slog"

	"github.com/BurntSushi/xgb/randr"

	"github.com/1broseidon/strata/internal/config"
	"github.com/1broseidon/strata/internal/geometry"
	"github.com/1broseidon/strata/internal/headless"
	"github.com/1broseidon/strata/internal/workspace"
)

// Monitor represents an active CRTC. Width and Height are the on-screen
// size, after rotation.
type Monitor struct {
	ID       int
	Name     string
	X        int
	Y        int
	Width    int
	Height   int
	Rotation uint16
}

// Transform maps the RandR rotation and reflection bits to a Transform.
func (m Monitor) Transform() geometry.Transform {
	return rotationTransform(m.Rotation)
}

// Mode returns the pre-transform mode size.
func (m Monitor) Mode() geometry.Size {
	if m.Transform().Rotated() {
		return geometry.Size{Width: m.Height, Height: m.Width}
	}
	return geometry.Size{Width: m.Width, Height: m.Height}
}

func rotationTransform(rot uint16) geometry.Transform {
	quarter := 0
	switch {
	case rot&randr.RotationRotate90 != 0:
		quarter = 1
	case rot&randr.RotationRotate180 != 0:
		quarter = 2
	case rot&randr.RotationRotate270 != 0:
		quarter = 3
	}

	flipX := rot&randr.RotationReflectX != 0
	if rot&randr.RotationReflectY != 0 {
		// A vertical mirror is a horizontal one turned half way round.
		flipX = !flipX
		quarter = (quarter + 2) % 4
	}

	if flipX {
		return geometry.TransformFlipped + geometry.Transform(quarter)
	}
	return geometry.TransformNormal + geometry.Transform(quarter)
}

// GetMonitors retrieves all active monitors using XRandR
func (c *Connection) GetMonitors() ([]Monitor, error) {
	resources, err := randr.GetScreenResources(c.XUtil.Conn(), c.Root).Reply()
	if err != nil {
		return nil, fmt.Errorf("failed to get screen resources: %w", err)
	}

	var monitors []Monitor

	// Query each CRTC for active monitors
	for i, crtc := range resources.Crtcs {
		crtcInfo, err := randr.GetCrtcInfo(c.XUtil.Conn(), crtc, resources.ConfigTimestamp).Reply()
		if err != nil {
			continue
		}

		// Skip disabled CRTCs
		if crtcInfo.Width == 0 || crtcInfo.Height == 0 || len(crtcInfo.Outputs) == 0 {
			continue
		}

		outputName := fmt.Sprintf("Monitor%d", i)
		outputInfo, err := randr.GetOutputInfo(c.XUtil.Conn(), crtcInfo.Outputs[0], resources.ConfigTimestamp).Reply()
		if err == nil {
			outputName = string(outputInfo.Name)
		}

		monitors = append(monitors, Monitor{
			ID:       i,
			Name:     outputName,
			X:        int(crtcInfo.X),
			Y:        int(crtcInfo.Y),
			Width:    int(crtcInfo.Width),
			Height:   int(crtcInfo.Height),
			Rotation: crtcInfo.Rotation,
		})
	}

	return monitors, nil
}

// ConfigTimestamp returns the RandR configuration timestamp. It changes
// whenever the output layout changes.
func (c *Connection) ConfigTimestamp() (uint32, error) {
	resources, err := randr.GetScreenResources(c.XUtil.Conn(), c.Root).Reply()
	if err != nil {
		return 0, fmt.Errorf("failed to get screen resources: %w", err)
	}
	return uint32(resources.ConfigTimestamp), nil
}

// Outputs probes the monitors and converts them to workspace outputs.
func (c *Connection) Outputs(cfg *config.Config, logger *slog.Logger) ([]workspace.Output, error) {
	monitors, err := c.GetMonitors()
	if err != nil {
		return nil, err
	}
	return ToOutputs(monitors, cfg, logger), nil
}

// ToOutputs converts monitors to outputs. A configured override replaces
// the probed transform and sets the scale.
func ToOutputs(monitors []Monitor, cfg *config.Config, logger *slog.Logger) []workspace.Output {
	outs := make([]workspace.Output, 0, len(monitors))
	for _, m := range monitors {
		mode := m.Mode()
		out := headless.NewOutput(m.Name, mode.Width, mode.Height)
		out.SetLocation(geometry.Point{X: m.X, Y: m.Y})
		out.SetTransform(m.Transform())

		if override, ok := cfg.OutputOverride(m.Name); ok {
			if override.Scale > 0 {
				out.SetScale(override.Scale)
			}
			if override.Transform != "" {
				t, err := geometry.ParseTransform(override.Transform)
				if err != nil {
					if logger != nil {
						logger.Warn("ignoring output transform override", "output", m.Name, "err", err)
					}
				} else {
					out.SetTransform(t)
				}
			}
		}
		outs = append(outs, out)
	}
	return outs
}
