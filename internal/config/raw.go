package config

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// IncludeList supports either:
//
//	include: "/path/to/file.yaml"
//
// or:
//
//	include:
//	  - "/path/to/file.yaml"
//	  - "/path/to/dir"
type IncludeList []string

func (l *IncludeList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case 0:
		*l = nil
		return nil
	case yaml.ScalarNode:
		if value.Tag != "!!str" {
			return fmt.Errorf("include must be a string or list of strings")
		}
		*l = []string{value.Value}
		return nil
	case yaml.SequenceNode:
		out := make([]string, 0, len(value.Content))
		for _, item := range value.Content {
			if item.Kind != yaml.ScalarNode || item.Tag != "!!str" {
				return fmt.Errorf("include entries must be strings")
			}
			out = append(out, item.Value)
		}
		*l = out
		return nil
	default:
		return fmt.Errorf("include must be a string or list of strings")
	}
}

type RawSize struct {
	Width  *int `yaml:"width" toml:"width"`
	Height *int `yaml:"height" toml:"height"`
}

type RawOutputOverride struct {
	Scale     *float64 `yaml:"scale" toml:"scale"`
	Transform *string  `yaml:"transform" toml:"transform"`
}

type RawGeneral struct {
	FallbackOutput *RawSize                     `yaml:"fallback_output" toml:"fallback_output"`
	Outputs        map[string]RawOutputOverride `yaml:"outputs" toml:"outputs"`
}

type RawBorder struct {
	Width         *int    `yaml:"width" toml:"width"`
	ActiveColor   *string `yaml:"active_color" toml:"active_color"`
	InactiveColor *string `yaml:"inactive_color" toml:"inactive_color"`
}

type RawDecorations struct {
	Border *RawBorder `yaml:"border" toml:"border"`
}

type RawGaps struct {
	Inner *int `yaml:"inner" toml:"inner"`
	Outer *int `yaml:"outer" toml:"outer"`
}

type RawTiling struct {
	Gaps  *RawGaps `yaml:"gaps" toml:"gaps"`
	Ratio *float64 `yaml:"ratio" toml:"ratio"`
}

type RawAnimations struct {
	Enabled    *bool   `yaml:"enabled" toml:"enabled"`
	DurationMS *int    `yaml:"duration_ms" toml:"duration_ms"`
	Easing     *string `yaml:"easing" toml:"easing"`
}

type RawAPI struct {
	Enabled *bool   `yaml:"enabled" toml:"enabled"`
	Listen  *string `yaml:"listen" toml:"listen"`
}

type RawChecker struct {
	IntervalSeconds *int `yaml:"interval_seconds" toml:"interval_seconds"`
}

type RawHotkeys struct {
	Enabled  *bool   `yaml:"enabled" toml:"enabled"`
	Modifier *string `yaml:"modifier" toml:"modifier"`
}

type RawRule struct {
	AppID     *string `yaml:"app_id" toml:"app_id"`
	Workspace *int    `yaml:"workspace" toml:"workspace"`
}

// RawConfig mirrors Config with every field optional, so that files can be
// layered: a nil field leaves the value below it untouched.
type RawConfig struct {
	Include     IncludeList     `yaml:"include" toml:"-"`
	Workspaces  *int            `yaml:"workspaces" toml:"workspaces"`
	LogLevel    *string         `yaml:"log_level" toml:"log_level"`
	General     *RawGeneral     `yaml:"general" toml:"general"`
	Decorations *RawDecorations `yaml:"decorations" toml:"decorations"`
	Tiling      *RawTiling      `yaml:"tiling" toml:"tiling"`
	Animations  *RawAnimations  `yaml:"animations" toml:"animations"`
	API         *RawAPI         `yaml:"api" toml:"api"`
	Checker     *RawChecker     `yaml:"checker" toml:"checker"`
	Hotkeys     *RawHotkeys     `yaml:"hotkeys" toml:"hotkeys"`
	// Rules replace, rather than extend, the rules of earlier files.
	Rules []RawRule `yaml:"rules" toml:"rules"`
}

func (c RawConfig) merge(overlay RawConfig) RawConfig {
	out := c

	if overlay.Workspaces != nil {
		out.Workspaces = overlay.Workspaces
	}
	if overlay.LogLevel != nil {
		out.LogLevel = overlay.LogLevel
	}

	if overlay.General != nil {
		g := RawGeneral{}
		if out.General != nil {
			g = *out.General
		}
		if overlay.General.FallbackOutput != nil {
			size := RawSize{}
			if g.FallbackOutput != nil {
				size = *g.FallbackOutput
			}
			if overlay.General.FallbackOutput.Width != nil {
				size.Width = overlay.General.FallbackOutput.Width
			}
			if overlay.General.FallbackOutput.Height != nil {
				size.Height = overlay.General.FallbackOutput.Height
			}
			g.FallbackOutput = &size
		}
		if overlay.General.Outputs != nil {
			outputs := make(map[string]RawOutputOverride, len(g.Outputs)+len(overlay.General.Outputs))
			for name, o := range g.Outputs {
				outputs[name] = o
			}
			for name, o := range overlay.General.Outputs {
				outputs[name] = mergeRawOutput(outputs[name], o)
			}
			g.Outputs = outputs
		}
		out.General = &g
	}

	if overlay.Decorations != nil && overlay.Decorations.Border != nil {
		b := RawBorder{}
		if out.Decorations != nil && out.Decorations.Border != nil {
			b = *out.Decorations.Border
		}
		ob := overlay.Decorations.Border
		if ob.Width != nil {
			b.Width = ob.Width
		}
		if ob.ActiveColor != nil {
			b.ActiveColor = ob.ActiveColor
		}
		if ob.InactiveColor != nil {
			b.InactiveColor = ob.InactiveColor
		}
		out.Decorations = &RawDecorations{Border: &b}
	}

	if overlay.Tiling != nil {
		t := RawTiling{}
		if out.Tiling != nil {
			t = *out.Tiling
		}
		if overlay.Tiling.Gaps != nil {
			gaps := RawGaps{}
			if t.Gaps != nil {
				gaps = *t.Gaps
			}
			if overlay.Tiling.Gaps.Inner != nil {
				gaps.Inner = overlay.Tiling.Gaps.Inner
			}
			if overlay.Tiling.Gaps.Outer != nil {
				gaps.Outer = overlay.Tiling.Gaps.Outer
			}
			t.Gaps = &gaps
		}
		if overlay.Tiling.Ratio != nil {
			t.Ratio = overlay.Tiling.Ratio
		}
		out.Tiling = &t
	}

	if overlay.Animations != nil {
		a := RawAnimations{}
		if out.Animations != nil {
			a = *out.Animations
		}
		if overlay.Animations.Enabled != nil {
			a.Enabled = overlay.Animations.Enabled
		}
		if overlay.Animations.DurationMS != nil {
			a.DurationMS = overlay.Animations.DurationMS
		}
		if overlay.Animations.Easing != nil {
			a.Easing = overlay.Animations.Easing
		}
		out.Animations = &a
	}

	if overlay.API != nil {
		api := RawAPI{}
		if out.API != nil {
			api = *out.API
		}
		if overlay.API.Enabled != nil {
			api.Enabled = overlay.API.Enabled
		}
		if overlay.API.Listen != nil {
			api.Listen = overlay.API.Listen
		}
		out.API = &api
	}

	if overlay.Checker != nil && overlay.Checker.IntervalSeconds != nil {
		out.Checker = &RawChecker{IntervalSeconds: overlay.Checker.IntervalSeconds}
	}

	if overlay.Hotkeys != nil {
		h := RawHotkeys{}
		if out.Hotkeys != nil {
			h = *out.Hotkeys
		}
		if overlay.Hotkeys.Enabled != nil {
			h.Enabled = overlay.Hotkeys.Enabled
		}
		if overlay.Hotkeys.Modifier != nil {
			h.Modifier = overlay.Hotkeys.Modifier
		}
		out.Hotkeys = &h
	}

	if overlay.Rules != nil {
		out.Rules = overlay.Rules
	}

	return out
}

func mergeRawOutput(base, overlay RawOutputOverride) RawOutputOverride {
	if overlay.Scale != nil {
		base.Scale = overlay.Scale
	}
	if overlay.Transform != nil {
		base.Transform = overlay.Transform
	}
	return base
}
