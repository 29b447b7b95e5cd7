package config

import (
	"fmt"
)

type ValidationError struct {
	Path   string
	Source Source
	Err    error
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Source.Kind == SourceFile && e.Source.File != "" && e.Source.Line > 0 {
		return fmt.Sprintf("%s:%d:%d: %s: %v", e.Source.File, e.Source.Line, e.Source.Column, e.Path, e.Err)
	}
	if e.Source.Kind == SourceFile && e.Source.File != "" {
		return fmt.Sprintf("%s: %s: %v", e.Source.File, e.Path, e.Err)
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %v", e.Path, e.Err)
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// BuildEffectiveConfig applies raw on top of the defaults.
func BuildEffectiveConfig(raw RawConfig) (*Config, error) {
	cfg := DefaultConfig()

	if raw.Workspaces != nil {
		cfg.Workspaces = *raw.Workspaces
	}
	if raw.LogLevel != nil {
		cfg.LogLevel = *raw.LogLevel
	}

	if g := raw.General; g != nil {
		if g.FallbackOutput != nil {
			cfg.General.FallbackOutput.Width = derefInt(g.FallbackOutput.Width, cfg.General.FallbackOutput.Width)
			cfg.General.FallbackOutput.Height = derefInt(g.FallbackOutput.Height, cfg.General.FallbackOutput.Height)
		}
		for name, o := range g.Outputs {
			override := OutputOverride{Scale: 1, Transform: "normal"}
			if o.Scale != nil {
				override.Scale = *o.Scale
			}
			if o.Transform != nil {
				override.Transform = *o.Transform
			}
			cfg.General.Outputs[name] = override
		}
	}

	if raw.Decorations != nil && raw.Decorations.Border != nil {
		b := raw.Decorations.Border
		cfg.Decorations.Border.Width = derefInt(b.Width, cfg.Decorations.Border.Width)
		cfg.Decorations.Border.ActiveColor = derefString(b.ActiveColor, cfg.Decorations.Border.ActiveColor)
		cfg.Decorations.Border.InactiveColor = derefString(b.InactiveColor, cfg.Decorations.Border.InactiveColor)
	}

	if t := raw.Tiling; t != nil {
		if t.Gaps != nil {
			cfg.Tiling.Gaps.Inner = derefInt(t.Gaps.Inner, cfg.Tiling.Gaps.Inner)
			cfg.Tiling.Gaps.Outer = derefInt(t.Gaps.Outer, cfg.Tiling.Gaps.Outer)
		}
		if t.Ratio != nil {
			cfg.Tiling.Ratio = *t.Ratio
		}
	}

	if a := raw.Animations; a != nil {
		cfg.Animations.Enabled = derefBool(a.Enabled, cfg.Animations.Enabled)
		cfg.Animations.DurationMS = derefInt(a.DurationMS, cfg.Animations.DurationMS)
		cfg.Animations.Easing = derefString(a.Easing, cfg.Animations.Easing)
	}

	if api := raw.API; api != nil {
		cfg.API.Enabled = derefBool(api.Enabled, cfg.API.Enabled)
		cfg.API.Listen = derefString(api.Listen, cfg.API.Listen)
	}

	if raw.Checker != nil {
		cfg.Checker.IntervalSeconds = derefInt(raw.Checker.IntervalSeconds, cfg.Checker.IntervalSeconds)
	}

	if h := raw.Hotkeys; h != nil {
		cfg.Hotkeys.Enabled = derefBool(h.Enabled, cfg.Hotkeys.Enabled)
		cfg.Hotkeys.Modifier = derefString(h.Modifier, cfg.Hotkeys.Modifier)
	}

	if raw.Rules != nil {
		cfg.Rules = make([]Rule, 0, len(raw.Rules))
		for _, r := range raw.Rules {
			cfg.Rules = append(cfg.Rules, Rule{
				AppID:     derefString(r.AppID, ""),
				Workspace: derefInt(r.Workspace, -1),
			})
		}
	}

	return cfg, nil
}

func derefInt(v *int, def int) int {
	if v == nil {
		return def
	}
	return *v
}

func derefString(v *string, def string) string {
	if v == nil {
		return def
	}
	return *v
}

func derefBool(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}
