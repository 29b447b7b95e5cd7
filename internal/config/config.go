package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/1broseidon/strata/internal/anim"
	"github.com/1broseidon/strata/internal/geometry"
)

// Size is a width and height in pixels.
type Size struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// OutputOverride adjusts a probed output.
type OutputOverride struct {
	Scale     float64 `yaml:"scale,omitempty"`
	Transform string  `yaml:"transform,omitempty"` // normal, 90, 180, 270, flipped, flipped-90, ...
}

// General holds output-related settings.
type General struct {
	// FallbackOutput is the layout area used while no output is connected.
	FallbackOutput Size                      `yaml:"fallback_output"`
	Outputs        map[string]OutputOverride `yaml:"outputs,omitempty"`
}

// Border is the decoration drawn around every tiled window.
type Border struct {
	Width         int    `yaml:"width"`
	ActiveColor   string `yaml:"active_color"`
	InactiveColor string `yaml:"inactive_color"`
}

type Decorations struct {
	Border Border `yaml:"border"`
}

// Gaps are pixel spacings. Outer is applied once around the layout area,
// inner on every side of every tile.
type Gaps struct {
	Inner int `yaml:"inner"`
	Outer int `yaml:"outer"`
}

type Tiling struct {
	Gaps  Gaps    `yaml:"gaps"`
	Ratio float64 `yaml:"ratio"` // split ratio for new windows, in (0, 1)
}

type Animations struct {
	Enabled    bool   `yaml:"enabled"`
	DurationMS int    `yaml:"duration_ms"`
	Easing     string `yaml:"easing"`
}

// API configures the optional HTTP/websocket server.
type API struct {
	Enabled bool   `yaml:"enabled"`
	Listen  string `yaml:"listen"`
}

// Hotkeys configures the global X11 key bindings grabbed by the daemon.
type Hotkeys struct {
	Enabled  bool   `yaml:"enabled"`
	Modifier string `yaml:"modifier"` // Mod1 (Alt), Mod4 (Super), Control
}

// Checker configures the periodic consistency check run by the daemon.
type Checker struct {
	IntervalSeconds int `yaml:"interval_seconds"`
}

// Rule sends newly mapped windows whose app id matches AppID to Workspace.
type Rule struct {
	AppID     string `yaml:"app_id"`
	Workspace int    `yaml:"workspace"`
}

// Config is the effective configuration.
type Config struct {
	Workspaces  int         `yaml:"workspaces"`
	LogLevel    string      `yaml:"log_level"`
	General     General     `yaml:"general"`
	Decorations Decorations `yaml:"decorations"`
	Tiling      Tiling      `yaml:"tiling"`
	Animations  Animations  `yaml:"animations"`
	API         API         `yaml:"api"`
	Checker     Checker     `yaml:"checker"`
	Hotkeys     Hotkeys     `yaml:"hotkeys"`
	Rules       []Rule      `yaml:"rules,omitempty"`
}

const (
	DefaultWorkspaces = 9
	MaxWorkspaces     = 32
	DefaultListen     = "127.0.0.1:7219"
)

var modifierNames = []string{"Mod1", "Mod4", "Control"}

func DefaultConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "strata", "config.yaml"), nil
}

func DefaultConfig() *Config {
	return &Config{
		Workspaces: DefaultWorkspaces,
		LogLevel:   "info",
		General: General{
			FallbackOutput: Size{Width: 1920, Height: 1080},
			Outputs:        map[string]OutputOverride{},
		},
		Decorations: Decorations{
			Border: Border{
				Width:         2,
				ActiveColor:   "#5e81ac",
				InactiveColor: "#3b4252",
			},
		},
		Tiling: Tiling{
			Ratio: 0.5,
		},
		Animations: Animations{
			Enabled:    false,
			DurationMS: 200,
			Easing:     "linear",
		},
		API: API{
			Enabled: false,
			Listen:  DefaultListen,
		},
		Checker: Checker{
			IntervalSeconds: 10,
		},
		Hotkeys: Hotkeys{
			Enabled:  true,
			Modifier: "Mod4",
		},
	}
}

// AnimationDuration returns the transition length, zero when animations
// are disabled.
func (c *Config) AnimationDuration() time.Duration {
	if !c.Animations.Enabled {
		return 0
	}
	return time.Duration(c.Animations.DurationMS) * time.Millisecond
}

// CheckInterval returns the checker period.
func (c *Config) CheckInterval() time.Duration {
	return time.Duration(c.Checker.IntervalSeconds) * time.Second
}

// WorkspaceFor returns the workspace of the first rule matching appID.
func (c *Config) WorkspaceFor(appID string) (int, bool) {
	if appID == "" {
		return 0, false
	}
	for _, r := range c.Rules {
		if r.AppID == appID {
			return r.Workspace, true
		}
	}
	return 0, false
}

// OutputOverride returns the configured override for an output name.
func (c *Config) OutputOverride(name string) (OutputOverride, bool) {
	o, ok := c.General.Outputs[name]
	return o, ok
}

// Save writes the config to the default path.
func (c *Config) Save() error {
	path, err := DefaultConfigPath()
	if err != nil {
		return err
	}
	return c.SaveTo(path)
}

// SaveTo validates the config and writes it as YAML to path.
func (c *Config) SaveTo(path string) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	save := *c
	if len(save.General.Outputs) == 0 {
		save.General.Outputs = nil
	}

	data, err := yaml.Marshal(&save)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

func (c *Config) Validate() error {
	if c.Workspaces < 1 || c.Workspaces > MaxWorkspaces {
		return &ValidationError{Path: "workspaces", Err: fmt.Errorf("workspaces must be between 1 and %d", MaxWorkspaces)}
	}
	switch c.LogLevel {
	case "debug", "info", "warning", "warn", "error":
	default:
		return &ValidationError{Path: "log_level", Err: fmt.Errorf("log_level must be one of: debug, info, warning, error")}
	}

	if c.General.FallbackOutput.Width <= 0 || c.General.FallbackOutput.Height <= 0 {
		return &ValidationError{Path: "general.fallback_output", Err: fmt.Errorf("fallback_output width and height must be > 0")}
	}
	for name, o := range c.General.Outputs {
		if strings.TrimSpace(name) == "" {
			return &ValidationError{Path: "general.outputs", Err: fmt.Errorf("general.outputs contains an empty output name")}
		}
		if o.Scale < 0 {
			return &ValidationError{Path: "general.outputs." + name + ".scale", Err: fmt.Errorf("scale must be > 0")}
		}
		if _, err := geometry.ParseTransform(o.Transform); err != nil {
			return &ValidationError{Path: "general.outputs." + name + ".transform", Err: err}
		}
	}

	b := c.Decorations.Border
	if b.Width < 0 {
		return &ValidationError{Path: "decorations.border.width", Err: fmt.Errorf("width must be >= 0")}
	}
	if !validColor(b.ActiveColor) {
		return &ValidationError{Path: "decorations.border.active_color", Err: fmt.Errorf("color must look like #rrggbb, got %q", b.ActiveColor)}
	}
	if !validColor(b.InactiveColor) {
		return &ValidationError{Path: "decorations.border.inactive_color", Err: fmt.Errorf("color must look like #rrggbb, got %q", b.InactiveColor)}
	}

	if c.Tiling.Gaps.Inner < 0 {
		return &ValidationError{Path: "tiling.gaps.inner", Err: fmt.Errorf("inner gap must be >= 0")}
	}
	if c.Tiling.Gaps.Outer < 0 {
		return &ValidationError{Path: "tiling.gaps.outer", Err: fmt.Errorf("outer gap must be >= 0")}
	}
	if c.Tiling.Ratio <= 0 || c.Tiling.Ratio >= 1 {
		return &ValidationError{Path: "tiling.ratio", Err: fmt.Errorf("ratio must be strictly between 0 and 1")}
	}

	if c.Animations.DurationMS < 0 {
		return &ValidationError{Path: "animations.duration_ms", Err: fmt.Errorf("duration_ms must be >= 0")}
	}
	if !contains(anim.EasingNames(), c.Animations.Easing) {
		return &ValidationError{Path: "animations.easing", Err: fmt.Errorf("easing must be one of: %s", strings.Join(anim.EasingNames(), ", "))}
	}

	if c.API.Enabled && strings.TrimSpace(c.API.Listen) == "" {
		return &ValidationError{Path: "api.listen", Err: fmt.Errorf("listen address is required when the api is enabled")}
	}
	if c.Checker.IntervalSeconds <= 0 {
		return &ValidationError{Path: "checker.interval_seconds", Err: fmt.Errorf("interval_seconds must be > 0")}
	}
	if !contains(modifierNames, c.Hotkeys.Modifier) {
		return &ValidationError{Path: "hotkeys.modifier", Err: fmt.Errorf("modifier must be one of: %s", strings.Join(modifierNames, ", "))}
	}

	for i, r := range c.Rules {
		path := fmt.Sprintf("rules.%d", i)
		if strings.TrimSpace(r.AppID) == "" {
			return &ValidationError{Path: path + ".app_id", Err: fmt.Errorf("app_id is required")}
		}
		if r.Workspace < 0 || r.Workspace >= c.Workspaces {
			return &ValidationError{Path: path + ".workspace", Err: fmt.Errorf("workspace must be between 0 and %d", c.Workspaces-1)}
		}
	}

	if warnings := c.validationWarnings(); len(warnings) > 0 {
		for _, w := range warnings {
			fmt.Fprintln(os.Stderr, "warning:", w)
		}
	}
	return nil
}

func (c *Config) validationWarnings() []string {
	var out []string
	if c.Animations.Enabled && c.Animations.DurationMS == 0 {
		out = append(out, "animations.enabled is true but duration_ms is 0; transitions will be instant")
	}
	if c.Tiling.Gaps.Inner*2 >= c.General.FallbackOutput.Width/2 {
		out = append(out, fmt.Sprintf("tiling.gaps.inner=%d leaves no room for two side-by-side windows on the fallback output", c.Tiling.Gaps.Inner))
	}
	return out
}

func validColor(s string) bool {
	if len(s) != 7 || s[0] != '#' {
		return false
	}
	for _, r := range s[1:] {
		switch {
		case r >= '0' && r <= '9', r >= 'a' && r <= 'f', r >= 'A' && r <= 'F':
		default:
			return false
		}
	}
	return true
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
