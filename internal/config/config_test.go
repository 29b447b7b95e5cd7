package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/1broseidon/strata/internal/anim"
)

func writeFile(t *testing.T, path, data string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected defaults to validate, got %v", err)
	}
	if cfg.Workspaces != DefaultWorkspaces || cfg.Tiling.Ratio != 0.5 {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.AnimationDuration() != 0 {
		t.Fatalf("expected animations to be off by default")
	}
	if cfg.CheckInterval() != 10*time.Second {
		t.Fatalf("expected 10s check interval, got %v", cfg.CheckInterval())
	}
}

func TestLoadFromPath_MissingFileUsesDefaults(t *testing.T) {
	res, err := LoadFromPath(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Config.General.FallbackOutput != (Size{Width: 1920, Height: 1080}) {
		t.Fatalf("unexpected fallback %+v", res.Config.General.FallbackOutput)
	}
	if len(res.Files) != 0 {
		t.Fatalf("expected no files, got %v", res.Files)
	}
}

func TestLoadFromPath_EmptyFileUsesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, "# empty\n")

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Config.Workspaces != DefaultWorkspaces {
		t.Fatalf("expected %d workspaces, got %d", DefaultWorkspaces, res.Config.Workspaces)
	}
}

func TestLoadFromPath_NestedSections(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, strings.Join([]string{
		"workspaces: 4",
		"tiling:",
		"  gaps:",
		"    inner: 4",
		"  ratio: 0.6",
		"animations:",
		"  enabled: true",
		"  duration_ms: 150",
		"  easing: out_cubic",
		"general:",
		"  outputs:",
		"    DP-1:",
		"      scale: 1.5",
		"",
	}, "\n"))

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	cfg := res.Config
	if cfg.Workspaces != 4 || cfg.Tiling.Gaps.Inner != 4 || cfg.Tiling.Gaps.Outer != 0 || cfg.Tiling.Ratio != 0.6 {
		t.Fatalf("unexpected tiling config %+v / %d workspaces", cfg.Tiling, cfg.Workspaces)
	}
	if cfg.AnimationDuration() != 150*time.Millisecond || cfg.Animations.Easing != "out_cubic" {
		t.Fatalf("unexpected animations %+v", cfg.Animations)
	}
	o, ok := cfg.OutputOverride("DP-1")
	if !ok || o.Scale != 1.5 || o.Transform != "normal" {
		t.Fatalf("unexpected output override %+v %v", o, ok)
	}
}

func TestLoadFromPath_StrictUnknownKeyErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, "tiling:\n  unknown_key: 1\n")

	_, err := LoadFromPath(path)
	if err == nil {
		t.Fatalf("expected error")
	}
	if !strings.Contains(err.Error(), "unknown_key") {
		t.Fatalf("expected unknown field error, got %v", err)
	}
	if !strings.Contains(err.Error(), path) {
		t.Fatalf("expected error to include file path, got %v", err)
	}
}

func TestLoadFromPath_ValidationErrorHasSourceContext(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, "log_level: info\ntiling:\n  ratio: 1.5\n")

	_, err := LoadFromPath(path)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if verr.Path != "tiling.ratio" {
		t.Fatalf("expected tiling.ratio, got %q", verr.Path)
	}
	if !strings.HasPrefix(err.Error(), path+":3:") {
		t.Fatalf("expected file:line prefix, got %v", err)
	}
}

func TestLoadFromPath_ValidationErrorOnFlowMapping(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, "workspaces: 2\ngeneral:\n  fallback_output: {width: 0}\n")

	_, err := LoadFromPath(path)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if verr.Source.Line != 3 {
		t.Fatalf("expected source line 3, got %+v", verr.Source)
	}
}

func TestLoadFromPath_IncludeDirectoryOrderAndMainOverrides(t *testing.T) {
	dir := t.TempDir()

	// config.d loaded first, in sorted order.
	writeFile(t, filepath.Join(dir, "config.d", "10-base.yaml"), "tiling:\n  gaps:\n    inner: 5\n    outer: 3\n")
	writeFile(t, filepath.Join(dir, "config.d", "20-override.yaml"), "tiling:\n  gaps:\n    inner: 6\n")

	path := filepath.Join(dir, "config.yaml")
	writeFile(t, path, strings.Join([]string{
		"include:",
		"  - config.d",
		"tiling:",
		"  gaps:",
		"    inner: 7",
		"",
	}, "\n"))

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Config.Tiling.Gaps.Inner != 7 {
		t.Fatalf("expected inner gap 7, got %d", res.Config.Tiling.Gaps.Inner)
	}
	if res.Config.Tiling.Gaps.Outer != 3 {
		t.Fatalf("expected outer gap 3 from include, got %d", res.Config.Tiling.Gaps.Outer)
	}
	if len(res.Files) != 3 || !strings.HasSuffix(res.Files[2], "config.yaml") {
		t.Fatalf("expected includes before main file, got %v", res.Files)
	}
}

func TestLoadFromPath_IncludeMissingPathHasContext(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, "include:\n  - missing.yaml\n")

	_, err := LoadFromPath(path)
	if err == nil {
		t.Fatalf("expected error")
	}
	if !strings.Contains(err.Error(), "include") || !strings.Contains(err.Error(), "missing.yaml") {
		t.Fatalf("expected include error, got %v", err)
	}
	if !strings.Contains(err.Error(), ":2:") {
		t.Fatalf("expected error to include line context, got %v", err)
	}
}

func TestLoadFromPath_IncludeCycleDetection(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.yaml")
	writeFile(t, a, "include: b.yaml\n")
	writeFile(t, filepath.Join(dir, "b.yaml"), "include: a.yaml\n")

	_, err := LoadFromPath(a)
	if err == nil {
		t.Fatalf("expected cycle error")
	}
	if !strings.Contains(err.Error(), "include cycle") {
		t.Fatalf("expected cycle error, got %v", err)
	}
}

func TestLoadFromPath_TOML(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "extra.toml"), strings.Join([]string{
		"workspaces = 3",
		"",
		"[decorations.border]",
		"width = 4",
		"active_color = \"#ff0000\"",
		"",
		"[general.outputs.HDMI-A-1]",
		"transform = \"90\"",
		"",
	}, "\n"))
	path := filepath.Join(dir, "config.yaml")
	writeFile(t, path, "include: extra.toml\nlog_level: debug\n")

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	cfg := res.Config
	if cfg.Workspaces != 3 || cfg.LogLevel != "debug" {
		t.Fatalf("unexpected config %+v", cfg)
	}
	if cfg.Decorations.Border.Width != 4 || cfg.Decorations.Border.ActiveColor != "#ff0000" {
		t.Fatalf("unexpected border %+v", cfg.Decorations.Border)
	}
	if cfg.Decorations.Border.InactiveColor != DefaultConfig().Decorations.Border.InactiveColor {
		t.Fatalf("expected inactive colour to keep its default")
	}
	if o, _ := cfg.OutputOverride("HDMI-A-1"); o.Transform != "90" || o.Scale != 1 {
		t.Fatalf("unexpected output override %+v", o)
	}

	_, src, err := Explain(res, "workspaces")
	if err != nil {
		t.Fatalf("explain: %v", err)
	}
	if src.Kind != SourceFile || !strings.HasSuffix(src.File, "extra.toml") {
		t.Fatalf("expected workspaces to come from extra.toml, got %+v", src)
	}
}

func TestLoadFromPath_TOMLRejectsUnknownKeysAndIncludes(t *testing.T) {
	for name, data := range map[string]string{
		"unknown": "[tiling]\nsplit = 0.3\n",
		"include": "include = \"other.toml\"\n",
	} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.toml")
			writeFile(t, path, data)
			_, err := LoadFromPath(path)
			if err == nil || !strings.Contains(err.Error(), "unknown keys") {
				t.Fatalf("expected unknown keys error, got %v", err)
			}
		})
	}
}

func TestExplain(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, "tiling:\n  gaps:\n    outer: 12\n")

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	val, src, err := Explain(res, "tiling.gaps.outer")
	if err != nil {
		t.Fatalf("explain: %v", err)
	}
	if val != 12 {
		t.Fatalf("expected 12, got %v (%T)", val, val)
	}
	if src.Kind != SourceFile || src.Line != 3 {
		t.Fatalf("expected file source at line 3, got %+v", src)
	}

	val, src, err = Explain(res, "decorations.border.width")
	if err != nil {
		t.Fatalf("explain: %v", err)
	}
	if val != 2 || src.Kind != SourceDefault {
		t.Fatalf("expected default 2, got %v from %+v", val, src)
	}

	if _, _, err := Explain(res, "tiling.nope"); err == nil {
		t.Fatalf("expected unknown path error")
	}
	if _, _, err := Explain(res, "workspaces.extra"); err == nil {
		t.Fatalf("expected error when descending into a scalar")
	}
}

func TestValidate_Table(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		path   string
	}{
		{"zero workspaces", func(c *Config) { c.Workspaces = 0 }, "workspaces"},
		{"too many workspaces", func(c *Config) { c.Workspaces = 33 }, "workspaces"},
		{"bad level", func(c *Config) { c.LogLevel = "loud" }, "log_level"},
		{"bad colour", func(c *Config) { c.Decorations.Border.ActiveColor = "red" }, "decorations.border.active_color"},
		{"negative gap", func(c *Config) { c.Tiling.Gaps.Outer = -1 }, "tiling.gaps.outer"},
		{"ratio zero", func(c *Config) { c.Tiling.Ratio = 0 }, "tiling.ratio"},
		{"bad easing", func(c *Config) { c.Animations.Easing = "bounce" }, "animations.easing"},
		{"bad transform", func(c *Config) {
			c.General.Outputs["DP-1"] = OutputOverride{Scale: 1, Transform: "sideways"}
		}, "general.outputs.DP-1.transform"},
		{"api without listen", func(c *Config) { c.API.Enabled = true; c.API.Listen = "" }, "api.listen"},
		{"zero interval", func(c *Config) { c.Checker.IntervalSeconds = 0 }, "checker.interval_seconds"},
		{"bad modifier", func(c *Config) { c.Hotkeys.Modifier = "Hyper" }, "hotkeys.modifier"},
		{"rule without app id", func(c *Config) { c.Rules = []Rule{{AppID: " ", Workspace: 1}} }, "rules.0.app_id"},
		{"rule past last workspace", func(c *Config) {
			c.Rules = []Rule{{AppID: "term", Workspace: 0}, {AppID: "mail", Workspace: DefaultWorkspaces}}
		}, "rules.1.workspace"},
		{"rule negative workspace", func(c *Config) { c.Rules = []Rule{{AppID: "term", Workspace: -1}} }, "rules.0.workspace"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if verr.Path != tt.path {
				t.Fatalf("expected path %q, got %q", tt.path, verr.Path)
			}
		})
	}
}

func TestValidate_AcceptsEveryEasing(t *testing.T) {
	for _, name := range anim.EasingNames() {
		cfg := DefaultConfig()
		cfg.Animations.Easing = name
		if err := cfg.Validate(); err != nil {
			t.Errorf("easing %q rejected: %v", name, err)
		}
	}
}

func TestLoadFromPath_Rules(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "base.yaml"), strings.Join([]string{
		"rules:",
		"  - app_id: browser",
		"    workspace: 8",
		"",
	}, "\n"))
	path := filepath.Join(dir, "config.yaml")
	writeFile(t, path, strings.Join([]string{
		"include: base.yaml",
		"workspaces: 4",
		"rules:",
		"  - app_id: term",
		"    workspace: 1",
		"  - app_id: mail",
		"    workspace: 3",
		"",
	}, "\n"))

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	cfg := res.Config
	if len(cfg.Rules) != 2 {
		t.Fatalf("expected the main file to replace included rules, got %+v", cfg.Rules)
	}
	if ws, ok := cfg.WorkspaceFor("mail"); !ok || ws != 3 {
		t.Fatalf("WorkspaceFor(mail) = %d, %v", ws, ok)
	}
	if _, ok := cfg.WorkspaceFor("browser"); ok {
		t.Fatalf("rule from the included file should be replaced")
	}
	if _, ok := cfg.WorkspaceFor(""); ok {
		t.Fatalf("empty app id must not match")
	}

	val, src, err := Explain(res, "rules.1.workspace")
	if err != nil {
		t.Fatalf("explain: %v", err)
	}
	if val != 3 || src.Kind != SourceFile || src.Line != 7 {
		t.Fatalf("expected 3 from line 7, got %v from %+v", val, src)
	}
	if _, _, err := Explain(res, "rules.2"); err == nil {
		t.Fatalf("expected out of range rule index to fail")
	}
}

func TestLoadFromPath_RuleValidationHasSourceContext(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, strings.Join([]string{
		"workspaces: 2",
		"rules:",
		"  - app_id: term",
		"    workspace: 5",
		"",
	}, "\n"))

	_, err := LoadFromPath(path)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if verr.Path != "rules.0.workspace" || verr.Source.Line != 4 {
		t.Fatalf("unexpected error %+v", verr)
	}

	writeFile(t, path, "rules:\n  - app_id: term\n")
	if _, err := LoadFromPath(path); !errors.As(err, &verr) || verr.Path != "rules.0.workspace" {
		t.Fatalf("expected a rule without workspace to fail, got %v", err)
	}
}

func TestLoadFromPath_TOMLRules(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	writeFile(t, path, strings.Join([]string{
		"workspaces = 3",
		"",
		"[[rules]]",
		"app_id = \"term\"",
		"workspace = 2",
		"",
	}, "\n"))

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if ws, ok := res.Config.WorkspaceFor("term"); !ok || ws != 2 {
		t.Fatalf("WorkspaceFor(term) = %d, %v", ws, ok)
	}
}

func TestSaveTo_RoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := DefaultConfig()
	cfg.Workspaces = 5
	cfg.Tiling.Gaps.Inner = 3
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("save: %v", err)
	}

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Config.Workspaces != 5 || res.Config.Tiling.Gaps.Inner != 3 {
		t.Fatalf("unexpected reloaded config %+v", res.Config)
	}
}

func TestDefaultConfigPath_UsesHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	path, err := DefaultConfigPath()
	if err != nil {
		t.Fatalf("path: %v", err)
	}
	if path != filepath.Join(home, ".config", "strata", "config.yaml") {
		t.Fatalf("unexpected path %q", path)
	}
}
