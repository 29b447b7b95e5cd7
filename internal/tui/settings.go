package tui

import (
	"fmt"
	"strconv"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"gopkg.in/yaml.v3"

	"github.com/1broseidon/strata/internal/anim"
	"github.com/1broseidon/strata/internal/config"
)

// settingsForm edits the tiling, border and animation settings of a copy
// of the running config.
type settingsForm struct {
	form *huh.Form

	// Form-bound values (strings for huh, converted on submit)
	fOuterGap    string
	fInnerGap    string
	fRatio       string
	fBorderWidth string
	fAnimate     bool
	fDuration    string
	fEasing      string
}

func newSettingsForm(cfg *config.Config, width int) *settingsForm {
	s := &settingsForm{
		fOuterGap:    strconv.Itoa(cfg.Tiling.Gaps.Outer),
		fInnerGap:    strconv.Itoa(cfg.Tiling.Gaps.Inner),
		fRatio:       strconv.FormatFloat(cfg.Tiling.Ratio, 'f', -1, 64),
		fBorderWidth: strconv.Itoa(cfg.Decorations.Border.Width),
		fAnimate:     cfg.Animations.Enabled,
		fDuration:    strconv.Itoa(cfg.Animations.DurationMS),
		fEasing:      cfg.Animations.Easing,
	}

	easingOpts := make([]huh.Option[string], 0, len(anim.EasingNames()))
	for _, name := range anim.EasingNames() {
		easingOpts = append(easingOpts, huh.NewOption(name, name))
	}

	w := width - 4
	if w < 40 {
		w = 40
	}

	s.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("outer_gap").
				Title("Outer Gap").
				Description("Pixels around the layout area").
				Validate(nonNegativeInt).
				Value(&s.fOuterGap),
			huh.NewInput().
				Key("inner_gap").
				Title("Inner Gap").
				Description("Pixels on every side of every tile").
				Validate(nonNegativeInt).
				Value(&s.fInnerGap),
			huh.NewInput().
				Key("ratio").
				Title("Split Ratio").
				Description("Share of a split kept by the first child, in (0, 1)").
				Validate(openUnitInterval).
				Value(&s.fRatio),
			huh.NewInput().
				Key("border_width").
				Title("Border Width").
				Validate(nonNegativeInt).
				Value(&s.fBorderWidth),
		),
		huh.NewGroup(
			huh.NewConfirm().
				Key("animations").
				Title("Animate Layout Changes").
				Value(&s.fAnimate),
			huh.NewInput().
				Key("duration_ms").
				Title("Duration (ms)").
				Validate(nonNegativeInt).
				Value(&s.fDuration),
			huh.NewSelect[string]().
				Key("easing").
				Title("Easing").
				Options(easingOpts...).
				Value(&s.fEasing),
		),
	).WithWidth(w).WithShowHelp(true).WithShowErrors(true)

	return s
}

func (s *settingsForm) Init() tea.Cmd {
	return s.form.Init()
}

// Update forwards msg to the form and reports whether it completed.
func (s *settingsForm) Update(msg tea.Msg) (tea.Cmd, bool) {
	form, cmd := s.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		s.form = f
	}
	return cmd, s.form.State == huh.StateCompleted
}

// apply returns a validated copy of base with the form values applied.
func (s *settingsForm) apply(base *config.Config) (*config.Config, error) {
	cfg, err := cloneConfig(base)
	if err != nil {
		return nil, err
	}

	if v, err := strconv.Atoi(s.fOuterGap); err == nil {
		cfg.Tiling.Gaps.Outer = v
	}
	if v, err := strconv.Atoi(s.fInnerGap); err == nil {
		cfg.Tiling.Gaps.Inner = v
	}
	if v, err := strconv.ParseFloat(s.fRatio, 64); err == nil {
		cfg.Tiling.Ratio = v
	}
	if v, err := strconv.Atoi(s.fBorderWidth); err == nil {
		cfg.Decorations.Border.Width = v
	}
	cfg.Animations.Enabled = s.fAnimate
	if v, err := strconv.Atoi(s.fDuration); err == nil {
		cfg.Animations.DurationMS = v
	}
	if s.fEasing != "" {
		cfg.Animations.Easing = s.fEasing
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (s *settingsForm) View(width, height int) string {
	header := lipgloss.NewStyle().
		Foreground(lipgloss.Color("62")).
		Bold(true).
		Render("Editing Settings") +
		lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Render("  (esc to cancel)")

	style := lipgloss.NewStyle().
		Width(width).
		Height(height).
		Padding(1, 2)

	return style.Render(header + "\n\n" + s.form.View())
}

func nonNegativeInt(v string) error {
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return fmt.Errorf("must be a whole number >= 0")
	}
	return nil
}

func openUnitInterval(v string) error {
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f <= 0 || f >= 1 {
		return fmt.Errorf("must be between 0 and 1 (exclusive)")
	}
	return nil
}

// cloneConfig creates a deep copy of a Config via YAML round-trip.
func cloneConfig(cfg *config.Config) (*config.Config, error) {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to copy config: %w", err)
	}
	var clone config.Config
	if err := yaml.Unmarshal(data, &clone); err != nil {
		return nil, fmt.Errorf("failed to copy config: %w", err)
	}
	if clone.General.Outputs == nil {
		clone.General.Outputs = map[string]config.OutputOverride{}
	}
	return &clone, nil
}
