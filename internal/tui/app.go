package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/1broseidon/strata/internal/config"
	"github.com/1broseidon/strata/internal/engine"
	"github.com/1broseidon/strata/internal/focus"
	"github.com/1broseidon/strata/internal/geometry"
	"github.com/1broseidon/strata/internal/headless"
	"github.com/1broseidon/strata/internal/window"
	"github.com/1broseidon/strata/internal/workspace"
)

const (
	simOutputName = "SIM-1"
	frameInterval = 16 * time.Millisecond
)

var surfaceColors = []string{"#bf616a", "#d08770", "#ebcb8b", "#a3be8c", "#b48ead", "#88c0d0"}

type tickMsg time.Time

// model is the root bubbletea model for the simulator.
type model struct {
	eng        *engine.Engine
	output     *headless.Output
	configPath string

	keys keyMap
	help help.Model

	settings *settingsForm

	mapped    int
	message   string
	isErr     bool
	animating bool

	// Terminal dimensions
	width  int
	height int
}

func newModel(cfg *config.Config, configPath string) (model, error) {
	eng, err := engine.New(cfg, nil)
	if err != nil {
		return model{}, err
	}
	fb := cfg.General.FallbackOutput
	out := headless.NewOutput(simOutputName, fb.Width, fb.Height)
	eng.AddOutput(out)

	return model{
		eng:        eng,
		output:     out,
		configPath: configPath,
		keys:       defaultKeyMap(),
		help:       help.New(),
	}, nil
}

// Init implements tea.Model.
func (m model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// The settings form captures all input while open
	if m.settings != nil {
		switch msg := msg.(type) {
		case tea.KeyMsg:
			switch msg.String() {
			case "ctrl+c":
				return m, tea.Quit
			case "esc":
				m.settings = nil
				return m, nil
			}
		case tea.WindowSizeMsg:
			m.width = msg.Width
			m.height = msg.Height
		}
		cmd, done := m.settings.Update(msg)
		if done {
			m.applySettings()
			m.settings = nil
			return m, m.animate()
		}
		return m, cmd
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case tickMsg:
		m.animating = m.eng.Tick(frameInterval)
		if m.animating {
			return m, tick()
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.message, m.isErr = "", false

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll

	case key.Matches(msg, m.keys.New):
		m.mapped++
		s := headless.NewSurface(fmt.Sprintf("window %d", m.mapped))
		s.SetColor(surfaceColors[(m.mapped-1)%len(surfaceColors)])
		id, err := m.eng.Map(s)
		m.report(err, "mapped %s", id)

	case key.Matches(msg, m.keys.Close):
		id, ok := m.eng.FocusedWindow()
		if !ok {
			m.fail("no focused window")
			break
		}
		m.report(m.eng.Unmap(id), "closed %s", id)

	case key.Matches(msg, m.keys.Left):
		m.focus(focus.Left)
	case key.Matches(msg, m.keys.Right):
		m.focus(focus.Right)
	case key.Matches(msg, m.keys.Up):
		m.focus(focus.Up)
	case key.Matches(msg, m.keys.Down):
		m.focus(focus.Down)

	case key.Matches(msg, m.keys.Activate):
		i, _ := digitIndex(workspaceKeys, msg.String())
		m.report(m.eng.Activate(i), "workspace %d", i+1)

	case key.Matches(msg, m.keys.MoveTo):
		i, _ := digitIndex(moveKeys, msg.String())
		id, ok := m.eng.FocusedWindow()
		if !ok {
			m.fail("no focused window")
			break
		}
		m.report(m.eng.MoveWindow(id, i), "moved %s to workspace %d", id, i+1)

	case key.Matches(msg, m.keys.Rotate):
		m.output.SetTransform((m.output.CurrentTransform() + 1) % (geometry.TransformFlipped270 + 1))
		m.eng.ReconfigureOutputs()
		m.message = "output transform " + m.output.CurrentTransform().String()

	case key.Matches(msg, m.keys.Settings):
		m.settings = newSettingsForm(m.eng.Config(), m.width)
		return m, m.settings.Init()

	case key.Matches(msg, m.keys.Save):
		m.save()
	}

	return m, m.animate()
}

func (m *model) focus(dir focus.Direction) {
	if _, ok := m.eng.FocusDirection(dir); !ok {
		m.fail("no window " + dir.String())
	}
}

func (m *model) report(err error, format string, args ...any) {
	if err != nil {
		m.fail(err.Error())
		return
	}
	m.message = fmt.Sprintf(format, args...)
}

func (m *model) fail(msg string) {
	m.message, m.isErr = msg, true
}

func (m *model) applySettings() {
	cfg, err := m.settings.apply(m.eng.Config())
	if err != nil {
		m.fail(err.Error())
		return
	}
	m.report(m.eng.UpdateConfig(cfg), "settings applied")
}

func (m *model) save() {
	path := m.configPath
	if path == "" {
		p, err := config.DefaultConfigPath()
		if err != nil {
			m.fail(err.Error())
			return
		}
		path = p
	}
	m.report(m.eng.Config().SaveTo(path), "saved %s", path)
}

// animate starts the frame ticker when a transition is pending.
func (m *model) animate() tea.Cmd {
	if m.animating || !m.eng.Animating() {
		return nil
	}
	m.animating = true
	return tick()
}

func tick() tea.Cmd {
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// tiles returns the active workspace's windows, using in-flight transition
// rectangles from the render pass when borders are drawn.
func (m model) tiles(ws engine.WorkspaceInfo, focused window.ID) []tile {
	live := map[window.ID]geometry.Rect{}
	for _, el := range m.eng.Render(nil) {
		if d, ok := el.(workspace.Decoration); ok {
			live[d.Window] = d.Rect.Inset(d.Width)
		}
	}

	tiles := make([]tile, 0, len(ws.Windows))
	for _, w := range ws.Windows {
		rect := w.Rect
		if r, ok := live[w.ID]; ok {
			rect = r
		}
		tiles = append(tiles, tile{ID: w.ID, Rect: rect, Focused: w.ID == focused})
	}
	return tiles
}

// View implements tea.Model.
func (m model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	snap := m.eng.Snapshot()
	workspaceBar := renderWorkspaceBar(snap, m.width)
	statusBar := renderStatusBar(snap, m.width)
	message := renderMessage(m.message, m.isErr, m.width)
	helpBar := helpBarStyle.Render(m.help.View(m.keys))

	usedHeight := lipgloss.Height(workspaceBar) + lipgloss.Height(statusBar) + lipgloss.Height(helpBar)
	if message != "" {
		usedHeight += lipgloss.Height(message)
	}
	contentHeight := m.height - usedHeight
	if contentHeight < 1 {
		contentHeight = 1
	}

	var content string
	if m.settings != nil {
		content = m.settings.View(m.width, contentHeight)
	} else {
		ws, _ := snap.Workspace(snap.Current)
		lines := renderASCIIPreview(ws.Area, m.tiles(ws, snap.Focused), m.width, contentHeight)
		content = lipgloss.JoinVertical(lipgloss.Left, lines...)
	}

	parts := []string{statusBar, workspaceBar, content}
	if message != "" {
		parts = append(parts, message)
	}
	parts = append(parts, helpBar)
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}
