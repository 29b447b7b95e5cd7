package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/1broseidon/strata/internal/engine"
)

var (
	activeWorkspaceStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("15")).
				Background(lipgloss.Color("62")).
				Padding(0, 1)

	occupiedWorkspaceStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("15")).
				Background(lipgloss.Color("238")).
				Padding(0, 1)

	emptyWorkspaceStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("244")).
				Background(lipgloss.Color("236")).
				Padding(0, 1)

	workspaceBarStyle = lipgloss.NewStyle().
				MarginBottom(1)

	workspaceGap = lipgloss.NewStyle().
			Background(lipgloss.Color("235")).
			SetString(" ")

	statusBarStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("235")).
			Foreground(lipgloss.Color("250")).
			Padding(0, 1)

	messageStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Padding(0, 1)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("203")).
			Padding(0, 1)

	helpBarStyle = lipgloss.NewStyle().
			Padding(0, 1)
)

// renderWorkspaceBar shows one cell per workspace: active, occupied or empty.
func renderWorkspaceBar(snap engine.Snapshot, width int) string {
	cells := make([]string, 0, len(snap.Workspaces))
	for _, ws := range snap.Workspaces {
		label := fmt.Sprintf("%d", ws.Index+1)
		if n := len(ws.Windows); n > 0 {
			label = fmt.Sprintf("%d:%d", ws.Index+1, n)
		}
		switch {
		case ws.Active:
			cells = append(cells, activeWorkspaceStyle.Render(label))
		case len(ws.Windows) > 0:
			cells = append(cells, occupiedWorkspaceStyle.Render(label))
		default:
			cells = append(cells, emptyWorkspaceStyle.Render(label))
		}
	}

	row := lipgloss.JoinHorizontal(lipgloss.Top, intersperse(cells, workspaceGap.Render())...)
	return workspaceBarStyle.Width(width).Render(row)
}

// intersperse inserts sep between each element of items.
func intersperse(items []string, sep string) []string {
	if len(items) <= 1 {
		return items
	}
	result := make([]string, 0, len(items)*2-1)
	for i, item := range items {
		if i > 0 {
			result = append(result, sep)
		}
		result = append(result, item)
	}
	return result
}

// renderStatusBar summarises the active workspace, focus and outputs.
func renderStatusBar(snap engine.Snapshot, width int) string {
	dot := lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Render("●")
	parts := []string{
		fmt.Sprintf("%s workspace %d/%d", dot, snap.Current+1, len(snap.Workspaces)),
		fmt.Sprintf("windows %d", snap.WindowCount()),
		"focus: " + snap.Focus,
	}
	for _, o := range snap.Outputs {
		parts = append(parts, fmt.Sprintf("%s %dx%d %s ×%g", o.Name, o.Geometry.Width, o.Geometry.Height, o.Transform, o.Scale))
	}
	return statusBarStyle.Width(width).Render(strings.Join(parts, "  "))
}

// renderMessage renders the last action result, if any.
func renderMessage(msg string, isErr bool, width int) string {
	if msg == "" {
		return ""
	}
	if isErr {
		return errorStyle.Width(width).Render(msg)
	}
	return messageStyle.Width(width).Render(msg)
}
