package tui

import (
	"github.com/charmbracelet/bubbles/key"
)

// workspaceKeys activate workspaces 1-9; moveKeys are the same keys with
// shift held on a US layout.
var (
	workspaceKeys = []string{"1", "2", "3", "4", "5", "6", "7", "8", "9"}
	moveKeys      = []string{"!", "@", "#", "$", "%", "^", "&", "*", "("}
)

type keyMap struct {
	New      key.Binding
	Close    key.Binding
	Left     key.Binding
	Right    key.Binding
	Up       key.Binding
	Down     key.Binding
	Activate key.Binding
	MoveTo   key.Binding
	Rotate   key.Binding
	Settings key.Binding
	Save     key.Binding
	Help     key.Binding
	Quit     key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		New: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "new window"),
		),
		Close: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "close focused"),
		),
		Left: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("←/h", "focus left"),
		),
		Right: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("→/l", "focus right"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "focus up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "focus down"),
		),
		Activate: key.NewBinding(
			key.WithKeys(workspaceKeys...),
			key.WithHelp("1-9", "workspace"),
		),
		MoveTo: key.NewBinding(
			key.WithKeys(moveKeys...),
			key.WithHelp("shift+1-9", "move to workspace"),
		),
		Rotate: key.NewBinding(
			key.WithKeys("o"),
			key.WithHelp("o", "rotate output"),
		),
		Settings: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "settings"),
		),
		Save: key.NewBinding(
			key.WithKeys("ctrl+s"),
			key.WithHelp("ctrl+s", "save config"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "more keys"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.New, k.Close, k.Activate, k.MoveTo, k.Settings, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.New, k.Close, k.Rotate},
		{k.Left, k.Right, k.Up, k.Down},
		{k.Activate, k.MoveTo},
		{k.Settings, k.Save, k.Help, k.Quit},
	}
}

// digitIndex returns the workspace index for s in keys.
func digitIndex(keys []string, s string) (int, bool) {
	for i, k := range keys {
		if k == s {
			return i, true
		}
	}
	return 0, false
}
