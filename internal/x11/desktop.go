package x11

import (
	"fmt"

	"github.com/BurntSushi/xgbutil/ewmh"
)

// PublishDesktops advertises the workspaces on the root window as EWMH
// desktops so pagers and status bars can follow them.
func (c *Connection) PublishDesktops(count, current int) error {
	if err := ewmh.NumberOfDesktopsSet(c.XUtil, uint(count)); err != nil {
		return fmt.Errorf("failed to set desktop count: %w", err)
	}
	if err := ewmh.DesktopNamesSet(c.XUtil, DesktopNames(count)); err != nil {
		return fmt.Errorf("failed to set desktop names: %w", err)
	}
	return c.SetCurrentDesktop(current)
}

// SetCurrentDesktop updates _NET_CURRENT_DESKTOP.
func (c *Connection) SetCurrentDesktop(current int) error {
	if err := ewmh.CurrentDesktopSet(c.XUtil, uint(current)); err != nil {
		return fmt.Errorf("failed to set current desktop: %w", err)
	}
	return nil
}

// GetCurrentDesktop returns the current virtual desktop number (0-indexed).
func (c *Connection) GetCurrentDesktop() (int, error) {
	desktop, err := ewmh.CurrentDesktopGet(c.XUtil)
	if err != nil {
		return 0, fmt.Errorf("failed to get current desktop: %w", err)
	}
	return int(desktop), nil
}

// DesktopNames returns the names advertised for count workspaces: "1", "2", ...
func DesktopNames(count int) []string {
	names := make([]string, count)
	for i := range names {
		names[i] = fmt.Sprintf("%d", i+1)
	}
	return names
}
