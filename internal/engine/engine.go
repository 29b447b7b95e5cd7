// Package engine owns the workspaces, the focused target and window
// transitions, and serialises every mutation behind one lock so the control
// socket, HTTP API and simulator can drive the same state.
package engine

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/1broseidon/strata/internal/anim"
	"github.com/1broseidon/strata/internal/config"
	"github.com/1broseidon/strata/internal/focus"
	"github.com/1broseidon/strata/internal/geometry"
	"github.com/1broseidon/strata/internal/logging"
	"github.com/1broseidon/strata/internal/window"
	"github.com/1broseidon/strata/internal/workspace"
)

var (
	ErrUnknownOutput = errors.New("unknown output")
	ErrNoSibling     = errors.New("window has no sibling to resize against")
)

// Engine manages the workspace set.
type Engine struct {
	mu       sync.Mutex
	config   *config.Config
	spaces   *workspace.Workspaces
	focused  workspace.FocusTarget
	animator *anim.Animator
	logger   *slog.Logger

	subMu   sync.Mutex
	subs    map[int]chan Event
	nextSub int
}

// New creates an engine with cfg.Workspaces empty workspaces. A nil logger
// discards output.
func New(cfg *config.Config, logger *slog.Logger) (*Engine, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if logger == nil {
		logger = logging.Discard()
	}
	spaces, err := workspace.NewWorkspaces(cfg.Workspaces, nil, SettingsFromConfig(cfg))
	if err != nil {
		return nil, err
	}
	animator, err := newAnimator(cfg)
	if err != nil {
		return nil, err
	}
	return &Engine{
		config:   cfg,
		spaces:   spaces,
		animator: animator,
		logger:   logger,
		subs:     make(map[int]chan Event),
	}, nil
}

// SettingsFromConfig maps the tiling section of cfg onto workspace settings.
func SettingsFromConfig(cfg *config.Config) workspace.Settings {
	return workspace.Settings{
		InnerGap: cfg.Tiling.Gaps.Inner,
		OuterGap: cfg.Tiling.Gaps.Outer,
		Ratio:    cfg.Tiling.Ratio,
		Fallback: geometry.Rect{
			Width:  cfg.General.FallbackOutput.Width,
			Height: cfg.General.FallbackOutput.Height,
		},
	}
}

func newAnimator(cfg *config.Config) (*anim.Animator, error) {
	fn, err := anim.ParseEasing(cfg.Animations.Easing)
	if err != nil {
		return nil, err
	}
	return anim.New(cfg.AnimationDuration(), fn), nil
}

// Config returns the active configuration.
func (e *Engine) Config() *config.Config {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.config
}

// Map places surface on the workspace named by the first rule matching its
// app id, or on the active workspace, and focuses it if it landed on the
// active workspace. Mapping a surface that is already managed returns its
// existing window.
func (e *Engine) Map(s window.Surface) (window.ID, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.mapLocked(s, e.ruleWorkspaceLocked(s))
}

// MapTo is Map with an explicit target workspace, bypassing rules.
func (e *Engine) MapTo(s window.Surface, target int) (window.ID, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, err := e.spaces.Get(target); err != nil {
		return 0, err
	}
	return e.mapLocked(s, target)
}

func (e *Engine) mapLocked(s window.Surface, target int) (window.ID, error) {
	if win, ok := e.spaces.Arena().Lookup(s); ok {
		return win.ID, nil
	}

	current := e.spaces.CurrentIndex()
	if target < 0 {
		target = current
	}
	prev := e.captureLocked()
	win, err := e.spaces.Map(s)
	if err != nil {
		return 0, err
	}
	if target != current {
		if err := e.spaces.MoveWindowToWorkspace(win.ID, target); err != nil {
			e.spaces.Unmap(win.ID)
			e.settleLocked(prev)
			return 0, err
		}
	}
	e.settleLocked(prev)
	if target == current {
		e.setFocusLocked(workspace.WindowTarget{Window: win.ID})
	}

	e.logger.Debug("window mapped", "window", win.ID, "workspace", target, "rect", win.Rect.String())
	e.publish(Event{Type: EventMapped, Window: win.ID, Workspace: target})
	return win.ID, nil
}

// ruleWorkspaceLocked returns the workspace a rule assigns to s, or -1.
func (e *Engine) ruleWorkspaceLocked(s window.Surface) int {
	app, ok := s.(window.Identified)
	if !ok {
		return -1
	}
	target, ok := e.config.WorkspaceFor(app.AppID())
	if !ok {
		return -1
	}
	if _, err := e.spaces.Get(target); err != nil {
		e.logger.Warn("window rule names a missing workspace", "app_id", app.AppID(), "workspace", target)
		return -1
	}
	return target
}

// Unmap removes and destroys a window. Focus falls back to the topmost
// window of the active workspace.
func (e *Engine) Unmap(id window.ID) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	_, idx, onWorkspace := e.spaces.WorkspaceFromWindow(id)
	prev := e.captureLocked()
	if _, ok := e.spaces.Unmap(id); !ok {
		return fmt.Errorf("%w: %s", workspace.ErrUnknownWindow, id)
	}
	e.animator.Drop(id)
	e.settleLocked(prev)
	if e.focusedWindowLocked() == id {
		e.refocusLocked()
	}

	ev := Event{Type: EventUnmapped, Window: id, Workspace: -1}
	if onWorkspace {
		ev.Workspace = idx
	}
	e.logger.Debug("window unmapped", "window", id)
	e.publish(ev)
	return nil
}

// MoveWindow moves a window to workspace target.
func (e *Engine) MoveWindow(id window.ID, target int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, ok := e.spaces.Arena().Get(id); !ok {
		return fmt.Errorf("%w: %s", workspace.ErrUnknownWindow, id)
	}
	prev := e.captureLocked()
	if err := e.spaces.MoveWindowToWorkspace(id, target); err != nil {
		return err
	}
	if target != e.spaces.CurrentIndex() {
		e.animator.Drop(id)
	}
	e.settleLocked(prev)
	if e.focusedWindowLocked() == id && !e.spaces.Current().ContainsWindow(id) {
		e.refocusLocked()
	}

	e.logger.Debug("window moved", "window", id, "workspace", target)
	e.publish(Event{Type: EventMoved, Window: id, Workspace: target})
	return nil
}

// Activate switches the active workspace and focuses its topmost window.
func (e *Engine) Activate(i int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.spaces.Activate(i); err != nil {
		return err
	}
	e.animator.Reset()
	e.refocusLocked()

	e.logger.Debug("workspace activated", "workspace", i)
	e.publish(Event{Type: EventActivated, Workspace: i})
	return nil
}

// Resize sets the ratio of the split that owns id.
func (e *Engine) Resize(id window.ID, ratio float64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	w, idx, ok := e.spaces.WorkspaceFromWindow(id)
	if !ok {
		return fmt.Errorf("%w: %s", workspace.ErrUnknownWindow, id)
	}
	prev := e.captureLocked()
	if !w.Resize(id, ratio) {
		return ErrNoSibling
	}
	e.settleLocked(prev)

	e.publish(Event{Type: EventResized, Window: id, Workspace: idx})
	return nil
}

// AddOutput associates o with every workspace. An output with the same
// name replaces the old one.
func (e *Engine) AddOutput(o workspace.Output) {
	e.mu.Lock()
	defer e.mu.Unlock()

	prev := e.captureLocked()
	if old, ok := e.outputLocked(o.Name()); ok {
		e.spaces.RemoveOutput(old)
	}
	e.spaces.AddOutput(o)
	e.settleLocked(prev)

	e.logger.Info("output added", "output", o.Name())
	e.publish(Event{Type: EventOutputAdded, Output: o.Name(), Workspace: e.spaces.CurrentIndex()})
}

// RemoveOutput drops the named output from every workspace.
func (e *Engine) RemoveOutput(name string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	o, ok := e.outputLocked(name)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownOutput, name)
	}
	prev := e.captureLocked()
	e.spaces.RemoveOutput(o)
	e.settleLocked(prev)

	e.logger.Info("output removed", "output", name)
	e.publish(Event{Type: EventOutputRemoved, Output: name, Workspace: e.spaces.CurrentIndex()})
	return nil
}

// Output returns the output with the given name.
func (e *Engine) Output(name string) (workspace.Output, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.outputLocked(name)
}

// Outputs lists the known outputs.
func (e *Engine) Outputs() []workspace.Output {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.spaces.Outputs()
}

func (e *Engine) outputLocked(name string) (workspace.Output, bool) {
	for _, o := range e.spaces.Outputs() {
		if o.Name() == name {
			return o, true
		}
	}
	return nil, false
}

// ReconfigureOutputs re-resolves geometry after outputs changed mode,
// scale, transform or position.
func (e *Engine) ReconfigureOutputs() {
	e.mu.Lock()
	defer e.mu.Unlock()

	prev := e.captureLocked()
	e.spaces.RefreshAll()
	e.settleLocked(prev)
	e.logger.Debug("outputs reconfigured")
}

// UpdateConfig applies a reloaded configuration. The workspace count is
// fixed for the lifetime of the engine; a different count is logged and
// ignored.
func (e *Engine) UpdateConfig(cfg *config.Config) error {
	animator, err := newAnimator(cfg)
	if err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if cfg.Workspaces != e.spaces.Len() {
		e.logger.Warn("workspace count change requires restart", "current", e.spaces.Len(), "configured", cfg.Workspaces)
	}
	prev := e.captureLocked()
	e.config = cfg
	e.animator = animator
	e.spaces.SetSettings(SettingsFromConfig(cfg))
	e.settleLocked(prev)

	e.logger.Info("config reloaded")
	e.publish(Event{Type: EventConfigReloaded, Workspace: e.spaces.CurrentIndex()})
	return nil
}

// Focus returns the focused target, or nil.
func (e *Engine) Focus() workspace.FocusTarget {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.focused
}

// FocusedWindow returns the focused window, if focus is on one.
func (e *Engine) FocusedWindow() (window.ID, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	id := e.focusedWindowLocked()
	return id, id != 0
}

// SetFocus focuses an arbitrary target, e.g. a layer surface or popup.
func (e *Engine) SetFocus(t workspace.FocusTarget) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.setFocusLocked(t)
}

// FocusWindow focuses a window on the active workspace.
func (e *Engine) FocusWindow(id window.ID) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.spaces.Current().ContainsWindow(id) {
		return fmt.Errorf("%w: %s is not on the active workspace", workspace.ErrUnknownWindow, id)
	}
	e.setFocusLocked(workspace.WindowTarget{Window: id})
	return nil
}

// FocusDirection moves focus to the neighbour of the focused window in dir.
// With nothing focused the topmost window is chosen.
func (e *Engine) FocusDirection(dir focus.Direction) (window.ID, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	tiles := e.tilesLocked()
	if len(tiles) == 0 {
		return 0, false
	}
	current := e.focusedWindowLocked()
	if current == 0 {
		id := tiles[len(tiles)-1].ID
		e.setFocusLocked(workspace.WindowTarget{Window: id})
		return id, true
	}
	next, ok := focus.Neighbour(tiles, current, dir)
	if !ok {
		return current, false
	}
	e.setFocusLocked(workspace.WindowTarget{Window: next})
	return next, true
}

// FocusAt focuses the window under p, falling back to the tile whose centre
// is closest.
func (e *Engine) FocusAt(p geometry.PointF) (window.ID, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	cur := e.spaces.Current()
	if s, _, ok := cur.WindowUnder(p); ok {
		if win, found := e.spaces.Arena().Lookup(s); found {
			e.setFocusLocked(workspace.WindowTarget{Window: win.ID})
			return win.ID, true
		}
	}
	id, ok := focus.Closest(e.tilesLocked(), p)
	if !ok {
		return 0, false
	}
	e.setFocusLocked(workspace.WindowTarget{Window: id})
	return id, true
}

// Render composes the active workspace for renderer, using in-flight
// transition rectangles when animations run.
func (e *Engine) Render(renderer any) []window.Element {
	e.mu.Lock()
	defer e.mu.Unlock()

	b := e.config.Decorations.Border
	return e.spaces.Current().RenderElements(renderer, workspace.RenderConfig{
		BorderWidth:   b.Width,
		ActiveColor:   b.ActiveColor,
		InactiveColor: b.InactiveColor,
		Focused:       e.focusedWindowLocked(),
		Rects:         e.animator.Rects(),
	})
}

// Tick advances transitions by dt and reports whether any are still running.
func (e *Engine) Tick(dt time.Duration) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.animator.Tick(dt)
}

// Animating reports whether any transition is in flight.
func (e *Engine) Animating() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.animator.Running() > 0
}

// WindowUnder hit-tests the active workspace.
func (e *Engine) WindowUnder(p geometry.PointF) (window.Surface, geometry.Point, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.spaces.Current().WindowUnder(p)
}

// WindowAt is WindowUnder resolved to a window ID.
func (e *Engine) WindowAt(p geometry.PointF) (window.ID, geometry.Point, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	s, loc, ok := e.spaces.Current().WindowUnder(p)
	if !ok {
		return 0, geometry.Point{}, false
	}
	win, ok := e.spaces.Arena().Lookup(s)
	if !ok {
		return 0, geometry.Point{}, false
	}
	return win.ID, loc, true
}

// ClampCoords clamps p to the active workspace's outputs.
func (e *Engine) ClampCoords(p geometry.PointF) geometry.PointF {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.spaces.Current().ClampCoords(p)
}

// Verify checks every workspace invariant.
func (e *Engine) Verify() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.spaces.Verify()
}

func (e *Engine) focusedWindowLocked() window.ID {
	if t, ok := e.focused.(workspace.WindowTarget); ok {
		return t.Window
	}
	return 0
}

func (e *Engine) setFocusLocked(t workspace.FocusTarget) {
	if workspace.SameTarget(e.focused, t) {
		return
	}
	e.focused = t
	ev := Event{Type: EventFocusChanged, Workspace: e.spaces.CurrentIndex(), Target: workspace.Describe(t)}
	if wt, ok := t.(workspace.WindowTarget); ok {
		ev.Window = wt.Window
	}
	e.publish(ev)
}

// refocusLocked focuses the topmost window of the active workspace, or
// clears focus when it is empty.
func (e *Engine) refocusLocked() {
	ids := e.spaces.Current().IDs()
	if len(ids) == 0 {
		e.setFocusLocked(nil)
		return
	}
	e.setFocusLocked(workspace.WindowTarget{Window: ids[len(ids)-1]})
}

func (e *Engine) tilesLocked() []focus.Tile {
	var tiles []focus.Tile
	for win := range e.spaces.Current().Windows() {
		tiles = append(tiles, focus.Tile{ID: win.ID, Rect: win.Rect})
	}
	return tiles
}

func (e *Engine) captureLocked() map[window.ID]geometry.Rect {
	if !e.animator.Enabled() {
		return nil
	}
	prev := make(map[window.ID]geometry.Rect)
	for win := range e.spaces.Current().Windows() {
		prev[win.ID] = win.Rect
	}
	return prev
}

// settleLocked runs after every layout change: configurable surfaces learn
// their new size and windows on the active workspace start transitions
// from their prev rectangles.
func (e *Engine) settleLocked(prev map[window.ID]geometry.Rect) {
	for win := range e.spaces.AllWindows() {
		if c, ok := win.Surface.(window.Configurable); ok {
			c.Configure(win.Rect)
		}
	}
	if prev == nil {
		return
	}
	for win := range e.spaces.Current().Windows() {
		e.animator.Retarget(win.ID, prev[win.ID], win.Rect)
	}
}
