// Package hotkeys grabs global X11 key bindings and turns them into engine
// operations.
package hotkeys

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/keybind"
	"github.com/BurntSushi/xgbutil/xevent"

	"github.com/1broseidon/strata/internal/logging"
)

// Handler manages global keyboard shortcuts on one X connection.
type Handler struct {
	xu     *xgbutil.XUtil
	root   xproto.Window
	ctrl   Controller
	logger *slog.Logger
}

var ignoreModsOnce sync.Once

// NewHandler prepares keybind on xu. Bindings fire against ctrl.
func NewHandler(xu *xgbutil.XUtil, root xproto.Window, ctrl Controller, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = logging.Discard()
	}
	keybind.Initialize(xu)
	ignoreModsOnce.Do(func() {
		configureIgnoreMods(xu)
	})
	return &Handler{xu: xu, root: root, ctrl: ctrl, logger: logger}
}

// RegisterAll grabs every binding. The first grab failure is returned after
// the remaining bindings have been attempted.
func (h *Handler) RegisterAll(bindings []Binding) error {
	var first error
	for _, b := range bindings {
		if err := h.Register(b); err != nil {
			h.logger.Warn("failed to grab hotkey", "keys", b.Keys, "err", err)
			if first == nil {
				first = err
			}
		}
	}
	return first
}

// Register grabs one binding.
func (h *Handler) Register(b Binding) error {
	err := h.RegisterFunc(b.Keys, func() {
		h.logger.Debug("hotkey", "keys", b.Keys, "action", b.Description)
		if err := b.Run(h.ctrl); err != nil {
			h.logger.Warn("hotkey action failed", "keys", b.Keys, "err", err)
		}
	})
	if err != nil {
		return fmt.Errorf("grab %s: %w", b.Keys, err)
	}
	return nil
}

// RegisterFunc registers an arbitrary hotkey callback.
func (h *Handler) RegisterFunc(keySequence string, callback func()) error {
	return keybind.KeyPressFun(func(xu *xgbutil.XUtil, ev xevent.KeyPressEvent) {
		callback()
	}).Connect(h.xu, h.root, keySequence, true)
}

// Run processes X events until Stop is called.
func (h *Handler) Run() {
	xevent.Main(h.xu)
}

// Stop ends Run.
func (h *Handler) Stop() {
	xevent.Quit(h.xu)
}

// configureIgnoreMods makes grabs fire regardless of the lock keys.
func configureIgnoreMods(xu *xgbutil.XUtil) {
	xevent.IgnoreMods = ignoreMasks(
		uint16(xproto.ModMaskLock),
		modMaskForKeysym(xu, "Num_Lock"),
		modMaskForKeysym(xu, "Scroll_Lock"),
	)
}

// ignoreMasks returns every combination of the distinct non-zero lock
// masks, including the empty one.
func ignoreMasks(locks ...uint16) []uint16 {
	out := []uint16{0}
	seen := map[uint16]bool{0: true}
	for _, lock := range locks {
		if lock == 0 || seen[lock] {
			continue
		}
		for _, m := range out {
			if combined := m | lock; !seen[combined] {
				seen[combined] = true
				out = append(out, combined)
			}
		}
	}
	return out
}

func modMaskForKeysym(xu *xgbutil.XUtil, keysym string) uint16 {
	for _, keycode := range keybind.StrToKeycodes(xu, keysym) {
		if mask := keybind.ModGet(xu, keycode); mask != 0 {
			return mask
		}
	}
	return 0
}
