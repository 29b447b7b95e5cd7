package daemon

import (
	"log/slog"

	"github.com/1broseidon/strata/internal/logging"
	"github.com/1broseidon/strata/internal/workspace"
)

// OutputEngine is the part of the engine the synchronizer drives.
type OutputEngine interface {
	Outputs() []workspace.Output
	AddOutput(o workspace.Output)
	RemoveOutput(name string) error
}

// SyncResult lists output names by what happened to them.
type SyncResult struct {
	Added   []string
	Removed []string
	Changed []string
}

// Empty reports whether the sync changed nothing.
func (r SyncResult) Empty() bool {
	return len(r.Added) == 0 && len(r.Removed) == 0 && len(r.Changed) == 0
}

// OutputSynchronizer brings the engine's outputs in line with a freshly
// probed set, e.g. after a RandR configuration change.
type OutputSynchronizer struct {
	engine OutputEngine
	logger *slog.Logger
}

// NewOutputSynchronizer creates a synchronizer for eng.
func NewOutputSynchronizer(eng OutputEngine, logger *slog.Logger) *OutputSynchronizer {
	if logger == nil {
		logger = logging.Discard()
	}
	return &OutputSynchronizer{engine: eng, logger: logger}
}

// Sync adds probed outputs the engine lacks, replaces those whose mode,
// scale, transform or position changed, and removes the ones that
// disappeared.
func (s *OutputSynchronizer) Sync(probed []workspace.Output) SyncResult {
	var res SyncResult

	current := make(map[string]workspace.Output)
	for _, o := range s.engine.Outputs() {
		current[o.Name()] = o
	}

	seen := make(map[string]bool, len(probed))
	for _, o := range probed {
		name := o.Name()
		seen[name] = true
		old, ok := current[name]
		switch {
		case !ok:
			s.engine.AddOutput(o)
			res.Added = append(res.Added, name)
			s.logger.Info("output connected", "output", name)
		case !sameOutput(old, o):
			s.engine.AddOutput(o)
			res.Changed = append(res.Changed, name)
			s.logger.Info("output reconfigured", "output", name)
		}
	}

	for name := range current {
		if seen[name] {
			continue
		}
		if err := s.engine.RemoveOutput(name); err != nil {
			s.logger.Warn("failed to remove output", "output", name, "error", err)
			continue
		}
		res.Removed = append(res.Removed, name)
		s.logger.Info("output disconnected", "output", name)
	}

	return res
}

func sameOutput(a, b workspace.Output) bool {
	am, aok := a.CurrentMode()
	bm, bok := b.CurrentMode()
	return am == bm && aok == bok &&
		a.CurrentScale() == b.CurrentScale() &&
		a.CurrentTransform() == b.CurrentTransform() &&
		a.Location() == b.Location()
}
