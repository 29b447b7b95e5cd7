package x11

import (
	"context"
	"log/slog"
	"time"

	"github.com/1broseidon/strata/internal/logging"
)

// TimestampSource reports the RandR configuration timestamp.
type TimestampSource interface {
	ConfigTimestamp() (uint32, error)
}

// Watcher polls the RandR configuration timestamp and calls OnChange
// whenever it moves.
type Watcher struct {
	source   TimestampSource
	interval time.Duration
	logger   *slog.Logger
	onChange func()
}

// NewWatcher returns a watcher polling src every interval (one second when
// interval is not positive).
func NewWatcher(src TimestampSource, interval time.Duration, logger *slog.Logger, onChange func()) *Watcher {
	if interval <= 0 {
		interval = time.Second
	}
	if logger == nil {
		logger = logging.Discard()
	}
	return &Watcher{
		source:   src,
		interval: interval,
		logger:   logger,
		onChange: onChange,
	}
}

// Run blocks until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) {
	last, err := w.source.ConfigTimestamp()
	if err != nil {
		w.logger.Warn("randr timestamp unavailable", "err", err)
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			ts, err := w.source.ConfigTimestamp()
			if err != nil {
				w.logger.Warn("randr timestamp unavailable", "err", err)
				continue
			}
			if ts == last {
				continue
			}
			w.logger.Info("output configuration changed", "timestamp", ts)
			last = ts
			if w.onChange != nil {
				w.onChange()
			}
		}
	}
}
