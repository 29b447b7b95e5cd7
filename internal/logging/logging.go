// Package logging builds the loggers used across strata.
//
// Components take a *slog.Logger. The handler behind it is a charmbracelet
// logger, so terminal output is colourised and timestamped the same way in
// the daemon and the CLI.
package logging

import (
	"io"
	"log/slog"
	"strings"

	"github.com/charmbracelet/log"
)

// ParseLevel maps a config level name to a log level. The empty string
// means info; "warning" is accepted as an alias for "warn".
func ParseLevel(name string) (log.Level, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	switch name {
	case "":
		return log.InfoLevel, nil
	case "warning":
		return log.WarnLevel, nil
	}
	return log.ParseLevel(name)
}

// New returns a slog logger backed by a charm logger writing to w at level.
// Timestamps are formatted as "HH:MM:SS.ms".
func New(w io.Writer, level log.Level) *slog.Logger {
	return slog.New(log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	}))
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return New(io.Discard, log.FatalLevel)
}
