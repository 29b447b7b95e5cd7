package logging

import (
	"bytes"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func TestNew_FiltersByLevel(t *testing.T) {
	tests := []struct {
		name    string
		level   string
		debug   bool
		wantLog bool
	}{
		{"info at default level", "", false, true},
		{"debug at info level", "info", true, false},
		{"debug at debug level", "debug", true, true},
		{"info at error level", "error", false, false},
		{"info at warning level", "warning", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			level, err := ParseLevel(tt.level)
			if err != nil {
				t.Fatalf("ParseLevel(%q): %v", tt.level, err)
			}
			var buf bytes.Buffer
			logger := New(&buf, level)
			if tt.debug {
				logger.Debug("test", "window", 3)
			} else {
				logger.Info("test", "window", 3)
			}
			if got := buf.Len() > 0; got != tt.wantLog {
				t.Errorf("wrote output = %v, want %v (%q)", got, tt.wantLog, buf.String())
			}
			if tt.wantLog && !strings.Contains(buf.String(), "window=3") {
				t.Errorf("expected structured attribute in %q", buf.String())
			}
		})
	}
}

func TestParseLevel_RejectsUnknown(t *testing.T) {
	if _, err := ParseLevel("chatty"); err == nil {
		t.Fatal("expected error for unknown level")
	}
	if lvl, _ := ParseLevel(" WARN "); lvl != log.WarnLevel {
		t.Fatalf("expected warn, got %v", lvl)
	}
}
