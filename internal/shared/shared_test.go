package shared

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func TestParseLevel(t *testing.T) {
	tc := []struct {
		name  string
		level string
		want  log.Level
	}{
		{name: "debug", level: "debug", want: log.DebugLevel},
		{name: "warn", level: "warn", want: log.WarnLevel},
		{name: "warning alias", level: "WARNING", want: log.WarnLevel},
		{name: "error", level: " error ", want: log.ErrorLevel},
		{name: "info", level: "info", want: log.InfoLevel},
		{name: "unknown falls back to info", level: "verbose", want: log.InfoLevel},
		{name: "empty falls back to info", level: "", want: log.InfoLevel},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseLevel(tt.level); got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.level, got, tt.want)
			}
		})
	}
}

func TestLoggers(t *testing.T) {
	t.Run("NewLogger writes to the given writer", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger(&buf)
		logger.Info("hello", "key", "value")

		if !strings.Contains(buf.String(), "hello") || !strings.Contains(buf.String(), "key=value") {
			t.Errorf("unexpected log output: %q", buf.String())
		}
	})

	t.Run("WithLogger adds fields", func(t *testing.T) {
		var buf bytes.Buffer
		logger := WithLogger(NewLogger(&buf), "component", "auth")
		logger.Info("refreshed")

		if !strings.Contains(buf.String(), "component=auth") {
			t.Errorf("expected component field, got %q", buf.String())
		}
	})

	t.Run("SetLogLevel filters lower levels", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger(&buf)
		SetLogLevel(logger, log.ErrorLevel)
		logger.Info("dropped")

		if buf.Len() != 0 {
			t.Errorf("expected no output below error level, got %q", buf.String())
		}
	})

	t.Run("NewFileLogger creates parent directories", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "nested", "kiosk.log")
		logger, err := NewFileLogger(path)
		if err != nil {
			t.Fatalf("NewFileLogger() error = %v", err)
		}
		logger.Info("written")
	})
}

func TestGenerateState(t *testing.T) {
	a, err := GenerateState()
	if err != nil {
		t.Fatalf("GenerateState() error = %v", err)
	}
	b, err := GenerateState()
	if err != nil {
		t.Fatalf("GenerateState() error = %v", err)
	}

	if a == b {
		t.Error("expected distinct state values")
	}
	if len(a) != 32 || strings.Contains(a, "-") {
		t.Errorf("expected 32 hex characters, got %q", a)
	}
}
