package app

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/tern-editor/tern/internal/config"
)

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want LogLevel
	}{
		{"debug", LogLevelDebug},
		{"DEBUG", LogLevelDebug},
		{"info", LogLevelInfo},
		{"warn", LogLevelWarn},
		{"warning", LogLevelWarn},
		{"error", LogLevelError},
		{"bogus", LogLevelInfo},
		{"", LogLevelInfo},
	}
	for _, tt := range tests {
		if got := ParseLogLevel(tt.in); got != tt.want {
			t.Errorf("ParseLogLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestLoggerLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := NewLogger(LoggerConfig{Level: LogLevelWarn, Output: &buf, Prefix: "tern"})

	log.Debug("debug message")
	log.Info("info message")
	log.Warn("warn message")
	log.Error("error message")

	out := buf.String()
	if strings.Contains(out, "debug message") || strings.Contains(out, "info message") {
		t.Errorf("low-severity messages not filtered: %q", out)
	}
	if !strings.Contains(out, "warn message") || !strings.Contains(out, "error message") {
		t.Errorf("high-severity messages missing: %q", out)
	}
	if !strings.Contains(out, "[WARN]") {
		t.Errorf("level tag missing: %q", out)
	}
}

func TestLoggerFields(t *testing.T) {
	var buf bytes.Buffer
	log := NewLogger(LoggerConfig{Level: LogLevelDebug, Output: &buf})

	log.WithComponent("render").Info("frame done")

	if !strings.Contains(buf.String(), "component=render") {
		t.Errorf("component field missing: %q", buf.String())
	}
}

func TestLoggerFormatsArgs(t *testing.T) {
	var buf bytes.Buffer
	log := NewLogger(LoggerConfig{Level: LogLevelDebug, Output: &buf})

	log.Info("resize to %dx%d", 80, 24)

	if !strings.Contains(buf.String(), "resize to 80x24") {
		t.Errorf("args not formatted: %q", buf.String())
	}
}

func TestNullLoggerWritesNothing(t *testing.T) {
	var buf bytes.Buffer
	NullLogger.SetOutput(&buf)
	NullLogger.Error("should not appear")
	if buf.Len() != 0 {
		t.Errorf("NullLogger wrote %q", buf.String())
	}
}

func TestOpenLoggerFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tern.log")
	log, err := OpenLogger(config.Log{Level: "debug", File: path})
	if err != nil {
		t.Fatalf("OpenLogger: %v", err)
	}
	log.Info("hello from test")
	if err := log.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(data), "hello from test") {
		t.Errorf("log file content = %q", data)
	}
}

func TestOpenLoggerWithoutFileIsDisabled(t *testing.T) {
	log, err := OpenLogger(config.Log{Level: "info"})
	if err != nil {
		t.Fatalf("OpenLogger: %v", err)
	}
	if log != NullLogger {
		t.Error("expected NullLogger when no file is configured")
	}
}
