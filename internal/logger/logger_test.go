package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected Level
		wantErr  bool
	}{
		{"debug", LevelDebug, false},
		{"DEBUG", LevelDebug, false},
		{"info", LevelInfo, false},
		{"", LevelInfo, false},
		{"warn", LevelWarn, false},
		{"warning", LevelWarn, false},
		{"error", LevelError, false},
		{" Error ", LevelError, false},
		{"verbose", LevelInfo, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseLevel(tt.input)
			if tt.wantErr && err == nil {
				t.Errorf("expected error for input %q", tt.input)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error for input %q: %v", tt.input, err)
			}
			if got != tt.expected {
				t.Errorf("expected %v, got %v for input %q", tt.expected, got, tt.input)
			}
		})
	}
}

func TestLogger_SetLevel(t *testing.T) {
	var buf bytes.Buffer
	l := New()
	l.SetOutput(&buf)
	l.SetLevel(LevelWarn)

	l.Debug("debug message")
	l.Info("info message")
	l.Warn("warn message")
	l.Error("error message")

	output := buf.String()
	if strings.Contains(output, "debug message") || strings.Contains(output, "info message") {
		t.Errorf("messages below WARN should be dropped, got %q", output)
	}
	if !strings.Contains(output, "warn message") || !strings.Contains(output, "error message") {
		t.Errorf("WARN and ERROR should be logged, got %q", output)
	}
}

func TestLogger_Named(t *testing.T) {
	var buf bytes.Buffer
	l := New()
	l.SetOutput(&buf)
	l.SetLevel(LevelDebug)

	l.Named("submission").Info("posted %d bytes", 42)

	if !strings.Contains(buf.String(), "[INFO] submission: posted 42 bytes") {
		t.Errorf("unexpected output %q", buf.String())
	}
}

func TestLogger_Configure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "enroll.log")

	l := New()
	if err := l.Configure("debug", path); err != nil {
		t.Fatalf("Configure: %v", err)
	}
	l.Debug("configured")
	if err := l.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}
	if !strings.Contains(string(content), "[DEBUG] configured") {
		t.Errorf("log file missing message: %q", content)
	}
}

func TestLogger_ConfigureRejectsBadLevel(t *testing.T) {
	l := New()
	if err := l.Configure("loud", ""); err == nil {
		t.Fatal("expected error for invalid level")
	}
}

func TestLogger_EnvVars(t *testing.T) {
	path := filepath.Join(t.TempDir(), "env.log")
	t.Setenv("ENROLL_LOG_LEVEL", "debug")
	t.Setenv("ENROLL_LOG_FILE", path)

	l := New()
	defer l.Close()

	if l.level != LevelDebug {
		t.Errorf("expected debug level from env var, got %v", l.level)
	}
	l.Debug("from env")

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}
	if !strings.Contains(string(content), "from env") {
		t.Error("log file should contain the message")
	}
}

func TestLogger_CloseTwice(t *testing.T) {
	l := New()
	if err := l.Configure("info", filepath.Join(t.TempDir(), "x.log")); err != nil {
		t.Fatalf("Configure: %v", err)
	}
	if err := l.Close(); err != nil {
		t.Errorf("unexpected error closing logger: %v", err)
	}
	if err := l.Close(); err != nil {
		t.Errorf("second close should be a no-op: %v", err)
	}
}
