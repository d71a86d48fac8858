package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Bajtii/Object-detection/internal/config"

	"github.com/rs/zerolog"
)

func newFileLogger(t *testing.T) (*Logger, string) {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "logs")
	l, err := NewLogger(&config.Config{LogDirectory: dir, LogLevel: "info", LogFormat: "json"})
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}
	t.Cleanup(func() { l.Close() })
	return l, dir
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(data)
}

// ========================================
// Level Routing Tests
// ========================================

func TestNewLogger_RoutesLevelsToFiles(t *testing.T) {
	l, dir := newFileLogger(t)

	l.Info("info-entry")
	l.Warning("warning-entry")
	l.Error("error-entry")
	l.Debug("debug-entry")

	info := readFile(t, filepath.Join(dir, InfoFile))
	warning := readFile(t, filepath.Join(dir, WarningFile))
	errs := readFile(t, filepath.Join(dir, ErrorFile))

	if !strings.Contains(info, "info-entry") || strings.Contains(info, "warning-entry") || strings.Contains(info, "error-entry") {
		t.Errorf("unexpected info.log: %q", info)
	}
	if !strings.Contains(warning, "warning-entry") || strings.Contains(warning, "error-entry") {
		t.Errorf("unexpected warning.log: %q", warning)
	}
	if !strings.Contains(errs, "error-entry") || strings.Contains(errs, "info-entry") {
		t.Errorf("unexpected error.log: %q", errs)
	}
	if strings.Contains(info, "debug-entry") {
		t.Errorf("debug entry written at info level: %q", info)
	}
}

func TestNewLogger_CreatesDirectory(t *testing.T) {
	_, dir := newFileLogger(t)

	if st, err := os.Stat(dir); err != nil || !st.IsDir() {
		t.Errorf("expected log directory %s, got %v", dir, err)
	}
}

// ========================================
// CleanLogs Tests
// ========================================

func TestCleanLogs(t *testing.T) {
	l, dir := newFileLogger(t)
	l.Error("to-be-cleared")

	if err := l.CleanLogs(ErrorFile); err != nil {
		t.Fatalf("CleanLogs: %v", err)
	}
	if content := readFile(t, filepath.Join(dir, ErrorFile)); content != "" {
		t.Errorf("expected empty error.log, got %q", content)
	}
}

func TestCleanLogs_RejectsUnknownFile(t *testing.T) {
	l, _ := newFileLogger(t)

	for _, name := range []string{"../secret", "debug.log", ""} {
		if err := l.CleanLogs(name); err == nil {
			t.Errorf("expected error for %q", name)
		}
	}
}

func TestCleanLogs_WriterOnlyLogger(t *testing.T) {
	if err := New(&bytes.Buffer{}, "info").CleanLogs(InfoFile); err == nil {
		t.Error("expected error without log directory")
	}
}

// ========================================
// Level Parsing Tests
// ========================================

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected zerolog.Level
	}{
		{"trace", zerolog.TraceLevel},
		{"debug", zerolog.DebugLevel},
		{"info", zerolog.InfoLevel},
		{"warn", zerolog.WarnLevel},
		{"WARNING", zerolog.WarnLevel},
		{" error ", zerolog.ErrorLevel},
		{"", zerolog.InfoLevel},
		{"nonsense", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		if got := ParseLevel(tt.input); got != tt.expected {
			t.Errorf("ParseLevel(%q) = %v, expected %v", tt.input, got, tt.expected)
		}
	}
}

func TestWith_AddsField(t *testing.T) {
	var buf bytes.Buffer
	New(&buf, "debug").With("component", "notifier").Debug("hello %d", 42)

	out := buf.String()
	if !strings.Contains(out, `"component":"notifier"`) || !strings.Contains(out, "hello 42") {
		t.Errorf("unexpected output %q", out)
	}
}

func TestNop_Discards(t *testing.T) {
	Nop().Error("nothing")
}
