package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"path/filepath"
	"testing"
)

func TestLoggerLevelsAndJSONFormat(t *testing.T) {
	buf := &bytes.Buffer{}
	l := New(slog.LevelInfo, FormatJSON, buf)

	l.Debug("hidden")
	if buf.Len() != 0 {
		t.Fatalf("debug should be filtered at info level, got %q", buf.String())
	}

	l.Info("scene loaded", "name", "bounce")
	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if entry["msg"] != "scene loaded" || entry["name"] != "bounce" {
		t.Errorf("unexpected entry %v", entry)
	}
}

func TestLoggerSetLevel(t *testing.T) {
	buf := &bytes.Buffer{}
	l := New(slog.LevelInfo, FormatText, buf)

	l.SetLevel(slog.LevelDebug)
	l.Debug("now visible")
	if buf.Len() == 0 {
		t.Error("debug should pass after SetLevel")
	}
	if l.Level() != slog.LevelDebug {
		t.Errorf("Level = %v", l.Level())
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		" warn ":  slog.LevelWarn,
		"error":   slog.LevelError,
		"unknown": slog.LevelInfo,
		"":        slog.LevelInfo,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestPackageFunctionsBeforeInit(t *testing.T) {
	// Must not panic even when Init was never called.
	Debug("d")
	Info("i")
	Warn("w")
	Error("e")
}

func TestInitClosesPreviousLogFile(t *testing.T) {
	dir := t.TempDir()
	if err := Init(slog.LevelInfo, FormatJSON, filepath.Join(dir, "one.log")); err != nil {
		t.Fatal(err)
	}
	defaultMu.RLock()
	old := defaultLogger
	defaultMu.RUnlock()

	if err := Init(slog.LevelInfo, FormatJSON, filepath.Join(dir, "two.log")); err != nil {
		t.Fatal(err)
	}
	// The first instance's file must already be closed, so closing it again
	// reports the error.
	if err := old.Close(); err == nil {
		t.Error("expected re-initialization to close the first log file")
	}
}
