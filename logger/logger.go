// Package logger is the process-wide structured logger, a thin slog setup
// shared by every component.
package logger

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Format selects the handler encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatText Format = "text"
)

// Logger wraps slog with rebuildable outputs.
type Logger struct {
	*slog.Logger

	mu      sync.Mutex
	writers []io.Writer
	level   slog.Level
	format  Format
}

// New builds a logger writing to the given destinations.
func New(level slog.Level, format Format, writers ...io.Writer) *Logger {
	if len(writers) == 0 {
		writers = []io.Writer{os.Stdout}
	}
	l := &Logger{writers: writers, level: level, format: format}
	l.rebuild()
	return l
}

// SetLevel changes the minimum level.
func (l *Logger) SetLevel(level slog.Level) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
	l.rebuild()
}

// Level returns the current minimum level.
func (l *Logger) Level() slog.Level {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.level
}

// AddOutput attaches another destination.
func (l *Logger) AddOutput(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.writers = append(l.writers, w)
	l.rebuild()
}

// Close closes any file destinations except stdout/stderr.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, w := range l.writers {
		file, ok := w.(*os.File)
		if !ok || file == os.Stdout || file == os.Stderr {
			continue
		}
		if err := file.Close(); err != nil {
			return err
		}
	}
	return nil
}

// rebuild recreates the slog handler from current settings. Caller holds
// l.mu (or owns l exclusively).
func (l *Logger) rebuild() {
	out := io.MultiWriter(l.writers...)
	opts := &slog.HandlerOptions{Level: l.level}
	var handler slog.Handler
	if l.format == FormatJSON {
		handler = slog.NewJSONHandler(out, opts)
	} else {
		handler = slog.NewTextHandler(out, opts)
	}
	l.Logger = slog.New(handler)
}

// ParseLevel maps a config string to a slog level, defaulting to info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

var (
	defaultMu     sync.RWMutex
	defaultLogger *Logger
)

// Init sets up the process default logger. Stdout is always included; a
// non-empty path adds an append-mode log file (directories are created).
func Init(level slog.Level, format Format, path string) error {
	writers := []io.Writer{os.Stdout}
	if path != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return err
		}
		file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return err
		}
		writers = append(writers, file)
	}

	defaultMu.Lock()
	previous := defaultLogger
	defaultLogger = New(level, format, writers...)
	defaultMu.Unlock()

	// Re-initialization must not leak the previous instance's log file.
	if previous != nil {
		return previous.Close()
	}
	return nil
}

// base returns the default logger, falling back to a text logger on stdout
// so logging before Init never panics.
func base() *slog.Logger {
	defaultMu.RLock()
	l := defaultLogger
	defaultMu.RUnlock()
	if l == nil {
		return slog.Default()
	}
	return l.Logger
}

func Debug(msg string, args ...any) { base().Debug(msg, args...) }
func Info(msg string, args ...any)  { base().Info(msg, args...) }
func Warn(msg string, args ...any)  { base().Warn(msg, args...) }
func Error(msg string, args ...any) { base().Error(msg, args...) }
