// Package logging builds the structured loggers used across codi.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Options configures a logger.
type Options struct {
	// Level is one of debug, info, warn, error. Defaults to info.
	Level string
	// Format is text or json. Defaults to text.
	Format string
	// File, when set, receives a copy of every record. Parent directories
	// are created on demand.
	File string
	// Output is the primary destination. Defaults to stderr.
	Output io.Writer
}

// Logger wraps an slog.Logger together with the log file it may own.
type Logger struct {
	*slog.Logger
	mu   sync.Mutex
	file *os.File
}

// New creates a logger from opts.
func New(opts Options) (*Logger, error) {
	out := opts.Output
	if out == nil {
		out = os.Stderr
	}

	l := &Logger{}
	if opts.File != "" {
		if err := os.MkdirAll(filepath.Dir(opts.File), 0755); err != nil {
			return nil, fmt.Errorf("create log directory: %w", err)
		}
		f, err := os.OpenFile(opts.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		l.file = f
		out = io.MultiWriter(out, &syncWriter{l: l})
	}

	hopts := &slog.HandlerOptions{Level: ParseLevel(opts.Level)}
	var h slog.Handler
	if strings.EqualFold(opts.Format, "json") {
		h = slog.NewJSONHandler(out, hopts)
	} else {
		h = slog.NewTextHandler(out, hopts)
	}
	l.Logger = slog.New(h)
	return l, nil
}

// Nop returns a logger that discards everything.
func Nop() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// OrNop returns l, or a discarding logger when l is nil.
func OrNop(l *slog.Logger) *slog.Logger {
	if l == nil {
		return Nop()
	}
	return l
}

// ParseLevel maps a level name to an slog.Level. Unknown names map to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Close closes the log file, if any.
// Safe to call on nil logger or logger without file.
func (l *Logger) Close() error {
	if l == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}

// syncWriter serializes writes to the log file and syncs after each record.
type syncWriter struct {
	l *Logger
}

func (w *syncWriter) Write(p []byte) (int, error) {
	w.l.mu.Lock()
	defer w.l.mu.Unlock()
	if w.l.file == nil {
		return len(p), nil
	}
	n, err := w.l.file.Write(p)
	if err == nil {
		w.l.file.Sync()
	}
	return n, err
}
