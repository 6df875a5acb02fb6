// Package logging builds the process logger. Output goes to a file so it never
// interleaves with the terminal UI.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

type Options struct {
	Level string
	// File is the log path. Empty discards all output.
	File string
	// JSON selects the JSON handler instead of text.
	JSON bool
}

func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid log level %q (want debug|info|warn|error)", s)
	}
}

// New opens the log file for appending and returns a logger writing to it
// together with a close function.
func New(opts Options) (*slog.Logger, func() error, error) {
	level, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, nil, err
	}
	path := strings.TrimSpace(opts.File)
	if path == "" {
		return Discard(), func() error { return nil }, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, err
	}
	return slog.New(handler(f, level, opts.JSON)), f.Close, nil
}

func handler(w io.Writer, level slog.Level, json bool) slog.Handler {
	ho := &slog.HandlerOptions{Level: level}
	if json {
		return slog.NewJSONHandler(w, ho)
	}
	return slog.NewTextHandler(w, ho)
}

func Discard() *slog.Logger { return slog.New(slog.DiscardHandler) }
