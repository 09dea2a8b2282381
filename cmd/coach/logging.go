package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// newLogger builds the process logger. With a log file the output is JSON
// lines appended to it. Otherwise interactive commands log nothing, since the
// terminal belongs to the chat window, and the rest write to stderr.
func newLogger(cfg Config, stderr io.Writer, interactive bool) (zerolog.Logger, io.Closer, error) {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		return zerolog.Nop(), nopCloser{}, fmt.Errorf("log level: %w", err)
	}

	var (
		out    io.Writer
		closer io.Closer = nopCloser{}
	)
	switch {
	case cfg.LogFile != "":
		if err := os.MkdirAll(filepath.Dir(cfg.LogFile), 0o755); err != nil {
			return zerolog.Nop(), nopCloser{}, fmt.Errorf("log file: %w", err)
		}
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
		if err != nil {
			return zerolog.Nop(), nopCloser{}, fmt.Errorf("log file: %w", err)
		}
		out, closer = f, f
	case interactive:
		return zerolog.Nop(), closer, nil
	default:
		out = zerolog.ConsoleWriter{Out: stderr, TimeFormat: time.RFC3339}
	}

	log := zerolog.New(out).
		Level(level).
		With().
		Timestamp().
		Str("app", "coach").
		Logger()
	return log, closer, nil
}
