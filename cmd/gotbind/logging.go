package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
)

// newLogger builds the CLI logger. With a log file, output is appended to
// it; otherwise it goes to stderr.
func newLogger(cfg LogConfig, stderr io.Writer) (*log.Logger, io.Closer, error) {
	level := log.WarnLevel
	if s := strings.TrimSpace(cfg.Level); s != "" {
		parsed, err := log.ParseLevel(strings.ToLower(s))
		if err != nil {
			return nil, nil, fmt.Errorf("log level %q: %w", s, err)
		}
		level = parsed
	}

	w := stderr
	var closer io.Closer = io.NopCloser(nil)
	if cfg.File != "" {
		f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		w, closer = f, f
	}

	logger := log.NewWithOptions(w, log.Options{
		Level:           level,
		Prefix:          "gotbind",
		ReportTimestamp: cfg.File != "",
	})
	return logger, closer, nil
}
