package logging

import (
	"fmt"
	"io"
	"time"

	clog "github.com/charmbracelet/log"
)

// New builds the leveled logger used by the monitor. level is one of
// debug, info, warn or error; an empty level means info.
func New(w io.Writer, level string) (*clog.Logger, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}
	return clog.NewWithOptions(w, clog.Options{
		Level:           lvl,
		ReportTimestamp: true,
		TimeFormat:      time.TimeOnly,
		Prefix:          "subtick",
	}), nil
}

// ParseLevel validates a configured log level.
func ParseLevel(level string) (clog.Level, error) {
	if level == "" {
		return clog.InfoLevel, nil
	}
	switch level {
	case "debug", "info", "warn", "error":
		return clog.ParseLevel(level)
	}
	return clog.InfoLevel, fmt.Errorf("unknown log level %q", level)
}

// Discard returns a logger that drops everything.
func Discard() *clog.Logger {
	return clog.New(io.Discard)
}
