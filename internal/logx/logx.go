// Package logx builds the process logger for a configured backend.
package logx

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/joeycumines/ilogrus"
	"github.com/joeycumines/logiface"
	islog "github.com/joeycumines/logiface-slog"
	"github.com/joeycumines/stumpy"
	"github.com/sirupsen/logrus"
)

// Backends.
const (
	BackendStumpy = `stumpy`
	BackendSlog   = `slog`
	BackendLogrus = `logrus`
)

// Formats.
const (
	FormatJSON = `json`
	FormatText = `text`
)

// Options configures New.
type Options struct {
	// Writer receives log output, os.Stderr if nil.
	Writer  io.Writer
	Level   string
	Backend string
	Format  string
}

// ParseLevel parses a level name, accepting both the syslog keywords used
// by logiface (e.g. "err", "warning") and the common long forms.
func ParseLevel(s string) (logiface.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case `disabled`, `off`, `none`:
		return logiface.LevelDisabled, nil
	case `emerg`, `emergency`:
		return logiface.LevelEmergency, nil
	case `alert`:
		return logiface.LevelAlert, nil
	case `crit`, `critical`:
		return logiface.LevelCritical, nil
	case `err`, `error`:
		return logiface.LevelError, nil
	case `warning`, `warn`:
		return logiface.LevelWarning, nil
	case `notice`:
		return logiface.LevelNotice, nil
	case `info`, `informational`, ``:
		return logiface.LevelInformational, nil
	case `debug`:
		return logiface.LevelDebug, nil
	case `trace`:
		return logiface.LevelTrace, nil
	default:
		return logiface.LevelDisabled, fmt.Errorf("logx: unknown level %q", s)
	}
}

// CheckBackend validates a backend and format combination.
func CheckBackend(backend, format string) error {
	switch backend {
	case BackendStumpy, ``:
		if format != `` && format != FormatJSON {
			return fmt.Errorf("logx: backend %s only supports the %s format", BackendStumpy, FormatJSON)
		}
		return nil
	case BackendSlog, BackendLogrus:
		switch format {
		case ``, FormatJSON, FormatText:
			return nil
		default:
			return fmt.Errorf("logx: unknown format %q", format)
		}
	default:
		return fmt.Errorf("logx: unknown backend %q", backend)
	}
}

// New returns a logger for opts.
func New(opts Options) (*logiface.Logger[logiface.Event], error) {
	level, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, err
	}
	if err := CheckBackend(opts.Backend, opts.Format); err != nil {
		return nil, err
	}
	w := opts.Writer
	if w == nil {
		w = os.Stderr
	}

	switch opts.Backend {
	case BackendSlog:
		// filtering is left to logiface
		handlerOpts := &slog.HandlerOptions{Level: slog.LevelDebug}
		var handler slog.Handler
		if opts.Format == FormatText {
			handler = slog.NewTextHandler(w, handlerOpts)
		} else {
			handler = slog.NewJSONHandler(w, handlerOpts)
		}
		return islog.L.New(
			islog.L.WithSlogHandler(handler),
			islog.L.WithLevel(level),
		).Logger(), nil

	case BackendLogrus:
		l := logrus.New()
		l.SetOutput(w)
		l.SetLevel(logrus.TraceLevel)
		if opts.Format == FormatText {
			l.SetFormatter(&logrus.TextFormatter{DisableColors: true})
		} else {
			l.SetFormatter(&logrus.JSONFormatter{})
		}
		return ilogrus.L.New(
			ilogrus.L.WithLogrus(l),
			ilogrus.L.WithLevel(level),
		).Logger(), nil

	default:
		return stumpy.L.New(
			stumpy.L.WithStumpy(stumpy.WithWriter(w)),
			stumpy.L.WithLevel(level),
		).Logger(), nil
	}
}

// OpenFile returns the writer for a log file path, appending to the file,
// or os.Stderr for an empty path. The returned close function is never nil.
func OpenFile(path string) (io.Writer, func() error, error) {
	if path == `` {
		return os.Stderr, func() error { return nil }, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("logx: open log file: %w", err)
	}
	return f, f.Close, nil
}
