// Package logging sets up the diagnostic log channel.
//
// The interactive panel owns the terminal, so diagnostics go to a file
// unless the caller asks for stderr.
package logging

import (
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Stderr is the log path value that selects standard error.
const Stderr = "-"

// Logger is a configured logger and the file it writes to, if any.
type Logger struct {
	*logrus.Logger
	closer io.Closer
}

// Open builds a logger writing to path at the given level name.
func Open(path, level string) (*Logger, error) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid log level %q", level)
	}
	log := logrus.New()
	log.SetLevel(lvl)
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, DisableColors: path != Stderr})

	if path == "" || path == Stderr {
		log.SetOutput(os.Stderr)
		return &Logger{Logger: log}, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, errors.Wrap(err, "failed to create log directory")
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open log file")
	}
	log.SetOutput(f)
	return &Logger{Logger: log, closer: f}, nil
}

// Discard returns a logger that drops everything.
func Discard() *Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return &Logger{Logger: log}
}

// Close releases the log file.
func (l *Logger) Close() error {
	if l.closer == nil {
		return nil
	}
	return l.closer.Close()
}
