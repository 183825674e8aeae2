// Package logger holds the process-wide structured logger.
//
// Logs go to stderr. Stdout carries the MCP protocol stream and must never
// see a log line.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Logger is the shared logger. It is usable before Configure is called.
var Logger *logrus.Logger

func init() {
	Logger = logrus.New()
	Logger.SetOutput(os.Stderr)
	Logger.SetLevel(logrus.InfoLevel)
	Logger.SetFormatter(textFormatter())
}

func textFormatter() logrus.Formatter {
	return &logrus.TextFormatter{
		DisableColors:   true,
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
	}
}

// Configure sets the level ("debug", "info", "warn", "error") and format
// ("text" or "json") of Logger and points it at w. A nil w keeps the current
// output.
func Configure(level, format string, w io.Writer) error {
	lvl, err := logrus.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}

	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "text":
		Logger.SetFormatter(textFormatter())
	case "json":
		Logger.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
		})
	default:
		return fmt.Errorf("invalid log format %q: want text or json", format)
	}

	Logger.SetLevel(lvl)
	if w != nil {
		Logger.SetOutput(w)
	}
	return nil
}

// WithFields creates a new entry with the given fields.
func WithFields(fields logrus.Fields) *logrus.Entry {
	return Logger.WithFields(fields)
}

// WithField creates a new entry with a single field.
func WithField(key string, value interface{}) *logrus.Entry {
	return Logger.WithField(key, value)
}

// WithError creates a new entry with an error field.
func WithError(err error) *logrus.Entry {
	return Logger.WithError(err)
}
