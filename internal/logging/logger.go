package logging

import (
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

type Fields = logrus.Fields

var std = logrus.New()

// Configure sets the level ("debug", "info", ...) and output format
// ("text" or "json") of the process logger.
func Configure(level, format string) error {
	lvl, err := logrus.ParseLevel(strings.TrimSpace(level))
	if err != nil {
		return err
	}
	std.SetLevel(lvl)
	std.SetOutput(os.Stderr)
	if strings.EqualFold(strings.TrimSpace(format), "json") {
		std.SetFormatter(&logrus.JSONFormatter{})
	} else {
		std.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return nil
}

// Debug logs a debug message with optional fields.
func Debug(msg string, fields Fields) {
	std.WithFields(fields).Debug(msg)
}

// Info logs an informational message with optional fields.
func Info(msg string, fields Fields) {
	std.WithFields(fields).Info(msg)
}

// Warn logs a warning with optional fields.
func Warn(msg string, fields Fields) {
	std.WithFields(fields).Warn(msg)
}

// Error logs an error message and includes the error text in the fields.
func Error(msg string, err error, fields Fields) {
	entry := std.WithFields(fields)
	if err != nil {
		entry = entry.WithError(err)
	}
	entry.Error(msg)
}

// Fatal logs a fatal error and exits the process.
func Fatal(msg string, err error, fields Fields) {
	entry := std.WithFields(fields)
	if err != nil {
		entry = entry.WithError(err)
	}
	entry.Fatal(msg)
}
