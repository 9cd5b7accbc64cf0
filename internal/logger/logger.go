// Package logger wraps logrus behind the small structured surface the rest
// of meld logs through: leveled messages with trailing key-value pairs, and
// derived loggers carrying fixed fields.
package logger

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// Logger is the logging surface handed to meld components. Key-value pairs
// trail the message, e.g. log.Info("table written", "rows", n).
type Logger interface {
	Debug(msg string, kv ...any)
	Info(msg string, kv ...any)
	Warn(msg string, kv ...any)
	Error(msg string, kv ...any)
	WithField(key string, value any) Logger
	WithFields(fields map[string]any) Logger
}

var root = newRoot(os.Stderr)

func newRoot(w io.Writer) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(w)
	l.SetLevel(logrus.InfoLevel)
	l.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "15:04:05",
	})
	return l
}

// Default returns the process-wide logger.
func Default() Logger {
	return &entryLogger{entry: logrus.NewEntry(root)}
}

// WithField returns the process-wide logger with one fixed field attached.
func WithField(key string, value any) Logger {
	return Default().WithField(key, value)
}

// WithFields returns the process-wide logger with fixed fields attached.
func WithFields(fields map[string]any) Logger {
	return Default().WithFields(fields)
}

// SetVerbose widens the level so Debug messages reach the output.
func SetVerbose(verbose bool) {
	if verbose {
		root.SetLevel(logrus.DebugLevel)
	} else {
		root.SetLevel(logrus.InfoLevel)
	}
}

// SetDebug implies verbose and additionally records the calling position
// with every entry.
func SetDebug(debug bool) {
	if debug {
		root.SetLevel(logrus.DebugLevel)
		root.SetReportCaller(true)
	} else {
		root.SetReportCaller(false)
	}
}

// SetOutput redirects all logging, which tests use to capture or silence it.
func SetOutput(w io.Writer) {
	root.SetOutput(w)
}

type entryLogger struct {
	entry *logrus.Entry
}

func (l *entryLogger) Debug(msg string, kv ...any) { l.kv(kv).Debug(msg) }
func (l *entryLogger) Info(msg string, kv ...any)  { l.kv(kv).Info(msg) }
func (l *entryLogger) Warn(msg string, kv ...any)  { l.kv(kv).Warn(msg) }
func (l *entryLogger) Error(msg string, kv ...any) { l.kv(kv).Error(msg) }

func (l *entryLogger) WithField(key string, value any) Logger {
	return &entryLogger{entry: l.entry.WithField(key, value)}
}

func (l *entryLogger) WithFields(fields map[string]any) Logger {
	return &entryLogger{entry: l.entry.WithFields(logrus.Fields(fields))}
}

func (l *entryLogger) kv(kv []any) *logrus.Entry {
	if len(kv) == 0 {
		return l.entry
	}
	return l.entry.WithFields(pairFields(kv))
}

// pairFields folds trailing key-value pairs into logrus fields. A dangling
// key is kept with a nil value rather than dropped.
func pairFields(kv []any) logrus.Fields {
	fields := make(logrus.Fields, len(kv)/2+1)
	for i := 0; i < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			key = fmt.Sprintf("%v", kv[i])
		}
		if i+1 < len(kv) {
			fields[key] = kv[i+1]
		} else {
			fields[key] = nil
		}
	}
	return fields
}
