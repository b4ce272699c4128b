package core

import (
	"io"

	"github.com/sirupsen/logrus"
)

type logrusLogger struct {
	entry logrus.FieldLogger
}

// NewLogrusLogger adapts a logrus logger (or entry) to Logger. Key/value pairs
// become fields; a trailing key without a value is logged under "extra".
func NewLogrusLogger(l logrus.FieldLogger) Logger {
	if l == nil {
		return noopLogger{}
	}
	return logrusLogger{entry: l}
}

// NewStandardLogger builds a JSON logrus logger writing to w at level (info when empty).
func NewStandardLogger(w io.Writer, level string) (*logrus.Logger, error) {
	l := logrus.New()
	l.SetOutput(w)
	l.SetFormatter(&logrus.JSONFormatter{})
	if level == "" {
		level = "info"
	}
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	l.SetLevel(lvl)
	return l, nil
}

func (l logrusLogger) with(keyvals []any) logrus.FieldLogger {
	if len(keyvals) == 0 {
		return l.entry
	}
	fields := make(logrus.Fields, len(keyvals)/2+1)
	for i := 0; i < len(keyvals); i += 2 {
		key, ok := keyvals[i].(string)
		if !ok {
			key = "extra"
		}
		if i+1 < len(keyvals) {
			fields[key] = keyvals[i+1]
		} else {
			fields["extra"] = keyvals[i]
		}
	}
	return l.entry.WithFields(fields)
}

func (l logrusLogger) Debug(msg string, keyvals ...any) { l.with(keyvals).Debug(msg) }
func (l logrusLogger) Info(msg string, keyvals ...any)  { l.with(keyvals).Info(msg) }
func (l logrusLogger) Warn(msg string, keyvals ...any)  { l.with(keyvals).Warn(msg) }
func (l logrusLogger) Error(msg string, keyvals ...any) { l.with(keyvals).Error(msg) }
