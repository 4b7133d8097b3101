// Package logger adapts logrus to the ports.Logger interface.
package logger

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// LogrusLogger implements ports.Logger on a logrus instance.
type LogrusLogger struct {
	log *logrus.Logger
}

// New builds a stderr logger at the given level ("debug", "info", "warn",
// "error"). Unknown levels fall back to info.
func New(level string, verbose bool) *LogrusLogger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	l.SetLevel(parseLevel(level, verbose))
	return &LogrusLogger{log: l}
}

// NewRotating builds a logger writing JSON lines to a size-rotated file.
// The hook command uses this: its stdout and stderr belong to the host
// protocol, so diagnostics must go elsewhere.
func NewRotating(path, level string, verbose bool) *LogrusLogger {
	l := logrus.New()
	l.SetOutput(&lumberjack.Logger{
		Filename:   path,
		MaxSize:    5, // megabytes
		MaxBackups: 2,
	})
	l.SetFormatter(&logrus.JSONFormatter{})
	l.SetLevel(parseLevel(level, verbose))
	return &LogrusLogger{log: l}
}

// NewDiscard builds a logger that drops everything. Useful in tests.
func NewDiscard() *LogrusLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return &LogrusLogger{log: l}
}

func parseLevel(level string, verbose bool) logrus.Level {
	if verbose {
		return logrus.DebugLevel
	}
	if parsed, err := logrus.ParseLevel(level); err == nil {
		return parsed
	}
	return logrus.InfoLevel
}

func (l *LogrusLogger) Debug(msg string, fields map[string]interface{}) {
	l.log.WithFields(logrus.Fields(fields)).Debug(msg)
}

func (l *LogrusLogger) Info(msg string, fields map[string]interface{}) {
	l.log.WithFields(logrus.Fields(fields)).Info(msg)
}

func (l *LogrusLogger) Warn(msg string, fields map[string]interface{}) {
	l.log.WithFields(logrus.Fields(fields)).Warn(msg)
}

func (l *LogrusLogger) Error(msg string, fields map[string]interface{}) {
	l.log.WithFields(logrus.Fields(fields)).Error(msg)
}
