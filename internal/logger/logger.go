package logger

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// Logger is a thin wrapper over logrus shared by the relay and the client.
type Logger struct {
	logger *logrus.Logger
}

// New builds a Logger at the given level ("debug", "info", ...). Unknown
// levels fall back to info.
func New(level string, jsonFormat bool) *Logger {
	l := logrus.New()
	l.Out = os.Stdout

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	l.SetLevel(lvl)

	if jsonFormat {
		l.SetFormatter(&logrus.JSONFormatter{})
	} else {
		l.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
			PadLevelText:  true,
		})
	}
	return &Logger{logger: l}
}

// Discard returns a Logger that writes nowhere; used by tests and the CLI.
func Discard() *Logger {
	l := logrus.New()
	l.Out = io.Discard
	return &Logger{logger: l}
}

// SetOutput redirects log output.
func (l *Logger) SetOutput(w io.Writer) {
	l.logger.SetOutput(w)
}

func (l *Logger) Debug(msg string, fields ...logrus.Fields) {
	l.log(logrus.DebugLevel, msg, fields...)
}

func (l *Logger) Info(msg string, fields ...logrus.Fields) {
	l.log(logrus.InfoLevel, msg, fields...)
}

func (l *Logger) Warn(msg string, fields ...logrus.Fields) {
	l.log(logrus.WarnLevel, msg, fields...)
}

func (l *Logger) Error(msg string, fields ...logrus.Fields) {
	l.log(logrus.ErrorLevel, msg, fields...)
}

// Fatal logs and exits the process.
func (l *Logger) Fatal(msg string, fields ...logrus.Fields) {
	l.log(logrus.FatalLevel, msg, fields...)
	os.Exit(1)
}

func (l *Logger) log(level logrus.Level, msg string, fields ...logrus.Fields) {
	entry := logrus.NewEntry(l.logger)
	for _, f := range fields {
		entry = entry.WithFields(f)
	}
	entry.Log(level, msg)
}
