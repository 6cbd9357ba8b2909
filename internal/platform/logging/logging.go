package logging

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

var logg = newLogger(os.Stdout, "info", "json")

// GetLogger returns the process-wide logger.
func GetLogger() *logrus.Logger {
	return logg
}

// Init rebuilds the process logger from configuration.
func Init(level, format string) *logrus.Logger {
	logg = newLogger(os.Stdout, level, format)
	return logg
}

// SetOutput redirects the process logger. Tests use io.Discard.
func SetOutput(w io.Writer) {
	logg.SetOutput(w)
}

func newLogger(w io.Writer, level, format string) *logrus.Logger {
	l := logrus.New()
	if strings.EqualFold(format, "text") {
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		l.SetFormatter(&logrus.JSONFormatter{})
	}
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	l.SetLevel(lvl)
	l.SetOutput(w)
	return l
}

// LogError logs err with the module/function/context fields every call site uses.
func LogError(logger *logrus.Logger, moduleName string, funcName string, context string, data any, err error) {
	fields := logrus.Fields{
		"module":   moduleName,
		"funcName": funcName,
		"context":  context,
	}
	if data != nil {
		fields["data"] = data
	}
	logger.WithFields(fields).Error(err.Error())
}
