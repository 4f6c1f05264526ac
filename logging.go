package webvalve

import (
	"io"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// NewLogger builds a logrus logger writing to out with given level and format ("text" or "json").
// Unknown values fall back to info and text, with a warning.
func NewLogger(out io.Writer, level, format string) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(out)
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		logger.Warnf("Invalid log level '%s', defaulting to 'info': %v", level, err)
		lvl = logrus.InfoLevel
	}
	logger.SetLevel(lvl)
	switch strings.ToLower(format) {
	case "json":
		logger.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: time.RFC3339Nano,
		})
	case "", "text":
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: time.RFC3339Nano,
		})
	default:
		logger.Warnf("Invalid log format '%s', defaulting to 'text'", format)
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: time.RFC3339Nano,
		})
	}
	return logger
}
