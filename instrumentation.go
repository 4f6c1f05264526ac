package webvalve

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
)

// RequestEvent describes a request captured by a fake.
type RequestEvent struct {
	Status   int
	Method   string
	URL      string
	Host     string
	Duration time.Duration
}

// DurationMS returns the duration in fractional milliseconds.
func (e RequestEvent) DurationMS() float64 {
	return float64(e.Duration) / float64(time.Millisecond)
}

// EventLogger receives an event for every intercepted request.
type EventLogger interface {
	LogRequest(RequestEvent)
}

// EventLoggerFunc is a convenience type that implements EventLogger interface.
type EventLoggerFunc func(RequestEvent)

func (f EventLoggerFunc) LogRequest(e RequestEvent) {
	f(e)
}

// LogrusEventLogger renders events with logrus. Nothing is written unless the logger is at debug level.
type LogrusEventLogger struct {
	Logger *logrus.Logger
}

// NewLogrusEventLogger returns a LogrusEventLogger. logrus.StandardLogger is used when l is nil.
func NewLogrusEventLogger(l *logrus.Logger) *LogrusEventLogger {
	if l == nil {
		l = logrus.StandardLogger()
	}
	return &LogrusEventLogger{Logger: l}
}

func (l *LogrusEventLogger) LogRequest(e RequestEvent) {
	if !l.Logger.IsLevelEnabled(logrus.DebugLevel) {
		return
	}
	l.Logger.WithFields(logrus.Fields{
		"status":      e.Status,
		"method":      e.Method,
		"url":         e.URL,
		"host":        e.Host,
		"duration_ms": e.DurationMS(),
	}).Debug(FormatRequestEvent(e))
}

// FormatRequestEvent renders e as a single line, e.g.
// "WebValve Request Captured (1.2ms)  api.dev GET http://api.dev/users [200]".
func FormatRequestEvent(e RequestEvent) string {
	return fmt.Sprintf("WebValve Request Captured (%.1fms)  %s %s %s [%d]", e.DurationMS(), e.Host, e.Method, e.URL, e.Status)
}
