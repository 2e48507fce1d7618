// Package telemetry holds the logging, metrics, and tracing plumbing shared by the SDK.
package telemetry

import (
	"github.com/Eclipse-Softworks/Luna-SDK-sub001/pkg/luna"
)

// Sink receives records that passed the level filter and redaction.
type Sink interface {
	Write(level luna.LogLevel, msg string, fields map[string]interface{})
}

// Logger is the single logging path of the SDK. Records below the configured
// level are dropped before any work is done; everything else is redacted and
// handed to the sink. A nil *Logger discards all records.
type Logger struct {
	level    luna.LogLevel
	sink     Sink
	redactor *Redactor
}

// NewLogger creates a logger that writes to sink. A nil sink writes JSON to stderr.
func NewLogger(level luna.LogLevel, sink Sink) *Logger {
	if sink == nil {
		sink = NewStderrSink()
	}

	return &Logger{
		level:    level,
		sink:     sink,
		redactor: NewRedactor(),
	}
}

// Enabled reports whether records at level are written.
func (l *Logger) Enabled(level luna.LogLevel) bool {
	return l != nil && level >= l.level
}

// Log writes a record at level.
func (l *Logger) Log(level luna.LogLevel, msg string, fields map[string]interface{}) {
	if !l.Enabled(level) {
		return
	}

	l.sink.Write(level, msg, l.redactor.Redact(fields))
}

// Trace writes a record at trace level, the most verbose.
func (l *Logger) Trace(msg string, fields map[string]interface{}) {
	l.Log(luna.LogLevelTrace, msg, fields)
}

// Debug writes a record at debug level.
func (l *Logger) Debug(msg string, fields map[string]interface{}) {
	l.Log(luna.LogLevelDebug, msg, fields)
}

// Info writes a record at info level.
func (l *Logger) Info(msg string, fields map[string]interface{}) {
	l.Log(luna.LogLevelInfo, msg, fields)
}

// Warn writes a record at warn level.
func (l *Logger) Warn(msg string, fields map[string]interface{}) {
	l.Log(luna.LogLevelWarn, msg, fields)
}

// Error writes a record at error level.
func (l *Logger) Error(msg string, fields map[string]interface{}) {
	l.Log(luna.LogLevelError, msg, fields)
}

var _ luna.Logger = (*Logger)(nil)
