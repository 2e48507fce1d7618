package telemetry

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/Eclipse-Softworks/Luna-SDK-sub001/internal/constants"
	"github.com/Eclipse-Softworks/Luna-SDK-sub001/pkg/luna"
)

// slog has no trace level; it sits below debug.
const slogLevelTrace = slog.Level(-8)

// SlogSink writes records as JSON lines through log/slog.
type SlogSink struct {
	logger *slog.Logger
}

// NewSlogSink creates a sink writing JSON lines to writer.
func NewSlogSink(writer io.Writer) *SlogSink {
	handler := slog.NewJSONHandler(writer, &slog.HandlerOptions{
		Level: slogLevelTrace,
		ReplaceAttr: func(_ []string, attr slog.Attr) slog.Attr {
			if attr.Key == slog.LevelKey {
				if level, ok := attr.Value.Any().(slog.Level); ok && level == slogLevelTrace {
					attr.Value = slog.StringValue("TRACE")
				}
			}

			return attr
		},
	})

	return &SlogSink{logger: slog.New(handler)}
}

// NewStderrSink creates a sink writing JSON lines to stderr.
func NewStderrSink() *SlogSink {
	return NewSlogSink(os.Stderr)
}

// NewFileSink creates a sink writing to a size-rotated file. Close the
// returned closer when the sink is no longer used.
func NewFileSink(path string) (*SlogSink, io.Closer, error) {
	err := os.MkdirAll(filepath.Dir(path), constants.ConfigDirPerm)
	if err != nil {
		return nil, nil, fmt.Errorf("creating log directory: %w", err)
	}

	writer := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    constants.LogFileMaxSizeMB,
		MaxBackups: constants.LogFileMaxBackups,
		MaxAge:     constants.LogFileMaxAgeDays,
	}

	return NewSlogSink(writer), writer, nil
}

// Write implements Sink.
func (s *SlogSink) Write(level luna.LogLevel, msg string, fields map[string]interface{}) {
	keys := make([]string, 0, len(fields))
	for key := range fields {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	attrs := make([]slog.Attr, 0, len(keys))
	for _, key := range keys {
		attrs = append(attrs, slog.Any(key, fields[key]))
	}

	s.logger.LogAttrs(context.Background(), toSlogLevel(level), msg, attrs...)
}

func toSlogLevel(level luna.LogLevel) slog.Level {
	switch {
	case level >= luna.LogLevelError:
		return slog.LevelError
	case level >= luna.LogLevelWarn:
		return slog.LevelWarn
	case level >= luna.LogLevelInfo:
		return slog.LevelInfo
	case level >= luna.LogLevelDebug:
		return slog.LevelDebug
	default:
		return slogLevelTrace
	}
}

// LoggerSink forwards records to a luna.Logger. Trace records go to Debug.
type LoggerSink struct {
	Logger luna.Logger
}

// Write implements Sink.
func (s LoggerSink) Write(level luna.LogLevel, msg string, fields map[string]interface{}) {
	switch {
	case level >= luna.LogLevelError:
		s.Logger.Error(msg, fields)
	case level >= luna.LogLevelWarn:
		s.Logger.Warn(msg, fields)
	case level >= luna.LogLevelInfo:
		s.Logger.Info(msg, fields)
	default:
		s.Logger.Debug(msg, fields)
	}
}
