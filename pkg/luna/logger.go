package luna

import (
	"fmt"
	"strings"

	"github.com/Eclipse-Softworks/Luna-SDK-sub001/internal/constants"
)

// LogLevel orders log records by severity.
type LogLevel int

// Log levels.
const (
	LogLevelTrace LogLevel = 10
	LogLevelDebug LogLevel = 20
	LogLevelInfo  LogLevel = 30
	LogLevelWarn  LogLevel = 40
	LogLevelError LogLevel = 50
)

// String returns the lower-case name of the level.
func (l LogLevel) String() string {
	switch l {
	case LogLevelTrace:
		return "trace"
	case LogLevelDebug:
		return "debug"
	case LogLevelInfo:
		return "info"
	case LogLevelWarn:
		return "warn"
	case LogLevelError:
		return "error"
	default:
		return fmt.Sprintf("level(%d)", int(l))
	}
}

// MarshalText encodes the level by name.
func (l LogLevel) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// UnmarshalText decodes a level name.
func (l *LogLevel) UnmarshalText(text []byte) error {
	level, err := ParseLogLevel(string(text))
	if err != nil {
		return err
	}

	*l = level

	return nil
}

// ParseLogLevel parses a level name. It accepts "warning" as an alias of "warn".
func ParseLogLevel(name string) (LogLevel, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "trace":
		return LogLevelTrace, nil
	case "debug":
		return LogLevelDebug, nil
	case "info", "":
		return LogLevelInfo, nil
	case "warn", "warning":
		return LogLevelWarn, nil
	case "error":
		return LogLevelError, nil
	default:
		return 0, fmt.Errorf("%w: %q", constants.ErrInvalidLogLevel, name)
	}
}

// Logger interface for logging. A configured Logger receives records only
// after sensitive fields have been redacted; trace records are delivered
// through Debug.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}
