package ports

// LogLevel represents the severity level of a log message.
type LogLevel int

const (
	// LevelDebug is for detailed debugging information.
	// Used on hot paths such as capture callbacks and frame emission.
	LevelDebug LogLevel = iota
	// LevelInfo is for informational messages.
	// Used for lifecycle events: enable/disable, replay start/finish, saves.
	LevelInfo
	// LevelWarn is for warning messages.
	// Used for recoverable problems that don't stop the engine.
	LevelWarn
	// LevelError is for error messages.
	// Used for failures that abort an operation; the engine itself continues.
	LevelError
	// LevelQuiet suppresses all log output.
	LevelQuiet
)

// String returns the string representation of the log level.
func (l LogLevel) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	case LevelQuiet:
		return "quiet"
	default:
		return "unknown"
	}
}

// ParseLogLevel parses a string into a LogLevel.
func ParseLogLevel(s string) LogLevel {
	switch s {
	case "debug":
		return LevelDebug
	case "info":
		return LevelInfo
	case "warn":
		return LevelWarn
	case "error":
		return LevelError
	case "quiet":
		return LevelQuiet
	default:
		return LevelInfo
	}
}

// Logger is the logging surface the engine and its adapters write to.
// Message strings double as translation keys, so call sites log plain
// English and implementations translate before output.
type Logger interface {
	// Debug logs a debug message with optional format arguments.
	// Debug messages trace per-frame work and request handling.
	Debug(msg string, args ...interface{})

	// Info logs an informational message with optional format arguments.
	// Info messages are for engine lifecycle progress updates.
	Info(msg string, args ...interface{})

	// Warn logs a warning message with optional format arguments.
	// Warn messages indicate recoverable problems.
	Warn(msg string, args ...interface{})

	// Error logs an error message with optional format arguments.
	// Error messages indicate failures that abort an operation.
	Error(msg string, args ...interface{})

	// WithComponent returns a Logger that tags messages with a subsystem
	// name, such as capture or playback.
	WithComponent(component string) Logger
}
