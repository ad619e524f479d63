package log

import (
	"io"
	"os"
	"runtime"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	// Only the first line of the stack is needed, "goroutine 123 [running]:".
	minStackBufSize = 32
	// Minimum expected stack trace length for valid goroutine info.
	minStackTraceLen = 12
	// Number of characters to skip: "goroutine " (10 chars).
	goroutinePrefixLen = 10
)

var (
	Logger        zerolog.Logger
	goroutinePool sync.Pool
)

func init() {
	goroutinePool.New = func() interface{} {
		return make([]byte, minStackBufSize)
	}

	Logger = New(zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: "15:04:05",
	}, zerolog.InfoLevel)

	log.Logger = Logger
}

// New builds a logger writing to out that tags every event with the goroutine ID.
func New(out io.Writer, level zerolog.Level) zerolog.Logger {
	return zerolog.New(out).
		Level(level).
		With().
		Timestamp().
		Logger().
		Hook(zerolog.HookFunc(func(e *zerolog.Event, _ zerolog.Level, _ string) {
			e.Str("goid", goroutineID())
		}))
}

// goroutineID parses the current goroutine ID out of a minimal stack dump.
func goroutineID() string {
	buf, ok := goroutinePool.Get().([]byte)
	if !ok {
		return "unknown"
	}
	defer goroutinePool.Put(buf) //nolint:staticcheck // buf is a slice, this is the correct usage

	stackLen := runtime.Stack(buf, false)
	if stackLen < minStackTraceLen {
		return "unknown"
	}

	idx := goroutinePrefixLen
	start := idx
	for idx < stackLen && buf[idx] >= '0' && buf[idx] <= '9' {
		idx++
	}

	if idx > start {
		return string(buf[start:idx])
	}
	return "unknown"
}

// ParseLevel maps a config string to a zerolog level, falling back to info.
func ParseLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// SetLevel switches the global logger to the named level.
func SetLevel(level string) {
	Logger = Logger.Level(ParseLevel(level))
	log.Logger = Logger
}

// SetDebugMode switches the logger to debug level.
func SetDebugMode() {
	SetLevel("debug")
}

// Info logs an info message with goroutine ID.
func Info() *zerolog.Event {
	return Logger.Info()
}

// Error logs an error message with goroutine ID.
func Error() *zerolog.Event {
	return Logger.Error()
}

// Warn logs a warning message with goroutine ID.
func Warn() *zerolog.Event {
	return Logger.Warn()
}

// Debug logs a debug message with goroutine ID.
func Debug() *zerolog.Event {
	return Logger.Debug()
}

// Fatal logs a fatal message with goroutine ID and exits.
func Fatal() *zerolog.Event {
	return Logger.Fatal()
}
