// Package log provides a leveled, structured logger for the whole project.
// It is a thin facade over zerolog with the same call surface as
// go.vocdoni.io/dvote/log, so the two can be swapped without touching
// call sites.
package log

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"
)

var (
	log zerolog.Logger

	// panicOnInvalidChars is set based on env LOG_PANIC_ON_INVALIDCHARS (parsed as bool).
	// If true, the log functions panic when a message contains invalid UTF-8 characters,
	// to help catch log lines built from raw binary data during testing.
	panicOnInvalidChars = os.Getenv("LOG_PANIC_ON_INVALIDCHARS") == "true"

	// logTestWriter is the destination used when Init is called with
	// logTestWriterName as output. Used by tests and benchmarks.
	logTestWriter io.Writer = io.Discard
)

const logTestWriterName = "__testWriter"

// LogLevelDebug is the level string that enables debug output.
const LogLevelDebug = "debug"

var currentLevel string

// Logger returns the underlying zerolog instance, so that the rare caller
// that needs native zerolog features can use them directly.
func Logger() *zerolog.Logger { return &log }

// Level returns the level the logger was initialized with.
func Level() string { return currentLevel }

// Init initializes the logger with the given level ("debug", "info", "warn",
// "error" or "fatal") and output ("stdout", "stderr" or a file path).
// If errorOutput is not nil, every message of level error or above is
// mirrored to it as a raw line.
func Init(level, output string, errorOutput io.Writer) {
	var out io.Writer
	switch output {
	case "stdout":
		out = os.Stdout
	case "stderr":
		out = os.Stderr
	case logTestWriterName:
		out = logTestWriter
	default:
		f, err := os.OpenFile(output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			panic(fmt.Sprintf("cannot open log output %q: %v", output, err))
		}
		out = f
	}
	out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339Nano}
	if errorOutput != nil {
		out = zerolog.MultiLevelWriter(out, errorLevelWriter{errorOutput})
	}
	log = zerolog.New(out).With().Timestamp().Logger()
	currentLevel = strings.ToLower(level)
	switch strings.ToLower(level) {
	case "debug":
		log = log.Level(zerolog.DebugLevel)
	case "info":
		log = log.Level(zerolog.InfoLevel)
	case "warn":
		log = log.Level(zerolog.WarnLevel)
	case "error":
		log = log.Level(zerolog.ErrorLevel)
	case "fatal":
		log = log.Level(zerolog.FatalLevel)
	default:
		panic(fmt.Sprintf("invalid log level %q", level))
	}
	log.Info().Msgf("logger construction succeeded at level %s with output %s", level, output)
}

// errorLevelWriter forwards error-and-above messages to a secondary writer.
type errorLevelWriter struct{ w io.Writer }

func (ew errorLevelWriter) Write(p []byte) (int, error) { return len(p), nil }

func (ew errorLevelWriter) WriteLevel(l zerolog.Level, p []byte) (int, error) {
	if l < zerolog.ErrorLevel {
		return len(p), nil
	}
	return ew.w.Write(p)
}

func checkInvalidChars(s string) {
	if panicOnInvalidChars && !utf8.ValidString(s) {
		panic(fmt.Sprintf("log message with invalid chars: %q", s))
	}
}

func msgf(ev *zerolog.Event, template string, args ...any) {
	s := fmt.Sprintf(template, args...)
	checkInvalidChars(s)
	ev.Msg(s)
}

func msgw(ev *zerolog.Event, msg string, keyvalues []any) {
	for i := 0; i+1 < len(keyvalues); i += 2 {
		key, ok := keyvalues[i].(string)
		if !ok {
			key = fmt.Sprintf("%v", keyvalues[i])
		}
		ev = ev.Interface(key, keyvalues[i+1])
	}
	checkInvalidChars(msg)
	ev.Msg(msg)
}

// Debug logs a debug message built from args.
func Debug(args ...any) { msgf(log.Debug(), fmt.Sprint(args...)) }

// Info logs an info message built from args.
func Info(args ...any) { msgf(log.Info(), fmt.Sprint(args...)) }

// Warn logs a warning message built from args.
func Warn(args ...any) { msgf(log.Warn(), fmt.Sprint(args...)) }

// Error logs an error message built from args.
func Error(args ...any) { msgf(log.Error(), fmt.Sprint(args...)) }

// Fatal logs a message built from args and exits the program.
func Fatal(args ...any) { msgf(log.Fatal(), fmt.Sprint(args...)) }

// Debugf logs a formatted debug message.
func Debugf(template string, args ...any) { msgf(log.Debug(), template, args...) }

// Infof logs a formatted info message.
func Infof(template string, args ...any) { msgf(log.Info(), template, args...) }

// Warnf logs a formatted warning message.
func Warnf(template string, args ...any) { msgf(log.Warn(), template, args...) }

// Errorf logs a formatted error message.
func Errorf(template string, args ...any) { msgf(log.Error(), template, args...) }

// Fatalf logs a formatted message and exits the program.
func Fatalf(template string, args ...any) { msgf(log.Fatal(), template, args...) }

// Debugw logs a debug message with alternating key/value pairs.
func Debugw(msg string, keyvalues ...any) { msgw(log.Debug(), msg, keyvalues) }

// Infow logs an info message with alternating key/value pairs.
func Infow(msg string, keyvalues ...any) { msgw(log.Info(), msg, keyvalues) }

// Warnw logs a warning message with alternating key/value pairs.
func Warnw(msg string, keyvalues ...any) { msgw(log.Warn(), msg, keyvalues) }

// Errorw logs an error with an optional message prefix.
func Errorw(err error, msg string) {
	if msg == "" && err != nil {
		msg = err.Error()
		err = nil
	}
	ev := log.Error()
	if err != nil {
		ev = ev.Err(err)
	}
	checkInvalidChars(msg)
	ev.Msg(msg)
}