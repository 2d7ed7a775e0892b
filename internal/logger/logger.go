// Package logger is the process-wide structured logger.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

var log zerolog.Logger

// DurationFieldName is the key used when a bare time.Duration is logged.
var DurationFieldName = "dur"

func init() {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	SetConsoleWriter()
}

func Log() *zerolog.Logger {
	return &log
}

func SetWriter(w io.Writer) {
	log = zerolog.New(w).With().Timestamp().Logger()
}

func SetJSONWriter() {
	SetWriter(os.Stderr)
}

// SetLevel accepts zerolog level names ("debug", "info", "warn", ...).
func SetLevel(level string) error {
	l, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		return fmt.Errorf("log level %q: %w", level, err)
	}
	zerolog.SetGlobalLevel(l)
	return nil
}

// doLog appends args to event and sends it. args is an optional leading
// error followed by key/value pairs; a trailing unpaired string is the
// message.
func doLog(event *zerolog.Event, args []any) {
	if len(args) > 0 {
		if err, ok := args[0].(error); ok {
			event.Err(err)
			args = args[1:]
		}
	}
	for i := 0; i < len(args); i++ {
		switch k := args[i].(type) {
		case string:
			if i+1 == len(args) {
				event.Msg(k)
				return
			}
			i++
			switch v := args[i].(type) {
			case string:
				event.Str(k, v)
			case int:
				event.Int(k, v)
			case int64:
				event.Int64(k, v)
			case uint64:
				event.Uint64(k, v)
			case float64:
				event.Float64(k, v)
			case bool:
				event.Bool(k, v)
			case error:
				event.AnErr(k, v)
			case time.Duration:
				event.Str(k, v.String())
			default:
				event.Interface(k, v)
			}
		case time.Duration:
			event.Str(DurationFieldName, k.String())
		case error:
			event.Err(k)
		}
	}
	event.Msg("")
}

// Debug logs at debug level.
func Debug(args ...any) {
	doLog(log.Debug(), args)
}

// Info logs at info level.
func Info(args ...any) {
	doLog(log.Info(), args)
}

// Warn logs at warn level.
func Warn(args ...any) {
	doLog(log.Warn(), args)
}

// Error logs err at error level.
func Error(err error, args ...any) {
	doLog(log.Error().Err(err), args)
}
