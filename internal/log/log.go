package log

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

type Level string

const (
	LevelDebug Level = "DEBUG"
	LevelInfo  Level = "INFO"
	LevelError Level = "ERROR"
)

const (
	FormatPlain = "plain"
	FormatJSON  = "json"
)

var (
	mu     sync.RWMutex
	logger = newLogger(os.Stderr, FormatPlain, zerolog.InfoLevel)
)

func newLogger(w io.Writer, format string, lvl zerolog.Level) zerolog.Logger {
	if format == FormatPlain {
		w = zerolog.ConsoleWriter{Out: w, NoColor: true, TimeFormat: time.RFC3339Nano}
	}
	return zerolog.New(w).Level(lvl).With().Timestamp().Logger()
}

// Configure replaces the global logger. format is "plain" or "json"; level
// is any zerolog level name ("debug", "info", "error", ...).
func Configure(w io.Writer, format, level string) error {
	format = strings.ToLower(format)
	switch format {
	case FormatPlain, FormatJSON:
	default:
		return fmt.Errorf("log: unsupported format %q", format)
	}
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		return fmt.Errorf("log: %w", err)
	}
	if lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}

	mu.Lock()
	logger = newLogger(w, format, lvl)
	mu.Unlock()
	return nil
}

func SetLevel(l Level) {
	mu.Lock()
	defer mu.Unlock()
	switch l {
	case LevelDebug:
		logger = logger.Level(zerolog.DebugLevel)
	case LevelError:
		logger = logger.Level(zerolog.ErrorLevel)
	default:
		logger = logger.Level(zerolog.InfoLevel)
	}
}

func Debug(msg string, kv ...any) {
	l := current()
	emit(l.Debug(), msg, kv)
}

func Info(msg string, kv ...any) {
	l := current()
	emit(l.Info(), msg, kv)
}

func Error(msg string, err error, kv ...any) {
	l := current()
	emit(l.Error().Err(err), msg, kv)
}

func current() *zerolog.Logger {
	mu.RLock()
	l := logger
	mu.RUnlock()
	return &l
}

// emit attaches kv as key/value pairs. Non-string keys are skipped and an
// odd trailing value is ignored.
func emit(e *zerolog.Event, msg string, kv []any) {
	if e == nil {
		return
	}
	for i := 0; i+1 < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			continue
		}
		e = e.Interface(key, kv[i+1])
	}
	e.Msg(msg)
}
