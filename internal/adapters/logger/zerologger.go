package logger

import (
	"context"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"tradeMetrics/internal/ports"
)

// Output formats understood by New.
const (
	FormatText    = "text"
	FormatJSON    = "json"
	FormatConsole = "console"
)

// ZeroLogger implements ports.Logger on top of zerolog.
type ZeroLogger struct {
	zlog zerolog.Logger
}

// NewZeroLogger creates a zerolog-backed logger writing JSON lines to w, or
// human-readable lines when format is FormatConsole.
func NewZeroLogger(w io.Writer, level LogLevel, format string) *ZeroLogger {
	output := w
	if format == FormatConsole {
		output = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}
	zlog := zerolog.New(output).
		Level(toZerologLevel(level)).
		With().
		Timestamp().
		Str("app", "tradeMetrics").
		Logger()
	return &ZeroLogger{zlog: zlog}
}

// New builds the logger selected by format: the standard log package for
// FormatText (the default), zerolog otherwise. Output goes to os.Stderr.
func New(level LogLevel, format string) ports.Logger {
	switch ParseFormat(format) {
	case FormatJSON:
		return NewZeroLogger(os.Stderr, level, FormatJSON)
	case FormatConsole:
		return NewZeroLogger(os.Stderr, level, FormatConsole)
	default:
		return NewStdLogger(level)
	}
}

// ParseFormat normalizes a format name, falling back to FormatText.
func ParseFormat(format string) string {
	switch f := strings.ToLower(strings.TrimSpace(format)); f {
	case FormatJSON, FormatConsole:
		return f
	case "pretty":
		return FormatConsole
	default:
		return FormatText
	}
}

func toZerologLevel(level LogLevel) zerolog.Level {
	switch level {
	case LevelDebug:
		return zerolog.DebugLevel
	case LevelWarn:
		return zerolog.WarnLevel
	case LevelError:
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

func (l *ZeroLogger) write(e *zerolog.Event, msg string, fields []map[string]interface{}) {
	if len(fields) > 0 && fields[0] != nil {
		e = e.Fields(fields[0])
	}
	e.Msg(msg)
}

// Debug logs a message at Debug level.
func (l *ZeroLogger) Debug(ctx context.Context, msg string, fields ...map[string]interface{}) {
	l.write(l.zlog.Debug().Ctx(ctx), msg, fields)
}

// Info logs a message at Info level.
func (l *ZeroLogger) Info(ctx context.Context, msg string, fields ...map[string]interface{}) {
	l.write(l.zlog.Info().Ctx(ctx), msg, fields)
}

// Warn logs a message at Warning level.
func (l *ZeroLogger) Warn(ctx context.Context, msg string, fields ...map[string]interface{}) {
	l.write(l.zlog.Warn().Ctx(ctx), msg, fields)
}

// Error logs an error message at Error level.
func (l *ZeroLogger) Error(ctx context.Context, err error, msg string, fields ...map[string]interface{}) {
	l.write(l.zlog.Error().Ctx(ctx).Err(err), msg, fields)
}
