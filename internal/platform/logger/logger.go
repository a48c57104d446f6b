package logger

import (
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// Logger es la interfaz mínima que consumen los módulos del servicio.
// La implementación va sobre zerolog; nadie fuera de este paquete depende
// de ella directamente.
type Logger interface {
	With(fields map[string]any) Logger

	Debug(msg string, fields map[string]any)
	Info(msg string, fields map[string]any)
	Warn(msg string, fields map[string]any)
	Error(msg string, fields map[string]any)
}

type Options struct {
	Level  string // debug|info|warn|error (default info)
	Format string // json|text (default text)
	App    string
}

type zeroLogger struct {
	zl zerolog.Logger
}

func New(opts Options) Logger {
	var w = os.Stdout
	zl := zerolog.New(w)
	if strings.ToLower(strings.TrimSpace(opts.Format)) != "json" {
		zl = zerolog.New(zerolog.ConsoleWriter{Out: w, NoColor: true})
	}

	zl = zl.Level(parseLevel(opts.Level)).With().Timestamp().Logger()
	if app := strings.TrimSpace(opts.App); app != "" {
		zl = zl.With().Str("app", app).Logger()
	}

	return &zeroLogger{zl: zl}
}

// NewFromEnv crea el logger desde env:
// - LOG_LEVEL=debug|info|warn|error (default info)
// - LOG_FORMAT=text|json (default text)
// - APP_NAME=disercomi-tramites (opcional)
func NewFromEnv() Logger {
	return New(Options{
		Level:  os.Getenv("LOG_LEVEL"),
		Format: os.Getenv("LOG_FORMAT"),
		App:    os.Getenv("APP_NAME"),
	})
}

// Nop devuelve un logger que descarta todo (útil en tests).
func Nop() Logger {
	return &zeroLogger{zl: zerolog.Nop()}
}

func parseLevel(s string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return zerolog.DebugLevel
	case "info", "":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

func (l *zeroLogger) With(fields map[string]any) Logger {
	if len(fields) == 0 {
		return l
	}
	ctx := l.zl.With()
	for k, v := range fields {
		if strings.TrimSpace(k) == "" {
			continue
		}
		ctx = ctx.Interface(k, v)
	}
	return &zeroLogger{zl: ctx.Logger()}
}

func (l *zeroLogger) Debug(msg string, fields map[string]any) { l.log(l.zl.Debug(), msg, fields) }
func (l *zeroLogger) Info(msg string, fields map[string]any)  { l.log(l.zl.Info(), msg, fields) }
func (l *zeroLogger) Warn(msg string, fields map[string]any)  { l.log(l.zl.Warn(), msg, fields) }
func (l *zeroLogger) Error(msg string, fields map[string]any) { l.log(l.zl.Error(), msg, fields) }

func (l *zeroLogger) log(ev *zerolog.Event, msg string, fields map[string]any) {
	for k, v := range fields {
		if strings.TrimSpace(k) == "" {
			continue
		}
		ev = ev.Interface(k, v)
	}
	ev.Msg(msg)
}
