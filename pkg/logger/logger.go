package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Log discards until Init runs, so tests stay quiet.
var Log = zerolog.New(io.Discard)

// Init configures the global logger. Development gets a console writer with
// caller info; every other env writes JSON lines tagged with the app name.
// level is a zerolog level name; empty or unknown means info.
func Init(env, level string) {
	zerolog.TimeFieldFormat = time.RFC3339
	zerolog.DurationFieldUnit = time.Millisecond

	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}

	if env == "development" {
		Log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: "15:04:05"}).
			Level(lvl).
			With().
			Timestamp().
			Caller().
			Logger()
		return
	}

	Log = zerolog.New(os.Stdout).
		Level(lvl).
		With().
		Timestamp().
		Str("app", "kcalbot").
		Str("env", env).
		Logger()
}

// Component returns a child logger tagged with the subsystem name. Take it
// after Init; a logger taken before stays on the old output.
func Component(name string) zerolog.Logger {
	return Log.With().Str("component", name).Logger()
}

func Info() *zerolog.Event {
	return Log.Info()
}

func Error() *zerolog.Event {
	return Log.Error()
}

func Warn() *zerolog.Event {
	return Log.Warn()
}

func Debug() *zerolog.Event {
	return Log.Debug()
}

func Fatal() *zerolog.Event {
	return Log.Fatal()
}
