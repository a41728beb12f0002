package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options controls where and how the application logs.
type Options struct {
	// Level is a zerolog level string (trace, debug, info, warn, error, fatal, panic).
	Level string
	// Format is "json" for production or "pretty" for human-readable dev output.
	Format string
	// File, when set, receives a rotated JSON copy of every log line.
	File string
}

// Setup initializes the global zerolog level and returns the configured logger.
func Setup(opts Options) zerolog.Logger {
	var console io.Writer = os.Stdout
	if opts.Format == "pretty" {
		console = zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		}
	}

	writer := console
	if opts.File != "" {
		writer = zerolog.MultiLevelWriter(console, &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    50,
			MaxBackups: 5,
			MaxAge:     30,
			Compress:   true,
		})
	}

	lvl, err := zerolog.ParseLevel(opts.Level)
	if err != nil || opts.Level == "" {
		lvl = zerolog.InfoLevel
	}

	zerolog.SetGlobalLevel(lvl)

	return zerolog.New(writer).
		With().
		Timestamp().
		Caller().
		Logger()
}
