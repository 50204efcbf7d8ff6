package logger

import (
	"os"
	"time"

	"github.com/expertdev121/givesuite-sub003/internal/config"

	"github.com/rs/zerolog"
)

// New builds the application logger from config.
func New(cfg config.LogConfig) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339

	var l zerolog.Logger
	if cfg.Pretty {
		l = zerolog.New(zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		})
	} else {
		l = zerolog.New(os.Stdout)
	}

	return l.With().
		Timestamp().
		Str("service", "pledgebook").
		Logger()
}
