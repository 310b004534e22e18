package scheduler

import (
	"github.com/go-co-op/gocron/v2"
	"github.com/rs/zerolog"
)

// cronLogger routes gocron's internal logging into zerolog. gocron passes
// slog-style key/value pairs which zerolog's Fields accepts as is.
type cronLogger struct {
	logger zerolog.Logger
}

var _ gocron.Logger = cronLogger{}

func newCronLogger(l zerolog.Logger) cronLogger {
	return cronLogger{logger: l.With().Str("source", "gocron").Logger()}
}

func (c cronLogger) Debug(msg string, args ...any) { c.logger.Debug().Fields(args).Msg(msg) }
func (c cronLogger) Info(msg string, args ...any)  { c.logger.Info().Fields(args).Msg(msg) }
func (c cronLogger) Warn(msg string, args ...any)  { c.logger.Warn().Fields(args).Msg(msg) }
func (c cronLogger) Error(msg string, args ...any) { c.logger.Error().Fields(args).Msg(msg) }
