package logger

import (
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Debugf function
func Debugf(format string, v ...interface{}) {
	log.Debug().Timestamp().Msgf(format, v...)
}

// Warnf logs at warn level. The Sentry hook reports these as messages.
func Warnf(format string, v ...interface{}) {
	log.Warn().Timestamp().Msgf(format, v...)
}

// Errorf function
func Errorf(format string, v ...interface{}) {
	log.Error().Timestamp().Msgf(format, v...)
}

// Errors logs an error value, including the eris stack when present.
func Errors(err error) {
	log.Error().Timestamp().Err(err).Send()
}

// With returns a child logger carrying the given fields. Used to tag all lines of one
// validation run or rollback with the same identifiers.
func With(kv map[string]interface{}) zerolog.Logger {
	return log.Logger.With().Fields(kv).Logger()
}
