package telemetry

import (
	"errors"
	"slices"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const sentryFlushTimeout = 5 * time.Second

var (
	sentryInitialized bool
)

// SentryHook forwards error and warning log events to Sentry once SentryInit succeeded.
type SentryHook struct{}

// Run is called for every log event and implements the zerolog.Hook interface
func (h SentryHook) Run(_ *zerolog.Event, level zerolog.Level, msg string) {
	if !sentryInitialized || !slices.Contains(h.Levels(), level) {
		return
	}

	switch level { //nolint:exhaustive // only the levels from Levels() reach here
	case zerolog.ErrorLevel, zerolog.FatalLevel, zerolog.PanicLevel:
		sentry.CaptureException(errors.New(msg))
	case zerolog.WarnLevel:
		sentry.CaptureMessage(msg)
	}
}

// Levels returns the log levels that this hook should be triggered for
func (h SentryHook) Levels() []zerolog.Level {
	return []zerolog.Level{zerolog.ErrorLevel, zerolog.FatalLevel, zerolog.PanicLevel, zerolog.WarnLevel}
}

// SentryInit initializes sentry. An empty DSN leaves reporting disabled.
func SentryInit(sentryDsn, release string) {
	if sentryDsn == "" {
		return
	}
	err := sentry.Init(sentry.ClientOptions{
		Dsn:              sentryDsn,
		Release:          release,
		AttachStacktrace: true,
	})
	if err != nil {
		log.Err(err).Msg("Cannot initialize sentry")
		return
	}
	sentryInitialized = true
}

// SentryFlush reports a pending panic and flushes buffered events before exit.
func SentryFlush() {
	if !sentryInitialized {
		return
	}
	if err := recover(); err != nil {
		sentry.CurrentHub().Recover(err)
	}
	sentry.Flush(sentryFlushTimeout)
	sentryInitialized = false
}
