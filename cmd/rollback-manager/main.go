package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/chatia/deploykit/cmd/rollback-manager/root"
	"github.com/chatia/deploykit/internal/shell"
	"github.com/chatia/deploykit/telemetry"
)

// This variable will be overridden by ldflags during build
// Example : go build -ldflags "-X main.AppVersion=1.0.0 -X main.SentryDsn=<SENTRY_DSN>"
var (
	AppVersion string
	SentryDsn  string
)

func init() {
	// Set default app version in case not provided by ldflags
	if AppVersion == "" {
		AppVersion = "dev"
	}
	root.AppVersion = AppVersion
}

func main() {
	os.Exit(run())
}

func run() int {
	telemetry.SentryInit(SentryDsn, AppVersion)
	defer telemetry.SentryFlush()

	log.Logger = log.Logger.Hook(telemetry.SentryHook{})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return root.Execute(ctx, os.Args[1:], shell.New())
}
