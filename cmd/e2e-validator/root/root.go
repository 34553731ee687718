package root

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/chatia/deploykit/internal/config"
	"github.com/chatia/deploykit/internal/deployment"
	"github.com/chatia/deploykit/internal/shell"
	"github.com/chatia/deploykit/internal/validator"
	"github.com/chatia/deploykit/pkg/logger"
	"github.com/chatia/deploykit/pkg/printer"
)

const (
	flagSkipTables   = "skip-tables"
	flagSkipRealtime = "skip-realtime"
	flagMetricsFile  = "metrics-file"
)

var AppVersion = "dev"

// ErrValidationFailed is returned when at least one hard check failed. The report already
// explains why, so Execute does not print it again.
var ErrValidationFailed = errors.New("validation failed")

// NewRootCmd builds the command tree. runner is used by the checks and by doctor; opts are
// applied to the validator after the flags.
// Usage: `e2e-validator [slug]`
func NewRootCmd(runner shell.Runner, opts ...validator.Option) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "e2e-validator [slug]",
		Short: "Validate an installed deployment end to end",
		Long: `Validate an installed deployment end to end.

Runs the PM2, PostgreSQL, Redis, backend, frontend, Nginx, Socket.IO, authentication,
Bull board and file structure checks for the deployment named by slug and exits 1
when a critical check fails.`,
		Args:          cobra.MaximumNArgs(1),
		Version:       AppVersion,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger.SetDebugMode(cmd)

			cfg, err := config.GetConfig(cmd)
			if err != nil {
				return err
			}

			slug := cfg.DefaultSlug
			if len(args) == 1 {
				slug = args[0]
			}
			if err := deployment.ValidateSlug(slug); err != nil {
				return err
			}

			caps := validator.DetectCapabilities(cfg)
			if skip, _ := cmd.Flags().GetBool(flagSkipTables); skip {
				caps.TableInspection = false
			}
			if skip, _ := cmd.Flags().GetBool(flagSkipRealtime); skip {
				caps.Realtime = false
			}

			dep := deployment.New(slug, cfg)
			base := []validator.Option{validator.WithRunner(runner), validator.WithCapabilities(caps)}
			res := validator.New(dep, append(base, opts...)...).ValidateAll(cmd.Context())

			if path, _ := cmd.Flags().GetString(flagMetricsFile); path != "" {
				if err := validator.WriteMetrics(path, slug, res); err != nil {
					logger.Errors(err)
					printer.Println(printer.WarnLine("Could not write metrics: " + err.Error()))
				}
			}

			if !res.Success {
				return ErrValidationFailed
			}
			return nil
		},
	}

	rootCmd.Flags().Bool(flagSkipTables, false, "Skip the critical table inspection of the database check")
	rootCmd.Flags().Bool(flagSkipRealtime, false, "Skip the Socket.IO handshake")
	rootCmd.Flags().String(flagMetricsFile, "", "Write the results as a Prometheus textfile to this path")

	config.AddConfigFlag(rootCmd)
	logger.AddLogFlag(rootCmd)

	rootCmd.AddCommand(doctorCmd(runner))

	return rootCmd
}

// Execute runs the command line and returns the process exit code.
func Execute(ctx context.Context, args []string, runner shell.Runner, opts ...validator.Option) int {
	// print log stack
	defer logger.PrintLogs()

	cmd := NewRootCmd(runner, opts...)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(ctx)

	switch {
	case err == nil:
		return 0
	case errors.Is(err, ErrValidationFailed), errors.Is(err, ErrMissingDependencies):
		return 1
	default:
		logger.Errors(err)
		printer.Errorf("%s", err)
		return 1
	}
}
