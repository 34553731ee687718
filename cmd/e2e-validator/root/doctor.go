package root

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/chatia/deploykit/internal/dependency"
	"github.com/chatia/deploykit/internal/shell"
	"github.com/chatia/deploykit/pkg/logger"
	"github.com/chatia/deploykit/pkg/printer"
)

// ErrMissingDependencies is returned by doctor when a required tool is not installed.
var ErrMissingDependencies = errors.New("missing dependencies")

var DoctorDeps = []dependency.Dependency{
	dependency.PM2,
	dependency.Sudo,
	dependency.Psql,
	dependency.Systemctl,
}

// doctorCmd checks that the tools the checks shell out to are installed
// Usage: `e2e-validator doctor`
func doctorCmd(runner shell.Runner) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check that required dependencies are installed",
		Long: `Check that required dependencies are installed.

The validator and the rollback manager require the following tools:
- PM2
- sudo
- PostgreSQL client (psql)
- systemd (systemctl)`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger.SetDebugMode(cmd)

			status, err := dependency.Check(cmd.Context(), runner, DoctorDeps...)
			depList, help := dependency.PrintStatus(status)

			printer.Headerln("--- deploykit doctor ---")
			printer.Infoln("Checking dependencies...")
			printer.Infoln(depList)
			if help != "" {
				printer.Infoln(help)
			}

			if err != nil {
				logger.Errors(err)
				return ErrMissingDependencies
			}
			return nil
		},
	}
}
