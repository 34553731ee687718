package root

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/chatia/deploykit/internal/config"
	"github.com/chatia/deploykit/internal/deployment"
	"github.com/chatia/deploykit/internal/rollback"
	"github.com/chatia/deploykit/internal/shell"
	"github.com/chatia/deploykit/pkg/logger"
	"github.com/chatia/deploykit/pkg/printer"
)

const Usage = "Usage: rollback-manager [backup|rollback|mark-step] [step_name] [slug]"

var AppVersion = "dev"

var (
	errUsage        = errors.New("invalid action, use: backup, rollback or mark-step")
	errSetup        = errors.New("cannot prepare rollback")
	errBackupFailed = errors.New("backup failed")
)

type cmdContext struct {
	runner shell.Runner
	opts   []rollback.Option
}

// newManager loads the config and the install state of the slug named at args[slugIndex],
// or of the default slug when that argument is absent.
func (c cmdContext) newManager(cmd *cobra.Command, args []string, slugIndex int) (*rollback.Manager, error) {
	logger.SetDebugMode(cmd)

	cfg, err := config.GetConfig(cmd)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errSetup, err)
	}
	slug := cfg.DefaultSlug
	if len(args) > slugIndex {
		slug = args[slugIndex]
	}

	opts := append([]rollback.Option{rollback.WithRunner(c.runner)}, c.opts...)
	m, err := rollback.New(deployment.New(slug, cfg), opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errSetup, err)
	}
	return m, nil
}

// NewRootCmd builds the command tree.
// Usage: `rollback-manager <action>`
func NewRootCmd(runner shell.Runner, opts ...rollback.Option) *cobra.Command {
	c := cmdContext{runner: runner, opts: opts}

	rootCmd := &cobra.Command{
		Use:           "rollback-manager",
		Short:         "Back up a deployment before an install and restore it when the install fails",
		Version:       AppVersion,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(_ *cobra.Command, _ []string) error {
			return errUsage
		},
	}

	// backupCmd snapshots the deployment tree, the Nginx config and the PM2 process list
	// Usage: `rollback-manager backup [slug]`
	backupCmd := &cobra.Command{
		Use:   "backup [slug]",
		Short: "Snapshot the deployment before an install",
		Args:  usageArgs(0, 1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := c.newManager(cmd, args, 0)
			if err != nil {
				return err
			}
			if !m.CreateBackup(cmd.Context()) {
				return errBackupFailed
			}
			return nil
		},
	}

	// rollbackCmd restores the last snapshot
	// Usage: `rollback-manager rollback [slug]`
	rollbackCmd := &cobra.Command{
		Use:   "rollback [slug]",
		Short: "Restore the snapshot taken by backup",
		Args:  usageArgs(0, 1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := c.newManager(cmd, args, 0)
			if err != nil {
				return err
			}
			m.Rollback(cmd.Context())
			return nil
		},
	}

	// markStepCmd records an installer step in the install state
	// Usage: `rollback-manager mark-step <step_name> [slug]`
	markStepCmd := &cobra.Command{
		Use:   "mark-step <step_name> [slug]",
		Short: "Record a completed installer step",
		Args:  usageArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := c.newManager(cmd, args, 1)
			if err != nil {
				return err
			}
			if err := m.MarkStepCompleted(args[0]); err != nil {
				// the installer keeps going without the record
				logger.Errors(err)
				printer.Println(printer.WarnLine("Could not record step: " + err.Error()))
			}
			return nil
		},
	}

	rootCmd.AddCommand(backupCmd, rollbackCmd, markStepCmd)

	config.AddConfigFlag(rootCmd)
	logger.AddLogFlag(rootCmd)

	return rootCmd
}

func usageArgs(minArgs, maxArgs int) cobra.PositionalArgs {
	return func(_ *cobra.Command, args []string) error {
		if len(args) < minArgs || len(args) > maxArgs {
			return errUsage
		}
		return nil
	}
}

// Execute runs the command line and returns the process exit code.
func Execute(ctx context.Context, args []string, runner shell.Runner, opts ...rollback.Option) int {
	// print log stack
	defer logger.PrintLogs()

	cmd := NewRootCmd(runner, opts...)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(ctx)

	switch {
	case err == nil:
		return 0
	case errors.Is(err, errBackupFailed):
		return 1
	case errors.Is(err, errSetup):
		logger.Errors(err)
		printer.Errorf("%s", err)
		return 1
	case errors.Is(err, errUsage):
		printer.Infoln(Usage)
		printer.Infoln(err.Error())
		return 1
	default:
		// rejected by cobra, e.g. an unknown action or flag
		printer.Infoln(Usage)
		printer.Errorf("%s", err)
		return 1
	}
}
