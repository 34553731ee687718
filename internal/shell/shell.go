// Package shell runs the external commands the validator and the rollback manager drive.
package shell

import (
	"bytes"
	"context"
	"os/exec"
	"strings"
	"time"

	"github.com/magefile/mage/sh"
	"github.com/rotisserie/eris"

	"github.com/chatia/deploykit/pkg/logger"
)

// Result is the outcome of a command that ran. A non-zero ExitCode is not an error.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// OK reports whether the command exited with status 0.
func (r Result) OK() bool {
	return r.ExitCode == 0
}

// Runner executes a command and waits for it. Run returns an error only when the command
// could not be started or ctx expired before it finished.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (Result, error)
}

type execRunner struct{}

// New returns the Runner backed by os/exec.
func New() Runner {
	return execRunner{}
}

func (execRunner) Run(ctx context.Context, name string, args ...string) (Result, error) {
	var outBuff, errBuff bytes.Buffer

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &outBuff
	cmd.Stderr = &errBuff

	logger.Debugf("exec: %s %s", name, strings.Join(args, " "))
	err := cmd.Run()
	res := Result{
		Stdout:   outBuff.String(),
		Stderr:   errBuff.String(),
		ExitCode: sh.ExitStatus(err),
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return res, eris.Wrapf(ctxErr, "%s %v did not finish", name, args)
	}
	if err != nil && !sh.CmdRan(err) {
		return res, eris.Wrapf(err, "failed to run %s", name)
	}
	return res, nil
}

// WithTimeout is context.WithTimeout; a zero timeout leaves ctx unbounded.
func WithTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}
