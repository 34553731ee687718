// Package systemd queries and controls units through systemctl.
package systemd

import (
	"context"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/chatia/deploykit/internal/shell"
)

const (
	StateActive = "active"

	ReloadTimeout = 10 * time.Second
	QueryTimeout  = 10 * time.Second

	bin = "systemctl"
)

type Client struct {
	runner shell.Runner
}

func New(runner shell.Runner) *Client {
	return &Client{runner: runner}
}

// IsActive returns the state printed by `systemctl is-active unit` (active, inactive,
// failed, ...). is-active exits non-zero for every state but active, so the exit code is
// not treated as an error.
func (c *Client) IsActive(ctx context.Context, unit string) (string, error) {
	ctx, cancel := shell.WithTimeout(ctx, QueryTimeout)
	defer cancel()

	res, err := c.runner.Run(ctx, bin, "is-active", unit)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(res.Stdout), nil
}

// Reload asks unit to reload its configuration.
func (c *Client) Reload(ctx context.Context, unit string) error {
	ctx, cancel := shell.WithTimeout(ctx, ReloadTimeout)
	defer cancel()

	res, err := c.runner.Run(ctx, bin, "reload", unit)
	if err != nil {
		return err
	}
	if !res.OK() {
		return eris.Errorf("systemctl reload %s exited with %d: %s", unit, res.ExitCode, strings.TrimSpace(res.Stderr))
	}
	return nil
}
