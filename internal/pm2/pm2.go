// Package pm2 drives the PM2 process manager through its CLI.
package pm2

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/tidwall/gjson"

	"github.com/chatia/deploykit/internal/shell"
	"github.com/chatia/deploykit/pkg/logger"
)

const (
	StatusOnline = "online"

	ListTimeout    = 10 * time.Second
	SaveTimeout    = 10 * time.Second
	ControlTimeout = 30 * time.Second

	bin = "pm2"
)

// ErrNotRunning is returned by List when pm2 exits non-zero.
var ErrNotRunning = errors.New("pm2 is not running")

// Process is one entry of `pm2 jlist`.
type Process struct {
	ID     int64
	Name   string
	Status string
}

// Online reports whether PM2 considers the process up.
func (p Process) Online() bool {
	return p.Status == StatusOnline
}

type Client struct {
	runner shell.Runner
}

func New(runner shell.Runner) *Client {
	return &Client{runner: runner}
}

// List returns the managed processes.
func (c *Client) List(ctx context.Context) ([]Process, error) {
	ctx, cancel := shell.WithTimeout(ctx, ListTimeout)
	defer cancel()

	res, err := c.runner.Run(ctx, bin, "jlist")
	if err != nil {
		return nil, err
	}
	if !res.OK() {
		return nil, fmt.Errorf("%w: pm2 jlist exited with %d: %s", ErrNotRunning, res.ExitCode, strings.TrimSpace(res.Stderr))
	}
	return ParseList(res.Stdout)
}

// ParseList decodes the JSON printed by `pm2 jlist`.
func ParseList(out string) ([]Process, error) {
	out = strings.TrimSpace(out)
	if !gjson.Valid(out) {
		return nil, eris.New("pm2 jlist did not print valid JSON")
	}
	parsed := gjson.Parse(out)
	if !parsed.IsArray() {
		return nil, eris.New("pm2 jlist did not print a process list")
	}

	items := parsed.Array()
	procs := make([]Process, 0, len(items))
	for _, item := range items {
		procs = append(procs, Process{
			ID:     item.Get("pm_id").Int(),
			Name:   item.Get("name").String(),
			Status: item.Get("pm2_env.status").String(),
		})
	}
	return procs, nil
}

// Find returns the first process called name.
func Find(procs []Process, name string) (Process, bool) {
	for _, p := range procs {
		if p.Name == name {
			return p, true
		}
	}
	return Process{}, false
}

// Save persists the current process list so Resurrect can bring it back.
func (c *Client) Save(ctx context.Context) error {
	return c.control(ctx, SaveTimeout, "save")
}

func (c *Client) StopAll(ctx context.Context) error {
	return c.control(ctx, ControlTimeout, "stop", "all")
}

// Delete removes the process registration called name.
func (c *Client) Delete(ctx context.Context, name string) error {
	return c.control(ctx, ControlTimeout, "delete", name)
}

// Resurrect restarts the process list stored by the last Save.
func (c *Client) Resurrect(ctx context.Context) error {
	return c.control(ctx, ControlTimeout, "resurrect")
}

// control runs a pm2 subcommand. Only a failure to run the command at all is an error;
// pm2 exits non-zero for things like deleting an unknown process, which callers tolerate.
func (c *Client) control(ctx context.Context, timeout time.Duration, args ...string) error {
	ctx, cancel := shell.WithTimeout(ctx, timeout)
	defer cancel()

	res, err := c.runner.Run(ctx, bin, args...)
	if err != nil {
		return err
	}
	if !res.OK() {
		logger.Debugf("pm2 %v exited with %d: %s", args, res.ExitCode, strings.TrimSpace(res.Stderr))
	}
	return nil
}
