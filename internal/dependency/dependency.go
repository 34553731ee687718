package dependency

import (
	"context"
	"errors"
	"time"

	"github.com/rotisserie/eris"

	"github.com/chatia/deploykit/internal/shell"
)

const checkTimeout = 5 * time.Second

var (
	PM2 = Dependency{
		Name: "PM2",
		Bin:  "pm2",
		Args: []string{"--version"},
		Help: `PM2 runs the backend process.
Install it with: npm install -g pm2`,
	}
	Psql = Dependency{
		Name: "PostgreSQL client",
		Bin:  "psql",
		Args: []string{"--version"},
		Help: `psql is used to probe the database server.
Install it with: apt-get install postgresql-client`,
	}
	Sudo = Dependency{
		Name: "sudo",
		Bin:  "sudo",
		Args: []string{"--version"},
		Help: `sudo is needed to run psql as the postgres user.`,
	}
	Systemctl = Dependency{
		Name: "systemd",
		Bin:  "systemctl",
		Args: []string{"--version"},
		Help: `systemctl is used to query and reload nginx.`,
	}
	AlwaysFail = Dependency{
		Name: "Always fails",
		Bin:  "false",
		Help: `This dependency check will always fail. It can be used for testing.`,
	}
)

// Dependency is an external tool the validator or the rollback manager shells out to.
type Dependency struct {
	Name string
	Bin  string
	Args []string
	Help string
}

// Check runs the probe command of d.
func (d Dependency) Check(ctx context.Context, runner shell.Runner) error {
	ctx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()

	res, err := runner.Run(ctx, d.Bin, d.Args...)
	if err != nil {
		return eris.Wrapf(err, "dependency check %q failed", d.Name)
	}
	if !res.OK() {
		return eris.Errorf("dependency check %q failed with exit code %d", d.Name, res.ExitCode)
	}
	return nil
}

// Status is the outcome of one dependency check.
type Status struct {
	Dependency
	IsInstalled bool
}

// Check runs every probe and returns one Status per dependency plus the joined errors.
func Check(ctx context.Context, runner shell.Runner, deps ...Dependency) ([]Status, error) {
	var errs []error
	res := make([]Status, 0, len(deps))
	for _, dep := range deps {
		err := dep.Check(ctx, runner)
		res = append(res, Status{Dependency: dep, IsInstalled: err == nil})
		if err != nil {
			errs = append(errs, err)
		}
	}
	return res, errors.Join(errs...)
}
