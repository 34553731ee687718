package validator

import (
	"context"
	"errors"
	"slices"
	"strings"

	"github.com/chatia/deploykit/internal/envfile"
	"github.com/chatia/deploykit/internal/pm2"
	"github.com/chatia/deploykit/internal/shell"
	"github.com/chatia/deploykit/internal/systemd"
)

const (
	proxyUnit  = "nginx"
	redisReply = "PONG"
)

// CriticalTables must exist once the backend migrations ran. Their absence is only a
// warning because a fresh install may not have migrated yet.
var CriticalTables = []string{"Users", "Companies", "Tickets", "Contacts", "Messages", "Whatsapps"}

func (v *Validator) checkPM2(ctx context.Context) bool {
	procs, err := v.pm2.List(ctx)
	if errors.Is(err, pm2.ErrNotRunning) {
		v.fail("PM2 is not running")
		return false
	}
	if err != nil {
		v.fail("Error validating PM2: %v", err)
		return false
	}

	proc, ok := pm2.Find(procs, v.dep.ServiceName)
	if !ok {
		v.fail("Service %s was not found in PM2", v.dep.ServiceName)
		return false
	}
	if !proc.Online() {
		v.fail("Service %s is not online: %s", v.dep.ServiceName, proc.Status)
		return false
	}

	v.pass("All PM2 services are online")
	return true
}

func (v *Validator) checkDatabase(ctx context.Context) bool {
	probeCtx, cancel := shell.WithTimeout(ctx, v.timeouts.Database)
	defer cancel()

	res, err := v.runner.Run(probeCtx, "sudo", "-u", "postgres", "psql", "-c", "SELECT 1;")
	if err != nil {
		v.fail("Error validating database: %v", err)
		return false
	}
	if !res.OK() {
		v.fail("PostgreSQL is not responding: %s", strings.TrimSpace(res.Stderr))
		return false
	}

	if !v.caps.TableInspection {
		v.pass("PostgreSQL is reachable (table inspection unavailable, table check skipped)")
		return true
	}

	if err := v.inspectTables(ctx); err != nil {
		v.warn("Could not inspect database tables: %v (non-critical)", err)
		return true
	}
	v.pass("PostgreSQL database is reachable and complete")
	return true
}

// inspectTables warns about every missing critical table. Only connection and query
// errors are returned.
func (v *Validator) inspectTables(ctx context.Context) error {
	env, err := envfile.Read(v.dep.EnvFile())
	if err != nil {
		return err
	}
	params := env.DatabaseParams(v.dep.DatabaseName)

	ctx, cancel := shell.WithTimeout(ctx, v.timeouts.Database)
	defer cancel()

	existing, err := v.tables.ListTables(ctx, params)
	if err != nil {
		return err
	}
	for _, table := range CriticalTables {
		if !slices.Contains(existing, table) {
			v.warn("Critical table missing: %s (non-critical on a fresh install)", table)
		}
	}
	return nil
}

func (v *Validator) checkRedis(ctx context.Context) bool {
	env, err := envfile.Read(v.dep.EnvFile())
	if err != nil {
		v.lg.Debug().Err(err).Msg("using default cache parameters")
		env = envfile.Values{}
	}

	ctx, cancel := shell.WithTimeout(ctx, v.timeouts.Cache)
	defer cancel()

	reply, err := v.cache.Ping(ctx, env.CacheParams())
	if err != nil {
		v.fail("Error validating Redis: %v", err)
		return false
	}
	if strings.TrimSpace(reply) != redisReply {
		v.fail("Redis did not answer correctly: %q", reply)
		return false
	}
	v.pass("Redis is responding")
	return true
}

func (v *Validator) checkNginx(ctx context.Context) bool {
	state, err := v.systemd.IsActive(ctx, proxyUnit)
	if err != nil {
		v.fail("Error validating Nginx: %v", err)
		return false
	}
	if state != systemd.StateActive {
		v.fail("Nginx is not active: %s", state)
		return false
	}
	v.pass("Nginx is running")

	// informational only, the outcome is already decided
	status, err := v.get(ctx, v.dep.ProxyURL, v.timeouts.Proxy, false)
	switch {
	case err != nil:
		v.warn("Nginx is running but did not answer on %s", v.dep.ProxyURL)
	case slices.Contains([]int{200, 301, 302, 404}, status):
		v.pass("Nginx is proxying correctly")
	default:
		v.warn("Nginx answered on %s with status %d", v.dep.ProxyURL, status)
	}
	return true
}
