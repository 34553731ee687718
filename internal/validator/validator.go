// Package validator runs the end-to-end checklist of an installed deployment.
//
// The ten checks always run in the same order and one at a time. A failed hard check adds
// its fixed issue string to the result; soft checks only log and always pass.
package validator

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/chatia/deploykit/internal/deployment"
	"github.com/chatia/deploykit/internal/pm2"
	"github.com/chatia/deploykit/internal/shell"
	"github.com/chatia/deploykit/internal/systemd"
	"github.com/chatia/deploykit/pkg/logger"
	"github.com/chatia/deploykit/pkg/printer"
)

// Issue strings, one per check, reported verbatim.
const (
	IssuePM2       = "PM2 services are not all online"
	IssueDatabase  = "PostgreSQL database is not reachable"
	IssueRedis     = "Redis is not responding"
	IssueBackend   = "Backend HTTP is not responding"
	IssueFrontend  = "Frontend HTTP is not responding"
	IssueNginx     = "Nginx is not proxying correctly"
	IssueSocketIO  = "Socket.IO is not connecting"
	IssueAuth      = "JWT authentication is not working"
	IssueBullQueue = "Bull queue board is not reachable"
	IssueFiles     = "File structure is incomplete"
)

// LogFunc receives every human-readable report line.
type LogFunc func(line string)

// Timeouts bounds each blocking call of a check.
type Timeouts struct {
	Database     time.Duration
	Cache        time.Duration
	HTTP         time.Duration
	Proxy        time.Duration
	RealtimeWait time.Duration
}

// DefaultTimeouts are the per-call bounds used by the installer.
func DefaultTimeouts() Timeouts {
	return Timeouts{
		Database:     5 * time.Second,
		Cache:        5 * time.Second,
		HTTP:         10 * time.Second,
		Proxy:        5 * time.Second,
		RealtimeWait: 5 * time.Second,
	}
}

const defaultSettleDelay = 2 * time.Second

// CheckResult is the outcome of one check.
type CheckResult struct {
	Name     string
	Passed   bool
	Critical bool
}

// Result is the outcome of a full run. Success is true iff Issues is empty.
type Result struct {
	RunID   string
	Success bool
	Issues  []string
	Checks  []CheckResult
}

type Validator struct {
	dep      deployment.Deployment
	log      LogFunc
	runner   shell.Runner
	pm2      *pm2.Client
	systemd  *systemd.Client
	http     *http.Client
	caps     Capabilities
	tables   TableLister
	cache    CachePinger
	settle   time.Duration
	timeouts Timeouts
	lg       zerolog.Logger
}

type Option func(*Validator)

// WithLog replaces the default stdout line sink.
func WithLog(fn LogFunc) Option {
	return func(v *Validator) { v.log = fn }
}

func WithRunner(r shell.Runner) Option {
	return func(v *Validator) { v.runner = r }
}

func WithHTTPClient(c *http.Client) Option {
	return func(v *Validator) { v.http = c }
}

func WithCapabilities(c Capabilities) Option {
	return func(v *Validator) { v.caps = c }
}

func WithTableLister(t TableLister) Option {
	return func(v *Validator) { v.tables = t }
}

func WithCachePinger(c CachePinger) Option {
	return func(v *Validator) { v.cache = c }
}

// WithSettleDelay sets the pause between the realtime handshake and the disconnect.
func WithSettleDelay(d time.Duration) Option {
	return func(v *Validator) { v.settle = d }
}

func WithTimeouts(t Timeouts) Option {
	return func(v *Validator) { v.timeouts = t }
}

func New(dep deployment.Deployment, opts ...Option) *Validator {
	v := &Validator{
		dep:      dep,
		log:      printer.Println,
		runner:   shell.New(),
		http:     &http.Client{},
		caps:     Capabilities{TableInspection: true, Realtime: true},
		tables:   pgxTableLister{},
		cache:    redisPinger{},
		settle:   defaultSettleDelay,
		timeouts: DefaultTimeouts(),
	}
	for _, opt := range opts {
		opt(v)
	}
	v.pm2 = pm2.New(v.runner)
	v.systemd = systemd.New(v.runner)
	return v
}

type check struct {
	name     string
	issue    string
	critical bool
	run      func(ctx context.Context) bool
}

func (v *Validator) checks() []check {
	return []check{
		{name: "pm2", issue: IssuePM2, critical: true, run: v.checkPM2},
		{name: "database", issue: IssueDatabase, critical: true, run: v.checkDatabase},
		{name: "redis", issue: IssueRedis, critical: true, run: v.checkRedis},
		{name: "backend_http", issue: IssueBackend, critical: true, run: v.checkBackendHTTP},
		{name: "frontend_http", issue: IssueFrontend, run: v.checkFrontendHTTP},
		{name: "nginx", issue: IssueNginx, critical: true, run: v.checkNginx},
		{name: "socketio", issue: IssueSocketIO, run: v.checkSocketIO},
		{name: "auth", issue: IssueAuth, run: v.checkAuth},
		{name: "bull_queue", issue: IssueBullQueue, run: v.checkBullQueue},
		{name: "file_structure", issue: IssueFiles, critical: true, run: v.checkFileStructure},
	}
}

// ValidateAll runs every check in order and collects the issues of the failed ones.
func (v *Validator) ValidateAll(ctx context.Context) Result {
	res := Result{RunID: uuid.NewString(), Issues: []string{}}
	v.lg = logger.With(map[string]interface{}{"run_id": res.RunID, "slug": v.dep.Slug})

	v.info("Starting full E2E validation...")
	for _, c := range v.checks() {
		passed := v.runCheck(ctx, c)
		v.lg.Debug().Str("check", c.name).Bool("passed", passed).Msg("check finished")

		res.Checks = append(res.Checks, CheckResult{Name: c.name, Passed: passed, Critical: c.critical})
		if !passed {
			res.Issues = append(res.Issues, c.issue)
		}
	}
	res.Success = len(res.Issues) == 0

	if res.Success {
		v.pass("E2E validation passed every check!")
	} else {
		v.fail("E2E validation failed with %d issue(s):", len(res.Issues))
		for _, issue := range res.Issues {
			v.log(printer.ItemLine(issue))
		}
	}
	return res
}

// runCheck turns a panic inside a check into a failure for hard checks and a pass for the
// best-effort ones.
func (v *Validator) runCheck(ctx context.Context, c check) (passed bool) {
	defer func() {
		if r := recover(); r != nil {
			v.lg.Error().Str("check", c.name).Interface("panic", r).Msg("check panicked")
			if c.critical {
				v.fail("Unexpected error in %s check: %v", c.name, r)
				passed = false
				return
			}
			v.warn("Unexpected error in %s check: %v (non-critical)", c.name, r)
			passed = true
		}
	}()
	return c.run(ctx)
}

func (v *Validator) pass(format string, args ...any) {
	v.log(printer.SuccessLine(fmt.Sprintf(format, args...)))
}

func (v *Validator) fail(format string, args ...any) {
	v.log(printer.ErrorLine(fmt.Sprintf(format, args...)))
}

func (v *Validator) warn(format string, args ...any) {
	v.log(printer.WarnLine(fmt.Sprintf(format, args...)))
}

func (v *Validator) info(format string, args ...any) {
	v.log(printer.InfoLine(fmt.Sprintf(format, args...)))
}
