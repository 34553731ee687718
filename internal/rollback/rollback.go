// Package rollback snapshots a deployment before an install and puts it back when the
// install fails.
package rollback

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/otiai10/copy"
	"github.com/rotisserie/eris"

	"github.com/chatia/deploykit/internal/deployment"
	"github.com/chatia/deploykit/internal/pm2"
	"github.com/chatia/deploykit/internal/shell"
	"github.com/chatia/deploykit/internal/state"
	"github.com/chatia/deploykit/internal/systemd"
	"github.com/chatia/deploykit/pkg/logger"
	"github.com/chatia/deploykit/pkg/printer"
)

const proxyUnit = "nginx"

// LogFunc receives every human-readable progress line.
type LogFunc func(line string)

type Manager struct {
	dep     deployment.Deployment
	log     LogFunc
	runner  shell.Runner
	pm2     *pm2.Client
	systemd *systemd.Client
	now     func() time.Time
	store   state.Store
	state   *state.InstallState
}

type Option func(*Manager)

// WithLog replaces the default stdout line sink.
func WithLog(fn LogFunc) Option {
	return func(m *Manager) { m.log = fn }
}

func WithRunner(r shell.Runner) Option {
	return func(m *Manager) { m.runner = r }
}

// WithClock sets the time source used for started_at.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// New loads the install state of dep. An unreadable state file is reported and replaced by
// an empty record.
func New(dep deployment.Deployment, opts ...Option) (*Manager, error) {
	if err := deployment.ValidateSlug(dep.Slug); err != nil {
		return nil, err
	}

	m := &Manager{
		dep:    dep,
		log:    printer.Println,
		runner: shell.New(),
		now:    time.Now,
		store:  state.Store{Path: dep.StateFile},
	}
	for _, opt := range opts {
		opt(m)
	}
	m.pm2 = pm2.New(m.runner)
	m.systemd = systemd.New(m.runner)

	st, err := m.store.Load()
	if err != nil {
		logger.Errors(err)
		m.warn("Could not read install state, starting from an empty one: %v", err)
		st = state.New()
	}
	m.state = st
	return m, nil
}

// State returns a copy of the current install state.
func (m *Manager) State() state.InstallState {
	st := *m.state
	st.StepsCompleted = append([]string{}, m.state.StepsCompleted...)
	st.ServicesStopped = append([]string{}, m.state.ServicesStopped...)
	return st
}

// MarkStepCompleted records step once. Recording it again is a no-op.
func (m *Manager) MarkStepCompleted(step string) error {
	if !m.state.MarkStep(step) {
		return nil
	}
	if err := m.store.Save(m.state); err != nil {
		return err
	}
	m.pass("Step marked as completed: %s", step)
	return nil
}

// CreateBackup replaces the snapshot with the current deployment tree and proxy config and
// records the backup in the install state.
func (m *Manager) CreateBackup(ctx context.Context) bool {
	m.info("Creating system backup...")
	if err := m.createBackup(ctx); err != nil {
		logger.Errors(err)
		m.fail("Error creating backup: %v", err)
		return false
	}
	return true
}

func (m *Manager) createBackup(ctx context.Context) error {
	if err := os.RemoveAll(m.dep.BackupPath); err != nil {
		return eris.Wrapf(err, "failed to remove old backup %q", m.dep.BackupPath)
	}

	if exists(m.dep.BasePath) {
		if err := copyTree(m.dep.BasePath, m.dep.BackupPath); err != nil {
			return err
		}
		m.pass("Backup created at: %s", m.dep.BackupPath)
	} else {
		m.info("No previous system found, skipping backup")
	}

	if exists(m.dep.ProxyConfig) {
		if err := os.MkdirAll(m.dep.BackupPath, 0o755); err != nil {
			return eris.Wrapf(err, "failed to create backup directory %q", m.dep.BackupPath)
		}
		if err := copyResolved(m.dep.ProxyConfig, m.dep.BackupProxyConfig()); err != nil {
			return err
		}
		m.pass("Nginx config backup created")
	}

	// a missing pm2 must not block the install
	if err := m.pm2.Save(ctx); err != nil {
		logger.Debugf("pm2 save skipped: %v", err)
	} else {
		m.pass("PM2 state saved")
	}

	now := m.now()
	m.state.BackupCreated = true
	m.state.StartedAt = &now
	return m.store.Save(m.state)
}

// Rollback stops the services, restores the snapshot and clears the install state. Every
// step is attempted; a failing step is logged and the next one still runs.
func (m *Manager) Rollback(ctx context.Context) {
	m.info("Starting installation rollback...")

	m.stopServices(ctx)
	m.restoreFiles()
	m.restoreProxy(ctx)
	m.restorePM2(ctx)
	m.cleanupState()

	m.pass("Rollback finished")
}

func (m *Manager) stopServices(ctx context.Context) {
	m.info("Stopping PM2 services...")
	if err := m.pm2.StopAll(ctx); err != nil {
		m.warn("Error stopping PM2 services: %v", err)
		return
	}
	if err := m.pm2.Delete(ctx, m.dep.ServiceName); err != nil {
		m.warn("Error stopping PM2 services: %v", err)
		return
	}
	m.pass("PM2 services stopped")
}

func (m *Manager) restoreFiles() {
	if !exists(m.dep.BackupPath) {
		m.info("No backup found, skipping file restore")
		return
	}

	m.info("Restoring files from backup...")
	if err := os.RemoveAll(m.dep.BasePath); err != nil {
		m.fail("Error restoring files: %v", eris.Wrapf(err, "failed to remove %q", m.dep.BasePath))
		return
	}
	if err := copyTree(m.dep.BackupPath, m.dep.BasePath); err != nil {
		m.fail("Error restoring files: %v", err)
		return
	}
	m.pass("Files restored from backup")
}

func (m *Manager) restoreProxy(ctx context.Context) {
	if exists(m.dep.BackupProxyConfig()) {
		m.info("Restoring Nginx config...")
		if err := m.writeProxyConfig(); err != nil {
			m.warn("Error restoring Nginx: %v", err)
			return
		}
		if err := m.systemd.Reload(ctx, proxyUnit); err != nil {
			m.warn("Error restoring Nginx: %v", err)
			return
		}
		m.pass("Nginx config restored")
		return
	}

	// the install created a config that did not exist before
	if !exists(m.dep.ProxyConfig) {
		return
	}
	if err := os.Remove(m.dep.ProxyConfig); err != nil {
		m.warn("Error restoring Nginx: %v", err)
		return
	}
	if err := m.systemd.Reload(ctx, proxyUnit); err != nil {
		m.warn("Error restoring Nginx: %v", err)
		return
	}
	m.pass("Nginx config removed")
}

func (m *Manager) restorePM2(ctx context.Context) {
	m.info("Restoring PM2 processes...")
	if err := m.pm2.Resurrect(ctx); err != nil {
		m.warn("Error restoring PM2: %v", err)
		return
	}
	m.pass("PM2 processes restored")
}

func (m *Manager) cleanupState() {
	if err := m.store.Remove(); err != nil {
		m.warn("Error cleaning state: %v", err)
		return
	}
	m.state = state.New()
	m.pass("Installation state cleaned")
}

// writeProxyConfig puts the backed up proxy config back. A live symlink into
// sites-available is kept and its target is rewritten; a dangling one is replaced by a file.
func (m *Manager) writeProxyConfig() error {
	dst := m.dep.ProxyConfig
	if info, err := os.Lstat(dst); err == nil && info.Mode()&os.ModeSymlink != 0 {
		target, err := filepath.EvalSymlinks(dst)
		if err == nil {
			dst = target
		} else if err := os.Remove(dst); err != nil {
			return eris.Wrapf(err, "failed to remove dangling link %q", dst)
		}
	}
	return copyResolved(m.dep.BackupProxyConfig(), dst)
}

// copyResolved copies the content behind src, following symlinks.
func copyResolved(src, dst string) error {
	resolved, err := filepath.EvalSymlinks(src)
	if err != nil {
		return eris.Wrapf(err, "failed to resolve %q", src)
	}
	opts := copy.Options{
		OnSymlink: func(string) copy.SymlinkAction { return copy.Deep },
	}
	if err := copy.Copy(resolved, dst, opts); err != nil {
		return eris.Wrapf(err, "failed to copy %q to %q", src, dst)
	}
	return nil
}

// copyTree copies a file or directory, keeping symlinks as links.
func copyTree(src, dst string) error {
	opts := copy.Options{
		OnSymlink: func(string) copy.SymlinkAction { return copy.Shallow },
	}
	if err := copy.Copy(src, dst, opts); err != nil {
		return eris.Wrapf(err, "failed to copy %q to %q", src, dst)
	}
	return nil
}

func exists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}

func (m *Manager) pass(format string, args ...any) {
	m.log(printer.SuccessLine(fmt.Sprintf(format, args...)))
}

func (m *Manager) fail(format string, args ...any) {
	logger.Errorf(format, args...)
	m.log(printer.ErrorLine(fmt.Sprintf(format, args...)))
}

func (m *Manager) warn(format string, args ...any) {
	logger.Warnf(format, args...)
	m.log(printer.WarnLine(fmt.Sprintf(format, args...)))
}

func (m *Manager) info(format string, args ...any) {
	m.log(printer.InfoLine(fmt.Sprintf(format, args...)))
}
