// Package deployment maps a deployment slug to the paths, ports and service names the
// installer uses for it.
package deployment

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/chatia/deploykit/internal/config"
)

const (
	backupSuffix        = "_backup"
	stateFileSuffix     = "_install_state.json"
	serviceSuffix       = "-backend"
	backupProxyFilename = "nginx_config.conf"
	envFilename         = ".env"
)

// Deployment is the identity of one installed application. The mapping from the slug is a
// fixed convention; the ports in particular do not depend on the slug.
type Deployment struct {
	Slug         string
	BasePath     string
	BackupPath   string
	StateFile    string
	ProxyConfig  string
	BackendPort  int
	FrontendPort int
	ServiceName  string
	BackendURL   string
	FrontendURL  string
	ProxyURL     string
	DatabaseName string
}

// New derives the deployment identity of slug from cfg.
func New(slug string, cfg *config.Config) Deployment {
	return Deployment{
		Slug:         slug,
		BasePath:     filepath.Join(cfg.DeployRoot, slug),
		BackupPath:   filepath.Join(cfg.DeployRoot, slug+backupSuffix),
		StateFile:    filepath.Join(cfg.StateDir, slug+stateFileSuffix),
		ProxyConfig:  filepath.Join(cfg.NginxSitesDir, slug),
		BackendPort:  cfg.BackendPort,
		FrontendPort: cfg.FrontendPort,
		ServiceName:  slug + serviceSuffix,
		BackendURL:   fmt.Sprintf("http://localhost:%d", cfg.BackendPort),
		FrontendURL:  fmt.Sprintf("http://localhost:%d", cfg.FrontendPort),
		ProxyURL:     cfg.ProxyURL,
		DatabaseName: slug + "_" + cfg.DBNameSuffix,
	}
}

// ReservedSlugs are subcommand names of the CLIs; a deployment with one of them as slug
// could not be addressed positionally.
var ReservedSlugs = []string{"doctor", "help", "completion"}

// ValidateSlug rejects slugs that would move the derived paths outside their roots and the
// reserved subcommand names.
func ValidateSlug(slug string) error {
	switch {
	case slug == "":
		return eris.New("slug cannot be empty")
	case strings.ContainsAny(slug, `/\`):
		return eris.Errorf("slug %q must not contain path separators", slug)
	case slug == "." || strings.Contains(slug, ".."):
		return eris.Errorf("slug %q must not contain '..'", slug)
	case slices.Contains(ReservedSlugs, slug):
		return eris.Errorf("slug %q is reserved", slug)
	}
	return nil
}

// EnvFile is the backend's .env file.
func (d Deployment) EnvFile() string {
	return filepath.Join(d.BasePath, "backend", envFilename)
}

// BackupProxyConfig is where the reverse-proxy config is kept inside the snapshot.
func (d Deployment) BackupProxyConfig() string {
	return filepath.Join(d.BackupPath, backupProxyFilename)
}
