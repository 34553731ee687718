package config

import (
	"os"

	"github.com/pelletier/go-toml/v2"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/chatia/deploykit/pkg/logger"
)

const (
	ConfigFileEnvVariable = "DEPLOYKIT_CONFIG"
	SystemConfigFile      = "/etc/deploykit/deploykit.toml"

	flagForConfigFile = "config"
)

// Config holds the fixed local conventions of a deployment host. Every field has a default,
// so a missing config file is not an error.
type Config struct {
	DeployRoot    string       `toml:"deploy_root"`
	StateDir      string       `toml:"state_dir"`
	NginxSitesDir string       `toml:"nginx_sites_dir"`
	BackendPort   int          `toml:"backend_port"`
	FrontendPort  int          `toml:"frontend_port"`
	ProxyURL      string       `toml:"proxy_url"`
	DefaultSlug   string       `toml:"default_slug"`
	DBNameSuffix  string       `toml:"db_name_suffix"`
	Capabilities  Capabilities `toml:"capabilities"`
}

// Capabilities switches the optional parts of the validator on or off.
type Capabilities struct {
	TableInspection bool `toml:"table_inspection"`
	Realtime        bool `toml:"realtime"`
}

// Default returns the conventions used by the installer when nothing is configured.
func Default() *Config {
	return &Config{
		DeployRoot:    "/home/deploy",
		StateDir:      "/tmp",
		NginxSitesDir: "/etc/nginx/sites-enabled",
		BackendPort:   8397, //nolint:mnd // installer convention
		FrontendPort:  3398, //nolint:mnd // installer convention
		ProxyURL:      "http://localhost:80",
		DefaultSlug:   "chatia",
		DBNameSuffix:  "chatia",
		Capabilities: Capabilities{
			TableInspection: true,
			Realtime:        true,
		},
	}
}

func AddConfigFlag(cmd *cobra.Command) {
	cmd.PersistentFlags().String(flagForConfigFile, "", "a toml encoded config file")
}

// GetConfig resolves the config file from the --config flag, then DEPLOYKIT_CONFIG, then the
// system path. When none of them exists the defaults are returned.
func GetConfig(cmd *cobra.Command) (*Config, error) {
	// Flag also finds the persistent flag of a parent command
	if f := cmd.Flag(flagForConfigFile); f != nil && f.Changed {
		configFile := f.Value.String()
		if configFile == "" {
			return nil, eris.New("config cannot be empty")
		}
		return loadConfigFromFile(configFile)
	}
	return loadConfig()
}

func loadConfig() (*Config, error) {
	if filename := os.Getenv(ConfigFileEnvVariable); filename != "" {
		return loadConfigFromFile(filename)
	}
	if _, err := os.Stat(SystemConfigFile); os.IsNotExist(err) {
		logger.Debugf("no config file at %q, using defaults", SystemConfigFile)
		return Default(), nil
	}
	return loadConfigFromFile(SystemConfigFile)
}

func loadConfigFromFile(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, eris.Wrapf(err, "failed to read config file %q", filename)
	}

	// decoding over the defaults keeps every key the file does not mention
	cfg := Default()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, eris.Wrapf(err, "failed to parse config file %q", filename)
	}
	if cfg.DeployRoot == "" {
		return nil, eris.New("deploy_root cannot be empty")
	}

	logger.Debugf("successfully loaded config from %q", filename)
	return cfg, nil
}
