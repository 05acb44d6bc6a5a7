package config

import (
	"errors"
	"net"
	"os"
	"time"

	yaml "github.com/goccy/go-yaml"
	"golang.org/x/text/language"
)

// DefaultPath is used when no --config flag is given.
const DefaultPath = "/etc/prismd/config.yaml"

var (
	errListenMustBeSet          = errors.New("http.listen must be set when http is enabled")
	errListenMustBeHostPort     = errors.New("http.listen must be host:port or :port")
	errInvalidLocale            = errors.New("scan.locale is not a valid BCP 47 tag")
	errRescanIntervalNegative   = errors.New("scan.rescan_min_interval must be non-negative")
	errScanOnStartWatchConflict = errors.New("scan.rescan_on_config_change requires a config file path")
)

// LogConfig controls log output.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// HTTPConfig controls the admin HTTP server.
type HTTPConfig struct {
	Enabled bool   `yaml:"enabled"`
	Listen  string `yaml:"listen"`
}

// ScanConfig controls device discovery.
type ScanConfig struct {
	// Strict aborts a scan on the first slot failure instead of skipping it.
	Strict bool `yaml:"strict"`

	// ExclusiveAccess asks the vendor SDK for sole hardware control.
	// Advisory; the SDK declares but does not enforce the capability.
	ExclusiveAccess bool `yaml:"exclusive_access"`

	// Locale overrides the ambient locale used to resolve keyboard legend
	// layouts, as a BCP 47 tag ("de-DE"). Empty means ambient.
	Locale string `yaml:"locale"`

	// RescanOnConfigChange re-runs discovery when the config file changes.
	RescanOnConfigChange bool `yaml:"rescan_on_config_change"`

	// RescanMinInterval rate-limits rescans triggered via the admin API.
	RescanMinInterval time.Duration `yaml:"rescan_min_interval"`
}

// Config is the daemon configuration.
type Config struct {
	AppName string     `yaml:"app_name"`
	Path    string     `yaml:"-"`
	Log     LogConfig  `yaml:"log"`
	HTTP    HTTPConfig `yaml:"http"`
	Scan    ScanConfig `yaml:"scan"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		AppName: "prismd",
		Log:     LogConfig{Level: "info", Format: "json"},
		HTTP:    HTTPConfig{Enabled: true, Listen: ":8687"},
		Scan:    ScanConfig{RescanMinInterval: 5 * time.Second},
	}
}

// Load reads, defaults, and validates a config file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path) //nolint:gosec // config file path comes from the operator
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, err
	}

	cfg.Path = path
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	defaults := Default()

	if c.AppName == "" {
		c.AppName = defaults.AppName
	}

	if c.Log.Level == "" {
		c.Log.Level = defaults.Log.Level
	}

	if c.Log.Format == "" {
		c.Log.Format = defaults.Log.Format
	}

	if c.HTTP.Enabled && c.HTTP.Listen == "" {
		c.HTTP.Listen = defaults.HTTP.Listen
	}

	if c.Scan.RescanMinInterval == 0 {
		c.Scan.RescanMinInterval = defaults.Scan.RescanMinInterval
	}
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	if c.HTTP.Enabled {
		if c.HTTP.Listen == "" {
			return errListenMustBeSet
		}

		if _, _, err := net.SplitHostPort(c.HTTP.Listen); err != nil {
			return errListenMustBeHostPort
		}
	}

	if c.Scan.Locale != "" {
		if _, err := language.Parse(c.Scan.Locale); err != nil {
			return errInvalidLocale
		}
	}

	if c.Scan.RescanMinInterval < 0 {
		return errRescanIntervalNegative
	}

	if c.Scan.RescanOnConfigChange && c.Path == "" {
		return errScanOnStartWatchConflict
	}

	return nil
}
