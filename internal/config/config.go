// Package config loads and persists the mirrorctl tool configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the tool configuration written to config.yml.
type Config struct {
	// MagicMirrorHome is the MagicMirror checkout (contains modules/ and config/).
	MagicMirrorHome string `yaml:"magicmirror_home"`
	// ConfigDir is where the live config.js lives. Defaults to <home>/config.
	ConfigDir string `yaml:"config_dir"`
	// StateDir holds the master config, templates, backups, and history db.
	StateDir string `yaml:"state_dir"`
	// PM2Process is the PM2 process name. Empty means autodetect.
	PM2Process string `yaml:"pm2_process,omitempty"`
	// PagesModule is the module providing page switching.
	PagesModule string `yaml:"pages_module"`
}

// DefaultPath returns the per-user config file location.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "mirrorctl.yml"
	}
	return filepath.Join(home, ".config", "mirrorctl", "config.yml")
}

// Default builds a config from the environment: MAGICMIRROR_HOME overrides
// the conventional ~/MagicMirror location.
func Default() *Config {
	home, _ := os.UserHomeDir()
	mmHome := os.Getenv("MAGICMIRROR_HOME")
	if mmHome == "" {
		mmHome = filepath.Join(home, "MagicMirror")
	}
	return &Config{
		MagicMirrorHome: mmHome,
		ConfigDir:       filepath.Join(mmHome, "config"),
		StateDir:        filepath.Join(home, "my_config"),
		PagesModule:     DefaultPagesModule,
	}
}

// Load reads and parses a config file from the given path. A missing file is
// not an error: the environment-derived defaults are returned instead.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required fields are present.
func (c *Config) Validate() error {
	if c.MagicMirrorHome == "" {
		return fmt.Errorf("magicmirror_home is required")
	}
	if c.ConfigDir == "" {
		return fmt.Errorf("config_dir is required")
	}
	if c.StateDir == "" {
		return fmt.Errorf("state_dir is required")
	}
	if c.PagesModule == "" {
		return fmt.Errorf("pages_module is required")
	}
	return nil
}

// Save writes the config to the given path, creating parent directories as needed.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0640); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}

// ModulesDir is the MagicMirror module checkout directory.
func (c *Config) ModulesDir() string {
	return filepath.Join(c.MagicMirrorHome, "modules")
}

// ActiveConfigPath is the config.js MagicMirror reads.
func (c *Config) ActiveConfigPath() string {
	return filepath.Join(c.ConfigDir, ActiveConfigName)
}

// ActiveBackupPath is the rollback copy of the live config.
func (c *Config) ActiveBackupPath() string {
	return filepath.Join(c.StateDir, ActiveBakName)
}

// MasterPath is the authoritative config that survives sessions.
func (c *Config) MasterPath() string {
	return filepath.Join(c.StateDir, MasterName)
}

// MasterBackupPath is the session-scoped rollback copy of the master.
func (c *Config) MasterBackupPath() string {
	return filepath.Join(c.StateDir, MasterBakName)
}

// TemplatesPath is the module template library directory.
func (c *Config) TemplatesPath() string {
	return filepath.Join(c.StateDir, TemplatesDir)
}

// HistoryDBPath is the sqlite journal location.
func (c *Config) HistoryDBPath() string {
	return filepath.Join(c.StateDir, HistoryDBName)
}

// FragmentPath returns the path of a boilerplate fragment (head, tail, ...).
func (c *Config) FragmentPath(name string) string {
	return filepath.Join(c.StateDir, name)
}

// GeneratedPath names a timestamped generated config inside the state dir.
func (c *Config) GeneratedPath(ts time.Time) string {
	return filepath.Join(c.StateDir, fmt.Sprintf("config.generated.%s.js", ts.Format("20060102-150405")))
}

// ArchiveBackupPath names a timestamped master backup. These accumulate;
// the tool never prunes them.
func (c *Config) ArchiveBackupPath(ts time.Time) string {
	return filepath.Join(c.StateDir, fmt.Sprintf("%s.backup.%s", MasterName, ts.Format("20060102-150405")))
}
