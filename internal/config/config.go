// ABOUTME: Rehab configuration management with backend selection.
// ABOUTME: Handles the config file, REHAB_* environment overrides, and the store factory.

package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/charmbracelet/log"
	"github.com/harperreed/rehab/internal/ledger"
)

const (
	BackendCharm  = "charm"
	BackendBadger = "badger"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// Backends lists the accepted backend names.
var Backends = []string{BackendCharm, BackendBadger, BackendSQLite, BackendMemory}

const (
	defaultLogLevel = "warn"
	defaultTimeout  = 30 * time.Second
)

// Config stores rehab tool configuration.
type Config struct {
	// Backend selects the ledger backend: "charm" (default), "badger", "sqlite", or "memory".
	Backend string `json:"backend,omitempty"`

	// DataDir is the root directory for local backends.
	// Supports ~ expansion. Defaults to ~/.local/share/rehab.
	DataDir string `json:"data_dir,omitempty"`

	CharmHost string `json:"charm_host,omitempty"`

	// Identity signs writes on backends without an account of their own.
	Identity string `json:"identity,omitempty"`

	AutoSync *bool  `json:"auto_sync,omitempty"`
	LogLevel string `json:"log_level,omitempty"`

	// Timeout bounds each backend call, as a Go duration string.
	Timeout string `json:"timeout,omitempty"`
}

// envOverrides are read after the file and win over it when set.
type envOverrides struct {
	Backend   string `env:"REHAB_BACKEND"`
	DataDir   string `env:"REHAB_DATA_DIR"`
	CharmHost string `env:"REHAB_CHARM_HOST"`
	Identity  string `env:"REHAB_IDENTITY"`
	AutoSync  string `env:"REHAB_AUTO_SYNC"`
	LogLevel  string `env:"REHAB_LOG_LEVEL"`
	Timeout   string `env:"REHAB_TIMEOUT"`
}

// ApplyEnv overlays REHAB_* environment variables onto c.
func (c *Config) ApplyEnv() error {
	var o envOverrides
	if err := env.Parse(&o); err != nil {
		return fmt.Errorf("parse environment: %w", err)
	}

	if o.Backend != "" {
		c.Backend = o.Backend
	}
	if o.DataDir != "" {
		c.DataDir = o.DataDir
	}
	if o.CharmHost != "" {
		c.CharmHost = o.CharmHost
	}
	if o.Identity != "" {
		c.Identity = o.Identity
	}
	if o.AutoSync != "" {
		v, err := strconv.ParseBool(o.AutoSync)
		if err != nil {
			return fmt.Errorf("REHAB_AUTO_SYNC: %w", err)
		}
		c.AutoSync = &v
	}
	if o.LogLevel != "" {
		c.LogLevel = o.LogLevel
	}
	if o.Timeout != "" {
		c.Timeout = o.Timeout
	}
	return nil
}

// GetBackend returns the configured backend, defaulting to "charm".
func (c *Config) GetBackend() string {
	if c.Backend == "" {
		return BackendCharm
	}
	return c.Backend
}

// GetDataDir returns the configured data directory with ~ expanded,
// defaulting to the standard XDG data directory.
func (c *Config) GetDataDir() string {
	if c.DataDir == "" {
		return DataDir()
	}
	return ExpandPath(c.DataDir)
}

// GetCharmHost returns the Charm server, defaulting to ledger.DefaultCharmHost.
func (c *Config) GetCharmHost() string {
	if c.CharmHost == "" {
		return ledger.DefaultCharmHost
	}
	return c.CharmHost
}

// GetIdentity returns the static identity, falling back to $USER.
func (c *Config) GetIdentity() string {
	if c.Identity != "" {
		return c.Identity
	}
	return os.Getenv("USER")
}

// GetAutoSync reports whether Charm syncs after each write. Defaults to true.
func (c *Config) GetAutoSync() bool {
	if c.AutoSync == nil {
		return true
	}
	return *c.AutoSync
}

// GetTimeout parses Timeout, defaulting to 30s.
func (c *Config) GetTimeout() (time.Duration, error) {
	if c.Timeout == "" {
		return defaultTimeout, nil
	}
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 0, fmt.Errorf("invalid timeout %q: %w", c.Timeout, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("invalid timeout %q: must not be negative", c.Timeout)
	}
	return d, nil
}

// GetLogLevel parses LogLevel, defaulting to warn.
func (c *Config) GetLogLevel() (log.Level, error) {
	name := strings.ToLower(strings.TrimSpace(c.LogLevel))
	if name == "" {
		name = defaultLogLevel
	}
	switch name {
	case "debug":
		return log.DebugLevel, nil
	case "info":
		return log.InfoLevel, nil
	case "warn", "warning":
		return log.WarnLevel, nil
	case "error":
		return log.ErrorLevel, nil
	default:
		return log.WarnLevel, fmt.Errorf("unknown log level: %q", c.LogLevel)
	}
}

// NewLogger builds the stderr logger shared by every package.
func (c *Config) NewLogger() (*log.Logger, error) {
	level, err := c.GetLogLevel()
	if err != nil {
		return nil, err
	}
	logger := log.New(os.Stderr)
	logger.SetLevel(level)
	logger.SetPrefix("rehab")
	return logger, nil
}

// Validate checks the fields that have a fixed set of values.
func (c *Config) Validate() error {
	backend := c.GetBackend()
	known := false
	for _, b := range Backends {
		if b == backend {
			known = true
			break
		}
	}
	if !known {
		return fmt.Errorf("unknown backend: %q", backend)
	}
	if _, err := c.GetTimeout(); err != nil {
		return err
	}
	if _, err := c.GetLogLevel(); err != nil {
		return err
	}
	return nil
}

// DataDir returns the default data directory following XDG.
func DataDir() string {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, _ := os.UserHomeDir()
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, "rehab")
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(path string) string {
	if path == "" {
		return ""
	}
	if path == "~" {
		home, _ := os.UserHomeDir()
		return home
	}
	if strings.HasPrefix(path, "~/") {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, path[2:])
	}
	return path
}

// OpenStore creates the ledger backend named by the configuration.
func (c *Config) OpenStore() (ledger.Store, error) {
	dataDir := c.GetDataDir()

	switch backend := c.GetBackend(); backend {
	case BackendCharm:
		store, err := ledger.OpenCharm(c.GetCharmHost())
		if err != nil {
			return nil, err
		}
		store.SetAutoSync(c.GetAutoSync())
		return store, nil
	case BackendBadger:
		return ledger.OpenBadger(filepath.Join(dataDir, "badger"))
	case BackendSQLite:
		return ledger.OpenSQLite(filepath.Join(dataDir, "rehab.db"))
	case BackendMemory:
		return ledger.NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown backend: %q", backend)
	}
}

// IdentitySource returns the identity that signs writes to store.
// Charm writes are signed by the linked account; other backends use GetIdentity.
func (c *Config) IdentitySource(store ledger.Store) ledger.IdentitySource {
	if src, ok := store.(ledger.IdentitySource); ok {
		return src
	}
	return ledger.StaticIdentity(c.GetIdentity())
}

// GetConfigPath returns the config file path.
func GetConfigPath() string {
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, _ := os.UserHomeDir()
		configDir = filepath.Join(homeDir, ".config")
	}
	return filepath.Join(configDir, "rehab", "config.json")
}

// Load reads config from disk and applies environment overrides.
func Load() (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(GetConfigPath())
	switch {
	case err == nil:
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	case !os.IsNotExist(err):
		return nil, err
	}

	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes config to disk.
func (c *Config) Save() error {
	path := GetConfigPath()
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}
