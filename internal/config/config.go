// Package config loads the projecthub configuration file and applies
// PROJECTHUB_* environment overrides on top of it.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	HTTP     HTTPConfig     `yaml:"http"`
	Auth     AuthConfig     `yaml:"auth"`
	Redis    RedisConfig    `yaml:"redis"`
	Daemon   DaemonConfig   `yaml:"daemon"`
	Log      LogConfig      `yaml:"log"`
	Ordering OrderingConfig `yaml:"ordering"`
}

// DatabaseConfig selects the SQL backend. Driver is "sqlite" or "pgx".
type DatabaseConfig struct {
	Driver       string `yaml:"driver"`
	DSN          string `yaml:"dsn"`
	MaxOpenConns int    `yaml:"max_open_conns"`
}

// HTTPConfig configures the API server
type HTTPConfig struct {
	Addr            string        `yaml:"addr"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// AuthConfig configures bearer-token verification. JWKSURL wins over
// JWTSecret when both are set.
type AuthConfig struct {
	JWTSecret string `yaml:"jwt_secret"`
	JWKSURL   string `yaml:"jwks_url"`
	Audience  string `yaml:"audience"`
	Issuer    string `yaml:"issuer"`
}

// RedisConfig enables the order cache and the Redis event transport when
// URL is set.
type RedisConfig struct {
	URL      string        `yaml:"url"`
	CacheTTL time.Duration `yaml:"cache_ttl"`
	// Events publishes change events over Redis instead of the daemon socket
	Events bool `yaml:"events"`
}

// DaemonConfig points at the live-update daemon socket. An empty socket
// disables the socket transport.
type DaemonConfig struct {
	Socket string `yaml:"socket"`
}

// LogConfig configures slog. An empty File logs to stderr.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	File   string `yaml:"file"`
}

// OrderingConfig tunes chain reads
type OrderingConfig struct {
	// StrictReads fails listings of scopes that contain unreachable items
	StrictReads bool `yaml:"strict_reads"`
}

// Default returns the configuration used when no file exists
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load loads config from the user's config directory
// Returns default config if file doesn't exist
func Load() (*Config, error) {
	configPath, err := Path()
	if err != nil {
		cfg := Default()
		if err := cfg.applyEnv(); err != nil {
			return nil, err
		}
		return cfg, nil
	}
	return LoadFile(configPath)
}

// LoadFile loads a specific config file. A missing file yields defaults.
func LoadFile(configPath string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(configPath)
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return nil, err
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", configPath, err)
		}
	}

	cfg.applyDefaults()
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Save saves the config to the user's config directory
func (c *Config) Save() error {
	configPath, err := Path()
	if err != nil {
		return err
	}

	configDir := filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(configPath, data, 0o600)
}

// Path returns the path to the config file
func Path() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, "projecthub", "config.yaml"), nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	return filepath.Join(homeDir, ".config", "projecthub", "config.yaml"), nil
}

// DataDir is ~/.projecthub, home of the default database, socket and logs
func DataDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "projecthub")
	}
	return filepath.Join(homeDir, ".projecthub")
}

// applyDefaults fills in missing configuration with defaults
func (c *Config) applyDefaults() {
	if c.Database.Driver == "" {
		c.Database.Driver = "sqlite"
	}
	if c.Database.DSN == "" && c.Database.Driver == "sqlite" {
		c.Database.DSN = filepath.Join(DataDir(), "projecthub.db")
	}
	if c.HTTP.Addr == "" {
		c.HTTP.Addr = ":8080"
	}
	if c.HTTP.ShutdownTimeout == 0 {
		c.HTTP.ShutdownTimeout = 10 * time.Second
	}
	if c.Redis.CacheTTL == 0 {
		c.Redis.CacheTTL = 5 * time.Minute
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

// applyEnv overrides file values with PROJECTHUB_* environment variables
func (c *Config) applyEnv() error {
	stringVars := map[string]*string{
		"PROJECTHUB_DB_DRIVER":     &c.Database.Driver,
		"PROJECTHUB_DB_DSN":        &c.Database.DSN,
		"PROJECTHUB_HTTP_ADDR":     &c.HTTP.Addr,
		"PROJECTHUB_JWT_SECRET":    &c.Auth.JWTSecret,
		"PROJECTHUB_JWKS_URL":      &c.Auth.JWKSURL,
		"PROJECTHUB_JWT_AUDIENCE":  &c.Auth.Audience,
		"PROJECTHUB_JWT_ISSUER":    &c.Auth.Issuer,
		"PROJECTHUB_REDIS_URL":     &c.Redis.URL,
		"PROJECTHUB_DAEMON_SOCKET": &c.Daemon.Socket,
		"PROJECTHUB_LOG_LEVEL":     &c.Log.Level,
		"PROJECTHUB_LOG_FORMAT":    &c.Log.Format,
		"PROJECTHUB_LOG_FILE":      &c.Log.File,
	}
	for name, dst := range stringVars {
		if v, ok := os.LookupEnv(name); ok {
			*dst = v
		}
	}

	bools := map[string]*bool{
		"PROJECTHUB_REDIS_EVENTS": &c.Redis.Events,
		"PROJECTHUB_STRICT_READS": &c.Ordering.StrictReads,
	}
	for name, dst := range bools {
		if v, ok := os.LookupEnv(name); ok {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
			*dst = b
		}
	}

	if v, ok := os.LookupEnv("PROJECTHUB_CACHE_TTL"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("PROJECTHUB_CACHE_TTL: %w", err)
		}
		c.Redis.CacheTTL = d
	}
	return nil
}
