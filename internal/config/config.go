package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Storage backends.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// DefaultStorageKey is the key the board document is saved under.
const DefaultStorageKey = "memoApp_data"

// sqliteFile is the database file name inside storage.dir.
const sqliteFile = "thoughtboard.db"

// Config holds all configuration for thoughtboard.
type Config struct {
	Storage StorageConfig `mapstructure:"storage"`
	Logging LoggingConfig `mapstructure:"logging"`
	API     APIConfig     `mapstructure:"api"`
	Metrics MetricsConfig `mapstructure:"metrics"`
}

// StorageConfig selects where the board document lives.
type StorageConfig struct {
	Backend string `mapstructure:"backend"`
	Dir     string `mapstructure:"dir"`
	Key     string `mapstructure:"key"`
}

// SQLitePath is the database path used by the sqlite backend.
func (s StorageConfig) SQLitePath() string {
	return filepath.Join(s.Dir, sqliteFile)
}

// APIConfig holds HTTP API server settings.
type APIConfig struct {
	ListenAddr string `mapstructure:"listen_addr"`
	AuthToken  string `mapstructure:"auth_token"`
}

// String returns a safe representation of APIConfig with the token masked.
func (a APIConfig) String() string {
	token := "<none>"
	if a.AuthToken != "" {
		token = maskToken(a.AuthToken)
	}
	return fmt.Sprintf("APIConfig{ListenAddr:%s, AuthToken:%s}", a.ListenAddr, token)
}

// maskToken shows first 4 + last 4 chars, replacing the middle with asterisks.
func maskToken(key string) string {
	const visible = 4
	if len(key) <= visible*2 {
		return "***"
	}
	return key[:visible] + "****" + key[len(key)-visible:]
}

// MetricsConfig toggles the Prometheus collector.
type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from file and environment variables.
func Load() (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("storage.backend", BackendFile)
	v.SetDefault("storage.dir", filepath.Join(homeDir(), ".thoughtboard", "data"))
	v.SetDefault("storage.key", DefaultStorageKey)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")

	v.SetDefault("api.listen_addr", ":8080")
	v.SetDefault("api.auth_token", "")

	v.SetDefault("metrics.enabled", true)

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(filepath.Join(homeDir(), ".thoughtboard"))
	v.AddConfigPath(".")

	// Environment variables, e.g. THOUGHTBOARD_STORAGE_BACKEND
	v.SetEnvPrefix("THOUGHTBOARD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		// Config file not found is OK, use defaults + env vars
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// Validate checks that required configuration fields are set and consistent.
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case BackendFile, BackendSQLite:
		if c.Storage.Dir == "" {
			return fmt.Errorf("storage.dir must not be empty for the %s backend", c.Storage.Backend)
		}
	case BackendMemory:
	default:
		return fmt.Errorf("storage.backend must be one of file, sqlite, memory (got %q)", c.Storage.Backend)
	}
	if c.Storage.Key == "" {
		return fmt.Errorf("storage.key must not be empty")
	}
	switch strings.ToLower(c.Logging.Format) {
	case "", "text", "json":
	default:
		return fmt.Errorf("logging.format must be text or json (got %q)", c.Logging.Format)
	}
	if c.API.ListenAddr == "" {
		return fmt.Errorf("api.listen_addr must not be empty")
	}
	return nil
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
