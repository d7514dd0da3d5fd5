// Package config loads, defaults and validates the server configuration.
//
// Configuration sources (in order of precedence):
//  1. Environment variables (ACADEMIA_*)
//  2. Configuration file (YAML)
//  3. Default values
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the complete server configuration.
type Config struct {
	Logging LoggingConfig `mapstructure:"logging"`
	Server  ServerConfig  `mapstructure:"server"`
	Storage StorageConfig `mapstructure:"storage"`
	Archive ArchiveConfig `mapstructure:"archive"`
}

// LoggingConfig controls log output behavior.
type LoggingConfig struct {
	// Level is the minimum level to emit: DEBUG, INFO, WARN or ERROR.
	Level string `mapstructure:"level" validate:"required,oneof=DEBUG INFO WARN ERROR debug info warn error"`

	// Output is stdout, stderr or a file path.
	Output string `mapstructure:"output" validate:"required"`
}

// ServerConfig contains the TCP front-end settings.
type ServerConfig struct {
	// Port the listener binds to.
	Port int `mapstructure:"port" validate:"required,gt=0,lte=65535"`

	// MaxConnections caps concurrent clients; 0 means unlimited.
	MaxConnections int `mapstructure:"max_connections" validate:"gte=0"`

	// AcceptRate limits new connections per second; 0 means unlimited.
	AcceptRate uint `mapstructure:"accept_rate"`

	// AcceptBurst is the burst capacity of the accept limiter.
	AcceptBurst uint `mapstructure:"accept_burst"`

	// ShutdownTimeout bounds the wait for in-flight connections on shutdown.
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"required,gt=0"`
}

// StorageConfig selects the record store backend. Only the section matching
// Backend is used.
type StorageConfig struct {
	// Backend is "file" (flat record files under flock) or "badger".
	Backend string `mapstructure:"backend" validate:"required,oneof=file badger"`

	// DataDir holds the record files, or the badger database directory.
	DataDir string `mapstructure:"data_dir" validate:"required"`

	// Badger contains badger-specific options, used when Backend = "badger".
	Badger map[string]any `mapstructure:"badger"`
}

// ArchiveConfig controls periodic snapshots of the data directory.
type ArchiveConfig struct {
	// Enabled turns snapshotting on.
	Enabled bool `mapstructure:"enabled"`

	// Target is "fs" or "s3".
	Target string `mapstructure:"target" validate:"omitempty,oneof=fs s3"`

	// Interval between snapshots.
	Interval time.Duration `mapstructure:"interval" validate:"omitempty,gt=0"`

	// FS contains fs-target options, used when Target = "fs".
	FS map[string]any `mapstructure:"fs"`

	// S3 contains s3-target options, used when Target = "s3".
	S3 map[string]any `mapstructure:"s3"`
}

// Load reads configuration from file and environment, applies defaults and
// validates the result. An empty configPath falls back to the default
// location; a missing file there is not an error.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setupViper(v, configPath)

	if err := readConfigFile(v); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

func setupViper(v *viper.Viper, configPath string) {
	// ACADEMIA_SERVER_PORT=9090 overrides server.port, and so on.
	v.SetEnvPrefix("ACADEMIA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.AddConfigPath(getConfigDir())
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
}

func readConfigFile(v *viper.Viper) error {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil
		}
		// An explicitly named file that does not exist is also acceptable.
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}
	return nil
}

// getConfigDir returns $XDG_CONFIG_HOME/academia, falling back to
// ~/.config/academia or the current directory.
func getConfigDir() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "academia")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "academia")
}
