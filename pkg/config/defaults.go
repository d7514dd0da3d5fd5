package config

import "time"

// Default values applied to any field the file and environment leave unset.
const (
	DefaultPort            = 8080
	DefaultDataDir         = "data"
	DefaultMaxConnections  = 100
	DefaultShutdownTimeout = 10 * time.Second
	DefaultArchiveInterval = time.Hour
)

// ApplyDefaults fills in every zero-valued field with its default.
func ApplyDefaults(cfg *Config) {
	applyLoggingDefaults(&cfg.Logging)
	applyServerDefaults(&cfg.Server)
	applyStorageDefaults(&cfg.Storage)
	applyArchiveDefaults(&cfg.Archive)
}

func applyLoggingDefaults(cfg *LoggingConfig) {
	if cfg.Level == "" {
		cfg.Level = "INFO"
	}
	if cfg.Output == "" {
		cfg.Output = "stdout"
	}
}

func applyServerDefaults(cfg *ServerConfig) {
	if cfg.Port == 0 {
		cfg.Port = DefaultPort
	}
	if cfg.MaxConnections == 0 {
		cfg.MaxConnections = DefaultMaxConnections
	}
	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = DefaultShutdownTimeout
	}
	if cfg.AcceptBurst == 0 && cfg.AcceptRate > 0 {
		cfg.AcceptBurst = cfg.AcceptRate * 2
	}
}

func applyStorageDefaults(cfg *StorageConfig) {
	if cfg.Backend == "" {
		cfg.Backend = "file"
	}
	if cfg.DataDir == "" {
		cfg.DataDir = DefaultDataDir
	}
}

func applyArchiveDefaults(cfg *ArchiveConfig) {
	if !cfg.Enabled {
		return
	}
	if cfg.Target == "" {
		cfg.Target = "fs"
	}
	if cfg.Interval == 0 {
		cfg.Interval = DefaultArchiveInterval
	}
}

// GetDefaultConfig returns a fully defaulted configuration.
func GetDefaultConfig() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}
