package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config defines server configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	DB        DBConfig        `yaml:"db"`
	Log       LogConfig       `yaml:"log"`
	Auth      AuthConfig      `yaml:"auth"`
	Transport TransportConfig `yaml:"transport"`
	Locks     LockConfig      `yaml:"locks"`
	Progress  ProgressConfig  `yaml:"progress"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type DBConfig struct {
	Path string `yaml:"path"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

type AuthConfig struct {
	Enabled bool `yaml:"enabled"`
}

type TransportConfig struct {
	Mode string `yaml:"mode"` // "http" or "stdio"
}

type LockConfig struct {
	TTLSeconds int `yaml:"ttl_seconds"`
}

type ProgressConfig struct {
	RecentLimit int `yaml:"recent_limit"`
}

// LockTTL returns the lock time-to-live as a duration.
func (c Config) LockTTL() time.Duration {
	return time.Duration(c.Locks.TTLSeconds) * time.Second
}

// Load reads configuration from an optional YAML file and environment variables.
func Load() (Config, error) {
	cfg := Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		DB: DBConfig{
			Path: "stocktake.db",
		},
		Log: LogConfig{
			Level: "info",
		},
		Auth: AuthConfig{
			Enabled: false,
		},
		Transport: TransportConfig{
			Mode: "http",
		},
		Locks: LockConfig{
			TTLSeconds: 120,
		},
		Progress: ProgressConfig{
			RecentLimit: 20,
		},
	}

	if path := os.Getenv("STOCKTAKE_CONFIG_PATH"); path != "" {
		if err := loadFromFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	if host := os.Getenv("STOCKTAKE_SERVER_HOST"); host != "" {
		cfg.Server.Host = host
	}
	if portStr := os.Getenv("STOCKTAKE_SERVER_PORT"); portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return Config{}, fmt.Errorf("invalid STOCKTAKE_SERVER_PORT: %w", err)
		}
		cfg.Server.Port = port
	}
	if dbPath := os.Getenv("STOCKTAKE_DB_PATH"); dbPath != "" {
		cfg.DB.Path = dbPath
	}
	if level := os.Getenv("STOCKTAKE_LOG_LEVEL"); level != "" {
		cfg.Log.Level = level
	}
	if authStr := os.Getenv("STOCKTAKE_AUTH_ENABLED"); authStr != "" {
		enabled, err := strconv.ParseBool(authStr)
		if err != nil {
			return Config{}, fmt.Errorf("invalid STOCKTAKE_AUTH_ENABLED: %w", err)
		}
		cfg.Auth.Enabled = enabled
	}
	if mode := os.Getenv("STOCKTAKE_TRANSPORT_MODE"); mode != "" {
		cfg.Transport.Mode = mode
	}
	if ttlStr := os.Getenv("STOCKTAKE_LOCK_TTL_SECONDS"); ttlStr != "" {
		ttl, err := strconv.Atoi(ttlStr)
		if err != nil {
			return Config{}, fmt.Errorf("invalid STOCKTAKE_LOCK_TTL_SECONDS: %w", err)
		}
		cfg.Locks.TTLSeconds = ttl
	}
	if limitStr := os.Getenv("STOCKTAKE_RECENT_LIMIT"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil {
			return Config{}, fmt.Errorf("invalid STOCKTAKE_RECENT_LIMIT: %w", err)
		}
		cfg.Progress.RecentLimit = limit
	}

	if cfg.Transport.Mode != "http" && cfg.Transport.Mode != "stdio" {
		return Config{}, fmt.Errorf("invalid transport mode %q", cfg.Transport.Mode)
	}
	if cfg.Locks.TTLSeconds <= 0 {
		return Config{}, fmt.Errorf("lock ttl must be positive")
	}

	return cfg, nil
}

func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}
