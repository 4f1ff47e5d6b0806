// Package config loads service configuration from a YAML file with
// environment variable overrides.
package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the service.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Postgres   PostgresConfig   `yaml:"postgres"`
	ClickHouse ClickHouseConfig `yaml:"clickhouse"`
	Redis      RedisConfig      `yaml:"redis"`
	Push       PushConfig       `yaml:"push"`
	Realtime   RealtimeConfig   `yaml:"realtime"`
	Report     ReportConfig     `yaml:"report"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Addr           string   `yaml:"addr"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// PostgresConfig holds PostgreSQL connection settings.
type PostgresConfig struct {
	DSN string `yaml:"dsn"`
}

// ClickHouseConfig holds ClickHouse connection settings.
type ClickHouseConfig struct {
	DSN string `yaml:"dsn"`
}

// RedisConfig holds Redis cache settings.
type RedisConfig struct {
	Addr       string `yaml:"addr"`
	Password   string `yaml:"password"`
	DB         int    `yaml:"db"`
	TTLSeconds int    `yaml:"ttl_seconds"`
}

// PushConfig holds notification gateway settings.
type PushConfig struct {
	GatewayURL     string `yaml:"gateway_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// RealtimeConfig holds change-feed listener settings.
type RealtimeConfig struct {
	Enabled     bool   `yaml:"enabled"`
	FeedURL     string `yaml:"feed_url"`
	PingSeconds int    `yaml:"ping_seconds"`
}

// ReportConfig holds report generation settings.
type ReportConfig struct {
	OutputDir string `yaml:"output_dir"`
}

// Load reads and parses the configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.applyDefaults()
	return &cfg, nil
}

// Default returns a configuration with all defaults applied.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if len(c.Server.AllowedOrigins) == 0 {
		c.Server.AllowedOrigins = []string{"*"}
	}
	if c.Redis.TTLSeconds == 0 {
		c.Redis.TTLSeconds = 60
	}
	if c.Push.TimeoutSeconds == 0 {
		c.Push.TimeoutSeconds = 10
	}
	if c.Realtime.PingSeconds == 0 {
		c.Realtime.PingSeconds = 30
	}
	if c.Report.OutputDir == "" {
		c.Report.OutputDir = "output"
	}
}

// LoadFromEnv loads the configuration file (if path is non-empty) and applies
// environment variable overrides. A .env file in the working directory is
// read first; it never overrides variables already set in the environment.
func LoadFromEnv(path string) (*Config, error) {
	LoadEnvFile(".env")

	var cfg *Config
	if path != "" {
		loaded, err := Load(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	} else {
		cfg = Default()
	}

	if addr := os.Getenv("SERVER_ADDR"); addr != "" {
		cfg.Server.Addr = addr
	}
	if dsn := os.Getenv("POSTGRES_DSN"); dsn != "" {
		cfg.Postgres.DSN = dsn
	}
	if dsn := os.Getenv("CLICKHOUSE_DSN"); dsn != "" {
		cfg.ClickHouse.DSN = dsn
	}
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		cfg.Redis.Addr = addr
	}
	if password := os.Getenv("REDIS_PASSWORD"); password != "" {
		cfg.Redis.Password = password
	}
	if url := os.Getenv("PUSH_GATEWAY_URL"); url != "" {
		cfg.Push.GatewayURL = url
	}
	if url := os.Getenv("FEED_URL"); url != "" {
		cfg.Realtime.FeedURL = url
		cfg.Realtime.Enabled = true
	}
	if dir := os.Getenv("REPORT_OUTPUT_DIR"); dir != "" {
		cfg.Report.OutputDir = dir
	}

	return cfg, nil
}

// LoadEnvFile loads environment variables from a file if it exists.
// Existing environment variables are never overridden.
func LoadEnvFile(path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		return // File doesn't exist, use system env vars
	}

	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		if os.Getenv(key) == "" {
			os.Setenv(key, value)
		}
	}
}
