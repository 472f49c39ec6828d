package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	s "fieldforce/pkg/string"
)

// Store drivers accepted by DB_DRIVER.
const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// EnvConfigFile names an optional YAML file loaded before environment overrides.
const EnvConfigFile = "FIELDFORCE_CONFIG"

// Server captures process level configuration.
type Server struct {
	Addr        string         `yaml:"addr,omitempty"`
	Environment string         `yaml:"environment,omitempty"`
	LogLevel    string         `yaml:"log_level,omitempty"`
	AdminToken  string         `yaml:"admin_token,omitempty"`
	Database    DatabaseConfig `yaml:"database,omitempty"`
	Redis       RedisConfig    `yaml:"redis,omitempty"`
	Kafka       KafkaConfig    `yaml:"kafka,omitempty"`
}

type DatabaseConfig struct {
	Driver      string `yaml:"driver,omitempty"`
	URL         string `yaml:"url,omitempty"`
	AutoMigrate bool   `yaml:"auto_migrate,omitempty"`
}

// RedisConfig enables the profile cache when URL is set.
type RedisConfig struct {
	URL      string        `yaml:"url,omitempty"`
	CacheTTL time.Duration `yaml:"cache_ttl,omitempty"`
}

// KafkaConfig enables agent event publishing when Brokers is non-empty.
type KafkaConfig struct {
	Brokers     []string `yaml:"brokers,omitempty"`
	EventsTopic string   `yaml:"events_topic,omitempty"`
}

// Default returns the development configuration: in-memory store, no cache, log-only events.
func Default() Server {
	return Server{
		Addr:        ":8080",
		Environment: "development",
		LogLevel:    "info",
		Database:    DatabaseConfig{Driver: DriverMemory},
		Redis:       RedisConfig{CacheTTL: 5 * time.Minute},
		Kafka:       KafkaConfig{EventsTopic: "agent-events"},
	}
}

// FromEnv builds the config from FIELDFORCE_CONFIG (if set) and environment variables,
// environment taking precedence, so main stays lean.
func FromEnv() (Server, error) {
	cfg := Default()
	if path := os.Getenv(EnvConfigFile); path != "" {
		loaded, err := Load(path)
		if err != nil {
			return Server{}, err
		}
		cfg = loaded
	}
	if err := cfg.applyEnvOverrides(); err != nil {
		return Server{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Server{}, err
	}
	return cfg, nil
}

// Load reads a YAML config file on top of Default.
func Load(path string) (Server, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Server{}, fmt.Errorf("reading config file: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Server{}, fmt.Errorf("parsing config file %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Server) applyEnvOverrides() error {
	setString(&c.Addr, "ADDR")
	setString(&c.Environment, "ENVIRONMENT")
	setString(&c.LogLevel, "LOG_LEVEL")
	setString(&c.AdminToken, "ADMIN_TOKEN")
	setString(&c.Database.Driver, "DB_DRIVER")
	setString(&c.Database.URL, "DATABASE_URL")
	setString(&c.Redis.URL, "REDIS_URL")
	setString(&c.Kafka.EventsTopic, "AGENT_EVENTS_TOPIC")

	if v := os.Getenv("DB_AUTO_MIGRATE"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("DB_AUTO_MIGRATE: %w", err)
		}
		c.Database.AutoMigrate = b
	}
	if v := os.Getenv("AGENT_CACHE_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("AGENT_CACHE_TTL: %w", err)
		}
		c.Redis.CacheTTL = d
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = s.SplitList(v)
	}
	return nil
}

// Validate rejects combinations main cannot start with.
func (c Server) Validate() error {
	switch c.Database.Driver {
	case DriverMemory:
	case DriverPostgres, DriverSQLite:
		if c.Database.URL == "" {
			return fmt.Errorf("DATABASE_URL is required for driver %q", c.Database.Driver)
		}
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q (want memory, postgres or sqlite)", c.Database.Driver)
	}
	if c.Redis.CacheTTL <= 0 {
		return fmt.Errorf("AGENT_CACHE_TTL must be positive")
	}
	if c.IsProduction() && c.AdminToken == "" {
		return fmt.Errorf("ADMIN_TOKEN is required in production")
	}
	return nil
}

func (c Server) IsProduction() bool {
	return c.Environment == "production"
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}
