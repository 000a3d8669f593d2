package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"telecare/internal/domain"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	App         AppConfig          `yaml:"app"`
	HTTP        HTTPConfig         `yaml:"http"`
	Database    DatabaseConfig     `yaml:"database"`
	Redis       RedisConfig        `yaml:"redis"`
	Kafka       KafkaConfig        `yaml:"kafka"`
	Logging     LoggingConfig      `yaml:"logging"`
	Admin       AdminConfig        `yaml:"admin"`
	Escrow      EscrowConfig       `yaml:"escrow"`
	Analytics   AnalyticsConfig    `yaml:"analytics"`
	FeeSchedule domain.FeeSchedule `yaml:"fee_schedule"`
}

type AppConfig struct {
	Name        string `yaml:"name"`
	Environment string `yaml:"environment"`
	Version     string `yaml:"version"`
}

type HTTPConfig struct {
	Port        int  `yaml:"port"`
	CORSEnabled bool `yaml:"cors_enabled"`
}

type DatabaseConfig struct {
	// URL is a postgres:// DSN or a sqlite file path for local development.
	URL string `yaml:"url"`
}

type RedisConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type KafkaConfig struct {
	Enabled bool     `yaml:"enabled"`
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // json or console
}

type AdminConfig struct {
	// Token guards the admin override endpoints. Static bearer token; full
	// identity management lives outside this service.
	Token string `yaml:"token"`
}

type EscrowConfig struct {
	SweepInterval time.Duration `yaml:"sweep_interval"`
}

type AnalyticsConfig struct {
	CacheTTL time.Duration `yaml:"cache_ttl"`
}

// Load reads the YAML config file and applies environment overrides. A .env
// file is honored when present so local runs match the deployed layout.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := defaults()

	if path != "" {
		raw, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
			// Defaults plus env are a complete configuration on their own.
		case err != nil:
			return nil, fmt.Errorf("read config %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(raw, cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func defaults() *Config {
	return &Config{
		App:  AppConfig{Name: "telecare", Environment: "development", Version: "dev"},
		HTTP: HTTPConfig{Port: 8080, CORSEnabled: true},
		Database: DatabaseConfig{
			URL: "telecare.db",
		},
		Redis:   RedisConfig{Address: "localhost:6379"},
		Kafka:   KafkaConfig{Topic: "telecare.booking-events"},
		Logging: LoggingConfig{Level: "info", Format: "json"},
		Escrow:  EscrowConfig{SweepInterval: time.Minute},
		Analytics: AnalyticsConfig{
			CacheTTL: 30 * time.Second,
		},
		FeeSchedule: domain.FeeSchedule{
			CommissionRatePercent: 10,
			BookingFee:            500,
			CancellationFee:       1000,
			EscrowHoldDays:        7,
			AutoReleaseEscrow:     true,
		},
	}
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Database.URL = v
	}
	if v := os.Getenv("REDIS_ADDRESS"); v != "" {
		cfg.Redis.Address = v
		cfg.Redis.Enabled = true
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		cfg.Kafka.Brokers = splitAndTrim(v)
		cfg.Kafka.Enabled = true
	}
	if v := os.Getenv("KAFKA_TOPIC"); v != "" {
		cfg.Kafka.Topic = v
	}
	if v := os.Getenv("TELECARE_ADMIN_TOKEN"); v != "" {
		cfg.Admin.Token = v
	}
	if v := os.Getenv("HTTP_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.HTTP.Port = port
		}
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}

func (c *Config) Validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("database.url is required")
	}
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port out of range: %d", c.HTTP.Port)
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.enabled requires at least one broker")
	}
	if c.Escrow.SweepInterval <= 0 {
		return fmt.Errorf("escrow.sweep_interval must be positive")
	}
	if err := c.FeeSchedule.Validate(); err != nil {
		return fmt.Errorf("fee_schedule: %w", err)
	}
	return nil
}

func splitAndTrim(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
