package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the application configuration
type Config struct {
	Database struct {
		URL        string        `yaml:"url"`
		Host       string        `yaml:"host"`
		Port       string        `yaml:"port"`
		User       string        `yaml:"user"`
		Password   string        `yaml:"password"`
		Name       string        `yaml:"name"`
		SSLMode    string        `yaml:"sslmode"`
		MaxRetries int           `yaml:"max_retries"`
		RetryDelay time.Duration `yaml:"retry_delay"`
	} `yaml:"database"`

	SendGrid struct {
		APIKey    string `yaml:"api_key"`
		FromEmail string `yaml:"from_email"`
		FromName  string `yaml:"from_name"`
	} `yaml:"sendgrid"`

	Relance struct {
		BaseURL      string        `yaml:"base_url"`
		CooldownDays int           `yaml:"cooldown_days"`
		SendTimeout  time.Duration `yaml:"send_timeout"`
		Interval     time.Duration `yaml:"interval"` // 0 disables the in-process worker
		LockKey      string        `yaml:"lock_key"`
		LockTTL      time.Duration `yaml:"lock_ttl"`
	} `yaml:"relance"`

	Redis struct {
		URL string `yaml:"url"`
	} `yaml:"redis"`

	Logging struct {
		Level  string `yaml:"level"`
		Pretty bool   `yaml:"pretty"`
	} `yaml:"logging"`

	Server struct {
		Port           string   `yaml:"port"`
		AllowedOrigins []string `yaml:"allowed_origins"`
	} `yaml:"server"`
}

// Load reads .env (if any), then the YAML file at path (if any), then the
// environment. Later sources override earlier ones.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg := &Config{}
	setDefaults(cfg)

	if path != "" {
		raw, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(raw, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
			}
		case errors.Is(err, os.ErrNotExist):
		default:
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	if err := loadFromEnv(cfg); err != nil {
		return nil, fmt.Errorf("failed to load from environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func setDefaults(cfg *Config) {
	cfg.Database.Host = "localhost"
	cfg.Database.Port = "5432"
	cfg.Database.SSLMode = "disable"
	cfg.Database.MaxRetries = 5
	cfg.Database.RetryDelay = 5 * time.Second

	cfg.SendGrid.FromName = "International Relations Office"

	cfg.Relance.BaseURL = "http://localhost:8080/folders/{id}"
	cfg.Relance.CooldownDays = 7
	cfg.Relance.SendTimeout = 30 * time.Second
	cfg.Relance.LockKey = "relance:batch-lock"
	cfg.Relance.LockTTL = 30 * time.Minute

	cfg.Logging.Level = "info"

	cfg.Server.Port = "8080"
}

// Validate checks the values that cannot be defaulted
func (c *Config) Validate() error {
	if c.Database.URL == "" && (c.Database.User == "" || c.Database.Name == "") {
		return errors.New("DATABASE_URL or DB_USER and DB_NAME are required")
	}
	if c.Relance.CooldownDays < 0 {
		return fmt.Errorf("cooldown days must not be negative, got %d", c.Relance.CooldownDays)
	}
	if c.Relance.BaseURL == "" {
		return errors.New("RELANCE_BASE_URL is required")
	}
	if c.SendGrid.APIKey != "" && c.SendGrid.FromEmail == "" {
		return errors.New("SENDGRID_NOTIFICATIONS_FROM_EMAIL is required when SENDGRID_API_KEY is set")
	}
	if c.Relance.LockTTL <= 0 {
		return errors.New("lock TTL must be positive")
	}
	return nil
}

// DSN returns the postgres connection string
func (c *Config) DSN() string {
	if c.Database.URL != "" {
		return c.Database.URL
	}
	sslMode := c.Database.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC connect_timeout=10",
		c.Database.Host, c.Database.User, c.Database.Password, c.Database.Name, c.Database.Port, sslMode)
}
