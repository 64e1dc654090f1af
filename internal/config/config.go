package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// Defaults
const (
	DefaultPollInterval      = 5 * time.Minute
	DefaultHTTPTimeout       = 30 * time.Second
	DefaultRateLimitInterval = 300 * time.Millisecond
)

// Config holds all application configuration
type Config struct {
	Telegram  TelegramConfig  `yaml:"telegram"`
	Content   ContentConfig   `yaml:"content"`
	Analytics AnalyticsConfig `yaml:"analytics"`
	HTTP      HTTPConfig      `yaml:"http"`
	Database  DatabaseConfig  `yaml:"database"`
}

// TelegramConfig holds bot settings
type TelegramConfig struct {
	Token   string `yaml:"token" envconfig:"BOT_TOKEN"`
	AdminID int64  `yaml:"admin_id" envconfig:"ADMIN_USER_ID"`
	// RateLimitInterval is the minimum time between two updates of one user
	RateLimitInterval time.Duration `yaml:"rate_limit_interval" envconfig:"RATE_LIMIT_INTERVAL"`
}

// ContentConfig points at the content API
type ContentConfig struct {
	URL   string `yaml:"url" envconfig:"CONTENT_API_URL"`
	Token string `yaml:"token" envconfig:"CONTENT_API_TOKEN"`
}

// AnalyticsConfig holds analytics API and monitor settings
type AnalyticsConfig struct {
	URL            string        `yaml:"url" envconfig:"ANALYTICS_URL"`
	SiteID         string        `yaml:"site_id" envconfig:"ANALYTICS_SITE_ID"`
	Token          string        `yaml:"token" envconfig:"ANALYTICS_TOKEN"`
	PollInterval   time.Duration `yaml:"poll_interval" envconfig:"ANALYTICS_POLL_INTERVAL"`
	MonitorEnabled bool          `yaml:"monitor_enabled" envconfig:"ANALYTICS_MONITOR_ENABLED"`
}

// HTTPConfig tunes outbound HTTP clients
type HTTPConfig struct {
	Timeout time.Duration `yaml:"timeout" envconfig:"HTTP_TIMEOUT"`
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host     string `yaml:"host" envconfig:"DB_HOST"`
	Port     string `yaml:"port" envconfig:"DB_PORT"`
	Name     string `yaml:"name" envconfig:"DB_NAME"`
	User     string `yaml:"user" envconfig:"DB_USER"`
	Password string `yaml:"password" envconfig:"DB_PASSWORD"`
}

// Load reads .env, the optional YAML file named by CONFIG_FILE and the environment
func Load() (*Config, error) {
	// Try to load .env file (ignore error if not exists)
	_ = godotenv.Load()

	var cfg Config
	if err := loadFromYAML(os.Getenv("CONFIG_FILE"), &cfg); err != nil {
		return nil, err
	}
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process env: %w", err)
	}
	if err := Normalize(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func loadFromYAML(path string, cfg *Config) error {
	if path == "" {
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config yaml: %w", err)
	}
	return nil
}

// Normalize validates required fields and fills defaults
func Normalize(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("nil config")
	}

	// Validate required fields
	if strings.TrimSpace(cfg.Telegram.Token) == "" {
		return fmt.Errorf("BOT_TOKEN is required")
	}
	if cfg.Telegram.AdminID == 0 {
		return fmt.Errorf("ADMIN_USER_ID is required")
	}
	if strings.TrimSpace(cfg.Content.URL) == "" {
		return fmt.Errorf("CONTENT_API_URL is required")
	}
	if cfg.Analytics.MonitorEnabled && (cfg.Analytics.URL == "" || cfg.Analytics.SiteID == "") {
		return fmt.Errorf("ANALYTICS_URL and ANALYTICS_SITE_ID are required when the monitor is enabled")
	}
	if cfg.Database.Password == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}

	cfg.Content.URL = strings.TrimRight(cfg.Content.URL, "/")
	cfg.Analytics.URL = strings.TrimRight(cfg.Analytics.URL, "/")

	if cfg.Telegram.RateLimitInterval <= 0 {
		cfg.Telegram.RateLimitInterval = DefaultRateLimitInterval
	}
	if cfg.Analytics.PollInterval <= 0 {
		cfg.Analytics.PollInterval = DefaultPollInterval
	}
	if cfg.HTTP.Timeout <= 0 {
		cfg.HTTP.Timeout = DefaultHTTPTimeout
	}

	setDefault(&cfg.Database.Host, "localhost")
	setDefault(&cfg.Database.Port, "5432")
	setDefault(&cfg.Database.Name, "contentbot")
	setDefault(&cfg.Database.User, "contentbot")
	return nil
}

// AnalyticsEnabled reports whether the analytics API is configured
func (c *Config) AnalyticsEnabled() bool {
	return c.Analytics.URL != "" && c.Analytics.SiteID != ""
}

// DSN returns PostgreSQL connection string
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Name,
	)
}

func setDefault(target *string, value string) {
	if strings.TrimSpace(*target) == "" {
		*target = value
	}
}
