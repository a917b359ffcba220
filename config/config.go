package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config 从环境变量读取
type Config struct {
	Port      string
	LogLevel  string
	WebOrigin string

	DB    DBConfig
	Redis RedisConfig

	SessionTTL   time.Duration
	SeenThrottle time.Duration

	// ItemNameFallback lets item transactions match an item by name when no
	// qr code matches. The scan dispatcher never uses it.
	ItemNameFallback bool

	OverdueAfter      time.Duration
	OverdueReportCron string

	BootstrapAdminName string
}

type DBConfig struct {
	Driver     string // postgres | sqlite
	URL        string
	Host       string
	User       string
	Password   string
	Name       string
	Port       string
	SQLitePath string
}

type RedisConfig struct {
	Addr     string
	Password string
}

// DSN builds the driver specific connection string.
func (d DBConfig) DSN() string {
	if d.Driver == "sqlite" {
		return d.SQLitePath
	}
	if d.URL != "" {
		return d.URL
	}
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		d.Host, d.User, d.Password, d.Name, d.Port,
	)
}

// LoadEnv loads a .env file into the process environment. A missing file is fine.
func LoadEnv(files ...string) error {
	if len(files) == 0 {
		_ = godotenv.Load()
		return nil
	}
	for _, f := range files {
		if f == "" {
			continue
		}
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed loading env file %s: %w", f, err)
		}
	}
	return nil
}

// Load materializes a Config from the environment and validates it.
func Load() (*Config, error) {
	cfg := &Config{
		Port:      getenvWithDefault("PORT", "3001"),
		LogLevel:  getenvWithDefault("LOG_LEVEL", "info"),
		WebOrigin: getenvWithDefault("WEB_ORIGIN", "http://localhost:5173"),
		DB: DBConfig{
			Driver:     strings.ToLower(getenvWithDefault("DB_DRIVER", "postgres")),
			URL:        os.Getenv("DATABASE_URL"),
			Host:       getenvWithDefault("DB_HOST", "127.0.0.1"),
			User:       getenvWithDefault("DB_USER", "postgres"),
			Password:   os.Getenv("DB_PASSWORD"),
			Name:       getenvWithDefault("DB_NAME", "qr_tracker"),
			Port:       getenvWithDefault("DB_PORT", "5432"),
			SQLitePath: getenvWithDefault("SQLITE_PATH", "qr_tracker.db"),
		},
		Redis: RedisConfig{
			Addr:     getenvWithDefault("REDIS_ADDR", "127.0.0.1:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
		},
		OverdueReportCron:  getenvWithDefault("OVERDUE_REPORT_CRON", "0 8 * * *"),
		BootstrapAdminName: strings.TrimSpace(os.Getenv("BOOTSTRAP_ADMIN_NAME")),
	}

	var err error
	if cfg.SessionTTL, err = secondsWithDefault("SESSION_TTL_SECONDS", 24*60*60); err != nil {
		return nil, err
	}
	if cfg.SeenThrottle, err = secondsWithDefault("SEEN_THROTTLE_SECONDS", 60); err != nil {
		return nil, err
	}
	hours, err := intWithDefault("OVERDUE_AFTER_HOURS", 48)
	if err != nil {
		return nil, err
	}
	cfg.OverdueAfter = time.Duration(hours) * time.Hour
	if v := os.Getenv("ITEM_NAME_FALLBACK"); v != "" {
		if cfg.ItemNameFallback, err = strconv.ParseBool(v); err != nil {
			return nil, fmt.Errorf("ITEM_NAME_FALLBACK: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate ensures that required configuration fields are populated.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}
	if c.Port == "" {
		return errors.New("PORT must be provided")
	}
	switch c.DB.Driver {
	case "postgres":
		if c.DB.URL == "" && (c.DB.Host == "" || c.DB.Name == "") {
			return errors.New("DATABASE_URL or DB_HOST/DB_NAME must be provided")
		}
	case "sqlite":
		if c.DB.SQLitePath == "" {
			return errors.New("SQLITE_PATH must be provided")
		}
	default:
		return fmt.Errorf("DB_DRIVER %q is not supported", c.DB.Driver)
	}
	if c.Redis.Addr == "" {
		return errors.New("REDIS_ADDR must be provided")
	}
	if c.SessionTTL <= 0 {
		return errors.New("SESSION_TTL_SECONDS must be positive")
	}
	if c.OverdueAfter <= 0 {
		return errors.New("OVERDUE_AFTER_HOURS must be positive")
	}
	if c.OverdueReportCron == "" {
		return errors.New("OVERDUE_REPORT_CRON must be provided")
	}
	return nil
}

func getenvWithDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func intWithDefault(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func secondsWithDefault(key string, fallback int) (time.Duration, error) {
	n, err := intWithDefault(key, fallback)
	if err != nil {
		return 0, err
	}
	return time.Duration(n) * time.Second, nil
}
