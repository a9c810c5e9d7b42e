package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds environment-driven configuration.
type Config struct {
	HTTP struct {
		Addr         string // default: :8080
		CookieSecure bool
	}
	Store struct {
		Backend string // mysql (default) or memory
	}
	MySQL struct {
		DSN string // e.g., user:pass@tcp(host:3306)/dbname?parseTime=true&multiStatements=true
	}
	Session struct {
		TTL           time.Duration // default: 7 days
		SweepInterval time.Duration // default: 1h
	}
	Stats struct {
		Timezone string // e.g., UTC (default), Europe/Berlin
	}
	CategoriesFile string // optional YAML catalog overriding the embedded one
}

// Client holds the settings used by the CLI when talking to a server.
type Client struct {
	Server string
	Token  string
}

const (
	BackendMySQL  = "mysql"
	BackendMemory = "memory"
)

// LoadDotEnv loads a .env file from the working directory when present.
// Variables already set in the environment win.
func LoadDotEnv() {
	_ = godotenv.Load()
}

// Load reads server configuration from environment variables.
func Load() (Config, error) {
	var cfg Config

	cfg.HTTP.Addr = getEnvOrDefault("HTTP_ADDR", ":8080")
	secure, err := getEnvBool("COOKIE_SECURE", false)
	if err != nil {
		return cfg, err
	}
	cfg.HTTP.CookieSecure = secure

	cfg.Store.Backend = getEnvOrDefault("STORE_BACKEND", BackendMySQL)
	switch cfg.Store.Backend {
	case BackendMySQL:
		cfg.MySQL.DSN = os.Getenv("MYSQL_DSN")
		if cfg.MySQL.DSN == "" {
			return cfg, errors.New("MYSQL_DSN is required when STORE_BACKEND=mysql")
		}
	case BackendMemory:
	default:
		return cfg, fmt.Errorf("STORE_BACKEND must be %q or %q", BackendMySQL, BackendMemory)
	}

	if cfg.Session.TTL, err = getEnvDuration("SESSION_TTL", 7*24*time.Hour); err != nil {
		return cfg, err
	}
	if cfg.Session.SweepInterval, err = getEnvDuration("SESSION_SWEEP_INTERVAL", time.Hour); err != nil {
		return cfg, err
	}

	cfg.Stats.Timezone = getEnvOrDefault("STATS_TZ", "UTC")
	if _, err := time.LoadLocation(cfg.Stats.Timezone); err != nil {
		return cfg, fmt.Errorf("invalid STATS_TZ %q: %w", cfg.Stats.Timezone, err)
	}

	cfg.CategoriesFile = os.Getenv("CATEGORIES_FILE")
	return cfg, nil
}

// Location returns the statistics time zone. Load has already validated it.
func (c Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Stats.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// LoadClient reads the CLI's server address and token.
func LoadClient() Client {
	return Client{
		Server: getEnvOrDefault("TT_SERVER", "http://localhost:8080"),
		Token:  os.Getenv("TT_TOKEN"),
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) (bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue, fmt.Errorf("%s must be a boolean", key)
	}
	return b, nil
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		return defaultValue, fmt.Errorf("%s must be a positive duration", key)
	}
	return d, nil
}
