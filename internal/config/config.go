// Package config provides application configuration loaded from environment variables.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	API      APIConfig
	Cache    CacheConfig
	Database DatabaseConfig
	Locale   LocaleConfig
	App      AppConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string
	ReadTimeout  int // seconds
	WriteTimeout int // seconds
	IdleTimeout  int // seconds
}

// APIConfig points at the ERP backend.
type APIConfig struct {
	BaseURL string
	Timeout time.Duration
	// Token is used by the CLI only; the portal uses the signed-in user's token.
	Token string
}

// CacheConfig controls the report staleness window.
type CacheConfig struct {
	TTL time.Duration
}

// DatabaseConfig selects the run log store.
type DatabaseConfig struct {
	// DSN is a postgres URL or key=value list, or "sqlite:<path>".
	DSN string
}

// LocaleConfig fixes how numbers, money and dates are displayed.
type LocaleConfig struct {
	Lang           string
	Currency       string
	CurrencySymbol string
	Timezone       string
}

// Location resolves Timezone, falling back to the local zone.
func (l LocaleConfig) Location() *time.Location {
	if l.Timezone == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(l.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// AppConfig holds application-level settings.
type AppConfig struct {
	Dev           bool
	Migrations    bool
	SessionSecret string
}

// Load reads configuration from environment variables.
// It uses sensible defaults for local development.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", "8080"),
			ReadTimeout:  getEnvInt("SERVER_READ_TIMEOUT", 15),
			WriteTimeout: getEnvInt("SERVER_WRITE_TIMEOUT", 30),
			IdleTimeout:  getEnvInt("SERVER_IDLE_TIMEOUT", 60),
		},
		API: APIConfig{
			BaseURL: strings.TrimRight(getEnv("API_BASE_URL", "http://localhost:8000"), "/"),
			Timeout: getEnvDuration("API_TIMEOUT", 20*time.Second),
			Token:   os.Getenv("API_TOKEN"),
		},
		Cache: CacheConfig{
			TTL: getEnvDuration("CACHE_TTL", 5*time.Minute),
		},
		Database: DatabaseConfig{
			DSN: getEnv("DATABASE_DSN", "sqlite:reports.db"),
		},
		Locale: LocaleConfig{
			Lang:           getEnv("APP_LANG", "th"),
			Currency:       getEnv("APP_CURRENCY", "THB"),
			CurrencySymbol: getEnv("APP_CURRENCY_SYMBOL", "฿"),
			Timezone:       getEnv("APP_TIMEZONE", "Asia/Bangkok"),
		},
		App: AppConfig{
			Dev:           getEnvBool("DEV", true),
			Migrations:    getEnvBool("MIGRATIONS", true),
			SessionSecret: os.Getenv("SESSION_SECRET"),
		},
	}
}

// getEnv returns the value of an environment variable or a default.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt returns the integer value of an environment variable or a default.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

// getEnvBool returns the boolean value of an environment variable or a default.
// Accepts "1", "true", "yes" as true; everything else is false.
func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value == "1" || value == "true" || value == "yes"
}

// getEnvDuration accepts Go durations ("90s") or bare seconds ("90").
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if i, err := strconv.Atoi(value); err == nil {
		return time.Duration(i) * time.Second
	}
	return defaultValue
}
