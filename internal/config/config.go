// Package config loads and validates environment-based configuration.
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

const (
	defaultGeocodeBaseURL = "https://geocode.maps.co"
	defaultUberAuthURL    = "https://login.uber.com/oauth/v2/authorize"
	defaultUberTokenURL   = "https://login.uber.com/oauth/v2/token"
	defaultUberAPIBaseURL = "https://api.uber.com"
	defaultOlaAPIBaseURL  = "https://devapi.olacabs.com"
)

// ConfigError represents a configuration error.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error: field %q: %s", e.Field, e.Message)
}

// GeocodeConfig configures the maps.co geocoder.
type GeocodeConfig struct {
	APIKey  string
	BaseURL string
}

// UberConfig holds the OAuth client and API endpoints for the Uber provider.
type UberConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	AuthURL      string
	TokenURL     string
	APIBaseURL   string
}

// Enabled reports whether the OAuth client is configured.
func (u UberConfig) Enabled() bool { return u.ClientID != "" }

// OlaConfig holds the static partner token for the Ola provider.
type OlaConfig struct {
	PartnerToken string
	APIBaseURL   string
}

func (o OlaConfig) Enabled() bool { return o.PartnerToken != "" }

// Config holds all runtime configuration. It is built once at startup and
// passed into constructors.
type Config struct {
	Port     string
	AppEnv   string
	LogLevel string

	HTTPTimeout  time.Duration
	SessionTTL   time.Duration
	CookieSecure bool

	// Optional backing services. Empty means in-memory sessions and no
	// ride repository.
	RedisURL    string
	DatabaseURL string
	SeedPath    string

	Geocode GeocodeConfig
	Uber    UberConfig
	Ola     OlaConfig
}

// IsDevelopment reports whether APP_ENV is "development".
func (c *Config) IsDevelopment() bool { return c.AppEnv == "development" }

// Load reads a .env file when present, then the environment, and validates the result.
func Load() (*Config, error) {
	// A missing .env file is normal outside local runs.
	_ = godotenv.Load()

	cfg := &Config{
		Port:        Get("PORT", "8080"),
		AppEnv:      strings.ToLower(Get("APP_ENV", "production")),
		LogLevel:    Get("LOG_LEVEL", "info"),
		RedisURL:    strings.TrimSpace(os.Getenv("REDIS_URL")),
		DatabaseURL: strings.TrimSpace(os.Getenv("DATABASE_URL")),
		SeedPath:    Get("SEED_PATH", "data/seeds/sample_rides.json"),
		Geocode: GeocodeConfig{
			APIKey:  strings.TrimSpace(os.Getenv("GEOCODE_API_KEY")),
			BaseURL: Get("GEOCODE_BASE_URL", defaultGeocodeBaseURL),
		},
		Uber: UberConfig{
			ClientID:     strings.TrimSpace(os.Getenv("UBER_CLIENT_ID")),
			ClientSecret: strings.TrimSpace(os.Getenv("UBER_CLIENT_SECRET")),
			RedirectURL:  strings.TrimSpace(os.Getenv("UBER_REDIRECT_URI")),
			AuthURL:      Get("UBER_AUTH_URL", defaultUberAuthURL),
			TokenURL:     Get("UBER_TOKEN_URL", defaultUberTokenURL),
			APIBaseURL:   Get("UBER_API_BASE_URL", defaultUberAPIBaseURL),
		},
		Ola: OlaConfig{
			PartnerToken: strings.TrimSpace(os.Getenv("OLA_PARTNER_SOURCE")),
			APIBaseURL:   Get("OLA_API_BASE_URL", defaultOlaAPIBaseURL),
		},
	}

	var err error
	if cfg.HTTPTimeout, err = parseDurationEnv("HTTP_TIMEOUT", 5*time.Second); err != nil {
		return nil, err
	}
	if cfg.SessionTTL, err = parseDurationEnv("SESSION_TTL", 24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.CookieSecure, err = parseBoolEnv("COOKIE_SECURE", !cfg.IsDevelopment()); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate re-checks required fields on an already-constructed Config.
func (c *Config) Validate() error {
	var errs []error

	port, err := strconv.Atoi(c.Port)
	if err != nil || port < 1 || port > 65535 {
		errs = append(errs, &ConfigError{Field: "PORT", Message: "must be an integer between 1 and 65535"})
	}
	if c.Geocode.APIKey == "" {
		errs = append(errs, &ConfigError{Field: "GEOCODE_API_KEY", Message: "required but not set"})
	}
	if c.HTTPTimeout <= 0 {
		errs = append(errs, &ConfigError{Field: "HTTP_TIMEOUT", Message: "must be positive"})
	}
	if c.SessionTTL <= 0 {
		errs = append(errs, &ConfigError{Field: "SESSION_TTL", Message: "must be positive"})
	}
	if c.Uber.Enabled() {
		if c.Uber.ClientSecret == "" {
			errs = append(errs, &ConfigError{Field: "UBER_CLIENT_SECRET", Message: "required when UBER_CLIENT_ID is set"})
		}
		if c.Uber.RedirectURL == "" {
			errs = append(errs, &ConfigError{Field: "UBER_REDIRECT_URI", Message: "required when UBER_CLIENT_ID is set"})
		}
	}

	return errors.Join(errs...)
}

// Get returns the trimmed value of key, or fallback when it is unset or blank.
func Get(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func parseDurationEnv(key string, fallback time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, &ConfigError{Field: key, Message: fmt.Sprintf("invalid duration %q", raw)}
	}
	return d, nil
}

func parseBoolEnv(key string, fallback bool) (bool, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return false, &ConfigError{Field: key, Message: fmt.Sprintf("invalid boolean %q", raw)}
	}
	return b, nil
}
