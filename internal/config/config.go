// Package config loads process configuration from the environment, with an
// optional .env file for development.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Config holds everything main needs to wire the application.
type Config struct {
	Addr           string
	DatabaseURL    string
	WebDir         string
	BadgeCatalog   string
	RecognitionURL string

	// Location is the single calendar reference applied to day grouping,
	// streaks and weekly averages.
	Location *time.Location

	OIDC OIDCConfig
}

// OIDCConfig configures optional SSO login.
type OIDCConfig struct {
	Enabled      bool
	IssuerURL    string
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

// Load reads configuration from the environment. A .env file is applied
// first if present; real environment variables win.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Addr:           env("ADDR", ":8080"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		WebDir:         env("WEB_DIR", "web"),
		BadgeCatalog:   env("BADGE_CATALOG", "data/badges.json"),
		RecognitionURL: env("RECOGNITION_URL", "http://localhost:5000/api"),
	}

	tz := env("TZ", "UTC")
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("config: invalid TZ %q: %w", tz, err)
	}
	cfg.Location = loc

	cfg.OIDC = OIDCConfig{
		IssuerURL:    os.Getenv("OIDC_ISSUER_URL"),
		ClientID:     os.Getenv("OIDC_CLIENT_ID"),
		ClientSecret: os.Getenv("OIDC_CLIENT_SECRET"),
		RedirectURL:  os.Getenv("OIDC_REDIRECT_URL"),
	}
	cfg.OIDC.Enabled = cfg.OIDC.IssuerURL != "" && cfg.OIDC.ClientID != ""

	return cfg, nil
}

func env(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
