package config

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultPort            = "8080"
	defaultDatabaseURL     = "passportdesk.db"
	defaultJWTSecret       = "change-me-jwt-secret"
	defaultStorageDir      = "passport-documents"
	defaultPublicBaseURL   = "http://localhost:8080"
	defaultCredentialTTL   = "60m"
	defaultRefreshInterval = "45m"
)

// Config is the service runtime configuration, read from the environment
// (and .env for local development).
type Config struct {
	Port          string
	DatabaseURL   string
	JWTSecret     string
	StorageDir    string
	PublicBaseURL string
	// CredentialTTL is the validity window of timed access URLs.
	CredentialTTL time.Duration
	// RefreshInterval must stay strictly below CredentialTTL; Load rejects
	// configs where it does not.
	RefreshInterval time.Duration
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err == nil {
		log.Println("loaded configuration from .env")
	}

	cfg := &Config{
		Port:          getEnv("PORT", defaultPort),
		DatabaseURL:   getEnv("DATABASE_URL", defaultDatabaseURL),
		JWTSecret:     strings.TrimSpace(getEnv("JWT_SECRET", defaultJWTSecret)),
		StorageDir:    getEnv("STORAGE_DIR", defaultStorageDir),
		PublicBaseURL: strings.TrimSuffix(getEnv("PUBLIC_BASE_URL", defaultPublicBaseURL), "/"),
	}

	var err error
	if cfg.CredentialTTL, err = getDuration("CREDENTIAL_TTL", defaultCredentialTTL); err != nil {
		return nil, err
	}
	if cfg.RefreshInterval, err = getDuration("CREDENTIAL_REFRESH_INTERVAL", defaultRefreshInterval); err != nil {
		return nil, err
	}
	if cfg.RefreshInterval >= cfg.CredentialTTL {
		return nil, fmt.Errorf(
			"CREDENTIAL_REFRESH_INTERVAL (%v) must be shorter than CREDENTIAL_TTL (%v)",
			cfg.RefreshInterval, cfg.CredentialTTL,
		)
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key, fallback string) (time.Duration, error) {
	raw := getEnv(key, fallback)
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: bad duration %q: %w", key, raw, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s must be positive, got %v", key, d)
	}
	return d, nil
}
