package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	apperrors "socialgraph/backend/pkg/errors"
)

// Media backends
const (
	MediaBackendDisk = "disk"
	MediaBackendGCS  = "gcs"
)

// Config holds all application configuration
type Config struct {
	// App
	Port     string
	Env      string
	LogLevel string

	// Neo4j
	Neo4jURI       string
	Neo4jUser      string
	Neo4jPassword  string
	Neo4jDatabase  string
	Neo4jTxTimeout time.Duration

	// Identity
	JWTSecret string
	JWTIssuer string
	TokenTTL  time.Duration
	RedisURL  string // Optional; enables logout revocation

	// Media
	MediaBackend       string
	MediaDir           string
	MediaBaseURL       string
	GCSBucket          string
	GCSCredentialsFile string
	MaxUploadBytes     int64
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file, but don't fail if it doesn't exist
	_ = godotenv.Load()

	cfg := &Config{
		Port:               getEnv("PORT", "8080"),
		Env:                getEnv("ENV", "development"),
		LogLevel:           getEnv("LOG_LEVEL", ""),
		Neo4jURI:           getEnv("NEO4J_URI", "bolt://localhost:7687"),
		Neo4jUser:          getEnv("NEO4J_USER", "neo4j"),
		Neo4jPassword:      getEnv("NEO4J_PASSWORD", "password"),
		Neo4jDatabase:      getEnv("NEO4J_DATABASE", "neo4j"),
		Neo4jTxTimeout:     getEnvDuration("NEO4J_TX_TIMEOUT", 10*time.Second),
		JWTSecret:          getEnv("JWT_SECRET", ""),
		JWTIssuer:          getEnv("JWT_ISSUER", "socialgraph"),
		TokenTTL:           getEnvDuration("TOKEN_TTL", 24*time.Hour),
		RedisURL:           getEnv("REDIS_URL", ""),
		MediaBackend:       getEnv("MEDIA_BACKEND", MediaBackendDisk),
		MediaDir:           getEnv("MEDIA_DIR", "wwwroot/images"),
		MediaBaseURL:       getEnv("MEDIA_BASE_URL", "/images"),
		GCSBucket:          getEnv("GCS_BUCKET", ""),
		GCSCredentialsFile: getEnv("GCS_CREDENTIALS_FILE", ""),
		MaxUploadBytes:     int64(getEnvInt("MAX_UPLOAD_BYTES", 10<<20)),
	}

	if cfg.JWTSecret == "" && !cfg.IsProduction() {
		cfg.JWTSecret = "dev-secret-change-me"
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that required configuration values are set
func (c *Config) Validate() error {
	if c.Neo4jURI == "" {
		return apperrors.NewConfigMissingRequired("NEO4J_URI")
	}
	if c.Neo4jUser == "" {
		return apperrors.NewConfigMissingRequired("NEO4J_USER")
	}
	if c.Neo4jPassword == "" {
		return apperrors.NewConfigMissingRequired("NEO4J_PASSWORD")
	}
	if c.JWTSecret == "" {
		return apperrors.NewConfigMissingRequired("JWT_SECRET")
	}
	if c.Neo4jTxTimeout <= 0 {
		return fmt.Errorf("NEO4J_TX_TIMEOUT must be positive")
	}
	switch c.MediaBackend {
	case MediaBackendDisk:
		if c.MediaDir == "" {
			return apperrors.NewConfigMissingRequired("MEDIA_DIR")
		}
	case MediaBackendGCS:
		if c.GCSBucket == "" {
			return apperrors.NewConfigMissingRequired("GCS_BUCKET")
		}
	default:
		return fmt.Errorf("unknown MEDIA_BACKEND %q", c.MediaBackend)
	}
	return nil
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		var result int
		if _, err := fmt.Sscanf(value, "%d", &result); err == nil {
			return result
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
