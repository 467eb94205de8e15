// Package config loads application settings from the environment and an
// optional .env file.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all application settings.
type Config struct {
	Env  string // "development", "production" or "testing"
	Addr string

	// DatabaseURL is the SQLite connection string: a file path, optionally
	// with query parameters.
	DatabaseURL string

	// WriteSecret gates item writes. Plaintext or a bcrypt hash.
	WriteSecret string

	UploadDir       string
	UploadURLPrefix string
	MaxUploadBytes  int64

	S3 S3

	LogLevel slog.Level
	LogPath  string
	Seed     bool
}

// S3 configures the optional object storage backend for photos.
type S3 struct {
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	Bucket    string
	PublicURL string
}

// Enabled reports whether photos should go to S3 instead of disk.
func (s S3) Enabled() bool {
	return s.Endpoint != "" && s.Bucket != ""
}

// Load reads a .env file if present, then the environment.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		// Variables already set in the environment win over the file.
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("loading %s: %w", f, err)
		}
	}

	maxUpload, err := strconv.ParseInt(envOrDefault("MAX_UPLOAD_BYTES", "5242880"), 10, 64)
	if err != nil || maxUpload <= 0 {
		return nil, fmt.Errorf("MAX_UPLOAD_BYTES must be a positive number of bytes")
	}

	cfg := &Config{
		Env:             envOrDefault("APP_ENV", "development"),
		Addr:            envOrDefault("APP_ADDR", ":8080"),
		DatabaseURL:     envOrDefault("DATABASE_URL", "katalog.sqlite3"),
		WriteSecret:     os.Getenv("WRITE_SECRET"),
		UploadDir:       envOrDefault("UPLOAD_DIR", "public/uploads"),
		UploadURLPrefix: "/uploads",
		MaxUploadBytes:  maxUpload,
		S3: S3{
			Endpoint:  os.Getenv("S3_ENDPOINT"),
			Region:    envOrDefault("S3_REGION", "us-east-1"),
			AccessKey: os.Getenv("S3_ACCESS_KEY"),
			SecretKey: os.Getenv("S3_SECRET_KEY"),
			Bucket:    os.Getenv("S3_BUCKET"),
			PublicURL: os.Getenv("S3_PUBLIC_URL"),
		},
		LogLevel: parseLevel(os.Getenv("LOG_LEVEL")),
		LogPath:  os.Getenv("LOG_PATH"),
		Seed:     os.Getenv("SEED") == "true",
	}

	return cfg, nil
}

// Validate checks settings that flags may have overridden after Load.
func (c *Config) Validate() error {
	if c.WriteSecret == "" {
		return fmt.Errorf("WRITE_SECRET must be set")
	}
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL must not be empty")
	}
	if c.S3.Endpoint != "" && (c.S3.AccessKey == "" || c.S3.SecretKey == "" || c.S3.Bucket == "") {
		return fmt.Errorf("S3_ENDPOINT requires S3_ACCESS_KEY, S3_SECRET_KEY and S3_BUCKET")
	}
	return nil
}

// IsProduction reports whether internal error details must be hidden.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// IsDev reports whether the application runs in development mode.
func (c *Config) IsDev() bool {
	return c.Env == "development"
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
