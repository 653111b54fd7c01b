// Package config reads service settings from the environment, after loading
// an optional .env file.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port string

	PostgresDSN string

	RedisURL        string
	CatalogCacheTTL time.Duration

	AMQPURL string

	S3Bucket             string
	S3Region             string
	S3Endpoint           string
	StoragePublicBaseURL string

	AdminToken string

	Timezone   *time.Location
	SessionTTL time.Duration

	HTTPTimeout time.Duration

	LogLevel       string
	MetricsEnabled bool
}

// Load reads .env files (missing files are ignored) and then the process
// environment. Variables already set in the environment win over .env.
func Load(files ...string) (*Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", f, err)
		}
	}
	return FromEnv()
}

func FromEnv() (*Config, error) {
	cfg := &Config{
		Port:                 getenv("PORT", "8080"),
		PostgresDSN:          os.Getenv("POSTGRES_DSN"),
		RedisURL:             os.Getenv("REDIS_URL"),
		AMQPURL:              os.Getenv("AMQP_URL"),
		S3Bucket:             os.Getenv("S3_BUCKET"),
		S3Region:             getenv("S3_REGION", "us-east-1"),
		S3Endpoint:           os.Getenv("S3_ENDPOINT"),
		StoragePublicBaseURL: os.Getenv("STORAGE_PUBLIC_BASE_URL"),
		AdminToken:           os.Getenv("ADMIN_TOKEN"),
		LogLevel:             getenv("LOG_LEVEL", "info"),
	}

	if cfg.PostgresDSN == "" {
		cfg.PostgresDSN = postgresDSNFromParts()
	}

	var err error
	if cfg.CatalogCacheTTL, err = durationEnv("CATALOG_CACHE_TTL", 5*time.Minute); err != nil {
		return nil, err
	}
	if cfg.SessionTTL, err = durationEnv("POS_SESSION_TTL", 12*time.Hour); err != nil {
		return nil, err
	}
	if cfg.HTTPTimeout, err = durationEnv("HTTP_TIMEOUT", 15*time.Second); err != nil {
		return nil, err
	}
	if cfg.MetricsEnabled, err = boolEnv("METRICS_ENABLED", true); err != nil {
		return nil, err
	}

	tz := getenv("POS_TIMEZONE", "America/Sao_Paulo")
	if cfg.Timezone, err = time.LoadLocation(tz); err != nil {
		return nil, fmt.Errorf("POS_TIMEZONE %q: %w", tz, err)
	}

	if cfg.AdminToken == "" {
		return nil, errors.New("ADMIN_TOKEN is required")
	}
	return cfg, nil
}

func (c *Config) Addr() string {
	return ":" + c.Port
}

func postgresDSNFromParts() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(getenv("POSTGRES_USER", "postgres"), os.Getenv("POSTGRES_PASSWORD")),
		Host:     getenv("POSTGRES_HOST", "localhost") + ":" + getenv("POSTGRES_PORT", "5432"),
		Path:     getenv("POSTGRES_DB", "arraia"),
		RawQuery: "sslmode=" + getenv("POSTGRES_SSLMODE", "disable"),
	}
	return u.String()
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func durationEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

func boolEnv(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s: %w", key, err)
	}
	return b, nil
}
