package config

import (
	"os"
	"strconv"
	"time"
)

// DatabaseConfig holds PostgreSQL database connection settings.
type DatabaseConfig struct {
	Host               string
	Port               string
	User               string
	Password           string
	Name               string
	SSLMode            string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeSec int
}

// MinIOConfig holds object storage settings for the fixture bucket.
type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// RedisConfig holds settings for the owner page cache. An empty Addr disables caching.
type RedisConfig struct {
	Addr       string
	Password   string
	DB         int
	PageTTLSec int
}

// ClassifierConfig points at the external sensitive-information classifier.
type ClassifierConfig struct {
	URL        string
	Path       string
	TimeoutSec int
}

// Timeout returns the bound applied to a single classifier call.
func (c ClassifierConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSec) * time.Second
}

// ScannerConfig points at the content-threat scanning capability.
type ScannerConfig struct {
	URL         string
	Path        string
	TimeoutSec  int
	CacheTTLSec int
}

// Timeout returns the bound applied to a single scan call.
func (c ScannerConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSec) * time.Second
}

// AuthConfig holds bearer token settings.
type AuthConfig struct {
	Secret string
	TTLMin int
}

// FixtureConfig selects where the fixture ingestion variant reads payloads from.
// Dir wins over the MinIO bucket when both are set.
type FixtureConfig struct {
	Dir string
}

// AppConfig is the centralized configuration struct for the application.
// It is populated from environment variables. Sensitive values are not hardcoded.
type AppConfig struct {
	Port       string
	Timezone   string
	Database   DatabaseConfig
	MinIO      MinIOConfig
	Redis      RedisConfig
	Classifier ClassifierConfig
	Scanner    ScannerConfig
	Auth       AuthConfig
	Fixture    FixtureConfig
}

// Location resolves Timezone, falling back to UTC when it is unknown.
func (c *AppConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Load reads configuration from environment variables.
// A .env file can be auto-loaded by importing: _ "github.com/joho/godotenv/autoload"
// This function does not require a .env file; real environment variables take precedence.
func Load() *AppConfig {
	return &AppConfig{
		Port:     getEnv("PORT", "8080"),
		Timezone: getEnv("TIMEZONE", "UTC"),
		Database: DatabaseConfig{
			Host:               getEnv("DB_HOST", ""),
			Port:               getEnv("DB_PORT", "5432"),
			User:               getEnv("DB_USER", ""),
			Password:           getEnv("DB_PASSWORD", ""),
			Name:               getEnv("DB_NAME", ""),
			SSLMode:            getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:       getEnvInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:       getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetimeSec: getEnvInt("DB_CONN_MAX_LIFETIME_SEC", 300),
		},
		MinIO: MinIOConfig{
			Endpoint:  getEnv("MINIO_ENDPOINT", ""),
			AccessKey: getEnv("MINIO_ACCESS_KEY", ""),
			SecretKey: getEnv("MINIO_SECRET_KEY", ""),
			Bucket:    getEnv("MINIO_BUCKET", ""),
			UseSSL:    getEnvBool("MINIO_USE_SSL", false),
		},
		Redis: RedisConfig{
			Addr:       getEnv("REDIS_ADDR", ""),
			Password:   getEnv("REDIS_PASSWORD", ""),
			DB:         getEnvInt("REDIS_DB", 0),
			PageTTLSec: getEnvInt("REDIS_PAGE_TTL_SEC", 60),
		},
		Classifier: ClassifierConfig{
			URL:        getEnv("CLASSIFIER_URL", "http://localhost:8081"),
			Path:       getEnv("CLASSIFIER_PATH", "/detect"),
			TimeoutSec: getEnvInt("CLASSIFIER_TIMEOUT_SEC", 10),
		},
		Scanner: ScannerConfig{
			URL:         getEnv("SCANNER_URL", ""),
			Path:        getEnv("SCANNER_PATH", "/scan"),
			TimeoutSec:  getEnvInt("SCANNER_TIMEOUT_SEC", 30),
			CacheTTLSec: getEnvInt("SCANNER_CACHE_TTL_SEC", 600),
		},
		Auth: AuthConfig{
			Secret: getEnv("JWT_SECRET", ""),
			TTLMin: getEnvInt("JWT_TTL_MIN", 60),
		},
		Fixture: FixtureConfig{
			Dir: getEnv("FIXTURE_DIR", ""),
		},
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err == nil {
			return i
		}
	}
	return def
}
