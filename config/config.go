package config

import (
	"errors"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds every runtime setting read from the environment.
type Config struct {
	Environment string
	GinMode     string
	ServerPort  string
	LogLevel    string

	Database     DatabaseConfig
	StoreTimeout time.Duration
	BulkMaxItems int

	JWTSecret         string
	JWTExpireHours    int
	AdminEmail        string
	AdminPasswordHash string

	CORSOrigins      []string
	SMTP             SMTPConfig
	AdminNotifyEmail string
	TaxonomyFile     string
}

// DatabaseConfig describes the MySQL connection.
type DatabaseConfig struct {
	Host     string
	Port     string
	Name     string
	Username string
	Password string
	DebugSQL bool
}

// SMTPConfig describes outgoing mail. An empty Host disables mail delivery.
type SMTPConfig struct {
	Host          string
	Port          int
	User          string
	Pass          string
	From          string
	SkipTLSVerify bool
}

// Load reads .env (if present) and the process environment and checks the
// settings the API server cannot run without.
func Load() (*Config, error) {
	cfg := FromEnv()
	if cfg.JWTSecret == "" {
		return nil, errors.New("missing required environment variable: JWT_SECRET")
	}
	return cfg, nil
}

// FromEnv reads the settings without validating them. Operator tools that
// never issue tokens use it directly.
func FromEnv() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := &Config{
		Environment: strings.ToLower(getEnv("ENVIRONMENT", "development")),
		GinMode:     getEnv("GIN_MODE", ""),
		ServerPort:  getEnv("SERVER_PORT", "8080"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "3306"),
			Name:     getEnv("DB_DATABASE", "conference"),
			Username: getEnv("DB_USERNAME", "root"),
			Password: os.Getenv("DB_PASSWORD"),
			DebugSQL: strings.ToLower(os.Getenv("DEBUG_SQL")) == "true",
		},
		StoreTimeout:      getDuration("STORE_TIMEOUT", 5*time.Second),
		BulkMaxItems:      getInt("BULK_MAX_ITEMS", 100),
		JWTSecret:         os.Getenv("JWT_SECRET"),
		JWTExpireHours:    getInt("JWT_EXPIRE_HOURS", 24),
		AdminEmail:        os.Getenv("ADMIN_EMAIL"),
		AdminPasswordHash: os.Getenv("ADMIN_PASSWORD_HASH"),
		CORSOrigins:       splitList(getEnv("CORS_ORIGINS", "http://localhost:3000")),
		SMTP: SMTPConfig{
			Host:          os.Getenv("SMTP_HOST"),
			Port:          getInt("SMTP_PORT", 587),
			User:          os.Getenv("SMTP_USER"),
			Pass:          os.Getenv("SMTP_PASS"),
			From:          os.Getenv("SMTP_FROM"),
			SkipTLSVerify: os.Getenv("SMTP_SKIP_TLS_VERIFY") == "1",
		},
		AdminNotifyEmail: os.Getenv("ADMIN_NOTIFY_EMAIL"),
		TaxonomyFile:     os.Getenv("TAXONOMY_FILE"),
	}

	if cfg.BulkMaxItems <= 0 {
		cfg.BulkMaxItems = 100
	}
	return cfg
}

// IsProduction reports whether internal error details must be hidden from clients.
func (c *Config) IsProduction() bool {
	return c.Environment == "production" || c.GinMode == "release"
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getInt(key string, fallback int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}

func getDuration(key string, fallback time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
