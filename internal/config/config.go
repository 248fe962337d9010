package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port        string
	DBHost      string
	DBPort      string
	DBUser      string
	DBPassword  string
	DBName      string
	DBSSLMode   string
	AutoMigrate bool
	GinMode     string

	// Credit scoring gateway.
	CreditScoreURL     string
	CreditScoreTimeout time.Duration
	CreditScoreRetries int

	// Background sweeps (overdue instalments, expired voucher assignments).
	SweepInterval time.Duration
}

func Load() *Config {
	return &Config{
		Port:        getEnv("PORT", "8080"),
		DBHost:      getEnv("DB_HOST", "localhost"),
		DBPort:      getEnv("DB_PORT", "5432"),
		DBUser:      getEnv("DB_USER", "bnpl"),
		DBPassword:  getEnv("DB_PASSWORD", "bnpl_secret"),
		DBName:      getEnv("DB_NAME", "bnpl"),
		DBSSLMode:   getEnv("DB_SSLMODE", "disable"),
		AutoMigrate: getEnv("AUTO_MIGRATE", "false") == "true",
		GinMode:     getEnv("GIN_MODE", "debug"),

		CreditScoreURL:     getEnv("CREDIT_SCORE_URL", "http://localhost:9090"),
		CreditScoreTimeout: getDuration("CREDIT_SCORE_TIMEOUT", 5*time.Second),
		CreditScoreRetries: getInt("CREDIT_SCORE_RETRIES", 4),

		SweepInterval: getDuration("SWEEP_INTERVAL", time.Minute),
	}
}

func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName, c.DBSSLMode)
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}
