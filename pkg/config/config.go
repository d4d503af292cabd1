package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config holds the application configuration
type Config struct {
	Environment              string
	ServerPort               int
	LogLevel                 string
	JWTSecret                string
	JWTExpireMinutes         int
	DatabaseHost             string
	DatabasePort             int
	DatabaseUser             string
	DatabasePassword         string
	DatabaseName             string
	DatabaseSSLMode          string
	RedisURL                 string
	CacheTTLSeconds          int
	RateLimitRequests        int
	RateLimitWindowSeconds   int
	ReconcileIntervalMinutes int
	SeedDefaultUsers         bool
	CORSAllowedOrigins       []string
}

// DatabaseDSN builds the PostgreSQL connection string
func (c *Config) DatabaseDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.DatabaseHost, c.DatabasePort, c.DatabaseUser, c.DatabasePassword, c.DatabaseName, c.DatabaseSSLMode)
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	port, err := intEnv("SERVER_PORT", 8080)
	if err != nil {
		return nil, err
	}
	dbPort, err := intEnv("DATABASE_PORT", 5432)
	if err != nil {
		return nil, err
	}
	jwtExpire, err := intEnv("JWT_EXPIRE_MINUTES", 1440)
	if err != nil {
		return nil, err
	}
	cacheTTL, err := intEnv("CACHE_TTL_SECONDS", 30)
	if err != nil {
		return nil, err
	}
	rateLimit, err := intEnv("RATE_LIMIT_REQUESTS", 100)
	if err != nil {
		return nil, err
	}
	rateWindow, err := intEnv("RATE_LIMIT_WINDOW_SECONDS", 60)
	if err != nil {
		return nil, err
	}
	reconcileInterval, err := intEnv("RECONCILE_INTERVAL_MINUTES", 15)
	if err != nil {
		return nil, err
	}

	return &Config{
		Environment:              getEnv("ENVIRONMENT", "development"),
		ServerPort:               port,
		LogLevel:                 getEnv("LOG_LEVEL", "info"),
		JWTSecret:                getEnv("JWT_SECRET", ""),
		JWTExpireMinutes:         jwtExpire,
		DatabaseHost:             getEnv("DATABASE_HOST", "localhost"),
		DatabasePort:             dbPort,
		DatabaseUser:             getEnv("DATABASE_USER", "condocare"),
		DatabasePassword:         getEnv("DATABASE_PASSWORD", "condocare"),
		DatabaseName:             getEnv("DATABASE_NAME", "condocare"),
		DatabaseSSLMode:          getEnv("DATABASE_SSLMODE", "disable"),
		RedisURL:                 getEnv("REDIS_URL", ""),
		CacheTTLSeconds:          cacheTTL,
		RateLimitRequests:        rateLimit,
		RateLimitWindowSeconds:   rateWindow,
		ReconcileIntervalMinutes: reconcileInterval,
		SeedDefaultUsers:         boolEnv("SEED_DEFAULT_USERS", true),
		CORSAllowedOrigins: parseCSVEnv("CORS_ALLOWED_ORIGINS", []string{
			"http://localhost:5173",
			"http://localhost:3000",
		}),
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func intEnv(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func boolEnv(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return b
}

func parseCSVEnv(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			trimmed := strings.TrimSpace(p)
			if trimmed != "" {
				out = append(out, trimmed)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return defaultValue
}
