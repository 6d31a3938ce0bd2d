package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// Server
	Port       string
	GinMode    string
	CORSOrigin string

	// Backend REST API
	BackendBaseURL string
	BackendTimeout time.Duration
	SucursalID     int64

	// Credentials used by the background live-board consumer
	ServiceToken  string
	ServiceCookie string

	// Session
	AdminUserIDs []int64
	LoginRate    int

	// UI
	NoticeTTL time.Duration

	// Database
	DBDriver string
	DBDSN    string
}

func Load() (*Config, error) {
	cfg := &Config{
		Port:       getEnv("PORT", "8080"),
		GinMode:    getEnv("GIN_MODE", "debug"),
		CORSOrigin: getEnv("CORS_ORIGIN", "http://localhost:3000"),

		BackendBaseURL: strings.TrimRight(getEnv("BACKEND_BASE_URL", ""), "/"),
		BackendTimeout: getDuration("BACKEND_TIMEOUT", 15*time.Second),

		ServiceToken:  getEnv("SERVICE_TOKEN", ""),
		ServiceCookie: getEnv("SERVICE_COOKIE", ""),

		LoginRate: getInt("LOGIN_RATE", 5),
		NoticeTTL: getDuration("NOTICE_TTL", 3*time.Second),

		DBDriver: getEnv("DB_DRIVER", "sqlite"),
		DBDSN:    getEnv("DB_DSN", "backoffice.db"),
	}

	sucursal, err := strconv.ParseInt(getEnv("SUCURSAL_ID", "1"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid SUCURSAL_ID: %w", err)
	}
	cfg.SucursalID = sucursal

	ids, err := parseIDs(getEnv("ADMIN_USER_IDS", ""))
	if err != nil {
		return nil, fmt.Errorf("invalid ADMIN_USER_IDS: %w", err)
	}
	cfg.AdminUserIDs = ids

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.BackendBaseURL == "" {
		return fmt.Errorf("BACKEND_BASE_URL is required")
	}
	if c.SucursalID <= 0 {
		return fmt.Errorf("SUCURSAL_ID must be positive")
	}
	if c.LoginRate <= 0 {
		return fmt.Errorf("LOGIN_RATE must be positive")
	}
	switch c.DBDriver {
	case "sqlite", "mysql":
	default:
		return fmt.Errorf("DB_DRIVER must be sqlite or mysql, got %q", c.DBDriver)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return v
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if d, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return d
	}
	return defaultValue
}

func parseIDs(s string) ([]int64, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	var ids []int64
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
