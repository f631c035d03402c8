/*
Package configs loads the server configuration from environment variables.

A .env file in the working directory, when present, is loaded first; variables already set in
the process environment take precedence over it.
*/
package configs

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// AppConfig contains all configuration parameters required for the server to run.
type AppConfig struct {
	// General Server Settings
	Environment string
	Port        int

	// Security Settings
	AllowedOrigins []string

	// Data Settings
	SeedDemoUsers bool

	// Rate Limit Settings (per client IP)
	WriteRate      float64
	WriteBurst     int
	WSConnectRate  float64
	WSConnectBurst int
}

// IsDevelopment reports whether the server runs in the development environment.
func (c *AppConfig) IsDevelopment() bool {
	return c.Environment == "development"
}

// LoadConfig reads the configuration, applying defaults and validating ranges.
func LoadConfig() (*AppConfig, error) {
	_ = godotenv.Load()

	cfg := &AppConfig{}

	// --- General Server Settings ---
	cfg.Environment = getEnv("ENVIRONMENT", "development")

	port, err := strconv.Atoi(getEnv("PORT", "4000"))
	if err != nil {
		return nil, fmt.Errorf("invalid PORT environment variable: %w", err)
	}
	if port < 1024 || port > 65535 {
		return nil, fmt.Errorf("port number %d is outside the allowed range (%d-%d)", port, 1024, 65535)
	}
	cfg.Port = port

	// --- Security Settings ---
	cfg.AllowedOrigins = splitList(os.Getenv("ALLOWED_ORIGINS"))

	// --- Data Settings ---
	seed, err := strconv.ParseBool(getEnv("SEED_DEMO_USERS", "true"))
	if err != nil {
		return nil, fmt.Errorf("invalid SEED_DEMO_USERS environment variable: %w", err)
	}
	cfg.SeedDemoUsers = seed

	// --- Rate Limit Settings ---
	if cfg.WriteRate, err = positiveFloat("WRITE_RATE", "5"); err != nil {
		return nil, err
	}
	if cfg.WriteBurst, err = positiveInt("WRITE_BURST", "10"); err != nil {
		return nil, err
	}
	if cfg.WSConnectRate, err = positiveFloat("WS_CONNECT_RATE", "1"); err != nil {
		return nil, err
	}
	if cfg.WSConnectBurst, err = positiveInt("WS_CONNECT_BURST", "5"); err != nil {
		return nil, err
	}

	return cfg, nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// splitList splits a comma separated list, dropping blanks. The result is never nil.
func splitList(raw string) []string {
	out := []string{}
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func positiveFloat(key, def string) (float64, error) {
	v, err := strconv.ParseFloat(getEnv(key, def), 64)
	if err != nil || v <= 0 {
		return 0, fmt.Errorf("invalid %s environment variable: must be a positive number", key)
	}
	return v, nil
}

func positiveInt(key, def string) (int, error) {
	v, err := strconv.Atoi(getEnv(key, def))
	if err != nil || v <= 0 {
		return 0, fmt.Errorf("invalid %s environment variable: must be a positive integer", key)
	}
	return v, nil
}
