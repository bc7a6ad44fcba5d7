package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds all configuration for the application
type Config struct {
	Rules RulesConfig
	Redis RedisConfig
}

// RulesConfig holds rule data configuration
type RulesConfig struct {
	Dir string // Directory containing the rule document tree
}

// RedisConfig holds Redis-specific configuration
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Rules: RulesConfig{
			Dir: getEnvOrDefault("RULES_DIR", "data"),
		},
		Redis: RedisConfig{
			// Empty means run without persistence
			Addr:     os.Getenv("REDIS_ADDR"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       getEnvAsIntOrDefault("REDIS_DB", 0),
		},
	}

	// Validate required fields
	if cfg.Rules.Dir == "" {
		return nil, fmt.Errorf("RULES_DIR is required")
	}

	return cfg, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
