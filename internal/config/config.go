package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server
	Port string
	Env  string

	// Database
	DatabaseURL string

	// Redis
	RedisURL string

	// JWT
	JWTSecret string

	// Conferencing provider
	CollabKind     string
	CollabURL      string
	CollabAPIKey   string
	CollabUsername string
	CollabPassword string

	// Deletion retry sweep
	CleanupIntervalMinutes int

	// Frontend
	FrontendURL string
}

func Load() *Config {
	// Load .env file if it exists
	godotenv.Load()

	cfg := &Config{
		Port:        getEnvOrDefault("PORT", "8080"),
		Env:         getEnvOrDefault("ENV", "development"),
		DatabaseURL: mustGetEnv("DATABASE_URL"),
		RedisURL:    mustGetEnv("REDIS_URL"),
		JWTSecret:   mustGetEnv("JWT_SECRET"),

		CollabKind:     getEnvOrDefault("COLLAB_API_KIND", "rest"),
		CollabURL:      getEnvOrDefault("COLLAB_API_URL", ""),
		CollabAPIKey:   getEnvOrDefault("COLLAB_API_KEY", ""),
		CollabUsername: getEnvOrDefault("COLLAB_API_USERNAME", ""),
		CollabPassword: getEnvOrDefault("COLLAB_API_PASSWORD", ""),

		CleanupIntervalMinutes: getEnvAsIntOrDefault("CLEANUP_INTERVAL_MINUTES", 60),

		FrontendURL: getEnvOrDefault("FRONTEND_URL", "http://localhost:5173"),
	}

	return cfg
}

// Simulation reports whether the provider should be simulated instead of
// called. Development environments without provider credentials run simulated.
func (c *Config) Simulation() bool {
	return c.CollabKind == "sim"
}

func mustGetEnv(key string) string {
	val := os.Getenv(key)
	if val == "" {
		panic(fmt.Sprintf("required environment variable %s is not set", key))
	}
	return val
}

func getEnvOrDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func getEnvAsIntOrDefault(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return n
}
