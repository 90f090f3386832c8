package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	// Environment
	Environment string

	// Database
	DatabaseURL string

	// Redis
	RedisURL string

	// Server
	Port        string
	FrontendURL string

	// Simulation
	TickRate           int     // steps per second
	Difficulty         float64 // scatter multiplier, clamped to [0,1] by the sim
	GlobalScatter      float64 // table-wide kick scatter in degrees
	SessionTTLMinutes  int     // idle minutes before a session is reaped
	SnapshotTTLMinutes int     // Redis snapshot expiry
	ReaperPollSeconds  int     // session reaper poll interval

	// Security
	JWTSecret              string
	OperatorSessionMinutes int
}

func Load() *Config {
	// Load .env file if it exists
	godotenv.Load()

	return &Config{
		// Environment
		Environment: getEnv("APP_ENV", "development"),

		// Database
		DatabaseURL: getEnv("DATABASE_URL", "postgres://localhost:5432/pinfield?sslmode=disable"),

		// Redis
		RedisURL: getEnv("REDIS_URL", "redis://localhost:6379/0"),

		// Server
		Port:        getEnv("APP_PORT", "8080"),
		FrontendURL: getEnv("FRONTEND_URL", "http://localhost:5173"),

		// Simulation
		TickRate:           getEnvInt("SIM_TICK_RATE", 60),
		Difficulty:         getEnvFloat("SIM_DIFFICULTY", 1.0),
		GlobalScatter:      getEnvFloat("SIM_GLOBAL_SCATTER", 2.0),
		SessionTTLMinutes:  getEnvInt("SESSION_TTL_MINUTES", 30),
		SnapshotTTLMinutes: getEnvInt("SNAPSHOT_TTL_MINUTES", 60),
		ReaperPollSeconds:  getEnvInt("REAPER_POLL_SECONDS", 15),

		// Security
		JWTSecret:              getEnv("JWT_SECRET", "change-me-in-production"),
		OperatorSessionMinutes: getEnvInt("OPERATOR_SESSION_MINUTES", 240),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}
