package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Config stores the application configuration. It is constructed once at
// process start and handed to the components that need it; nothing reads
// the environment after Load returns.
type Config struct {
	MongoURI    string
	MongoDBName string
	JWTSecret   string
	JWTExpiry   time.Duration
	Host        string
	Port        string
	LogLevel    string
	LogPath     string
	WebAppDir   string // Path to the built front-end files, served statically when present
}

// getEnv gets an environment variable or returns a default value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// getEnvDuration gets an environment variable as a duration or returns a default value.
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
		log.Printf("Invalid duration in %s, using default %s", key, fallback)
	}
	return fallback
}

// Load loads configuration from environment variables (via .env file) or defaults.
// It fails when MONGODB_URI or JWT_SECRET is absent; the process must not start
// without them.
func Load() (*Config, error) {
	// godotenv.Load will not override variables already set in the environment.
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on existing environment variables and defaults.")
	}

	mongoURI := os.Getenv("MONGODB_URI")
	if mongoURI == "" {
		return nil, fmt.Errorf("missing required environment variable: MONGODB_URI")
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		return nil, fmt.Errorf("missing required environment variable: JWT_SECRET")
	}

	return &Config{
		MongoURI:    mongoURI,
		MongoDBName: getEnv("MONGODB_NAME", "discography"),
		JWTSecret:   jwtSecret,
		JWTExpiry:   getEnvDuration("JWT_EXPIRES_IN", 24*time.Hour),
		Host:        getEnv("HOST", "0.0.0.0"),
		Port:        getEnv("PORT", "3000"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		LogPath:     getEnv("LOG_PATH", ""),
		WebAppDir:   getEnv("WEB_APP_DIR", ""),
	}, nil
}
