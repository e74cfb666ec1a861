package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	// Server
	Env            string
	Port           string
	MetricsEnabled bool

	// Database
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// JWT
	JWTSecret        string
	JWTExpirationDur time.Duration

	// Pipeline endpoints (trust snapshot feed, EDGAR sync trigger)
	PipelineAPIKey string

	// External AI scoring endpoint
	ScoringAPIURL    string
	ScoringAPIKey    string
	ScoringTimeout   time.Duration
	ScoringRateLimit float64 // requests per second

	// SEC EDGAR
	EdgarBaseURL      string
	EdgarUserAgent    string
	EdgarCacheTTL     time.Duration
	EdgarRateLimit    float64
	EdgarSyncInterval time.Duration
}

var appConfig *Config

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if not already loaded
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	config := &Config{
		// Server
		Env:            getEnv("ENV", "development"),
		Port:           getEnv("PORT", "8080"),
		MetricsEnabled: getEnvBool("METRICS_ENABLED", true),

		// Database
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "spacos"),
		DBPassword: getEnv("DB_PASSWORD", "spacos"),
		DBName:     getEnv("DB_NAME", "spacos"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		// JWT
		JWTSecret: getEnv("JWT_SECRET", "fallback-secret-key-for-dev-only"),

		PipelineAPIKey: getEnv("PIPELINE_API_KEY", ""),

		ScoringAPIURL:    getEnv("SCORING_API_URL", ""),
		ScoringAPIKey:    getEnv("SCORING_API_KEY", ""),
		ScoringTimeout:   getEnvDuration("SCORING_TIMEOUT", 60*time.Second),
		ScoringRateLimit: getEnvFloat("SCORING_RATE_LIMIT", 1),

		EdgarBaseURL:      getEnv("EDGAR_BASE_URL", "https://data.sec.gov"),
		EdgarUserAgent:    getEnv("EDGAR_USER_AGENT", "SPAC OS admin@example.com"),
		EdgarCacheTTL:     getEnvDuration("EDGAR_CACHE_TTL", 15*time.Minute),
		EdgarRateLimit:    getEnvFloat("EDGAR_RATE_LIMIT", 8),
		EdgarSyncInterval: getEnvDuration("EDGAR_SYNC_INTERVAL", 6*time.Hour),
	}

	config.JWTExpirationDur = getEnvDuration("JWT_EXPIRES_IN", 24*time.Hour)

	appConfig = config
	return config, nil
}

// Get returns the application configuration
func Get() *Config {
	if appConfig == nil {
		var err error
		appConfig, err = Load()
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}
	}
	return appConfig
}

// Set replaces the process-wide configuration. Tests use it to pin the JWT
// secret without touching the environment.
func Set(cfg *Config) {
	appConfig = cfg
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		log.Printf("Warning: invalid %s value '%s', falling back to %s\n", key, raw, defaultValue)
		return defaultValue
	}
	return d
}

func getEnvFloat(key string, defaultValue float64) float64 {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || f <= 0 {
		log.Printf("Warning: invalid %s value '%s', falling back to %v\n", key, raw, defaultValue)
		return defaultValue
	}
	return f
}

func getEnvBool(key string, defaultValue bool) bool {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		log.Printf("Warning: invalid %s value '%s', falling back to %v\n", key, raw, defaultValue)
		return defaultValue
	}
	return b
}
