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
	Port string
	Env  string

	// JWT
	JWTSecret        string
	JWTExpirationDur time.Duration

	// Polygon market data API
	PolygonAPIKey  string
	PolygonBaseURL string

	// Gateway rate limit: quota calls per rolling window
	RateLimitQuota  int
	RateLimitWindow time.Duration

	// Cache TTLs per bucket
	AggregatesTTL time.Duration
	SearchTTL     time.Duration
	TickerInfoTTL time.Duration

	// Firebase Cloud Messaging
	FirebaseCredsPath string

	// Market monitor: alert when a watched ticker moves at least
	// MovementThreshold percent in a day
	MovementThreshold   float64
	MarketCheckInterval time.Duration
}

var appConfig *Config

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if not already loaded
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	config := &Config{
		Port: getEnv("PORT", "8080"),
		Env:  getEnv("ENV", "development"),

		JWTSecret: getEnv("JWT_SECRET", "fallback-secret-key-for-dev-only"),

		PolygonAPIKey:  getEnv("POLYGON_API_KEY", ""),
		PolygonBaseURL: getEnv("POLYGON_BASE_URL", "https://api.polygon.io"),

		// Polygon free tier allows 5 calls per minute.
		RateLimitQuota:  getEnvInt("RATE_LIMIT_QUOTA", 5),
		RateLimitWindow: getEnvDuration("RATE_LIMIT_WINDOW", time.Minute),

		AggregatesTTL: getEnvDuration("AGGREGATES_CACHE_TTL", time.Hour),
		SearchTTL:     getEnvDuration("SEARCH_CACHE_TTL", 30*time.Minute),
		TickerInfoTTL: getEnvDuration("TICKER_INFO_CACHE_TTL", time.Hour),

		FirebaseCredsPath: getEnv("FIREBASE_CREDS_PATH", ""),

		MovementThreshold:   getEnvFloat("MOVEMENT_THRESHOLD", 5.0),
		MarketCheckInterval: getEnvDuration("MARKET_CHECK_INTERVAL", time.Hour),
	}

	// Parse JWT expiration duration
	expStr := getEnv("JWT_EXPIRES_IN", "24h")
	expDur, err := time.ParseDuration(expStr)
	if err != nil {
		log.Printf("Warning: invalid JWT_EXPIRES_IN value '%s', falling back to 24h\n", expStr)
		expDur = 24 * time.Hour
	}
	config.JWTExpirationDur = expDur

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

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt retrieves an integer environment variable or returns a default value
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
		log.Printf("Warning: invalid %s value '%s', falling back to %d\n", key, value, defaultValue)
	}
	return defaultValue
}

// getEnvFloat retrieves a float environment variable or returns a default value
func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
		log.Printf("Warning: invalid %s value '%s', falling back to %g\n", key, value, defaultValue)
	}
	return defaultValue
}

// getEnvDuration retrieves a duration environment variable or returns a default value
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
		log.Printf("Warning: invalid %s value '%s', falling back to %s\n", key, value, defaultValue)
	}
	return defaultValue
}
