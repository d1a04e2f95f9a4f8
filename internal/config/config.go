package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/cloudwatchw/backend/internal/weather"
)

type AppConfig struct {
	Port string

	MongoURI string
	MongoDB  string

	OpenWeatherAPIKey string

	JWTSecret string
	TokenTTL  time.Duration

	// HTTPTimeout bounds every outbound provider call.
	HTTPTimeout time.Duration

	// FetchPolicy selects always_fresh or cache_first reads.
	FetchPolicy weather.FetchPolicy

	// SweepInterval is how often the background job refreshes all known
	// locations (cache_first only).
	SweepInterval time.Duration

	// PurgeAt is the daily HH:MM (UTC) at which the weather collection is
	// wiped.
	PurgeAt string

	// LookupTolerance is the degree window for per-user location lookups;
	// LatestTolerance the broader window for the public latest-near lookup.
	LookupTolerance float64
	LatestTolerance float64
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}

	cfg := &AppConfig{}

	cfg.Port = getenvDefault("PORT", "8080")
	cfg.MongoURI = getenvDefault("MONGO_URI", "mongodb://localhost:27017")
	cfg.MongoDB = getenvDefault("MONGO_DB", "cloudwatch")
	cfg.OpenWeatherAPIKey = os.Getenv("OPENWEATHER_API_KEY")

	cfg.JWTSecret = os.Getenv("JWT_SECRET")
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	ttl, err := time.ParseDuration(getenvDefault("TOKEN_TTL", "24h"))
	if err != nil {
		return nil, fmt.Errorf("invalid TOKEN_TTL: %w", err)
	}
	cfg.TokenTTL = ttl

	timeout, err := time.ParseDuration(getenvDefault("HTTP_TIMEOUT", "10s"))
	if err != nil {
		return nil, fmt.Errorf("invalid HTTP_TIMEOUT: %w", err)
	}
	cfg.HTTPTimeout = timeout

	policy, err := weather.ParsePolicy(getenvDefault("FETCH_POLICY", string(weather.PolicyCacheFirst)))
	if err != nil {
		return nil, fmt.Errorf("invalid FETCH_POLICY: %w", err)
	}
	cfg.FetchPolicy = policy

	interval, err := time.ParseDuration(getenvDefault("SWEEP_INTERVAL", "15m"))
	if err != nil {
		return nil, fmt.Errorf("invalid SWEEP_INTERVAL: %w", err)
	}
	cfg.SweepInterval = interval

	cfg.PurgeAt = getenvDefault("PURGE_AT", "00:00")

	cfg.LookupTolerance = getenvFloat("LOOKUP_TOLERANCE", 0.001)
	cfg.LatestTolerance = getenvFloat("LATEST_TOLERANCE", 0.01)

	return cfg, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err == nil {
			return f
		}
	}
	return def
}
