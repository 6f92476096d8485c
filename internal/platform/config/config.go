package config

import (
	"os"
	"time"
)

// Server captures all configuration for the relay process.
type Server struct {
	Addr string

	// Upstream resource/authorization server.
	UpstreamBaseURL string
	ClientID        string
	ClientSecret    string
	Locale          string

	// Optional external backends. Empty means in-memory fallback.
	RedisURL    string
	DatabaseURL string

	// Timeouts bounding external calls so no relay invocation hangs.
	UpstreamTimeout time.Duration
	StoreTimeout    time.Duration
	RequestTimeout  time.Duration

	// TTL overrides for the cache allow-list.
	GlobalCacheTTL  time.Duration
	PerUserCacheTTL time.Duration
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	cfg := Server{
		Addr:            getenv("FITRELAY_ADDR", ":8080"),
		UpstreamBaseURL: getenv("UPSTREAM_BASE_URL", "https://api.fitbit.com"),
		ClientID:        os.Getenv("UPSTREAM_CLIENT_ID"),
		ClientSecret:    os.Getenv("UPSTREAM_CLIENT_SECRET"),
		Locale:          getenv("UPSTREAM_LOCALE", "en_US"),
		RedisURL:        os.Getenv("REDIS_URL"),
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		UpstreamTimeout: duration("UPSTREAM_TIMEOUT", 15*time.Second),
		StoreTimeout:    duration("STORE_TIMEOUT", 5*time.Second),
		RequestTimeout:  duration("REQUEST_TIMEOUT", 30*time.Second),
		GlobalCacheTTL:  duration("CACHE_TTL_GLOBAL", 4*time.Hour),
		PerUserCacheTTL: duration("CACHE_TTL_PER_USER", 24*time.Hour),
	}
	return cfg
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func duration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
	}
	return fallback
}
