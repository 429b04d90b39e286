// Package config provides application configuration loading.
// This is part of the platform layer and contains no business logic.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// =============================================================================
// Module-Specific Config Interfaces (Principle of Least Privilege)
// =============================================================================

// DatabaseConfig provides database connection settings.
type DatabaseConfig interface {
	GetDatabaseURL() string
}

// JWTConfig provides JWT validation settings for middleware.
type JWTConfig interface {
	GetJWTAccessSecret() string
}

// AuthServiceConfig provides settings needed by the auth service.
type AuthServiceConfig interface {
	JWTConfig
	GetAccessTokenTTL() time.Duration
	GetRefreshTokenTTL() time.Duration
}

// HTTPConfig provides settings for the HTTP server.
type HTTPConfig interface {
	GetHTTPAddr() string
	GetCORSAllowAll() bool
	GetCORSOrigins() []string
	GetCORSAllowCreds() bool
}

// RedisConfig provides settings for the shared Redis instance.
type RedisConfig interface {
	GetRedisURL() string
	GetRedisTLSInsecure() bool
}

// SchedulerConfig provides settings for the asynq task queue.
type SchedulerConfig interface {
	RedisConfig
	GetAsynqQueueName() string
	GetAsynqConcurrency() int
}

// NominatimConfig provides settings for the geocoding provider client.
type NominatimConfig interface {
	GetNominatimBaseURL() string
	GetNominatimUserAgent() string
	GetNominatimCountryCodes() string
	GetNominatimLanguage() string
	GetNominatimViewbox() string
	GetNominatimTimeout() time.Duration
	GetNominatimRatePerSecond() float64
}

// PlacesConfig provides settings for the place-search pipeline.
type PlacesConfig interface {
	NominatimConfig
	GetPlacesDebounce() time.Duration
	GetPlacesRetryBackoff() time.Duration
	GetPlacesSessionIdleTTL() time.Duration
	GetPlacesSharedCacheTTL() time.Duration
}

// =============================================================================
// Main Config Struct
// =============================================================================

// Config holds all application configuration values.
type Config struct {
	Env                   string
	HTTPAddr              string
	DatabaseURL           string
	JWTAccessSecret       string
	AccessTokenTTL        time.Duration
	RefreshTokenTTL       time.Duration
	CORSAllowAll          bool
	CORSOrigins           []string
	CORSAllowCreds        bool
	RedisURL              string
	RedisTLSInsecure      bool
	AsynqQueueName        string
	AsynqConcurrency      int
	NominatimBaseURL      string
	NominatimUserAgent    string
	NominatimCountryCodes string
	NominatimLanguage     string
	NominatimViewbox      string
	NominatimTimeout      time.Duration
	NominatimRatePerSec   float64
	PlacesDebounce        time.Duration
	PlacesRetryBackoff    time.Duration
	PlacesSessionIdleTTL  time.Duration
	PlacesSharedCacheTTL  time.Duration
}

// =============================================================================
// Interface Implementations
// =============================================================================

// DatabaseConfig implementation
func (c *Config) GetDatabaseURL() string { return c.DatabaseURL }

// JWTConfig implementation
func (c *Config) GetJWTAccessSecret() string { return c.JWTAccessSecret }

// AuthServiceConfig implementation
func (c *Config) GetAccessTokenTTL() time.Duration  { return c.AccessTokenTTL }
func (c *Config) GetRefreshTokenTTL() time.Duration { return c.RefreshTokenTTL }

// HTTPConfig implementation
func (c *Config) GetHTTPAddr() string      { return c.HTTPAddr }
func (c *Config) GetCORSAllowAll() bool    { return c.CORSAllowAll }
func (c *Config) GetCORSOrigins() []string { return c.CORSOrigins }
func (c *Config) GetCORSAllowCreds() bool  { return c.CORSAllowCreds }

// RedisConfig implementation
func (c *Config) GetRedisURL() string       { return c.RedisURL }
func (c *Config) GetRedisTLSInsecure() bool { return c.RedisTLSInsecure }

// SchedulerConfig implementation
func (c *Config) GetAsynqQueueName() string { return c.AsynqQueueName }
func (c *Config) GetAsynqConcurrency() int  { return c.AsynqConcurrency }

// NominatimConfig implementation
func (c *Config) GetNominatimBaseURL() string        { return c.NominatimBaseURL }
func (c *Config) GetNominatimUserAgent() string      { return c.NominatimUserAgent }
func (c *Config) GetNominatimCountryCodes() string   { return c.NominatimCountryCodes }
func (c *Config) GetNominatimLanguage() string       { return c.NominatimLanguage }
func (c *Config) GetNominatimViewbox() string        { return c.NominatimViewbox }
func (c *Config) GetNominatimTimeout() time.Duration { return c.NominatimTimeout }
func (c *Config) GetNominatimRatePerSecond() float64 { return c.NominatimRatePerSec }

// PlacesConfig implementation
func (c *Config) GetPlacesDebounce() time.Duration       { return c.PlacesDebounce }
func (c *Config) GetPlacesRetryBackoff() time.Duration   { return c.PlacesRetryBackoff }
func (c *Config) GetPlacesSessionIdleTTL() time.Duration { return c.PlacesSessionIdleTTL }
func (c *Config) GetPlacesSharedCacheTTL() time.Duration { return c.PlacesSharedCacheTTL }

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg, err := LoadWithoutSecrets()
	if err != nil {
		return nil, err
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.JWTAccessSecret == "" {
		return nil, fmt.Errorf("JWT_ACCESS_SECRET is required")
	}

	return cfg, nil
}

// LoadWithoutSecrets reads configuration without requiring the database and
// JWT settings. Worker and tooling binaries that never serve HTTP use it.
func LoadWithoutSecrets() (*Config, error) {
	_ = godotenv.Load()

	corsOrigins := splitCSV(getEnv("CORS_ORIGINS", "http://localhost:8081"))
	corsAllowAll := strings.EqualFold(getEnv("CORS_ALLOW_ALL", "false"), "true")
	if containsWildcard(corsOrigins) {
		corsAllowAll = true
	}

	cfg := &Config{
		Env:                   getEnv("APP_ENV", "development"),
		HTTPAddr:              getEnv("HTTP_ADDR", ":8080"),
		DatabaseURL:           getEnv("DATABASE_URL", ""),
		JWTAccessSecret:       getEnv("JWT_ACCESS_SECRET", ""),
		AccessTokenTTL:        mustDuration(getEnv("JWT_ACCESS_TTL", "15m")),
		RefreshTokenTTL:       mustDuration(getEnv("JWT_REFRESH_TTL", "720h")),
		CORSAllowAll:          corsAllowAll,
		CORSOrigins:           corsOrigins,
		CORSAllowCreds:        strings.EqualFold(getEnv("CORS_ALLOW_CREDENTIALS", "false"), "true"),
		RedisURL:              getEnv("REDIS_URL", ""),
		RedisTLSInsecure:      strings.EqualFold(getEnv("REDIS_TLS_INSECURE", "false"), "true"),
		AsynqQueueName:        getEnv("ASYNQ_QUEUE", "default"),
		AsynqConcurrency:      mustInt(getEnv("ASYNQ_CONCURRENCY", "2")),
		NominatimBaseURL:      getEnv("NOMINATIM_BASE_URL", "https://nominatim.openstreetmap.org"),
		NominatimUserAgent:    getEnv("NOMINATIM_USER_AGENT", "evntly-backend/1.0"),
		NominatimCountryCodes: getEnv("NOMINATIM_COUNTRY_CODES", "ee"),
		NominatimLanguage:     getEnv("NOMINATIM_LANGUAGE", "et"),
		NominatimViewbox:      getEnv("NOMINATIM_VIEWBOX", "21.5,59.9,28.3,57.4"),
		NominatimTimeout:      mustDuration(getEnv("NOMINATIM_TIMEOUT", "10s")),
		NominatimRatePerSec:   mustFloat(getEnv("NOMINATIM_RATE_PER_SEC", "1")),
		PlacesDebounce:        mustDuration(getEnv("PLACES_DEBOUNCE", "400ms")),
		PlacesRetryBackoff:    mustDuration(getEnv("PLACES_RETRY_BACKOFF", "1500ms")),
		PlacesSessionIdleTTL:  mustDuration(getEnv("PLACES_SESSION_IDLE_TTL", "15m")),
		PlacesSharedCacheTTL:  mustDuration(getEnv("PLACES_SHARED_CACHE_TTL", "24h")),
	}

	if cfg.CORSAllowAll && cfg.CORSAllowCreds {
		return nil, fmt.Errorf("CORS_ALLOW_CREDENTIALS cannot be true when CORS_ALLOW_ALL is true")
	}
	if cfg.NominatimUserAgent == "" {
		return nil, fmt.Errorf("NOMINATIM_USER_AGENT must not be empty")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

func mustDuration(value string) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0
	}
	return d
}

func mustInt(value string) int {
	result, err := strconv.Atoi(value)
	if err != nil {
		return 0
	}
	return result
}

func mustFloat(value string) float64 {
	result, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0
	}
	return result
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	results := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			results = append(results, trimmed)
		}
	}
	return results
}

func containsWildcard(values []string) bool {
	for _, value := range values {
		if value == "*" {
			return true
		}
	}
	return false
}
