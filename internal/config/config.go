package config

import (
	"os"
	"strconv"
	"time"

	"github.com/rotisserie/eris"
)

// Config holds runtime configuration values for the Notebase server.
type Config struct {
	DBPath        string
	ServerPort    int
	LogLevel      string
	JWTSecret     string
	TokenTTL      time.Duration
	SentryDSN     string
	Environment   string
	ShutdownGrace time.Duration
	RateLimit     RateLimitConfig
}

// RateLimitConfig controls the per-client token bucket on the HTTP layer.
type RateLimitConfig struct {
	RequestsPerSecond float64
	Burst             int
	ClientTTL         time.Duration
}

const (
	defaultDBPath             = "./data/notebase.db"
	defaultServerPort         = 8080
	defaultLogLevel           = "info"
	defaultJWTSecret          = "dev-secret"
	defaultTokenTTL           = 8 * time.Hour
	defaultEnvironment        = "development"
	defaultShutdownGrace      = 10 * time.Second
	defaultRateLimitPerSec    = 25.0
	defaultRateLimitBurst     = 50
	defaultRateLimitClientTTL = 5 * time.Minute
)

// Load reads configuration values from environment variables, applying defaults where necessary.
func Load() (*Config, error) {
	cfg := &Config{
		DBPath:        getEnv("DB_PATH", defaultDBPath),
		LogLevel:      getEnv("LOG_LEVEL", defaultLogLevel),
		JWTSecret:     getEnv("JWT_SECRET", defaultJWTSecret),
		TokenTTL:      defaultTokenTTL,
		SentryDSN:     os.Getenv("SENTRY_DSN"),
		Environment:   getEnv("ENV", defaultEnvironment),
		ShutdownGrace: defaultShutdownGrace,
		RateLimit: RateLimitConfig{
			RequestsPerSecond: defaultRateLimitPerSec,
			Burst:             defaultRateLimitBurst,
			ClientTTL:         defaultRateLimitClientTTL,
		},
	}

	portValue := getEnv("SERVER_PORT", strconv.Itoa(defaultServerPort))
	port, err := strconv.Atoi(portValue)
	if err != nil {
		return nil, eris.Wrapf(err, "invalid SERVER_PORT value: %s", portValue)
	}
	cfg.ServerPort = port

	if ttlValue := os.Getenv("TOKEN_TTL"); ttlValue != "" {
		ttl, err := time.ParseDuration(ttlValue)
		if err != nil {
			return nil, eris.Wrapf(err, "invalid TOKEN_TTL value: %s", ttlValue)
		}
		if ttl <= 0 {
			return nil, eris.Errorf("TOKEN_TTL must be positive, got %s", ttlValue)
		}
		cfg.TokenTTL = ttl
	}

	if cfg.JWTSecret == "" {
		return nil, eris.New("JWT_SECRET must not be empty")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
