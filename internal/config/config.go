package config

import (
	"os"
	"strconv"
	"time"
)

// Realtime tunables. These are policy constants rather than env settings:
// changing them means changing delivery behavior, so they live in code.
const (
	// SendBufferSize is the per-connection outbound queue. A client that
	// falls this far behind is considered stalled and gets evicted.
	SendBufferSize = 256

	// PresenceTTL bounds how long a Redis presence key survives without
	// a refresh, so a crashed process does not leave users online forever.
	PresenceTTL = 5 * time.Minute

	// History pagination bounds.
	DefaultHistoryLimit = 50
	MaxHistoryLimit     = 200
)

// Config holds everything read from the environment at startup.
type Config struct {
	Port        string
	DatabaseDSN string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	JWTSecret string
	TokenTTL  time.Duration

	// CallRingTimeout bounds how long a call may stay ringing before it
	// is marked missed. Zero disables the timeout: an unanswered call
	// then rings until a participant ends it.
	CallRingTimeout time.Duration
}

// Load reads the configuration from the environment. Call godotenv.Load
// first if a .env file should be honored.
func Load() *Config {
	return &Config{
		Port:            getEnv("PORT", "8080"),
		DatabaseDSN:     getEnv("DATABASE_DSN", "host=localhost user=user password=password dbname=chatline port=5432 sslmode=disable"),
		RedisAddr:       getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:   getEnv("REDIS_PASSWORD", ""),
		RedisDB:         getEnvInt("REDIS_DB", 0),
		JWTSecret:       getEnv("JWT_SECRET", ""),
		TokenTTL:        getEnvDuration("TOKEN_TTL", 72*time.Hour),
		CallRingTimeout: getEnvDuration("CALL_RING_TIMEOUT", 0),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
