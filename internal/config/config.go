// Package config loads runtime settings from the environment, after an
// optional .env file.
package config

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Backend names accepted by CLASSROLL_BACKEND.
const (
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

var (
	ErrUnknownBackend = errors.New("CLASSROLL_BACKEND must be one of: sqlite, redis, memory")
	ErrBadCSRFKey     = errors.New("CLASSROLL_CSRF_KEY must be 64 hex characters (32 bytes)")
	ErrMissingCSRFKey = errors.New("CLASSROLL_CSRF_KEY is required in production")
)

// Config holds the runtime configuration.
type Config struct {
	Env         string
	Addr        string
	Backend     string
	DBPath      string
	RedisAddr   string
	RedisPrefix string
	LoginDelay  time.Duration
	CSRFKey     []byte
	SlowQuery   time.Duration
}

// IsProduction reports whether CLASSROLL_ENV is "production".
func (c Config) IsProduction() bool {
	return c.Env == "production"
}

// Load reads .env (if present) and then the environment.
// PRE: none
// POST: Returns a usable Config or an error naming the bad setting
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("config_event", "event", "dotenv_unreadable", "error", err.Error())
	}
	return FromEnv()
}

// FromEnv builds a Config from the current environment only.
func FromEnv() (Config, error) {
	cfg := Config{
		Env:         getEnv("CLASSROLL_ENV", "development"),
		Addr:        getEnv("CLASSROLL_ADDR", ":8080"),
		Backend:     strings.ToLower(getEnv("CLASSROLL_BACKEND", BackendSQLite)),
		DBPath:      getEnv("CLASSROLL_DB_PATH", "classroll.db"),
		RedisAddr:   getEnv("CLASSROLL_REDIS_ADDR", "localhost:6379"),
		RedisPrefix: getEnv("CLASSROLL_REDIS_PREFIX", "classroll:"),
		LoginDelay:  durationEnv("CLASSROLL_LOGIN_DELAY", 600*time.Millisecond),
		SlowQuery:   time.Duration(intEnv("CLASSROLL_SLOW_QUERY_MS", 50)) * time.Millisecond,
	}

	switch cfg.Backend {
	case BackendSQLite, BackendRedis, BackendMemory:
	default:
		return Config{}, ErrUnknownBackend
	}

	key, err := csrfKey(os.Getenv("CLASSROLL_CSRF_KEY"), cfg.IsProduction())
	if err != nil {
		return Config{}, err
	}
	cfg.CSRFKey = key
	return cfg, nil
}

// csrfKey decodes the hex secret. Outside production a random key is
// generated when none is set.
func csrfKey(keyHex string, production bool) ([]byte, error) {
	if keyHex != "" {
		key, err := hex.DecodeString(keyHex)
		if err != nil || len(key) != 32 {
			return nil, ErrBadCSRFKey
		}
		return key, nil
	}
	if production {
		return nil, ErrMissingCSRFKey
	}
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("generate csrf key: %w", err)
	}
	slog.Warn("config_event", "event", "random_csrf_key", "hint", "set CLASSROLL_CSRF_KEY to keep tokens valid across restarts")
	return key, nil
}

func getEnv(key, fallback string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return fallback
}

func durationEnv(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		d, err := time.ParseDuration(val)
		if err != nil {
			slog.Warn("config_event", "event", "invalid_duration", "key", key, "fallback", fallback.String())
			return fallback
		}
		return d
	}
	return fallback
}

func intEnv(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		n, err := strconv.Atoi(val)
		if err != nil || n <= 0 {
			slog.Warn("config_event", "event", "invalid_int", "key", key, "fallback", fallback)
			return fallback
		}
		return n
	}
	return fallback
}
