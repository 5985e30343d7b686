// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"time"

	_ "github.com/joho/godotenv/autoload"
)

// Config is the process configuration, read from the environment with a
// .env file auto-loaded when present.
type Config struct {
	RedisURL         string
	NATSURL          string
	CentrifugoURL    string
	CentrifugoAPIKey string

	LockTTL  time.Duration
	LobbyTTL time.Duration
	GameTTL  time.Duration
}

// Load reads configuration from the environment. Connection settings
// are required; TTLs fall back to sane defaults.
func Load() (*Config, error) {
	cfg := &Config{
		RedisURL:         os.Getenv("REDIS_URL"),
		NATSURL:          os.Getenv("NATS_URL"),
		CentrifugoURL:    os.Getenv("CENTRIFUGO_URL"),
		CentrifugoAPIKey: os.Getenv("CENTRIFUGO_API_KEY"),
	}

	if cfg.RedisURL == "" {
		return nil, fmt.Errorf("REDIS_URL is required")
	}
	if cfg.NATSURL == "" {
		return nil, fmt.Errorf("NATS_URL is required")
	}
	if cfg.CentrifugoURL == "" {
		return nil, fmt.Errorf("CENTRIFUGO_URL is required")
	}
	if cfg.CentrifugoAPIKey == "" {
		return nil, fmt.Errorf("CENTRIFUGO_API_KEY is required")
	}

	var err error
	if cfg.LockTTL, err = getDuration("LOCK_TTL", 5*time.Second); err != nil {
		return nil, err
	}
	if cfg.LobbyTTL, err = getDuration("LOBBY_TTL", 24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.GameTTL, err = getDuration("GAME_TTL", 24*time.Hour); err != nil {
		return nil, err
	}
	return cfg, nil
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}
