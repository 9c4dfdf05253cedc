// Package config loads runtime configuration from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds all runtime settings for the coordinator.
type Config struct {
	// Port the HTTP/WebSocket server listens on.
	Port string `env:"PORT" envDefault:"3001"`
	// CORSAllowedOrigins is a comma-separated origin list.
	CORSAllowedOrigins string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*"`
	// MaxRoomHistory caps per-room message history; 0 disables the cap.
	MaxRoomHistory int `env:"MAX_ROOM_HISTORY" envDefault:"1000"`
	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`
	// CodeAttempts bounds room-code collision retries.
	CodeAttempts int `env:"CODE_ATTEMPTS" envDefault:"5"`
}

// Load parses the configuration from environment variables.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}
