package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Prefix is prepended to every environment variable read by Load.
const Prefix = "TURNBATTLE_"

type Config struct {
	Server   ServerConfig   `envPrefix:"SERVER_"`
	Database DatabaseConfig `envPrefix:"DATABASE_"`
	Log      LogConfig      `envPrefix:"LOG_"`
	Arena    ArenaConfig    `envPrefix:"ARENA_"`
}

type ServerConfig struct {
	Host string `env:"HOST" envDefault:"0.0.0.0"`
	Port int    `env:"PORT" envDefault:"8080"`
	Mode string `env:"MODE" envDefault:"release"`
}

// DatabaseConfig points at the Postgres result store. An empty URL disables it.
type DatabaseConfig struct {
	URL string `env:"URL"`
}

type LogConfig struct {
	Level  string `env:"LEVEL" envDefault:"info"`
	Format string `env:"FORMAT" envDefault:"json"`
}

type ArenaConfig struct {
	Name       string        `env:"NAME" envDefault:"Arena"`
	RosterPath string        `env:"ROSTER_PATH" envDefault:"data/roster.yaml"`
	Pace       time.Duration `env:"PACE" envDefault:"500ms"`
	MaxTurns   int           `env:"MAX_TURNS" envDefault:"1000"`
	Seed       int64         `env:"SEED" envDefault:"0"`
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := &Config{}
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: Prefix}); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if cfg.Arena.MaxTurns <= 0 {
		return nil, fmt.Errorf("parse env: %sARENA_MAX_TURNS must be positive", Prefix)
	}
	if cfg.Arena.Pace < 0 {
		return nil, fmt.Errorf("parse env: %sARENA_PACE must not be negative", Prefix)
	}
	return cfg, nil
}

// Addr is the listen address for the HTTP server.
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
