// Package config loads server and CLI settings from the environment.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"

	"taleforge/internal/game"
)

// Store backends.
const (
	StoreMemory = "memory"
	StoreSQLite = "sqlite"
	StoreRedis  = "redis"
)

type Config struct {
	Addr       string `env:"TALEFORGE_ADDR" envDefault:":8080"`
	ContentDir string `env:"TALEFORGE_CONTENT_DIR" envDefault:"content"`

	Store      string `env:"TALEFORGE_STORE" envDefault:"memory"`
	SQLitePath string `env:"TALEFORGE_SQLITE_PATH" envDefault:"taleforge.db"`

	RedisAddr     string        `env:"TALEFORGE_REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string        `env:"TALEFORGE_REDIS_PASSWORD"`
	RedisDB       int           `env:"TALEFORGE_REDIS_DB" envDefault:"0"`
	RedisTTL      time.Duration `env:"TALEFORGE_REDIS_TTL" envDefault:"720h"`

	LogLevel  string `env:"TALEFORGE_LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"TALEFORGE_LOG_FORMAT" envDefault:"text"`

	MultiLevelPolicy string `env:"TALEFORGE_MULTI_LEVEL_POLICY" envDefault:"once"`
	StrictContent    bool   `env:"TALEFORGE_STRICT_CONTENT" envDefault:"false"`
}

// Load parses the environment and checks enumerated settings.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch c.Store {
	case StoreMemory, StoreSQLite, StoreRedis:
	default:
		return fmt.Errorf("TALEFORGE_STORE: unknown store %q", c.Store)
	}
	if !c.Policy().Valid() {
		return fmt.Errorf("TALEFORGE_MULTI_LEVEL_POLICY: unknown policy %q", c.MultiLevelPolicy)
	}
	return nil
}

func (c Config) Policy() game.MultiLevelPolicy {
	return game.MultiLevelPolicy(c.MultiLevelPolicy)
}

// Exitf writes a formatted error message to stderr and exits with code 1.
func Exitf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
