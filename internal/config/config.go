package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Record source backends.
const (
	SourceJSON  = "json"
	SourceSQL   = "sql"
	SourceRedis = "redis"
)

// App holds the runtime configuration loaded from environment variables.
type App struct {
	Env             string `env:"APP_ENV" envDefault:"dev"`
	HTTPPort        string `env:"HTTP_PORT" envDefault:"8081"`
	RecordSource    string `env:"RECORD_SOURCE" envDefault:"json"`
	AssetsDir       string `env:"ASSETS_DIR" envDefault:"assets"`
	SQLDriver       string `env:"SQL_DRIVER" envDefault:"sqlite"`
	DatabaseURL     string `env:"DATABASE_URL" envDefault:"keycard.db"`
	RedisAddr       string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPrefix     string `env:"REDIS_PREFIX" envDefault:"keycard"`
	QueueBackend    string `env:"QUEUE_BACKEND" envDefault:"memory"`
	QueueKey        string `env:"QUEUE_KEY" envDefault:"keycard:reload"`
	SnapshotCache   bool   `env:"SNAPSHOT_CACHE" envDefault:"true"`
	RateLimitPerMin int    `env:"RATE_LIMIT_PER_MIN" envDefault:"120"`
	WebDir          string `env:"WEB_DIR" envDefault:"web"`
}

// Load returns application config populated from environment variables.
func Load() (App, error) {
	var cfg App
	if err := env.Parse(&cfg); err != nil {
		return App{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return App{}, err
	}
	return cfg, nil
}

// Validate rejects unknown backend names.
func (a App) Validate() error {
	switch a.RecordSource {
	case SourceJSON, SourceSQL, SourceRedis:
	default:
		return fmt.Errorf("RECORD_SOURCE must be one of json, sql, redis; got %q", a.RecordSource)
	}
	switch a.QueueBackend {
	case "memory", "redis":
	default:
		return fmt.Errorf("QUEUE_BACKEND must be memory or redis; got %q", a.QueueBackend)
	}
	if a.RateLimitPerMin < 0 {
		return fmt.Errorf("RATE_LIMIT_PER_MIN must not be negative")
	}
	return nil
}

// Production reports whether the app runs in a production environment.
func (a App) Production() bool {
	return a.Env == "production" || a.Env == "prod"
}

// UsesRedis reports whether any component needs a redis connection.
func (a App) UsesRedis() bool {
	return a.RecordSource == SourceRedis || a.QueueBackend == "redis"
}
