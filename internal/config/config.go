package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds the server settings read from the environment
type Config struct {
	HTTPAddr        string        `env:"QUIZ_HTTP_ADDR"        envDefault:":8080"`
	TickInterval    time.Duration `env:"QUIZ_TICK_INTERVAL"    envDefault:"1s"`
	SendBuffer      int           `env:"QUIZ_SEND_BUFFER"      envDefault:"256"`
	ReportBuffer    int           `env:"QUIZ_REPORT_BUFFER"    envDefault:"128"`
	Console         bool          `env:"QUIZ_CONSOLE"          envDefault:"true"`
	ShutdownTimeout time.Duration `env:"QUIZ_SHUTDOWN_TIMEOUT" envDefault:"10s"`

	// Operator auth
	HostUsername string        `env:"HOST_USERNAME" envDefault:"admin"`
	HostPassword string        `env:"HOST_PASSWORD" envDefault:"password123"`
	JWTSecret    string        `env:"JWT_SECRET"    envDefault:"dev-secret-change-me"`
	SessionTTL   time.Duration `env:"SESSION_TTL"   envDefault:"12h"`

	// Optional backends, disabled when the URI is empty
	MongoURI      string `env:"MONGO_URI"`
	MongoDatabase string `env:"MONGO_DATABASE" envDefault:"livequiz"`
	RedisURI      string `env:"REDIS_URI"`
	RedisPrefix   string `env:"REDIS_PREFIX"   envDefault:"livequiz"`

	AllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"*"`
}

// Load parses the environment into a Config
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the server cannot run with
func (c *Config) Validate() error {
	if c.TickInterval <= 0 {
		return fmt.Errorf("tick interval must be positive, got %s", c.TickInterval)
	}
	if c.SendBuffer < 1 {
		return fmt.Errorf("send buffer must be at least 1, got %d", c.SendBuffer)
	}
	if c.ReportBuffer < 1 {
		return fmt.Errorf("report buffer must be at least 1, got %d", c.ReportBuffer)
	}
	if strings.TrimSpace(c.JWTSecret) == "" {
		return fmt.Errorf("JWT_SECRET must not be empty")
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("session ttl must be positive, got %s", c.SessionTTL)
	}
	return nil
}

// UsingDefaultSecret reports whether the JWT secret was left at its development value
func (c *Config) UsingDefaultSecret() bool {
	return c.JWTSecret == "dev-secret-change-me"
}
