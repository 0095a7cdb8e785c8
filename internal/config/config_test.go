package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}

	if cfg.HTTPAddr != ":8080" {
		t.Errorf("Expected :8080, got %s", cfg.HTTPAddr)
	}
	if cfg.TickInterval != time.Second {
		t.Errorf("Expected 1s tick, got %s", cfg.TickInterval)
	}
	if cfg.SendBuffer != 256 || cfg.ReportBuffer != 128 {
		t.Errorf("Unexpected buffers: %d %d", cfg.SendBuffer, cfg.ReportBuffer)
	}
	if !cfg.Console {
		t.Error("Console should be enabled by default")
	}
	if cfg.MongoURI != "" || cfg.RedisURI != "" {
		t.Error("Backends should be disabled by default")
	}
	if len(cfg.AllowedOrigins) != 1 || cfg.AllowedOrigins[0] != "*" {
		t.Errorf("Unexpected origins: %v", cfg.AllowedOrigins)
	}
	if !cfg.UsingDefaultSecret() {
		t.Error("Expected development secret")
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("QUIZ_HTTP_ADDR", "127.0.0.1:9000")
	t.Setenv("QUIZ_TICK_INTERVAL", "250ms")
	t.Setenv("QUIZ_CONSOLE", "false")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("MONGO_URI", "mongodb://localhost:27017")
	t.Setenv("REDIS_URI", "redis://localhost:6379/0")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example,https://b.example")

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}

	if cfg.HTTPAddr != "127.0.0.1:9000" || cfg.TickInterval != 250*time.Millisecond {
		t.Errorf("Unexpected config: %+v", cfg)
	}
	if cfg.Console {
		t.Error("Console should be disabled")
	}
	if cfg.UsingDefaultSecret() {
		t.Error("Secret should come from the environment")
	}
	if len(cfg.AllowedOrigins) != 2 || cfg.AllowedOrigins[1] != "https://b.example" {
		t.Errorf("Unexpected origins: %v", cfg.AllowedOrigins)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name, key, value string
	}{
		{"zero tick", "QUIZ_TICK_INTERVAL", "0s"},
		{"bad duration", "QUIZ_TICK_INTERVAL", "soon"},
		{"zero send buffer", "QUIZ_SEND_BUFFER", "0"},
		{"blank secret", "JWT_SECRET", "   "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			if _, err := Load(); err == nil {
				t.Errorf("Expected error for %s=%q", tt.key, tt.value)
			}
		})
	}
}
