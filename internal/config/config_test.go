package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"PriceSniper/internal/model"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad_FileAndDefaults(t *testing.T) {
	path := writeConfig(t, `
api:
  base_url: http://tracker:8000/api/v1
dashboard:
  default_window: 7d
cache:
  redis_addr: localhost:6379
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.API.BaseURL != "http://tracker:8000/api/v1" {
		t.Errorf("unexpected base url %q", cfg.API.BaseURL)
	}
	if cfg.DefaultWindow() != model.Window7D {
		t.Errorf("expected 7D window, got %s", cfg.DefaultWindow())
	}
	if cfg.Cache.RedisAddr != "localhost:6379" {
		t.Errorf("unexpected redis addr %q", cfg.Cache.RedisAddr)
	}
	if cfg.API.TimeoutSeconds != 30 || cfg.Cache.MaxReadings != 500 || cfg.Server.Addr != ":8080" {
		t.Errorf("defaults not applied: %+v", cfg)
	}
	if cfg.Schedule.SnapshotCron == "" || cfg.Schedule.DigestCron == "" {
		t.Error("expected default cron specs")
	}
	if got := cfg.AlertDiscount().String(); got != "0.05" {
		t.Errorf("expected alert discount 0.05, got %s", got)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("unexpected validation error: %v", err)
	}
}

func TestLoad_MissingFileUsesEnv(t *testing.T) {
	t.Setenv("TRACKER_API_URL", "http://env:8000/api/v1")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("DEFAULT_WINDOW", "1Y")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.API.BaseURL != "http://env:8000/api/v1" {
		t.Errorf("env override ignored, got %q", cfg.API.BaseURL)
	}
	if cfg.Cache.RedisDB != 3 {
		t.Errorf("expected redis db 3, got %d", cfg.Cache.RedisDB)
	}
	if cfg.DefaultWindow() != model.Window1Y {
		t.Errorf("expected 1Y, got %s", cfg.DefaultWindow())
	}
	if cfg.TelegramEnabled() {
		t.Error("telegram should be disabled without a token")
	}
}

func TestLoad_BadYAML(t *testing.T) {
	if _, err := Load(writeConfig(t, "api: [unterminated")); err == nil {
		t.Error("expected parse error")
	}
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		cfg, err := Load(writeConfig(t, "api:\n  base_url: http://x\n"))
		if err != nil {
			t.Fatalf("load: %v", err)
		}
		return cfg
	}

	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"missing base url", func(c *Config) { c.API.BaseURL = "" }, "api.base_url"},
		{"token without chat", func(c *Config) { c.Telegram.BotToken = "t" }, "telegram"},
		{"unknown window", func(c *Config) { c.Dashboard.DefaultWindow = "2W" }, "default_window"},
		{"discount too large", func(c *Config) { c.Dashboard.AlertDiscount = 1.5 }, "alert_discount"},
		{"negative readings", func(c *Config) { c.Cache.MaxReadings = -1 }, "max_readings"},
	}
	for _, tt := range tests {
		cfg := base()
		tt.mutate(cfg)
		err := cfg.Validate()
		if err == nil || !strings.Contains(err.Error(), tt.want) {
			t.Errorf("%s: expected error mentioning %q, got %v", tt.name, tt.want, err)
		}
	}
}
