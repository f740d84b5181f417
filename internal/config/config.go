package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"PriceSniper/internal/calculator"
	"PriceSniper/internal/model"
)

// Config holds all application configuration.
type Config struct {
	API struct {
		BaseURL        string `yaml:"base_url"`
		APIKey         string `yaml:"api_key"`
		TimeoutSeconds int    `yaml:"timeout_seconds"`
	} `yaml:"api"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Schedule struct {
		SnapshotCron string `yaml:"snapshot_cron"`
		DigestCron   string `yaml:"digest_cron"`
	} `yaml:"schedule"`
	Dashboard struct {
		DefaultWindow string  `yaml:"default_window"`
		StateFile     string  `yaml:"state_file"`
		AlertDiscount float64 `yaml:"alert_discount"`
	} `yaml:"dashboard"`
	Cache struct {
		SQLitePath    string `yaml:"sqlite_path"`
		RedisAddr     string `yaml:"redis_addr"`
		RedisPassword string `yaml:"redis_password"`
		RedisDB       int    `yaml:"redis_db"`
		MaxReadings   int    `yaml:"max_readings"`
	} `yaml:"cache"`
	Server struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`
	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`
	Proxy string `yaml:"proxy"`
}

// Load reads config from a YAML file, then applies environment variable overrides.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("TRACKER_API_URL"); v != "" {
		cfg.API.BaseURL = v
	}
	if v := os.Getenv("TRACKER_API_KEY"); v != "" {
		cfg.API.APIKey = v
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("DEFAULT_WINDOW"); v != "" {
		cfg.Dashboard.DefaultWindow = v
	}
	if v := os.Getenv("CRON_SNAPSHOT"); v != "" {
		cfg.Schedule.SnapshotCron = v
	}
	if v := os.Getenv("CRON_DIGEST"); v != "" {
		cfg.Schedule.DigestCron = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Cache.SQLitePath = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Cache.RedisAddr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		cfg.Cache.RedisPassword = v
	}
	if v := os.Getenv("REDIS_DB"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Cache.RedisDB = n
		}
	}
	if v := os.Getenv("HTTP_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}

	// Defaults
	if cfg.API.TimeoutSeconds == 0 {
		cfg.API.TimeoutSeconds = 30
	}
	if cfg.Schedule.SnapshotCron == "" {
		cfg.Schedule.SnapshotCron = "0 0 */6 * * *"
	}
	if cfg.Schedule.DigestCron == "" {
		cfg.Schedule.DigestCron = "0 0 9 * * *"
	}
	if cfg.Dashboard.DefaultWindow == "" {
		cfg.Dashboard.DefaultWindow = string(model.Window30D)
	}
	if cfg.Dashboard.StateFile == "" {
		cfg.Dashboard.StateFile = "data/dashboard_state.json"
	}
	if cfg.Dashboard.AlertDiscount == 0 {
		cfg.Dashboard.AlertDiscount = calculator.DefaultAlertDiscount.InexactFloat64()
	}
	if cfg.Cache.SQLitePath == "" {
		cfg.Cache.SQLitePath = "data/price_sniper.db"
	}
	if cfg.Cache.MaxReadings == 0 {
		cfg.Cache.MaxReadings = 500
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8080"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}

	return cfg, nil
}

// Validate checks that all required fields are set.
func (c *Config) Validate() error {
	if c.API.BaseURL == "" {
		return fmt.Errorf("api.base_url is required")
	}
	if (c.Telegram.BotToken == "") != (c.Telegram.ChatID == "") {
		return fmt.Errorf("telegram.bot_token and telegram.chat_id must be set together")
	}
	if _, ok := calculator.ParseWindow(c.Dashboard.DefaultWindow); !ok {
		return fmt.Errorf("dashboard.default_window %q is not one of %v", c.Dashboard.DefaultWindow, model.Windows)
	}
	if c.Dashboard.AlertDiscount <= 0 || c.Dashboard.AlertDiscount >= 1 {
		return fmt.Errorf("dashboard.alert_discount must be between 0 and 1")
	}
	if c.Cache.MaxReadings < 0 {
		return fmt.Errorf("cache.max_readings must not be negative")
	}
	return nil
}

// TelegramEnabled reports whether a bot is configured.
func (c *Config) TelegramEnabled() bool {
	return c.Telegram.BotToken != ""
}

// DefaultWindow returns the configured chart window.
func (c *Config) DefaultWindow() model.TimeWindow {
	w, _ := calculator.ParseWindow(c.Dashboard.DefaultWindow)
	return w
}

// AlertDiscount returns the configured alert discount as a decimal.
func (c *Config) AlertDiscount() decimal.Decimal {
	return decimal.NewFromFloat(c.Dashboard.AlertDiscount)
}
