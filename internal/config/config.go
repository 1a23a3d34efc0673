package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Store struct {
		// Backend is one of memory, sqlite, github.
		Backend string `yaml:"backend"`
		SQLite  struct {
			Path string `yaml:"path"`
		} `yaml:"sqlite"`
		GitHub struct {
			Owner   string `yaml:"owner"`
			Repo    string `yaml:"repo"`
			Branch  string `yaml:"branch"`
			Token   string `yaml:"token"`
			Dir     string `yaml:"dir"`
			BaseURL string `yaml:"base_url"`
		} `yaml:"github"`
	} `yaml:"store"`

	Redis struct {
		Enabled         bool   `yaml:"enabled"`
		Address         string `yaml:"address"`
		Password        string `yaml:"password"`
		DB              int    `yaml:"db"`
		CacheTTLSeconds int    `yaml:"cache_ttl_seconds"`
	} `yaml:"redis"`

	Notifier struct {
		// Kind is one of smtp, telegram, none.
		Kind string `yaml:"kind"`
		SMTP struct {
			Host        string `yaml:"host"`
			Port        int    `yaml:"port"`
			Username    string `yaml:"username"`
			Password    string `yaml:"password"`
			SenderName  string `yaml:"sender_name"`
			SenderEmail string `yaml:"sender_email"`
		} `yaml:"smtp"`
		Telegram struct {
			BotToken string `yaml:"bot_token"`
		} `yaml:"telegram"`
		RatePerSecond float64 `yaml:"rate_per_second"`
		RateBurst     int     `yaml:"rate_burst"`
	} `yaml:"notifier"`

	Server struct {
		Address string `yaml:"address"`
	} `yaml:"server"`

	Monitoring struct {
		HealthCheckPort   int  `yaml:"health_check_port"`
		PrometheusEnabled bool `yaml:"prometheus_enabled"`
		PrometheusPort    int  `yaml:"prometheus_port"`
	} `yaml:"monitoring"`

	Booking struct {
		ConflictRetries int `yaml:"conflict_retries"`
	} `yaml:"booking"`

	Sheets struct {
		Enabled         bool   `yaml:"enabled"`
		SpreadsheetID   string `yaml:"spreadsheet_id"`
		CredentialsFile string `yaml:"credentials_file"`
		SyncMinutes     int    `yaml:"sync_minutes"`
	} `yaml:"sheets"`
}

func Load(path string) (*Config, error) {
	if path == "" {
		path = "configs/config.yaml"
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	// Support ${ENV_VAR} placeholders in YAML config.
	data = []byte(os.ExpandEnv(string(data)))

	var cfg Config
	if err = yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	if cfg.Store.Backend == "" {
		cfg.Store.Backend = "memory"
	}
	switch cfg.Store.Backend {
	case "memory", "sqlite", "github":
	default:
		return nil, fmt.Errorf("config: unknown store backend %q", cfg.Store.Backend)
	}

	if cfg.Store.Backend == "sqlite" {
		if cfg.Store.SQLite.Path == "" {
			cfg.Store.SQLite.Path = "data/maidbook.db"
		}
		if err = os.MkdirAll(filepath.Dir(cfg.Store.SQLite.Path), 0o755); err != nil {
			return nil, err
		}
	}

	if cfg.Server.Address == "" {
		cfg.Server.Address = ":8080"
	}
	if cfg.Notifier.Kind == "" {
		cfg.Notifier.Kind = "none"
	}

	return &cfg, nil
}

func (c *Config) RedisCacheTTL() time.Duration {
	if c.Redis.CacheTTLSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.Redis.CacheTTLSeconds) * time.Second
}

func (c *Config) ConflictRetries() int {
	if c.Booking.ConflictRetries <= 0 {
		return 3
	}
	return c.Booking.ConflictRetries
}

func (c *Config) SheetsSyncInterval() time.Duration {
	if c.Sheets.SyncMinutes <= 0 {
		return 5 * time.Minute
	}
	return time.Duration(c.Sheets.SyncMinutes) * time.Minute
}
