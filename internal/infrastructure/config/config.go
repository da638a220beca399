package config

import (
	"errors"
	"strings"

	"github.com/BurntSushi/toml"
)

type Config struct {
	App struct {
		Timezone string `toml:"timezone"`
		LogDir   string `toml:"log_dir"`
	} `toml:"app"`

	Collect struct {
		IntervalMin       int    `toml:"interval_min"`
		RequestTimeoutSec int    `toml:"request_timeout_sec"`
		TradeCalendar     string `toml:"trade_calendar"`
	} `toml:"collect"`

	Source struct {
		BaseURL string `toml:"base_url"`
	} `toml:"source"`

	Storage struct {
		Driver string `toml:"driver"` // sqlite | postgres

		SQLite struct {
			Path string `toml:"path"`
		} `toml:"sqlite"`

		Postgres struct {
			DSN string `toml:"dsn"`
		} `toml:"postgres"`
	} `toml:"storage"`

	Redis struct {
		Enabled    bool   `toml:"enabled"`
		Addr       string `toml:"addr"`
		Password   string `toml:"password"`
		DB         int    `toml:"db"`
		Prefix     string `toml:"prefix"`
		TTLSeconds int    `toml:"ttl_seconds"`
	} `toml:"redis"`

	HTTP struct {
		Addr string `toml:"addr"`
	} `toml:"http"`
}

func Load(path string) (*Config, error) {
	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, err
	}
	applyDefaults(&cfg)
	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.App.Timezone == "" {
		cfg.App.Timezone = "Asia/Shanghai"
	}
	if cfg.App.LogDir == "" {
		cfg.App.LogDir = "logs"
	}
	if cfg.Collect.IntervalMin <= 0 {
		cfg.Collect.IntervalMin = 10
	}
	if cfg.Collect.RequestTimeoutSec <= 0 {
		cfg.Collect.RequestTimeoutSec = 5
	}
	if cfg.Collect.TradeCalendar == "" {
		cfg.Collect.TradeCalendar = "data/trade_date.csv"
	}
	if cfg.Source.BaseURL == "" {
		cfg.Source.BaseURL = "http://otc.dce.com.cn/portal/data/app"
	}
	if cfg.Storage.Driver == "" {
		cfg.Storage.Driver = "sqlite"
	}
	if cfg.Storage.SQLite.Path == "" {
		cfg.Storage.SQLite.Path = "data/otc_report.db"
	}
	if cfg.Redis.Prefix == "" {
		cfg.Redis.Prefix = "otcreport"
	}
	if cfg.Redis.TTLSeconds <= 0 {
		cfg.Redis.TTLSeconds = 300
	}
	if cfg.HTTP.Addr == "" {
		cfg.HTTP.Addr = ":8000"
	}
}

func validate(cfg *Config) error {
	switch strings.ToLower(strings.TrimSpace(cfg.Storage.Driver)) {
	case "sqlite":
		cfg.Storage.Driver = "sqlite"
	case "postgres":
		cfg.Storage.Driver = "postgres"
		if strings.TrimSpace(cfg.Storage.Postgres.DSN) == "" {
			return errors.New("storage.postgres.dsn empty but driver is postgres")
		}
	default:
		return errors.New("storage.driver must be sqlite or postgres")
	}

	if cfg.Redis.Enabled && strings.TrimSpace(cfg.Redis.Addr) == "" {
		return errors.New("redis.addr empty but redis enabled")
	}
	return nil
}
