// Package config loads and validates the gemrelay configuration file.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
)

const (
	DefaultConfigPath      = "config.toml"
	DefaultHTTPAddr        = ":8080"
	DefaultModel           = "gemini-2.0-flash"
	DefaultHistoryLimit    = 20
	DefaultPollAttempts    = 12
	DefaultPollIntervalSec = 5
	DefaultMaxAssetBytes   = int64(20 * 1024 * 1024)
)

type Config struct {
	Log      LogConfig      `toml:"log"`
	Server   ServerConfig   `toml:"server"`
	Telegram TelegramConfig `toml:"telegram"`
	Gemini   GeminiConfig   `toml:"gemini"`
	Chat     ChatConfig     `toml:"chat"`
}

type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

type ServerConfig struct {
	Addr string `toml:"addr"`
}

type TelegramConfig struct {
	BotToken    string `toml:"bot_token" validate:"required"`
	PollTimeout int    `toml:"poll_timeout"`
}

type GeminiConfig struct {
	APIKey          string `toml:"api_key" validate:"required"`
	PollAttempts    int    `toml:"poll_attempts" validate:"gte=1"`
	PollIntervalSec int    `toml:"poll_interval_seconds" validate:"gte=1"`
}

type ChatConfig struct {
	DefaultModel  string `toml:"default_model"`
	HistoryLimit  int    `toml:"history_limit" validate:"gte=2"`
	MaxAssetBytes int64  `toml:"max_asset_bytes" validate:"gt=0"`
}

// PollInterval returns the asset readiness poll spacing as a duration.
func (c GeminiConfig) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalSec) * time.Second
}

func Load(path string) (Config, error) {
	cfg := Config{
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Server: ServerConfig{
			Addr: DefaultHTTPAddr,
		},
		Telegram: TelegramConfig{
			PollTimeout: 30,
		},
		Gemini: GeminiConfig{
			PollAttempts:    DefaultPollAttempts,
			PollIntervalSec: DefaultPollIntervalSec,
		},
		Chat: ChatConfig{
			DefaultModel:  DefaultModel,
			HistoryLimit:  DefaultHistoryLimit,
			MaxAssetBytes: DefaultMaxAssetBytes,
		},
	}

	if path == "" {
		path = DefaultConfigPath
	}

	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return cfg, err
		}
	} else if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, err
	}

	// Environment overrides keep secrets out of the config file.
	if token := os.Getenv("TELEGRAM_BOT_TOKEN"); token != "" {
		cfg.Telegram.BotToken = token
	}
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		cfg.Gemini.APIKey = key
	}

	if err := validator.New().Struct(cfg); err != nil {
		return cfg, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}
