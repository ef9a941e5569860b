package config

import (
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/harrisonvanderbyl/stable-horde-bot/internal/platform/crypto"
	"github.com/joho/godotenv"
	"go-simpler.org/env"
)

type Config struct {
	AppEnv      string `env:"APP_ENV" default:"development"`
	Port        string `env:"PORT" default:"8080"`
	DatabaseURL string `env:"DATABASE_URL"`
	RedisURL    string `env:"REDIS_URL"`
	LogLevel    string `env:"LOG_LEVEL" default:"info"`
	LogFormat   string `env:"LOG_FORMAT" default:"text"`

	DiscordToken   string `env:"DISCORD_TOKEN"`
	DiscordAppID   string `env:"DISCORD_APP_ID"`
	DiscordGuildID string `env:"DISCORD_GUILD_ID"`

	LedgerAPIURL  string        `env:"LEDGER_API_URL"`
	LedgerTimeout time.Duration `env:"LEDGER_TIMEOUT" default:"5s"`

	CredentialEncryptionKey string `env:"CREDENTIAL_ENCRYPTION_KEY"`

	MaxConcurrentReactions int     `env:"MAX_CONCURRENT_REACTIONS" default:"64"`
	DMRateLimit            float64 `env:"DM_RATE_LIMIT" default:"5"`
	SettingsFile           string  `env:"SETTINGS_FILE" default:"config.yaml"`
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	var cfg Config
	if err := env.Load(&cfg, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func validate(cfg *Config) error {
	// Checked in a fixed order so the reported variable is deterministic.
	required := []struct{ name, value string }{
		{"DISCORD_TOKEN", cfg.DiscordToken},
		{"DISCORD_APP_ID", cfg.DiscordAppID},
		{"DATABASE_URL", cfg.DatabaseURL},
		{"LEDGER_API_URL", cfg.LedgerAPIURL},
	}
	for _, r := range required {
		if r.value == "" {
			return fmt.Errorf("%s is required", r.name)
		}
	}

	u, err := url.Parse(cfg.LedgerAPIURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("LEDGER_API_URL must be an absolute http(s) URL, got %q", cfg.LedgerAPIURL)
	}

	if cfg.LedgerTimeout <= 0 {
		return errors.New("LEDGER_TIMEOUT must be positive")
	}
	if cfg.MaxConcurrentReactions < 1 {
		return errors.New("MAX_CONCURRENT_REACTIONS must be at least 1")
	}
	if cfg.DMRateLimit <= 0 {
		return errors.New("DM_RATE_LIMIT must be positive")
	}

	if cfg.CredentialEncryptionKey != "" {
		keyBytes, err := hex.DecodeString(cfg.CredentialEncryptionKey)
		if err != nil {
			return fmt.Errorf("CREDENTIAL_ENCRYPTION_KEY must be valid hex: %w", err)
		}
		if len(keyBytes) != crypto.KeySize {
			return fmt.Errorf("CREDENTIAL_ENCRYPTION_KEY must be exactly 64 hex characters (32 bytes), got %d bytes", len(keyBytes))
		}
	}

	if cfg.IsProduction() {
		if cfg.CredentialEncryptionKey == "" {
			return errors.New("CREDENTIAL_ENCRYPTION_KEY is required in production")
		}
		if mode := sslMode(cfg.DatabaseURL); mode == "disable" || mode == "allow" {
			return fmt.Errorf("DATABASE_URL uses sslmode=%s which is not allowed in production", mode)
		}
	}

	return nil
}

func sslMode(databaseURL string) string {
	u, err := url.Parse(databaseURL)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Query().Get("sslmode"))
}
