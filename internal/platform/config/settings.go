package config

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/harrisonvanderbyl/stable-horde-bot/internal/domain"
	"github.com/spf13/viper"
)

// Settings is the bot behaviour loaded from the settings file.
type Settings struct {
	Rules               *domain.RuleTable
	DefaultMessage      string
	EscrowTime          time.Duration
	UseEmojiNames       bool
	StatusNotifications StatusNotifications
}

type StatusNotifications struct {
	Enabled   bool
	ChannelID string
	Up        string
	Down      string
}

// emojiEntry is a list item rather than a map key: viper lower-cases map
// keys, which would break case-sensitive emoji names.
type emojiEntry struct {
	Symbol  string `mapstructure:"symbol"`
	Value   int    `mapstructure:"value"`
	Message string `mapstructure:"message"`
}

type rawSettings struct {
	Emojis              []emojiEntry `mapstructure:"emojis"`
	DefaultMessage      string       `mapstructure:"default_message"`
	EscrowTime          string       `mapstructure:"escrow_time"`
	UseEmojiNames       bool         `mapstructure:"use_emoji_names"`
	StatusNotifications struct {
		Enabled  bool   `mapstructure:"enabled"`
		Channel  string `mapstructure:"channel"`
		Messages struct {
			Up   string `mapstructure:"up"`
			Down string `mapstructure:"down"`
		} `mapstructure:"messages"`
	} `mapstructure:"status_notifications"`
}

// TemplateValidator rejects malformed receive message templates.
type TemplateValidator func(tmpl string) error

// LoadSettings reads a YAML, JSON or TOML settings file and compiles the
// reaction rules. Every message template is checked with validateTemplate.
func LoadSettings(path string, validateTemplate TemplateValidator) (*Settings, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetDefault("default_message", "{{user_mention}}has sent you {{amount}} kudos! {{message_url}}")
	v.SetDefault("escrow_time", "24h")
	v.SetDefault("use_emoji_names", true)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read settings file: %w", err)
	}

	var raw rawSettings
	if err := v.Unmarshal(&raw); err != nil {
		return nil, fmt.Errorf("failed to decode settings: %w", err)
	}

	return compileSettings(raw, validateTemplate)
}

func compileSettings(raw rawSettings, validateTemplate TemplateValidator) (*Settings, error) {
	if len(raw.Emojis) == 0 {
		return nil, errors.New("settings: at least one emoji rule is required")
	}

	escrowTime, err := parseEscrowTime(raw.EscrowTime)
	if err != nil {
		return nil, fmt.Errorf("settings: invalid escrow_time: %w", err)
	}
	if escrowTime <= 0 {
		return nil, errors.New("settings: escrow_time must be positive")
	}

	if err := validateTemplate(raw.DefaultMessage); err != nil {
		return nil, fmt.Errorf("settings: default_message: %w", err)
	}

	rules := make([]domain.ReactionRule, 0, len(raw.Emojis))
	for _, e := range raw.Emojis {
		if e.Message != "" {
			if err := validateTemplate(e.Message); err != nil {
				return nil, fmt.Errorf("settings: message for %q: %w", e.Symbol, err)
			}
		}
		rules = append(rules, domain.ReactionRule{Symbol: e.Symbol, Value: e.Value, Message: e.Message})
	}

	table, err := domain.NewRuleTable(rules)
	if err != nil {
		return nil, fmt.Errorf("settings: %w", err)
	}

	status := raw.StatusNotifications
	if status.Enabled && status.Channel == "" {
		return nil, errors.New("settings: status_notifications.channel is required when enabled")
	}

	return &Settings{
		Rules:          table,
		DefaultMessage: raw.DefaultMessage,
		EscrowTime:     escrowTime,
		UseEmojiNames:  raw.UseEmojiNames,
		StatusNotifications: StatusNotifications{
			Enabled:   status.Enabled,
			ChannelID: status.Channel,
			Up:        status.Messages.Up,
			Down:      status.Messages.Down,
		},
	}, nil
}

// parseEscrowTime accepts a Go duration ("36h") or a bare number of seconds.
func parseEscrowTime(s string) (time.Duration, error) {
	if secs, err := strconv.Atoi(s); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	return time.ParseDuration(s)
}
