package config

import (
	"errors"
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

type Config struct {
	DiscordToken  string           `yaml:"discord_token"`
	DatabasePath  string           `yaml:"database_path"`
	LogLevel      string           `yaml:"log_level"`
	Prefix        string           `yaml:"prefix"`
	RetentionDays int              `yaml:"retention_days"`
	Relay         RelayConfig      `yaml:"relay"`
	Moderation    ModerationConfig `yaml:"moderation"`
	Leveling      LevelingConfig   `yaml:"leveling"`
	Guild         GuildConfig      `yaml:"guild"`
}

type RelayConfig struct {
	Port             int    `yaml:"port"`
	Path             string `yaml:"path"`
	DefaultChannelID string `yaml:"default_channel_id"`
}

type ModerationConfig struct {
	BlockedWords      []string `yaml:"blocked_words"`
	SpamWindowMillis  int      `yaml:"spam_window_millis"`
	SpamBurst         int      `yaml:"spam_burst"`
	WarningSeconds    int      `yaml:"warning_seconds"`
	LinkFilterEnabled bool     `yaml:"link_filter_enabled"`
}

type LevelingConfig struct {
	XPPerMessage int `yaml:"xp_per_message"`
	LevelStep    int `yaml:"level_step"`
}

type GuildConfig struct {
	AutoRoleName       string `yaml:"auto_role_name"`
	LogChannelName     string `yaml:"log_channel_name"`
	TicketCategoryName string `yaml:"ticket_category_name"`
	MutedRoleName      string `yaml:"muted_role_name"`
}

func DefaultConfig() Config {
	return Config{
		DatabasePath:  "/data/caylak.db",
		LogLevel:      "info",
		Prefix:        "!",
		RetentionDays: 14,
		Relay: RelayConfig{
			Port: 3000,
			Path: "/n8n",
		},
		Moderation: ModerationConfig{
			BlockedWords: []string{
				"amk",
				"aq",
				"ananı",
				"orospu",
				"siktir",
				"yarrak",
				"piç",
				"göt",
				"sik",
			},
			SpamWindowMillis:  3000,
			SpamBurst:         5,
			WarningSeconds:    5,
			LinkFilterEnabled: false,
		},
		Leveling: LevelingConfig{
			XPPerMessage: 5,
			LevelStep:    100,
		},
		Guild: GuildConfig{
			AutoRoleName:       "Çaylak",
			LogChannelName:     "📜・log",
			TicketCategoryName: "🎫 TICKETLER",
			MutedRoleName:      "Muted",
		},
	}
}

func Load() (Config, error) {
	cfg := DefaultConfig()

	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "config.yaml"
	}
	if data, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, err
		}
	}

	applyEnv(&cfg)
	if cfg.DiscordToken == "" {
		return Config{}, errors.New("DISCORD_TOKEN is required")
	}
	if cfg.Prefix == "" {
		cfg.Prefix = "!"
	}

	return cfg, nil
}

func applyEnv(cfg *Config) {
	cfg.DiscordToken = envString("DISCORD_TOKEN", cfg.DiscordToken)
	cfg.DatabasePath = envString("DATABASE_PATH", cfg.DatabasePath)
	cfg.LogLevel = envString("LOG_LEVEL", cfg.LogLevel)
	cfg.Prefix = envString("COMMAND_PREFIX", cfg.Prefix)
	cfg.RetentionDays = envInt("RETENTION_DAYS", cfg.RetentionDays)
	cfg.Relay.Port = envInt("PORT", cfg.Relay.Port)
	cfg.Relay.DefaultChannelID = envString("CHANNEL_ID_N8N", cfg.Relay.DefaultChannelID)
	cfg.Moderation.SpamWindowMillis = envInt("SPAM_WINDOW_MILLIS", cfg.Moderation.SpamWindowMillis)
	cfg.Moderation.SpamBurst = envInt("SPAM_BURST", cfg.Moderation.SpamBurst)
	cfg.Moderation.WarningSeconds = envInt("WARNING_SECONDS", cfg.Moderation.WarningSeconds)
	cfg.Moderation.LinkFilterEnabled = envBool("LINK_FILTER_ENABLED", cfg.Moderation.LinkFilterEnabled)
	cfg.Leveling.XPPerMessage = envInt("XP_PER_MESSAGE", cfg.Leveling.XPPerMessage)
	cfg.Guild.AutoRoleName = envString("AUTO_ROLE_NAME", cfg.Guild.AutoRoleName)
	cfg.Guild.LogChannelName = envString("LOG_CHANNEL_NAME", cfg.Guild.LogChannelName)
}

func BuildLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "json"
	cfg.EncoderConfig.TimeKey = "time"
	cfg.EncoderConfig.MessageKey = "message"
	cfg.EncoderConfig.LevelKey = "level"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	lvl := strings.ToLower(level)
	switch lvl {
	case "debug", "info", "warn", "error":
		cfg.Level = zap.NewAtomicLevelAt(parseLevel(lvl))
	default:
		cfg.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	}

	return cfg.Build()
}

func parseLevel(level string) zapcore.Level {
	switch level {
	case "debug":
		return zapcore.DebugLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

func envString(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		lower := strings.ToLower(value)
		return lower == "1" || lower == "true" || lower == "yes"
	}
	return fallback
}
