package config

import (
	"testing"
)

func TestDefaults(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Relay.Port != 3000 {
		t.Fatalf("expected relay port 3000, got %d", cfg.Relay.Port)
	}
	if cfg.Moderation.SpamWindowMillis != 3000 || cfg.Moderation.SpamBurst != 5 {
		t.Fatalf("unexpected spam thresholds: %d/%d", cfg.Moderation.SpamWindowMillis, cfg.Moderation.SpamBurst)
	}
	if cfg.Leveling.XPPerMessage != 5 || cfg.Leveling.LevelStep != 100 {
		t.Fatalf("unexpected leveling defaults: %d/%d", cfg.Leveling.XPPerMessage, cfg.Leveling.LevelStep)
	}
	if len(cfg.Moderation.BlockedWords) == 0 {
		t.Fatal("expected a default blocked word list")
	}
}

func TestLoadRequiresToken(t *testing.T) {
	t.Setenv("CONFIG_PATH", "/nonexistent/config.yaml")
	t.Setenv("DISCORD_TOKEN", "")
	if _, err := Load(); err == nil {
		t.Fatal("expected error without DISCORD_TOKEN")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("CONFIG_PATH", "/nonexistent/config.yaml")
	t.Setenv("DISCORD_TOKEN", "token")
	t.Setenv("PORT", "8081")
	t.Setenv("CHANNEL_ID_N8N", "c-default")
	t.Setenv("SPAM_BURST", "3")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Relay.Port != 8081 {
		t.Fatalf("expected port 8081, got %d", cfg.Relay.Port)
	}
	if cfg.Relay.DefaultChannelID != "c-default" {
		t.Fatalf("expected default channel override, got %q", cfg.Relay.DefaultChannelID)
	}
	if cfg.Moderation.SpamBurst != 3 {
		t.Fatalf("expected spam burst 3, got %d", cfg.Moderation.SpamBurst)
	}
}
