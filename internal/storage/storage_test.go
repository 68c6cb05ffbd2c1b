package storage

import (
	"context"
	"testing"
	"time"
)

func TestAddAndListModerationLogs(t *testing.T) {
	store, err := New(":memory:")
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	defer store.Close()

	if err := store.Migrate(); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	entry := ModerationLog{
		GuildID:   "g1",
		UserID:    "u1",
		Level:     "WARN",
		Event:     "kufur_filtresi",
		Details:   "mesaj silindi",
		CreatedAt: time.Now(),
	}
	if err := store.AddModerationLog(context.Background(), entry); err != nil {
		t.Fatalf("add log: %v", err)
	}

	logs, err := store.ListModerationLogs(context.Background(), "g1", time.Now().Add(-time.Hour))
	if err != nil {
		t.Fatalf("list logs: %v", err)
	}
	if len(logs) != 1 {
		t.Fatalf("expected 1 log, got %d", len(logs))
	}
	if logs[0].Event != "kufur_filtresi" || logs[0].UserID != "u1" {
		t.Fatalf("unexpected log: %+v", logs[0])
	}
}

func TestCleanupModerationLogs(t *testing.T) {
	store, err := New(":memory:")
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	defer store.Close()
	if err := store.Migrate(); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	old := ModerationLog{GuildID: "g1", Level: "INFO", Event: "uye_katildi", CreatedAt: time.Now().AddDate(0, 0, -30)}
	recent := ModerationLog{GuildID: "g1", Level: "INFO", Event: "uye_katildi", CreatedAt: time.Now()}
	if err := store.AddModerationLog(context.Background(), old); err != nil {
		t.Fatalf("add old: %v", err)
	}
	if err := store.AddModerationLog(context.Background(), recent); err != nil {
		t.Fatalf("add recent: %v", err)
	}

	if err := store.CleanupModerationLogs(context.Background(), 14); err != nil {
		t.Fatalf("cleanup: %v", err)
	}

	logs, err := store.ListModerationLogs(context.Background(), "g1", time.Unix(0, 0))
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(logs) != 1 {
		t.Fatalf("expected only the recent log to survive, got %d", len(logs))
	}
}
