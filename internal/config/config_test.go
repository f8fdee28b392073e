package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadCreatesDefaultOnFirstRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf", "timebox.yaml")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("first-run load: %v", err)
	}
	if cfg.ScanIntervalSeconds != 2 || cfg.ConflictWindowHours != 24 {
		t.Fatalf("unexpected defaults: %#v", cfg)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("config file not created: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Fatalf("expected 0600 perms, got %o", perm)
	}
}

func TestLoadNormalizesPartialConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "timebox.yaml")
	if err := os.WriteFile(path, []byte("db_path: /tmp/test.db\ncooldown_minutes: 0\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.DBPath != "/tmp/test.db" {
		t.Fatalf("explicit value lost: %q", cfg.DBPath)
	}
	if cfg.CooldownMinutes != 5 || cfg.ImportHorizonDays != 30 {
		t.Fatalf("zero values not normalized: %#v", cfg)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "timebox.yaml")
	cfg := DefaultConfig()
	cfg.ICS = []ICSSource{{Path: "/data/work.ics", ID: "work", Name: "Work"}}

	if err := cfg.Save(path); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got.ICS) != 1 || got.ICS[0].ID != "work" {
		t.Fatalf("ics sources lost in round trip: %#v", got.ICS)
	}
}
