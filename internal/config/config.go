// Package config loads and persists the YAML application configuration.
package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ICSSource describes one subscribed iCalendar feed to import on startup.
type ICSSource struct {
	// Path is a local ICS file path.
	Path string `yaml:"path"`
	// ID labels the source for de-dup and reporting.
	ID string `yaml:"id"`
	// Name is a human-friendly label.
	Name string `yaml:"name"`
}

// Config is the top-level application configuration.
type Config struct {
	// DBPath is the SQLite database file location.
	DBPath string `yaml:"db_path"`

	// Timezone is the IANA timezone used for display (e.g. "UTC").
	Timezone string `yaml:"timezone"`

	// ScanIntervalSeconds is the pause between conflict scans.
	ScanIntervalSeconds int `yaml:"scan_interval_seconds"`

	// ConflictWindowHours is how far ahead each scan looks for overlaps.
	ConflictWindowHours int `yaml:"conflict_window_hours"`

	// CooldownMinutes suppresses re-prompting for a resolved conflict group.
	CooldownMinutes int `yaml:"cooldown_minutes"`

	// ImportHorizonDays bounds recurrence expansion during ICS import.
	ImportHorizonDays int `yaml:"import_horizon_days"`

	// ICS is the list of feeds imported on startup.
	ICS []ICSSource `yaml:"ics"`
}

func DefaultConfig() *Config {
	return &Config{
		DBPath:              defaultDBPath(),
		Timezone:            "UTC",
		ScanIntervalSeconds: 2,
		ConflictWindowHours: 24,
		CooldownMinutes:     5,
		ImportHorizonDays:   30,
		ICS:                 []ICSSource{},
	}
}

func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "timebox.db"
	}
	return filepath.Join(home, ".timebox", "timebox.db")
}

// Normalize fills missing or out-of-range values with defaults so older or
// partially-written configs still behave.
func (c *Config) Normalize() {
	if c.DBPath == "" {
		c.DBPath = defaultDBPath()
	}
	if c.Timezone == "" {
		c.Timezone = "UTC"
	}
	if c.ScanIntervalSeconds <= 0 {
		c.ScanIntervalSeconds = 2
	}
	if c.ConflictWindowHours <= 0 {
		c.ConflictWindowHours = 24
	}
	if c.CooldownMinutes <= 0 {
		c.CooldownMinutes = 5
	}
	if c.ImportHorizonDays <= 0 {
		c.ImportHorizonDays = 30
	}
	if c.ICS == nil {
		c.ICS = []ICSSource{}
	}
}

// Load reads the YAML config at path. A missing file is first-run: a default
// config is written with 0600 perms and returned.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config: path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg := DefaultConfig()
			if saveErr := Save(path, cfg); saveErr != nil {
				return cfg, saveErr
			}
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.Normalize()
	return &cfg, nil
}

// Save writes the config atomically: temp file in the same directory, fsync,
// chmod 0600, rename.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config: path is empty")
	}
	if cfg == nil {
		return errors.New("config: config is nil")
	}
	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".timebox-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}

func (c *Config) Save(path string) error {
	return Save(path, c)
}
