package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mohankv/timebox/internal/config"
	"github.com/mohankv/timebox/internal/conflict"
	"github.com/mohankv/timebox/internal/icsimport"
	"github.com/mohankv/timebox/internal/storage"
	"github.com/mohankv/timebox/internal/update"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "timeboxd failed: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", defaultConfigPath(), "path to the YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o700); err != nil {
		return fmt.Errorf("create db dir: %w", err)
	}
	repo, err := storage.OpenSQLite(cfg.DBPath)
	if err != nil {
		return err
	}
	defer repo.Close()
	if err := storage.MigrateUp(repo.DB()); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	ctx := context.Background()
	if err := importFeeds(ctx, repo, cfg); err != nil {
		return err
	}

	col, err := storage.LoadCollection(ctx, repo)
	if err != nil {
		return fmt.Errorf("load items: %w", err)
	}
	cal, err := storage.LoadCalendar(ctx, repo)
	if err != nil {
		return fmt.Errorf("load calendar: %w", err)
	}

	rt := update.RuntimeConfigFromEnv(update.DefaultRuntimeConfig())
	scanner := conflict.NewScanner(storage.NewConflictSource(repo), conflict.ScannerConfig{
		Interval: time.Duration(cfg.ScanIntervalSeconds) * time.Second,
		Window:   time.Duration(cfg.ConflictWindowHours) * time.Hour,
		Cooldown: time.Duration(cfg.CooldownMinutes) * time.Minute,
		Buffer:   rt.ScanBuffer,
	})
	scanner.Start()
	defer scanner.Stop()

	m := update.NewModelWithRuntime(col, cal, scanner, storage.NewAppStore(repo), rt)
	if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
		return err
	}
	return nil
}

// importFeeds pulls every configured ICS feed into the repository. Items are
// upserted; entries keep stable ids per occurrence, so re-imports are
// idempotent.
func importFeeds(ctx context.Context, repo storage.Repository, cfg *config.Config) error {
	now := time.Now().UTC()
	for _, src := range cfg.ICS {
		body, err := os.ReadFile(src.Path)
		if err != nil {
			return fmt.Errorf("read ics %s: %w", src.ID, err)
		}
		res, err := icsimport.Import(body, icsimport.Options{
			Now:     now,
			Horizon: time.Duration(cfg.ImportHorizonDays) * 24 * time.Hour,
		})
		if err != nil {
			return fmt.Errorf("import ics %s: %w", src.ID, err)
		}
		for _, uid := range res.Truncated {
			fmt.Fprintf(os.Stderr, "timeboxd: ics %s: event %s truncated at occurrence cap\n", src.ID, uid)
		}
		for _, it := range res.Items {
			if err := storage.SaveItem(ctx, repo, it, now); err != nil {
				return fmt.Errorf("save item %s: %w", it.ID, err)
			}
		}
		for _, e := range res.Entries {
			if _, err := repo.GetEntry(ctx, e.ID); err == nil {
				continue
			} else if !errors.Is(err, storage.ErrNotFound) {
				return fmt.Errorf("check entry %s: %w", e.ID, err)
			}
			if err := repo.CreateEntry(ctx, storage.CalendarEntry{
				ID:      e.ID,
				ItemID:  e.ItemID,
				StartMS: e.Start.UnixMilli(),
			}); err != nil {
				return fmt.Errorf("create entry %s: %w", e.ID, err)
			}
		}
	}
	return nil
}

func defaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "config.yaml"
	}
	return filepath.Join(home, ".timebox", "config.yaml")
}
