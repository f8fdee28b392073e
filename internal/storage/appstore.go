package storage

import (
	"context"
	"time"

	"github.com/mohankv/timebox/internal/conflict"
	"github.com/mohankv/timebox/internal/model"
)

// AppStore is the write-behind handed to the TUI: every palette mutation of
// the in-memory snapshot lands here as a repository write.
type AppStore struct {
	repo Repository
	src  *ConflictSource
	now  func() time.Time
}

func NewAppStore(repo Repository) *AppStore {
	return &AppStore{
		repo: repo,
		src:  NewConflictSource(repo),
		now:  func() time.Time { return time.Now().UTC() },
	}
}

func (s *AppStore) SaveItem(ctx context.Context, it model.Item) error {
	return SaveItem(ctx, s.repo, it, s.now())
}

func (s *AppStore) CreateEntry(ctx context.Context, e model.BaseCalendarEntry) error {
	return s.repo.CreateEntry(ctx, CalendarEntry{
		ID:      e.ID,
		ItemID:  e.ItemID,
		StartMS: e.Start.UnixMilli(),
	})
}

func (s *AppStore) DeleteEntry(ctx context.Context, id string) error {
	return s.repo.DeleteEntry(ctx, id)
}

func (s *AppStore) ApplyPrioritize(ctx context.Context, updated []conflict.RootInterval) error {
	return s.src.ApplyPrioritize(ctx, updated)
}

func (s *AppStore) ApplySnooze(ctx context.Context, updated []conflict.RootInterval) error {
	return s.src.ApplySnooze(ctx, updated)
}
