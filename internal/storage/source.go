package storage

import (
	"context"
	"time"

	"github.com/mohankv/timebox/internal/conflict"
)

// ConflictSource adapts the repository's overlap query to the conflict
// scanner. Interval ids are entry ids, so resolving a conflict maps directly
// back to the entry to rewrite.
type ConflictSource struct {
	repo Repository
}

func NewConflictSource(repo Repository) *ConflictSource {
	return &ConflictSource{repo: repo}
}

func (s *ConflictSource) Overlapping(ctx context.Context, start, end time.Time) ([]conflict.RootInterval, error) {
	spans, err := s.repo.ListOverlappingEntries(ctx, start.UnixMilli(), end.UnixMilli())
	if err != nil {
		return nil, err
	}
	out := make([]conflict.RootInterval, 0, len(spans))
	for _, sp := range spans {
		out = append(out, conflict.RootInterval{
			ID:           sp.EntryID,
			Start:        msToTime(sp.StartMS),
			End:          msToTime(sp.EndMS),
			Priority:     sp.Priority,
			TemplateHash: sp.TemplateHash,
		})
	}
	return out, nil
}

// ApplyPrioritize writes a prioritize resolution back. The priority lives on
// the item, so every entry of the same item is raised together.
func (s *ConflictSource) ApplyPrioritize(ctx context.Context, updated []conflict.RootInterval) error {
	for _, u := range updated {
		entry, err := s.repo.GetEntry(ctx, u.ID)
		if err != nil {
			return err
		}
		if err := s.repo.UpdateItemPriority(ctx, entry.ItemID, u.Priority); err != nil {
			return err
		}
	}
	return nil
}

// ApplySnooze writes shifted intervals back to their calendar entries.
func (s *ConflictSource) ApplySnooze(ctx context.Context, updated []conflict.RootInterval) error {
	for _, u := range updated {
		entry, err := s.repo.GetEntry(ctx, u.ID)
		if err != nil {
			return err
		}
		entry.StartMS = u.Start.UnixMilli()
		if err := s.repo.UpdateEntry(ctx, entry); err != nil {
			return err
		}
	}
	return nil
}
