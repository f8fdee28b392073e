package update

import (
	"context"
	"fmt"
	"time"

	"github.com/mohankv/timebox/internal/conflict"
	"github.com/mohankv/timebox/internal/model"
)

// The apply* methods are the only mutations of the plan state. Each one
// updates the in-memory snapshot first and, when a persister is wired, writes
// the same change behind it. A failed in-memory mutation never reaches disk.

func (m Model) applySchedule(parentID, childID string, offset time.Duration) (Model, error) {
	relID := m.nextRelationshipID()
	next, err := m.Col.ScheduleChild(parentID, childID, offset, relID)
	if err != nil {
		return m, err
	}
	m.Col = next
	if err := m.persistItem(parentID); err != nil {
		return m, err
	}
	m.Status = StatusBar{Text: fmt.Sprintf("scheduled %s into %s at %s (%s)", childID, parentID, offset, relID)}
	return m, nil
}

func (m Model) applyUnschedule(parentID, relationshipID string) (Model, error) {
	next, err := m.Col.RemoveChild(parentID, relationshipID)
	if err != nil {
		return m, err
	}
	m.Col = next
	if err := m.persistItem(parentID); err != nil {
		return m, err
	}
	m.Status = StatusBar{Text: fmt.Sprintf("removed %s from %s", relationshipID, parentID)}
	return m, nil
}

func (m Model) applyComplete(parentID, relationshipID string) (Model, error) {
	parent, err := m.Col.Get(parentID)
	if err != nil {
		return m, err
	}
	target := false
	for _, ch := range parent.CheckChildren {
		if ch.RelationshipID == relationshipID {
			target = !ch.Complete
		}
	}
	next, err := m.Col.SetComplete(parentID, relationshipID, target)
	if err != nil {
		return m, err
	}
	m.Col = next
	if err := m.persistItem(parentID); err != nil {
		return m, err
	}
	m.Status = StatusBar{Text: fmt.Sprintf("%s complete=%v", relationshipID, target)}
	return m, nil
}

func (m Model) applyPlan(itemID string, start time.Time) (Model, error) {
	if _, err := m.Col.Get(itemID); err != nil {
		return m, err
	}
	entry := model.BaseCalendarEntry{
		ID:     itemID + "@" + start.UTC().Format(time.RFC3339),
		ItemID: itemID,
		Start:  start.UTC(),
	}
	if err := entry.Validate(); err != nil {
		return m, err
	}
	m.Cal = append(m.Cal, entry)
	if m.store != nil {
		if err := m.store.CreateEntry(context.Background(), entry); err != nil {
			return m, err
		}
	}
	if m.Scanner != nil {
		m.Scanner.Poke()
	}
	m.Status = StatusBar{Text: fmt.Sprintf("planned %s at %s", itemID, entry.Start.Format(time.RFC3339))}
	return m, nil
}

func (m Model) applyDrop(entryID string) (Model, error) {
	before := len(m.Cal)
	m.Cal = m.Cal.Without(entryID)
	if len(m.Cal) == before {
		return m, fmt.Errorf("update: entry %q not found", entryID)
	}
	if m.store != nil {
		if err := m.store.DeleteEntry(context.Background(), entryID); err != nil {
			return m, err
		}
	}
	m.Status = StatusBar{Text: fmt.Sprintf("dropped %s", entryID)}
	return m, nil
}

// applyPrioritize resolves the pending conflict in favor of one entry by
// raising its item's priority above every other member.
func (m Model) applyPrioritize(entryID string) Model {
	if m.Pending == nil {
		m.Status = StatusBar{Text: "no pending conflict", IsError: true}
		return m
	}
	updated, err := conflict.Prioritize(m.Pending.Group, entryID)
	if err != nil {
		m.Status = StatusBar{Text: err.Error(), IsError: true}
		return m
	}
	for _, u := range updated {
		itemID, ok := m.entryItem(u.ID)
		if !ok {
			continue
		}
		it, err := m.Col.Get(itemID)
		if err != nil {
			m.Status = StatusBar{Text: err.Error(), IsError: true}
			return m
		}
		it.Priority = u.Priority
		next, err := m.Col.WithItem(it)
		if err != nil {
			m.Status = StatusBar{Text: err.Error(), IsError: true}
			return m
		}
		m.Col = next
	}
	if m.store != nil {
		if err := m.store.ApplyPrioritize(context.Background(), updated); err != nil {
			m.Status = StatusBar{Text: err.Error(), IsError: true}
			return m
		}
	}
	m.finishResolution()
	m.Status = m.conflictResolvedStatus("prioritized "+entryID, len(updated))
	return m
}

// applySnooze resolves the pending conflict by pushing every member except
// the winner forward by delay.
func (m Model) applySnooze(delay time.Duration) Model {
	if m.Pending == nil {
		m.Status = StatusBar{Text: "no pending conflict", IsError: true}
		return m
	}
	updated, err := conflict.Snooze(m.Pending.Group, delay)
	if err != nil {
		m.Status = StatusBar{Text: err.Error(), IsError: true}
		return m
	}
	for _, u := range updated {
		for i := range m.Cal {
			if m.Cal[i].ID == u.ID {
				m.Cal[i].Start = u.Start
			}
		}
	}
	if m.store != nil {
		if err := m.store.ApplySnooze(context.Background(), updated); err != nil {
			m.Status = StatusBar{Text: err.Error(), IsError: true}
			return m
		}
	}
	m.finishResolution()
	m.Status = m.conflictResolvedStatus(fmt.Sprintf("snoozed %s", delay), len(updated))
	return m
}

func (m *Model) finishResolution() {
	if m.Scanner != nil && m.Pending != nil {
		m.Scanner.Resolve(m.Pending.Group, m.Clock())
	}
	m.Pending = nil
	m.ConflictCursor = 0
}

func (m Model) persistItem(id string) error {
	if m.store == nil {
		return nil
	}
	it, err := m.Col.Get(id)
	if err != nil {
		return err
	}
	return m.store.SaveItem(context.Background(), it)
}

// entryItem maps a base-calendar entry id back to its item.
func (m Model) entryItem(entryID string) (string, bool) {
	for _, e := range m.Cal {
		if e.ID == entryID {
			return e.ItemID, true
		}
	}
	return "", false
}
