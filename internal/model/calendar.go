package model

import (
	"errors"
	"sort"
	"strings"
	"time"
)

// BaseCalendarEntry anchors a root item at an absolute start time. One item
// may have any number of entries (repeated occurrences); entries live and die
// independently of the item graph.
type BaseCalendarEntry struct {
	ID     string
	ItemID string
	Start  time.Time
}

func (e BaseCalendarEntry) Validate() error {
	if strings.TrimSpace(e.ID) == "" {
		return errors.New("model: calendar entry id is required")
	}
	if strings.TrimSpace(e.ItemID) == "" {
		return errors.New("model: calendar entry item id is required")
	}
	if e.Start.IsZero() {
		return errors.New("model: calendar entry start is required")
	}
	return nil
}

// Calendar is the external base-calendar mapping consumed by the resolvers.
type Calendar []BaseCalendarEntry

// EntriesFor returns every occurrence of the given item, ordered by start.
func (c Calendar) EntriesFor(itemID string) []BaseCalendarEntry {
	out := make([]BaseCalendarEntry, 0)
	for _, e := range c {
		if e.ItemID == itemID {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Start.Before(out[j].Start) })
	return out
}

// Without returns the calendar with the entry removed.
func (c Calendar) Without(entryID string) Calendar {
	out := make(Calendar, 0, len(c))
	for _, e := range c {
		if e.ID != entryID {
			out = append(out, e)
		}
	}
	return out
}
