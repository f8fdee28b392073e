package storage

import "time"

// Item is the persisted row shape for a plan item. Durations are stored as
// integer milliseconds so the calendar overlap query can stay in SQL.
type Item struct {
	ID         string
	Name       string
	Kind       string
	DurationMS int64
	Priority   int
	SortType   string
	CreatedAt  time.Time
}

// ChildLink is one placement row. OffsetMS is set for sub-calendar
// placements and nil for checklist placements; Complete is only meaningful
// for checklist placements.
type ChildLink struct {
	RelationshipID string
	ParentID       string
	ChildID        string
	OffsetMS       *int64
	Complete       bool
}

// CalendarEntry anchors an item occurrence at an absolute epoch-ms start.
// There is deliberately no foreign key from entries to items: entries outlive
// item deletion and their integrity is an external concern.
type CalendarEntry struct {
	ID      string
	ItemID  string
	StartMS int64
}

// RootSpan is one row of the conflict overlap query: an entry joined with its
// item's duration and priority.
type RootSpan struct {
	EntryID      string
	ItemID       string
	StartMS      int64
	EndMS        int64
	Priority     int
	TemplateHash string
}

type ItemListFilter struct {
	Kind   string
	Limit  int
	Offset int
}

type EntryListFilter struct {
	ItemID string
	Limit  int
	Offset int
}
