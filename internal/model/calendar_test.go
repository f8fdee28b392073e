package model

import (
	"testing"
	"time"
)

func TestCalendarEntriesForSortedByStart(t *testing.T) {
	base := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	cal := Calendar{
		{ID: "e2", ItemID: "gym", Start: base.Add(2 * time.Hour)},
		{ID: "e1", ItemID: "gym", Start: base},
		{ID: "e3", ItemID: "call", Start: base.Add(time.Hour)},
	}

	got := cal.EntriesFor("gym")
	if len(got) != 2 || got[0].ID != "e1" || got[1].ID != "e2" {
		t.Fatalf("unexpected entries: %#v", got)
	}
	if len(cal.EntriesFor("ghost")) != 0 {
		t.Fatal("unknown item must yield no entries")
	}
}

func TestCalendarWithout(t *testing.T) {
	base := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	cal := Calendar{
		{ID: "e1", ItemID: "gym", Start: base},
		{ID: "e2", ItemID: "gym", Start: base.Add(time.Hour)},
	}
	got := cal.Without("e1")
	if len(got) != 1 || got[0].ID != "e2" {
		t.Fatalf("unexpected calendar: %#v", got)
	}
	if len(cal) != 2 {
		t.Fatal("Without must not mutate the receiver")
	}
}

func TestBaseCalendarEntryValidate(t *testing.T) {
	base := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	ok := BaseCalendarEntry{ID: "e1", ItemID: "gym", Start: base}
	if err := ok.Validate(); err != nil {
		t.Fatalf("valid entry rejected: %v", err)
	}
	for _, bad := range []BaseCalendarEntry{
		{ItemID: "gym", Start: base},
		{ID: "e1", Start: base},
		{ID: "e1", ItemID: "gym"},
	} {
		if err := bad.Validate(); err == nil {
			t.Fatalf("invalid entry accepted: %#v", bad)
		}
	}
}
