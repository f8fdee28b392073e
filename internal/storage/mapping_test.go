package storage

import (
	"context"
	"testing"
	"time"

	"github.com/mohankv/timebox/internal/conflict"
	"github.com/mohankv/timebox/internal/model"
)

func TestModelItemRoundTripThroughRepository(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()
	created := parseRFC3339(t, "2026-02-09T12:00:00Z")

	shower := model.Item{ID: "shower", Name: "Shower", Kind: model.KindBasic, Duration: 10 * time.Minute}
	packList := model.Item{
		ID: "pack", Name: "Pack bag", Kind: model.KindCheckList, Duration: 5 * time.Minute,
		SortType: model.SortManual,
		CheckChildren: []model.CheckChild{
			{ChildID: "shower", RelationshipID: "rel-check", Complete: true},
		},
	}
	morning := model.Item{
		ID: "morning", Name: "Morning routine", Kind: model.KindSubCalendar,
		Duration: time.Hour, Priority: 2,
		SubChildren: []model.SubChild{
			{ChildID: "shower", Offset: 0, RelationshipID: "rel-sub"},
		},
	}

	for _, it := range []model.Item{shower, packList, morning} {
		if err := SaveItem(ctx, repo, it, created); err != nil {
			t.Fatalf("save %s: %v", it.ID, err)
		}
	}

	col, err := LoadCollection(ctx, repo)
	if err != nil {
		t.Fatalf("load collection: %v", err)
	}
	if col.Len() != 3 {
		t.Fatalf("expected 3 items, got %d", col.Len())
	}

	gotMorning, err := col.Get("morning")
	if err != nil {
		t.Fatalf("get morning: %v", err)
	}
	if len(gotMorning.SubChildren) != 1 || gotMorning.SubChildren[0].Offset != 0 {
		t.Fatalf("sub children lost in round trip: %#v", gotMorning.SubChildren)
	}
	if gotMorning.Duration != time.Hour || gotMorning.Priority != 2 {
		t.Fatalf("item fields lost in round trip: %#v", gotMorning)
	}

	gotPack, err := col.Get("pack")
	if err != nil {
		t.Fatalf("get pack: %v", err)
	}
	if len(gotPack.CheckChildren) != 1 || !gotPack.CheckChildren[0].Complete {
		t.Fatalf("checklist children lost in round trip: %#v", gotPack.CheckChildren)
	}
	if gotPack.SortType != model.SortManual {
		t.Fatalf("sort type lost in round trip: %q", gotPack.SortType)
	}

	gotShower, err := col.Get("shower")
	if err != nil {
		t.Fatalf("get shower: %v", err)
	}
	if len(gotShower.Parents) != 2 {
		t.Fatalf("expected two parent back-references, got: %#v", gotShower.Parents)
	}
}

func TestLoadCalendar(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	start := parseRFC3339(t, "2026-02-10T09:00:00Z")
	if err := repo.CreateEntry(ctx, CalendarEntry{
		ID: "entry-1", ItemID: "morning", StartMS: start.UnixMilli(),
	}); err != nil {
		t.Fatalf("create entry: %v", err)
	}

	cal, err := LoadCalendar(ctx, repo)
	if err != nil {
		t.Fatalf("load calendar: %v", err)
	}
	if len(cal) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(cal))
	}
	if cal[0].ItemID != "morning" || !cal[0].Start.Equal(start) {
		t.Fatalf("entry round trip: %#v", cal[0])
	}
}

func TestConflictSourceOverlappingAndWriteBack(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()
	created := parseRFC3339(t, "2026-02-09T12:00:00Z")

	for _, row := range []Item{
		{ID: "gym", Name: "Gym", Kind: "Basic", DurationMS: 3_600_000, Priority: 1, SortType: "manual", CreatedAt: created},
		{ID: "call", Name: "Call", Kind: "Basic", DurationMS: 1_800_000, Priority: 2, SortType: "manual", CreatedAt: created},
	} {
		if err := repo.UpsertItem(ctx, row, nil); err != nil {
			t.Fatalf("upsert %s: %v", row.ID, err)
		}
	}
	base := parseRFC3339(t, "2026-02-10T09:00:00Z")
	for _, e := range []CalendarEntry{
		{ID: "e-gym", ItemID: "gym", StartMS: base.UnixMilli()},
		{ID: "e-call", ItemID: "call", StartMS: base.Add(30 * time.Minute).UnixMilli()},
	} {
		if err := repo.CreateEntry(ctx, e); err != nil {
			t.Fatalf("create entry %s: %v", e.ID, err)
		}
	}

	src := NewConflictSource(repo)
	roots, err := src.Overlapping(ctx, base, base.Add(2*time.Hour))
	if err != nil {
		t.Fatalf("overlapping: %v", err)
	}
	if len(roots) != 2 {
		t.Fatalf("expected 2 roots, got: %#v", roots)
	}
	if !roots[0].Start.Equal(base) || !roots[0].End.Equal(base.Add(time.Hour)) {
		t.Fatalf("interval conversion: %#v", roots[0])
	}

	// Prioritize write-back lands on the item row.
	raised := roots[0]
	raised.Priority = 9
	if err := src.ApplyPrioritize(ctx, []conflict.RootInterval{raised}); err != nil {
		t.Fatalf("apply prioritize: %v", err)
	}
	gym, err := repo.GetItem(ctx, "gym")
	if err != nil {
		t.Fatalf("get gym: %v", err)
	}
	if gym.Priority != 9 {
		t.Fatalf("priority write-back: %#v", gym)
	}

	// Snooze write-back lands on the entry row.
	shifted := roots[1]
	shifted.Start = shifted.Start.Add(45 * time.Minute)
	if err := src.ApplySnooze(ctx, []conflict.RootInterval{shifted}); err != nil {
		t.Fatalf("apply snooze: %v", err)
	}
	entry, err := repo.GetEntry(ctx, "e-call")
	if err != nil {
		t.Fatalf("get entry: %v", err)
	}
	want := base.Add(30 * time.Minute).Add(45 * time.Minute).UnixMilli()
	if entry.StartMS != want {
		t.Fatalf("entry start write-back: got %d want %d", entry.StartMS, want)
	}
}
