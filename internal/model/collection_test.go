package model

import (
	"errors"
	"testing"
	"time"

	"github.com/mohankv/timebox/internal/interval"
)

func testCollection(t *testing.T) Collection {
	t.Helper()
	col, err := NewCollection(
		Item{ID: "routine", Name: "Morning routine", Kind: KindSubCalendar, Duration: time.Hour},
		Item{ID: "shower", Name: "Shower", Kind: KindBasic, Duration: 10 * time.Minute},
		Item{ID: "stretch", Name: "Stretch", Kind: KindBasic, Duration: 10 * time.Minute},
		Item{ID: "packing", Name: "Pack bag", Kind: KindCheckList, Duration: 15 * time.Minute, SortType: SortManual},
	)
	if err != nil {
		t.Fatalf("new collection: %v", err)
	}
	return col
}

func TestNewCollectionRejectsDuplicates(t *testing.T) {
	_, err := NewCollection(
		Item{ID: "x", Kind: KindBasic},
		Item{ID: "x", Kind: KindBasic},
	)
	if !errors.Is(err, ErrDuplicateItem) {
		t.Fatalf("expected ErrDuplicateItem, got: %v", err)
	}
}

func TestGetFailsFastOnMissingID(t *testing.T) {
	col := testCollection(t)
	if _, err := col.Get("ghost"); !errors.Is(err, ErrItemMissing) {
		t.Fatalf("expected ErrItemMissing, got: %v", err)
	}
}

func TestScheduleChildAdmissionAndRejection(t *testing.T) {
	col := testCollection(t)

	next, err := col.ScheduleChild("routine", "shower", 0, "rel-1")
	if err != nil {
		t.Fatalf("schedule shower: %v", err)
	}
	if next.Version() <= col.Version() {
		t.Fatalf("version must advance: %d -> %d", col.Version(), next.Version())
	}

	// Overlapping placement is rejected and the snapshot is unchanged.
	_, err = next.ScheduleChild("routine", "stretch", 5*time.Minute, "rel-2")
	if !errors.Is(err, interval.ErrOverlap) {
		t.Fatalf("expected ErrOverlap, got: %v", err)
	}
	routine, err := next.Get("routine")
	if err != nil {
		t.Fatalf("get routine: %v", err)
	}
	if len(routine.SubChildren) != 1 {
		t.Fatalf("rejected admission mutated the parent: %#v", routine.SubChildren)
	}

	// Back-to-back placement at the exact boundary is admitted.
	next, err = next.ScheduleChild("routine", "stretch", 10*time.Minute, "rel-2")
	if err != nil {
		t.Fatalf("boundary placement: %v", err)
	}
	stretch, err := next.Get("stretch")
	if err != nil {
		t.Fatalf("get stretch: %v", err)
	}
	if len(stretch.Parents) != 1 || stretch.Parents[0].ParentID != "routine" {
		t.Fatalf("missing parent back-reference: %#v", stretch.Parents)
	}

	// The original snapshot never saw any of this.
	orig, err := col.Get("routine")
	if err != nil {
		t.Fatalf("get original routine: %v", err)
	}
	if len(orig.SubChildren) != 0 {
		t.Fatalf("original snapshot mutated: %#v", orig.SubChildren)
	}
}

func TestScheduleSameItemTwice(t *testing.T) {
	col := testCollection(t)

	next, err := col.ScheduleChild("routine", "shower", 0, "rel-1")
	if err != nil {
		t.Fatalf("first placement: %v", err)
	}
	next, err = next.ScheduleChild("routine", "shower", 30*time.Minute, "rel-2")
	if err != nil {
		t.Fatalf("second placement of same item: %v", err)
	}
	shower, err := next.Get("shower")
	if err != nil {
		t.Fatalf("get shower: %v", err)
	}
	if len(shower.Parents) != 2 {
		t.Fatalf("expected two back-references: %#v", shower.Parents)
	}
}

func TestRemoveChildDropsExactlyOneRelationship(t *testing.T) {
	col := testCollection(t)
	next, err := col.ScheduleChild("routine", "shower", 0, "rel-1")
	if err != nil {
		t.Fatalf("schedule: %v", err)
	}
	next, err = next.ScheduleChild("routine", "shower", 30*time.Minute, "rel-2")
	if err != nil {
		t.Fatalf("schedule again: %v", err)
	}

	next, err = next.RemoveChild("routine", "rel-1")
	if err != nil {
		t.Fatalf("remove: %v", err)
	}
	routine, _ := next.Get("routine")
	if len(routine.SubChildren) != 1 || routine.SubChildren[0].RelationshipID != "rel-2" {
		t.Fatalf("wrong placement removed: %#v", routine.SubChildren)
	}
	shower, _ := next.Get("shower")
	if len(shower.Parents) != 1 || shower.Parents[0].RelationshipID != "rel-2" {
		t.Fatalf("wrong back-reference removed: %#v", shower.Parents)
	}

	if _, err := next.RemoveChild("routine", "rel-gone"); !errors.Is(err, ErrRelationshipGone) {
		t.Fatalf("expected ErrRelationshipGone, got: %v", err)
	}
}

func TestCheckListChildrenAndCompletion(t *testing.T) {
	col := testCollection(t)

	next, err := col.AddCheckChild("packing", "shower", "rel-c1")
	if err != nil {
		t.Fatalf("add check child: %v", err)
	}
	if _, err := next.AddCheckChild("routine", "shower", "rel-c2"); !errors.Is(err, ErrNotCheckList) {
		t.Fatalf("expected ErrNotCheckList, got: %v", err)
	}

	next, err = next.SetComplete("packing", "rel-c1", true)
	if err != nil {
		t.Fatalf("set complete: %v", err)
	}
	packing, _ := next.Get("packing")
	if !packing.CheckChildren[0].Complete {
		t.Fatalf("completion not recorded: %#v", packing.CheckChildren)
	}

	if _, err := next.SetComplete("packing", "rel-gone", true); !errors.Is(err, ErrRelationshipGone) {
		t.Fatalf("expected ErrRelationshipGone, got: %v", err)
	}
}

func TestWithoutItemLeavesDanglingReferencesToCaller(t *testing.T) {
	col := testCollection(t)
	next, err := col.ScheduleChild("routine", "shower", 0, "rel-1")
	if err != nil {
		t.Fatalf("schedule: %v", err)
	}

	next = next.WithoutItem("shower")
	if next.Has("shower") {
		t.Fatal("item not removed")
	}
	// The parent still references the removed child; resolvers surface that
	// as ErrItemMissing rather than silently skipping.
	routine, _ := next.Get("routine")
	if len(routine.SubChildren) != 1 {
		t.Fatalf("parent reference should survive: %#v", routine.SubChildren)
	}
	if _, err := next.SubIndex(routine); !errors.Is(err, ErrItemMissing) {
		t.Fatalf("expected ErrItemMissing from dangling reference, got: %v", err)
	}
}
