package resolver

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/mohankv/timebox/internal/model"
)

func mustCollection(t *testing.T, items ...model.Item) model.Collection {
	t.Helper()
	col, err := model.NewCollection(items...)
	if err != nil {
		t.Fatalf("new collection: %v", err)
	}
	return col
}

// Two children back to back inside a ten-second container.
func nestedFixture(t *testing.T) (model.Collection, model.Calendar, time.Time) {
	t.Helper()
	col := mustCollection(t,
		model.Item{ID: "root", Name: "Root", Kind: model.KindSubCalendar, Duration: 10 * time.Second,
			SubChildren: []model.SubChild{
				{ChildID: "c1", Offset: 0, RelationshipID: "rel-1"},
				{ChildID: "c2", Offset: 5 * time.Second, RelationshipID: "rel-2"},
			}},
		model.Item{ID: "c1", Name: "First", Kind: model.KindBasic, Duration: 5 * time.Second},
		model.Item{ID: "c2", Name: "Second", Kind: model.KindBasic, Duration: 5 * time.Second},
	)
	base := time.UnixMilli(1000).UTC()
	cal := model.Calendar{{ID: "entry-root", ItemID: "root", Start: base}}
	return col, cal, base
}

func TestCurrentTaskChainDescendsByElapsedTime(t *testing.T) {
	col, cal, base := nestedFixture(t)

	// Two seconds in: root -> c1, 40% through c1.
	now := base.Add(2 * time.Second)
	chain, err := CurrentTaskChain(col, cal, now)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if len(chain) != 2 || chain[0].Item.ID != "root" || chain[1].Item.ID != "c1" {
		t.Fatalf("unexpected chain: %#v", chain.Items())
	}
	deepest, _ := chain.Deepest()
	if got := TaskProgress(deepest.Item, deepest.Start, now); got != 40 {
		t.Fatalf("c1 progress: got %v want 40", got)
	}

	// Seven seconds in: root -> c2, 40% through c2 (c2 started at +5s).
	now = base.Add(7 * time.Second)
	chain, err = CurrentTaskChain(col, cal, now)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if len(chain) != 2 || chain[1].Item.ID != "c2" {
		t.Fatalf("unexpected chain: %#v", chain.Items())
	}
	deepest, _ = chain.Deepest()
	if !deepest.Start.Equal(base.Add(5 * time.Second)) {
		t.Fatalf("c2 start: got %v want %v", deepest.Start, base.Add(5*time.Second))
	}
	if got := TaskProgress(deepest.Item, deepest.Start, now); got != 40 {
		t.Fatalf("c2 progress: got %v want 40", got)
	}

	// Past the root's end: empty chain.
	chain, err = CurrentTaskChain(col, cal, base.Add(10*time.Second))
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if len(chain) != 0 {
		t.Fatalf("expected empty chain at root end, got: %#v", chain.Items())
	}
}

func TestCurrentTaskChainIsDeterministic(t *testing.T) {
	col, cal, base := nestedFixture(t)
	now := base.Add(2 * time.Second)

	first, err := CurrentTaskChain(col, cal, now)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	second, err := CurrentTaskChain(col, cal, now)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("identical inputs produced different chains:\n%#v\n%#v", first, second)
	}
}

func TestCurrentTaskChainStopsAtSchedulingGap(t *testing.T) {
	col := mustCollection(t,
		model.Item{ID: "root", Kind: model.KindSubCalendar, Duration: 10 * time.Second,
			SubChildren: []model.SubChild{
				{ChildID: "c1", Offset: 0, RelationshipID: "rel-1"},
				{ChildID: "c2", Offset: 8 * time.Second, RelationshipID: "rel-2"},
			}},
		model.Item{ID: "c1", Kind: model.KindBasic, Duration: 3 * time.Second},
		model.Item{ID: "c2", Kind: model.KindBasic, Duration: 2 * time.Second},
	)
	base := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	cal := model.Calendar{{ID: "e", ItemID: "root", Start: base}}

	// Five seconds in sits in the gap between c1 and c2: the container itself
	// is the deepest executable task.
	chain, err := CurrentTaskChain(col, cal, base.Add(5*time.Second))
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if len(chain) != 1 || chain[0].Item.ID != "root" {
		t.Fatalf("gap must stop the descent: %#v", chain.Items())
	}
	deepestOK, err := IsDeepestExecutableTask(col, chain[0].Item, chain[0].Start, base.Add(5*time.Second))
	if err != nil {
		t.Fatalf("is deepest: %v", err)
	}
	if !deepestOK {
		t.Fatal("container in a gap is the deepest executable task")
	}
}

func TestCurrentTaskChainRootTieBreaks(t *testing.T) {
	base := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	col := mustCollection(t,
		model.Item{ID: "low", Kind: model.KindBasic, Duration: time.Hour, Priority: 1},
		model.Item{ID: "high", Kind: model.KindBasic, Duration: time.Hour, Priority: 5},
		model.Item{ID: "alpha", Kind: model.KindBasic, Duration: time.Hour, Priority: 5},
	)

	// Priority wins over start order.
	cal := model.Calendar{
		{ID: "e-low", ItemID: "low", Start: base},
		{ID: "e-high", ItemID: "high", Start: base.Add(10 * time.Minute)},
	}
	chain, err := CurrentTaskChain(col, cal, base.Add(30*time.Minute))
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if chain[0].Item.ID != "high" {
		t.Fatalf("priority must win: %#v", chain.Items())
	}

	// Equal priority: earlier start wins.
	cal = model.Calendar{
		{ID: "e-high", ItemID: "high", Start: base.Add(10 * time.Minute)},
		{ID: "e-alpha", ItemID: "alpha", Start: base},
	}
	chain, err = CurrentTaskChain(col, cal, base.Add(30*time.Minute))
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if chain[0].Item.ID != "alpha" {
		t.Fatalf("earlier start must win on equal priority: %#v", chain.Items())
	}

	// Equal priority and start: lower item id wins.
	cal = model.Calendar{
		{ID: "e-high", ItemID: "high", Start: base},
		{ID: "e-alpha", ItemID: "alpha", Start: base},
	}
	chain, err = CurrentTaskChain(col, cal, base.Add(30*time.Minute))
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if chain[0].Item.ID != "alpha" {
		t.Fatalf("item id must break the final tie: %#v", chain.Items())
	}
}

func TestCheckListIsAChainTerminal(t *testing.T) {
	base := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	col := mustCollection(t,
		model.Item{ID: "pack", Kind: model.KindCheckList, Duration: 15 * time.Minute, SortType: model.SortManual,
			CheckChildren: []model.CheckChild{{ChildID: "passport", RelationshipID: "rel-1"}}},
		model.Item{ID: "passport", Kind: model.KindBasic, Duration: time.Minute},
	)
	cal := model.Calendar{{ID: "e", ItemID: "pack", Start: base}}

	chain, err := CurrentTaskChain(col, cal, base.Add(5*time.Minute))
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if len(chain) != 1 || chain[0].Item.ID != "pack" {
		t.Fatalf("checklist must terminate the chain: %#v", chain.Items())
	}
}

func TestCurrentTaskChainSurfacesMissingItem(t *testing.T) {
	col := mustCollection(t)
	base := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	cal := model.Calendar{{ID: "e", ItemID: "ghost", Start: base}}

	_, err := CurrentTaskChain(col, cal, base)
	if !errors.Is(err, model.ErrItemMissing) {
		t.Fatalf("expected ErrItemMissing, got: %v", err)
	}
}

func TestCurrentTaskChainEmptyInputs(t *testing.T) {
	col := mustCollection(t)
	chain, err := CurrentTaskChain(col, nil, time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if len(chain) != 0 {
		t.Fatalf("empty calendar must yield empty chain: %#v", chain.Items())
	}
}

func TestTaskProgressClampsAndZeroDuration(t *testing.T) {
	base := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	item := model.Item{ID: "a", Kind: model.KindBasic, Duration: 10 * time.Second}

	if got := TaskProgress(item, base, base.Add(-time.Second)); got != 0 {
		t.Fatalf("before start: got %v want 0", got)
	}
	if got := TaskProgress(item, base, base.Add(time.Minute)); got != 100 {
		t.Fatalf("after end: got %v want 100", got)
	}
	zero := model.Item{ID: "z", Kind: model.KindBasic, Duration: 0}
	if got := TaskProgress(zero, base, base); got != 100 {
		t.Fatalf("zero duration: got %v want 100", got)
	}
}

func TestTaskStartTime(t *testing.T) {
	col, cal, base := nestedFixture(t)
	chain, err := CurrentTaskChain(col, cal, base.Add(7*time.Second))
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	start, ok := TaskStartTime(chain, "c2")
	if !ok || !start.Equal(base.Add(5*time.Second)) {
		t.Fatalf("c2 start: got %v %v", start, ok)
	}
	if _, ok := TaskStartTime(chain, "ghost"); ok {
		t.Fatal("unknown item must not report a start")
	}
}
