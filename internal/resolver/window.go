package resolver

import (
	"fmt"
	"sort"
	"time"

	"github.com/mohankv/timebox/internal/model"
)

// Window is a bounded half-open display range [Start, End).
type Window struct {
	Start time.Time
	End   time.Time
}

func (w Window) Intersects(start, end time.Time) bool {
	return start.Before(w.End) && w.Start.Before(end)
}

func (w Window) contains(start, end time.Time) bool {
	return !start.Before(w.Start) && !end.After(w.End)
}

// FlatDisplayItem is one record of an unwrapped hierarchy: the item, its
// interval clamped to the window, its depth below the root, and whether the
// unclamped interval sat fully inside the window.
type FlatDisplayItem struct {
	Item        model.Item
	Start       time.Time
	End         time.Time
	Depth       int
	FullyInside bool
}

// CollectDisplayItems unwraps one anchored hierarchy into the window.
// Policy, per branch:
//   - no intersection: nothing;
//   - fully inside: a single record for the item, children untouched; a
//     complete interval needs no fragmenting;
//   - otherwise descend into every child that intersects the window
//     (sub-calendar children at parent start + offset, checklist children at
//     the parent start itself);
//   - if descent yields nothing, emit the item clamped, FullyInside=false.
//
// Descent is therefore all-or-nothing: a branch is never shown as a parent
// plus a subset of its children. Records come back ordered by clamped start,
// then depth, then item id.
func CollectDisplayItems(col model.Collection, item model.Item, absStart time.Time, w Window) ([]FlatDisplayItem, error) {
	out, err := collect(col, item, absStart, w, 0)
	if err != nil {
		return nil, err
	}
	sortDisplayItems(out)
	return out, nil
}

// CollectWindow unwraps every anchored root whose interval touches the window
// and merges the records into one ordered list.
func CollectWindow(col model.Collection, cal model.Calendar, w Window) ([]FlatDisplayItem, error) {
	out := make([]FlatDisplayItem, 0)
	for _, entry := range cal {
		item, err := col.Get(entry.ItemID)
		if err != nil {
			return nil, err
		}
		records, err := collect(col, item, entry.Start, w, 0)
		if err != nil {
			return nil, err
		}
		out = append(out, records...)
	}
	sortDisplayItems(out)
	return out, nil
}

func collect(col model.Collection, item model.Item, absStart time.Time, w Window, depth int) ([]FlatDisplayItem, error) {
	end := item.End(absStart)
	if !w.Intersects(absStart, end) {
		return nil, nil
	}
	if w.contains(absStart, end) {
		return []FlatDisplayItem{{Item: item, Start: absStart, End: end, Depth: depth, FullyInside: true}}, nil
	}

	records, err := collectChildren(col, item, absStart, w, depth)
	if err != nil {
		return nil, err
	}
	if len(records) > 0 {
		return records, nil
	}
	return []FlatDisplayItem{{
		Item:        item,
		Start:       clampTime(absStart, w.Start, w.End),
		End:         clampTime(end, w.Start, w.End),
		Depth:       depth,
		FullyInside: false,
	}}, nil
}

func collectChildren(col model.Collection, item model.Item, absStart time.Time, w Window, depth int) ([]FlatDisplayItem, error) {
	out := make([]FlatDisplayItem, 0)
	switch item.Kind {
	case model.KindBasic:
		return nil, nil
	case model.KindSubCalendar:
		for _, ch := range item.SubChildren {
			child, err := col.Get(ch.ChildID)
			if err != nil {
				return nil, err
			}
			childStart := absStart.Add(ch.Offset)
			records, err := collect(col, child, childStart, w, depth+1)
			if err != nil {
				return nil, err
			}
			out = append(out, records...)
		}
	case model.KindCheckList:
		for _, ch := range item.CheckChildren {
			child, err := col.Get(ch.ChildID)
			if err != nil {
				return nil, err
			}
			records, err := collect(col, child, absStart, w, depth+1)
			if err != nil {
				return nil, err
			}
			out = append(out, records...)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, item.Kind)
	}
	return out, nil
}

func clampTime(t, lo, hi time.Time) time.Time {
	if t.Before(lo) {
		return lo
	}
	if t.After(hi) {
		return hi
	}
	return t
}

func sortDisplayItems(items []FlatDisplayItem) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if !a.Start.Equal(b.Start) {
			return a.Start.Before(b.Start)
		}
		if a.Depth != b.Depth {
			return a.Depth < b.Depth
		}
		return a.Item.ID < b.Item.ID
	})
}
