// Package resolver answers the two temporal questions of the engine: which
// item in a nested hierarchy is executing at a given instant, and how deep a
// hierarchy should be flattened for a bounded display window. Every function
// takes the current time as an explicit parameter; nothing here reads clocks
// or keeps state.
package resolver

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/mohankv/timebox/internal/model"
)

var ErrUnknownKind = errors.New("resolver: unknown item kind")

// ChainLink is one step of a task chain together with the absolute start the
// descent computed for it.
type ChainLink struct {
	Item  model.Item
	Start time.Time
}

// Chain is the path from a scheduled root to the deepest currently-executing
// descendant, ordered root first. An empty chain means nothing is active.
type Chain []ChainLink

// Items flattens the chain to its items.
func (c Chain) Items() []model.Item {
	out := make([]model.Item, len(c))
	for i, l := range c {
		out[i] = l.Item
	}
	return out
}

// Deepest returns the last link of a non-empty chain.
func (c Chain) Deepest() (ChainLink, bool) {
	if len(c) == 0 {
		return ChainLink{}, false
	}
	return c[len(c)-1], true
}

type activeRoot struct {
	entry model.BaseCalendarEntry
	item  model.Item
}

// CurrentTaskChain resolves the chain executing at now. Among simultaneously
// active roots the highest priority wins; ties break on earliest start, then
// item id, then entry id. A missing item reference is surfaced as an error.
func CurrentTaskChain(col model.Collection, cal model.Calendar, now time.Time) (Chain, error) {
	active := make([]activeRoot, 0)
	for _, entry := range cal {
		item, err := col.Get(entry.ItemID)
		if err != nil {
			return nil, err
		}
		if item.ActiveAt(entry.Start, now) {
			active = append(active, activeRoot{entry: entry, item: item})
		}
	}
	if len(active) == 0 {
		return Chain{}, nil
	}
	sort.Slice(active, func(i, j int) bool {
		a, b := active[i], active[j]
		if a.item.Priority != b.item.Priority {
			return a.item.Priority > b.item.Priority
		}
		if !a.entry.Start.Equal(b.entry.Start) {
			return a.entry.Start.Before(b.entry.Start)
		}
		if a.item.ID != b.item.ID {
			return a.item.ID < b.item.ID
		}
		return a.entry.ID < b.entry.ID
	})
	root := active[0]
	return descend(col, root.item, root.entry.Start, now)
}

// descend walks from a root down to the deepest node active at now.
// Sub-calendar containers descend by elapsed time through their admission
// index; a scheduling gap stops the walk. Checklist children share the
// parent's start with no per-child interval, so a checklist is always a
// chain terminal, as is a basic item.
func descend(col model.Collection, root model.Item, start, now time.Time) (Chain, error) {
	chain := Chain{{Item: root, Start: start}}
	cur := root
	curStart := start
	for {
		switch cur.Kind {
		case model.KindBasic, model.KindCheckList:
			return chain, nil
		case model.KindSubCalendar:
			idx, err := col.SubIndex(cur)
			if err != nil {
				return nil, err
			}
			span, ok := idx.At(now.Sub(curStart))
			if !ok {
				return chain, nil
			}
			child, err := childByRelationship(col, cur, span.Token)
			if err != nil {
				return nil, err
			}
			curStart = curStart.Add(span.Start)
			chain = append(chain, ChainLink{Item: child, Start: curStart})
			cur = child
		default:
			return nil, fmt.Errorf("%w: %q", ErrUnknownKind, cur.Kind)
		}
	}
}

func childByRelationship(col model.Collection, parent model.Item, relationshipID string) (model.Item, error) {
	for _, ch := range parent.SubChildren {
		if ch.RelationshipID == relationshipID {
			return col.Get(ch.ChildID)
		}
	}
	return model.Item{}, fmt.Errorf("model: relationship %q not found under %q", relationshipID, parent.ID)
}

// IsDeepestExecutableTask reports whether the item, anchored at start, has no
// active child at now: basic items and checklists always, sub-calendars only
// when no child interval contains the elapsed time.
func IsDeepestExecutableTask(col model.Collection, item model.Item, start, now time.Time) (bool, error) {
	switch item.Kind {
	case model.KindBasic, model.KindCheckList:
		return true, nil
	case model.KindSubCalendar:
		idx, err := col.SubIndex(item)
		if err != nil {
			return false, err
		}
		_, ok := idx.At(now.Sub(start))
		return !ok, nil
	default:
		return false, fmt.Errorf("%w: %q", ErrUnknownKind, item.Kind)
	}
}

// TaskProgress returns how far through its interval the item is at now, as a
// percentage clamped to [0, 100]. Zero-duration items are reported complete.
func TaskProgress(item model.Item, start, now time.Time) float64 {
	if item.Duration <= 0 {
		return 100
	}
	pct := float64(now.Sub(start)) / float64(item.Duration) * 100
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return pct
}

// TaskStartTime returns the absolute start the chain computed for the given
// item: the root's base-calendar anchor plus every ancestor offset above it.
func TaskStartTime(chain Chain, itemID string) (time.Time, bool) {
	for _, link := range chain {
		if link.Item.ID == itemID {
			return link.Start, true
		}
	}
	return time.Time{}, false
}
