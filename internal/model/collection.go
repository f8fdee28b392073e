package model

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/mohankv/timebox/internal/interval"
)

var (
	ErrItemMissing      = errors.New("model: item not found in collection")
	ErrDuplicateItem    = errors.New("model: duplicate item id")
	ErrNotSubCalendar   = errors.New("model: item is not a sub-calendar container")
	ErrNotCheckList     = errors.New("model: item is not a checklist container")
	ErrRelationshipGone = errors.New("model: relationship not found")
)

// Collection is an immutable snapshot of the item graph. Mutating operations
// return a new Collection with a bumped version stamp; resolvers therefore
// always observe either the pre- or post-mutation state, never a torn one.
//
// Referential integrity is the caller's responsibility: Get fails fast on a
// missing id instead of guessing.
type Collection struct {
	items   map[string]Item
	version uint64
}

func NewCollection(items ...Item) (Collection, error) {
	m := make(map[string]Item, len(items))
	for _, it := range items {
		if err := it.Validate(); err != nil {
			return Collection{}, err
		}
		if _, ok := m[it.ID]; ok {
			return Collection{}, fmt.Errorf("%w: %q", ErrDuplicateItem, it.ID)
		}
		m[it.ID] = it
	}
	return Collection{items: m, version: 1}, nil
}

func (c Collection) Len() int        { return len(c.items) }
func (c Collection) Version() uint64 { return c.version }

// Get returns the item for id. A missing id is an upstream integrity
// violation and is surfaced, not tolerated.
func (c Collection) Get(id string) (Item, error) {
	it, ok := c.items[id]
	if !ok {
		return Item{}, fmt.Errorf("%w: %q", ErrItemMissing, id)
	}
	return it, nil
}

func (c Collection) Has(id string) bool {
	_, ok := c.items[id]
	return ok
}

// Items returns every item ordered by id.
func (c Collection) Items() []Item {
	out := make([]Item, 0, len(c.items))
	for _, it := range c.items {
		out = append(out, it)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Duration is the lookup handed to the interval index during admission.
func (c Collection) Duration(id string) (time.Duration, error) {
	it, err := c.Get(id)
	if err != nil {
		return 0, err
	}
	return it.Duration, nil
}

// WithItem returns a snapshot with the item inserted or replaced.
func (c Collection) WithItem(it Item) (Collection, error) {
	if err := it.Validate(); err != nil {
		return Collection{}, err
	}
	return c.mutate(func(m map[string]Item) { m[it.ID] = it }), nil
}

// WithoutItem returns a snapshot with the item removed. Calendar entries for
// the item are not touched; that integrity concern is external.
func (c Collection) WithoutItem(id string) Collection {
	return c.mutate(func(m map[string]Item) { delete(m, id) })
}

func (c Collection) mutate(apply func(map[string]Item)) Collection {
	m := make(map[string]Item, len(c.items)+1)
	for k, v := range c.items {
		m[k] = v
	}
	apply(m)
	return Collection{items: m, version: c.version + 1}
}

// SubIndex builds the admission index for a sub-calendar item from its
// current children.
func (c Collection) SubIndex(parent Item) (*interval.Index, error) {
	if parent.Kind != KindSubCalendar {
		return nil, fmt.Errorf("%w: %q", ErrNotSubCalendar, parent.ID)
	}
	idx := interval.NewIndex()
	for _, ch := range parent.SubChildren {
		dur, err := c.Duration(ch.ChildID)
		if err != nil {
			return nil, err
		}
		idx.Insert(ch.Offset, ch.Offset+dur, ch.RelationshipID)
	}
	return idx, nil
}

// ScheduleChild admits childID into the sub-calendar parent at the given
// offset. On overlap it returns ErrOverlap from the index and the collection
// is unchanged. On success both the parent (new child entry) and the child
// (new parent back-reference) are replaced in a fresh snapshot.
func (c Collection) ScheduleChild(parentID, childID string, offset time.Duration, relationshipID string) (Collection, error) {
	parent, err := c.Get(parentID)
	if err != nil {
		return Collection{}, err
	}
	child, err := c.Get(childID)
	if err != nil {
		return Collection{}, err
	}
	idx, err := c.SubIndex(parent)
	if err != nil {
		return Collection{}, err
	}
	if err := idx.ScheduleChild(interval.Placement{ChildID: childID, Start: offset, Token: relationshipID}, c.Duration); err != nil {
		return Collection{}, err
	}

	next := parent
	next.SubChildren = append(append([]SubChild(nil), parent.SubChildren...), SubChild{
		ChildID:        childID,
		Offset:         offset,
		RelationshipID: relationshipID,
	})
	if err := next.Validate(); err != nil {
		return Collection{}, err
	}
	linked := child.withParent(ParentRef{ParentID: parentID, RelationshipID: relationshipID})
	return c.mutate(func(m map[string]Item) {
		m[next.ID] = next
		m[linked.ID] = linked
	}), nil
}

// AddCheckChild appends childID to a checklist parent. Checklist children
// share the parent's start, so there is no admission control to run.
func (c Collection) AddCheckChild(parentID, childID, relationshipID string) (Collection, error) {
	parent, err := c.Get(parentID)
	if err != nil {
		return Collection{}, err
	}
	if parent.Kind != KindCheckList {
		return Collection{}, fmt.Errorf("%w: %q", ErrNotCheckList, parentID)
	}
	child, err := c.Get(childID)
	if err != nil {
		return Collection{}, err
	}
	next := parent
	next.CheckChildren = append(append([]CheckChild(nil), parent.CheckChildren...), CheckChild{
		ChildID:        childID,
		RelationshipID: relationshipID,
	})
	if err := next.Validate(); err != nil {
		return Collection{}, err
	}
	linked := child.withParent(ParentRef{ParentID: parentID, RelationshipID: relationshipID})
	return c.mutate(func(m map[string]Item) {
		m[next.ID] = next
		m[linked.ID] = linked
	}), nil
}

// RemoveChild drops the placement identified by relationshipID from the
// parent and removes the matching back-reference from the child.
func (c Collection) RemoveChild(parentID, relationshipID string) (Collection, error) {
	parent, err := c.Get(parentID)
	if err != nil {
		return Collection{}, err
	}
	next := parent
	childID := ""
	switch parent.Kind {
	case KindSubCalendar:
		next.SubChildren = make([]SubChild, 0, len(parent.SubChildren))
		for _, ch := range parent.SubChildren {
			if ch.RelationshipID == relationshipID {
				childID = ch.ChildID
				continue
			}
			next.SubChildren = append(next.SubChildren, ch)
		}
	case KindCheckList:
		next.CheckChildren = make([]CheckChild, 0, len(parent.CheckChildren))
		for _, ch := range parent.CheckChildren {
			if ch.RelationshipID == relationshipID {
				childID = ch.ChildID
				continue
			}
			next.CheckChildren = append(next.CheckChildren, ch)
		}
	default:
		return Collection{}, fmt.Errorf("%w: %q", ErrNotSubCalendar, parentID)
	}
	if childID == "" {
		return Collection{}, fmt.Errorf("%w: %q under %q", ErrRelationshipGone, relationshipID, parentID)
	}
	child, err := c.Get(childID)
	if err != nil {
		return Collection{}, err
	}
	unlinked := child.withoutParent(relationshipID)
	return c.mutate(func(m map[string]Item) {
		m[next.ID] = next
		m[unlinked.ID] = unlinked
	}), nil
}

// SetComplete flips the completion flag on a checklist placement.
func (c Collection) SetComplete(parentID, relationshipID string, complete bool) (Collection, error) {
	parent, err := c.Get(parentID)
	if err != nil {
		return Collection{}, err
	}
	if parent.Kind != KindCheckList {
		return Collection{}, fmt.Errorf("%w: %q", ErrNotCheckList, parentID)
	}
	next := parent
	next.CheckChildren = append([]CheckChild(nil), parent.CheckChildren...)
	found := false
	for i := range next.CheckChildren {
		if next.CheckChildren[i].RelationshipID == relationshipID {
			next.CheckChildren[i].Complete = complete
			found = true
			break
		}
	}
	if !found {
		return Collection{}, fmt.Errorf("%w: %q under %q", ErrRelationshipGone, relationshipID, parentID)
	}
	return c.mutate(func(m map[string]Item) { m[next.ID] = next }), nil
}
