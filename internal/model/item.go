package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrInvalidKind          = errors.New("model: invalid item kind")
	ErrInvalidSortType      = errors.New("model: invalid checklist sort type")
	ErrNegativeDuration     = errors.New("model: item duration must not be negative")
	ErrChildrenOnLeaf       = errors.New("model: children are only allowed on container items")
	ErrDuplicateRelationship = errors.New("model: duplicate relationship id")
)

// ItemKind is the variant tag of an Item. Every code path that dispatches on
// kind must handle all three values and treat anything else as an error.
type ItemKind string

const (
	KindBasic       ItemKind = "Basic"
	KindSubCalendar ItemKind = "SubCalendar"
	KindCheckList   ItemKind = "CheckList"
)

func (k ItemKind) IsValid() bool {
	switch k {
	case KindBasic, KindSubCalendar, KindCheckList:
		return true
	default:
		return false
	}
}

type SortType string

const (
	SortManual       SortType = "manual"
	SortAlphabetical SortType = "alphabetical"
	SortCompleteLast SortType = "complete_last"
)

func (s SortType) IsValid() bool {
	switch s {
	case SortManual, SortAlphabetical, SortCompleteLast:
		return true
	default:
		return false
	}
}

// ParentRef records one placement of an item under a parent. RelationshipID
// disambiguates multiple placements, including twice under the same parent.
type ParentRef struct {
	ParentID       string
	RelationshipID string
}

// SubChild is a time-boxed placement inside a SubCalendar item. Offset is
// relative to the parent's own start.
type SubChild struct {
	ChildID        string
	Offset         time.Duration
	RelationshipID string
}

// CheckChild is a placement inside a CheckList item. Checklist children share
// the parent's absolute start and carry no offset.
type CheckChild struct {
	ChildID        string
	RelationshipID string
	Complete       bool
}

// Item is a reusable plan entity. Items are treated as value objects:
// structural changes produce new instances rather than mutating in place.
type Item struct {
	ID       string
	Name     string
	Kind     ItemKind
	Duration time.Duration

	// Priority breaks ties when several scheduled roots are active at once
	// and is raised by conflict resolution.
	Priority int

	Parents []ParentRef

	// SubChildren is populated only when Kind == KindSubCalendar.
	SubChildren []SubChild

	// CheckChildren and SortType are populated only when Kind == KindCheckList.
	CheckChildren []CheckChild
	SortType      SortType
}

func (i Item) Validate() error {
	if strings.TrimSpace(i.ID) == "" {
		return errors.New("model: item id is required")
	}
	if !i.Kind.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidKind, i.Kind)
	}
	if i.Duration < 0 {
		return fmt.Errorf("%w: %s", ErrNegativeDuration, i.Duration)
	}
	if i.Kind != KindSubCalendar && len(i.SubChildren) > 0 {
		return fmt.Errorf("%w: %s has sub-calendar children", ErrChildrenOnLeaf, i.ID)
	}
	if i.Kind != KindCheckList && len(i.CheckChildren) > 0 {
		return fmt.Errorf("%w: %s has checklist children", ErrChildrenOnLeaf, i.ID)
	}
	if i.Kind == KindCheckList {
		if i.SortType == "" {
			return errors.New("model: checklist sort type is required")
		}
		if !i.SortType.IsValid() {
			return fmt.Errorf("%w: %q", ErrInvalidSortType, i.SortType)
		}
	} else if i.SortType != "" {
		return fmt.Errorf("%w: sort type on %q item", ErrInvalidSortType, i.Kind)
	}
	seen := make(map[string]bool, len(i.SubChildren)+len(i.CheckChildren))
	for _, c := range i.SubChildren {
		if seen[c.RelationshipID] {
			return fmt.Errorf("%w: %q", ErrDuplicateRelationship, c.RelationshipID)
		}
		seen[c.RelationshipID] = true
	}
	for _, c := range i.CheckChildren {
		if seen[c.RelationshipID] {
			return fmt.Errorf("%w: %q", ErrDuplicateRelationship, c.RelationshipID)
		}
		seen[c.RelationshipID] = true
	}
	return nil
}

// End returns the exclusive end of the item's interval anchored at start.
func (i Item) End(start time.Time) time.Time {
	return start.Add(i.Duration)
}

// ActiveAt reports whether now falls inside [start, start+duration). The end
// instant itself is excluded.
func (i Item) ActiveAt(start, now time.Time) bool {
	return !now.Before(start) && now.Before(i.End(start))
}

// HasChildren reports whether the item can carry children at all.
func (i Item) HasChildren() bool {
	switch i.Kind {
	case KindSubCalendar:
		return len(i.SubChildren) > 0
	case KindCheckList:
		return len(i.CheckChildren) > 0
	default:
		return false
	}
}

// withParent returns a copy of the item with one more parent back-reference.
func (i Item) withParent(ref ParentRef) Item {
	out := i
	out.Parents = append(append([]ParentRef(nil), i.Parents...), ref)
	return out
}

// withoutParent returns a copy of the item with the back-reference for the
// given relationship removed.
func (i Item) withoutParent(relationshipID string) Item {
	out := i
	out.Parents = make([]ParentRef, 0, len(i.Parents))
	for _, p := range i.Parents {
		if p.RelationshipID != relationshipID {
			out.Parents = append(out.Parents, p)
		}
	}
	return out
}
