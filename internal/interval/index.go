// Package interval implements the per-container admission structure used when
// scheduling children into a time-boxed item: at most one child may occupy
// any instant inside one container.
package interval

import (
	"errors"
	"sort"
	"time"
)

var (
	ErrOverlap       = errors.New("interval: interval overlaps an existing one")
	ErrTokenNotFound = errors.New("interval: token not found")
)

// Span is a half-open [Start, End) interval tagged with an opaque token,
// typically a relationship id. Offsets are relative to the container start.
type Span struct {
	Start time.Duration
	End   time.Duration
	Token string
}

func (s Span) overlaps(start, end time.Duration) bool {
	lo := max(start, s.Start)
	hi := min(end, s.End)
	return lo < hi
}

// Index keeps spans sorted by start. A sorted slice is enough here: container
// fan-out is small and the admission contract only needs ordered scans.
type Index struct {
	spans []Span
}

func NewIndex() *Index {
	return &Index{spans: make([]Span, 0)}
}

func (x *Index) Len() int { return len(x.spans) }

// Spans returns the stored spans in start order. The slice is a copy.
func (x *Index) Spans() []Span {
	return append([]Span(nil), x.spans...)
}

// Insert adds a span, keeping the slice ordered by start. It does not check
// for overlap; admission goes through ScheduleChild.
func (x *Index) Insert(start, end time.Duration, token string) {
	at := sort.Search(len(x.spans), func(i int) bool { return x.spans[i].Start >= start })
	x.spans = append(x.spans, Span{})
	copy(x.spans[at+1:], x.spans[at:])
	x.spans[at] = Span{Start: start, End: end, Token: token}
}

// Overlaps reports whether any stored span intersects [start, end). An empty
// interval (start == end) never overlaps anything.
func (x *Index) Overlaps(start, end time.Duration) bool {
	for _, s := range x.spans {
		if s.Start >= end {
			break
		}
		if s.overlaps(start, end) {
			return true
		}
	}
	return false
}

// FindAllOverlapping returns the tokens of every span intersecting [start, end).
func (x *Index) FindAllOverlapping(start, end time.Duration) []string {
	out := make([]string, 0)
	for _, s := range x.spans {
		if s.Start >= end {
			break
		}
		if s.overlaps(start, end) {
			out = append(out, s.Token)
		}
	}
	return out
}

// At returns the span whose interval contains the given offset.
func (x *Index) At(offset time.Duration) (Span, bool) {
	for _, s := range x.spans {
		if s.Start > offset {
			break
		}
		if offset >= s.Start && offset < s.End {
			return s, true
		}
	}
	return Span{}, false
}

// RemoveByToken drops the span carrying the token.
func (x *Index) RemoveByToken(token string) error {
	for i, s := range x.spans {
		if s.Token == token {
			x.spans = append(x.spans[:i], x.spans[i+1:]...)
			return nil
		}
	}
	return ErrTokenNotFound
}

// Placement describes a child awaiting admission into a container.
type Placement struct {
	ChildID string
	Start   time.Duration
	Token   string
}

// ScheduleChild is the single admission-control operation: it computes the
// child's interval from the duration lookup, rejects with ErrOverlap if any
// sibling intersects it, and otherwise inserts it. Rejection leaves the index
// untouched.
func (x *Index) ScheduleChild(p Placement, durationOf func(id string) (time.Duration, error)) error {
	dur, err := durationOf(p.ChildID)
	if err != nil {
		return err
	}
	end := p.Start + dur
	if x.Overlaps(p.Start, end) {
		return ErrOverlap
	}
	x.Insert(p.Start, end, p.Token)
	return nil
}
