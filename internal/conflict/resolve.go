package conflict

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

var (
	ErrMemberNotFound = errors.New("conflict: chosen item is not a group member")
	ErrInvalidDelay   = errors.New("conflict: snooze delay must be positive")
	ErrEmptyGroup     = errors.New("conflict: group has no members")
)

// Prioritize resolves a group in favor of chosenID by raising its priority
// strictly above every current member. The returned slice holds only the
// members that changed; the caller writes them back.
func Prioritize(g Group, chosenID string) ([]RootInterval, error) {
	if len(g.Members) == 0 {
		return nil, ErrEmptyGroup
	}
	maxPriority := g.Members[0].Priority
	var chosen *RootInterval
	for i := range g.Members {
		if g.Members[i].Priority > maxPriority {
			maxPriority = g.Members[i].Priority
		}
		if g.Members[i].ID == chosenID {
			chosen = &g.Members[i]
		}
	}
	if chosen == nil {
		return nil, fmt.Errorf("%w: %q", ErrMemberNotFound, chosenID)
	}
	updated := *chosen
	updated.Priority = maxPriority + 1
	return []RootInterval{updated}, nil
}

// Snooze shifts every member except the first (the members are already
// ordered priority desc, start asc) forward by delay on both start and end.
func Snooze(g Group, delay time.Duration) ([]RootInterval, error) {
	if len(g.Members) == 0 {
		return nil, ErrEmptyGroup
	}
	if delay <= 0 {
		return nil, fmt.Errorf("%w: %s", ErrInvalidDelay, delay)
	}
	out := make([]RootInterval, 0, len(g.Members)-1)
	for _, m := range g.Members[1:] {
		shifted := m
		shifted.Start = m.Start.Add(delay)
		shifted.End = m.End.Add(delay)
		out = append(out, shifted)
	}
	return out, nil
}

// CooldownLedger suppresses re-prompting for a group that was just resolved,
// so a resolution that leaves some overlap in place does not immediately
// re-trigger the same prompt.
type CooldownLedger struct {
	mu     sync.Mutex
	window time.Duration
	until  map[string]time.Time
}

func NewCooldownLedger(window time.Duration) *CooldownLedger {
	return &CooldownLedger{
		window: window,
		until:  make(map[string]time.Time),
	}
}

// Suppressed reports whether the group is still inside its cooldown window.
// Expired entries are dropped as a side effect.
func (l *CooldownLedger) Suppressed(g Group, now time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	sig := g.Signature()
	deadline, ok := l.until[sig]
	if !ok {
		return false
	}
	if now.Before(deadline) {
		return true
	}
	delete(l.until, sig)
	return false
}

// MarkResolved starts the cooldown window for the group.
func (l *CooldownLedger) MarkResolved(g Group, now time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.until[g.Signature()] = now.Add(l.window)
}
