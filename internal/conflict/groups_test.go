package conflict

import (
	"testing"
	"time"
)

func mkRoot(id string, startMin, endMin, priority int) RootInterval {
	base := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	return RootInterval{
		ID:       id,
		Start:    base.Add(time.Duration(startMin) * time.Minute),
		End:      base.Add(time.Duration(endMin) * time.Minute),
		Priority: priority,
	}
}

func TestBuildGroupsTransitiveClosure(t *testing.T) {
	// a-b overlap, b-c overlap, a-c do not: one group of three.
	// d is disjoint: dropped as a singleton.
	roots := []RootInterval{
		mkRoot("a", 0, 30, 1),
		mkRoot("b", 20, 50, 2),
		mkRoot("c", 45, 70, 3),
		mkRoot("d", 100, 120, 1),
	}
	groups := BuildGroups(roots)
	if len(groups) != 1 {
		t.Fatalf("expected one group, got: %#v", groups)
	}
	g := groups[0]
	if len(g.Members) != 3 {
		t.Fatalf("transitive closure must pull in all three: %#v", g.Members)
	}
	// Ordered by priority descending.
	if g.Members[0].ID != "c" || g.Members[1].ID != "b" || g.Members[2].ID != "a" {
		t.Fatalf("unexpected member order: %#v", g.Members)
	}
}

func TestBuildGroupsBoundaryTouchIsNotOverlap(t *testing.T) {
	roots := []RootInterval{
		mkRoot("a", 0, 30, 1),
		mkRoot("b", 30, 60, 1),
	}
	if groups := BuildGroups(roots); len(groups) != 0 {
		t.Fatalf("touching intervals must not conflict: %#v", groups)
	}
}

func TestBuildGroupsMemberTieBreaks(t *testing.T) {
	roots := []RootInterval{
		mkRoot("zeta", 0, 60, 2),
		mkRoot("alpha", 0, 60, 2),
		mkRoot("late", 30, 90, 2),
	}
	groups := BuildGroups(roots)
	if len(groups) != 1 {
		t.Fatalf("expected one group: %#v", groups)
	}
	m := groups[0].Members
	// Equal priority: start ascending, then id.
	if m[0].ID != "alpha" || m[1].ID != "zeta" || m[2].ID != "late" {
		t.Fatalf("unexpected order: %#v", m)
	}
}

func TestGroupSignatureIsOrderIndependent(t *testing.T) {
	a := Group{Members: []RootInterval{mkRoot("x", 0, 10, 1), mkRoot("y", 5, 15, 2)}}
	b := Group{Members: []RootInterval{mkRoot("y", 5, 15, 2), mkRoot("x", 0, 10, 1)}}
	if a.Signature() != b.Signature() {
		t.Fatalf("signatures differ: %q vs %q", a.Signature(), b.Signature())
	}
}

func TestLiveGroupsRequireTwoActiveMembers(t *testing.T) {
	base := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	groups := BuildGroups([]RootInterval{
		mkRoot("a", 0, 30, 1),
		mkRoot("b", 20, 50, 1),
		mkRoot("x", 60, 90, 1),
		mkRoot("y", 85, 120, 1),
	})
	if len(groups) != 2 {
		t.Fatalf("expected two groups: %#v", groups)
	}

	// At +25m both a and b run: only the first group is live.
	live := LiveGroups(groups, base.Add(25*time.Minute))
	if len(live) != 1 || live[0].Members[0].Start.After(base.Add(25*time.Minute)) {
		t.Fatalf("unexpected live set: %#v", live)
	}

	// At +40m only b runs: a future conflict is not prompted yet.
	if live := LiveGroups(groups, base.Add(40*time.Minute)); len(live) != 0 {
		t.Fatalf("single active member must not be live: %#v", live)
	}
}
