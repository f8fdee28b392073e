// Package conflict detects simultaneously-scheduled root items and applies
// user resolutions. Detection runs over externally-queried root intervals;
// resolutions become ordinary scheduling mutations written back by the caller.
package conflict

import (
	"sort"
	"strings"
	"time"
)

// RootInterval is one scheduled root occurrence as returned by the overlap
// query: the absolute half-open interval plus the tie-break priority.
type RootInterval struct {
	ID           string
	Start        time.Time
	End          time.Time
	Priority     int
	TemplateHash string
}

func (r RootInterval) ActiveAt(now time.Time) bool {
	return !now.Before(r.Start) && now.Before(r.End)
}

func (r RootInterval) overlaps(other RootInterval) bool {
	return r.Start.Before(other.End) && other.Start.Before(r.End)
}

// Group is a transitive closure of pairwise-overlapping roots, ordered by
// priority descending, then start ascending, then id.
type Group struct {
	Members []RootInterval
}

// Signature identifies the group by its member set, independent of order,
// for cooldown bookkeeping.
func (g Group) Signature() string {
	ids := make([]string, len(g.Members))
	for i, m := range g.Members {
		ids[i] = m.ID
	}
	sort.Strings(ids)
	return strings.Join(ids, "|")
}

// LiveAt reports whether at least two members are active at now. Only live
// groups are worth prompting about.
func (g Group) LiveAt(now time.Time) bool {
	active := 0
	for _, m := range g.Members {
		if m.ActiveAt(now) {
			active++
			if active >= 2 {
				return true
			}
		}
	}
	return false
}

// BuildGroups partitions the roots into overlap groups: two roots land in the
// same group iff they are connected through a chain of pairwise overlaps.
// Singleton groups are dropped.
func BuildGroups(roots []RootInterval) []Group {
	n := len(roots)
	if n == 0 {
		return nil
	}
	parent := make([]int, n)
	for i := range parent {
		parent[i] = i
	}
	var find func(int) int
	find = func(i int) int {
		if parent[i] != i {
			parent[i] = find(parent[i])
		}
		return parent[i]
	}
	union := func(a, b int) {
		parent[find(a)] = find(b)
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if roots[i].overlaps(roots[j]) {
				union(i, j)
			}
		}
	}

	byRoot := make(map[int][]RootInterval)
	order := make([]int, 0)
	for i, r := range roots {
		root := find(i)
		if _, ok := byRoot[root]; !ok {
			order = append(order, root)
		}
		byRoot[root] = append(byRoot[root], r)
	}

	out := make([]Group, 0, len(order))
	for _, root := range order {
		members := byRoot[root]
		if len(members) < 2 {
			continue
		}
		sortMembers(members)
		out = append(out, Group{Members: members})
	}
	return out
}

// LiveGroups filters to the groups live at now.
func LiveGroups(groups []Group, now time.Time) []Group {
	out := make([]Group, 0)
	for _, g := range groups {
		if g.LiveAt(now) {
			out = append(out, g)
		}
	}
	return out
}

func sortMembers(members []RootInterval) {
	sort.Slice(members, func(i, j int) bool {
		a, b := members[i], members[j]
		if a.Priority != b.Priority {
			return a.Priority > b.Priority
		}
		if !a.Start.Equal(b.Start) {
			return a.Start.Before(b.Start)
		}
		return a.ID < b.ID
	})
}
