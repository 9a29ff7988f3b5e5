package sequencer

import (
	"sort"

	"github.com/mind-engage/coeus/internal/learning"
)

// Relocate moves id to position target (clamped to 1..N) within items and
// returns the dense 1..N index of every item afterwards. items is not
// modified. ok is false if id is not in items.
func Relocate(items []learning.Content, id string, target int) (next map[string]int, ok bool) {
	ordered := sortedIDs(items)
	from := -1
	for i, cid := range ordered {
		if cid == id {
			from = i
			break
		}
	}
	if from < 0 {
		return nil, false
	}
	target = min(max(target, 1), len(ordered))

	rest := append(ordered[:from:from], ordered[from+1:]...)
	moved := make([]string, 0, len(ordered))
	moved = append(moved, rest[:target-1]...)
	moved = append(moved, id)
	moved = append(moved, rest[target-1:]...)
	return dense(moved), true
}

// Normalize renumbers items 1..N keeping their current relative order
// (order_index, then id).
func Normalize(items []learning.Content) map[string]int {
	return dense(sortedIDs(items))
}

// Changed drops entries whose index already matches, so only moved rows
// are written.
func Changed(items []learning.Content, next map[string]int) map[string]int {
	out := make(map[string]int, len(next))
	for _, c := range items {
		if idx, ok := next[c.ID]; ok && idx != c.OrderIndex {
			out[c.ID] = idx
		}
	}
	return out
}

// IsDense reports whether items carry exactly the indexes 1..N.
func IsDense(items []learning.Content) bool {
	seen := make(map[int]bool, len(items))
	for _, c := range items {
		if c.OrderIndex < 1 || c.OrderIndex > len(items) || seen[c.OrderIndex] {
			return false
		}
		seen[c.OrderIndex] = true
	}
	return true
}

func sortedIDs(items []learning.Content) []string {
	cp := append([]learning.Content(nil), items...)
	sort.SliceStable(cp, func(i, j int) bool {
		if cp[i].OrderIndex != cp[j].OrderIndex {
			return cp[i].OrderIndex < cp[j].OrderIndex
		}
		return cp[i].ID < cp[j].ID
	})
	ids := make([]string, len(cp))
	for i, c := range cp {
		ids[i] = c.ID
	}
	return ids
}

func dense(ids []string) map[string]int {
	out := make(map[string]int, len(ids))
	for i, id := range ids {
		out[id] = i + 1
	}
	return out
}
