// Package episodes maps a site's native episode identifiers to dense 1-based
// sequence numbers.
//
// Sites relabel episodes after inserting specials or reordering, so the label a
// site displays is not a reliable progress number. The position of an episode in
// the list sorted by its displayed number is.
package episodes

import "sort"

// Entry is one item of a site's episode list.
type Entry struct {
	NativeID  string
	Displayed int
}

// IndexMap maps native ids to sequence numbers in [1, Len()].
type IndexMap struct {
	seq map[string]int
}

// BuildMap stable-sorts entries by displayed number and numbers them 1..N.
// Repeated native ids keep their first position.
func BuildMap(entries []Entry) IndexMap {
	sorted := make([]Entry, 0, len(entries))
	seen := make(map[string]bool, len(entries))
	for _, e := range entries {
		if seen[e.NativeID] {
			continue
		}
		seen[e.NativeID] = true
		sorted = append(sorted, e)
	}

	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Displayed < sorted[j].Displayed
	})

	m := IndexMap{seq: make(map[string]int, len(sorted))}
	for i, e := range sorted {
		m.seq[e.NativeID] = i + 1
	}
	return m
}

// Resolve returns the sequence number for id. ok is false when the id is not in
// the list, in which case callers fall back to the on-page number.
func (m IndexMap) Resolve(id string) (n int, ok bool) {
	n, ok = m.seq[id]
	return n, ok
}

func (m IndexMap) Len() int {
	return len(m.seq)
}

// Numbers returns a copy of the mapping.
func (m IndexMap) Numbers() map[string]int {
	out := make(map[string]int, len(m.seq))
	for k, v := range m.seq {
		out[k] = v
	}
	return out
}
