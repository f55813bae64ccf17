package models

import "sort"

// Selection is a set of beacon identifiers. The zero value is an empty selection.
type Selection struct {
	ids map[string]struct{}
}

// NewSelection returns a selection holding ids.
func NewSelection(ids ...string) Selection {
	var s Selection
	for _, id := range ids {
		s.Add(id)
	}
	return s
}

// Add inserts id; adding a present id is a no-op.
func (s *Selection) Add(id string) {
	if s.ids == nil {
		s.ids = make(map[string]struct{})
	}
	s.ids[id] = struct{}{}
}

// Has reports whether id is selected.
func (s Selection) Has(id string) bool {
	_, ok := s.ids[id]
	return ok
}

// Len returns the number of selected beacons.
func (s Selection) Len() int { return len(s.ids) }

// IsEmpty reports whether nothing is selected.
func (s Selection) IsEmpty() bool { return len(s.ids) == 0 }

// Clear removes every id.
func (s *Selection) Clear() { s.ids = nil }

// Replace swaps the content for ids.
func (s *Selection) Replace(ids []string) {
	s.ids = nil
	for _, id := range ids {
		s.Add(id)
	}
}

// IDs returns the selected ids in lexicographic order.
func (s Selection) IDs() []string {
	out := make([]string, 0, len(s.ids))
	for id := range s.ids {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Clone returns an independent copy.
func (s Selection) Clone() Selection {
	return NewSelection(s.IDs()...)
}

// Equal reports whether both selections hold the same ids.
func (s Selection) Equal(o Selection) bool {
	if s.Len() != o.Len() {
		return false
	}
	for id := range s.ids {
		if !o.Has(id) {
			return false
		}
	}
	return true
}
