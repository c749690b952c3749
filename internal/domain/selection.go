package domain

import "sort"

// SelectionKind discriminates the two kinds of booking line.
type SelectionKind string

const (
	SelectionKindItem SelectionKind = "item"
	SelectionKindSet  SelectionKind = "set"
)

// Selection is a realized snapshot of a session's cart: requested concrete
// items and sets with quantities. It is a plain value; ownership and
// persistence of the live cart belong to the selection store, and the
// engines never mutate session storage through it.
type Selection struct {
	Items map[int64]int32 `json:"items"` // concrete item id -> quantity (always 1)
	Sets  map[int64]int32 `json:"sets"`  // set id -> quantity (>= 1)
}

func NewSelection() Selection {
	return Selection{Items: map[int64]int32{}, Sets: map[int64]int32{}}
}

func (s Selection) Empty() bool {
	return len(s.Items) == 0 && len(s.Sets) == 0
}

// ItemIDs returns the selected concrete item ids in ascending order so that
// processing is deterministic.
func (s Selection) ItemIDs() []int64 {
	return sortedKeys(s.Items)
}

// SetIDs returns the selected set ids in ascending order.
func (s Selection) SetIDs() []int64 {
	return sortedKeys(s.Sets)
}

// Clone returns a deep copy, so a snapshot handed to a caller cannot be
// changed underneath it.
func (s Selection) Clone() Selection {
	out := NewSelection()
	for id, qty := range s.Items {
		out.Items[id] = qty
	}
	for id, qty := range s.Sets {
		out.Sets[id] = qty
	}
	return out
}

func sortedKeys(m map[int64]int32) []int64 {
	ids := make([]int64, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
