package search

import (
	"cmp"
	"slices"
)

// Candidate is a seed that passed every hard constraint.
type Candidate struct {
	Seed      uint64
	Score     int
	AuxMask   uint8
	BonusMask uint16
}

// worse reports whether a ranks below b: lower score, or equal score and
// higher seed. It is a total order, so the retained set does not depend on
// insertion order.
func worse(a, b Candidate) bool {
	if a.Score != b.Score {
		return a.Score < b.Score
	}
	return a.Seed > b.Seed
}

// TopK keeps the k best candidates seen, ranked by score descending then
// seed ascending. Add rejects anything not better than the current worst in
// O(1) once full; an accepted candidate replaces the worst and the worst is
// recomputed in O(k). Not safe for concurrent use.
type TopK struct {
	k        int
	items    []Candidate
	minIndex int
}

func NewTopK(k int) *TopK {
	k = max(1, k)
	return &TopK{k: k, items: make([]Candidate, 0, k)}
}

func (t *TopK) Add(c Candidate) {
	if len(t.items) < t.k {
		t.items = append(t.items, c)
		if len(t.items) == 1 || worse(c, t.items[t.minIndex]) {
			t.minIndex = len(t.items) - 1
		}
		return
	}
	if !worse(t.items[t.minIndex], c) {
		return
	}
	t.items[t.minIndex] = c
	t.recomputeMin()
}

func (t *TopK) recomputeMin() {
	t.minIndex = 0
	for i := 1; i < len(t.items); i++ {
		if worse(t.items[i], t.items[t.minIndex]) {
			t.minIndex = i
		}
	}
}

// Merge adds every candidate of cs, typically another TopK's Sorted output.
func (t *TopK) Merge(cs []Candidate) {
	for _, c := range cs {
		t.Add(c)
	}
}

func (t *TopK) Len() int { return len(t.items) }

// Min returns the lowest retained score and whether any candidate is held.
func (t *TopK) Min() (int, bool) {
	if len(t.items) == 0 {
		return 0, false
	}
	return t.items[t.minIndex].Score, true
}

// Reset empties t, keeping its storage.
func (t *TopK) Reset() {
	t.items = t.items[:0]
	t.minIndex = 0
}

// Sorted returns a copy ordered by score descending, then seed ascending.
func (t *TopK) Sorted() []Candidate {
	out := slices.Clone(t.items)
	slices.SortFunc(out, func(a, b Candidate) int {
		if c := cmp.Compare(b.Score, a.Score); c != 0 {
			return c
		}
		return cmp.Compare(a.Seed, b.Seed)
	})
	return out
}
