// Package demand decides whether a game id's forest carts can supply a set of
// deadline-bound item demands.
//
// A demand is met by units of any of its option items bought on cart days up
// to its deadline. One unit serves one demand, so overlapping demands compete
// for supply; the exact answer is a max-flow from per-day supply to demands.
package demand

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
)

var ErrWatchedMissing = errors.New("demand option is not in the watched set")

// Demand asks for Quantity units drawn from Options (object ids) on cart days
// on or before Deadline (days played).
type Demand struct {
	Deadline int
	Quantity int
	Options  []int
}

// SortByDeadline orders demands by deadline, keeping the relative order of
// equal deadlines.
func SortByDeadline(ds []Demand) {
	slices.SortStableFunc(ds, func(a, b Demand) int { return cmp.Compare(a.Deadline, b.Deadline) })
}

// Compiled is a demand whose options are indexes into a watched set.
type Compiled struct {
	Deadline int
	Quantity int
	Options  []int
}

// Plan is a demand set compiled once and evaluated against many game ids.
type Plan struct {
	Watched []int      // ascending, distinct
	Demands []Compiled // by deadline
}

// Compile builds the watched set as the sorted union of every demand's
// options and maps each distinct option to its watched index.
func Compile(ds []Demand) (*Plan, error) {
	var watched []int
	for _, d := range ds {
		watched = append(watched, d.Options...)
	}
	slices.Sort(watched)
	watched = slices.Compact(watched)

	sorted := slices.Clone(ds)
	SortByDeadline(sorted)

	p := &Plan{Watched: watched, Demands: make([]Compiled, 0, len(sorted))}
	for _, d := range sorted {
		c := Compiled{Deadline: d.Deadline, Quantity: d.Quantity, Options: make([]int, 0, len(d.Options))}
		for _, id := range d.Options {
			wi, ok := slices.BinarySearch(watched, id)
			if !ok {
				return nil, fmt.Errorf("%w: item %d", ErrWatchedMissing, id)
			}
			if !slices.Contains(c.Options, wi) {
				c.Options = append(c.Options, wi)
			}
		}
		p.Demands = append(p.Demands, c)
	}
	return p, nil
}

// Union writes the sorted distinct option ids of ds into dst[:0] and returns
// it. It reports false if the result would not fit in cap(dst).
func Union(dst []int, ds []Demand) ([]int, bool) {
	dst = dst[:0]
	for _, d := range ds {
		for _, id := range d.Options {
			if slices.Contains(dst, id) {
				continue
			}
			if len(dst) == cap(dst) {
				return dst, false
			}
			dst = append(dst, id)
		}
	}
	slices.Sort(dst)
	return dst, true
}
