// Package cart predicts the traveling cart's random stock for a game id.
package cart

import (
	"errors"
	"fmt"
	"slices"

	"stardew-seedsearch/internal/catalog"
	"stardew-seedsearch/internal/rng"
)

// MaxObjects is how many random objects the cart stocks per day.
const MaxObjects = 10

// Object ids eligible for the random pool.
const (
	minObjectID = 2
	maxObjectID = 789

	minFurnitureID = 0
	maxFurnitureID = 1612
)

var ErrTallySize = errors.New("tally buffer size must be day count times watched count")

// Simulator replays the cart's draws against a fixed catalog. It holds only
// read-only tables and may be shared by any number of goroutines; per-call
// scratch (composites, totals) belongs to the caller.
type Simulator struct {
	objects   []catalog.Object
	furniture []catalog.Furniture

	// eligible[i]: object i enters the composite sort.
	// sellable[i]: a picked object i is actually stocked.
	eligible []bool
	sellable []bool
}

func NewSimulator(cat *catalog.Catalog) *Simulator {
	s := &Simulator{
		objects:   cat.Objects,
		furniture: cat.Furniture,
		eligible:  make([]bool, len(cat.Objects)),
		sellable:  make([]bool, len(cat.Objects)),
	}
	for i, o := range cat.Objects {
		s.eligible[i] = o.ID >= minObjectID && o.ID <= maxObjectID && o.Price != 0 && !o.ExcludeFromRandomSale
		s.sellable[i] = sellable(o)
	}
	return s
}

func sellable(o catalog.Object) bool {
	if o.Category >= 0 || o.Category == -999 {
		return false
	}
	switch o.Type {
	case "Arch", "Minerals", "Quest":
		return false
	}
	return true
}

// NumObjects is the size of the object table; composite buffers must be at
// least this long.
func (s *Simulator) NumObjects() int { return len(s.objects) }

// NewScratch allocates a composite buffer for ProcessDay.
func (s *Simulator) NewScratch() []uint64 {
	return make([]uint64, len(s.objects))
}

// ProcessDay replays one cart day and adds the stocked quantity of every
// watched id to the matching slot of totals. watched may be in any order;
// totals must be at least as long as watched. It returns how many objects
// were stocked.
func (s *Simulator) ProcessDay(gameID uint64, day int, watched, totals []int, composites []uint64) int {
	var st rng.Stream
	st.Reset(rng.DaySaveSeed(day, gameID))
	return s.drawObjects(&st, composites, watched, totals, nil)
}

// drawObjects runs the object pass on st. Every object consumes one draw for
// its sort key; eligible ones are ordered by key, and for each distinct key
// the last index in the run is the pick. Picks that pass the sell check draw
// a price pair and a quantity.
func (s *Simulator) drawObjects(st *rng.Stream, composites []uint64, watched, totals []int, offers *[]Offer) int {
	n := 0
	for i := range s.objects {
		key := st.NextInt32()
		if !s.eligible[i] {
			continue
		}
		composites[n] = uint64(uint32(key))<<32 | uint64(uint32(i))
		n++
	}
	sorted := composites[:n]
	slices.Sort(sorted)

	accepted := 0
	consume := func(idx int) bool {
		if !s.sellable[idx] {
			return false
		}
		p1 := st.IntRange(1, 11)
		p2 := st.IntRange(3, 6)
		qty := 1
		if st.Float64() < 0.1 {
			qty = 5
		}
		id := s.objects[idx].ID
		for w, wid := range watched {
			if wid == id {
				totals[w] += qty
				break
			}
		}
		if offers != nil {
			o := s.objects[idx]
			*offers = append(*offers, Offer{
				ID:        o.ID,
				Name:      o.Name,
				BasePrice: o.Price,
				Price:     max(p1*100, p2*o.Price),
				Quantity:  qty,
			})
		}
		accepted++
		return true
	}

	if len(sorted) == 0 {
		return 0
	}
	current := uint32(sorted[0] >> 32)
	chosen := int(uint32(sorted[0]))
	for _, c := range sorted[1:] {
		key, idx := uint32(c>>32), int(uint32(c))
		if key == current {
			chosen = idx
			continue
		}
		if consume(chosen) && accepted >= MaxObjects {
			return accepted
		}
		current, chosen = key, idx
	}
	consume(chosen)
	return accepted
}

// AccumulateDailyUnits fills out with the watched quantities of every cart
// day on or before cutoff, one row of len(watched) per day. out must be
// exactly DayCountUpTo(cutoff)*len(watched) long.
func (s *Simulator) AccumulateDailyUnits(gameID uint64, cutoff int, watched, out []int, composites []uint64) error {
	w := len(watched)
	days := DayCountUpTo(cutoff)
	if len(out) != days*w {
		return fmt.Errorf("%w: got %d, want %d", ErrTallySize, len(out), days*w)
	}
	clear(out)
	for d := 0; d < days; d++ {
		s.ProcessDay(gameID, ForestDaysYear1[d], watched, out[d*w:(d+1)*w], composites)
	}
	return nil
}
