package cart

import (
	"stardew-seedsearch/internal/rng"
)

// Offer is one priced listing on the cart.
type Offer struct {
	ID        int
	Name      string
	BasePrice int
	Price     int
	Quantity  int
}

// Stock is the random part of one day's cart: up to MaxObjects objects and
// at most one furniture piece.
type Stock struct {
	Day       int
	Objects   []Offer
	Furniture *Offer

	// Draws is the number of raw samples the day consumed.
	Draws int
}

// Stock predicts the full random stock for day, with prices. It replays
// exactly the draws ProcessDay does and then the furniture pass.
func (s *Simulator) Stock(gameID uint64, day int) Stock {
	var st rng.Stream
	st.Reset(rng.DaySaveSeed(day, gameID))

	out := Stock{Day: day, Objects: make([]Offer, 0, MaxObjects)}
	s.drawObjects(&st, s.NewScratch(), nil, nil, &out.Objects)

	// Lowest key wins; a later entry with an equal key replaces the earlier.
	best, bestKey := -1, int32(0)
	for i, f := range s.furniture {
		key := st.NextInt32()
		if f.ID < minFurnitureID || f.ID > maxFurnitureID || f.Price == 0 || f.ExcludeFromRandomSale {
			continue
		}
		if best < 0 || key <= bestKey {
			best, bestKey = i, key
		}
	}
	if best >= 0 {
		f := s.furniture[best]
		out.Furniture = &Offer{
			ID:        f.ID,
			Name:      f.Name,
			BasePrice: f.Price,
			Price:     st.IntRange(1, 11) * 250,
			Quantity:  1,
		}
	}
	out.Draws = st.Draws()
	return out
}
