// Package catalogtest provides a deterministic stand-in for the game's item
// tables, for tests in packages that need a catalog without shipping game data.
package catalogtest

import (
	"fmt"

	"stardew-seedsearch/internal/catalog"
)

// Sizes of the synthetic tables.
const (
	NumObjects   = 150
	NumFurniture = 30
)

// Synthetic returns a catalog of NumObjects objects and NumFurniture furniture
// entries. The mix covers every eligibility rule: out-of-range ids, zero
// prices, excluded entries, non-negative and -999 categories and the rejected
// object types.
func Synthetic() *catalog.Catalog {
	return catalog.New(Objects(), Furniture())
}

func Objects() []catalog.Object {
	out := make([]catalog.Object, 0, NumObjects)
	for i := 0; i < NumObjects; i++ {
		id := 145 + i
		if i%23 == 8 {
			id = 900 + i
		}
		price := 25 + 5*i
		if i%11 == 0 {
			price = 0
		}
		category := -75
		if i%7 == 3 {
			category = 5
		}
		if i%9 == 4 {
			category = -999
		}
		typ := "Basic"
		if i%13 == 5 {
			typ = "Arch"
		}
		if i%17 == 6 {
			typ = "Minerals"
		}
		if i%29 == 10 {
			typ = "Quest"
		}
		out = append(out, catalog.Object{
			Key:                   fmt.Sprint(id),
			ID:                    id,
			Name:                  fmt.Sprintf("Item %d", id),
			Price:                 price,
			Category:              category,
			Type:                  typ,
			ExcludeFromRandomSale: i%19 == 7,
		})
	}
	return out
}

func Furniture() []catalog.Furniture {
	out := make([]catalog.Furniture, 0, NumFurniture)
	for i := 0; i < NumFurniture; i++ {
		price := 100 + i
		if i%8 == 3 {
			price = 0
		}
		out = append(out, catalog.Furniture{
			Key:                   fmt.Sprint(i * 60),
			ID:                    i * 60,
			Name:                  fmt.Sprintf("Furniture %d", i*60),
			Price:                 price,
			ExcludeFromRandomSale: i%10 == 9,
		})
	}
	return out
}
