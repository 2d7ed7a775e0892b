package main

import (
	"stardew-seedsearch/internal/demand"
	"stardew-seedsearch/internal/search"
)

// Object ids used by the built-in demand sets.
const (
	itemCoconut          = 88
	itemVegetableMedley  = 200
	itemFriedCalamari    = 202
	itemGlazedYams       = 208
	itemPinkCake         = 221
	itemGarlic           = 248
	itemHotPepper        = 260
	itemRedCabbage       = 266
	itemGrape            = 398
	itemSunflower        = 421
	itemCoffeeBean       = 433
	itemRabbitsFoot      = 446
	itemGarlicSeeds      = 476
	itemRedCabbageSeeds  = 485
	itemFairyRose        = 595
	itemPlumPudding      = 604
	itemCranberryCandy   = 612
	itemGreenTea         = 614
	itemSnail            = 721
	defaultTrackDeadline = 68
)

// defaultAlwaysHard: Haley's and Pierre's birthday gifts, then garlic and red
// cabbage (or their seeds) for the summer bundles.
func defaultAlwaysHard() []demand.Demand {
	return []demand.Demand{
		{Deadline: 14, Quantity: 1, Options: []int{itemCoconut, itemSunflower}},
		{Deadline: 28, Quantity: 1, Options: []int{itemFriedCalamari}},
		{Deadline: 84, Quantity: 1, Options: []int{itemGarlic, itemGarlicSeeds}},
		{Deadline: 84, Quantity: 1, Options: []int{itemRedCabbage, itemRedCabbageSeeds}},
	}
}

func defaultBonuses() []search.Bonus {
	return []search.Bonus{
		{Label: "Coffee Bean", Demand: demand.Demand{Deadline: 35, Quantity: 1, Options: []int{itemCoffeeBean}}},
		{Label: "Vincent Birthday", Demand: demand.Demand{Deadline: 10, Quantity: 1,
			Options: []int{itemSnail, itemGrape, itemCranberryCandy}}},
		{Label: "Jas Birthday", Demand: demand.Demand{Deadline: 32, Quantity: 1,
			Options: []int{itemFairyRose, itemPinkCake, itemPlumPudding}}},
		{Label: "Lewis Birthday", Demand: demand.Demand{Deadline: 7, Quantity: 1,
			Options: []int{itemGlazedYams, itemGreenTea, itemHotPepper, itemVegetableMedley}}},
		{Label: "Rabbit's Foot", Demand: demand.Demand{Deadline: 112, Quantity: 2, Options: []int{itemRabbitsFoot}}},
	}
}
