//go:build !lambda

package main

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"stardew-seedsearch/internal/cart"
)

// printStock lists the predicted cart stock of every year-one forest day.
func printStock(w io.Writer, sim *cart.Simulator, gameID uint64) {
	printer := message.NewPrinter(language.English)
	head := color.New(color.Bold)
	offer := func(o cart.Offer) {
		fmt.Fprintf(w, "  %-28s x%-2d %s\n", o.Name, o.Quantity, printer.Sprintf("%7dg", o.Price))
	}
	head.Fprintf(w, "Seed %d\n", gameID)
	for _, day := range cart.ForestDaysYear1 {
		st := sim.Stock(gameID, day)
		head.Fprintf(w, "Day %d\n", st.Day)
		for _, o := range st.Objects {
			offer(o)
		}
		if st.Furniture != nil {
			offer(*st.Furniture)
		}
	}
}
