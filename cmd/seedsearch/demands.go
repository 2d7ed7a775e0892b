package main

import (
	"errors"
	"fmt"
	"os"
	"slices"

	"github.com/tidwall/gjson"

	"stardew-seedsearch/internal/catalog"
	"stardew-seedsearch/internal/demand"
	"stardew-seedsearch/internal/search"
)

var errBadDemandFile = errors.New("bad demand file")

// demandSet is the cart demand configuration of a run.
type demandSet struct {
	AlwaysHard      []demand.Demand
	Optional        []search.Bonus
	TrackedDeadline int
}

func defaultDemandSet() demandSet {
	return demandSet{
		AlwaysHard:      defaultAlwaysHard(),
		Optional:        defaultBonuses(),
		TrackedDeadline: defaultTrackDeadline,
	}
}

// apply copies the demand set into cfg.
func (ds demandSet) apply(cfg *search.Config) {
	cfg.AlwaysHard = ds.AlwaysHard
	cfg.OptionalBonus = ds.Optional
	cfg.TrackedItemDeadline = ds.TrackedDeadline
}

func loadDemandFile(path string, cat *catalog.Catalog) (demandSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return demandSet{}, err
	}
	ds, err := parseDemands(string(data), cat)
	if err != nil {
		return demandSet{}, fmt.Errorf("%s: %w", path, err)
	}
	return ds, nil
}

// parseDemands reads
//
//	{"trackedDeadline": 68,
//	 "alwaysHard": [{"deadline": 14, "quantity": 1, "items": ["Coconut", 421]}],
//	 "optional":   [{"label": "Coffee Bean", "deadline": 35, "items": ["(O)433"]}]}
//
// Items are ids or names; an item listed twice counts once. Sections left
// out keep their defaults; an empty list clears them.
func parseDemands(json string, cat *catalog.Catalog) (demandSet, error) {
	ds := defaultDemandSet()
	if !gjson.Valid(json) {
		return ds, fmt.Errorf("%w: invalid JSON", errBadDemandFile)
	}
	root := gjson.Parse(json)
	if !root.IsObject() {
		return ds, fmt.Errorf("%w: top level must be an object", errBadDemandFile)
	}

	if v := root.Get("trackedDeadline"); v.Exists() {
		ds.TrackedDeadline = int(v.Int())
	}
	if v := root.Get("alwaysHard"); v.Exists() {
		ds.AlwaysHard = ds.AlwaysHard[:0]
		for i, e := range v.Array() {
			d, err := parseDemand(e, cat)
			if err != nil {
				return ds, fmt.Errorf("alwaysHard[%d]: %w", i, err)
			}
			ds.AlwaysHard = append(ds.AlwaysHard, d)
		}
	}
	if v := root.Get("optional"); v.Exists() {
		ds.Optional = ds.Optional[:0]
		for i, e := range v.Array() {
			d, err := parseDemand(e, cat)
			if err != nil {
				return ds, fmt.Errorf("optional[%d]: %w", i, err)
			}
			label := e.Get("label").String()
			if label == "" {
				label = cat.Name(d.Options[0])
			}
			ds.Optional = append(ds.Optional, search.Bonus{Label: label, Demand: d})
		}
	}
	return ds, nil
}

func parseDemand(e gjson.Result, cat *catalog.Catalog) (demand.Demand, error) {
	d := demand.Demand{
		Deadline: int(e.Get("deadline").Int()),
		Quantity: 1,
	}
	if q := e.Get("quantity"); q.Exists() {
		d.Quantity = int(q.Int())
	}
	if d.Deadline < 1 || d.Quantity < 1 {
		return d, fmt.Errorf("%w: deadline and quantity must be positive", errBadDemandFile)
	}
	for _, it := range e.Get("items").Array() {
		id, err := cat.Resolve(it.String())
		if err != nil {
			return d, err
		}
		if !slices.Contains(d.Options, id) {
			d.Options = append(d.Options, id)
		}
	}
	if len(d.Options) == 0 {
		return d, fmt.Errorf("%w: no items", errBadDemandFile)
	}
	return d, nil
}
