package demand

import (
	"fmt"
	"math"
	"slices"

	"stardew-seedsearch/internal/cart"
)

// FlowResult describes the last exact check an Evaluator ran.
type FlowResult struct {
	Flow   int
	Demand int
}

// Evaluator answers demand questions for one goroutine at a time. It owns all
// scratch (tally, totals, composites and the flow network) and reuses it, so
// steady-state evaluation does not allocate.
type Evaluator struct {
	sim *cart.Simulator

	composites []uint64
	tally      []int
	totals     []int
	bound      []Compiled
	boundIdx   []int

	net  Network
	last FlowResult
}

func NewEvaluator(sim *cart.Simulator) *Evaluator {
	return &Evaluator{sim: sim, composites: sim.NewScratch()}
}

// LastFlow returns the result of the most recent max-flow solve.
func (e *Evaluator) LastFlow() FlowResult { return e.last }

// Network exposes the graph of the most recent max-flow solve. It is
// overwritten by the next solve.
func (e *Evaluator) Network() *Network { return &e.net }

// Satisfies reports whether the carts of gameID can meet every demand. Every
// option id must appear in watched. Order of demands does not matter.
//
// A per-demand supply sum rejects most ids cheaply; survivors get the exact
// max-flow check.
func (e *Evaluator) Satisfies(gameID uint64, demands []Demand, watched []int) (bool, error) {
	if len(demands) == 0 {
		return true, nil
	}
	if len(watched) == 0 {
		return false, nil
	}
	bound, err := e.bind(demands, watched)
	if err != nil {
		return false, err
	}
	return e.satisfies(gameID, bound, watched)
}

// SatisfiesPlan is Satisfies for a precompiled plan.
func (e *Evaluator) SatisfiesPlan(gameID uint64, p *Plan) (bool, error) {
	if len(p.Demands) == 0 {
		return true, nil
	}
	if len(p.Watched) == 0 {
		return false, nil
	}
	return e.satisfies(gameID, p.Demands, p.Watched)
}

func (e *Evaluator) satisfies(gameID uint64, demands []Compiled, watched []int) (bool, error) {
	cutoff, total := 0, 0
	for _, d := range demands {
		cutoff = max(cutoff, d.Deadline)
		total += d.Quantity
	}
	days := cart.DayCountUpTo(cutoff)
	e.tally = resize(e.tally, days*len(watched))
	if err := e.sim.AccumulateDailyUnits(gameID, cutoff, watched, e.tally, e.composites); err != nil {
		return false, err
	}
	if !prune(e.tally, days, len(watched), demands) {
		return false, nil
	}
	supply := 0
	for _, u := range e.tally {
		supply += u
	}
	if supply == 0 {
		return false, nil
	}
	return e.exact(e.tally, days, len(watched), demands, total), nil
}

// Prune is the cheap necessary condition: each demand on its own must see at
// least Quantity units of its options on days up to its deadline. tally holds
// days rows of len(watched) units, as AccumulateDailyUnits fills it.
func (e *Evaluator) Prune(tally []int, days int, demands []Demand, watched []int) (bool, error) {
	bound, err := e.bind(demands, watched)
	if err != nil {
		return false, err
	}
	return prune(tally, days, len(watched), bound), nil
}

func prune(tally []int, days, w int, demands []Compiled) bool {
	for _, d := range demands {
		available := 0
		for day := 0; day < days && cart.ForestDaysYear1[day] <= d.Deadline; day++ {
			row := tally[day*w : (day+1)*w]
			for _, wi := range d.Options {
				available += row[wi]
			}
		}
		if available < d.Quantity {
			return false
		}
	}
	return true
}

// exact builds source -> (day, item) -> demand -> sink and checks whether the
// max flow covers every demanded unit.
func (e *Evaluator) exact(tally []int, days, w int, demands []Compiled, total int) bool {
	const source = 0
	firstSupply := 1
	firstDemand := firstSupply + days*w
	sink := firstDemand + len(demands)

	e.net.Reset(sink + 1)
	for i, u := range tally[:days*w] {
		if u > 0 {
			e.net.AddEdge(source, firstSupply+i, u)
		}
	}
	for di, d := range demands {
		node := firstDemand + di
		e.net.AddEdge(node, sink, d.Quantity)
		for day := 0; day < days && cart.ForestDaysYear1[day] <= d.Deadline; day++ {
			for _, wi := range d.Options {
				if u := tally[day*w+wi]; u > 0 {
					e.net.AddEdge(firstSupply+day*w+wi, node, u)
				}
			}
		}
	}
	flow := e.net.MaxFlow(source, sink)
	e.last = FlowResult{Flow: flow, Demand: total}
	return flow == total
}

// StreamingPrune simulates cart days in order and settles each demand as soon
// as no later cart day can precede its deadline, stopping at the first
// failure. demands must be sorted by deadline. It is a necessary condition
// only: demands are checked independently.
func (e *Evaluator) StreamingPrune(gameID uint64, demands []Demand, watched []int) (bool, error) {
	if len(demands) == 0 {
		return true, nil
	}
	if len(watched) == 0 {
		return false, nil
	}
	bound, err := e.bind(demands, watched)
	if err != nil {
		return false, err
	}
	return e.streamingPrune(gameID, bound, watched), nil
}

// StreamingPrunePlan is StreamingPrune for a precompiled plan.
func (e *Evaluator) StreamingPrunePlan(gameID uint64, p *Plan) bool {
	if len(p.Demands) == 0 {
		return true
	}
	if len(p.Watched) == 0 {
		return false
	}
	return e.streamingPrune(gameID, p.Demands, p.Watched)
}

func (e *Evaluator) streamingPrune(gameID uint64, demands []Compiled, watched []int) bool {
	e.totals = resize(e.totals, len(watched))
	clear(e.totals)

	next := 0
	days := cart.ForestDaysYear1[:]
	for di, day := range days {
		if next >= len(demands) {
			return true
		}
		if day > demands[next].Deadline {
			return false
		}
		e.sim.ProcessDay(gameID, day, watched, e.totals, e.composites)

		nextDay := math.MaxInt
		if di+1 < len(days) {
			nextDay = days[di+1]
		}
		for next < len(demands) && demands[next].Deadline < nextDay {
			available := 0
			for _, wi := range demands[next].Options {
				available += e.totals[wi]
			}
			if available < demands[next].Quantity {
				return false
			}
			next++
		}
	}
	return next >= len(demands)
}

// bind maps demand options to watched indexes in reused buffers, dropping
// repeated options. The result is valid until the next call.
func (e *Evaluator) bind(demands []Demand, watched []int) ([]Compiled, error) {
	n := 0
	for _, d := range demands {
		n += len(d.Options)
	}
	if cap(e.boundIdx) < n {
		e.boundIdx = make([]int, 0, n)
	}
	idx := e.boundIdx[:0]
	bound := e.bound[:0]
	for _, d := range demands {
		start := len(idx)
		for _, id := range d.Options {
			wi := slices.Index(watched, id)
			if wi < 0 {
				return nil, fmt.Errorf("%w: item %d", ErrWatchedMissing, id)
			}
			if slices.Contains(idx[start:], wi) {
				continue
			}
			idx = append(idx, wi)
		}
		bound = append(bound, Compiled{Deadline: d.Deadline, Quantity: d.Quantity, Options: idx[start:len(idx):len(idx)]})
	}
	e.boundIdx, e.bound = idx, bound
	return bound, nil
}
