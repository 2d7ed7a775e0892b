package search

import (
	"fmt"

	"stardew-seedsearch/internal/demand"
)

type counters struct {
	scanned      int64
	disqualified int64
	gateFailed   int64
	cartFailed   int64
	hardPassed   int64
}

// worker is the private per-goroutine state of a scan. Nothing in it is
// shared, so the per-seed path takes no locks and, once warm, allocates
// nothing.
type worker struct {
	cfg  *Config
	eval *demand.Evaluator

	tracked []int
	demands []demand.Demand
	watched []int
	bonus   []*demand.Plan

	top   *TopK
	stats counters
}

func (p *Pipeline) newWorker() *worker {
	return &worker{
		cfg:     &p.cfg,
		eval:    demand.NewEvaluator(p.sim),
		tracked: make([]int, p.cfg.TrackedBufferSize),
		demands: make([]demand.Demand, 0, p.cfg.HardDemandsBufferSize),
		watched: make([]int, 0, p.cfg.WatchedBufferSize),
		bonus:   p.bonus,
		top:     NewTopK(p.cfg.TopK),
	}
}

// scan processes every seed of s, stopping at the first error.
func (w *worker) scan(s span) error {
	if s.seeds != nil {
		for _, seed := range s.seeds {
			if err := w.process(seed); err != nil {
				return err
			}
		}
		return nil
	}
	for seed := s.lo; seed < s.hi; seed++ {
		if err := w.process(seed); err != nil {
			return err
		}
	}
	return nil
}

// flush hands the chunk's counters and top-K to the collector and resets
// them for the next chunk.
func (w *worker) flush(err error) chunkResult {
	r := chunkResult{stats: w.stats, top: w.top.Sorted(), err: err}
	w.stats = counters{}
	w.top.Reset()
	return r
}

func (w *worker) process(seed uint64) error {
	cfg := w.cfg
	w.stats.scanned++

	ok, found, disqualified := cfg.Scanner(seed, w.tracked)
	if !ok || disqualified {
		w.stats.disqualified++
		return nil
	}
	if found > len(w.tracked) {
		return fmt.Errorf("%w: scanner reported %d tracked items for seed %d, buffer holds %d",
			ErrBufferTooSmall, found, seed, len(w.tracked))
	}

	if !cfg.TownGate(seed, cfg.TargetWeekTown) || !cfg.QiGate(seed, cfg.TargetWeekQi, cfg.StartWeekQi) {
		w.stats.gateFailed++
		return nil
	}

	if err := w.assemble(seed, found); err != nil {
		return err
	}
	if len(w.demands) != 0 {
		if len(w.watched) == 0 {
			w.stats.cartFailed++
			return nil
		}
		ok, err := w.eval.Satisfies(seed, w.demands, w.watched)
		if err != nil {
			return fmt.Errorf("seed %d: %w", seed, err)
		}
		if !ok {
			w.stats.cartFailed++
			return nil
		}
	}
	w.stats.hardPassed++

	c := Candidate{Seed: seed}
	if cfg.AuxScorer != nil {
		c.Score, c.AuxMask = cfg.AuxScorer(seed)
	}
	bonus, mask := w.scoreBonus(seed)
	c.Score += bonus
	c.BonusMask = mask

	if cfg.Sink != nil && c.Score >= cfg.MinScoreToRecord {
		cfg.Sink.Record(c)
	}
	w.top.Add(c)
	return nil
}

// assemble builds this seed's hard demands (always-hard plus one unit of each
// tracked item) and their watched-id union in the worker's fixed buffers.
func (w *worker) assemble(seed uint64, found int) error {
	d := append(w.demands[:0], w.cfg.AlwaysHard...)
	for i := 0; i < found; i++ {
		if len(d) == cap(d) {
			return fmt.Errorf("%w: seed %d needs more than %d hard demands", ErrBufferTooSmall, seed, cap(d))
		}
		d = append(d, demand.Demand{
			Deadline: w.cfg.TrackedItemDeadline,
			Quantity: 1,
			Options:  w.tracked[i : i+1 : i+1],
		})
	}
	w.demands = d

	watched, ok := demand.Union(w.watched, d)
	if !ok {
		return fmt.Errorf("%w: seed %d watches more than %d items", ErrBufferTooSmall, seed, cap(w.watched))
	}
	w.watched = watched
	return nil
}

// scoreBonus awards a point per optional demand the seed's carts can meet.
// Each bonus stands alone, so the streaming prune answers it exactly.
func (w *worker) scoreBonus(seed uint64) (int, uint16) {
	score, mask := 0, uint16(0)
	for i, plan := range w.bonus {
		if w.eval.StreamingPrunePlan(seed, plan) {
			score++
			mask |= 1 << i
		}
	}
	return score, mask
}
