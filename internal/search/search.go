// Package search scans ranges of game ids for seeds whose predicted outcomes
// meet a fixed set of constraints.
//
// Each seed runs through a cascade: tracked bundle items, special-order
// gates, hard cart demands, then scoring. Cheap stages run first and most
// seeds leave early; the survivors are counted, ranked and streamed to an
// optional sink.
package search

import (
	"context"
	"fmt"
	"iter"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"stardew-seedsearch/internal/cart"
	"stardew-seedsearch/internal/catalog"
	"stardew-seedsearch/internal/demand"
	"stardew-seedsearch/internal/logger"
)

// ── Pipeline ────────────────────────────────────────────────────────

// Pipeline holds the read-only state shared by all workers.
type Pipeline struct {
	cfg   Config
	sim   *cart.Simulator
	bonus []*demand.Plan // one per OptionalBonus
}

// New validates cfg and prepares a pipeline over cat.
func New(cat *catalog.Catalog, cfg Config) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.AlwaysHard = slices.Clone(cfg.AlwaysHard)
	demand.SortByDeadline(cfg.AlwaysHard)
	cfg.OptionalBonus = slices.Clone(cfg.OptionalBonus)
	p := &Pipeline{cfg: cfg, sim: cart.NewSimulator(cat), bonus: make([]*demand.Plan, len(cfg.OptionalBonus))}
	for i, b := range cfg.OptionalBonus {
		plan, err := demand.Compile([]demand.Demand{b.Demand})
		if err != nil {
			return nil, fmt.Errorf("bonus %s: %w", b.Label, err)
		}
		p.bonus[i] = plan
	}
	return p, nil
}

// Config returns the configuration the pipeline runs with.
func (p *Pipeline) Config() Config { return p.cfg }

// Result summarizes a scan. Counters cover completed partitions only.
type Result struct {
	Elapsed      time.Duration
	Scanned      int64
	Disqualified int64 // bundle scan failed or ruled the seed out
	GateFailed   int64 // special-order gates
	CartFailed   int64 // hard cart demands
	HardPassed   int64
	Top          []Candidate
	Cancelled    bool
}

func (r Result) SeedsPerSecond() float64 {
	return float64(r.Scanned) / max(1e-9, r.Elapsed.Seconds())
}

func (r *Result) add(c counters) {
	r.Scanned += c.scanned
	r.Disqualified += c.disqualified
	r.GateFailed += c.gateFailed
	r.CartFailed += c.cartFailed
	r.HardPassed += c.hardPassed
}

// span is one partition: either the seeds [lo, hi) or an explicit list.
type span struct {
	lo, hi uint64
	seeds  []uint64
}

type chunkResult struct {
	stats counters
	top   []Candidate
	err   error
}

// ScanRange scans seeds in [start, end).
func (p *Pipeline) ScanRange(ctx context.Context, start, end uint64) (Result, error) {
	if end < start {
		return Result{}, fmt.Errorf("%w: [%d, %d)", ErrInvalidRange, start, end)
	}
	size := uint64(p.cfg.PartitionSize)
	logger.Info("start", start, "end", end, "workers", p.cfg.Workers, "scan range")
	return p.run(ctx, func(yield func(span) bool) {
		for lo := start; lo < end; {
			hi := end
			if end-lo > size {
				hi = lo + size
			}
			if !yield(span{lo: lo, hi: hi}) {
				return
			}
			lo = hi
		}
	})
}

// ScanList scans an explicit list of seeds, for rescoring known hits.
func (p *Pipeline) ScanList(ctx context.Context, seeds []uint64) (Result, error) {
	logger.Info("seeds", len(seeds), "workers", p.cfg.Workers, "scan list")
	return p.run(ctx, func(yield func(span) bool) {
		for lo := 0; lo < len(seeds); lo += p.cfg.PartitionSize {
			hi := min(lo+p.cfg.PartitionSize, len(seeds))
			if !yield(span{seeds: seeds[lo:hi:hi]}) {
				return
			}
		}
	})
}

// run fans partitions out to the workers and merges their results on the
// calling goroutine. Cancellation stops new partitions from starting; those
// already running finish. Result.Cancelled is set only if some partition was
// left unscanned. The first worker error also stops the scan and is
// returned with the counters gathered so far.
func (p *Pipeline) run(ctx context.Context, spans iter.Seq[span]) (Result, error) {
	start := time.Now()
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	// incomplete is set when any span goes unscanned.
	var incomplete atomic.Bool
	spanCh := make(chan span)
	go func() {
		defer close(spanCh)
		for s := range spans {
			select {
			case spanCh <- s:
			case <-runCtx.Done():
				incomplete.Store(true)
				return
			}
		}
	}()

	resultCh := make(chan chunkResult, p.cfg.Workers)
	var wg sync.WaitGroup
	for i := 0; i < p.cfg.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			w := p.newWorker()
			for s := range spanCh {
				if runCtx.Err() != nil {
					incomplete.Store(true)
					continue
				}
				resultCh <- w.flush(w.scan(s))
			}
		}()
	}
	go func() {
		wg.Wait()
		close(resultCh)
	}()

	var res Result
	var firstErr error
	top := NewTopK(p.cfg.TopK)
	chunks := 0
	for r := range resultCh {
		chunks++
		res.add(r.stats)
		top.Merge(r.top)
		if r.err != nil && firstErr == nil {
			firstErr = r.err
			cancel()
		}
		logger.Debug("chunk", chunks, "scanned", res.Scanned, "hardPassed", res.HardPassed, "chunk done")
	}

	res.Elapsed = time.Since(start)
	res.Top = top.Sorted()
	res.Cancelled = incomplete.Load() && ctx.Err() != nil
	if firstErr != nil {
		logger.Error(firstErr, "scanned", res.Scanned, "scan aborted")
		return res, firstErr
	}
	logger.Info("scanned", res.Scanned, "hardPassed", res.HardPassed,
		"cancelled", res.Cancelled, res.Elapsed, "scan done")
	return res, nil
}
