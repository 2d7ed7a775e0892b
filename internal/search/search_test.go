package search

import (
	"cmp"
	"context"
	"errors"
	"math/rand/v2"
	"slices"
	"sync"
	"testing"

	"stardew-seedsearch/internal/cart"
	"stardew-seedsearch/internal/catalog/catalogtest"
	"stardew-seedsearch/internal/demand"
)

type memSink struct {
	mu  sync.Mutex
	got []Candidate
}

func (s *memSink) Record(c Candidate) {
	s.mu.Lock()
	s.got = append(s.got, c)
	s.mu.Unlock()
}

func (s *memSink) seeds() []uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]uint64, len(s.got))
	for i, c := range s.got {
		out[i] = c.Seed
	}
	slices.Sort(out)
	return out
}

// Item 283 appears by day 68 for seeds 2/3, 14/15, 22/23, 1 and 28/29 but not 30/31.
var item283 = demand.Demand{Deadline: 68, Quantity: 1, Options: []int{283}}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.Workers = 4
	cfg.PartitionSize = 7
	cfg.TopK = 5
	cfg.Scanner = func(seed uint64, out []int) (bool, int, bool) {
		switch {
		case seed%7 == 6:
			return false, 0, false
		case seed%5 == 4:
			return true, 0, true
		}
		return true, 0, false
	}
	cfg.TownGate = func(seed uint64, week int) bool { return week == 18 && seed%3 != 2 }
	cfg.QiGate = func(seed uint64, week, start int) bool { return week == 18 && start == 14 }
	cfg.AlwaysHard = []demand.Demand{item283}
	return cfg
}

func newPipeline(t *testing.T, cfg Config) *Pipeline {
	t.Helper()
	p, err := New(catalogtest.Synthetic(), cfg)
	if err != nil {
		t.Fatal(err)
	}
	return p
}

// expected replays the cascade sequentially.
func expected(t *testing.T, cfg Config, seeds []uint64) Result {
	t.Helper()
	eval := demand.NewEvaluator(cart.NewSimulator(catalogtest.Synthetic()))
	watched, _ := demand.Union(make([]int, 0, 64), cfg.AlwaysHard)
	var r Result
	for _, s := range seeds {
		r.Scanned++
		ok, _, disq := cfg.Scanner(s, nil)
		if !ok || disq {
			r.Disqualified++
			continue
		}
		if !cfg.TownGate(s, cfg.TargetWeekTown) || !cfg.QiGate(s, cfg.TargetWeekQi, cfg.StartWeekQi) {
			r.GateFailed++
			continue
		}
		sat, err := eval.Satisfies(s, cfg.AlwaysHard, watched)
		if err != nil {
			t.Fatal(err)
		}
		if !sat {
			r.CartFailed++
			continue
		}
		r.HardPassed++
	}
	return r
}

func seedRange(lo, hi uint64) []uint64 {
	var out []uint64
	for s := lo; s < hi; s++ {
		out = append(out, s)
	}
	return out
}

func TestScanRangeCounters(t *testing.T) {
	cfg := testConfig()
	p := newPipeline(t, cfg)
	got, err := p.ScanRange(context.Background(), 0, 200)
	if err != nil {
		t.Fatal(err)
	}
	want := expected(t, cfg, seedRange(0, 200))
	if got.Scanned != want.Scanned || got.Disqualified != want.Disqualified ||
		got.GateFailed != want.GateFailed || got.CartFailed != want.CartFailed ||
		got.HardPassed != want.HardPassed {
		t.Errorf("counters = %+v\nwant       %+v", got, want)
	}
	if got.Disqualified+got.GateFailed+got.CartFailed+got.HardPassed != got.Scanned {
		t.Errorf("counters do not partition scanned seeds: %+v", got)
	}
	if got.HardPassed == 0 || got.CartFailed == 0 {
		t.Errorf("test range should exercise both cart outcomes: %+v", got)
	}
	if got.Cancelled {
		t.Error("Cancelled set without cancellation")
	}
	if got.SeedsPerSecond() <= 0 {
		t.Error("SeedsPerSecond should be positive")
	}
}

func TestDeterministicAcrossWorkers(t *testing.T) {
	cfg := testConfig()
	cfg.AuxScorer = func(seed uint64) (int, uint8) { return 2 * int(seed), uint8(seed % 4) }
	cfg.OptionalBonus = []Bonus{{Label: "283 early", Demand: demand.Demand{Deadline: 40, Quantity: 1, Options: []int{283}}}}

	var results []Result
	for _, workers := range []int{1, 3, 8} {
		for _, part := range []int{1, 13, 1000} {
			c := cfg
			c.Workers, c.PartitionSize = workers, part
			r, err := newPipeline(t, c).ScanRange(context.Background(), 0, 150)
			if err != nil {
				t.Fatal(err)
			}
			results = append(results, r)
		}
	}
	base := results[0]
	for i, r := range results[1:] {
		if r.Scanned != base.Scanned || r.HardPassed != base.HardPassed || r.CartFailed != base.CartFailed ||
			r.GateFailed != base.GateFailed || r.Disqualified != base.Disqualified {
			t.Errorf("run %d counters differ: %+v vs %+v", i+1, r, base)
		}
		if !slices.Equal(r.Top, base.Top) {
			t.Errorf("run %d top differs:\n%v\n%v", i+1, r.Top, base.Top)
		}
	}
}

func TestEqualScoresDeterministic(t *testing.T) {
	cfg := DefaultConfig()
	cfg.TopK = 3
	cfg.Scanner, cfg.TownGate, cfg.QiGate = NoTrackedItems, TownAlways, QiAlways

	want := []Candidate{{Seed: 0}, {Seed: 1}, {Seed: 2}}
	for _, workers := range []int{1, 8} {
		for _, part := range []int{1, 5, 1000} {
			c := cfg
			c.Workers, c.PartitionSize = workers, part
			r, err := newPipeline(t, c).ScanRange(context.Background(), 0, 200)
			if err != nil {
				t.Fatal(err)
			}
			if !slices.Equal(r.Top, want) {
				t.Errorf("workers=%d partition=%d: top = %v, want %v", workers, part, r.Top, want)
			}
		}
	}
}

func TestSinkThreshold(t *testing.T) {
	cfg := testConfig()
	sink := &memSink{}
	cfg.Sink = sink
	cfg.MinScoreToRecord = 3
	cfg.AuxScorer = func(seed uint64) (int, uint8) { return int(seed % 5), 0 }
	cfg.TopK = 1000

	r, err := newPipeline(t, cfg).ScanRange(context.Background(), 0, 200)
	if err != nil {
		t.Fatal(err)
	}
	var want []uint64
	for _, c := range r.Top {
		if c.Score >= 3 {
			want = append(want, c.Seed)
		}
	}
	slices.Sort(want)
	if int64(len(r.Top)) != r.HardPassed {
		t.Fatalf("top holds %d of %d passing seeds", len(r.Top), r.HardPassed)
	}
	if got := sink.seeds(); !slices.Equal(got, want) {
		t.Errorf("recorded %v, want %v", got, want)
	}
}

func TestOptionalBonusMask(t *testing.T) {
	cfg := testConfig()
	cfg.AlwaysHard = nil
	cfg.Scanner = NoTrackedItems
	cfg.TownGate, cfg.QiGate = TownAlways, QiAlways
	cfg.OptionalBonus = []Bonus{
		{Label: "never", Demand: demand.Demand{Deadline: 4, Quantity: 1, Options: []int{283}}},
		{Label: "283", Demand: item283},
		// Seed 2 sees a single unit; listing the item twice must not double it.
		{Label: "two 283", Demand: demand.Demand{Deadline: 68, Quantity: 2, Options: []int{283, 283}}},
	}
	r, err := newPipeline(t, cfg).ScanList(context.Background(), []uint64{2, 30, 22})
	if err != nil {
		t.Fatal(err)
	}
	want := []Candidate{
		{Seed: 22, Score: 2, BonusMask: 6},
		{Seed: 2, Score: 1, BonusMask: 2},
		{Seed: 30, Score: 0, BonusMask: 0},
	}
	if !slices.Equal(r.Top, want) {
		t.Errorf("Top = %+v, want %+v", r.Top, want)
	}
	if r.HardPassed != 3 {
		t.Errorf("HardPassed = %d", r.HardPassed)
	}
}

func TestTrackedItemsBecomeDemands(t *testing.T) {
	cfg := testConfig()
	cfg.AlwaysHard = nil
	cfg.TownGate, cfg.QiGate = TownAlways, QiAlways
	cfg.Scanner = func(seed uint64, out []int) (bool, int, bool) {
		out[0] = 283
		return true, 1, false
	}
	r, err := newPipeline(t, cfg).ScanList(context.Background(), []uint64{2, 3, 30, 31})
	if err != nil {
		t.Fatal(err)
	}
	if r.HardPassed != 2 || r.CartFailed != 2 {
		t.Errorf("passed %d failed %d, want 2/2", r.HardPassed, r.CartFailed)
	}

	// Seed 2 stocks 283 only on day 54.
	cfg.TrackedItemDeadline = 53
	r, err = newPipeline(t, cfg).ScanList(context.Background(), []uint64{2})
	if err != nil {
		t.Fatal(err)
	}
	if r.HardPassed != 0 {
		t.Errorf("deadline 53: HardPassed = %d", r.HardPassed)
	}
}

func TestBufferTooSmall(t *testing.T) {
	scanner := func(seed uint64, out []int) (bool, int, bool) {
		for i := range out {
			out[i] = 200 + i
		}
		return true, len(out), false
	}
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"hard demands", func(c *Config) { c.TrackedBufferSize, c.HardDemandsBufferSize = 4, 3 }},
		{"watched", func(c *Config) { c.TrackedBufferSize, c.HardDemandsBufferSize, c.WatchedBufferSize = 4, 8, 3 }},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			cfg := testConfig()
			cfg.AlwaysHard = nil
			cfg.Scanner = scanner
			cfg.TownGate, cfg.QiGate = TownAlways, QiAlways
			c.mutate(&cfg)
			r, err := newPipeline(t, cfg).ScanRange(context.Background(), 0, 100)
			if !errors.Is(err, ErrBufferTooSmall) {
				t.Fatalf("err = %v, want ErrBufferTooSmall", err)
			}
			if r.Scanned >= 100 {
				t.Errorf("scan was not aborted: scanned %d", r.Scanned)
			}
		})
	}

	cfg := testConfig()
	cfg.HardDemandsBufferSize = 0
	if _, err := New(catalogtest.Synthetic(), cfg); !errors.Is(err, ErrBufferTooSmall) {
		t.Errorf("always-hard overflow: err = %v", err)
	}
}

func TestCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r, err := newPipeline(t, testConfig()).ScanRange(ctx, 0, 1000)
	if err != nil {
		t.Fatal(err)
	}
	if !r.Cancelled || r.Scanned != 0 {
		t.Errorf("pre-cancelled scan: %+v", r)
	}

	ctx, cancel = context.WithCancel(context.Background())
	defer cancel()
	cfg := testConfig()
	cfg.Workers, cfg.PartitionSize = 1, 10
	cfg.Scanner = func(seed uint64, out []int) (bool, int, bool) {
		if seed == 25 {
			cancel()
		}
		return true, 0, true
	}
	r, err = newPipeline(t, cfg).ScanRange(ctx, 0, 1000)
	if err != nil {
		t.Fatal(err)
	}
	if !r.Cancelled || r.Scanned != 30 {
		t.Errorf("mid-scan cancel: cancelled=%v scanned=%d, want true/30", r.Cancelled, r.Scanned)
	}

	// Cancelling during the last partition leaves nothing unscanned.
	ctx, cancel = context.WithCancel(context.Background())
	defer cancel()
	r, err = newPipeline(t, cfg).ScanRange(ctx, 0, 30)
	if err != nil {
		t.Fatal(err)
	}
	if r.Cancelled || r.Scanned != 30 {
		t.Errorf("cancel in last partition: cancelled=%v scanned=%d, want false/30", r.Cancelled, r.Scanned)
	}
}

func TestInvalidInput(t *testing.T) {
	if _, err := newPipeline(t, testConfig()).ScanRange(context.Background(), 10, 5); !errors.Is(err, ErrInvalidRange) {
		t.Errorf("reversed range: err = %v", err)
	}
	cases := map[string]func(*Config){
		"workers":   func(c *Config) { c.Workers = 0 },
		"partition": func(c *Config) { c.PartitionSize = 0 },
		"topk":      func(c *Config) { c.TopK = 0 },
		"scanner":   func(c *Config) { c.Scanner = nil },
		"gate":      func(c *Config) { c.QiGate = nil },
		"bonuses":   func(c *Config) { c.OptionalBonus = make([]Bonus, 17) },
		"empty":     func(c *Config) { c.AlwaysHard = []demand.Demand{{Deadline: 10, Quantity: 1}} },
	}
	for name, mutate := range cases {
		cfg := testConfig()
		mutate(&cfg)
		if err := cfg.Validate(); !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("%s: err = %v", name, err)
		}
	}
}

func TestTopK(t *testing.T) {
	top := NewTopK(3)
	if _, ok := top.Min(); ok {
		t.Error("empty TopK reported a minimum")
	}
	for i, s := range []int{5, 1, 9, 3, 1, 7} {
		top.Add(Candidate{Seed: uint64(i), Score: s})
	}
	got := top.Sorted()
	want := []Candidate{{Seed: 2, Score: 9}, {Seed: 5, Score: 7}, {Seed: 0, Score: 5}}
	if !slices.Equal(got, want) {
		t.Errorf("Sorted = %v, want %v", got, want)
	}
	if m, _ := top.Min(); m != 5 {
		t.Errorf("Min = %d", m)
	}

	// Equal to the minimum is rejected.
	top.Add(Candidate{Seed: 99, Score: 5})
	if slices.ContainsFunc(top.Sorted(), func(c Candidate) bool { return c.Seed == 99 }) {
		t.Error("candidate equal to the minimum was kept")
	}

	ties := NewTopK(4)
	for _, seed := range []uint64{8, 3, 5} {
		ties.Add(Candidate{Seed: seed, Score: 2})
	}
	if s := ties.Sorted(); s[0].Seed != 3 || s[1].Seed != 5 || s[2].Seed != 8 {
		t.Errorf("ties not ordered by seed: %v", s)
	}
}

func TestTopKMerge(t *testing.T) {
	r := rand.New(rand.NewPCG(7, 9))
	const k = 10
	for round := 0; round < 100; round++ {
		n := r.IntN(200)
		// Few distinct scores, so most of the top set ties.
		all := make([]Candidate, n)
		for i := range all {
			all[i] = Candidate{Seed: uint64(r.IntN(1 << 20)), Score: r.IntN(4)}
		}
		slices.SortFunc(all, func(a, b Candidate) int { return cmp.Compare(a.Seed, b.Seed) })
		all = slices.CompactFunc(all, func(a, b Candidate) bool { return a.Seed == b.Seed })
		r.Shuffle(len(all), func(i, j int) { all[i], all[j] = all[j], all[i] })

		parts := make([]*TopK, 1+r.IntN(6))
		for i := range parts {
			parts[i] = NewTopK(k)
		}
		for _, c := range all {
			parts[r.IntN(len(parts))].Add(c)
		}
		merged := NewTopK(k)
		for _, i := range r.Perm(len(parts)) {
			merged.Merge(parts[i].Sorted())
		}

		want := NewTopK(len(all) + 1)
		want.Merge(all)
		full := want.Sorted()
		if got, want := merged.Sorted(), full[:min(k, len(full))]; !slices.Equal(got, want) {
			t.Fatalf("round %d: merged %v, want %v", round, got, want)
		}
	}
}

func TestTopKTiesIndependentOfOrder(t *testing.T) {
	r := rand.New(rand.NewPCG(3, 4))
	seeds := []uint64{40, 7, 19, 3, 88, 12, 5}
	for round := 0; round < 20; round++ {
		r.Shuffle(len(seeds), func(i, j int) { seeds[i], seeds[j] = seeds[j], seeds[i] })
		top := NewTopK(3)
		for _, s := range seeds {
			top.Add(Candidate{Seed: s, Score: 1})
		}
		want := []Candidate{{Seed: 3, Score: 1}, {Seed: 5, Score: 1}, {Seed: 7, Score: 1}}
		if got := top.Sorted(); !slices.Equal(got, want) {
			t.Fatalf("order %v: top = %v, want %v", seeds, got, want)
		}
	}
}

func TestFormatMask(t *testing.T) {
	labels := []string{"Coffee Bean", "Vincent Birthday", "Jas Birthday"}
	cases := []struct {
		mask uint64
		want string
	}{
		{0, "-"},
		{1, "Coffee Bean"},
		{5, "Coffee Bean, Jas Birthday"},
		{1 << 4, "bit4"},
	}
	for _, c := range cases {
		if got := FormatMask(c.mask, labels); got != c.want {
			t.Errorf("FormatMask(%b) = %q, want %q", c.mask, got, c.want)
		}
	}
	if got := FormatMask(0b1010, WeatherLabels); got != "lateSpringRain, summerRain>=5" {
		t.Errorf("weather = %q", got)
	}
}
