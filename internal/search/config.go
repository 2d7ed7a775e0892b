package search

import (
	"errors"
	"fmt"
	"math"
	"runtime"

	"stardew-seedsearch/internal/demand"
)

var (
	ErrInvalidConfig  = errors.New("invalid search config")
	ErrBufferTooSmall = errors.New("buffer too small")
	ErrInvalidRange   = errors.New("end seed before start seed")
)

// maxBonuses is the width of Candidate.BonusMask.
const maxBonuses = 16

// ScanFunc reports the items a seed's remixed bundles track. It writes up to
// len(out) ids into out and returns how many it wrote. ok=false means the
// scan could not complete (for instance out was too small); disqualified
// means the seed's bundles rule it out.
type ScanFunc func(seed uint64, out []int) (ok bool, found int, disqualified bool)

// TownGateFunc reports whether town special orders can be completed by targetWeek.
type TownGateFunc func(seed uint64, targetWeek int) bool

// QiGateFunc reports whether Qi's special orders can be completed by
// targetWeek when they open at startWeek.
type QiGateFunc func(seed uint64, targetWeek, startWeek int) bool

// AuxScoreFunc contributes an extra score (weather, in practice) and a
// bitmask describing which conditions held.
type AuxScoreFunc func(seed uint64) (score int, mask uint8)

// Sink receives every candidate whose score reaches MinScoreToRecord. Record
// is called concurrently from all workers and must not block.
type Sink interface {
	Record(Candidate)
}

// Bonus is an optional cart demand worth one point when a seed meets it.
type Bonus struct {
	Label  string
	Demand demand.Demand
}

// Config is fixed for the duration of a scan.
type Config struct {
	// Workers is the number of scanning goroutines.
	Workers int
	// PartitionSize is the number of consecutive seeds handed to a worker at
	// once. Counters and top-K are merged, and cancellation is checked, per
	// partition.
	PartitionSize int
	// TopK is how many best candidates the result keeps.
	TopK int
	// MinScoreToRecord is the lowest score passed to Sink.
	MinScoreToRecord int

	// TargetWeekTown is the week index by which town orders must be done.
	TargetWeekTown int
	// TargetWeekQi is the week index by which Qi orders must be done.
	TargetWeekQi int
	// StartWeekQi is the week index Qi orders become available.
	StartWeekQi int

	// TrackedItemDeadline is the days-played deadline for every tracked
	// bundle item; each becomes a one-unit hard demand.
	TrackedItemDeadline int

	// TrackedBufferSize bounds how many tracked items a scan may report.
	TrackedBufferSize int
	// HardDemandsBufferSize bounds AlwaysHard plus tracked-item demands.
	HardDemandsBufferSize int
	// WatchedBufferSize bounds the distinct item ids across hard demands.
	WatchedBufferSize int

	// AlwaysHard demands apply to every seed.
	AlwaysHard []demand.Demand
	// OptionalBonus demands each add a point and set their bit in the
	// candidate's BonusMask. Order fixes bit positions.
	OptionalBonus []Bonus

	Scanner   ScanFunc
	TownGate  TownGateFunc
	QiGate    QiGateFunc
	AuxScorer AuxScoreFunc // optional
	Sink      Sink         // optional
}

// DefaultConfig returns the stock tuning without any demands or collaborators.
func DefaultConfig() Config {
	return Config{
		Workers:               runtime.GOMAXPROCS(0),
		PartitionSize:         200_000,
		TopK:                  200,
		MinScoreToRecord:      math.MaxInt,
		TargetWeekTown:        18,
		TargetWeekQi:          18,
		StartWeekQi:           14,
		TrackedItemDeadline:   68,
		TrackedBufferSize:     64,
		HardDemandsBufferSize: 128,
		WatchedBufferSize:     256,
	}
}

// Validate checks sizes and required collaborators.
func (c *Config) Validate() error {
	switch {
	case c.Workers < 1:
		return fmt.Errorf("%w: Workers must be positive", ErrInvalidConfig)
	case c.PartitionSize < 1:
		return fmt.Errorf("%w: PartitionSize must be positive", ErrInvalidConfig)
	case c.TopK < 1:
		return fmt.Errorf("%w: TopK must be positive", ErrInvalidConfig)
	case c.TrackedBufferSize < 0 || c.HardDemandsBufferSize < 0 || c.WatchedBufferSize < 0:
		return fmt.Errorf("%w: buffer sizes must not be negative", ErrInvalidConfig)
	case len(c.OptionalBonus) > maxBonuses:
		return fmt.Errorf("%w: at most %d optional bonuses", ErrInvalidConfig, maxBonuses)
	case c.Scanner == nil:
		return fmt.Errorf("%w: Scanner is required", ErrInvalidConfig)
	case c.TownGate == nil || c.QiGate == nil:
		return fmt.Errorf("%w: TownGate and QiGate are required", ErrInvalidConfig)
	}
	if len(c.AlwaysHard) > c.HardDemandsBufferSize {
		return fmt.Errorf("%w: %d always-hard demands exceed hard demand buffer of %d",
			ErrBufferTooSmall, len(c.AlwaysHard), c.HardDemandsBufferSize)
	}
	for i, d := range c.AlwaysHard {
		if d.Quantity < 1 || len(d.Options) == 0 {
			return fmt.Errorf("%w: always-hard demand %d needs a quantity and options", ErrInvalidConfig, i)
		}
	}
	for i, b := range c.OptionalBonus {
		if b.Demand.Quantity < 1 || len(b.Demand.Options) == 0 {
			return fmt.Errorf("%w: bonus %d (%s) needs a quantity and options", ErrInvalidConfig, i, b.Label)
		}
	}
	return nil
}

// NoTrackedItems is a Scanner for runs without a bundle predictor: every seed
// passes and tracks nothing.
func NoTrackedItems(uint64, []int) (bool, int, bool) { return true, 0, false }

// TownAlways is a TownGate that passes every seed.
func TownAlways(uint64, int) bool { return true }

// QiAlways is a QiGate that passes every seed.
func QiAlways(uint64, int, int) bool { return true }

// BonusLabels returns the labels of c.OptionalBonus in bit order.
func (c *Config) BonusLabels() []string {
	labels := make([]string, len(c.OptionalBonus))
	for i, b := range c.OptionalBonus {
		labels[i] = b.Label
	}
	return labels
}
