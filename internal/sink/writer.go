package sink

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"stardew-seedsearch/internal/search"
)

// Writer persists formatted candidate lines.
type Writer interface {
	WriteLine(line string) error
	Close() error
}

// Formatter renders a candidate as one tab-separated record line.
type Formatter struct {
	AuxLabels   []string
	BonusLabels []string
}

// Line returns "seed\tScore=N\tAux=[...]\tCart=[...]".
func (f Formatter) Line(c search.Candidate) string {
	var b strings.Builder
	b.WriteString(strconv.FormatUint(c.Seed, 10))
	b.WriteString("\tScore=")
	b.WriteString(strconv.Itoa(c.Score))
	b.WriteString("\tAux=[")
	b.WriteString(search.FormatMask(uint64(c.AuxMask), f.AuxLabels))
	b.WriteString("]\tCart=[")
	b.WriteString(search.FormatMask(uint64(c.BonusMask), f.BonusLabels))
	b.WriteString("]")
	return b.String()
}

// Multi fans each line out to every writer.
type Multi []Writer

func (m Multi) WriteLine(line string) error {
	for _, w := range m {
		if err := w.WriteLine(line); err != nil {
			return err
		}
	}
	return nil
}

// Close closes every writer and joins their errors.
func (m Multi) Close() error {
	var errs []error
	for _, w := range m {
		if err := w.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Pump drains q into w, formatting each candidate with f, until q is closed
// and empty.
func Pump(ctx context.Context, q *Queue, w Writer, f Formatter) error {
	return q.Drain(ctx, func(c search.Candidate) error {
		return w.WriteLine(f.Line(c))
	})
}
