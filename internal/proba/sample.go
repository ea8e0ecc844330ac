package proba

import (
	"fmt"
	"math/rand/v2"
)

// SampleKey labels a row of stacked draws: the draw number and the original
// row label.
type SampleKey struct {
	Draw int
	Row  Label
}

// SampleSet holds independent draws, each shaped like the sampled table.
type SampleSet struct {
	index   *Index
	columns *Index
	draws   []*Frame
}

// Len returns the number of draws.
func (s *SampleSet) Len() int { return len(s.draws) }

// Draw returns draw i.
func (s *SampleSet) Draw(i int) *Frame { return s.draws[i] }

// Draws returns all draws in order.
func (s *SampleSet) Draws() []*Frame {
	return append([]*Frame(nil), s.draws...)
}

// Stack concatenates the draws into one frame whose row labels are
// SampleKey{Draw, Row}, keeping the table's columns.
func (s *SampleSet) Stack() *Frame {
	rows, cols := s.index.Len(), s.columns.Len()
	labels := make([]Label, 0, len(s.draws)*rows)
	data := make([]float64, 0, len(s.draws)*rows*cols)
	for k, d := range s.draws {
		for i := 0; i < rows; i++ {
			labels = append(labels, SampleKey{Draw: k, Row: s.index.At(i)})
		}
		data = append(data, d.data...)
	}
	return &Frame{index: indexOf(labels), columns: s.columns, data: data}
}

// uniform returns a frame of U(0, 1) draws shaped like the table.
func (t *Table) uniform(r *rand.Rand) *Frame {
	rows, cols := t.Shape()
	data := make([]float64, rows*cols)
	for i := range data {
		if r != nil {
			data[i] = r.Float64()
		} else {
			data[i] = rand.Float64()
		}
	}
	return &Frame{index: t.index, columns: t.columns, data: data}
}

func (t *Table) rng() *rand.Rand {
	if t.opts.Source == nil {
		return nil
	}
	return rand.New(t.opts.Source)
}

// Sample draws once from every entry by inverse transform sampling. The
// result is labeled like the table. Tables sharing a Source must not be
// sampled concurrently.
func (t *Table) Sample() (*Frame, error) {
	return t.sampleWith(t.rng())
}

// SampleN returns n independent draws, each shaped like the table.
func (t *Table) SampleN(n int) (*SampleSet, error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrSampleCount, n)
	}
	r := t.rng()
	set := &SampleSet{index: t.index, columns: t.columns, draws: make([]*Frame, n)}
	for k := range set.draws {
		d, err := t.sampleWith(r)
		if err != nil {
			return nil, err
		}
		set.draws[k] = d
	}
	return set, nil
}

func (t *Table) sampleWith(r *rand.Rand) (*Frame, error) {
	return t.pointwise(t.uniform(r), t.family.Quantile)
}
