package proba

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// EnergyColumn labels the single column of Energy and SelfEnergy results.
const EnergyColumn = "energy"

// cellwise evaluates fn on every entry of the table.
func (t *Table) cellwise(fn func(params []float64) float64) *Frame {
	rows, cols := t.Shape()
	buf := make([]float64, len(t.params))
	data := make([]float64, 0, rows*cols)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			data = append(data, fn(t.entry(i, j, buf)))
		}
	}
	return &Frame{index: t.index, columns: t.columns, data: data}
}

// align returns the sub-table labeled like x.
func (t *Table) align(x *Frame) (*Table, error) {
	if x.index.Equal(t.index) && x.columns.Equal(t.columns) {
		return t, nil
	}
	d, err := t.AtLabels(x.index.Labels(), x.columns.Labels())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLabelMismatch, err)
	}
	return d, nil
}

// pointwise evaluates fn at the query values of x, entry by entry.
func (t *Table) pointwise(x *Frame, fn func(params []float64, v float64) float64) (*Frame, error) {
	d, err := t.align(x)
	if err != nil {
		return nil, err
	}
	rows, cols := x.Shape()
	buf := make([]float64, len(d.params))
	data := make([]float64, 0, rows*cols)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			data = append(data, fn(d.entry(i, j, buf), x.At(i, j)))
		}
	}
	return &Frame{index: x.index, columns: x.columns, data: data}, nil
}

// Mean returns the expected value of every entry.
func (t *Table) Mean() *Frame {
	return t.cellwise(t.family.Mean)
}

// Var returns the variance of every entry.
func (t *Table) Var() *Frame {
	return t.cellwise(t.family.Variance)
}

// PDF evaluates the probability density at x.
func (t *Table) PDF(x *Frame) (*Frame, error) {
	return t.pointwise(x, t.family.Prob)
}

// LogPDF evaluates the log density at x.
func (t *Table) LogPDF(x *Frame) (*Frame, error) {
	return t.pointwise(x, t.family.LogProb)
}

// CDF evaluates the cumulative distribution function at x.
func (t *Table) CDF(x *Frame) (*Frame, error) {
	return t.pointwise(x, t.family.CDF)
}

// PPF evaluates the quantile function (inverse CDF) at probabilities p.
func (t *Table) PPF(p *Frame) (*Frame, error) {
	if !t.opts.AllowNaNStats {
		rows, cols := p.Shape()
		for i := 0; i < rows; i++ {
			for j := 0; j < cols; j++ {
				if v := p.At(i, j); !(v >= 0 && v <= 1) {
					return nil, fmt.Errorf("%w: got %v at (%v, %v)", ErrInvalidProbability, v, p.index.At(i), p.columns.At(j))
				}
			}
		}
	}
	return t.pointwise(p, t.family.Quantile)
}

// Quantile returns the alpha quantile of every entry.
func (t *Table) Quantile(alpha float64) (*Frame, error) {
	return t.PPF(FullFrame(alpha, t.index, t.columns))
}

// Quantiles returns one frame per alpha, in order.
func (t *Table) Quantiles(alphas []float64) ([]*Frame, error) {
	out := make([]*Frame, len(alphas))
	for k, a := range alphas {
		q, err := t.Quantile(a)
		if err != nil {
			return nil, err
		}
		out[k] = q
	}
	return out, nil
}

// Interval returns the central prediction interval with the given coverage.
func (t *Table) Interval(coverage float64) (lower, upper *Frame, err error) {
	if !(coverage >= 0 && coverage <= 1) {
		return nil, nil, fmt.Errorf("%w: coverage %v", ErrInvalidProbability, coverage)
	}
	if lower, err = t.Quantile((1 - coverage) / 2); err != nil {
		return nil, nil, err
	}
	if upper, err = t.Quantile((1 + coverage) / 2); err != nil {
		return nil, nil, err
	}
	return lower, upper, nil
}

// Energy returns E|X - x| summed across columns, one value per row of x.
func (t *Table) Energy(x *Frame) (*Frame, error) {
	c, err := t.pointwise(x, t.family.Energy)
	if err != nil {
		return nil, err
	}
	return rowSums(c), nil
}

// SelfEnergy returns E|X - X'| summed across columns, one value per row.
func (t *Table) SelfEnergy() *Frame {
	return rowSums(t.cellwise(t.family.SelfEnergy))
}

func rowSums(f *Frame) *Frame {
	rows, _ := f.Shape()
	data := make([]float64, rows)
	for i := range data {
		data[i] = floats.Sum(f.Row(i))
	}
	return &Frame{index: f.index, columns: indexOf([]Label{EnergyColumn}), data: data}
}
