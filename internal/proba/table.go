package proba

import (
	"fmt"
	"math/rand/v2"
	"strings"
)

// Options configure a Table. Index and Columns label the axes; every other
// field is configuration that is forwarded unchanged to sub-tables and never
// subset.
type Options struct {
	Index   *Index // row labels, RangeIndex(n_rows) when nil
	Columns *Index // column labels, RangeIndex(n_cols) when nil

	Name          string
	ValidateArgs  bool        // check parameter domains at construction
	AllowNaNStats bool        // return NaN instead of an error for undefined queries
	Source        rand.Source // random source for sampling, the global source when nil
}

// Table is an immutable two-dimensional grid of independent distributions of
// one family. Sub-selection returns a new Table and never mutates the receiver.
type Table struct {
	family  Family
	params  []Param // ordered as family.ParamNames()
	index   *Index
	columns *Index
	opts    Options
}

// New broadcasts the named parameters of family to a common shape and labels
// the result.
func New(family Family, values map[string]any, opts Options) (*Table, error) {
	names := family.ParamNames()
	declared := make(map[string]bool, len(names))
	for _, n := range names {
		declared[n] = true
	}
	for n := range values {
		if !declared[n] {
			return nil, fmt.Errorf("%w: %q for %s", ErrUnknownParameter, n, family.Name())
		}
	}

	rows, cols, params, err := broadcastParams(names, values)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", family.Name(), err)
	}

	index, columns := opts.Index, opts.Columns
	if index == nil {
		index = RangeIndex(rows)
	}
	if columns == nil {
		columns = RangeIndex(cols)
	}
	if index.Len() != rows || columns.Len() != cols {
		if !stretches(rows, index.Len()) || !stretches(cols, columns.Len()) {
			return nil, fmt.Errorf("%s: %w: parameters are (%d, %d) but labels are (%d, %d)",
				family.Name(), ErrShape, rows, cols, index.Len(), columns.Len())
		}
		for k := range params {
			params[k] = params[k].widen(rows, cols, index.Len(), columns.Len())
		}
	}

	t := &Table{
		family:  family,
		params:  params,
		index:   index,
		columns: columns,
		opts:    opts,
	}
	t.opts.Index, t.opts.Columns = nil, nil

	if opts.ValidateArgs {
		if err := t.validate(); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// NewNormal returns a table of Normal distributions.
func NewNormal(mu, sigma any, opts ...Options) (*Table, error) {
	return New(NormalFamily{}, map[string]any{"mu": mu, "sigma": sigma}, firstOptions(opts))
}

// NewLaplace returns a table of Laplace distributions.
func NewLaplace(mu, scale any, opts ...Options) (*Table, error) {
	return New(LaplaceFamily{}, map[string]any{"mu": mu, "scale": scale}, firstOptions(opts))
}

// stretches reports whether an axis of length n broadcasts to length m.
func stretches(n, m int) bool {
	return n == m || n == 1
}

func firstOptions(opts []Options) Options {
	if len(opts) == 0 {
		return Options{}
	}
	return opts[0]
}

func (t *Table) validate() error {
	rows, cols := t.Shape()
	buf := make([]float64, len(t.params))
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			if err := t.family.Validate(t.entry(i, j, buf)); err != nil {
				return fmt.Errorf("%s entry (%v, %v): %w", t.family.Name(), t.index.At(i), t.columns.At(j), err)
			}
		}
	}
	return nil
}

// entry fills buf with the parameters of cell (i, j).
func (t *Table) entry(i, j int, buf []float64) []float64 {
	for k, p := range t.params {
		buf[k] = p.at(i, j)
	}
	return buf
}

// Family returns the distribution family.
func (t *Table) Family() Family { return t.family }

// Index returns the row labels.
func (t *Table) Index() *Index { return t.index }

// Columns returns the column labels.
func (t *Table) Columns() *Index { return t.columns }

// Options returns the configuration, with Index and Columns set to the
// current labels.
func (t *Table) Options() Options {
	o := t.opts
	o.Index, o.Columns = t.index, t.columns
	return o
}

// Shape returns (len(index), len(columns)).
func (t *Table) Shape() (int, int) {
	return t.index.Len(), t.columns.Len()
}

// Params returns a copy of the parameter set in family order.
func (t *Table) Params() []Param {
	out := make([]Param, len(t.params))
	for k, p := range t.params {
		out[k] = p.take(nil, nil)
	}
	return out
}

// Param returns a copy of the named parameter.
func (t *Table) Param(name string) (Param, error) {
	for _, p := range t.params {
		if p.Name == name {
			return p.take(nil, nil), nil
		}
	}
	return Param{}, fmt.Errorf("%w: %q for %s", ErrUnknownParameter, name, t.family.Name())
}

// AtPositions selects rows and columns by zero-based position. A nil slice
// keeps the whole axis in order; an empty slice selects nothing. Positions may
// repeat and appear in any order.
func (t *Table) AtPositions(rows, cols []int) (*Table, error) {
	var err error
	if rows != nil {
		if rows, err = resolvePositions(rows, t.index.Len()); err != nil {
			return nil, fmt.Errorf("rows: %w", err)
		}
	}
	if cols != nil {
		if cols, err = resolvePositions(cols, t.columns.Len()); err != nil {
			return nil, fmt.Errorf("columns: %w", err)
		}
	}

	params := make([]Param, len(t.params))
	for k, p := range t.params {
		params[k] = p.take(rows, cols)
	}

	index, columns := t.index, t.columns
	if rows != nil {
		index, _ = t.index.Take(rows)
	}
	if cols != nil {
		columns, _ = t.columns.Take(cols)
	}

	return &Table{
		family:  t.family,
		params:  params,
		index:   index,
		columns: columns,
		opts:    t.opts,
	}, nil
}

// AtLabels selects rows and columns by label. A nil slice keeps the whole
// axis. When both are nil the receiver itself is returned.
func (t *Table) AtLabels(rows, cols []Label) (*Table, error) {
	if rows == nil && cols == nil {
		return t, nil
	}
	var rowPos, colPos []int
	var err error
	if rows != nil {
		if rowPos, err = t.index.Positions(rows); err != nil {
			return nil, fmt.Errorf("rows: %w", err)
		}
	}
	if cols != nil {
		if colPos, err = t.columns.Positions(cols); err != nil {
			return nil, fmt.Errorf("columns: %w", err)
		}
	}
	return t.AtPositions(rowPos, colPos)
}

// Loc returns the label-based accessor.
func (t *Table) Loc() View {
	return View{table: t, byLabel: true}
}

// ILoc returns the position-based accessor.
func (t *Table) ILoc() View {
	return View{table: t}
}

// Equal reports whether both tables have the same family, labels and
// parameter values.
func (t *Table) Equal(other *Table) bool {
	if t == other {
		return true
	}
	if t == nil || other == nil {
		return false
	}
	if t.family.Name() != other.family.Name() ||
		!t.index.Equal(other.index) || !t.columns.Equal(other.columns) {
		return false
	}
	rows, cols := t.Shape()
	a := make([]float64, len(t.params))
	b := make([]float64, len(other.params))
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			t.entry(i, j, a)
			other.entry(i, j, b)
			for k := range a {
				if a[k] != b[k] {
					return false
				}
			}
		}
	}
	return true
}

func (t *Table) String() string {
	rows, cols := t.Shape()
	var b strings.Builder
	fmt.Fprintf(&b, "%s(shape=(%d, %d)", t.family.Name(), rows, cols)
	if t.opts.Name != "" {
		fmt.Fprintf(&b, ", name=%q", t.opts.Name)
	}
	b.WriteString(")")
	return b.String()
}
