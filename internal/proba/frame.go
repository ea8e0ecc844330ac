package proba

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Frame is a labeled grid of float64 values. It carries query points into
// per-entry functions and their results back out.
type Frame struct {
	index   *Index
	columns *Index
	data    []float64 // row-major, len == rows*cols
}

// NewFrame builds a frame from rows of values. A nil index or columns
// defaults to a RangeIndex of matching length.
func NewFrame(values [][]float64, index, columns *Index) (*Frame, error) {
	rows := len(values)
	cols := 0
	if rows > 0 {
		cols = len(values[0])
	} else if columns != nil {
		cols = columns.Len()
	}
	data := make([]float64, 0, rows*cols)
	for i, row := range values {
		if len(row) != cols {
			return nil, fmt.Errorf("%w: row %d has %d values, want %d", ErrShape, i, len(row), cols)
		}
		data = append(data, row...)
	}
	return newFrame(data, rows, cols, index, columns)
}

// FrameFromMatrix copies a gonum matrix into a labeled frame.
func FrameFromMatrix(m mat.Matrix, index, columns *Index) (*Frame, error) {
	r, c := m.Dims()
	data := make([]float64, 0, r*c)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			data = append(data, m.At(i, j))
		}
	}
	return newFrame(data, r, c, index, columns)
}

// FullFrame returns a frame with every entry set to v.
func FullFrame(v float64, index, columns *Index) *Frame {
	data := make([]float64, index.Len()*columns.Len())
	for i := range data {
		data[i] = v
	}
	return &Frame{index: index, columns: columns, data: data}
}

func newFrame(data []float64, rows, cols int, index, columns *Index) (*Frame, error) {
	if index == nil {
		index = RangeIndex(rows)
	}
	if columns == nil {
		columns = RangeIndex(cols)
	}
	if index.Len() != rows || columns.Len() != cols {
		return nil, fmt.Errorf("%w: values are (%d, %d) but labels are (%d, %d)",
			ErrShape, rows, cols, index.Len(), columns.Len())
	}
	return &Frame{index: index, columns: columns, data: data}, nil
}

// Index returns the row labels.
func (f *Frame) Index() *Index { return f.index }

// Columns returns the column labels.
func (f *Frame) Columns() *Index { return f.columns }

// Shape returns (rows, cols).
func (f *Frame) Shape() (int, int) {
	return f.index.Len(), f.columns.Len()
}

// At returns the value at row i, column j.
func (f *Frame) At(i, j int) float64 {
	return f.data[i*f.columns.Len()+j]
}

// Get returns the value addressed by labels.
func (f *Frame) Get(row, col Label) (float64, error) {
	i, err := f.index.Position(row)
	if err != nil {
		return 0, err
	}
	j, err := f.columns.Position(col)
	if err != nil {
		return 0, err
	}
	return f.At(i, j), nil
}

// Row returns a copy of row i.
func (f *Frame) Row(i int) []float64 {
	c := f.columns.Len()
	out := make([]float64, c)
	copy(out, f.data[i*c:(i+1)*c])
	return out
}

// Col returns a copy of column j.
func (f *Frame) Col(j int) []float64 {
	r, c := f.Shape()
	out := make([]float64, r)
	for i := 0; i < r; i++ {
		out[i] = f.data[i*c+j]
	}
	return out
}

// Values returns a copy of the frame as rows.
func (f *Frame) Values() [][]float64 {
	r, _ := f.Shape()
	out := make([][]float64, r)
	for i := range out {
		out[i] = f.Row(i)
	}
	return out
}

// Dense converts the frame to a gonum matrix. Gonum does not represent empty
// matrices, so a frame with a zero-length axis returns an error.
func (f *Frame) Dense() (*mat.Dense, error) {
	r, c := f.Shape()
	if r == 0 || c == 0 {
		return nil, errors.New("cannot convert empty frame to matrix")
	}
	data := make([]float64, len(f.data))
	copy(data, f.data)
	return mat.NewDense(r, c, data), nil
}

// Apply returns a new frame with fn applied to every value.
func (f *Frame) Apply(fn func(float64) float64) *Frame {
	data := make([]float64, len(f.data))
	for i, v := range f.data {
		data[i] = fn(v)
	}
	return &Frame{index: f.index, columns: f.columns, data: data}
}

// Equal reports whether both frames carry the same labels and values.
func (f *Frame) Equal(other *Frame) bool {
	if f == other {
		return true
	}
	if f == nil || other == nil {
		return false
	}
	if !f.index.Equal(other.index) || !f.columns.Equal(other.columns) {
		return false
	}
	for i := range f.data {
		if f.data[i] != other.data[i] {
			return false
		}
	}
	return true
}
