package proba

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Role describes along which axes a parameter varies.
type Role int

const (
	// RoleRow parameters have shape (n_rows,) and are constant across columns.
	RoleRow Role = iota + 1
	// RoleCell parameters have shape (n_rows, n_cols).
	RoleCell
)

func (r Role) String() string {
	switch r {
	case RoleRow:
		return "row"
	case RoleCell:
		return "cell"
	default:
		return "unknown"
	}
}

// Param is one broadcast family parameter.
type Param struct {
	Name   string
	Role   Role
	Values []float64 // RoleRow: n_rows values; RoleCell: row-major n_rows*n_cols values

	rows, cols int
}

// Shape returns (n_rows,) as (n, 0) for row parameters and (n_rows, n_cols) for cell parameters.
func (p Param) Shape() (int, int) {
	if p.Role == RoleRow {
		return len(p.Values), 0
	}
	return p.rows, p.cols
}

// Grid returns the parameter as rows. Row parameters come back as a single
// column per row.
func (p Param) Grid() [][]float64 {
	if p.Role == RoleRow {
		out := make([][]float64, len(p.Values))
		for i, v := range p.Values {
			out[i] = []float64{v}
		}
		return out
	}
	rows, cols := p.Shape()
	out := make([][]float64, rows)
	for i := range out {
		out[i] = make([]float64, cols)
		copy(out[i], p.Values[i*cols:(i+1)*cols])
	}
	return out
}

func (p Param) at(i, j int) float64 {
	if p.Role == RoleRow {
		return p.Values[i]
	}
	return p.Values[i*p.cols+j]
}

// take subsets the parameter. Row parameters ignore column positions.
func (p Param) take(rows, cols []int) Param {
	if p.Role == RoleRow {
		out := Param{Name: p.Name, Role: RoleRow}
		if rows == nil {
			out.Values = append([]float64(nil), p.Values...)
			return out
		}
		out.Values = make([]float64, len(rows))
		for k, i := range rows {
			out.Values[k] = p.Values[i]
		}
		return out
	}

	rowSel := rows
	if rowSel == nil {
		rowSel = identity(p.rows)
	}
	colSel := cols
	if colSel == nil {
		colSel = identity(p.cols)
	}
	out := Param{Name: p.Name, Role: RoleCell, rows: len(rowSel), cols: len(colSel)}
	out.Values = make([]float64, 0, len(rowSel)*len(colSel))
	for _, i := range rowSel {
		for _, j := range colSel {
			out.Values = append(out.Values, p.Values[i*p.cols+j])
		}
	}
	return out
}

// widen stretches a parameter broadcast to (rows, cols) onto (newRows, newCols).
// Only axes of length 1 are stretched. A row parameter keeps its role while
// the row count is unchanged.
func (p Param) widen(rows, cols, newRows, newCols int) Param {
	if p.Role == RoleRow && rows == newRows {
		return p
	}
	out := Param{Name: p.Name, Role: RoleCell, rows: newRows, cols: newCols, Values: make([]float64, newRows*newCols)}
	for i := 0; i < newRows; i++ {
		si := i
		if rows == 1 {
			si = 0
		}
		for j := 0; j < newCols; j++ {
			sj := j
			if cols == 1 {
				sj = 0
			}
			if p.Role == RoleRow {
				out.Values[i*newCols+j] = p.Values[si]
			} else {
				out.Values[i*newCols+j] = p.Values[si*p.cols+sj]
			}
		}
	}
	return out
}

func identity(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

// array is a parsed constructor argument before broadcasting.
type array struct {
	ndim       int
	rows, cols int
	data       []float64
}

func toArray(name string, v any) (array, error) {
	switch x := v.(type) {
	case float64:
		return array{ndim: 0, rows: 1, cols: 1, data: []float64{x}}, nil
	case float32:
		return array{ndim: 0, rows: 1, cols: 1, data: []float64{float64(x)}}, nil
	case int:
		return array{ndim: 0, rows: 1, cols: 1, data: []float64{float64(x)}}, nil
	case []float64:
		return array{ndim: 1, rows: len(x), cols: 1, data: append([]float64(nil), x...)}, nil
	case []int:
		data := make([]float64, len(x))
		for i, n := range x {
			data[i] = float64(n)
		}
		return array{ndim: 1, rows: len(x), cols: 1, data: data}, nil
	case [][]float64:
		a := array{ndim: 2, rows: len(x)}
		if len(x) > 0 {
			a.cols = len(x[0])
		}
		for i, row := range x {
			if len(row) != a.cols {
				return array{}, fmt.Errorf("%w: %s row %d has %d values, want %d", ErrShape, name, i, len(row), a.cols)
			}
			a.data = append(a.data, row...)
		}
		return a, nil
	case mat.Matrix:
		r, c := x.Dims()
		a := array{ndim: 2, rows: r, cols: c, data: make([]float64, 0, r*c)}
		for i := 0; i < r; i++ {
			for j := 0; j < c; j++ {
				a.data = append(a.data, x.At(i, j))
			}
		}
		return a, nil
	case nil:
		return array{}, fmt.Errorf("%w: %s is required", ErrInvalidParameter, name)
	default:
		return array{}, fmt.Errorf("%w: %s has unsupported type %T", ErrInvalidParameter, name, v)
	}
}

// broadcastDim combines two axis lengths where 1 stretches to the other.
func broadcastDim(a, b int) (int, bool) {
	switch {
	case a == b:
		return a, true
	case a == 1:
		return b, true
	case b == 1:
		return a, true
	default:
		return 0, false
	}
}

// broadcastParams brings all named arguments to a common (rows, cols) shape.
// 2-D arguments fix the shape. A 1-D argument whose length equals the row
// count stays a row parameter; one matching only the column count is spread
// across rows. Scalars always become cell parameters.
func broadcastParams(names []string, values map[string]any) (int, int, []Param, error) {
	arrays := make([]array, len(names))
	for k, name := range names {
		a, err := toArray(name, values[name])
		if err != nil {
			return 0, 0, nil, err
		}
		arrays[k] = a
	}

	rows, cols := 1, 1
	has2D := false
	for k, a := range arrays {
		if a.ndim != 2 {
			continue
		}
		if !has2D {
			rows, cols, has2D = a.rows, a.cols, true
			continue
		}
		r, okR := broadcastDim(rows, a.rows)
		c, okC := broadcastDim(cols, a.cols)
		if !okR || !okC {
			return 0, 0, nil, fmt.Errorf("%w: %s has shape (%d, %d), want (%d, %d)",
				ErrShape, names[k], a.rows, a.cols, rows, cols)
		}
		rows, cols = r, c
	}

	rowAligned := make([]bool, len(arrays))
	for k, a := range arrays {
		if a.ndim != 1 {
			continue
		}
		n := a.rows
		switch {
		case !has2D:
			r, ok := broadcastDim(rows, n)
			if !ok {
				return 0, 0, nil, fmt.Errorf("%w: %s has length %d, want %d", ErrShape, names[k], n, rows)
			}
			rows = r
		case n == 1:
		case n == rows:
		case n == cols:
		case rows == 1:
			rows = n
		default:
			return 0, 0, nil, fmt.Errorf("%w: %s has length %d, want %d or %d", ErrShape, names[k], n, rows, cols)
		}
	}
	for k, a := range arrays {
		rowAligned[k] = a.ndim == 1 && a.rows == rows
	}

	params := make([]Param, len(arrays))
	for k, a := range arrays {
		if rowAligned[k] {
			params[k] = Param{Name: names[k], Role: RoleRow, Values: a.data}
			continue
		}
		p := Param{Name: names[k], Role: RoleCell, rows: rows, cols: cols, Values: make([]float64, rows*cols)}
		for i := 0; i < rows; i++ {
			for j := 0; j < cols; j++ {
				p.Values[i*cols+j] = a.valueAt(i, j, rows, cols)
			}
		}
		params[k] = p
	}
	return rows, cols, params, nil
}

// valueAt reads a broadcast value; shape compatibility was checked by the caller.
func (a array) valueAt(i, j, rows, cols int) float64 {
	switch a.ndim {
	case 0:
		return a.data[0]
	case 1:
		if len(a.data) == 1 {
			return a.data[0]
		}
		if len(a.data) == rows {
			return a.data[i]
		}
		return a.data[j]
	default:
		r, c := i, j
		if a.rows == 1 {
			r = 0
		}
		if a.cols == 1 {
			c = 0
		}
		return a.data[r*a.cols+c]
	}
}
