package proba

import (
	"fmt"
	"time"
)

type fullAxis struct{}

// All selects an entire axis, unconstrained.
var All = fullAxis{}

// View is a stateless accessor bound to one table and one selection mode.
// It is created on each call to Table.Loc or Table.ILoc.
type View struct {
	table   *Table
	byLabel bool
}

// Get selects a sub-table. One key selects rows and keeps all columns; two
// keys select rows and columns. A slice key is a list; any other key is a
// single label (Loc) or position (ILoc) and keeps its axis. Get(All, All)
// returns the table itself.
func (v View) Get(keys ...any) (*Table, error) {
	var rowKey, colKey any = All, All
	switch len(keys) {
	case 1:
		rowKey = keys[0]
	case 2:
		rowKey, colKey = keys[0], keys[1]
	default:
		return nil, fmt.Errorf("%w, got %d", ErrKeyArity, len(keys))
	}

	if isAll(rowKey) && isAll(colKey) {
		return v.table, nil
	}

	if v.byLabel {
		rows, err := labelKey(rowKey)
		if err != nil {
			return nil, err
		}
		cols, err := labelKey(colKey)
		if err != nil {
			return nil, err
		}
		return v.table.AtLabels(rows, cols)
	}

	rows, err := positionKey(rowKey)
	if err != nil {
		return nil, err
	}
	cols, err := positionKey(colKey)
	if err != nil {
		return nil, err
	}
	return v.table.AtPositions(rows, cols)
}

func isAll(key any) bool {
	_, ok := key.(fullAxis)
	return ok
}

// labelKey returns nil for All and a non-nil slice otherwise.
func labelKey(key any) ([]Label, error) {
	switch k := key.(type) {
	case fullAxis:
		return nil, nil
	case []Label:
		return append(make([]Label, 0, len(k)), k...), nil
	case *Index:
		return k.Labels(), nil
	case []int:
		return toLabels(k), nil
	case []int64:
		return toLabels(k), nil
	case []string:
		return toLabels(k), nil
	case []float64:
		return toLabels(k), nil
	case []time.Time:
		return toLabels(k), nil
	default:
		return []Label{key}, nil
	}
}

func toLabels[T any](in []T) []Label {
	out := make([]Label, len(in))
	for i, v := range in {
		out[i] = v
	}
	return out
}

// positionKey returns nil for All and a non-nil slice otherwise.
func positionKey(key any) ([]int, error) {
	switch k := key.(type) {
	case fullAxis:
		return nil, nil
	case int:
		return []int{k}, nil
	case []int:
		return append(make([]int, 0, len(k)), k...), nil
	default:
		return nil, fmt.Errorf("%w: position key must be int or []int, got %T", ErrKeyType, key)
	}
}
