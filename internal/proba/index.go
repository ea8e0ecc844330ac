package proba

import (
	"fmt"
	"time"
)

// Label identifies a row or column. Supported dynamic types are int, int64,
// string, float64, time.Time and SampleKey.
type Label = any

// Index is an ordered sequence of labels with constant-time lookup.
// An Index is never modified after construction.
type Index struct {
	labels []Label
	pos    map[Label]int
}

// RangeIndex returns the dense index 0..n-1.
func RangeIndex(n int) *Index {
	if n < 0 {
		n = 0
	}
	labels := make([]Label, n)
	pos := make(map[Label]int, n)
	for i := 0; i < n; i++ {
		labels[i] = i
		pos[i] = i
	}
	return &Index{labels: labels, pos: pos}
}

// NewIndex builds an index from unique labels.
func NewIndex(labels ...Label) (*Index, error) {
	idx := &Index{
		labels: make([]Label, len(labels)),
		pos:    make(map[Label]int, len(labels)),
	}
	for i, l := range labels {
		key, err := normalizeLabel(l)
		if err != nil {
			return nil, err
		}
		if _, dup := idx.pos[key]; dup {
			return nil, fmt.Errorf("%w: %v", ErrDuplicateLabel, l)
		}
		idx.labels[i] = key
		idx.pos[key] = i
	}
	return idx, nil
}

// indexOf builds an index from already normalized labels. Repeated labels are
// kept and resolve to their first position.
func indexOf(labels []Label) *Index {
	idx := &Index{labels: labels, pos: make(map[Label]int, len(labels))}
	for i, l := range labels {
		if _, seen := idx.pos[l]; !seen {
			idx.pos[l] = i
		}
	}
	return idx
}

// MustIndex is like NewIndex but panics on error.
func MustIndex(labels ...Label) *Index {
	idx, err := NewIndex(labels...)
	if err != nil {
		panic(err)
	}
	return idx
}

// StringIndex builds an index from string labels.
func StringIndex(labels ...string) (*Index, error) {
	ls := make([]Label, len(labels))
	for i, l := range labels {
		ls[i] = l
	}
	return NewIndex(ls...)
}

// TimeIndex builds an index from timestamps.
func TimeIndex(times ...time.Time) (*Index, error) {
	ls := make([]Label, len(times))
	for i, t := range times {
		ls[i] = t
	}
	return NewIndex(ls...)
}

// Len returns the number of labels.
func (x *Index) Len() int {
	return len(x.labels)
}

// At returns the label at position i.
func (x *Index) At(i int) Label {
	return x.labels[i]
}

// Labels returns a copy of the labels in order.
func (x *Index) Labels() []Label {
	out := make([]Label, len(x.labels))
	copy(out, x.labels)
	return out
}

// Position returns the position of label. If the index holds repeated labels
// (after Take with duplicates) the first occurrence wins.
func (x *Index) Position(label Label) (int, error) {
	key, err := normalizeLabel(label)
	if err != nil {
		return -1, err
	}
	p, ok := x.pos[key]
	if !ok {
		return -1, fmt.Errorf("%w: %v", ErrLabelNotFound, label)
	}
	return p, nil
}

// Positions resolves every label to its position.
func (x *Index) Positions(labels []Label) ([]int, error) {
	out := make([]int, len(labels))
	for i, l := range labels {
		p, err := x.Position(l)
		if err != nil {
			return nil, err
		}
		out[i] = p
	}
	return out, nil
}

// Contains reports whether label is on the index.
func (x *Index) Contains(label Label) bool {
	_, err := x.Position(label)
	return err == nil
}

// Take returns the labels at the given positions, in the given order.
// Positions may repeat; negative positions count from the end.
func (x *Index) Take(positions []int) (*Index, error) {
	resolved, err := resolvePositions(positions, x.Len())
	if err != nil {
		return nil, err
	}
	labels := make([]Label, len(resolved))
	for i, p := range resolved {
		labels[i] = x.labels[p]
	}
	return indexOf(labels), nil
}

// Equal reports whether both indexes hold the same labels in the same order.
func (x *Index) Equal(other *Index) bool {
	if x == other {
		return true
	}
	if x == nil || other == nil || x.Len() != other.Len() {
		return false
	}
	for i := range x.labels {
		if !labelsEqual(x.labels[i], other.labels[i]) {
			return false
		}
	}
	return true
}

// String renders the index for diagnostics.
func (x *Index) String() string {
	return fmt.Sprintf("Index%v", x.labels)
}

func resolvePositions(positions []int, n int) ([]int, error) {
	out := make([]int, len(positions))
	for i, p := range positions {
		q := p
		if q < 0 {
			q += n
		}
		if q < 0 || q >= n {
			return nil, fmt.Errorf("%w: %d for axis of length %d", ErrPositionOutOfRange, p, n)
		}
		out[i] = q
	}
	return out, nil
}

// normalizeLabel maps integer kinds onto int so that 1 and int64(1) address
// the same entry, and rejects labels that cannot be map keys.
func normalizeLabel(l Label) (Label, error) {
	switch v := l.(type) {
	case int:
		return v, nil
	case int32:
		return int(v), nil
	case int64:
		return int(v), nil
	case uint:
		return int(v), nil
	case string, float64, SampleKey:
		return v, nil
	case time.Time:
		// Monotonic readings and locations make equal instants compare unequal.
		return v.UTC().Round(0), nil
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedLabel, l)
	}
}

func labelsEqual(a, b Label) bool {
	ta, aok := a.(time.Time)
	tb, bok := b.(time.Time)
	if aok && bok {
		return ta.Equal(tb)
	}
	return a == b
}
