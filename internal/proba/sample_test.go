package proba

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/stat"
)

func TestSample_SingleDraw(t *testing.T) {
	n, err := NewNormal([][]float64{{0, 1}, {2, 3}, {4, 5}}, 1.0,
		Options{Source: rand.NewPCG(1, 2)})
	require.NoError(t, err)

	s, err := n.Sample()
	require.NoError(t, err)
	rows, cols := s.Shape()
	assert.Equal(t, 3, rows)
	assert.Equal(t, 2, cols)
	assert.True(t, s.Index().Equal(n.Index()))
	assert.True(t, s.Columns().Equal(n.Columns()))
}

func TestSampleN_ShapeContract(t *testing.T) {
	n, err := NewNormal([][]float64{{0, 1}, {2, 3}, {4, 5}}, 1.0,
		Options{Source: rand.NewPCG(3, 4)})
	require.NoError(t, err)

	set, err := n.SampleN(5)
	require.NoError(t, err)
	require.Equal(t, 5, set.Len())
	for _, d := range set.Draws() {
		rows, cols := d.Shape()
		assert.Equal(t, 3, rows)
		assert.Equal(t, 2, cols)
	}

	stacked := set.Stack()
	rows, cols := stacked.Shape()
	assert.Equal(t, 15, rows)
	assert.Equal(t, 2, cols)
	assert.Equal(t, SampleKey{Draw: 4, Row: 2}, stacked.Index().At(14))

	v, err := stacked.Get(SampleKey{Draw: 1, Row: 0}, 1)
	require.NoError(t, err)
	assert.Equal(t, set.Draw(1).At(0, 1), v)
}

func TestSampleN_Reproducible(t *testing.T) {
	build := func() *Table {
		n, err := NewNormal([]float64{0, 100}, 2.0, Options{Source: rand.NewPCG(7, 7)})
		require.NoError(t, err)
		return n
	}

	a, err := build().SampleN(3)
	require.NoError(t, err)
	b, err := build().SampleN(3)
	require.NoError(t, err)
	assert.True(t, a.Stack().Equal(b.Stack()))
}

func TestSampleN_Moments(t *testing.T) {
	n, err := NewNormal([]float64{5}, 2.0, Options{Source: rand.NewPCG(11, 13)})
	require.NoError(t, err)

	set, err := n.SampleN(4000)
	require.NoError(t, err)

	mean, std := stat.MeanStdDev(set.Stack().Col(0), nil)
	assert.InDelta(t, 5, mean, 0.15)
	assert.InDelta(t, 2, std, 0.15)
}

func TestSampleN_InvalidCount(t *testing.T) {
	n := newTestNormal(t)
	_, err := n.SampleN(0)
	assert.ErrorIs(t, err, ErrSampleCount)
}
