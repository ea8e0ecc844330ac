package proba

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tol = 1e-9

func TestNormal_MeanVar(t *testing.T) {
	n, err := NewNormal([][]float64{{0, 1}, {2, 3}}, []float64{1, 2})
	require.NoError(t, err)

	assert.Equal(t, [][]float64{{0, 1}, {2, 3}}, n.Mean().Values())
	assert.Equal(t, [][]float64{{1, 1}, {4, 4}}, n.Var().Values())
}

func TestNormal_DensityAndCDF(t *testing.T) {
	n, err := NewNormal([][]float64{{0, 1}}, 2.0)
	require.NoError(t, err)

	x, err := NewFrame([][]float64{{0, 1}}, nil, nil)
	require.NoError(t, err)

	pdf, err := n.PDF(x)
	require.NoError(t, err)
	want := 1 / (2 * math.Sqrt(2*math.Pi))
	assert.InDelta(t, want, pdf.At(0, 0), tol)
	assert.InDelta(t, want, pdf.At(0, 1), tol)

	lpdf, err := n.LogPDF(x)
	require.NoError(t, err)
	assert.InDelta(t, math.Log(want), lpdf.At(0, 0), tol)

	cdf, err := n.CDF(x)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, cdf.At(0, 0), tol)
	assert.InDelta(t, 0.5, cdf.At(0, 1), tol)
}

func TestNormal_QuantileRoundTrip(t *testing.T) {
	n := newTestNormal(t)

	x, err := NewFrame([][]float64{{-1, 0.5}, {2.2, 3}, {7, 4.9}}, nil, nil)
	require.NoError(t, err)

	p, err := n.CDF(x)
	require.NoError(t, err)
	back, err := n.PPF(p)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		for j := 0; j < 2; j++ {
			assert.InDelta(t, x.At(i, j), back.At(i, j), 1e-6)
		}
	}
}

func TestLaplace_QuantileRoundTrip(t *testing.T) {
	l, err := NewLaplace([]float64{0, 10}, 2.0)
	require.NoError(t, err)

	x, err := NewFrame([][]float64{{-3}, {11}}, nil, nil)
	require.NoError(t, err)

	p, err := l.CDF(x)
	require.NoError(t, err)
	back, err := l.PPF(p)
	require.NoError(t, err)
	assert.InDelta(t, -3, back.At(0, 0), 1e-9)
	assert.InDelta(t, 11, back.At(1, 0), 1e-9)

	assert.Equal(t, [][]float64{{8}, {8}}, l.Var().Values())
}

func TestPPF_InvalidProbability(t *testing.T) {
	n := newTestNormal(t)
	p := FullFrame(1.5, n.Index(), n.Columns())

	_, err := n.PPF(p)
	assert.ErrorIs(t, err, ErrInvalidProbability)

	lenient, err := NewNormal([][]float64{{0, 1}, {2, 3}, {4, 5}}, 1.0, Options{AllowNaNStats: true})
	require.NoError(t, err)
	q, err := lenient.PPF(p)
	require.NoError(t, err)
	assert.True(t, math.IsNaN(q.At(0, 0)))
}

func TestQueryAlignment(t *testing.T) {
	cols, err := StringIndex("a", "b")
	require.NoError(t, err)
	n, err := NewNormal([][]float64{{0, 1}, {2, 3}, {4, 5}}, 1.0,
		Options{Index: MustIndex(1, 2, 5), Columns: cols})
	require.NoError(t, err)

	qcols, err := StringIndex("b")
	require.NoError(t, err)
	x, err := NewFrame([][]float64{{5}, {1}}, MustIndex(5, 1), qcols)
	require.NoError(t, err)

	cdf, err := n.CDF(x)
	require.NoError(t, err)
	assert.True(t, cdf.Index().Equal(x.Index()))
	assert.True(t, cdf.Columns().Equal(x.Columns()))
	assert.InDelta(t, 0.5, cdf.At(0, 0), tol)
	assert.InDelta(t, 0.5, cdf.At(1, 0), tol)

	bad, err := NewFrame([][]float64{{0}}, MustIndex(3), qcols)
	require.NoError(t, err)
	_, err = n.PDF(bad)
	assert.ErrorIs(t, err, ErrLabelMismatch)
	assert.ErrorIs(t, err, ErrLabelNotFound)
}

func TestEnergy(t *testing.T) {
	n, err := NewNormal([][]float64{{0, 1}, {2, 3}}, [][]float64{{1, 2}, {3, 4}})
	require.NoError(t, err)

	self := n.SelfEnergy()
	rows, cols := self.Shape()
	assert.Equal(t, 2, rows)
	assert.Equal(t, 1, cols)
	assert.Equal(t, EnergyColumn, self.Columns().At(0))
	assert.InDelta(t, 2*(1+2)/math.Sqrt(math.Pi), self.At(0, 0), tol)
	assert.InDelta(t, 2*(3+4)/math.Sqrt(math.Pi), self.At(1, 0), tol)

	// at the mean, E|X - mu| = sigma * sqrt(2/pi)
	e, err := n.Energy(n.Mean())
	require.NoError(t, err)
	assert.InDelta(t, (1+2)*math.Sqrt(2/math.Pi), e.At(0, 0), tol)
	assert.InDelta(t, (3+4)*math.Sqrt(2/math.Pi), e.At(1, 0), tol)
}

func TestLaplace_Energy(t *testing.T) {
	l, err := NewLaplace(0.0, 2.0)
	require.NoError(t, err)

	assert.InDelta(t, 3.0, l.SelfEnergy().At(0, 0), tol)

	e, err := l.Energy(FullFrame(0, l.Index(), l.Columns()))
	require.NoError(t, err)
	assert.InDelta(t, 2.0, e.At(0, 0), tol)
}

func TestInterval(t *testing.T) {
	n, err := NewNormal([]float64{0, 10}, 1.0)
	require.NoError(t, err)

	lower, upper, err := n.Interval(0.95)
	require.NoError(t, err)
	assert.InDelta(t, -1.959964, lower.At(0, 0), 1e-5)
	assert.InDelta(t, 1.959964, upper.At(0, 0), 1e-5)
	assert.InDelta(t, 11.959964, upper.At(1, 0), 1e-5)

	_, _, err = n.Interval(1.2)
	assert.ErrorIs(t, err, ErrInvalidProbability)

	median, err := n.Quantile(0.5)
	require.NoError(t, err)
	assert.Equal(t, n.Mean().Values(), median.Values())
}

func TestQuantiles_Monotone(t *testing.T) {
	n := newTestNormal(t)

	qs, err := n.Quantiles([]float64{0.1, 0.5, 0.9})
	require.NoError(t, err)
	require.Len(t, qs, 3)
	for i := 0; i < 3; i++ {
		for j := 0; j < 2; j++ {
			assert.Less(t, qs[0].At(i, j), qs[1].At(i, j))
			assert.Less(t, qs[1].At(i, j), qs[2].At(i, j))
		}
	}

	_, err = n.Quantiles([]float64{0.5, -0.1})
	assert.ErrorIs(t, err, ErrInvalidProbability)
}
