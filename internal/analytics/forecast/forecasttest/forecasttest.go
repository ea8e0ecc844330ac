// Package forecasttest checks that a forecast.Forecaster honors the
// contract shared by every registered algorithm.
package forecasttest

import (
	"math"
	"math/rand/v2"
	"slices"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soltixdb/probacast/internal/analytics/forecast"
)

// Options configures Run. Zero values are replaced by defaults.
type Options struct {
	Data      []forecast.DataPoint
	Config    forecast.ForecastConfig
	Coverages []float64
	Alphas    []float64
	Samples   int
}

// Series returns n hourly points with a mild trend and daily cycle.
func Series(n int) []forecast.DataPoint {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	rng := rand.New(rand.NewPCG(42, 1024))
	data := make([]forecast.DataPoint, n)
	for i := range data {
		data[i] = forecast.DataPoint{
			Time:  base.Add(time.Duration(i) * time.Hour),
			Value: 100 + 0.2*float64(i) + 5*math.Sin(2*math.Pi*float64(i)/24) + rng.NormFloat64(),
		}
	}
	return data
}

func (o Options) withDefaults() Options {
	if o.Data == nil {
		o.Data = Series(96)
	}
	if o.Config.Horizon == 0 {
		cfg := forecast.DefaultForecastConfig()
		cfg.Horizon = 12
		o.Config = cfg
	}
	if o.Coverages == nil {
		o.Coverages = []float64{0.5, 0.8, 0.95}
	}
	if o.Alphas == nil {
		o.Alphas = []float64{0.05, 0.25, 0.5, 0.75, 0.95}
	}
	if o.Samples == 0 {
		o.Samples = 5
	}
	return o
}

// Run exercises f against the forecaster contract.
func Run(t *testing.T, f forecast.Forecaster, opts Options) {
	t.Helper()
	opts = opts.withDefaults()
	cfg := opts.Config

	t.Run("registered", func(t *testing.T) {
		got, err := forecast.GetForecaster(f.Name())
		require.NoError(t, err)
		assert.Equal(t, f.Name(), got.Name())
	})

	snapshot := slices.Clone(opts.Data)
	result, err := f.Forecast(opts.Data, cfg)
	require.NoError(t, err, "forecast %s", f.Name())

	t.Run("input not mutated", func(t *testing.T) {
		assert.Equal(t, snapshot, opts.Data)
	})

	t.Run("predictions", func(t *testing.T) {
		require.Len(t, result.Predictions, cfg.Horizon)
		last := opts.Data[len(opts.Data)-1].Time
		for i, p := range result.Predictions {
			assert.True(t, p.Time.After(last), "step %d at %v is not after %v", i, p.Time, last)
			last = p.Time
			assert.LessOrEqual(t, p.LowerBound, p.Value, "step %d", i)
			assert.LessOrEqual(t, p.Value, p.UpperBound, "step %d", i)
		}
		assert.Equal(t, len(opts.Data), result.ModelInfo.DataPoints)
	})

	t.Run("distribution shape", func(t *testing.T) {
		require.NotNil(t, result.Distribution)
		rows, cols := result.Distribution.Shape()
		assert.Equal(t, cfg.Horizon, rows)
		assert.Equal(t, 1, cols)

		mean := result.Distribution.Mean()
		for i, p := range result.Predictions {
			assert.InDelta(t, p.Value, mean.At(i, 0), 1e-9)
			assert.True(t, p.Time.Equal(result.Distribution.Index().At(i).(time.Time)))
		}
	})

	t.Run("nested intervals", func(t *testing.T) {
		coverages := slices.Clone(opts.Coverages)
		slices.Sort(coverages)
		iv, err := result.PredictInterval(coverages)
		require.NoError(t, err)
		rows, cols := iv.Shape()
		require.Equal(t, cfg.Horizon, rows)
		require.Equal(t, 2*len(coverages), cols)
		for i := 0; i < rows; i++ {
			for k := 1; k < len(coverages); k++ {
				assert.LessOrEqual(t, iv.At(i, 2*k), iv.At(i, 2*(k-1)), "lower bound widens at row %d", i)
				assert.GreaterOrEqual(t, iv.At(i, 2*k+1), iv.At(i, 2*(k-1)+1), "upper bound widens at row %d", i)
			}
		}
	})

	t.Run("monotone quantiles", func(t *testing.T) {
		alphas := slices.Clone(opts.Alphas)
		slices.Sort(alphas)
		q, err := result.PredictQuantiles(alphas)
		require.NoError(t, err)
		rows, cols := q.Shape()
		require.Equal(t, len(alphas), cols)
		for i := 0; i < rows; i++ {
			row := q.Row(i)
			assert.True(t, slices.IsSorted(row), "row %d: %v", i, row)
		}
	})

	t.Run("variance", func(t *testing.T) {
		v, err := result.PredictVar()
		require.NoError(t, err)
		for _, x := range v.Col(0) {
			assert.Greater(t, x, 0.0)
		}
	})

	t.Run("sample shape", func(t *testing.T) {
		set, err := result.Distribution.SampleN(opts.Samples)
		require.NoError(t, err)
		require.Equal(t, opts.Samples, set.Len())
		for _, d := range set.Draws() {
			rows, cols := d.Shape()
			assert.Equal(t, cfg.Horizon, rows)
			assert.Equal(t, 1, cols)
		}
	})

	t.Run("insufficient data", func(t *testing.T) {
		short := cfg
		short.MinDataPoints = len(opts.Data) + 1
		_, err := f.Forecast(opts.Data, short)
		assert.ErrorIs(t, err, forecast.ErrInsufficientData)
	})
}
