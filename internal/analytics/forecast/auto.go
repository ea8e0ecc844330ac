package forecast

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// AutoForecaster selects a forecasting algorithm from the shape of the data.
type AutoForecaster struct{}

// NewAutoForecaster creates a new Auto forecaster
func NewAutoForecaster() *AutoForecaster {
	return &AutoForecaster{}
}

func init() {
	RegisterForecaster("auto", NewAutoForecaster())
}

// Name returns the algorithm name
func (f *AutoForecaster) Name() string {
	return "auto"
}

// Select returns the forecaster Forecast would delegate to.
func (f *AutoForecaster) Select(data []DataPoint, config ForecastConfig) Forecaster {
	switch {
	case detectSeasonality(data, config.SeasonalPeriod) && len(data) >= config.SeasonalPeriod*2:
		return NewHoltWintersForecaster()
	case detectTrend(data):
		return NewLinearRegressionForecaster()
	case len(data) >= 20:
		return NewExponentialSmoothingForecaster()
	default:
		return NewSMAForecaster()
	}
}

// Forecast delegates to the selected algorithm and tags the result.
func (f *AutoForecaster) Forecast(data []DataPoint, config ForecastConfig) (*ForecastResult, error) {
	if err := checkInput(data, config); err != nil {
		return nil, err
	}

	selected := f.Select(data, config)
	result, err := selected.Forecast(data, config)
	if err != nil {
		return nil, err
	}

	result.ModelInfo.Algorithm = result.ModelInfo.Algorithm + " (auto-selected)"
	return result, nil
}

// detectTrend reports whether value and position correlate with |r| > 0.5.
func detectTrend(data []DataPoint) bool {
	if len(data) < 5 {
		return false
	}

	xs := make([]float64, len(data))
	ys := make([]float64, len(data))
	for i, p := range data {
		xs[i] = float64(i)
		ys[i] = p.Value
	}

	r := stat.Correlation(xs, ys, nil)
	if math.IsNaN(r) {
		return false
	}
	return math.Abs(r) > 0.5
}

// detectSeasonality reports whether the autocorrelation at lag period exceeds 0.5.
func detectSeasonality(data []DataPoint, period int) bool {
	if len(data) < period*2 || period <= 1 {
		return false
	}

	values := make([]float64, len(data))
	for i, p := range data {
		values[i] = p.Value
	}
	mean := stat.Mean(values, nil)

	numerator := 0.0
	denominator := 0.0
	for i := period; i < len(values); i++ {
		a := values[i] - mean
		b := values[i-period] - mean
		numerator += a * b
		denominator += a * a
	}

	if denominator == 0 {
		return false
	}
	return numerator/denominator > 0.5
}
