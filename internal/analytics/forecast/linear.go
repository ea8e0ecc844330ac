package forecast

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/stat"
)

// ErrDegenerateRegression is returned when the regressor has no spread.
var ErrDegenerateRegression = errors.New("cannot calculate regression: all x values are the same")

// LinearRegressionForecaster implements Linear Regression forecasting
type LinearRegressionForecaster struct{}

// NewLinearRegressionForecaster creates a new Linear Regression forecaster
func NewLinearRegressionForecaster() *LinearRegressionForecaster {
	return &LinearRegressionForecaster{}
}

func init() {
	RegisterForecaster("linear", NewLinearRegressionForecaster())
}

// Name returns the algorithm name
func (f *LinearRegressionForecaster) Name() string {
	return "linear"
}

// Forecast fits value = intercept + slope*i by least squares and
// extrapolates it. The step standard error includes the extrapolation
// term of the classic OLS prediction interval.
func (f *LinearRegressionForecaster) Forecast(data []DataPoint, config ForecastConfig) (*ForecastResult, error) {
	if err := checkInput(data, config); err != nil {
		return nil, err
	}
	if len(data) < 2 {
		return nil, ErrDegenerateRegression
	}

	xs := make([]float64, len(data))
	ys := make([]float64, len(data))
	for i, p := range data {
		xs[i] = float64(i)
		ys[i] = p.Value
	}
	intercept, slope := stat.LinearRegression(xs, ys, nil, false)

	fitted := make([]float64, len(data))
	residuals := make([]float64, len(data))
	for i := range data {
		fitted[i] = intercept + slope*xs[i]
		residuals[i] = ys[i] - fitted[i]
	}
	stdError := residualStdError(residuals, len(data)-2)

	n := float64(len(data))
	meanX := stat.Mean(xs, nil)
	sxx := 0.0
	for _, x := range xs {
		sxx += (x - meanX) * (x - meanX)
	}

	forecast := make([]float64, config.Horizon)
	stdErrors := make([]float64, config.Horizon)
	for i := range forecast {
		x := n + float64(i)
		forecast[i] = intercept + slope*x
		d := x - meanX
		stdErrors[i] = stdError * math.Sqrt(1+1/n+d*d/sxx)
	}

	return model{
		algorithm: "linear",
		params: map[string]interface{}{
			"slope":     slope,
			"intercept": intercept,
		},
		fitted:    fitted,
		forecast:  forecast,
		stdErrors: stdErrors,
	}.result(data, config)
}
