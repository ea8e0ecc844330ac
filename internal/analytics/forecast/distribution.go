package forecast

import (
	"errors"
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/floats"

	"github.com/soltixdb/probacast/internal/proba"
)

// ErrNoDistribution is returned by the Predict* views of a result that was
// not produced by a Forecaster.
var ErrNoDistribution = errors.New("forecast result has no predictive distribution")

// model is what each algorithm produces before the predictive distribution
// is attached: the in-sample fit, point forecasts and the standard error of
// every forecast step.
type model struct {
	algorithm string
	params    map[string]interface{}
	fitted    []float64
	forecast  []float64
	stdErrors []float64
}

// forecastTimes returns the horizon timestamps following the last observation.
func forecastTimes(data []DataPoint, config ForecastConfig) []time.Time {
	interval := config.Interval
	if interval <= 0 && len(data) >= 2 {
		interval = data[1].Time.Sub(data[0].Time)
	}
	if interval <= 0 {
		interval = time.Hour
	}
	last := data[len(data)-1].Time
	times := make([]time.Time, config.Horizon)
	for i := range times {
		times[i] = last.Add(interval * time.Duration(1+i))
	}
	return times
}

// residualStdError returns sqrt(sum(r^2) / dof), or 0 without degrees of freedom.
func residualStdError(residuals []float64, dof int) float64 {
	if dof <= 0 {
		return 0
	}
	return math.Sqrt(floats.Dot(residuals, residuals) / float64(dof))
}

// growingStdErrors widens stdError by sqrt(h) for step h.
func growingStdErrors(stdError float64, horizon int) []float64 {
	out := make([]float64, horizon)
	for i := range out {
		out[i] = stdError * math.Sqrt(float64(i+1))
	}
	return out
}

// result builds the predictive Normal table and reads the point bounds off it.
func (m model) result(data []DataPoint, config ForecastConfig) (*ForecastResult, error) {
	field := config.Field
	if field == "" {
		field = DefaultField
	}
	confidence := config.Confidence
	if !(confidence > 0 && confidence < 1) {
		confidence = 0.95
	}

	times := forecastTimes(data, config)
	index, err := proba.TimeIndex(times...)
	if err != nil {
		return nil, err
	}
	columns, err := proba.StringIndex(field)
	if err != nil {
		return nil, err
	}

	sigma := make([]float64, len(m.stdErrors))
	for i, s := range m.stdErrors {
		sigma[i] = s
		if !(s > minStdError) {
			sigma[i] = minStdError
		}
	}

	dist, err := proba.NewNormal(m.forecast, sigma, proba.Options{
		Index:        index,
		Columns:      columns,
		Name:         m.algorithm,
		ValidateArgs: true,
		Source:       config.Source,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: build predictive distribution: %w", m.algorithm, err)
	}

	lower, upper, err := dist.Interval(confidence)
	if err != nil {
		return nil, err
	}

	predictions := make([]ForecastPoint, len(times))
	for i, ts := range times {
		predictions[i] = ForecastPoint{
			Time:       ts,
			Value:      m.forecast[i],
			LowerBound: lower.At(i, 0),
			UpperBound: upper.At(i, 0),
		}
	}

	actual := make([]float64, len(data))
	residuals := make([]float64, len(data))
	for i, p := range data {
		actual[i] = p.Value
		residuals[i] = p.Value - m.fitted[i]
	}

	return &ForecastResult{
		Predictions: predictions,
		Fitted:      m.fitted,
		Residuals:   residuals,
		ModelInfo: ModelInfo{
			Algorithm:  m.algorithm,
			Parameters: m.params,
			MAPE:       CalculateMAPE(actual, m.fitted),
			MAE:        CalculateMAE(actual, m.fitted),
			RMSE:       CalculateRMSE(actual, m.fitted),
			DataPoints: len(data),
		},
		Distribution: dist,
	}, nil
}

// PredictInterval returns central prediction intervals, two columns per
// coverage labeled "lower@c" and "upper@c", one row per horizon step.
func (r *ForecastResult) PredictInterval(coverages []float64) (*proba.Frame, error) {
	if r.Distribution == nil {
		return nil, ErrNoDistribution
	}
	rows, _ := r.Distribution.Shape()
	values := make([][]float64, rows)
	labels := make([]string, 0, 2*len(coverages))
	for _, c := range coverages {
		lower, upper, err := r.Distribution.Interval(c)
		if err != nil {
			return nil, err
		}
		for i := range values {
			values[i] = append(values[i], lower.At(i, 0), upper.At(i, 0))
		}
		labels = append(labels, fmt.Sprintf("lower@%g", c), fmt.Sprintf("upper@%g", c))
	}
	return labeledFrame(values, r.Distribution.Index(), labels)
}

// PredictQuantiles returns one column per alpha labeled "q@alpha".
func (r *ForecastResult) PredictQuantiles(alphas []float64) (*proba.Frame, error) {
	if r.Distribution == nil {
		return nil, ErrNoDistribution
	}
	qs, err := r.Distribution.Quantiles(alphas)
	if err != nil {
		return nil, err
	}
	rows, _ := r.Distribution.Shape()
	values := make([][]float64, rows)
	labels := make([]string, len(alphas))
	for k, q := range qs {
		for i := range values {
			values[i] = append(values[i], q.At(i, 0))
		}
		labels[k] = fmt.Sprintf("q@%g", alphas[k])
	}
	return labeledFrame(values, r.Distribution.Index(), labels)
}

// PredictVar returns the predictive variance of every horizon step.
func (r *ForecastResult) PredictVar() (*proba.Frame, error) {
	if r.Distribution == nil {
		return nil, ErrNoDistribution
	}
	return r.Distribution.Var(), nil
}

func labeledFrame(values [][]float64, index *proba.Index, labels []string) (*proba.Frame, error) {
	columns, err := proba.StringIndex(labels...)
	if err != nil {
		return nil, err
	}
	for i := range values {
		if values[i] == nil {
			values[i] = []float64{}
		}
	}
	return proba.NewFrame(values, index, columns)
}
