package forecast

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"sort"
	"time"

	"github.com/soltixdb/probacast/internal/analytics"
	"github.com/soltixdb/probacast/internal/proba"
)

// DataPoint is an alias to the shared analytics.TimeSeriesPoint type.
type DataPoint = analytics.TimeSeriesPoint

// DefaultField labels the single column of a predictive distribution when
// ForecastConfig.Field is empty.
const DefaultField = "value"

// minStdError keeps the predictive sigma strictly positive for perfectly fitted series.
const minStdError = 1e-9

var (
	// ErrInsufficientData is returned when a series is shorter than MinDataPoints.
	ErrInsufficientData = errors.New("insufficient data points")
	// ErrUnknownForecaster is returned by GetForecaster for unregistered names.
	ErrUnknownForecaster = errors.New("unknown forecaster")
	// ErrInvalidHorizon is returned for a non-positive horizon.
	ErrInvalidHorizon = errors.New("horizon must be positive")
)

// ForecastPoint represents a single forecast prediction
type ForecastPoint struct {
	Time       time.Time `json:"time"`
	Value      float64   `json:"value"`
	LowerBound float64   `json:"lower_bound"`
	UpperBound float64   `json:"upper_bound"`
}

// ModelInfo contains metadata about the forecast model
type ModelInfo struct {
	Algorithm  string                 `json:"algorithm"`
	Parameters map[string]interface{} `json:"parameters,omitempty"`
	MAPE       float64                `json:"mape,omitempty"` // Mean Absolute Percentage Error
	MAE        float64                `json:"mae,omitempty"`  // Mean Absolute Error
	RMSE       float64                `json:"rmse,omitempty"` // Root Mean Squared Error
	DataPoints int                    `json:"data_points"`
}

// ForecastResult contains the forecast predictions, the predictive
// distribution they were read from and model information.
type ForecastResult struct {
	Predictions []ForecastPoint `json:"predictions"`
	Fitted      []float64       `json:"fitted,omitempty"`
	Residuals   []float64       `json:"residuals,omitempty"`
	ModelInfo   ModelInfo       `json:"model_info"`

	// Distribution has one row per horizon step, labeled by prediction
	// time, and one column labeled by the forecast field.
	Distribution *proba.Table `json:"-"`
}

// ForecastConfig holds configuration for forecasting
type ForecastConfig struct {
	Horizon        int           // Number of periods to forecast
	WindowSize     int           // Window size for moving average methods
	Alpha          float64       // Smoothing factor for exponential methods (0-1)
	Beta           float64       // Trend smoothing factor for Holt-Winters (0-1)
	Gamma          float64       // Seasonal smoothing factor for Holt-Winters (0-1)
	SeasonalPeriod int           // Period for seasonal decomposition
	Confidence     float64       // Coverage of ForecastPoint bounds (0-1)
	MinDataPoints  int           // Minimum data points required
	Interval       time.Duration // Time interval between data points

	Field  string      // Column label of the predictive distribution
	Source rand.Source // Random source attached to the predictive distribution
}

// DefaultForecastConfig returns default forecast configuration
func DefaultForecastConfig() ForecastConfig {
	return ForecastConfig{
		Horizon:        24,
		WindowSize:     7,
		Alpha:          0.3,
		Beta:           0.1,
		Gamma:          0.1,
		SeasonalPeriod: 24,
		Confidence:     0.95,
		MinDataPoints:  10,
		Interval:       time.Hour,
		Field:          DefaultField,
	}
}

// Forecaster interface for all forecasting algorithms
type Forecaster interface {
	// Name returns the algorithm name
	Name() string
	// Forecast generates predictions for future time periods
	Forecast(data []DataPoint, config ForecastConfig) (*ForecastResult, error)
}

var forecasterRegistry = make(map[string]Forecaster)

// RegisterForecaster adds a forecaster to the registry
func RegisterForecaster(name string, forecaster Forecaster) {
	forecasterRegistry[name] = forecaster
}

// GetForecaster returns a forecaster by name
func GetForecaster(name string) (Forecaster, error) {
	if forecaster, ok := forecasterRegistry[name]; ok {
		return forecaster, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownForecaster, name)
}

// ListForecasters returns the registered forecaster names in sorted order.
func ListForecasters() []string {
	names := make([]string, 0, len(forecasterRegistry))
	for name := range forecasterRegistry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func checkInput(data []DataPoint, config ForecastConfig) error {
	if config.Horizon <= 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidHorizon, config.Horizon)
	}
	if len(data) < config.MinDataPoints || len(data) == 0 {
		return fmt.Errorf("%w: need %d, have %d", ErrInsufficientData, config.MinDataPoints, len(data))
	}
	return nil
}

// CalculateMAPE calculates Mean Absolute Percentage Error
func CalculateMAPE(actual, predicted []float64) float64 {
	if len(actual) != len(predicted) || len(actual) == 0 {
		return 0
	}

	sum := 0.0
	count := 0
	for i := range actual {
		if actual[i] != 0 {
			sum += math.Abs((actual[i] - predicted[i]) / actual[i])
			count++
		}
	}

	if count == 0 {
		return 0
	}
	return (sum / float64(count)) * 100
}

// CalculateMAE calculates Mean Absolute Error
func CalculateMAE(actual, predicted []float64) float64 {
	if len(actual) != len(predicted) || len(actual) == 0 {
		return 0
	}

	sum := 0.0
	for i := range actual {
		sum += math.Abs(actual[i] - predicted[i])
	}
	return sum / float64(len(actual))
}

// CalculateRMSE calculates Root Mean Squared Error
func CalculateRMSE(actual, predicted []float64) float64 {
	if len(actual) != len(predicted) || len(actual) == 0 {
		return 0
	}

	sum := 0.0
	for i := range actual {
		diff := actual[i] - predicted[i]
		sum += diff * diff
	}
	return math.Sqrt(sum / float64(len(actual)))
}
