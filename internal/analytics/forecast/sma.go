package forecast

// SMAForecaster implements Simple Moving Average forecasting
type SMAForecaster struct{}

// NewSMAForecaster creates a new SMA forecaster
func NewSMAForecaster() *SMAForecaster {
	return &SMAForecaster{}
}

func init() {
	RegisterForecaster("sma", NewSMAForecaster())
}

// Name returns the algorithm name
func (f *SMAForecaster) Name() string {
	return "sma"
}

// Forecast predicts the mean of the last window for every step. The
// predictive spread is the in-sample residual standard error, constant
// across the horizon.
func (f *SMAForecaster) Forecast(data []DataPoint, config ForecastConfig) (*ForecastResult, error) {
	if err := checkInput(data, config); err != nil {
		return nil, err
	}

	windowSize := config.WindowSize
	if windowSize <= 0 {
		windowSize = 7
	}
	if windowSize > len(data) {
		windowSize = len(data)
	}

	// trailing mean over at most windowSize points
	fitted := make([]float64, len(data))
	running := 0.0
	for i, p := range data {
		running += p.Value
		if i >= windowSize {
			running -= data[i-windowSize].Value
		}
		fitted[i] = running / float64(min(i+1, windowSize))
	}

	residuals := make([]float64, len(data))
	for i, p := range data {
		residuals[i] = p.Value - fitted[i]
	}
	stdError := residualStdError(residuals, len(data)-1)

	level := fitted[len(data)-1]
	forecast := make([]float64, config.Horizon)
	stdErrors := make([]float64, config.Horizon)
	for i := range forecast {
		forecast[i] = level
		stdErrors[i] = stdError
	}

	return model{
		algorithm: "sma",
		params:    map[string]interface{}{"window_size": windowSize},
		fitted:    fitted,
		forecast:  forecast,
		stdErrors: stdErrors,
	}.result(data, config)
}
