package forecast

// ExponentialSmoothingForecaster implements Simple Exponential Smoothing forecasting
type ExponentialSmoothingForecaster struct{}

// NewExponentialSmoothingForecaster creates a new Exponential Smoothing forecaster
func NewExponentialSmoothingForecaster() *ExponentialSmoothingForecaster {
	return &ExponentialSmoothingForecaster{}
}

func init() {
	RegisterForecaster("exponential", NewExponentialSmoothingForecaster())
}

// Name returns the algorithm name
func (f *ExponentialSmoothingForecaster) Name() string {
	return "exponential"
}

// Forecast generates predictions using Simple Exponential Smoothing.
// Uncertainty grows with sqrt(h).
func (f *ExponentialSmoothingForecaster) Forecast(data []DataPoint, config ForecastConfig) (*ForecastResult, error) {
	if err := checkInput(data, config); err != nil {
		return nil, err
	}

	alpha := config.Alpha
	if alpha <= 0 || alpha > 1 {
		alpha = 0.3
	}

	// one-step-ahead fit: fitted[i] only sees data before i
	fitted := make([]float64, len(data))
	fitted[0] = data[0].Value
	for i := 1; i < len(data); i++ {
		fitted[i] = alpha*data[i-1].Value + (1-alpha)*fitted[i-1]
	}

	residuals := make([]float64, len(data))
	for i, p := range data {
		residuals[i] = p.Value - fitted[i]
	}
	stdError := residualStdError(residuals, len(data)-1)

	n := len(data)
	level := alpha*data[n-1].Value + (1-alpha)*fitted[n-1]
	forecast := make([]float64, config.Horizon)
	for i := range forecast {
		forecast[i] = level
	}

	return model{
		algorithm: "exponential",
		params:    map[string]interface{}{"alpha": alpha},
		fitted:    fitted,
		forecast:  forecast,
		stdErrors: growingStdErrors(stdError, config.Horizon),
	}.result(data, config)
}
