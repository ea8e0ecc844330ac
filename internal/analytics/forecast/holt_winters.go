package forecast

// HoltWintersForecaster implements multiplicative Holt-Winters (triple
// exponential smoothing) forecasting.
type HoltWintersForecaster struct{}

// NewHoltWintersForecaster creates a new Holt-Winters forecaster
func NewHoltWintersForecaster() *HoltWintersForecaster {
	return &HoltWintersForecaster{}
}

func init() {
	RegisterForecaster("holt_winters", NewHoltWintersForecaster())
}

// Name returns the algorithm name
func (f *HoltWintersForecaster) Name() string {
	return "holt_winters"
}

type holtWintersParams struct {
	alpha, beta, gamma float64
	period             int
}

func newHoltWintersParams(config ForecastConfig, n int) holtWintersParams {
	p := holtWintersParams{
		alpha:  config.Alpha,
		beta:   config.Beta,
		gamma:  config.Gamma,
		period: config.SeasonalPeriod,
	}
	if p.alpha <= 0 || p.alpha > 1 {
		p.alpha = 0.3
	}
	if p.beta <= 0 || p.beta > 1 {
		p.beta = 0.1
	}
	if p.gamma <= 0 || p.gamma > 1 {
		p.gamma = 0.1
	}
	if p.period <= 0 || p.period > n/2 {
		p.period = 24
	}
	return p
}

// Forecast generates predictions using Holt-Winters. Series shorter than
// two seasons fall back to simple exponential smoothing.
func (f *HoltWintersForecaster) Forecast(data []DataPoint, config ForecastConfig) (*ForecastResult, error) {
	if err := checkInput(data, config); err != nil {
		return nil, err
	}

	hw := newHoltWintersParams(config, len(data))
	if len(data) < hw.period*2 {
		return NewExponentialSmoothingForecaster().Forecast(data, config)
	}

	n := len(data)
	period := hw.period
	seasonal := make([]float64, n)

	level := 0.0
	for i := 0; i < period; i++ {
		level += data[i].Value
	}
	level /= float64(period)
	trend := (data[period].Value - data[0].Value) / float64(period)

	for i := 0; i < period; i++ {
		seasonal[i] = 1.0
		if level != 0 {
			seasonal[i] = data[i].Value / level
		}
	}

	fitted := make([]float64, n)
	fitted[0] = level * seasonal[0]
	for i := 1; i < n; i++ {
		prevSeasonal := seasonal[i]
		if i >= period {
			prevSeasonal = seasonal[i-period]
		}
		if prevSeasonal == 0 {
			prevSeasonal = 1.0
		}

		fitted[i] = (level + trend) * prevSeasonal

		prevLevel := level
		level = hw.alpha*(data[i].Value/prevSeasonal) + (1-hw.alpha)*(prevLevel+trend)
		trend = hw.beta*(level-prevLevel) + (1-hw.beta)*trend
		if level != 0 {
			seasonal[i] = hw.gamma*(data[i].Value/level) + (1-hw.gamma)*prevSeasonal
		} else {
			seasonal[i] = prevSeasonal
		}
	}

	residuals := make([]float64, n)
	for i, p := range data {
		residuals[i] = p.Value - fitted[i]
	}
	stdError := residualStdError(residuals, n-1)

	forecast := make([]float64, config.Horizon)
	for i := range forecast {
		factor := seasonal[n-period+(n+i)%period]
		if factor == 0 {
			factor = 1.0
		}
		forecast[i] = (level + float64(i+1)*trend) * factor
	}

	return model{
		algorithm: "holt_winters",
		params: map[string]interface{}{
			"alpha":  hw.alpha,
			"beta":   hw.beta,
			"gamma":  hw.gamma,
			"period": period,
		},
		fitted:    fitted,
		forecast:  forecast,
		stdErrors: growingStdErrors(stdError, config.Horizon),
	}.result(data, config)
}
