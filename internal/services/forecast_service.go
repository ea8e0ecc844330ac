package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"strconv"
	"strings"
	"time"

	"github.com/soltixdb/probacast/internal/analytics"
	"github.com/soltixdb/probacast/internal/analytics/forecast"
	"github.com/soltixdb/probacast/internal/config"
	"github.com/soltixdb/probacast/internal/logging"
)

// ForecastService runs forecasts over request-supplied series.
type ForecastService struct {
	logger   *logging.Logger
	cfg      config.ForecastConfig
	sampling config.SamplingConfig
}

// NewForecastService creates a new ForecastService
func NewForecastService(logger *logging.Logger, cfg config.ForecastConfig, sampling config.SamplingConfig) *ForecastService {
	return &ForecastService{
		logger:   logger,
		cfg:      cfg,
		sampling: sampling,
	}
}

// ForecastRequest represents a forecast request. Zero values take the
// configured defaults.
type ForecastRequest struct {
	Series         []forecast.DataPoint `json:"series"`
	Method         string               `json:"method,omitempty"`
	Horizon        int                  `json:"horizon,omitempty"`
	Field          string               `json:"field,omitempty"`
	SeasonalPeriod int                  `json:"seasonal_period,omitempty"`
	Interval       string               `json:"interval,omitempty"` // Go duration or 1d/1w; empty infers from the series
	Confidence     float64              `json:"confidence,omitempty"`
	Quantiles      []float64            `json:"quantiles,omitempty"`
	Coverages      []float64            `json:"coverages,omitempty"`
	Samples        int                  `json:"samples,omitempty"` // sample paths to draw
	Seed           uint64               `json:"seed,omitempty"`
}

// Band is a central prediction interval.
type Band struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
}

// ForecastPrediction is one horizon step of the predictive distribution.
type ForecastPrediction struct {
	Time       string             `json:"time"`
	Value      float64            `json:"value"`
	LowerBound float64            `json:"lower_bound"`
	UpperBound float64            `json:"upper_bound"`
	StdDev     float64            `json:"std_dev"`
	Quantiles  map[string]float64 `json:"quantiles,omitempty"`
	Intervals  map[string]Band    `json:"intervals,omitempty"`
}

// ForecastResponse represents the complete forecast response
type ForecastResponse struct {
	Method      string               `json:"method"`
	Field       string               `json:"field"`
	Confidence  float64              `json:"confidence"`
	Predictions []ForecastPrediction `json:"predictions"`
	Samples     [][]float64          `json:"samples,omitempty"` // [draw][step]
	ModelInfo   forecast.ModelInfo   `json:"model_info"`

	// Result keeps the predictive distribution for in-process callers.
	Result *forecast.ForecastResult `json:"-"`
}

// Defaults returns the configured forecast defaults.
func (s *ForecastService) Defaults() config.ForecastConfig {
	return s.cfg
}

// Execute validates req, forecasts, and reads predictions, intervals,
// quantiles and sample draws off the predictive distribution.
func (s *ForecastService) Execute(ctx context.Context, req *ForecastRequest) (*ForecastResponse, error) {
	start := time.Now()
	logger := s.logger.WithContext(ctx)

	resolved, err := s.resolve(req)
	if err != nil {
		return nil, err
	}

	forecaster, err := forecast.GetForecaster(resolved.Method)
	if err != nil {
		return nil, NewServiceErrorWithDetails(CodeInvalidMethod, err.Error(), map[string]interface{}{
			"available_methods": forecast.ListForecasters(),
		})
	}

	interval, err := parseInterval(resolved.Interval)
	if err != nil {
		return nil, NewServiceError(CodeInvalidRequest, err.Error())
	}

	fc := forecast.DefaultForecastConfig()
	fc.Horizon = resolved.Horizon
	fc.Field = resolved.Field
	fc.SeasonalPeriod = resolved.SeasonalPeriod
	fc.Interval = interval
	fc.Confidence = resolved.Confidence
	fc.MinDataPoints = s.cfg.MinDataPoints
	fc.Source = s.source(resolved.Seed)

	result, err := forecaster.Forecast(resolved.Series, fc)
	if err != nil {
		if errors.Is(err, forecast.ErrInsufficientData) {
			return nil, NewServiceErrorWithDetails(CodeInsufficientData, err.Error(), map[string]interface{}{
				"min_data_points": s.cfg.MinDataPoints,
			})
		}
		return nil, NewServiceError(CodeForecastFailed, err.Error())
	}

	resp, err := s.buildResponse(resolved, result)
	if err != nil {
		return nil, err
	}

	logger.Info("Forecast completed",
		"method", resolved.Method,
		"algorithm", result.ModelInfo.Algorithm,
		"horizon", resolved.Horizon,
		"data_points", len(resolved.Series),
		"samples", resolved.Samples,
		"latency_ms", time.Since(start).Milliseconds())

	return resp, nil
}

// resolve applies defaults and limits, returning a copy of req.
func (s *ForecastService) resolve(req *ForecastRequest) (ForecastRequest, error) {
	r := *req
	if len(r.Series) == 0 {
		return r, NewServiceError(CodeInvalidSeries, "series is required")
	}
	if !analytics.TimeSeriesData(r.Series).Sorted() {
		return r, NewServiceError(CodeInvalidSeries, "series timestamps must be strictly increasing")
	}

	if r.Method == "" {
		r.Method = s.cfg.DefaultMethod
	}
	if r.Horizon == 0 {
		r.Horizon = s.cfg.Horizon
	}
	if r.Horizon < 0 || r.Horizon > s.cfg.MaxHorizon {
		return r, NewServiceErrorWithDetails(CodeInvalidHorizon,
			fmt.Sprintf("horizon must be between 1 and %d", s.cfg.MaxHorizon),
			map[string]interface{}{"horizon": r.Horizon})
	}
	if r.Field == "" {
		r.Field = forecast.DefaultField
	}
	if r.SeasonalPeriod <= 0 {
		r.SeasonalPeriod = s.cfg.SeasonalPeriod
	}
	if r.Confidence == 0 {
		r.Confidence = s.cfg.Confidence
	}
	if !(r.Confidence > 0 && r.Confidence < 1) {
		return r, NewServiceError(CodeInvalidProbability, fmt.Sprintf("confidence must be in (0, 1), got %v", r.Confidence))
	}
	if r.Quantiles == nil {
		r.Quantiles = s.cfg.Quantiles
	}
	if r.Coverages == nil {
		r.Coverages = s.cfg.Coverages
	}
	// 0 and 1 put a bound at infinity, which has no JSON encoding
	for _, q := range r.Quantiles {
		if !(q > 0 && q < 1) {
			return r, NewServiceError(CodeInvalidProbability, fmt.Sprintf("quantiles must be in (0, 1), got %v", q))
		}
	}
	for _, c := range r.Coverages {
		if !(c >= 0 && c < 1) {
			return r, NewServiceError(CodeInvalidProbability, fmt.Sprintf("coverages must be in [0, 1), got %v", c))
		}
	}
	if r.Samples < 0 || r.Samples > s.cfg.MaxSamples {
		return r, NewServiceErrorWithDetails(CodeInvalidSamples,
			fmt.Sprintf("samples must be between 0 and %d", s.cfg.MaxSamples),
			map[string]interface{}{"samples": r.Samples})
	}
	return r, nil
}

// source picks the request seed, then the configured seed.
func (s *ForecastService) source(seed uint64) rand.Source {
	if seed != 0 {
		return config.SamplingConfig{Seed: seed}.Source()
	}
	return s.sampling.Source()
}

func (s *ForecastService) buildResponse(req ForecastRequest, result *forecast.ForecastResult) (*ForecastResponse, error) {
	variance, err := result.PredictVar()
	if err != nil {
		return nil, NewServiceError(CodeForecastFailed, err.Error())
	}
	intervals, err := result.PredictInterval(req.Coverages)
	if err != nil {
		return nil, distributionError(err)
	}
	quantiles, err := result.PredictQuantiles(req.Quantiles)
	if err != nil {
		return nil, distributionError(err)
	}

	predictions := make([]ForecastPrediction, len(result.Predictions))
	for i, p := range result.Predictions {
		pred := ForecastPrediction{
			Time:       p.Time.Format(time.RFC3339),
			Value:      p.Value,
			LowerBound: p.LowerBound,
			UpperBound: p.UpperBound,
			StdDev:     math.Sqrt(variance.At(i, 0)),
		}
		if len(req.Quantiles) > 0 {
			pred.Quantiles = make(map[string]float64, len(req.Quantiles))
			for k, a := range req.Quantiles {
				pred.Quantiles[levelKey(a)] = quantiles.At(i, k)
			}
		}
		if len(req.Coverages) > 0 {
			pred.Intervals = make(map[string]Band, len(req.Coverages))
			for k, c := range req.Coverages {
				pred.Intervals[levelKey(c)] = Band{Lower: intervals.At(i, 2*k), Upper: intervals.At(i, 2*k+1)}
			}
		}
		if !finite(pred.Value, pred.LowerBound, pred.UpperBound, pred.StdDev) {
			return nil, NewServiceError(CodeForecastFailed, fmt.Sprintf("forecast step %d is not finite", i+1))
		}
		predictions[i] = pred
	}

	resp := &ForecastResponse{
		Method:      req.Method,
		Field:       req.Field,
		Confidence:  req.Confidence,
		Predictions: predictions,
		ModelInfo:   result.ModelInfo,
		Result:      result,
	}

	if req.Samples > 0 {
		set, err := result.Distribution.SampleN(req.Samples)
		if err != nil {
			return nil, distributionError(err)
		}
		resp.Samples = make([][]float64, set.Len())
		for k, d := range set.Draws() {
			resp.Samples[k] = d.Col(0)
		}
	}
	return resp, nil
}

// finite reports whether every value has a JSON encoding.
func finite(values ...float64) bool {
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// levelKey formats a probability level as a JSON object key.
func levelKey(p float64) string {
	return strconv.FormatFloat(p, 'g', -1, 64)
}

// parseInterval accepts Go durations plus the day and week suffixes.
func parseInterval(s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	for suffix, unit := range map[string]time.Duration{"d": 24 * time.Hour, "w": 7 * 24 * time.Hour} {
		if n, ok := strings.CutSuffix(s, suffix); ok {
			v, err := strconv.Atoi(n)
			if err != nil || v <= 0 {
				return 0, fmt.Errorf("invalid interval %q", s)
			}
			return time.Duration(v) * unit, nil
		}
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid interval %q", s)
	}
	return d, nil
}
