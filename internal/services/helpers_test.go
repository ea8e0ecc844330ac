package services

import (
	"github.com/soltixdb/probacast/internal/analytics/forecast/forecasttest"
	"github.com/soltixdb/probacast/internal/config"
	"github.com/soltixdb/probacast/internal/logging"
)

func testForecastConfig() config.ForecastConfig {
	cfg := config.DefaultConfig().Forecast
	cfg.MaxHorizon = 48
	cfg.MaxSamples = 20
	return cfg
}

func newTestForecastService() *ForecastService {
	return NewForecastService(logging.NewNop(), testForecastConfig(), config.SamplingConfig{Seed: 7})
}

func newTestRequest(n int) *ForecastRequest {
	return &ForecastRequest{Series: forecasttest.Series(n)}
}
