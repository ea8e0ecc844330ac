package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/soltixdb/probacast/internal/config"
	"github.com/soltixdb/probacast/internal/logging"
	"github.com/soltixdb/probacast/internal/services"
)

func testConfig() config.Config {
	cfg := *config.DefaultConfig()
	cfg.Forecast.MaxHorizon = 48
	cfg.Forecast.MaxSamples = 10
	cfg.Sampling.Seed = 1
	return cfg
}

// newTestApp registers the v1 routes on a bare app.
func newTestApp(t *testing.T, worker *services.ForecastWorker) (*fiber.App, *Handler) {
	t.Helper()
	h := New(logging.NewNop(), testConfig(), worker)

	app := fiber.New()
	app.Get("/v1/forecasters", h.ListForecasters)
	app.Post("/v1/forecast", h.Forecast)
	app.Post("/v1/jobs/forecast", h.SubmitForecastJob)
	app.Get("/v1/distributions", h.ListFamilies)
	app.Post("/v1/distributions/:family/evaluate", h.EvaluateDistribution)
	app.Get("/health", h.Health)
	return app, h
}

// doJSON sends body as JSON and decodes the response into out.
func doJSON(t *testing.T, app *fiber.App, method, path string, body interface{}, out interface{}) int {
	t.Helper()
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		payload, err := json.Marshal(b)
		if err != nil {
			t.Fatalf("Failed to marshal body: %v", err)
		}
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, path, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("Failed to perform request: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("Failed to decode response: %v", err)
		}
	}
	return resp.StatusCode
}

