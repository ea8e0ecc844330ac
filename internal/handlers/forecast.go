package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/soltixdb/probacast/internal/analytics/forecast"
	"github.com/soltixdb/probacast/internal/models"
	"github.com/soltixdb/probacast/internal/services"
)

// Forecast runs a forecast over the series in the request body.
// POST /v1/forecast
func (h *Handler) Forecast(c *fiber.Ctx) error {
	var body models.ForecastRequest
	if err := c.BodyParser(&body); err != nil {
		return invalidJSON(c, err)
	}

	result, err := h.forecastService.Execute(c.UserContext(), &body)
	if err != nil {
		return h.serviceError(c, err)
	}
	return c.JSON(result)
}

// ListForecasters lists the registered methods and the request limits.
// GET /v1/forecasters
func (h *Handler) ListForecasters(c *fiber.Ctx) error {
	defaults := h.forecastService.Defaults()
	return c.JSON(models.ForecastersResponse{
		Methods:       forecast.ListForecasters(),
		DefaultMethod: defaults.DefaultMethod,
		MaxHorizon:    defaults.MaxHorizon,
		MaxSamples:    defaults.MaxSamples,
	})
}

// SubmitForecastJob queues a forecast on the job broker.
// POST /v1/jobs/forecast
func (h *Handler) SubmitForecastJob(c *fiber.Ctx) error {
	if h.worker == nil {
		return h.serviceError(c, services.NewServiceError(services.CodeJobsDisabled, "asynchronous jobs are not enabled"))
	}

	var body models.ForecastRequest
	if err := c.BodyParser(&body); err != nil {
		return invalidJSON(c, err)
	}
	if len(body.Series) == 0 {
		return h.serviceError(c, services.NewServiceError(services.CodeInvalidSeries, "series is required"))
	}

	id, err := h.worker.Submit(c.UserContext(), body)
	if err != nil {
		return h.serviceError(c, err)
	}
	return c.Status(fiber.StatusAccepted).JSON(models.JobAcceptedResponse{
		JobID:   id,
		Status:  "queued",
		Subject: h.cfg.Jobs.ResultSubject,
	})
}
