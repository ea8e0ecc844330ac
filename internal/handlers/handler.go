package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/soltixdb/probacast/internal/config"
	"github.com/soltixdb/probacast/internal/logging"
	"github.com/soltixdb/probacast/internal/models"
	"github.com/soltixdb/probacast/internal/services"
)

// Version is reported by the health endpoint.
const Version = "1.0.0"

// Handler contains all HTTP handlers
type Handler struct {
	logger *logging.Logger
	cfg    config.Config

	forecastService     *services.ForecastService
	distributionService *services.DistributionService
	worker              *services.ForecastWorker // nil when jobs are disabled
}

// New creates a new handler instance. worker may be nil.
func New(logger *logging.Logger, cfg config.Config, worker *services.ForecastWorker) *Handler {
	return &Handler{
		logger:              logger,
		cfg:                 cfg,
		forecastService:     services.NewForecastService(logger, cfg.Forecast, cfg.Sampling),
		distributionService: services.NewDistributionService(logger, cfg.Forecast, cfg.Sampling),
		worker:              worker,
	}
}

// statusFor maps service error codes to HTTP statuses.
func statusFor(code string) int {
	switch code {
	case services.CodeInvalidRequest, services.CodeInvalidSeries, services.CodeInvalidMethod,
		services.CodeInvalidHorizon, services.CodeInvalidSamples, services.CodeInvalidProbability,
		services.CodeShapeMismatch, services.CodeInvalidParameter, services.CodePositionOutOfRange,
		services.CodeInvalidDistribution:
		return fiber.StatusBadRequest
	case services.CodeInsufficientData:
		return fiber.StatusUnprocessableEntity
	case services.CodeJobsDisabled, services.CodePublishFailed:
		return fiber.StatusServiceUnavailable
	default:
		return fiber.StatusInternalServerError
	}
}

// serviceError writes err as an ErrorResponse.
func (h *Handler) serviceError(c *fiber.Ctx, err error) error {
	svcErr := services.AsServiceError(err, "INTERNAL_ERROR")
	status := statusFor(svcErr.Code)
	if status >= fiber.StatusInternalServerError {
		logging.FromContext(c.UserContext()).Error("Request failed", "path", c.Path(), "code", svcErr.Code, "error", err)
	}
	return c.Status(status).JSON(models.ErrorResponse{
		Error: models.ErrorDetail{
			Code:      svcErr.Code,
			Message:   svcErr.Message,
			Details:   svcErr.Details,
			RequestID: logging.RequestID(c.UserContext()),
		},
	})
}

// invalidJSON answers a body that failed to parse.
func invalidJSON(c *fiber.Ctx, err error) error {
	return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{
		Error: models.ErrorDetail{
			Code:      "INVALID_JSON",
			Message:   "Failed to parse JSON body",
			Details:   map[string]interface{}{"error": err.Error()},
			RequestID: logging.RequestID(c.UserContext()),
		},
	})
}
