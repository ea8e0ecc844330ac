package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/soltixdb/probacast/internal/models"
)

// ListFamilies lists the distribution families.
// GET /v1/distributions
func (h *Handler) ListFamilies(c *fiber.Ctx) error {
	return c.JSON(models.FamiliesResponse{Families: h.distributionService.Families()})
}

// EvaluateDistribution builds a table from the posted parameters and
// evaluates it.
// POST /v1/distributions/:family/evaluate
func (h *Handler) EvaluateDistribution(c *fiber.Ctx) error {
	var body models.EvaluateRequest
	if err := c.BodyParser(&body); err != nil {
		return invalidJSON(c, err)
	}

	result, err := h.distributionService.Evaluate(c.UserContext(), c.Params("family"), &body)
	if err != nil {
		return h.serviceError(c, err)
	}
	return c.JSON(result)
}
