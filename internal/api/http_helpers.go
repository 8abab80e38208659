package api

import (
	"errors"
	"log"

	"github.com/animo-app/animo/internal/services"
	"github.com/gofiber/fiber/v2"
)

func (handler *Handler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

func apiError(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{"error": message})
}

// serviceError maps the service error taxonomy onto HTTP statuses. Eligibility
// refusals carry the full metadata so clients can render progress.
func serviceError(c *fiber.Ctx, err error) error {
	var ineligible *services.IneligibleError
	if errors.As(err, &ineligible) {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error":       ineligible.Error(),
			"eligibility": ineligible.Result,
		})
	}

	switch {
	case errors.Is(err, services.ErrRecordNotFound),
		errors.Is(err, services.ErrMoodEntryNotFound):
		return apiError(c, fiber.StatusNotFound, err.Error())
	case errors.Is(err, services.ErrInvalidOperation),
		errors.Is(err, services.ErrInvalidMoodScore),
		errors.Is(err, services.ErrMoodNoteTooLong),
		errors.Is(err, services.ErrInvalidDateRange):
		return apiError(c, fiber.StatusBadRequest, err.Error())
	}

	log.Printf("internal error on %s %s: %v", c.Method(), c.Path(), err)
	return apiError(c, fiber.StatusInternalServerError, "internal server error")
}
