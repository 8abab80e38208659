package api

import "github.com/gofiber/fiber/v2"

func (handler *Handler) GetRecommendation(c *fiber.Ctx) error {
	recommendation, err := handler.recommendations.Get(c.Context(), currentUserID(c))
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(fiber.Map{"recommendation": recommendation})
}

func (handler *Handler) RefreshRecommendation(c *fiber.Ctx) error {
	recommendation, err := handler.recommendations.Refresh(c.Context(), currentUserID(c))
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(fiber.Map{"recommendation": recommendation})
}
