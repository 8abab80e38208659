package api

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

const defaultConcerningWindowDays = 7

func (handler *Handler) GetDailyAverage(c *fiber.Ctx) error {
	day, err := time.Parse("2006-01-02", c.Query("date"))
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
	}

	average, err := handler.moods.DailyAverage(currentUserID(c), day)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(fiber.Map{"date": c.Query("date"), "average": average})
}

func (handler *Handler) GetConcerningPattern(c *fiber.Ctx) error {
	days := c.QueryInt("days", defaultConcerningWindowDays)
	if days <= 0 {
		days = defaultConcerningWindowDays
	}

	concerning, err := handler.moods.HasConcerningPattern(currentUserID(c), days)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(fiber.Map{"concerning": concerning, "days": days})
}
