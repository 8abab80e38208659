package api

import (
	"strconv"
	"time"

	"github.com/animo-app/animo/internal/services"
	"github.com/gofiber/fiber/v2"
)

type moodEntryPayload struct {
	Score     *int    `json:"score"`
	Note      *string `json:"note"`
	Timestamp *int64  `json:"timestamp"`
}

func (handler *Handler) GetMoodEntries(c *fiber.Ctx) error {
	entries, err := handler.moods.ListEntries(c.Context(), currentUserID(c))
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(entries)
}

func (handler *Handler) CreateMoodEntry(c *fiber.Ctx) error {
	payload := moodEntryPayload{}
	if err := c.BodyParser(&payload); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if payload.Score == nil {
		return apiError(c, fiber.StatusBadRequest, "score is required")
	}

	note := ""
	if payload.Note != nil {
		note = *payload.Note
	}

	entry, err := handler.moods.CreateEntry(c.Context(), currentUserID(c), services.CreateMoodEntryInput{
		Score:     *payload.Score,
		Note:      note,
		Timestamp: payload.Timestamp,
	})
	if err != nil {
		return serviceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(entry)
}

func (handler *Handler) GetMoodEntriesByDateRange(c *fiber.Ctx) error {
	startMillis, err := parseRangeBound(c.Query("start"), false)
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid start date")
	}
	endMillis, err := parseRangeBound(c.Query("end"), true)
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid end date")
	}

	entries, err := handler.moods.ListEntriesBetween(c.Context(), currentUserID(c), startMillis, endMillis)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(entries)
}

func (handler *Handler) GetMoodEntry(c *fiber.Ctx) error {
	entry, err := handler.moods.GetEntry(c.Params("id"), currentUserID(c))
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(entry)
}

func (handler *Handler) UpdateMoodEntry(c *fiber.Ctx) error {
	payload := moodEntryPayload{}
	if err := c.BodyParser(&payload); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid request body")
	}

	entry, err := handler.moods.UpdateEntry(c.Context(), c.Params("id"), currentUserID(c), services.UpdateMoodEntryInput{
		Score:     payload.Score,
		Note:      payload.Note,
		Timestamp: payload.Timestamp,
	})
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(entry)
}

func (handler *Handler) DeleteMoodEntry(c *fiber.Ctx) error {
	if err := handler.moods.DeleteEntry(c.Context(), c.Params("id"), currentUserID(c)); err != nil {
		return serviceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// parseRangeBound accepts either epoch milliseconds or a YYYY-MM-DD date.
// Date-only end bounds are pushed to the end of the day.
func parseRangeBound(raw string, isEnd bool) (int64, error) {
	if millis, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return millis, nil
	}

	day, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return 0, err
	}
	if isEnd {
		return day.Add(24*time.Hour).UnixMilli() - 1, nil
	}
	return day.UnixMilli(), nil
}
