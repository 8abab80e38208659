package api

import "github.com/gofiber/fiber/v2"

func RegisterRoutes(app *fiber.App, handler *Handler) {
	app.Get("/healthz", handler.Health)

	api := app.Group("/api", handler.AuthRequired)

	moods := api.Group("/mood-entries")
	moods.Get("", handler.GetMoodEntries)
	moods.Post("", handler.CreateMoodEntry)
	moods.Get("/date-range", handler.GetMoodEntriesByDateRange)
	moods.Get("/:id", handler.GetMoodEntry)
	moods.Put("/:id", handler.UpdateMoodEntry)
	moods.Delete("/:id", handler.DeleteMoodEntry)

	patterns := api.Group("/mood-patterns")
	patterns.Get("/daily-average", handler.GetDailyAverage)
	patterns.Get("/concerning", handler.GetConcerningPattern)

	records := api.Group("/health-records")
	records.Get("", handler.GetHealthRecords)
	records.Post("", handler.GenerateHealthRecord)
	records.Get("/can-generate", handler.CanGenerateHealthRecord)
	records.Get("/global", handler.GetGlobalHealthRecord)
	records.Get("/:id", handler.GetHealthRecord)
	records.Delete("/:id", handler.DeleteHealthRecord)
	records.Post("/:id/regenerate", handler.RegenerateHealthRecord)

	recommendations := api.Group("/recommendations")
	recommendations.Get("", handler.GetRecommendation)
	recommendations.Post("/refresh", handler.RefreshRecommendation)
}
