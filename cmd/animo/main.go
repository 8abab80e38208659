package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/animo-app/animo/internal/ai"
	"github.com/animo-app/animo/internal/api"
	"github.com/animo-app/animo/internal/cache"
	"github.com/animo-app/animo/internal/db"
	"github.com/animo-app/animo/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

func main() {
	secretKey := getEnv("SECRET_KEY", "change_me_in_production")
	dbPath := getEnv("DB_PATH", filepath.Join("data", "animo.db"))
	port := getEnv("PORT", "8080")
	geminiKey := os.Getenv("GEMINI_API_KEY")
	geminiModel := os.Getenv("GEMINI_MODEL")
	redisURL := os.Getenv("REDIS_URL")

	database, err := db.OpenSQLite(dbPath)
	if err != nil {
		log.Fatalf("database init failed: %v", err)
	}

	cacheClient, err := cache.New(redisURL)
	if err != nil {
		log.Fatalf("cache init failed: %v", err)
	}
	defer cacheClient.Close()

	var synthesizer ai.Synthesizer
	if geminiKey != "" {
		gemini, err := ai.NewGeminiClient(context.Background(), geminiKey, geminiModel)
		if err != nil {
			log.Fatalf("gemini init failed: %v", err)
		}
		synthesizer = gemini
	} else {
		log.Printf("GEMINI_API_KEY not set, serving fallback content only")
	}

	repos := db.NewRepositories(database)
	moodService := services.NewMoodService(repos.MoodEntries, synthesizer, cacheClient)
	recordService := services.NewHealthRecordService(
		repos.MoodEntries,
		repos.HealthRecords,
		repos.GenerationLogs,
		repos.UserPlans,
		repos.UserProfiles,
		synthesizer,
		cacheClient,
	)
	recommendationService := services.NewRecommendationService(repos.MoodEntries, repos.UserProfiles, synthesizer, cacheClient)

	handler := api.NewHandler(secretKey, moodService, recordService, recommendationService)

	app := fiber.New(fiber.Config{
		AppName:               "Animo",
		DisableStartupMessage: true,
	})

	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(compress.New())

	api.RegisterRoutes(app, handler)

	sigCtx, stopSignals := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stopSignals()

	go func() {
		<-sigCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			log.Printf("server shutdown failed: %v", err)
		}
	}()

	log.Printf("Animo listening on http://0.0.0.0:%s (db: %s)", port, dbPath)
	if err := app.Listen(":" + port); err != nil {
		log.Fatalf("server exited: %v", err)
	}
}

func getEnv(key string, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}
