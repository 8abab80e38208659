package api

import (
	"github.com/animo-app/animo/internal/services"
)

type Handler struct {
	secretKey       []byte
	moods           *services.MoodService
	records         *services.HealthRecordService
	recommendations *services.RecommendationService
}

func NewHandler(
	secretKey string,
	moods *services.MoodService,
	records *services.HealthRecordService,
	recommendations *services.RecommendationService,
) *Handler {
	return &Handler{
		secretKey:       []byte(secretKey),
		moods:           moods,
		records:         records,
		recommendations: recommendations,
	}
}
