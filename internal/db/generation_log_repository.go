package db

import (
	"github.com/animo-app/animo/internal/models"
	"gorm.io/gorm"
)

type GenerationLogRepository struct {
	database *gorm.DB
}

func NewGenerationLogRepository(database *gorm.DB) *GenerationLogRepository {
	return &GenerationLogRepository{database: database}
}

func (repo *GenerationLogRepository) CountByUserAndMonth(userID string, month string) (int64, error) {
	var count int64
	if err := repo.database.Model(&models.GenerationLog{}).
		Where("user_id = ? AND record_type = ? AND generation_month = ?", userID, models.RecordTypeParcial, month).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
