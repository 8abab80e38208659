package db

import (
	"github.com/animo-app/animo/internal/models"
	"gorm.io/gorm"
)

type UserProfileRepository struct {
	database *gorm.DB
}

func NewUserProfileRepository(database *gorm.DB) *UserProfileRepository {
	return &UserProfileRepository{database: database}
}

func (repo *UserProfileRepository) FindByUser(userID string) (models.UserProfile, bool, error) {
	profile := models.UserProfile{}
	result := repo.database.
		Where("user_id = ?", userID).
		Limit(1).
		Find(&profile)
	if result.Error != nil {
		return models.UserProfile{}, false, result.Error
	}
	if result.RowsAffected == 0 {
		return models.UserProfile{}, false, nil
	}
	return profile, true, nil
}
