package db

import (
	"github.com/animo-app/animo/internal/models"
	"gorm.io/gorm"
)

type UserPlanRepository struct {
	database *gorm.DB
}

func NewUserPlanRepository(database *gorm.DB) *UserPlanRepository {
	return &UserPlanRepository{database: database}
}

// FindByUser returns the user's plan, defaulting to FREE when no row exists.
func (repo *UserPlanRepository) FindByUser(userID string) (models.UserPlan, error) {
	plan := models.UserPlan{}
	result := repo.database.
		Where("user_id = ?", userID).
		Limit(1).
		Find(&plan)
	if result.Error != nil {
		return models.UserPlan{}, result.Error
	}
	if result.RowsAffected == 0 {
		return models.UserPlan{UserID: userID, PlanType: models.PlanFree}, nil
	}
	return plan, nil
}
