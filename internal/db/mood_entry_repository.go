package db

import (
	"github.com/animo-app/animo/internal/models"
	"gorm.io/gorm"
)

type MoodEntryRepository struct {
	database *gorm.DB
}

func NewMoodEntryRepository(database *gorm.DB) *MoodEntryRepository {
	return &MoodEntryRepository{database: database}
}

func (repo *MoodEntryRepository) ListByUser(userID string) ([]models.MoodEntry, error) {
	entries := make([]models.MoodEntry, 0)
	if err := repo.database.
		Where("user_id = ?", userID).
		Order("timestamp DESC, id DESC").
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (repo *MoodEntryRepository) ListByUserSince(userID string, sinceMillis int64) ([]models.MoodEntry, error) {
	entries := make([]models.MoodEntry, 0)
	if err := repo.database.
		Where("user_id = ? AND timestamp >= ?", userID, sinceMillis).
		Order("timestamp ASC, id ASC").
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (repo *MoodEntryRepository) ListByUserBetween(userID string, startMillis int64, endMillis int64) ([]models.MoodEntry, error) {
	entries := make([]models.MoodEntry, 0)
	if err := repo.database.
		Where("user_id = ? AND timestamp >= ? AND timestamp <= ?", userID, startMillis, endMillis).
		Order("timestamp ASC, id ASC").
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (repo *MoodEntryRepository) ListByIDsForUser(userID string, ids []string) ([]models.MoodEntry, error) {
	entries := make([]models.MoodEntry, 0)
	if len(ids) == 0 {
		return entries, nil
	}
	if err := repo.database.
		Where("user_id = ? AND id IN ?", userID, ids).
		Order("timestamp ASC, id ASC").
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (repo *MoodEntryRepository) FindByIDForUser(entryID string, userID string) (models.MoodEntry, bool, error) {
	entry := models.MoodEntry{}
	result := repo.database.
		Where("id = ? AND user_id = ?", entryID, userID).
		Limit(1).
		Find(&entry)
	if result.Error != nil {
		return models.MoodEntry{}, false, result.Error
	}
	if result.RowsAffected == 0 {
		return models.MoodEntry{}, false, nil
	}
	return entry, true, nil
}

func (repo *MoodEntryRepository) Create(entry *models.MoodEntry) error {
	return repo.database.Create(entry).Error
}

func (repo *MoodEntryRepository) Save(entry *models.MoodEntry) error {
	return repo.database.Save(entry).Error
}

func (repo *MoodEntryRepository) Delete(entry *models.MoodEntry) error {
	return repo.database.Delete(entry).Error
}

func (repo *MoodEntryRepository) UpdateAIAnalysis(entryID string, analysis string) error {
	return repo.database.Model(&models.MoodEntry{}).
		Where("id = ?", entryID).
		Update("ai_analysis", analysis).Error
}
