package db

import (
	"github.com/animo-app/animo/internal/models"
	"gorm.io/gorm"
)

type HealthRecordRepository struct {
	database *gorm.DB
}

func NewHealthRecordRepository(database *gorm.DB) *HealthRecordRepository {
	return &HealthRecordRepository{database: database}
}

func (repo *HealthRecordRepository) ListParcialByUser(userID string) ([]models.HealthRecord, error) {
	records := make([]models.HealthRecord, 0)
	if err := repo.database.
		Where("user_id = ? AND record_type = ?", userID, models.RecordTypeParcial).
		Order("created_at ASC, id ASC").
		Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

func (repo *HealthRecordRepository) ListByUser(userID string, limit int, includeGlobal bool) ([]models.HealthRecord, error) {
	query := repo.database.Where("user_id = ?", userID)
	if !includeGlobal {
		query = query.Where("record_type = ?", models.RecordTypeParcial)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}

	records := make([]models.HealthRecord, 0)
	if err := query.Order("created_at DESC, id DESC").Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

func (repo *HealthRecordRepository) FindByIDForUser(recordID string, userID string) (models.HealthRecord, bool, error) {
	record := models.HealthRecord{}
	result := repo.database.
		Where("id = ? AND user_id = ?", recordID, userID).
		Limit(1).
		Find(&record)
	if result.Error != nil {
		return models.HealthRecord{}, false, result.Error
	}
	if result.RowsAffected == 0 {
		return models.HealthRecord{}, false, nil
	}
	return record, true, nil
}

func (repo *HealthRecordRepository) FindGlobalByUser(userID string) (models.HealthRecord, bool, error) {
	record := models.HealthRecord{}
	result := repo.database.
		Where("user_id = ? AND record_type = ?", userID, models.RecordTypeGlobal).
		Order("updated_at DESC").
		Limit(1).
		Find(&record)
	if result.Error != nil {
		return models.HealthRecord{}, false, result.Error
	}
	if result.RowsAffected == 0 {
		return models.HealthRecord{}, false, nil
	}
	return record, true, nil
}

// CreateWithGenerationLog persists a new PARCIAL record together with its
// audit-log row. Both land or neither does.
func (repo *HealthRecordRepository) CreateWithGenerationLog(record *models.HealthRecord, logEntry *models.GenerationLog) error {
	return repo.database.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(record).Error; err != nil {
			return err
		}
		logEntry.HealthRecordID = record.ID
		return tx.Create(logEntry).Error
	})
}

func (repo *HealthRecordRepository) Create(record *models.HealthRecord) error {
	return repo.database.Create(record).Error
}

func (repo *HealthRecordRepository) Save(record *models.HealthRecord) error {
	return repo.database.Save(record).Error
}

func (repo *HealthRecordRepository) Delete(record *models.HealthRecord) error {
	return repo.database.Delete(record).Error
}

func (repo *HealthRecordRepository) DeleteGlobalByUser(userID string) error {
	return repo.database.
		Where("user_id = ? AND record_type = ?", userID, models.RecordTypeGlobal).
		Delete(&models.HealthRecord{}).Error
}
