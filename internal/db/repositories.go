package db

import "gorm.io/gorm"

type Repositories struct {
	MoodEntries    *MoodEntryRepository
	HealthRecords  *HealthRecordRepository
	GenerationLogs *GenerationLogRepository
	UserPlans      *UserPlanRepository
	UserProfiles   *UserProfileRepository
}

func NewRepositories(database *gorm.DB) *Repositories {
	return &Repositories{
		MoodEntries:    NewMoodEntryRepository(database),
		HealthRecords:  NewHealthRecordRepository(database),
		GenerationLogs: NewGenerationLogRepository(database),
		UserPlans:      NewUserPlanRepository(database),
		UserProfiles:   NewUserProfileRepository(database),
	}
}
