package models

import "time"

// UserProfile holds the questionnaire answers used as prompt context. The
// questionnaire flow itself lives outside this service; rows are read-only
// here.
type UserProfile struct {
	UserID          string `gorm:"primaryKey"`
	Name            string
	Age             int
	Motivation      string
	SleepQuality    string
	DepressionScore *int
	AnxietyScore    *int
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
