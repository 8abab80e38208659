package models

import "time"

const (
	MinMoodScore = 0
	MaxMoodScore = 5

	MaxMoodNoteLength = 1024
)

type MoodEntry struct {
	ID         string    `gorm:"primaryKey" json:"id"`
	UserID     string    `gorm:"not null;index:idx_mood_user_timestamp" json:"userId"`
	Score      int       `gorm:"not null" json:"score"`
	Note       string    `json:"note"`
	Timestamp  int64     `gorm:"not null;index:idx_mood_user_timestamp" json:"timestamp"`
	AIAnalysis string    `json:"aiAnalysis,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

func IsValidMoodScore(score int) bool {
	return score >= MinMoodScore && score <= MaxMoodScore
}
