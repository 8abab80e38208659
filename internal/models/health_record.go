package models

import "time"

const (
	RecordTypeParcial = "PARCIAL"
	RecordTypeGlobal  = "GLOBAL"
)

// HealthRecord is an AI-generated report. PARCIAL records cover a fixed batch
// of mood entries and keep their membership for life; the single GLOBAL record
// per user is derived from the union of all PARCIAL memberships and is never
// edited directly.
type HealthRecord struct {
	ID              string    `gorm:"primaryKey" json:"id"`
	UserID          string    `gorm:"not null;index" json:"userId"`
	RecordType      string    `gorm:"not null" json:"recordType"`
	Content         string    `gorm:"not null" json:"content"`
	MoodEntryIDs    []string  `gorm:"serializer:json" json:"moodEntryIds"`
	Timestamp       int64     `gorm:"not null" json:"timestamp"`
	GenerationMonth string    `json:"generationMonth,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}
