package models

import "time"

// GenerationLog is the append-only ledger of report generation events. Rows
// survive deletion of the health record they point to, so monthly quota counts
// never go backwards.
type GenerationLog struct {
	ID              string    `gorm:"primaryKey" json:"id"`
	UserID          string    `gorm:"not null;index:idx_generation_user_month" json:"userId"`
	RecordType      string    `gorm:"not null" json:"recordType"`
	GenerationMonth string    `gorm:"not null;index:idx_generation_user_month" json:"generationMonth"`
	HealthRecordID  string    `gorm:"not null" json:"healthRecordId"`
	CreatedAt       time.Time `json:"createdAt"`
}
