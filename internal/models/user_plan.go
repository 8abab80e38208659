package models

const (
	PlanFree      = "FREE"
	PlanEssential = "ESSENTIAL"
	PlanPremium   = "PREMIUM"
)

type UserPlan struct {
	UserID   string `gorm:"primaryKey"`
	PlanType string `gorm:"not null;default:FREE"`
}

// MonthlyRecordLimit returns how many PARCIAL records a plan may generate per
// calendar month. -1 means unlimited.
func MonthlyRecordLimit(planType string) int {
	switch planType {
	case PlanPremium:
		return -1
	case PlanFree, PlanEssential:
		return 2
	default:
		return 2
	}
}
