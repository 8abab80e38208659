package services

import "errors"

var (
	ErrInsufficientData  = errors.New("not enough new mood entries")
	ErrQuotaExceeded     = errors.New("monthly record limit reached")
	ErrRecordNotFound    = errors.New("health record not found")
	ErrMoodEntryNotFound = errors.New("mood entry not found")
	ErrInvalidOperation  = errors.New("operation not allowed")
	ErrInvalidMoodScore  = errors.New("score must be between 0 and 5")
	ErrMoodNoteTooLong   = errors.New("note exceeds maximum length")
	ErrInvalidDateRange  = errors.New("invalid date range")
)

// IneligibleError reports a blocked record generation along with the full
// eligibility snapshot, so callers can render progress alongside the refusal.
type IneligibleError struct {
	Result EligibilityResult
	cause  error
}

func (e *IneligibleError) Error() string {
	return e.Result.Reason
}

func (e *IneligibleError) Unwrap() error {
	return e.cause
}

func newIneligibleError(result EligibilityResult) *IneligibleError {
	cause := ErrQuotaExceeded
	if result.NewMoodsCount < result.RequiredMoods {
		cause = ErrInsufficientData
	}
	return &IneligibleError{Result: result, cause: cause}
}
