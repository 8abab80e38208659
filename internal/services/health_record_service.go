package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/animo-app/animo/internal/ai"
	"github.com/animo-app/animo/internal/cache"
	"github.com/animo-app/animo/internal/models"
	"github.com/google/uuid"
)

const (
	// MinNewMoods is the minimum number of unconsumed entries required
	// before a PARCIAL record may be generated.
	MinNewMoods = 7

	// MoodLookbackDays bounds the pool of entries considered "new". Entries
	// that age out of this window without being consumed stay out of every
	// future pool; they are still part of the global view once consumed.
	MoodLookbackDays = 5

	// RegenerationWindowDays is how far back regeneration reads, ending at
	// the record's creation time.
	RegenerationWindowDays = 30

	dayMillis = int64(24 * 60 * 60 * 1000)

	recordListCacheTTL   = 10 * time.Minute
	recordGlobalCacheTTL = 10 * time.Minute
)

type EligibilityResult struct {
	Allowed              bool   `json:"allowed"`
	Reason               string `json:"reason"`
	IsPremium            bool   `json:"isPremium"`
	NewMoodsCount        int    `json:"newMoodsCount"`
	RequiredMoods        int    `json:"requiredMoods"`
	GenerationsThisMonth int    `json:"generationsThisMonth"`
	MonthlyLimit         int    `json:"monthlyLimit"`
}

type RecordMoodReader interface {
	ListByUserSince(userID string, sinceMillis int64) ([]models.MoodEntry, error)
	ListByUserBetween(userID string, startMillis int64, endMillis int64) ([]models.MoodEntry, error)
	ListByIDsForUser(userID string, ids []string) ([]models.MoodEntry, error)
}

type RecordRepository interface {
	ListParcialByUser(userID string) ([]models.HealthRecord, error)
	ListByUser(userID string, limit int, includeGlobal bool) ([]models.HealthRecord, error)
	FindByIDForUser(recordID string, userID string) (models.HealthRecord, bool, error)
	FindGlobalByUser(userID string) (models.HealthRecord, bool, error)
	CreateWithGenerationLog(record *models.HealthRecord, logEntry *models.GenerationLog) error
	Create(record *models.HealthRecord) error
	Save(record *models.HealthRecord) error
	Delete(record *models.HealthRecord) error
	DeleteGlobalByUser(userID string) error
}

type GenerationLogReader interface {
	CountByUserAndMonth(userID string, month string) (int64, error)
}

type PlanReader interface {
	FindByUser(userID string) (models.UserPlan, error)
}

type ProfileReader interface {
	FindByUser(userID string) (models.UserProfile, bool, error)
}

// HealthRecordService owns every HealthRecord and GenerationLog mutation.
// Nothing else in the system writes those rows.
type HealthRecordService struct {
	moods       RecordMoodReader
	records     RecordRepository
	generations GenerationLogReader
	plans       PlanReader
	profiles    ProfileReader
	synthesizer ai.Synthesizer
	cache       *cache.Client
	locks       *ownerLocks
	now         func() time.Time
}

func NewHealthRecordService(
	moods RecordMoodReader,
	records RecordRepository,
	generations GenerationLogReader,
	plans PlanReader,
	profiles ProfileReader,
	synthesizer ai.Synthesizer,
	cacheClient *cache.Client,
) *HealthRecordService {
	return &HealthRecordService{
		moods:       moods,
		records:     records,
		generations: generations,
		plans:       plans,
		profiles:    profiles,
		synthesizer: synthesizer,
		cache:       cacheClient,
		locks:       newOwnerLocks(),
		now:         time.Now,
	}
}

// UnconsumedEntries returns the entries from the lookback window that no
// PARCIAL record has claimed yet, ascending by timestamp. A consumed id never
// re-enters the pool, so each entry feeds at most one PARCIAL narrative.
func (service *HealthRecordService) UnconsumedEntries(userID string, lookbackDays int) ([]models.MoodEntry, error) {
	cutoff := service.now().UnixMilli() - int64(lookbackDays)*dayMillis
	recent, err := service.moods.ListByUserSince(userID, cutoff)
	if err != nil {
		return nil, err
	}

	parcials, err := service.records.ListParcialByUser(userID)
	if err != nil {
		return nil, err
	}

	consumed := make(map[string]struct{})
	for _, record := range parcials {
		for _, id := range record.MoodEntryIDs {
			consumed[id] = struct{}{}
		}
	}

	unconsumed := make([]models.MoodEntry, 0, len(recent))
	for _, entry := range recent {
		if _, used := consumed[entry.ID]; used {
			continue
		}
		unconsumed = append(unconsumed, entry)
	}
	return unconsumed, nil
}

// CanGenerate evaluates the minimum-new-data rule before the plan quota, and
// always fills the metadata fields so callers can render progress either way.
func (service *HealthRecordService) CanGenerate(userID string) (EligibilityResult, error) {
	plan, err := service.plans.FindByUser(userID)
	if err != nil {
		return EligibilityResult{}, fmt.Errorf("load plan: %w", err)
	}
	isPremium := plan.PlanType == models.PlanPremium
	monthlyLimit := models.MonthlyRecordLimit(plan.PlanType)

	month := service.currentMonth()
	generations, err := service.generations.CountByUserAndMonth(userID, month)
	if err != nil {
		return EligibilityResult{}, fmt.Errorf("count generations: %w", err)
	}

	unconsumed, err := service.UnconsumedEntries(userID, MoodLookbackDays)
	if err != nil {
		return EligibilityResult{}, fmt.Errorf("load unconsumed entries: %w", err)
	}

	result := EligibilityResult{
		IsPremium:            isPremium,
		NewMoodsCount:        len(unconsumed),
		RequiredMoods:        MinNewMoods,
		GenerationsThisMonth: int(generations),
		MonthlyLimit:         monthlyLimit,
	}

	if result.NewMoodsCount < MinNewMoods {
		result.Reason = fmt.Sprintf(
			"You need at least %d new mood entries from the last %d days. You have %d.",
			MinNewMoods, MoodLookbackDays, result.NewMoodsCount,
		)
		return result, nil
	}

	if !isPremium {
		if result.GenerationsThisMonth >= monthlyLimit {
			result.Reason = fmt.Sprintf(
				"You reached the limit of %d records this month. Upgrade to Premium for unlimited records.",
				monthlyLimit,
			)
			return result, nil
		}
		result.Allowed = true
		result.Reason = fmt.Sprintf(
			"You can generate a new record (%d/%d this month).",
			result.GenerationsThisMonth, monthlyLimit,
		)
		return result, nil
	}

	result.Allowed = true
	result.Reason = "Premium plan - unlimited records."
	return result, nil
}

// Generate creates a new PARCIAL record from the unconsumed pool. The whole
// sequence runs under the owner's lock: eligibility is re-validated and the
// pool re-read there, so two concurrent calls cannot both pass the gate or
// claim the same entries.
func (service *HealthRecordService) Generate(ctx context.Context, userID string) (models.HealthRecord, error) {
	unlock := service.locks.Lock(userID)
	defer unlock()

	eligibility, err := service.CanGenerate(userID)
	if err != nil {
		return models.HealthRecord{}, err
	}
	if !eligibility.Allowed {
		return models.HealthRecord{}, newIneligibleError(eligibility)
	}

	pool, err := service.UnconsumedEntries(userID, MoodLookbackDays)
	if err != nil {
		return models.HealthRecord{}, err
	}

	profile := service.loadProfile(userID)
	content := service.synthesizeRecordContent(ctx, pool, profile, models.RecordTypeParcial, 0)

	entryIDs := make([]string, 0, len(pool))
	for _, entry := range pool {
		entryIDs = append(entryIDs, entry.ID)
	}

	now := service.now()
	record := models.HealthRecord{
		ID:              uuid.NewString(),
		UserID:          userID,
		RecordType:      models.RecordTypeParcial,
		Content:         content,
		MoodEntryIDs:    entryIDs,
		Timestamp:       now.UnixMilli(),
		GenerationMonth: service.currentMonth(),
	}
	logEntry := models.GenerationLog{
		ID:              uuid.NewString(),
		UserID:          userID,
		RecordType:      models.RecordTypeParcial,
		GenerationMonth: record.GenerationMonth,
	}

	if err := service.records.CreateWithGenerationLog(&record, &logEntry); err != nil {
		return models.HealthRecord{}, fmt.Errorf("persist record: %w", err)
	}

	if _, err := service.resyncGlobalLocked(ctx, userID); err != nil {
		return models.HealthRecord{}, fmt.Errorf("resync global record: %w", err)
	}

	service.invalidateRecordCache(ctx, userID)
	return record, nil
}

// ResyncGlobal recomputes the GLOBAL record from the current set of PARCIAL
// records. Idempotent in membership: with no intervening PARCIAL change the
// resulting MoodEntryIDs are identical across calls.
func (service *HealthRecordService) ResyncGlobal(ctx context.Context, userID string) (*models.HealthRecord, error) {
	unlock := service.locks.Lock(userID)
	defer unlock()

	record, err := service.resyncGlobalLocked(ctx, userID)
	if err != nil {
		return nil, err
	}
	service.invalidateRecordCache(ctx, userID)
	return record, nil
}

func (service *HealthRecordService) resyncGlobalLocked(ctx context.Context, userID string) (*models.HealthRecord, error) {
	parcials, err := service.records.ListParcialByUser(userID)
	if err != nil {
		return nil, err
	}

	if len(parcials) == 0 {
		if err := service.records.DeleteGlobalByUser(userID); err != nil {
			return nil, err
		}
		return nil, nil
	}

	seen := make(map[string]struct{})
	union := make([]string, 0)
	for _, record := range parcials {
		for _, id := range record.MoodEntryIDs {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			union = append(union, id)
		}
	}

	entries, err := service.moods.ListByIDsForUser(userID, union)
	if err != nil {
		return nil, err
	}

	profile := service.loadProfile(userID)
	content := service.synthesizeRecordContent(ctx, entries, profile, models.RecordTypeGlobal, len(parcials))

	now := service.now()
	existing, found, err := service.records.FindGlobalByUser(userID)
	if err != nil {
		return nil, err
	}
	if found {
		existing.Content = content
		existing.MoodEntryIDs = union
		existing.Timestamp = now.UnixMilli()
		if err := service.records.Save(&existing); err != nil {
			return nil, err
		}
		return &existing, nil
	}

	global := models.HealthRecord{
		ID:           uuid.NewString(),
		UserID:       userID,
		RecordType:   models.RecordTypeGlobal,
		Content:      content,
		MoodEntryIDs: union,
		Timestamp:    now.UnixMilli(),
	}
	if err := service.records.Create(&global); err != nil {
		return nil, err
	}
	return &global, nil
}

// DeleteParcial removes a PARCIAL record and resyncs the GLOBAL view.
// Deliberately, the generation-log row stays (the monthly quota slot is not
// restored) and the consumed entries are not released back into the pool.
func (service *HealthRecordService) DeleteParcial(ctx context.Context, recordID string, userID string) error {
	unlock := service.locks.Lock(userID)
	defer unlock()

	record, found, err := service.records.FindByIDForUser(recordID, userID)
	if err != nil {
		return err
	}
	if !found {
		return ErrRecordNotFound
	}
	if record.RecordType != models.RecordTypeParcial {
		return fmt.Errorf("%w: only parcial records can be deleted", ErrInvalidOperation)
	}

	if err := service.records.Delete(&record); err != nil {
		return err
	}

	if _, err := service.resyncGlobalLocked(ctx, userID); err != nil {
		return fmt.Errorf("resync global record: %w", err)
	}

	service.invalidateRecordCache(ctx, userID)
	return nil
}

// Regenerate re-synthesizes an existing record's content from the mood
// entries of the 30 days before its creation. Quota and consumption
// bookkeeping are untouched.
func (service *HealthRecordService) Regenerate(ctx context.Context, recordID string, userID string) (models.HealthRecord, error) {
	unlock := service.locks.Lock(userID)
	defer unlock()

	record, found, err := service.records.FindByIDForUser(recordID, userID)
	if err != nil {
		return models.HealthRecord{}, err
	}
	if !found {
		return models.HealthRecord{}, ErrRecordNotFound
	}

	windowEnd := record.CreatedAt.UnixMilli()
	windowStart := windowEnd - int64(RegenerationWindowDays)*dayMillis
	entries, err := service.moods.ListByUserBetween(userID, windowStart, windowEnd)
	if err != nil {
		return models.HealthRecord{}, err
	}
	if len(entries) == 0 {
		return models.HealthRecord{}, fmt.Errorf("%w: no mood data in the record's window", ErrInvalidOperation)
	}

	profile := service.loadProfile(userID)
	parcialCount := 0
	if record.RecordType == models.RecordTypeGlobal {
		parcials, err := service.records.ListParcialByUser(userID)
		if err != nil {
			return models.HealthRecord{}, err
		}
		parcialCount = len(parcials)
	}
	record.Content = service.synthesizeRecordContent(ctx, entries, profile, record.RecordType, parcialCount)
	record.Timestamp = service.now().UnixMilli()

	if err := service.records.Save(&record); err != nil {
		return models.HealthRecord{}, err
	}

	service.invalidateRecordCache(ctx, userID)
	return record, nil
}

func (service *HealthRecordService) GetRecords(ctx context.Context, userID string, limit int, includeGlobal bool) ([]models.HealthRecord, error) {
	if limit <= 0 {
		limit = 10
	}

	cacheKey := fmt.Sprintf("health-records:%s:%d:%t", userID, limit, includeGlobal)
	cached := make([]models.HealthRecord, 0)
	if service.cache.GetJSON(ctx, cacheKey, &cached) {
		return cached, nil
	}

	records, err := service.records.ListByUser(userID, limit, includeGlobal)
	if err != nil {
		return nil, err
	}
	service.cache.SetJSON(ctx, cacheKey, records, recordListCacheTTL)
	return records, nil
}

func (service *HealthRecordService) GetGlobalRecord(ctx context.Context, userID string) (*models.HealthRecord, error) {
	cacheKey := fmt.Sprintf("health-record:global:%s", userID)
	cached := models.HealthRecord{}
	if service.cache.GetJSON(ctx, cacheKey, &cached) {
		return &cached, nil
	}

	record, found, err := service.records.FindGlobalByUser(userID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	service.cache.SetJSON(ctx, cacheKey, record, recordGlobalCacheTTL)
	return &record, nil
}

func (service *HealthRecordService) GetRecord(recordID string, userID string) (models.HealthRecord, error) {
	record, found, err := service.records.FindByIDForUser(recordID, userID)
	if err != nil {
		return models.HealthRecord{}, err
	}
	if !found {
		return models.HealthRecord{}, ErrRecordNotFound
	}
	return record, nil
}

func (service *HealthRecordService) synthesizeRecordContent(
	ctx context.Context,
	entries []models.MoodEntry,
	profile *models.UserProfile,
	recordType string,
	parcialCount int,
) string {
	if service.synthesizer != nil {
		prompt := buildRecordPrompt(entries, profile, recordType)
		content, err := service.synthesizer.Synthesize(ctx, prompt)
		if err == nil {
			return content
		}
		log.Printf("record synthesis failed for type %s, using fallback: %v", recordType, err)
	}
	return fallbackRecordContent(entries, recordType, parcialCount)
}

func (service *HealthRecordService) loadProfile(userID string) *models.UserProfile {
	if service.profiles == nil {
		return nil
	}
	profile, found, err := service.profiles.FindByUser(userID)
	if err != nil {
		log.Printf("load profile for %s: %v", userID, err)
		return nil
	}
	if !found {
		return nil
	}
	return &profile
}

func (service *HealthRecordService) currentMonth() string {
	return service.now().UTC().Format("2006-01")
}

func (service *HealthRecordService) invalidateRecordCache(ctx context.Context, userID string) {
	service.cache.Invalidate(ctx,
		fmt.Sprintf("health-records:%s:*", userID),
		fmt.Sprintf("health-record:global:%s", userID),
	)
}
