package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/animo-app/animo/internal/ai"
	"github.com/animo-app/animo/internal/cache"
	"github.com/animo-app/animo/internal/models"
	"github.com/google/uuid"
)

const (
	moodListCacheTTL = 5 * time.Minute

	enrichmentTimeout = 90 * time.Second

	concerningMinEntries         = 5
	concerningAverageThreshold   = 2.0
	concerningLowScoreThreshold  = 2
	concerningConsecutiveLowDays = 3
)

type CreateMoodEntryInput struct {
	Score     int
	Note      string
	Timestamp *int64
}

type UpdateMoodEntryInput struct {
	Score     *int
	Note      *string
	Timestamp *int64
}

type MoodEntryRepository interface {
	ListByUser(userID string) ([]models.MoodEntry, error)
	ListByUserSince(userID string, sinceMillis int64) ([]models.MoodEntry, error)
	ListByUserBetween(userID string, startMillis int64, endMillis int64) ([]models.MoodEntry, error)
	FindByIDForUser(entryID string, userID string) (models.MoodEntry, bool, error)
	Create(entry *models.MoodEntry) error
	Save(entry *models.MoodEntry) error
	Delete(entry *models.MoodEntry) error
	UpdateAIAnalysis(entryID string, analysis string) error
}

// MoodService owns the mood ledger: CRUD plus the asynchronous AI enrichment
// of notes. Enrichment never blocks or fails a write.
type MoodService struct {
	entries     MoodEntryRepository
	synthesizer ai.Synthesizer
	cache       *cache.Client
	now         func() time.Time
}

func NewMoodService(entries MoodEntryRepository, synthesizer ai.Synthesizer, cacheClient *cache.Client) *MoodService {
	return &MoodService{
		entries:     entries,
		synthesizer: synthesizer,
		cache:       cacheClient,
		now:         time.Now,
	}
}

func (service *MoodService) ListEntries(ctx context.Context, userID string) ([]models.MoodEntry, error) {
	cacheKey := fmt.Sprintf("mood:entries:%s", userID)
	cached := make([]models.MoodEntry, 0)
	if service.cache.GetJSON(ctx, cacheKey, &cached) {
		return cached, nil
	}

	entries, err := service.entries.ListByUser(userID)
	if err != nil {
		return nil, err
	}
	service.cache.SetJSON(ctx, cacheKey, entries, moodListCacheTTL)
	return entries, nil
}

func (service *MoodService) ListEntriesBetween(ctx context.Context, userID string, startMillis int64, endMillis int64) ([]models.MoodEntry, error) {
	if startMillis > endMillis {
		return nil, ErrInvalidDateRange
	}

	cacheKey := fmt.Sprintf("mood:entries:%s:%d:%d", userID, startMillis, endMillis)
	cached := make([]models.MoodEntry, 0)
	if service.cache.GetJSON(ctx, cacheKey, &cached) {
		return cached, nil
	}

	entries, err := service.entries.ListByUserBetween(userID, startMillis, endMillis)
	if err != nil {
		return nil, err
	}
	service.cache.SetJSON(ctx, cacheKey, entries, moodListCacheTTL)
	return entries, nil
}

func (service *MoodService) GetEntry(entryID string, userID string) (models.MoodEntry, error) {
	entry, found, err := service.entries.FindByIDForUser(entryID, userID)
	if err != nil {
		return models.MoodEntry{}, err
	}
	if !found {
		return models.MoodEntry{}, ErrMoodEntryNotFound
	}
	return entry, nil
}

func (service *MoodService) CreateEntry(ctx context.Context, userID string, input CreateMoodEntryInput) (models.MoodEntry, error) {
	if err := validateMoodInput(input.Score, input.Note); err != nil {
		return models.MoodEntry{}, err
	}

	timestamp := service.now().UnixMilli()
	if input.Timestamp != nil {
		timestamp = *input.Timestamp
	}

	entry := models.MoodEntry{
		ID:        uuid.NewString(),
		UserID:    userID,
		Score:     input.Score,
		Note:      input.Note,
		Timestamp: timestamp,
	}
	if err := service.entries.Create(&entry); err != nil {
		return models.MoodEntry{}, err
	}

	service.invalidateMoodCache(ctx, userID)

	if strings.TrimSpace(entry.Note) != "" {
		service.enrichEntryAsync(entry.ID, entry.Note, entry.Score)
	}
	return entry, nil
}

func (service *MoodService) UpdateEntry(ctx context.Context, entryID string, userID string, input UpdateMoodEntryInput) (models.MoodEntry, error) {
	entry, err := service.GetEntry(entryID, userID)
	if err != nil {
		return models.MoodEntry{}, err
	}

	scoreChanged := input.Score != nil && *input.Score != entry.Score
	noteChanged := input.Note != nil && *input.Note != entry.Note

	if input.Score != nil {
		if !models.IsValidMoodScore(*input.Score) {
			return models.MoodEntry{}, ErrInvalidMoodScore
		}
		entry.Score = *input.Score
	}
	if input.Note != nil {
		if len([]rune(*input.Note)) > models.MaxMoodNoteLength {
			return models.MoodEntry{}, ErrMoodNoteTooLong
		}
		entry.Note = *input.Note
	}
	if input.Timestamp != nil {
		entry.Timestamp = *input.Timestamp
	}

	// A changed score or note invalidates the existing analysis; it is
	// regenerated asynchronously below.
	if scoreChanged || noteChanged {
		entry.AIAnalysis = ""
	}

	if err := service.entries.Save(&entry); err != nil {
		return models.MoodEntry{}, err
	}

	service.invalidateMoodCache(ctx, userID)

	if (scoreChanged || noteChanged) && strings.TrimSpace(entry.Note) != "" {
		service.enrichEntryAsync(entry.ID, entry.Note, entry.Score)
	}
	return entry, nil
}

func (service *MoodService) DeleteEntry(ctx context.Context, entryID string, userID string) error {
	entry, err := service.GetEntry(entryID, userID)
	if err != nil {
		return err
	}
	if err := service.entries.Delete(&entry); err != nil {
		return err
	}
	service.invalidateMoodCache(ctx, userID)
	return nil
}

// DailyAverage returns the mean score of the entries logged on the given UTC
// day, or 0 when the day has no entries.
func (service *MoodService) DailyAverage(userID string, day time.Time) (float64, error) {
	dayStart := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	startMillis := dayStart.UnixMilli()
	endMillis := dayStart.Add(24*time.Hour).UnixMilli() - 1

	entries, err := service.entries.ListByUserBetween(userID, startMillis, endMillis)
	if err != nil {
		return 0, err
	}
	if len(entries) == 0 {
		return 0, nil
	}

	total := 0
	for _, entry := range entries {
		total += entry.Score
	}
	return float64(total) / float64(len(entries)), nil
}

// HasConcerningPattern reports a sustained low mood over the window: either
// the average drops below 2, or at least 3 consecutive entries score 2 or
// lower. Fewer than 5 entries is not enough data to tell.
func (service *MoodService) HasConcerningPattern(userID string, days int) (bool, error) {
	cutoff := service.now().UnixMilli() - int64(days)*dayMillis
	entries, err := service.entries.ListByUserSince(userID, cutoff)
	if err != nil {
		return false, err
	}

	if len(entries) < concerningMinEntries {
		return false, nil
	}

	total := 0
	for _, entry := range entries {
		total += entry.Score
	}
	if float64(total)/float64(len(entries)) < concerningAverageThreshold {
		return true, nil
	}

	consecutiveLow := 0
	for _, entry := range entries {
		if entry.Score <= concerningLowScoreThreshold {
			consecutiveLow++
			if consecutiveLow >= concerningConsecutiveLowDays {
				return true, nil
			}
		} else {
			consecutiveLow = 0
		}
	}
	return false, nil
}

// EnrichEntry generates the complementary AI analysis for a note and stores
// it. Provider failures are logged and swallowed.
func (service *MoodService) EnrichEntry(ctx context.Context, entryID string, note string, score int) error {
	if service.synthesizer == nil {
		return nil
	}

	prompt := buildEnrichmentPrompt(note, score)
	analysis, err := service.synthesizer.Synthesize(ctx, prompt)
	if err != nil {
		return fmt.Errorf("enrich entry %s: %w", entryID, err)
	}
	return service.entries.UpdateAIAnalysis(entryID, analysis)
}

func (service *MoodService) enrichEntryAsync(entryID string, note string, score int) {
	if service.synthesizer == nil {
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), enrichmentTimeout)
		defer cancel()
		if err := service.EnrichEntry(ctx, entryID, note, score); err != nil {
			log.Printf("async enrichment: %v", err)
		}
	}()
}

func (service *MoodService) invalidateMoodCache(ctx context.Context, userID string) {
	service.cache.Invalidate(ctx, fmt.Sprintf("mood:entries:%s*", userID))
}

func validateMoodInput(score int, note string) error {
	if !models.IsValidMoodScore(score) {
		return ErrInvalidMoodScore
	}
	if len([]rune(note)) > models.MaxMoodNoteLength {
		return ErrMoodNoteTooLong
	}
	return nil
}

var moodDescriptions = []string{
	"very bad",
	"bad",
	"neutral/ok",
	"good",
	"very good",
	"excellent",
}

func buildEnrichmentPrompt(note string, score int) string {
	moodText := "neutral"
	if score >= 0 && score < len(moodDescriptions) {
		moodText = moodDescriptions[score]
	}

	return fmt.Sprintf(`You are an empathetic, experienced psychologist. A patient logged their mood as "%s" (%d/5) with the following note:

%q

Expand this note into a more detailed, structured complementary analysis (200 words maximum). Include:
- Validation of the expressed feeling
- Insights into possible causes or contexts
- One constructive or encouraging observation

Use an empathetic, professional tone. Address the patient directly ("you"). Use markdown for formatting if needed.`, moodText, score, note)
}
