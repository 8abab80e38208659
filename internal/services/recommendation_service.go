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
)

const (
	recommendationCacheTTL     = 24 * time.Hour
	recommendationLookbackDays = 14
	recommendationMinEntries   = 7
)

// RecommendationService produces one personalized well-being recommendation
// per user per day, derived from the recent mood history.
type RecommendationService struct {
	moods       RecordMoodReader
	profiles    ProfileReader
	synthesizer ai.Synthesizer
	cache       *cache.Client
	now         func() time.Time
}

func NewRecommendationService(
	moods RecordMoodReader,
	profiles ProfileReader,
	synthesizer ai.Synthesizer,
	cacheClient *cache.Client,
) *RecommendationService {
	return &RecommendationService{
		moods:       moods,
		profiles:    profiles,
		synthesizer: synthesizer,
		cache:       cacheClient,
		now:         time.Now,
	}
}

func (service *RecommendationService) Get(ctx context.Context, userID string) (string, error) {
	cacheKey := fmt.Sprintf("recommendation:%s", userID)
	var cached string
	if service.cache.GetJSON(ctx, cacheKey, &cached) {
		return cached, nil
	}

	recommendation, err := service.build(ctx, userID)
	if err != nil {
		return "", err
	}
	service.cache.SetJSON(ctx, cacheKey, recommendation, recommendationCacheTTL)
	return recommendation, nil
}

// Refresh drops the cached recommendation and builds a fresh one.
func (service *RecommendationService) Refresh(ctx context.Context, userID string) (string, error) {
	service.cache.Invalidate(ctx, fmt.Sprintf("recommendation:%s", userID))
	return service.Get(ctx, userID)
}

func (service *RecommendationService) build(ctx context.Context, userID string) (string, error) {
	cutoff := service.now().UnixMilli() - int64(recommendationLookbackDays)*dayMillis
	entries, err := service.moods.ListByUserSince(userID, cutoff)
	if err != nil {
		return "", err
	}

	if len(entries) < recommendationMinEntries {
		return staticRecommendation(len(entries)), nil
	}

	if service.synthesizer != nil {
		prompt := service.buildPrompt(entries, userID)
		recommendation, err := service.synthesizer.Synthesize(ctx, prompt)
		if err == nil {
			return strings.TrimSpace(recommendation), nil
		}
		log.Printf("recommendation synthesis failed, using fallback: %v", err)
	}
	return fallbackRecommendation(entries), nil
}

func (service *RecommendationService) buildPrompt(entries []models.MoodEntry, userID string) string {
	stats := computeMoodStatistics(entries)

	var summary strings.Builder
	fmt.Fprintf(&summary, "Last %d mood entries:\n", stats.Count)
	fmt.Fprintf(&summary, "Average mood: %.2f/5\n", stats.Average)
	fmt.Fprintf(&summary, "Lowest mood: %d/5\n", stats.Lowest)
	fmt.Fprintf(&summary, "Highest mood: %d/5\n\n", stats.Highest)

	summary.WriteString("Recent entries:\n")
	recent := entries
	if len(recent) > 7 {
		recent = recent[len(recent)-7:]
	}
	for _, entry := range recent {
		day := time.UnixMilli(entry.Timestamp).UTC().Format("Mon")
		fmt.Fprintf(&summary, "%s: %d/5", day, entry.Score)
		if note := strings.TrimSpace(entry.Note); note != "" {
			fmt.Fprintf(&summary, " - %q", truncate(note, 50))
		}
		summary.WriteString("\n")
	}

	var context strings.Builder
	if service.profiles != nil {
		if profile, found, err := service.profiles.FindByUser(userID); err == nil && found {
			if profile.Motivation != "" {
				fmt.Fprintf(&context, "Motivation: %s\n", profile.Motivation)
			}
			if profile.DepressionScore != nil {
				fmt.Fprintf(&context, "Depression score (PHQ-9): %d\n", *profile.DepressionScore)
			}
			if profile.AnxietyScore != nil {
				fmt.Fprintf(&context, "Anxiety score (GAD-7): %d\n", *profile.AnxietyScore)
			}
			if profile.SleepQuality != "" {
				fmt.Fprintf(&context, "Sleep quality: %s\n", profile.SleepQuality)
			}
		}
	}

	contextSection := ""
	if context.Len() > 0 {
		contextSection = fmt.Sprintf("**Additional context:**\n%s\n", context.String())
	}

	return fmt.Sprintf(`You are an experienced, empathetic psychologist. Analyze the patient's mood data and provide a personalized, encouraging recommendation.

**Mood data:**
%s
%s**Instructions:**
1. Give one practical, actionable recommendation (150 words maximum)
2. Use an empathetic, encouraging tone
3. Be specific, based on the observed patterns
4. Suggest one concrete action the user can take
5. Address the user directly ("you")
6. Do NOT use markdown or formatting

Write the recommendation:`, summary.String(), contextSection)
}

func staticRecommendation(entryCount int) string {
	switch {
	case entryCount == 0:
		return "Start logging your mood daily to receive personalized recommendations and insights about your emotional well-being."
	case entryCount < 3:
		return "You are on the right track! Keep logging your mood so we can provide more personalized recommendations."
	default:
		return "Keep logging your mood regularly. With more data we can offer increasingly personalized recommendations for your well-being."
	}
}

func fallbackRecommendation(entries []models.MoodEntry) string {
	stats := computeMoodStatistics(entries)

	switch {
	case stats.Average < 2:
		return "It looks like your week was challenging. Consider practicing deep breathing, taking a walk outside, or talking to someone you trust. Small steps can make a difference."
	case stats.Average < 3:
		return "Your mood has been fluctuating. Try including self-care moments in your routine: a 15-minute walk, your favorite music, or writing down 3 good things about your day."
	case stats.Average < 4:
		return "You are doing well! To strengthen your well-being further, consider a regular sleep routine, 5 minutes of daily mindfulness, and staying in touch with people you care about."
	default:
		return "Excellent! You are in a great place. Use this moment to consolidate healthy habits, share your positive energy with others, and keep doing what has been working for you."
	}
}
