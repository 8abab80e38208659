package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/animo-app/animo/internal/models"
)

const detailedEntryLimit = 20

type moodStatistics struct {
	Count   int
	Average float64
	Lowest  int
	Highest int
}

func computeMoodStatistics(entries []models.MoodEntry) moodStatistics {
	stats := moodStatistics{Count: len(entries)}
	if stats.Count == 0 {
		return stats
	}

	stats.Lowest = entries[0].Score
	stats.Highest = entries[0].Score
	total := 0
	for _, entry := range entries {
		total += entry.Score
		if entry.Score < stats.Lowest {
			stats.Lowest = entry.Score
		}
		if entry.Score > stats.Highest {
			stats.Highest = entry.Score
		}
	}
	stats.Average = float64(total) / float64(stats.Count)
	return stats
}

func buildRecordPrompt(entries []models.MoodEntry, profile *models.UserProfile, recordType string) string {
	summary := buildMoodSummary(entries)
	context := buildProfileContext(profile)

	if recordType == models.RecordTypeGlobal {
		return fmt.Sprintf(`You are an experienced clinical psychologist. Analyze the consolidated mood data below and write a comprehensive GLOBAL follow-up health record.

This global record consolidates ALL mood entries already analyzed in previous partial records.

**Consolidated mood data:**
%s
**Additional user context:**
%s
**Instructions for the GLOBAL record:**
1. This is a consolidated document representing the whole recorded emotional journey
2. Include: overall executive summary, temporal evolution of emotional patterns, milestones, long-term trends
3. Analyze progression and change over time
4. Identify recurring patterns and emotional cycles
5. Highlight improvements, persistent challenges and ongoing points of attention
6. Provide long-term strategic recommendations
7. Use technical but accessible, empathetic language
8. Format with clear markdown sections: Overview, Temporal Evolution, Global Patterns, Consolidated Analysis, Strategic Recommendations
9. Do NOT include professional signature fields - this is a personal report
10. Personalize the record when personal data (name, age) is available
11. Limit: 1200-1500 words

Write the GLOBAL follow-up record:`, summary, context)
	}

	return fmt.Sprintf(`You are an experienced clinical psychologist. Analyze the user's mood data below and write a detailed PARTIAL follow-up health record.

**Mood data from the recent period:**
%s
**Additional user context:**
%s
**Instructions for the PARTIAL record:**
1. This record covers a specific period and will be consolidated later
2. Focus on the entries from this period
3. Include: period summary, emotional pattern analysis, points of attention, risk factors (if any), well-being recommendations
4. Use technical but accessible, empathetic language
5. Be constructive and encouraging
6. Identify trends, patterns and possible emotional triggers specific to this period
7. Format with clear markdown sections: Period Summary, Mood Analysis, Identified Patterns, Points of Attention, Recommendations
8. Do NOT include professional signature fields - this is a personal report
9. Consider the per-entry AI analyses when available
10. Personalize the record when personal data (name, age) is available
11. Limit: 800-1000 words

Write the PARTIAL follow-up record:`, summary, context)
}

func buildMoodSummary(entries []models.MoodEntry) string {
	stats := computeMoodStatistics(entries)

	var summary strings.Builder
	fmt.Fprintf(&summary, "Total entries: %d\n", stats.Count)
	fmt.Fprintf(&summary, "Average mood: %.2f/5\n", stats.Average)
	fmt.Fprintf(&summary, "Lowest mood: %d/5\n", stats.Lowest)
	fmt.Fprintf(&summary, "Highest mood: %d/5\n\n", stats.Highest)
	summary.WriteString("Detailed entries:\n")

	for index, entry := range entries {
		if index >= detailedEntryLimit {
			break
		}
		day := time.UnixMilli(entry.Timestamp).UTC().Format("2006-01-02")
		fmt.Fprintf(&summary, "%d. %s: mood %d/5", index+1, day, entry.Score)
		if note := strings.TrimSpace(entry.Note); note != "" {
			fmt.Fprintf(&summary, " - note: %q", truncate(note, 100))
		}
		if analysis := strings.TrimSpace(entry.AIAnalysis); analysis != "" {
			fmt.Fprintf(&summary, "\n   [AI analysis]: %s", truncate(analysis, 500))
		}
		summary.WriteString("\n")
	}

	if len(entries) > detailedEntryLimit {
		fmt.Fprintf(&summary, "... and %d more entries\n", len(entries)-detailedEntryLimit)
	}

	return summary.String()
}

func buildProfileContext(profile *models.UserProfile) string {
	if profile == nil {
		return "No additional context available.\n"
	}

	var context strings.Builder
	if profile.Name != "" {
		fmt.Fprintf(&context, "Name: %s\n", profile.Name)
	}
	if profile.Age > 0 {
		fmt.Fprintf(&context, "Age: %d\n", profile.Age)
	}
	if profile.Motivation != "" {
		fmt.Fprintf(&context, "Main motivation: %s\n", profile.Motivation)
	}
	if profile.SleepQuality != "" {
		fmt.Fprintf(&context, "Sleep quality: %s\n", profile.SleepQuality)
	}
	if profile.DepressionScore != nil {
		fmt.Fprintf(&context, "Depression score (PHQ-9): %d/27\n", *profile.DepressionScore)
	}
	if profile.AnxietyScore != nil {
		fmt.Fprintf(&context, "Anxiety score (GAD-7): %d/21\n", *profile.AnxietyScore)
	}

	if context.Len() == 0 {
		return "No additional context available.\n"
	}
	return context.String()
}

// fallbackRecordContent composes a deterministic record from entry statistics
// when the text-generation provider is unavailable. Generation never fails
// just because the provider is down.
func fallbackRecordContent(entries []models.MoodEntry, recordType string, parcialCount int) string {
	stats := computeMoodStatistics(entries)

	title := "Partial Mental Health Record"
	period := fmt.Sprintf("Analyzed period: last %d mood entries.", stats.Count)
	if recordType == models.RecordTypeGlobal {
		title = "Global Mental Health Record"
		period = fmt.Sprintf(
			"Consolidated analysis of %d mood entries across %d partial records%s.",
			stats.Count, parcialCount, formatDateRange(entries),
		)
	}

	var assessment string
	switch {
	case stats.Average < 2.5:
		assessment = "Consistently low mood detected."
	case stats.Average < 3.5:
		assessment = "Moderate mood with variations."
	default:
		assessment = "Generally positive mood."
	}

	return fmt.Sprintf(`# %s

## Executive Summary

%s

**Average mood**: %.2f/5

## Mood Analysis

%d mood entries were recorded in the analyzed period.

The average score was %.2f on a scale of 0 to 5 (lowest %d, highest %d).

## Identified Patterns

%s

## Recommendations

1. Keep logging your mood daily
2. Consider talking to a mental health professional
3. Maintain healthy sleep and exercise habits

---

*This report was generated automatically.*
`, title, period, stats.Average, stats.Count, stats.Average, stats.Lowest, stats.Highest, assessment)
}

func formatDateRange(entries []models.MoodEntry) string {
	if len(entries) == 0 {
		return ""
	}

	first := entries[0].Timestamp
	last := entries[0].Timestamp
	for _, entry := range entries {
		if entry.Timestamp < first {
			first = entry.Timestamp
		}
		if entry.Timestamp > last {
			last = entry.Timestamp
		}
	}
	return fmt.Sprintf(
		", from %s to %s",
		time.UnixMilli(first).UTC().Format("2006-01-02"),
		time.UnixMilli(last).UTC().Format("2006-01-02"),
	)
}

func truncate(value string, limit int) string {
	runes := []rune(value)
	if len(runes) <= limit {
		return value
	}
	return string(runes[:limit]) + "..."
}
