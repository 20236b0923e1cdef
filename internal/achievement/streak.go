package achievement

import "time"

// StreakVariant selects which weekly flag a streak walks over. The two
// variants are computed independently and must not be conflated.
type StreakVariant int

const (
	StreakGoals StreakVariant = iota
	StreakReflections
	StreakComplete // both rituals done in the same week
)

func recordCounts(r ActivityRecord, v StreakVariant) bool {
	switch v {
	case StreakGoals:
		return r.GoalsSet
	case StreakReflections:
		return r.ReflectionDone
	case StreakComplete:
		return r.GoalsSet && r.ReflectionDone
	}
	return false
}

// CurrentStreak counts consecutive completed weeks walking back from the
// anchor's week. The walk never skips: the first missing week truncates
// the streak even when older weeks are complete. An incomplete anchor
// week yields 0.
func CurrentStreak(history []ActivityRecord, anchor time.Time, v StreakVariant) int {
	completed := make(map[time.Time]bool, len(history))
	for _, r := range history {
		if recordCounts(r, v) {
			completed[WeekStart(r.WeekStart)] = true
		}
	}

	streak := 0
	for i := 0; ; i++ {
		expected := WeekStart(anchor.AddDate(0, 0, -7*i))
		if !completed[expected] {
			break
		}
		streak++
	}
	return streak
}

// latestRatings returns up to limit week ratings, most recent first,
// skipping weeks without one. History is assumed newest-first.
func latestRatings(history []ActivityRecord, limit int) []int {
	var out []int
	for _, r := range history {
		if r.WeekRating == nil {
			continue
		}
		out = append(out, *r.WeekRating)
		if len(out) == limit {
			break
		}
	}
	return out
}

// consecutiveAnalyzed reports whether the n most recent reflections all
// carry an AI analysis. Fewer than n reflections on record is false.
func consecutiveAnalyzed(history []ActivityRecord, n int) bool {
	seen := 0
	for _, r := range history {
		if !r.ReflectionDone {
			continue
		}
		if !r.AIAnalyzed {
			return false
		}
		seen++
		if seen == n {
			return true
		}
	}
	return false
}
