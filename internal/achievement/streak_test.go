package achievement

import (
	"testing"
	"time"
)

// anchor is a Monday; weeksAgo(0) == anchor's week.
var anchorMonday = time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)

func weeksAgo(n int) time.Time {
	return anchorMonday.AddDate(0, 0, -7*n)
}

func record(week time.Time, goals, reflection bool) ActivityRecord {
	return ActivityRecord{WeekStart: week, GoalsSet: goals, ReflectionDone: reflection}
}

func TestCurrentStreak_GapTruncates(t *testing.T) {
	// Completed weeks {W, W-1, W-3}: the missing W-2 stops the walk at 2
	// even though W-3 is complete.
	history := []ActivityRecord{
		record(weeksAgo(0), false, true),
		record(weeksAgo(1), false, true),
		record(weeksAgo(3), false, true),
	}
	if got := CurrentStreak(history, anchorMonday, StreakReflections); got != 2 {
		t.Errorf("expected streak 2, got %d", got)
	}
}

func TestCurrentStreak_Empty(t *testing.T) {
	if got := CurrentStreak(nil, anchorMonday, StreakReflections); got != 0 {
		t.Errorf("expected streak 0 for empty history, got %d", got)
	}
}

func TestCurrentStreak_AnchorWeekIncomplete(t *testing.T) {
	// Current week has no reflection: streak is 0 regardless of older weeks.
	history := []ActivityRecord{
		record(weeksAgo(1), false, true),
		record(weeksAgo(2), false, true),
	}
	if got := CurrentStreak(history, anchorMonday, StreakReflections); got != 0 {
		t.Errorf("expected streak 0 when anchor week incomplete, got %d", got)
	}
}

func TestCurrentStreak_VariantsIndependent(t *testing.T) {
	history := []ActivityRecord{
		record(weeksAgo(0), true, false),
		record(weeksAgo(1), true, true),
		record(weeksAgo(2), true, true),
	}
	if got := CurrentStreak(history, anchorMonday, StreakGoals); got != 3 {
		t.Errorf("expected goal streak 3, got %d", got)
	}
	if got := CurrentStreak(history, anchorMonday, StreakReflections); got != 0 {
		t.Errorf("expected reflection streak 0, got %d", got)
	}
	if got := CurrentStreak(history, anchorMonday, StreakComplete); got != 0 {
		t.Errorf("expected complete streak 0, got %d", got)
	}
}

func TestCurrentStreak_MidWeekAnchor(t *testing.T) {
	// Anchor on a Thursday still counts the containing week.
	thursday := anchorMonday.AddDate(0, 0, 3)
	history := []ActivityRecord{
		record(weeksAgo(0), true, false),
		record(weeksAgo(1), true, false),
	}
	if got := CurrentStreak(history, thursday, StreakGoals); got != 2 {
		t.Errorf("expected goal streak 2 from mid-week anchor, got %d", got)
	}
}

func TestCurrentStreak_UnnormalizedRecordWeeks(t *testing.T) {
	// Records whose week_start drifted off the Monday boundary are
	// re-normalized before comparison.
	history := []ActivityRecord{
		record(weeksAgo(0).AddDate(0, 0, 2), false, true), // stored as Wednesday
		record(weeksAgo(1), false, true),
	}
	if got := CurrentStreak(history, anchorMonday, StreakReflections); got != 2 {
		t.Errorf("expected streak 2 with unnormalized record, got %d", got)
	}
}

func TestLatestRatings(t *testing.T) {
	r7, r9, r10 := 7, 9, 10
	history := []ActivityRecord{
		{WeekStart: weeksAgo(0), ReflectionDone: true, WeekRating: &r10},
		{WeekStart: weeksAgo(1), ReflectionDone: true}, // no rating, skipped
		{WeekStart: weeksAgo(2), ReflectionDone: true, WeekRating: &r9},
		{WeekStart: weeksAgo(3), ReflectionDone: true, WeekRating: &r7},
	}
	got := latestRatings(history, 2)
	if len(got) != 2 || got[0] != 10 || got[1] != 9 {
		t.Errorf("expected [10 9], got %v", got)
	}
}

func TestConsecutiveAnalyzed(t *testing.T) {
	mk := func(analyzed ...bool) []ActivityRecord {
		var h []ActivityRecord
		for i, a := range analyzed {
			h = append(h, ActivityRecord{WeekStart: weeksAgo(i), ReflectionDone: true, AIAnalyzed: a})
		}
		return h
	}
	if !consecutiveAnalyzed(mk(true, true, true), 3) {
		t.Errorf("expected true for 3 analyzed reflections")
	}
	if consecutiveAnalyzed(mk(true, false, true), 3) {
		t.Errorf("expected false when a recent reflection lacks analysis")
	}
	if consecutiveAnalyzed(mk(true, true), 3) {
		t.Errorf("expected false with fewer reflections than required")
	}
}
