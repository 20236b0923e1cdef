package achievement

import "time"

// Snapshot is the aggregated view of one user's history that criteria
// evaluate against. It is built once per evaluation pass so every
// criterion in the pass sees the same facts.
type Snapshot struct {
	History []ActivityRecord // newest week first

	Reflections         int // weeks with a completed reflection
	GoalWeeks           int // weeks with goals set
	TotalGoals          int // individual goals across all weeks
	AnalyzedReflections int // reflections carrying an AI analysis

	GoalStreak       int
	ReflectionStreak int
	CompleteStreak   int // consecutive weeks with both rituals
}

// BuildSnapshot aggregates a history (newest first) anchored at now.
func BuildSnapshot(history []ActivityRecord, now time.Time) *Snapshot {
	s := &Snapshot{History: history}
	for _, r := range history {
		if r.ReflectionDone {
			s.Reflections++
			if r.AIAnalyzed {
				s.AnalyzedReflections++
			}
		}
		if r.GoalsSet {
			s.GoalWeeks++
			s.TotalGoals += r.GoalCount
		}
	}
	s.GoalStreak = CurrentStreak(history, now, StreakGoals)
	s.ReflectionStreak = CurrentStreak(history, now, StreakReflections)
	s.CompleteStreak = CurrentStreak(history, now, StreakComplete)
	return s
}
