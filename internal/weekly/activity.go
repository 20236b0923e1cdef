package weekly

import (
	"context"
	"sort"
	"time"

	"reinvent/internal/achievement"

	"gorm.io/gorm"
)

// Log is the read-only projection the achievement engine evaluates
// over. It merges the three weekly tables into one record per user-week
// and never writes anything.
type Log struct {
	db *gorm.DB
}

func NewLog(db *gorm.DB) *Log {
	return &Log{db: db}
}

type weekAverage struct {
	WeekStart time.Time
	Avg       float64
}

// History returns one ActivityRecord per week the user touched, newest
// first. Week keys are re-normalized to the Monday boundary so a row
// stored with a drifting date still lands in the right week.
func (l *Log) History(ctx context.Context, userID uint) ([]achievement.ActivityRecord, error) {
	byWeek := map[time.Time]*achievement.ActivityRecord{}
	get := func(week time.Time) *achievement.ActivityRecord {
		key := achievement.WeekStart(week)
		if r, ok := byWeek[key]; ok {
			return r
		}
		r := &achievement.ActivityRecord{WeekStart: key}
		byWeek[key] = r
		return r
	}

	var goals []Goal
	if err := l.db.WithContext(ctx).
		Select("week_start", "goal_count").
		Where("user_id = ?", userID).
		Find(&goals).Error; err != nil {
		return nil, err
	}
	for _, g := range goals {
		r := get(g.WeekStart)
		r.GoalsSet = true
		r.GoalCount += g.GoalCount
	}

	var reflections []Reflection
	if err := l.db.WithContext(ctx).
		Select("week_start", "week_rating", "sentiment").
		Where("user_id = ?", userID).
		Find(&reflections).Error; err != nil {
		return nil, err
	}
	for _, ref := range reflections {
		r := get(ref.WeekStart)
		r.ReflectionDone = true
		r.AIAnalyzed = len(ref.Sentiment) > 0 && string(ref.Sentiment) != "null"
		if ref.WeekRating != nil {
			rating := *ref.WeekRating
			r.WeekRating = &rating
		}
	}

	var averages []weekAverage
	if err := l.db.WithContext(ctx).
		Model(&Progress{}).
		Select("week_start, AVG(percent) AS avg").
		Where("user_id = ?", userID).
		Group("week_start").
		Scan(&averages).Error; err != nil {
		return nil, err
	}
	for _, a := range averages {
		r := get(a.WeekStart)
		avg := a.Avg
		r.CompletionRate = &avg
	}

	out := make([]achievement.ActivityRecord, 0, len(byWeek))
	for _, r := range byWeek {
		out = append(out, *r)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].WeekStart.After(out[j].WeekStart)
	})
	return out, nil
}

// WeekCompletionRate averages the tracked progress entries for one
// user-week; ok is false when nothing was tracked.
func (l *Log) WeekCompletionRate(ctx context.Context, userID uint, week time.Time) (float64, bool, error) {
	week = achievement.WeekStart(week)
	var rows []weekAverage
	err := l.db.WithContext(ctx).
		Model(&Progress{}).
		Select("week_start, AVG(percent) AS avg").
		Where("user_id = ? AND week_start = ?", userID, week).
		Group("week_start").
		Scan(&rows).Error
	if err != nil {
		return 0, false, err
	}
	if len(rows) == 0 {
		return 0, false, nil
	}
	return rows[0].Avg, true, nil
}
