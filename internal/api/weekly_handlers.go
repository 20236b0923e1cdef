package api

import (
	"encoding/json"
	"net/http"
	"time"

	"reinvent/internal/achievement"
	"reinvent/internal/db"
	"reinvent/internal/weekly"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// parseWeek resolves an optional "2006-01-02" week field to its Monday
// boundary; empty means the current week.
func parseWeek(raw string) (time.Time, bool) {
	if raw == "" {
		return achievement.WeekStart(time.Now().UTC()), true
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, false
	}
	return achievement.WeekStart(t), true
}

func badgePayload(badges []achievement.Badge) []gin.H {
	out := make([]gin.H, 0, len(badges))
	for _, b := range badges {
		out = append(out, gin.H{"code": b.Code, "description": b.Description})
	}
	return out
}

type GoalsRequest struct {
	WeekStart   string   `json:"week_start_date"`
	PrimaryGoal string   `json:"primary_goal"`
	Secondary   []string `json:"secondary_goals"`
	FocusAreas  []string `json:"focus_areas"`
	Commitments []string `json:"weekly_commitments"`
}

// SetGoalsHandler upserts the Monday ritual for a week and runs a badge
// evaluation pass for it.
func SetGoalsHandler(engine *achievement.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId, _ := c.Get("userId")
		uid := userId.(uint)

		var req GoalsRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"message": "Invalid request"}})
			return
		}
		if req.PrimaryGoal == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"message": "Primary goal required"}})
			return
		}
		week, ok := parseWeek(req.WeekStart)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"message": "Invalid week_start_date, expected YYYY-MM-DD"}})
			return
		}

		goalCount := 1 + len(req.Secondary)
		secondary, _ := json.Marshal(req.Secondary)
		focus, _ := json.Marshal(req.FocusAreas)
		commitments, _ := json.Marshal(req.Commitments)

		var goal weekly.Goal
		err := db.DB.Where("user_id = ? AND week_start = ?", uid, week).First(&goal).Error
		switch {
		case err == nil:
			goal.PrimaryGoal = req.PrimaryGoal
			goal.Secondary = datatypes.JSON(secondary)
			goal.FocusAreas = datatypes.JSON(focus)
			goal.Commitments = datatypes.JSON(commitments)
			goal.GoalCount = goalCount
			err = db.DB.Save(&goal).Error
		case err == gorm.ErrRecordNotFound:
			goal = weekly.Goal{
				UserID:      uid,
				WeekStart:   week,
				PrimaryGoal: req.PrimaryGoal,
				Secondary:   datatypes.JSON(secondary),
				FocusAreas:  datatypes.JSON(focus),
				Commitments: datatypes.JSON(commitments),
				GoalCount:   goalCount,
				Status:      "active",
			}
			err = db.DB.Create(&goal).Error
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": gin.H{"message": "DB error"}})
			return
		}

		newBadges, err := engine.Evaluate(c.Request.Context(), uid, achievement.ActionWeeklyGoalsSet,
			achievement.GoalsContext{Week: week, GoalCount: goalCount})
		if err != nil {
			// Goals are saved; a delayed badge surfaces on the next action.
			newBadges = nil
		}

		c.JSON(http.StatusOK, gin.H{
			"goals":      goal,
			"new_badges": badgePayload(newBadges),
		})
	}
}

// GetGoalsHandler returns the goals for a week (default: current)
func GetGoalsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		userId, _ := c.Get("userId")
		week, ok := parseWeek(c.Query("week"))
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"message": "Invalid week, expected YYYY-MM-DD"}})
			return
		}
		var goal weekly.Goal
		if err := db.DB.Where("user_id = ? AND week_start = ?", userId.(uint), week).First(&goal).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				c.JSON(http.StatusNotFound, gin.H{"error": gin.H{"message": "No goals set for this week"}})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": gin.H{"message": "DB error"}})
			return
		}
		c.JSON(http.StatusOK, goal)
	}
}

type ReflectionRequest struct {
	WeekStart       string `json:"week_start_date"`
	Accomplishments string `json:"accomplishments"`
	Challenges      string `json:"challenges"`
	Lessons         string `json:"lessons_learned"`
	WeekRating      *int   `json:"overall_week_rating"`
}

// SubmitReflectionHandler upserts the Friday ritual. It always runs the
// reflection evaluation pass, and when the week also has goals set it
// runs a second pass for the completed week.
func SubmitReflectionHandler(engine *achievement.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId, _ := c.Get("userId")
		uid := userId.(uint)

		var req ReflectionRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"message": "Invalid request"}})
			return
		}
		if req.Accomplishments == "" && req.Challenges == "" && req.Lessons == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"message": "Reflection content required"}})
			return
		}
		if req.WeekRating != nil && (*req.WeekRating < 1 || *req.WeekRating > 10) {
			c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"message": "overall_week_rating must be 1-10"}})
			return
		}
		week, ok := parseWeek(req.WeekStart)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"message": "Invalid week_start_date, expected YYYY-MM-DD"}})
			return
		}

		var ref weekly.Reflection
		err := db.DB.Where("user_id = ? AND week_start = ?", uid, week).First(&ref).Error
		switch {
		case err == nil:
			ref.Accomplishments = req.Accomplishments
			ref.Challenges = req.Challenges
			ref.Lessons = req.Lessons
			ref.WeekRating = req.WeekRating
			ref.CompletedAt = time.Now().UTC()
			err = db.DB.Save(&ref).Error
		case err == gorm.ErrRecordNotFound:
			ref = weekly.Reflection{
				UserID:          uid,
				WeekStart:       week,
				Accomplishments: req.Accomplishments,
				Challenges:      req.Challenges,
				Lessons:         req.Lessons,
				WeekRating:      req.WeekRating,
				CompletedAt:     time.Now().UTC(),
			}
			err = db.DB.Create(&ref).Error
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": gin.H{"message": "DB error"}})
			return
		}

		rating := 0
		if req.WeekRating != nil {
			rating = *req.WeekRating
		}
		rctx := achievement.ReflectionContext{Week: week, Rating: rating}

		newBadges, evalErr := engine.Evaluate(c.Request.Context(), uid, achievement.ActionFridayReflection, rctx)
		if evalErr != nil {
			newBadges = nil
		}

		// Both rituals done for this week: run the completion pass too.
		var goalCount int64
		db.DB.Model(&weekly.Goal{}).Where("user_id = ? AND week_start = ?", uid, week).Count(&goalCount)
		if goalCount > 0 {
			completeBadges, err := engine.Evaluate(c.Request.Context(), uid, achievement.ActionWeeklyComplete, rctx)
			if err == nil {
				newBadges = append(newBadges, completeBadges...)
			}
		}

		c.JSON(http.StatusOK, gin.H{
			"reflection": ref,
			"new_badges": badgePayload(newBadges),
		})
	}
}

// GetReflectionHandler returns the reflection for a week (default: current)
func GetReflectionHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		userId, _ := c.Get("userId")
		week, ok := parseWeek(c.Query("week"))
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"message": "Invalid week, expected YYYY-MM-DD"}})
			return
		}
		var ref weekly.Reflection
		if err := db.DB.Where("user_id = ? AND week_start = ?", userId.(uint), week).First(&ref).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				c.JSON(http.StatusNotFound, gin.H{"error": gin.H{"message": "No reflection for this week"}})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": gin.H{"message": "DB error"}})
			return
		}
		c.JSON(http.StatusOK, ref)
	}
}

type ProgressRequest struct {
	WeekStart string  `json:"week_start_date"`
	DayOfWeek int     `json:"day_of_week"`
	GoalIndex int     `json:"goal_index"`
	Percent   float64 `json:"progress_percentage"`
	Notes     string  `json:"progress_notes"`
	Completed bool    `json:"completed"`
}

// SaveProgressHandler upserts one day/goal progress entry and evaluates
// performance badges against the week's new completion rate.
func SaveProgressHandler(engine *achievement.Engine, activity *weekly.Log) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId, _ := c.Get("userId")
		uid := userId.(uint)

		var req ProgressRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"message": "Invalid request"}})
			return
		}
		if req.DayOfWeek < 0 || req.DayOfWeek > 6 {
			c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"message": "day_of_week must be 0-6"}})
			return
		}
		if req.Percent < 0 || req.Percent > 100 {
			c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"message": "progress_percentage must be 0-100"}})
			return
		}
		week, ok := parseWeek(req.WeekStart)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"message": "Invalid week_start_date, expected YYYY-MM-DD"}})
			return
		}

		var entry weekly.Progress
		err := db.DB.Where("user_id = ? AND week_start = ? AND day_of_week = ? AND goal_index = ?",
			uid, week, req.DayOfWeek, req.GoalIndex).First(&entry).Error
		switch {
		case err == nil:
			entry.Percent = req.Percent
			entry.Notes = req.Notes
			entry.Completed = req.Completed
			err = db.DB.Save(&entry).Error
		case err == gorm.ErrRecordNotFound:
			entry = weekly.Progress{
				UserID:    uid,
				WeekStart: week,
				DayOfWeek: req.DayOfWeek,
				GoalIndex: req.GoalIndex,
				Percent:   req.Percent,
				Notes:     req.Notes,
				Completed: req.Completed,
			}
			err = db.DB.Create(&entry).Error
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": gin.H{"message": "DB error"}})
			return
		}

		rate, tracked, err := activity.WeekCompletionRate(c.Request.Context(), uid, week)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": gin.H{"message": "DB error"}})
			return
		}

		var newBadges []achievement.Badge
		if tracked {
			newBadges, err = engine.Evaluate(c.Request.Context(), uid, achievement.ActionWeeklyProgress,
				achievement.ProgressContext{Week: week, CompletionRate: rate})
			if err != nil {
				newBadges = nil
			}
		}

		c.JSON(http.StatusOK, gin.H{
			"progress":             entry,
			"week_completion_rate": rate,
			"new_badges":           badgePayload(newBadges),
		})
	}
}

// GetProgressHandler lists a week's progress entries
func GetProgressHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		userId, _ := c.Get("userId")
		week, ok := parseWeek(c.Query("week"))
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"message": "Invalid week, expected YYYY-MM-DD"}})
			return
		}
		var entries []weekly.Progress
		if err := db.DB.Where("user_id = ? AND week_start = ?", userId.(uint), week).
			Order("day_of_week, goal_index").Find(&entries).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": gin.H{"message": "DB error"}})
			return
		}
		c.JSON(http.StatusOK, gin.H{"week_start_date": week.Format("2006-01-02"), "entries": entries})
	}
}

// StatsHandler returns aggregate counters and current streaks
func StatsHandler(engine *achievement.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId, _ := c.Get("userId")
		snap, err := engine.Stats(c.Request.Context(), userId.(uint))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": gin.H{"message": "Failed to load stats"}})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"weeks_tracked":        len(snap.History),
			"reflections":          snap.Reflections,
			"goal_weeks":           snap.GoalWeeks,
			"total_goals":          snap.TotalGoals,
			"analyzed_reflections": snap.AnalyzedReflections,
			"goal_streak":          snap.GoalStreak,
			"reflection_streak":    snap.ReflectionStreak,
			"complete_streak":      snap.CompleteStreak,
		})
	}
}
