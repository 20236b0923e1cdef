package api

import (
	"net/http"
	"strconv"
	"time"

	"reinvent/internal/achievement"

	"github.com/gin-gonic/gin"
)

// ListBadgesHandler returns the user's earned badges alongside the full
// catalog, so the dashboard can render locked and unlocked states.
func ListBadgesHandler(engine *achievement.Engine, ledger *achievement.GormLedger) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId, _ := c.Get("userId")
		awards, err := ledger.Awards(c.Request.Context(), userId.(uint))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": gin.H{"message": "Failed to load badges"}})
			return
		}

		earnedAt := make(map[string]interface{}, len(awards))
		for _, a := range awards {
			earnedAt[a.BadgeCode] = a.EarnedAt
		}

		catalog := make([]gin.H, 0)
		for _, b := range achievement.Catalog() {
			entry := gin.H{
				"code":        b.Code,
				"description": b.Description,
				"earned":      false,
			}
			if at, ok := earnedAt[b.Code]; ok {
				entry["earned"] = true
				entry["earned_at"] = at
			}
			catalog = append(catalog, entry)
		}

		c.JSON(http.StatusOK, gin.H{
			"earned_count": len(awards),
			"total_count":  len(achievement.Catalog()),
			"badges":       catalog,
		})
	}
}

// CheckBadgesHandler re-runs the evaluation pass across every action
// trigger, for clients that want to reconcile after offline edits.
func CheckBadgesHandler(engine *achievement.Engine, activity achievement.ActivitySource) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId, _ := c.Get("userId")
		uid := userId.(uint)
		ctx := c.Request.Context()

		history, err := activity.History(ctx, uid)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": gin.H{"message": "Failed to load activity"}})
			return
		}

		// Current-week facts feed the per-action contexts.
		var current *achievement.ActivityRecord
		if len(history) > 0 {
			thisWeek := achievement.WeekStart(time.Now().UTC())
			if history[0].WeekStart.Equal(thisWeek) {
				current = &history[0]
			}
		}

		passes := []struct {
			action achievement.Action
			ectx   achievement.EvalContext
		}{
			{achievement.ActionWeeklyGoalsSet, achievement.GoalsContext{}},
			{achievement.ActionFridayReflection, achievement.ReflectionContext{}},
			{achievement.ActionWeeklyComplete, achievement.ReflectionContext{}},
		}
		if current != nil && current.CompletionRate != nil {
			passes = append(passes, struct {
				action achievement.Action
				ectx   achievement.EvalContext
			}{achievement.ActionWeeklyProgress, achievement.ProgressContext{
				Week:           current.WeekStart,
				CompletionRate: *current.CompletionRate,
			}})
		}

		var newBadges []achievement.Badge
		for _, p := range passes {
			badges, err := engine.Evaluate(ctx, uid, p.action, p.ectx)
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": gin.H{"message": "Badge check failed"}})
				return
			}
			newBadges = append(newBadges, badges...)
		}

		c.JSON(http.StatusOK, gin.H{"new_badges": badgePayload(newBadges)})
	}
}

// NextMilestonesHandler returns the unearned badges the user is closest
// to, default 3.
func NextMilestonesHandler(engine *achievement.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId, _ := c.Get("userId")
		n := 3
		if raw := c.Query("limit"); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil || parsed < 1 || parsed > 20 {
				c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"message": "limit must be 1-20"}})
				return
			}
			n = parsed
		}
		milestones, err := engine.NextMilestones(c.Request.Context(), userId.(uint), n)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": gin.H{"message": "Failed to load milestones"}})
			return
		}
		if milestones == nil {
			milestones = []achievement.Milestone{}
		}
		c.JSON(http.StatusOK, gin.H{"milestones": milestones})
	}
}
