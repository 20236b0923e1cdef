package achievement

import (
	"context"
	"fmt"
	"sort"
)

// Milestone describes progress toward an unearned badge with a
// monotonic threshold.
type Milestone struct {
	BadgeCode   string `json:"badge_code"`
	Description string `json:"description"`
	Progress    int    `json:"progress"`
	Target      int    `json:"target"`
	Kind        string `json:"type"`
}

// milestoneProgress maps a criterion to its (current, target) pair.
// Only monotonic count/streak criteria produce milestones; rating and
// window rules have no meaningful "distance".
func milestoneProgress(c Criterion, snap *Snapshot) (current, target int, kind string, ok bool) {
	switch cr := c.(type) {
	case CountThreshold:
		kinds := map[Metric]string{
			MetricReflections:         "reflections",
			MetricGoalWeeks:           "goal_weeks",
			MetricTotalGoals:          "total_goals",
			MetricAnalyzedReflections: "ai_analysis",
		}
		return snap.metric(cr.Metric), cr.Target, kinds[cr.Metric], true
	case ExactStreak:
		return snap.streak(cr.Variant), cr.Weeks, "streak", true
	case CompleteWeeksRun:
		return snap.CompleteStreak, cr.Weeks, "complete_weeks", true
	case ConsecutiveAnalyzed:
		seen := 0
		for _, r := range snap.History {
			if !r.ReflectionDone {
				continue
			}
			if !r.AIAnalyzed {
				break
			}
			seen++
		}
		return seen, cr.Weeks, "ai_streak", true
	}
	return 0, 0, "", false
}

// NextMilestones returns the n unearned badges the user is closest to,
// ranked by relative progress. Read-only: it never touches the award
// write path, so it is safe to call as often as the dashboard likes.
// Earned badges never appear; overshot exact thresholds are skipped
// since they can no longer be approached.
func (e *Engine) NextMilestones(ctx context.Context, userID uint, n int) ([]Milestone, error) {
	earned, err := e.ledger.EarnedCodes(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load earned badges: %w", err)
	}
	history, err := e.activity.History(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load activity history: %w", err)
	}
	snap := BuildSnapshot(history, e.now())

	var out []Milestone
	for _, badge := range Catalog() {
		if earned[badge.Code] {
			continue
		}
		current, target, kind, ok := milestoneProgress(badge.Criterion, snap)
		if !ok || target <= 0 || current >= target {
			continue
		}
		out = append(out, Milestone{
			BadgeCode:   badge.Code,
			Description: badge.Description,
			Progress:    current,
			Target:      target,
			Kind:        kind,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		ri := float64(out[i].Progress) / float64(out[i].Target)
		rj := float64(out[j].Progress) / float64(out[j].Target)
		return ri > rj
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out, nil
}
