package achievement

// Criterion is the closed set of badge-earning rules. Each kind carries
// its own parameters and is dispatched with a type switch, so adding a
// kind forces every evaluator through the compiler.
type Criterion interface {
	criterion()
}

// Metric names the counter a count criterion reads from the snapshot.
type Metric int

const (
	MetricReflections Metric = iota
	MetricGoalWeeks
	MetricTotalGoals
	MetricAnalyzedReflections
)

// CountThreshold fires when a counter reaches Target. With Exact set it
// fires only at the crossing point itself; cumulative milestones
// (total goals) use >= and rely on the ledger to fire once. Either way
// the criterion is only considered on its matching action, which keeps
// passes cheap and avoids re-triggering from unrelated requests.
type CountThreshold struct {
	On     Action
	Metric Metric
	Target int
	Exact  bool
}

// ExactStreak fires when the streak is exactly Weeks, producing "you
// just hit N weeks" semantics: a streak of N+1 no longer qualifies, and
// the ledger guards re-award if the streak is ever rebuilt through N.
type ExactStreak struct {
	On      Action
	Variant StreakVariant
	Weeks   int
}

// RollingAverage requires the mean of the last Window week ratings to
// reach Min. Fewer than Window ratings on record is false, not an error.
type RollingAverage struct {
	On     Action
	Window int
	Min    float64
}

// CompleteWeeksRun requires Weeks consecutive weeks with both rituals
// done, ending at the current week.
type CompleteWeeksRun struct {
	On    Action
	Weeks int
}

// RatingEver fires once any recorded week rating reaches Rating.
type RatingEver struct {
	On     Action
	Rating int
}

// ConsecutiveAnalyzed requires the last Weeks reflections to all carry
// an AI analysis.
type ConsecutiveAnalyzed struct {
	On    Action
	Weeks int
}

// CompletionRate reads the triggering progress update's completion
// percentage from the action context.
type CompletionRate struct {
	On      Action
	Percent float64
}

// Unimplemented is a permanent false: the data the rule needs (goal
// submission timestamps, week difficulty signals) is not tracked, and
// guessing a heuristic would grant unrevokable badges.
type Unimplemented struct {
	Missing string
}

func (CountThreshold) criterion()      {}
func (ExactStreak) criterion()         {}
func (RollingAverage) criterion()      {}
func (CompleteWeeksRun) criterion()    {}
func (RatingEver) criterion()          {}
func (ConsecutiveAnalyzed) criterion() {}
func (CompletionRate) criterion()      {}
func (Unimplemented) criterion()       {}

// Catalog is the fixed, ordered badge table. Static for the process
// lifetime; user state lives in the ledger, never here.
func Catalog() []Badge {
	return []Badge{
		// Weekly goals
		{Code: "first_week", Description: "Complete your first weekly goal setting",
			Criterion: CountThreshold{On: ActionWeeklyGoalsSet, Metric: MetricGoalWeeks, Target: 1, Exact: true}},
		{Code: "week_streak_4", Description: "Maintain a 4-week goal setting streak",
			Criterion: ExactStreak{On: ActionWeeklyGoalsSet, Variant: StreakGoals, Weeks: 4}},
		{Code: "week_streak_12", Description: "Maintain a 12-week goal setting streak",
			Criterion: ExactStreak{On: ActionWeeklyGoalsSet, Variant: StreakGoals, Weeks: 12}},
		{Code: "week_streak_24", Description: "Maintain a 24-week goal setting streak (6 months!)",
			Criterion: ExactStreak{On: ActionWeeklyGoalsSet, Variant: StreakGoals, Weeks: 24}},
		{Code: "week_streak_52", Description: "Maintain a 52-week goal setting streak (1 year!)",
			Criterion: ExactStreak{On: ActionWeeklyGoalsSet, Variant: StreakGoals, Weeks: 52}},

		// Reflections
		{Code: "reflection_pro", Description: "Complete 10 Friday reflections",
			Criterion: CountThreshold{On: ActionFridayReflection, Metric: MetricReflections, Target: 10, Exact: true}},
		{Code: "reflection_master", Description: "Complete 25 Friday reflections",
			Criterion: CountThreshold{On: ActionFridayReflection, Metric: MetricReflections, Target: 25, Exact: true}},
		{Code: "reflection_legend", Description: "Complete 50 Friday reflections",
			Criterion: CountThreshold{On: ActionFridayReflection, Metric: MetricReflections, Target: 50, Exact: true}},

		// Performance
		{Code: "goal_crusher", Description: "Achieve 90%+ goal completion rate for a week",
			Criterion: CompletionRate{On: ActionWeeklyProgress, Percent: 90}},
		{Code: "perfect_week", Description: "Achieve 100% goal completion in a week",
			Criterion: CompletionRate{On: ActionWeeklyProgress, Percent: 100}},
		{Code: "high_performer", Description: "Maintain an average week rating of 8+ for 4 weeks",
			Criterion: RollingAverage{On: ActionFridayReflection, Window: 4, Min: 8}},

		// Consistency
		{Code: "early_bird", Description: "Set Monday goals before 9 AM for 4 weeks",
			Criterion: Unimplemented{Missing: "goal submission timestamps"}},
		{Code: "consistency_king", Description: "Complete both Monday and Friday rituals for 8 consecutive weeks",
			Criterion: CompleteWeeksRun{On: ActionWeeklyComplete, Weeks: 8}},
		{Code: "never_miss", Description: "Complete both rituals for 12 consecutive weeks",
			Criterion: CompleteWeeksRun{On: ActionWeeklyComplete, Weeks: 12}},

		// AI & insights
		{Code: "sentiment_master", Description: "Complete 20 sentiment-analyzed reflections",
			Criterion: CountThreshold{On: ActionFridayReflection, Metric: MetricAnalyzedReflections, Target: 20, Exact: true}},
		{Code: "ai_enthusiast", Description: "Use AI sentiment analysis for 10 consecutive reflections",
			Criterion: ConsecutiveAnalyzed{On: ActionFridayReflection, Weeks: 10}},

		// Milestones
		{Code: "goals_25", Description: "Set 25 total weekly goals",
			Criterion: CountThreshold{On: ActionWeeklyGoalsSet, Metric: MetricTotalGoals, Target: 25}},
		{Code: "goals_50", Description: "Set 50 total weekly goals",
			Criterion: CountThreshold{On: ActionWeeklyGoalsSet, Metric: MetricTotalGoals, Target: 50}},
		{Code: "goals_100", Description: "Set 100 total weekly goals",
			Criterion: CountThreshold{On: ActionWeeklyGoalsSet, Metric: MetricTotalGoals, Target: 100}},

		// Special
		{Code: "breakthrough_week", Description: "Achieve a week rating of 10/10",
			Criterion: RatingEver{On: ActionFridayReflection, Rating: 10}},
		{Code: "resilience_master", Description: "Maintain streak through challenging weeks",
			Criterion: Unimplemented{Missing: "week difficulty signal"}},
	}
}

func (s *Snapshot) metric(m Metric) int {
	switch m {
	case MetricReflections:
		return s.Reflections
	case MetricGoalWeeks:
		return s.GoalWeeks
	case MetricTotalGoals:
		return s.TotalGoals
	case MetricAnalyzedReflections:
		return s.AnalyzedReflections
	}
	return 0
}

func (s *Snapshot) streak(v StreakVariant) int {
	switch v {
	case StreakGoals:
		return s.GoalStreak
	case StreakReflections:
		return s.ReflectionStreak
	case StreakComplete:
		return s.CompleteStreak
	}
	return 0
}

// satisfied evaluates one criterion against the snapshot and the typed
// action context. Pure: no storage access, missing data degrades to
// false so a single bad record cannot sink an unrelated badge.
func satisfied(c Criterion, action Action, ectx EvalContext, snap *Snapshot) bool {
	switch cr := c.(type) {
	case CountThreshold:
		if action != cr.On {
			return false
		}
		v := snap.metric(cr.Metric)
		if cr.Exact {
			return v == cr.Target
		}
		return v >= cr.Target
	case ExactStreak:
		return action == cr.On && snap.streak(cr.Variant) == cr.Weeks
	case RollingAverage:
		if action != cr.On {
			return false
		}
		ratings := latestRatings(snap.History, cr.Window)
		if len(ratings) < cr.Window {
			return false
		}
		sum := 0
		for _, r := range ratings {
			sum += r
		}
		return float64(sum)/float64(len(ratings)) >= cr.Min
	case CompleteWeeksRun:
		return action == cr.On && snap.CompleteStreak >= cr.Weeks
	case RatingEver:
		if action != cr.On {
			return false
		}
		for _, r := range snap.History {
			if r.WeekRating != nil && *r.WeekRating >= cr.Rating {
				return true
			}
		}
		return false
	case ConsecutiveAnalyzed:
		return action == cr.On && consecutiveAnalyzed(snap.History, cr.Weeks)
	case CompletionRate:
		if action != cr.On {
			return false
		}
		pctx, ok := ectx.(ProgressContext)
		if !ok {
			return false
		}
		return pctx.CompletionRate >= cr.Percent
	case Unimplemented:
		return false
	}
	return false
}
