package achievement

import (
	"context"
	"time"
)

// Action identifies which weekly ritual triggered an evaluation pass.
type Action string

const (
	ActionWeeklyGoalsSet   Action = "weekly_goals_set"
	ActionFridayReflection Action = "friday_reflection"
	ActionWeeklyProgress   Action = "weekly_progress"
	ActionWeeklyComplete   Action = "weekly_complete"
)

// EvalContext carries the per-action payload of the triggering request.
// Each action kind has its own struct so a criterion can never read a
// field the action did not supply.
type EvalContext interface {
	evalContext()
}

type GoalsContext struct {
	Week      time.Time
	GoalCount int
}

type ReflectionContext struct {
	Week     time.Time
	Rating   int
	Analyzed bool
}

type ProgressContext struct {
	Week           time.Time
	CompletionRate float64 // 0..100 across the week's tracked goals
}

func (GoalsContext) evalContext()      {}
func (ReflectionContext) evalContext() {}
func (ProgressContext) evalContext()   {}

// ActivityRecord is one user-week of logged facts, newest first in a
// history slice. Supplied by the activity log; never written here.
type ActivityRecord struct {
	WeekStart      time.Time
	GoalsSet       bool
	ReflectionDone bool
	AIAnalyzed     bool
	GoalCount      int
	WeekRating     *int     // nil when the reflection has no rating
	CompletionRate *float64 // nil when no progress was tracked that week
}

// ActivitySource loads a user's full weekly history, newest week first.
// The engine takes one snapshot per evaluation pass; if this load fails
// the whole pass aborts and no badge is considered.
type ActivitySource interface {
	History(ctx context.Context, userID uint) ([]ActivityRecord, error)
}

// Ledger is the authoritative record of earned badges. TryAward must be
// atomic at the storage layer: under concurrent evaluation exactly one
// caller observes inserted=true per (user, code).
type Ledger interface {
	EarnedCodes(ctx context.Context, userID uint) (map[string]bool, error)
	HasBadge(ctx context.Context, userID uint, code string) (bool, error)
	TryAward(ctx context.Context, userID uint, code string) (bool, error)
}

// Badge pairs a stable code with its display text and earning criterion.
type Badge struct {
	Code        string
	Description string
	Criterion   Criterion
}

// Award is one earned badge. The composite unique index is the
// idempotence boundary: a second insert for the same (user, badge)
// conflicts instead of duplicating.
type Award struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_user_badge" json:"user_id"`
	BadgeCode string    `gorm:"size:64;not null;uniqueIndex:idx_user_badge" json:"badge_code"`
	EarnedAt  time.Time `json:"earned_at"`
}

func (Award) TableName() string {
	return "user_badges"
}
