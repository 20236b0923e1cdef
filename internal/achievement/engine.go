package achievement

import (
	"context"
	"fmt"
	"log"
	"time"
)

// Engine runs one badge evaluation pass per triggering action. It owns
// no storage: history comes from the activity source, earned state from
// the ledger, and the ledger's conditional insert is the only
// synchronization point.
type Engine struct {
	activity ActivitySource
	ledger   Ledger
	now      func() time.Time
}

func NewEngine(activity ActivitySource, ledger Ledger) *Engine {
	return &Engine{
		activity: activity,
		ledger:   ledger,
		now:      time.Now,
	}
}

// Evaluate checks every not-yet-earned badge against the user's current
// history and awards the ones newly satisfied, returning only those this
// call actually inserted. A badge lost to a concurrent evaluation is
// silently excluded. Any storage failure aborts the pass with no result:
// a delayed badge is recoverable on the next action, a wrongly granted
// one is not.
func (e *Engine) Evaluate(ctx context.Context, userID uint, action Action, ectx EvalContext) ([]Badge, error) {
	earned, err := e.ledger.EarnedCodes(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load earned badges: %w", err)
	}
	history, err := e.activity.History(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load activity history: %w", err)
	}
	snap := BuildSnapshot(history, e.now())

	var newly []Badge
	for _, badge := range Catalog() {
		if earned[badge.Code] {
			continue
		}
		if !satisfied(badge.Criterion, action, ectx, snap) {
			continue
		}
		inserted, err := e.ledger.TryAward(ctx, userID, badge.Code)
		if err != nil {
			return nil, fmt.Errorf("award %s: %w", badge.Code, err)
		}
		if inserted {
			log.Printf("[Engine] badge earned: %s by user %d", badge.Code, userID)
			newly = append(newly, badge)
		}
	}
	return newly, nil
}

// Stats exposes the aggregated snapshot for read-only dashboards.
func (e *Engine) Stats(ctx context.Context, userID uint) (*Snapshot, error) {
	history, err := e.activity.History(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load activity history: %w", err)
	}
	return BuildSnapshot(history, e.now()), nil
}
