package achievement

import (
	"context"
	"testing"
)

func TestNextMilestones_ExcludesEarned(t *testing.T) {
	ledger := newMemLedger()
	e := newTestEngine(reflectionWeeks(4), ledger)
	ctx := context.Background()

	if _, err := ledger.TryAward(ctx, 1, "reflection_pro"); err != nil {
		t.Fatalf("seed award: %v", err)
	}
	ms, err := e.NextMilestones(ctx, 1, 0)
	if err != nil {
		t.Fatalf("NextMilestones: %v", err)
	}
	for _, m := range ms {
		if m.BadgeCode == "reflection_pro" {
			t.Errorf("earned badge listed as milestone")
		}
	}
}

func TestNextMilestones_ClosestFirst(t *testing.T) {
	// 9 reflections: reflection_pro is at 9/10, far ahead of everything
	// else, so it must rank first.
	e := newTestEngine(reflectionWeeks(9), newMemLedger())
	ms, err := e.NextMilestones(context.Background(), 1, 3)
	if err != nil {
		t.Fatalf("NextMilestones: %v", err)
	}
	if len(ms) == 0 {
		t.Fatalf("expected milestones")
	}
	if len(ms) > 3 {
		t.Errorf("limit not applied, got %d", len(ms))
	}
	if ms[0].BadgeCode != "reflection_pro" {
		t.Errorf("expected reflection_pro first, got %s", ms[0].BadgeCode)
	}
	if ms[0].Progress != 9 || ms[0].Target != 10 {
		t.Errorf("unexpected progress %d/%d", ms[0].Progress, ms[0].Target)
	}
}

func TestNextMilestones_SkipsOvershotExactThresholds(t *testing.T) {
	// 11 reflections and reflection_pro somehow never awarded: the == 10
	// rule can no longer be approached, so it is not a milestone.
	e := newTestEngine(reflectionWeeks(11), newMemLedger())
	ms, err := e.NextMilestones(context.Background(), 1, 0)
	if err != nil {
		t.Fatalf("NextMilestones: %v", err)
	}
	for _, m := range ms {
		if m.BadgeCode == "reflection_pro" {
			t.Errorf("overshot threshold listed as milestone")
		}
	}
}

func TestNextMilestones_NoWrites(t *testing.T) {
	ledger := newMemLedger()
	e := newTestEngine(reflectionWeeks(10), ledger)
	if _, err := e.NextMilestones(context.Background(), 1, 5); err != nil {
		t.Fatalf("NextMilestones: %v", err)
	}
	if len(ledger.awards) != 0 {
		t.Errorf("milestone read must never award, ledger has %v", ledger.awards)
	}
}
