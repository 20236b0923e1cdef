package achievement

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func openLedgerDB(t *testing.T) *GormLedger {
	t.Helper()
	name := strings.ReplaceAll(t.Name(), "/", "_")
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	dbConn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open in-memory sqlite: %v", err)
	}
	if err := dbConn.AutoMigrate(&Award{}); err != nil {
		t.Fatalf("migrate award table: %v", err)
	}
	return NewGormLedger(dbConn)
}

func TestGormLedger_TryAwardOnce(t *testing.T) {
	ledger := openLedgerDB(t)
	ctx := context.Background()

	inserted, err := ledger.TryAward(ctx, 1, "first_week")
	if err != nil {
		t.Fatalf("first TryAward: %v", err)
	}
	if !inserted {
		t.Errorf("first insert should report inserted=true")
	}

	inserted, err = ledger.TryAward(ctx, 1, "first_week")
	if err != nil {
		t.Fatalf("second TryAward: %v", err)
	}
	if inserted {
		t.Errorf("duplicate insert must report inserted=false")
	}

	has, err := ledger.HasBadge(ctx, 1, "first_week")
	if err != nil {
		t.Fatalf("HasBadge: %v", err)
	}
	if !has {
		t.Errorf("badge should exist after award")
	}
}

func TestGormLedger_PerUserPerBadge(t *testing.T) {
	ledger := openLedgerDB(t)
	ctx := context.Background()

	// Same badge for another user, and another badge for the same user,
	// both insert cleanly.
	if ok, err := ledger.TryAward(ctx, 1, "first_week"); err != nil || !ok {
		t.Fatalf("seed award: ok=%v err=%v", ok, err)
	}
	if ok, err := ledger.TryAward(ctx, 2, "first_week"); err != nil || !ok {
		t.Errorf("other user blocked: ok=%v err=%v", ok, err)
	}
	if ok, err := ledger.TryAward(ctx, 1, "week_streak_4"); err != nil || !ok {
		t.Errorf("other badge blocked: ok=%v err=%v", ok, err)
	}

	earned, err := ledger.EarnedCodes(ctx, 1)
	if err != nil {
		t.Fatalf("EarnedCodes: %v", err)
	}
	if len(earned) != 2 || !earned["first_week"] || !earned["week_streak_4"] {
		t.Errorf("unexpected earned set: %v", earned)
	}
}

func TestGormLedger_AwardsListing(t *testing.T) {
	ledger := openLedgerDB(t)
	ctx := context.Background()

	for _, code := range []string{"first_week", "week_streak_4", "reflection_pro"} {
		if _, err := ledger.TryAward(ctx, 7, code); err != nil {
			t.Fatalf("award %s: %v", code, err)
		}
	}
	awards, err := ledger.Awards(ctx, 7)
	if err != nil {
		t.Fatalf("Awards: %v", err)
	}
	if len(awards) != 3 {
		t.Errorf("expected 3 awards, got %d", len(awards))
	}
	for _, a := range awards {
		if a.UserID != 7 {
			t.Errorf("award for wrong user: %+v", a)
		}
	}
}

func TestGormLedger_EngineRoundTrip(t *testing.T) {
	// Engine wired to the real ledger over sqlite: the threshold badge
	// surfaces once and never again.
	ledger := openLedgerDB(t)
	e := newTestEngine(reflectionWeeks(10), ledger)
	ctx := context.Background()

	first, err := e.Evaluate(ctx, 3, ActionFridayReflection, ReflectionContext{Week: anchorMonday})
	if err != nil {
		t.Fatalf("first evaluate: %v", err)
	}
	found := false
	for _, b := range first {
		if b.Code == "reflection_pro" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected reflection_pro in first pass, got %v", codes(first))
	}

	second, err := e.Evaluate(ctx, 3, ActionFridayReflection, ReflectionContext{Week: anchorMonday})
	if err != nil {
		t.Fatalf("second evaluate: %v", err)
	}
	for _, b := range second {
		if b.Code == "reflection_pro" {
			t.Errorf("reflection_pro must not surface twice")
		}
	}
}
