package achievement

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"
)

type fakeActivity struct {
	history []ActivityRecord
	err     error
}

func (f *fakeActivity) History(ctx context.Context, userID uint) ([]ActivityRecord, error) {
	return f.history, f.err
}

// memLedger mimics the database's insert-if-absent semantics with a
// mutex, letting engine behavior be tested without a live store.
type memLedger struct {
	mu      sync.Mutex
	awards  map[string]bool
	loadErr error
	saveErr error
}

func newMemLedger() *memLedger {
	return &memLedger{awards: map[string]bool{}}
}

func (l *memLedger) key(userID uint, code string) string {
	return fmt.Sprintf("%d/%s", userID, code)
}

func (l *memLedger) EarnedCodes(ctx context.Context, userID uint) (map[string]bool, error) {
	if l.loadErr != nil {
		return nil, l.loadErr
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	out := map[string]bool{}
	prefix := fmt.Sprintf("%d/", userID)
	for k := range l.awards {
		if len(k) > len(prefix) && k[:len(prefix)] == prefix {
			out[k[len(prefix):]] = true
		}
	}
	return out, nil
}

func (l *memLedger) HasBadge(ctx context.Context, userID uint, code string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.awards[l.key(userID, code)], nil
}

func (l *memLedger) TryAward(ctx context.Context, userID uint, code string) (bool, error) {
	if l.saveErr != nil {
		return false, l.saveErr
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	k := l.key(userID, code)
	if l.awards[k] {
		return false, nil
	}
	l.awards[k] = true
	return true, nil
}

func newTestEngine(history []ActivityRecord, ledger Ledger) *Engine {
	e := NewEngine(&fakeActivity{history: history}, ledger)
	e.now = func() time.Time { return anchorMonday }
	return e
}

func codes(badges []Badge) []string {
	var out []string
	for _, b := range badges {
		out = append(out, b.Code)
	}
	return out
}

func TestEvaluate_FirstWeekBadge(t *testing.T) {
	e := newTestEngine(goalWeeks(1), newMemLedger())
	got, err := e.Evaluate(context.Background(), 1, ActionWeeklyGoalsSet, GoalsContext{Week: anchorMonday, GoalCount: 3})
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if len(got) != 1 || got[0].Code != "first_week" {
		t.Errorf("expected [first_week], got %v", codes(got))
	}
}

func TestEvaluate_Idempotent(t *testing.T) {
	e := newTestEngine(reflectionWeeks(10), newMemLedger())
	ctx := context.Background()

	first, err := e.Evaluate(ctx, 1, ActionFridayReflection, ReflectionContext{Week: anchorMonday})
	if err != nil {
		t.Fatalf("first evaluate: %v", err)
	}
	second, err := e.Evaluate(ctx, 1, ActionFridayReflection, ReflectionContext{Week: anchorMonday})
	if err != nil {
		t.Fatalf("second evaluate: %v", err)
	}
	firstCodes := map[string]bool{}
	for _, b := range first {
		firstCodes[b.Code] = true
	}
	for _, b := range second {
		if firstCodes[b.Code] {
			t.Errorf("badge %s returned by both passes", b.Code)
		}
	}
}

func TestEvaluate_ConcurrentSingleWinner(t *testing.T) {
	e := newTestEngine(reflectionWeeks(10), newMemLedger())
	ctx := context.Background()

	const n = 16
	results := make([][]Badge, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			got, err := e.Evaluate(ctx, 1, ActionFridayReflection, ReflectionContext{Week: anchorMonday})
			if err != nil {
				t.Errorf("evaluate %d: %v", i, err)
				return
			}
			results[i] = got
		}(i)
	}
	wg.Wait()

	won := 0
	for _, got := range results {
		for _, b := range got {
			if b.Code == "reflection_pro" {
				won++
			}
		}
	}
	if won != 1 {
		t.Errorf("expected exactly one winner for reflection_pro, got %d", won)
	}
}

func TestEvaluate_HistoryLoadFailureAborts(t *testing.T) {
	ledger := newMemLedger()
	e := NewEngine(&fakeActivity{err: errors.New("store down")}, ledger)
	got, err := e.Evaluate(context.Background(), 1, ActionFridayReflection, nil)
	if err == nil {
		t.Fatalf("expected error when history load fails")
	}
	if len(got) != 0 {
		t.Errorf("no badges may surface from a failed pass, got %v", codes(got))
	}
	if len(ledger.awards) != 0 {
		t.Errorf("failed pass must not write awards")
	}
}

func TestEvaluate_LedgerLoadFailureAborts(t *testing.T) {
	ledger := newMemLedger()
	ledger.loadErr = errors.New("ledger down")
	e := newTestEngine(reflectionWeeks(10), ledger)
	if _, err := e.Evaluate(context.Background(), 1, ActionFridayReflection, nil); err == nil {
		t.Fatalf("expected error when ledger load fails")
	}
}

func TestEvaluate_AwardWriteFailureAborts(t *testing.T) {
	ledger := newMemLedger()
	ledger.saveErr = errors.New("write refused")
	e := newTestEngine(reflectionWeeks(10), ledger)
	got, err := e.Evaluate(context.Background(), 1, ActionFridayReflection, nil)
	if err == nil {
		t.Fatalf("expected error when award insert fails")
	}
	if len(got) != 0 {
		t.Errorf("failed pass must surface no badges, got %v", codes(got))
	}
}

func TestEvaluate_RaceLostIsNotAnError(t *testing.T) {
	ledger := newMemLedger()
	// Another instance already inserted the award, but this process's
	// earned-set read happened before that. The losing insert is simply
	// excluded from the delta.
	e := newTestEngine(reflectionWeeks(10), ledger)
	ledgerSeed := newTestEngine(reflectionWeeks(10), ledger)
	if _, err := ledgerSeed.Evaluate(context.Background(), 1, ActionFridayReflection, nil); err != nil {
		t.Fatalf("seed evaluate: %v", err)
	}
	got, err := e.Evaluate(context.Background(), 1, ActionFridayReflection, nil)
	if err != nil {
		t.Fatalf("evaluate after race: %v", err)
	}
	for _, b := range got {
		if b.Code == "reflection_pro" {
			t.Errorf("lost race must not re-surface reflection_pro")
		}
	}
}

func TestStats_AggregatesHistory(t *testing.T) {
	history := []ActivityRecord{
		{WeekStart: weeksAgo(0), GoalsSet: true, ReflectionDone: true, AIAnalyzed: true, GoalCount: 4},
		{WeekStart: weeksAgo(1), GoalsSet: true, ReflectionDone: true, GoalCount: 2},
		{WeekStart: weeksAgo(3), GoalsSet: true, GoalCount: 5},
	}
	e := newTestEngine(history, newMemLedger())
	snap, err := e.Stats(context.Background(), 1)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if snap.Reflections != 2 || snap.GoalWeeks != 3 || snap.TotalGoals != 11 || snap.AnalyzedReflections != 1 {
		t.Errorf("unexpected counters: %+v", snap)
	}
	if snap.GoalStreak != 2 || snap.ReflectionStreak != 2 || snap.CompleteStreak != 2 {
		t.Errorf("unexpected streaks: %+v", snap)
	}
}
