package achievement

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormLedger stores awards in the user_badges table. The database's
// unique index does the synchronization; no in-process locking, so
// correctness holds across independent server instances.
type GormLedger struct {
	db *gorm.DB
}

func NewGormLedger(db *gorm.DB) *GormLedger {
	return &GormLedger{db: db}
}

func (l *GormLedger) EarnedCodes(ctx context.Context, userID uint) (map[string]bool, error) {
	var codes []string
	err := l.db.WithContext(ctx).Model(&Award{}).
		Where("user_id = ?", userID).
		Pluck("badge_code", &codes).Error
	if err != nil {
		return nil, err
	}
	earned := make(map[string]bool, len(codes))
	for _, c := range codes {
		earned[c] = true
	}
	return earned, nil
}

func (l *GormLedger) HasBadge(ctx context.Context, userID uint, code string) (bool, error) {
	var count int64
	err := l.db.WithContext(ctx).Model(&Award{}).
		Where("user_id = ? AND badge_code = ?", userID, code).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// TryAward inserts the award unless it already exists. ON CONFLICT DO
// NOTHING makes the insert race-safe: a losing writer sees zero rows
// affected and reports inserted=false, which is not an error.
func (l *GormLedger) TryAward(ctx context.Context, userID uint, code string) (bool, error) {
	award := Award{
		UserID:    userID,
		BadgeCode: code,
		EarnedAt:  time.Now().UTC(),
	}
	res := l.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&award)
	if res.Error != nil {
		// Some drivers surface the conflict instead of swallowing it.
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			return false, nil
		}
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// Awards lists a user's earned badges, newest first.
func (l *GormLedger) Awards(ctx context.Context, userID uint) ([]Award, error) {
	var awards []Award
	err := l.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("earned_at DESC").
		Find(&awards).Error
	return awards, err
}
