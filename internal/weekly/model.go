package weekly

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Goal is one week's Monday ritual: the primary goal plus up to four
// secondary ones. GoalCount is denormalized at write time so totals can
// be summed in SQL.
type Goal struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	UserID      uint           `gorm:"not null;uniqueIndex:idx_user_week_goals" json:"user_id"`
	WeekStart   time.Time      `gorm:"not null;uniqueIndex:idx_user_week_goals" json:"week_start_date"`
	PrimaryGoal string         `json:"primary_goal"`
	Secondary   datatypes.JSON `gorm:"type:jsonb" json:"secondary_goals"`
	FocusAreas  datatypes.JSON `gorm:"type:jsonb" json:"focus_areas"`
	Commitments datatypes.JSON `gorm:"type:jsonb" json:"weekly_commitments"`
	GoalCount   int            `gorm:"not null;default:0" json:"goal_count"`
	Status      string         `gorm:"size:16;not null;default:'active'" json:"status"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
}

func (Goal) TableName() string {
	return "weekly_goals"
}

// Reflection is the Friday ritual. Sentiment is filled in later by the
// AI analysis route; its presence is what "AI analyzed" means, so a
// week can gain that flag retroactively.
type Reflection struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	UserID          uint           `gorm:"not null;uniqueIndex:idx_user_week_reflection" json:"user_id"`
	WeekStart       time.Time      `gorm:"not null;uniqueIndex:idx_user_week_reflection" json:"week_start_date"`
	Accomplishments string         `json:"accomplishments"`
	Challenges      string         `json:"challenges"`
	Lessons         string         `json:"lessons_learned"`
	WeekRating      *int           `json:"overall_week_rating"`
	Sentiment       datatypes.JSON `gorm:"type:jsonb" json:"sentiment_analysis"`
	CompletedAt     time.Time      `json:"completed_at"`
	CreatedAt       time.Time      `json:"createdAt"`
	UpdatedAt       time.Time      `json:"updatedAt"`
}

func (Reflection) TableName() string {
	return "friday_reflections"
}

// Progress is a per-day, per-goal completion entry logged between the
// two rituals.
type Progress struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	UserID    uint           `gorm:"not null;uniqueIndex:idx_user_week_day_goal" json:"user_id"`
	WeekStart time.Time      `gorm:"not null;uniqueIndex:idx_user_week_day_goal" json:"week_start_date"`
	DayOfWeek int            `gorm:"not null;uniqueIndex:idx_user_week_day_goal" json:"day_of_week"`
	GoalIndex int            `gorm:"not null;uniqueIndex:idx_user_week_day_goal" json:"goal_index"`
	Percent   float64        `gorm:"not null;default:0" json:"progress_percentage"`
	Notes     string         `json:"progress_notes"`
	Completed bool           `gorm:"not null;default:false" json:"completed"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

func (Progress) TableName() string {
	return "weekly_progress"
}
