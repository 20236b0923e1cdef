package db

import (
	"log"

	"reinvent/internal/achievement"
	"reinvent/internal/config"
	"reinvent/internal/user"
	"reinvent/internal/weekly"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func Init(cfg *config.Config) error {
	db, err := gorm.Open(postgres.Open(cfg.Postgres.DSN), &gorm.Config{})
	if err != nil {
		return err
	}

	// Auto-migrate user model
	if err := db.AutoMigrate(&user.User{}); err != nil {
		return err
	}

	// Auto-migrate weekly ritual models
	if err := db.AutoMigrate(&weekly.Goal{}, &weekly.Reflection{}, &weekly.Progress{}); err != nil {
		return err
	}

	// Auto-migrate award ledger (carries the (user_id, badge_code) unique index)
	if err := db.AutoMigrate(&achievement.Award{}); err != nil {
		return err
	}

	DB = db
	log.Printf("Database connected and migrated")
	return nil
}
