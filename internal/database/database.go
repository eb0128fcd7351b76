package database

import (
	"log"

	"github.com/stackquest/stackquest-api/internal/config"
	"github.com/stackquest/stackquest-api/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// Connect opens the backing store: a hosted Postgres when DATABASE_URL is
// set, a local sqlite file otherwise.
func Connect(cfg *config.Config) *gorm.DB {
	var dialector gorm.Dialector
	if cfg.DatabaseURL != "" {
		dialector = postgres.Open(cfg.DatabaseURL)
	} else {
		dialector = sqlite.Open(cfg.DatabasePath)
	}

	db, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Auto Migrate
	err = db.AutoMigrate(
		&models.User{},
		&models.Achievement{},
		&models.AchievementGrant{},
		&models.ProgressMarker{},
		&models.APIKey{},
	)
	if err != nil {
		log.Fatalf("Failed to auto migrate: %v", err)
	}

	if err := Seed(db); err != nil {
		log.Fatalf("Failed to seed achievement catalog: %v", err)
	}

	return db
}
