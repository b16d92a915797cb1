package database

import (
	"strings"

	"github.com/gminsights/roadmap-api/internal/config"
	"github.com/gminsights/roadmap-api/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func Connect(cfg *config.Config) (*gorm.DB, error) {
	return Open(cfg.DatabaseURL, cfg.DBLog)
}

// Open connects to PostgreSQL when the DSN starts with "postgres",
// otherwise to SQLite.
func Open(dsn string, verbose bool) (*gorm.DB, error) {
	var dialector gorm.Dialector
	if strings.HasPrefix(dsn, "postgres") {
		dialector = postgres.Open(dsn)
	} else {
		dialector = sqlite.Open(dsn)
	}

	level := logger.Warn
	if verbose {
		level = logger.Info
	}

	return gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(level),
	})
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Profile{},
		&models.Project{},
		&models.Milestone{},
		&models.Note{},
		&models.StatusUpdate{},
		&models.Preference{},
		&models.Activity{},
	)
}
