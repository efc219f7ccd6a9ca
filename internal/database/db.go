package database

import (
	"fmt"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"bmr-backend/internal/config"
	"bmr-backend/internal/models"
)

var DB *gorm.DB

// Init opens the Postgres connection and migrates the current models.
func Init(cfg *config.Config, logger *zap.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{
		// Deleting a supplier or test report must not fail on rows that still
		// reference it.
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	err = db.AutoMigrate(
		&models.User{},
		&models.Supplier{},
		&models.Fabric{},
		&models.RMTestReport{},
		&models.BMR{},
		&models.AuditLog{},
	)
	if err != nil {
		return nil, fmt.Errorf("automigrate: %w", err)
	}

	DB = db
	logger.Info("database connected, migration complete")
	return db, nil
}
