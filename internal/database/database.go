package database

import (
	"fmt"
	"time"

	"pharmacy_backend/internal/config"
	"pharmacy_backend/internal/logger"
	"pharmacy_backend/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Connect opens the Postgres pool described by cfg and verifies it with a ping.
func Connect(cfg *config.Config) (*gorm.DB, error) {
	if cfg.Database.DSN == "" {
		return nil, fmt.Errorf("database url is not configured")
	}

	level := gormlogger.Warn
	if cfg.IsDevelopment() {
		level = gormlogger.Info
	}

	db, err := gorm.Open(postgres.Open(cfg.Database.DSN), &gorm.Config{
		Logger: gormlogger.Default.LogMode(level),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to GORM: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get *sql.DB from GORM: %w", err)
	}
	if cfg.Database.MaxOpenConn > 0 {
		sqlDB.SetMaxOpenConns(cfg.Database.MaxOpenConn)
	}
	if cfg.Database.MaxIdleConn > 0 {
		sqlDB.SetMaxIdleConns(cfg.Database.MaxIdleConn)
	}
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("database unavailable: %w", err)
	}
	return db, nil
}

// AutoMigrate creates or updates every table the service owns.
func AutoMigrate(db *gorm.DB) error {
	start := time.Now()
	err := db.AutoMigrate(
		&models.Notification{},
		&models.Prescription{},
		&models.PharmacyResponse{},
	)
	logger.DBLog("automigrate", "*", time.Since(start), err)
	if err != nil {
		return fmt.Errorf("automigrate: %w", err)
	}
	return nil
}
