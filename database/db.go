package database

import (
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"handyman-backend/models"
)

var DB *gorm.DB

func env(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// Connect opens the Postgres connection used by the whole process.
func Connect() {
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		env("DB_HOST", "localhost"),
		env("DB_USER", "postgres"),
		os.Getenv("DB_PASSWORD"),
		env("DB_NAME", "handyman"),
		env("DB_PORT", "5432"),
		env("DB_SSLMODE", "disable"),
	)

	var err error
	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal().Err(err).Msg("could not connect to database")
	}
}

// AutoMigrate applies idempotent schema migrations and seeds the settings row.
func AutoMigrate() {
	err := DB.AutoMigrate(
		&models.Client{}, &models.Service{}, &models.Booking{},
		&models.Estimate{}, &models.Invoice{},
		&models.ActivityLog{}, &models.Settings{}, &models.IdempotencyKey{},
	)
	if err != nil {
		log.Fatal().Err(err).Msg("migration failed")
	}

	// Single settings row, created once.
	var count int64
	DB.Model(&models.Settings{}).Count(&count)
	if count == 0 {
		DB.Create(&models.Settings{
			ID:              1,
			EstimateDueDays: 30,
			InvoiceDueDays:  14,
		})
	}
}
