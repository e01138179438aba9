package database

import (
	"fmt"
	"time"

	"github.com/Eursukkul/eventsphere/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func NewPostgresDB(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)
	sqlDB.SetConnMaxIdleTime(1 * time.Minute)

	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// Migrate creates the schema and the indexes AutoMigrate cannot express.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.Event{},
		&models.ReviewEntry{},
		&models.Registration{},
		&models.Ticket{},
		&models.Notification{},
	); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}

	// Lookup path for the one-seat-per-user check. Not unique: events without
	// oneSeatPerUser allow repeat bookings by the same user.
	if err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_registration_active
		ON registrations (event_id, user_id)
		WHERE registration_status <> 'cancelled'
	`).Error; err != nil {
		return fmt.Errorf("create registration index: %w", err)
	}

	if err := db.Exec(`ALTER TABLE events DROP CONSTRAINT IF EXISTS chk_events_capacity`).Error; err != nil {
		return fmt.Errorf("drop capacity constraint: %w", err)
	}
	if err := db.Exec(`
		ALTER TABLE events ADD CONSTRAINT chk_events_capacity
		CHECK (max_attendees = 0 OR current_attendees <= max_attendees)
	`).Error; err != nil {
		return fmt.Errorf("create capacity constraint: %w", err)
	}

	return nil
}
