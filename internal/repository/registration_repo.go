package repository

import (
	"context"

	"github.com/Eursukkul/eventsphere/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type TrendPoint struct {
	Day   string `json:"day"`
	Count int64  `json:"count"`
}

type RegistrationRepository interface {
	Create(ctx context.Context, tx *gorm.DB, registration *models.Registration) error
	FindByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Registration, error)
	FindActiveByUserAndEvent(ctx context.Context, tx *gorm.DB, userID, eventID uint) (*models.Registration, error)
	FindByUser(ctx context.Context, userID uint) ([]models.Registration, error)
	FindByEvent(ctx context.Context, eventID uint) ([]models.Registration, error)
	FindConfirmedByEvent(ctx context.Context, eventID uint) ([]models.Registration, error)
	FindByTicketID(ctx context.Context, ticketID string) (*models.Registration, error)
	Cancel(ctx context.Context, tx *gorm.DB, id uint) (bool, error)
	UpdateCheckIn(ctx context.Context, tx *gorm.DB, ticketID string, status models.CheckInStatus) error
	Count(ctx context.Context) (int64, error)
	DailyTrend(ctx context.Context) ([]TrendPoint, error)
}

type registrationRepository struct {
	db *gorm.DB
}

func NewRegistrationRepository(db *gorm.DB) RegistrationRepository {
	return &registrationRepository{db: db}
}

func (r *registrationRepository) Create(ctx context.Context, tx *gorm.DB, registration *models.Registration) error {
	return conn(r.db, tx).WithContext(ctx).Omit(clause.Associations).Create(registration).Error
}

func (r *registrationRepository) FindByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Registration, error) {
	var registration models.Registration
	if err := conn(r.db, tx).WithContext(ctx).First(&registration, id).Error; err != nil {
		return nil, err
	}
	return &registration, nil
}

func (r *registrationRepository) FindActiveByUserAndEvent(ctx context.Context, tx *gorm.DB, userID, eventID uint) (*models.Registration, error) {
	var registration models.Registration
	err := conn(r.db, tx).WithContext(ctx).
		Where("user_id = ? AND event_id = ? AND registration_status <> ?", userID, eventID, models.RegistrationCancelled).
		First(&registration).Error
	if err != nil {
		return nil, err
	}
	return &registration, nil
}

func (r *registrationRepository) FindByUser(ctx context.Context, userID uint) ([]models.Registration, error) {
	var registrations []models.Registration
	err := r.db.WithContext(ctx).
		Preload("Event").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&registrations).Error
	return registrations, err
}

func (r *registrationRepository) FindByEvent(ctx context.Context, eventID uint) ([]models.Registration, error) {
	var registrations []models.Registration
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("event_id = ?", eventID).
		Order("created_at DESC").
		Find(&registrations).Error
	return registrations, err
}

func (r *registrationRepository) FindConfirmedByEvent(ctx context.Context, eventID uint) ([]models.Registration, error) {
	var registrations []models.Registration
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("event_id = ? AND registration_status = ?", eventID, models.RegistrationConfirmed).
		Order("created_at ASC").
		Find(&registrations).Error
	return registrations, err
}

func (r *registrationRepository) FindByTicketID(ctx context.Context, ticketID string) (*models.Registration, error) {
	var registration models.Registration
	if err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Event").
		Where("ticket_id = ?", ticketID).
		First(&registration).Error; err != nil {
		return nil, err
	}
	return &registration, nil
}

// Cancel moves a live registration to cancelled. It reports false when the
// row was already cancelled, so concurrent cancels release seats once.
func (r *registrationRepository) Cancel(ctx context.Context, tx *gorm.DB, id uint) (bool, error) {
	res := conn(r.db, tx).WithContext(ctx).
		Model(&models.Registration{}).
		Where("id = ? AND registration_status <> ?", id, models.RegistrationCancelled).
		Updates(map[string]any{
			"registration_status": models.RegistrationCancelled,
			"check_in_status":     models.CheckInCancelled,
		})
	return res.RowsAffected == 1, res.Error
}

// UpdateCheckIn leaves cancelled registrations untouched.
func (r *registrationRepository) UpdateCheckIn(ctx context.Context, tx *gorm.DB, ticketID string, status models.CheckInStatus) error {
	return conn(r.db, tx).WithContext(ctx).
		Model(&models.Registration{}).
		Where("ticket_id = ? AND registration_status <> ?", ticketID, models.RegistrationCancelled).
		Update("check_in_status", status).Error
}

func (r *registrationRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Registration{}).Count(&n).Error
	return n, err
}

// DailyTrend counts registrations per calendar day, oldest first.
func (r *registrationRepository) DailyTrend(ctx context.Context) ([]TrendPoint, error) {
	var points []TrendPoint
	err := r.db.WithContext(ctx).
		Model(&models.Registration{}).
		Select("to_char(created_at, 'YYYY-MM-DD') AS day, COUNT(*) AS count").
		Group("day").
		Order("day ASC").
		Scan(&points).Error
	return points, err
}
