package repository

import (
	"context"
	"time"

	"github.com/Eursukkul/eventsphere/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type EventRepository interface {
	Create(ctx context.Context, event *models.Event) error
	FindByID(ctx context.Context, id uint) (*models.Event, error)
	FindByIDForUpdate(ctx context.Context, tx *gorm.DB, id uint) (*models.Event, error)
	FindByIDAndHost(ctx context.Context, id, hostID uint) (*models.Event, error)
	FindPublic(ctx context.Context, now time.Time) ([]models.Event, error)
	FindFeatured(ctx context.Context, limit int) ([]models.Event, error)
	FindByHost(ctx context.Context, hostID uint) ([]models.Event, error)
	FindAll(ctx context.Context, status string) ([]models.Event, error)
	FindPastDue(ctx context.Context, now time.Time) ([]models.Event, error)
	FindReminderDue(ctx context.Context, from, until time.Time) ([]models.Event, error)
	Save(ctx context.Context, tx *gorm.DB, event *models.Event) error
	SaveStatus(ctx context.Context, tx *gorm.DB, event *models.Event) error
	SaveSettings(ctx context.Context, tx *gorm.DB, event *models.Event) error
	AppendReview(ctx context.Context, tx *gorm.DB, entry *models.ReviewEntry) error
	ReserveSeats(ctx context.Context, tx *gorm.DB, eventID uint, seats int, revenue float64, at time.Time) (bool, error)
	ReleaseSeats(ctx context.Context, tx *gorm.DB, eventID uint, seats int) error
	MarkReminderSent(ctx context.Context, id uint, at time.Time) error
	Count(ctx context.Context) (int64, error)
	CountByStatus(ctx context.Context) (map[models.EventStatus]int64, error)
}

type eventRepository struct {
	db *gorm.DB
}

func NewEventRepository(db *gorm.DB) EventRepository {
	return &eventRepository{db: db}
}

func (r *eventRepository) Create(ctx context.Context, event *models.Event) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(event).Error
}

func (r *eventRepository) FindByID(ctx context.Context, id uint) (*models.Event, error) {
	var event models.Event
	err := r.db.WithContext(ctx).
		Preload("ReviewHistory", func(db *gorm.DB) *gorm.DB { return db.Order("reviewed_at ASC, id ASC") }).
		First(&event, id).Error
	if err != nil {
		return nil, err
	}
	return &event, nil
}

// FindByIDForUpdate acquires a row-level lock on the event within the given transaction.
func (r *eventRepository) FindByIDForUpdate(ctx context.Context, tx *gorm.DB, id uint) (*models.Event, error) {
	var event models.Event
	if err := conn(r.db, tx).WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&event, id).Error; err != nil {
		return nil, err
	}
	return &event, nil
}

func (r *eventRepository) FindByIDAndHost(ctx context.Context, id, hostID uint) (*models.Event, error) {
	var event models.Event
	if err := r.db.WithContext(ctx).
		Where("id = ? AND host_id = ?", id, hostID).
		First(&event).Error; err != nil {
		return nil, err
	}
	return &event, nil
}

// FindPublic lists events that are not rejected and are either approved or
// still upcoming.
func (r *eventRepository) FindPublic(ctx context.Context, now time.Time) ([]models.Event, error) {
	var events []models.Event
	err := r.db.WithContext(ctx).
		Where("admin_rejected = ?", false).
		Where(r.db.Where("approved = ?", true).Or("date >= ?", now)).
		Order("date ASC NULLS LAST, id ASC").
		Find(&events).Error
	return events, err
}

func (r *eventRepository) FindFeatured(ctx context.Context, limit int) ([]models.Event, error) {
	var events []models.Event
	err := r.db.WithContext(ctx).
		Where("approved = ? AND is_active = ?", true, true).
		Order("created_at DESC").
		Limit(limit).
		Find(&events).Error
	return events, err
}

func (r *eventRepository) FindByHost(ctx context.Context, hostID uint) ([]models.Event, error) {
	var events []models.Event
	err := r.db.WithContext(ctx).
		Where("host_id = ?", hostID).
		Order("created_at DESC").
		Find(&events).Error
	return events, err
}

func (r *eventRepository) FindAll(ctx context.Context, status string) ([]models.Event, error) {
	var events []models.Event
	q := r.db.WithContext(ctx)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	err := q.Order("created_at DESC").Find(&events).Error
	return events, err
}

// FindPastDue returns events whose date has passed but are not yet completed.
func (r *eventRepository) FindPastDue(ctx context.Context, now time.Time) ([]models.Event, error) {
	var events []models.Event
	err := r.db.WithContext(ctx).
		Where("date < ? AND status <> ?", now, models.EventCompleted).
		Order("date ASC").
		Find(&events).Error
	return events, err
}

// FindReminderDue returns approved, active events with reminders enabled that
// start within [from, until) and have not been reminded yet.
func (r *eventRepository) FindReminderDue(ctx context.Context, from, until time.Time) ([]models.Event, error) {
	var events []models.Event
	err := r.db.WithContext(ctx).
		Where("status = ? AND is_active = ? AND enable_reminders = ?", models.EventApproved, true, true).
		Where("date >= ? AND date < ?", from, until).
		Where("reminder_sent_at IS NULL").
		Order("date ASC").
		Find(&events).Error
	return events, err
}

// counterColumns are written only by ReserveSeats and ReleaseSeats.
var counterColumns = []string{
	clause.Associations,
	"current_attendees",
	"analytics_total_registrations",
	"analytics_total_tickets",
	"analytics_total_revenue",
	"analytics_last_registration_at",
	"reminder_sent_at",
}

// Save writes the editable columns. Counters are left to the conditional
// updates so a concurrent registration is never overwritten.
func (r *eventRepository) Save(ctx context.Context, tx *gorm.DB, event *models.Event) error {
	return conn(r.db, tx).WithContext(ctx).Omit(counterColumns...).Save(event).Error
}

// SaveStatus writes the lifecycle fields in one UPDATE.
func (r *eventRepository) SaveStatus(ctx context.Context, tx *gorm.DB, event *models.Event) error {
	return conn(r.db, tx).WithContext(ctx).
		Model(&models.Event{}).
		Where("id = ?", event.ID).
		Updates(map[string]any{
			"status":                 event.Status,
			"is_active":              event.IsActive,
			"auto_status_updated_at": event.AutoStatusUpdatedAt,
		}).Error
}

// SaveSettings writes only the host-controlled registration knobs, leaving
// approval state to the review workflow.
func (r *eventRepository) SaveSettings(ctx context.Context, tx *gorm.DB, event *models.Event) error {
	return conn(r.db, tx).WithContext(ctx).
		Model(&models.Event{}).
		Where("id = ?", event.ID).
		Updates(map[string]any{
			"is_active":             event.IsActive,
			"one_seat_per_user":     event.OneSeatPerUser,
			"allow_cancellation":    event.AllowCancellation,
			"enable_reminders":      event.EnableReminders,
			"registration_deadline": event.RegistrationDeadline,
			"team_limit":            event.TeamLimit,
		}).Error
}

func (r *eventRepository) AppendReview(ctx context.Context, tx *gorm.DB, entry *models.ReviewEntry) error {
	return conn(r.db, tx).WithContext(ctx).Create(entry).Error
}

// ReserveSeats increments the attendee and analytics counters only if the
// result stays within capacity. It reports false when no seats were taken.
func (r *eventRepository) ReserveSeats(ctx context.Context, tx *gorm.DB, eventID uint, seats int, revenue float64, at time.Time) (bool, error) {
	res := conn(r.db, tx).WithContext(ctx).
		Model(&models.Event{}).
		Where("id = ? AND (max_attendees = 0 OR current_attendees + ? <= max_attendees)", eventID, seats).
		Updates(map[string]any{
			"current_attendees":              gorm.Expr("current_attendees + ?", seats),
			"analytics_total_registrations":  gorm.Expr("analytics_total_registrations + 1"),
			"analytics_total_tickets":        gorm.Expr("analytics_total_tickets + ?", seats),
			"analytics_total_revenue":        gorm.Expr("analytics_total_revenue + ?", revenue),
			"analytics_last_registration_at": at,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *eventRepository) ReleaseSeats(ctx context.Context, tx *gorm.DB, eventID uint, seats int) error {
	return conn(r.db, tx).WithContext(ctx).
		Model(&models.Event{}).
		Where("id = ?", eventID).
		Update("current_attendees", gorm.Expr("GREATEST(current_attendees - ?, 0)", seats)).Error
}

func (r *eventRepository) MarkReminderSent(ctx context.Context, id uint, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.Event{}).
		Where("id = ?", id).
		Update("reminder_sent_at", at).Error
}

func (r *eventRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Event{}).Count(&n).Error
	return n, err
}

func (r *eventRepository) CountByStatus(ctx context.Context) (map[models.EventStatus]int64, error) {
	var rows []struct {
		Status models.EventStatus
		Count  int64
	}
	if err := r.db.WithContext(ctx).
		Model(&models.Event{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	counts := make(map[models.EventStatus]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}
