package repository

import (
	"context"

	"github.com/Eursukkul/eventsphere/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type TicketRepository interface {
	Create(ctx context.Context, tx *gorm.DB, ticket *models.Ticket) error
	FindByTicketID(ctx context.Context, ticketID string) (*models.Ticket, error)
	FindByTicketIDs(ctx context.Context, ticketIDs []string) ([]models.Ticket, error)
	UpdateStatus(ctx context.Context, tx *gorm.DB, ticketID string, status models.TicketStatus) error
	Transition(ctx context.Context, tx *gorm.DB, ticketID string, from, to models.TicketStatus) (bool, error)
	CountByEvent(ctx context.Context, eventID uint) (int64, error)
}

type ticketRepository struct {
	db *gorm.DB
}

func NewTicketRepository(db *gorm.DB) TicketRepository {
	return &ticketRepository{db: db}
}

func (r *ticketRepository) Create(ctx context.Context, tx *gorm.DB, ticket *models.Ticket) error {
	return conn(r.db, tx).WithContext(ctx).Omit(clause.Associations).Create(ticket).Error
}

func (r *ticketRepository) FindByTicketID(ctx context.Context, ticketID string) (*models.Ticket, error) {
	var ticket models.Ticket
	if err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Event").
		Where("ticket_id = ?", ticketID).
		First(&ticket).Error; err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (r *ticketRepository) FindByTicketIDs(ctx context.Context, ticketIDs []string) ([]models.Ticket, error) {
	if len(ticketIDs) == 0 {
		return nil, nil
	}
	var tickets []models.Ticket
	err := r.db.WithContext(ctx).Where("ticket_id IN ?", ticketIDs).Find(&tickets).Error
	return tickets, err
}

func (r *ticketRepository) UpdateStatus(ctx context.Context, tx *gorm.DB, ticketID string, status models.TicketStatus) error {
	return conn(r.db, tx).WithContext(ctx).
		Model(&models.Ticket{}).
		Where("ticket_id = ?", ticketID).
		Update("status", status).Error
}

// Transition moves the ticket from one status to another and reports false
// when it was not in the from status.
func (r *ticketRepository) Transition(ctx context.Context, tx *gorm.DB, ticketID string, from, to models.TicketStatus) (bool, error) {
	res := conn(r.db, tx).WithContext(ctx).
		Model(&models.Ticket{}).
		Where("ticket_id = ? AND status = ?", ticketID, from).
		Update("status", to)
	return res.RowsAffected == 1, res.Error
}

func (r *ticketRepository) CountByEvent(ctx context.Context, eventID uint) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Ticket{}).Where("event_id = ?", eventID).Count(&n).Error
	return n, err
}
