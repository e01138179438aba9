package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/Eursukkul/eventsphere/internal/models"
	"github.com/Eursukkul/eventsphere/internal/repository"
	"gorm.io/gorm"
)

type TicketService interface {
	GetTicket(ctx context.Context, ticketID string) (*models.Ticket, error)
	Validate(ctx context.Context, ticketID string) (*models.Registration, error)
	MarkUsed(ctx context.Context, ticketID string) error
}

type ticketService struct {
	tx            repository.TxRunner
	tickets       repository.TicketRepository
	registrations repository.RegistrationRepository
}

func NewTicketService(tx repository.TxRunner, tickets repository.TicketRepository, registrations repository.RegistrationRepository) TicketService {
	return &ticketService{tx: tx, tickets: tickets, registrations: registrations}
}

func (s *ticketService) GetTicket(ctx context.Context, ticketID string) (*models.Ticket, error) {
	ticket, err := s.tickets.FindByTicketID(ctx, ticketID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrTicketNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get ticket: %w", err)
	}
	return ticket, nil
}

// Validate checks a scanned ticket and returns its registration.
func (s *ticketService) Validate(ctx context.Context, ticketID string) (*models.Registration, error) {
	ticket, err := s.GetTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if ticket.Status != models.TicketActive {
		return nil, ErrTicketInactive
	}

	registration, err := s.registrations.FindByTicketID(ctx, ticketID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrRegistrationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get registration: %w", err)
	}
	return registration, nil
}

// MarkUsed checks the holder in: the ticket becomes used and the
// registration checked in. Only an active ticket can be used, and only once.
func (s *ticketService) MarkUsed(ctx context.Context, ticketID string) error {
	if _, err := s.GetTicket(ctx, ticketID); err != nil {
		return err
	}

	return s.tx.Transaction(ctx, func(tx *gorm.DB) error {
		used, err := s.tickets.Transition(ctx, tx, ticketID, models.TicketActive, models.TicketUsed)
		if err != nil {
			return fmt.Errorf("mark ticket used: %w", err)
		}
		if !used {
			return ErrTicketInactive
		}
		if err := s.registrations.UpdateCheckIn(ctx, tx, ticketID, models.CheckInCheckedIn); err != nil {
			return fmt.Errorf("check in registration: %w", err)
		}
		return nil
	})
}
