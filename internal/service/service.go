// Package service holds the business rules: event lifecycle sync,
// registration, admin review, host settings, tickets and accounts.
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/Eursukkul/eventsphere/internal/lifecycle"
	"github.com/Eursukkul/eventsphere/internal/logging"
	"github.com/Eursukkul/eventsphere/internal/metrics"
	"github.com/Eursukkul/eventsphere/internal/models"
	"github.com/Eursukkul/eventsphere/internal/repository"
	"gorm.io/gorm"
)

// Publisher sends domain events to the message bus. A nil Publisher
// disables publishing.
type Publisher interface {
	Publish(routingKey string, payload any) error
}

// CodeGenerator renders a scannable code image for a ticket payload.
type CodeGenerator interface {
	DataURI(payload string) (string, error)
}

// publish is best-effort: failures are logged and counted, never returned.
func publish(p Publisher, msg models.DomainEvent) {
	if p == nil {
		return
	}
	if err := p.Publish(msg.Kind, msg); err != nil {
		metrics.PublishFailures.WithLabelValues(msg.Kind).Inc()
		logging.Warn().Err(err).
			Str("routing_key", msg.Kind).
			Uint("event_id", msg.EventID).
			Msg("publish domain event")
	}
}

func eventMessage(kind string, e *models.Event, recipient uint, at time.Time) models.DomainEvent {
	return models.DomainEvent{
		Kind:        kind,
		EventID:     e.ID,
		EventTitle:  e.Title,
		Status:      e.Status,
		RecipientID: recipient,
		OccurredAt:  at,
	}
}

// statusSyncer applies lifecycle.Sync and persists the repair.
type statusSyncer struct {
	events    repository.EventRepository
	publisher Publisher
	now       func() time.Time
}

// sync repairs e outside any transaction and announces a completion.
func (s *statusSyncer) sync(ctx context.Context, e *models.Event) error {
	completed, err := s.repair(ctx, nil, e)
	if err != nil {
		return err
	}
	if completed {
		s.announce(e)
	}
	return nil
}

// repair persists a status change through tx and reports whether the event
// just completed. Callers inside a transaction announce after commit.
func (s *statusSyncer) repair(ctx context.Context, tx *gorm.DB, e *models.Event) (bool, error) {
	if !lifecycle.Sync(e, s.now()) {
		return false, nil
	}
	if err := s.events.SaveStatus(ctx, tx, e); err != nil {
		return false, fmt.Errorf("persist event status: %w", err)
	}
	metrics.LifecycleTransitions.WithLabelValues(string(e.Status)).Inc()
	return e.Status == models.EventCompleted, nil
}

func (s *statusSyncer) announce(e *models.Event) {
	publish(s.publisher, eventMessage(models.KeyEventCompleted, e, e.HostID, s.now()))
}

func (s *statusSyncer) syncAll(ctx context.Context, events []models.Event) error {
	for i := range events {
		if err := s.sync(ctx, &events[i]); err != nil {
			return err
		}
	}
	return nil
}
