package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Eursukkul/eventsphere/internal/lifecycle"
	"github.com/Eursukkul/eventsphere/internal/logging"
	"github.com/Eursukkul/eventsphere/internal/metrics"
	"github.com/Eursukkul/eventsphere/internal/models"
	"github.com/Eursukkul/eventsphere/internal/repository"
	"gorm.io/gorm"
)

type Stats struct {
	Users          int64                   `json:"users"`
	Events         int64                   `json:"events"`
	Registrations  int64                   `json:"registrations"`
	EventsByStatus map[string]int64        `json:"events_by_status"`
	Trend          []repository.TrendPoint `json:"registration_trend"`
}

// ReviewService is the admin approval workflow. Completed is set only by
// the lifecycle sync, never by a reviewer, except through SetStatus.
type ReviewService interface {
	ListEvents(ctx context.Context, status string) ([]models.Event, error)
	Approve(ctx context.Context, reviewerID, eventID uint, note string) (*models.Event, error)
	Reject(ctx context.Context, reviewerID, eventID uint, reason string) (*models.Event, error)
	SetStatus(ctx context.Context, eventID uint, status, reason string) (*models.Event, error)
	Stats(ctx context.Context) (*Stats, error)
}

type reviewService struct {
	tx            repository.TxRunner
	events        repository.EventRepository
	registrations repository.RegistrationRepository
	users         repository.UserRepository
	publisher     Publisher
	syncer        *statusSyncer
	now           func() time.Time
}

func NewReviewService(
	tx repository.TxRunner,
	events repository.EventRepository,
	registrations repository.RegistrationRepository,
	users repository.UserRepository,
	publisher Publisher,
) ReviewService {
	s := &reviewService{
		tx:            tx,
		events:        events,
		registrations: registrations,
		users:         users,
		publisher:     publisher,
		now:           time.Now,
	}
	s.syncer = &statusSyncer{events: events, publisher: publisher, now: func() time.Time { return s.now() }}
	return s
}

func (s *reviewService) ListEvents(ctx context.Context, status string) ([]models.Event, error) {
	events, err := s.events.FindAll(ctx, status)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	if err := s.syncer.syncAll(ctx, events); err != nil {
		return nil, err
	}
	return events, nil
}

func (s *reviewService) Approve(ctx context.Context, reviewerID, eventID uint, note string) (*models.Event, error) {
	return s.review(ctx, eventID, "approve", func(e *models.Event) *models.ReviewEntry {
		entry := lifecycle.Approve(e, reviewerID, note, s.now())
		return &entry
	})
}

func (s *reviewService) Reject(ctx context.Context, reviewerID, eventID uint, reason string) (*models.Event, error) {
	return s.review(ctx, eventID, "reject", func(e *models.Event) *models.ReviewEntry {
		entry := lifecycle.Reject(e, reviewerID, strings.TrimSpace(reason), s.now())
		return &entry
	})
}

// SetStatus forces a status. Unknown values are refused.
func (s *reviewService) SetStatus(ctx context.Context, eventID uint, status, reason string) (*models.Event, error) {
	st := models.EventStatus(strings.TrimSpace(status))
	if st == "" {
		return nil, ErrStatusRequired
	}
	if !st.Valid() {
		return nil, ErrInvalidStatus
	}
	return s.review(ctx, eventID, "set_status", func(e *models.Event) *models.ReviewEntry {
		lifecycle.ForceStatus(e, st, strings.TrimSpace(reason))
		return nil
	})
}

// review locks the event, applies mutate, syncs the result, persists it
// together with the optional audit entry and reloads it.
func (s *reviewService) review(ctx context.Context, eventID uint, action string, mutate func(*models.Event) *models.ReviewEntry) (*models.Event, error) {
	var (
		event     *models.Event
		completed bool
	)

	err := s.tx.Transaction(ctx, func(tx *gorm.DB) error {
		var err error
		event, err = s.events.FindByIDForUpdate(ctx, tx, eventID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrEventNotFound
		}
		if err != nil {
			return fmt.Errorf("load event: %w", err)
		}

		entry := mutate(event)
		if completed, err = s.syncer.repair(ctx, tx, event); err != nil {
			return err
		}
		if err := s.events.Save(ctx, tx, event); err != nil {
			return fmt.Errorf("save event: %w", err)
		}
		if entry != nil {
			if err := s.events.AppendReview(ctx, tx, entry); err != nil {
				return fmt.Errorf("append review: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.ReviewActions.WithLabelValues(action, string(event.Status)).Inc()
	logging.Info().Uint("event_id", event.ID).Str("action", action).Str("status", string(event.Status)).Msg("event reviewed")

	msg := eventMessage(reviewRoutingKey(action), event, event.HostID, s.now())
	if event.RejectReason != nil {
		msg.Note = *event.RejectReason
	}
	publish(s.publisher, msg)
	if completed {
		s.syncer.announce(event)
	}

	reloaded, err := s.events.FindByID(ctx, event.ID)
	if err != nil {
		return nil, fmt.Errorf("reload event: %w", err)
	}
	return reloaded, nil
}

func reviewRoutingKey(action string) string {
	switch action {
	case "approve":
		return models.KeyEventApproved
	case "reject":
		return models.KeyEventRejected
	}
	return models.KeyEventStatusChanged
}

func (s *reviewService) Stats(ctx context.Context) (*Stats, error) {
	users, err := s.users.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count users: %w", err)
	}
	events, err := s.events.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count events: %w", err)
	}
	registrations, err := s.registrations.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count registrations: %w", err)
	}
	byStatus, err := s.events.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("count events by status: %w", err)
	}
	trend, err := s.registrations.DailyTrend(ctx)
	if err != nil {
		return nil, fmt.Errorf("registration trend: %w", err)
	}

	stats := &Stats{
		Users:          users,
		Events:         events,
		Registrations:  registrations,
		EventsByStatus: make(map[string]int64, 4),
		Trend:          trend,
	}
	for _, st := range []models.EventStatus{models.EventPending, models.EventApproved, models.EventRejected, models.EventCompleted} {
		stats.EventsByStatus[string(st)] = byStatus[st]
	}
	return stats, nil
}
