package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Eursukkul/eventsphere/internal/logging"
	"github.com/Eursukkul/eventsphere/internal/models"
	"github.com/Eursukkul/eventsphere/internal/repository"
	"gorm.io/gorm"
)

const FeaturedLimit = 6

// EventService serves the public read paths. Every event it returns has been
// lifecycle-synced against the current time.
type EventService interface {
	ListEvents(ctx context.Context) ([]models.Event, error)
	FeaturedEvents(ctx context.Context) ([]models.Event, error)
	GetEvent(ctx context.Context, id uint) (*models.Event, error)
	SweepCompleted(ctx context.Context) (int, error)
	SendReminders(ctx context.Context, window time.Duration) (int, error)
}

type eventService struct {
	events        repository.EventRepository
	registrations repository.RegistrationRepository
	publisher     Publisher
	syncer        *statusSyncer
	now           func() time.Time
}

func NewEventService(events repository.EventRepository, registrations repository.RegistrationRepository, publisher Publisher) EventService {
	s := &eventService{
		events:        events,
		registrations: registrations,
		publisher:     publisher,
		now:           time.Now,
	}
	s.syncer = &statusSyncer{events: events, publisher: publisher, now: func() time.Time { return s.now() }}
	return s
}

func (s *eventService) ListEvents(ctx context.Context) ([]models.Event, error) {
	events, err := s.events.FindPublic(ctx, s.now())
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	if err := s.syncer.syncAll(ctx, events); err != nil {
		return nil, err
	}
	return events, nil
}

func (s *eventService) FeaturedEvents(ctx context.Context) ([]models.Event, error) {
	events, err := s.events.FindFeatured(ctx, FeaturedLimit)
	if err != nil {
		return nil, fmt.Errorf("list featured events: %w", err)
	}
	if err := s.syncer.syncAll(ctx, events); err != nil {
		return nil, err
	}
	return events, nil
}

func (s *eventService) GetEvent(ctx context.Context, id uint) (*models.Event, error) {
	event, err := s.events.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrEventNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get event: %w", err)
	}
	if err := s.syncer.sync(ctx, event); err != nil {
		return nil, err
	}
	return event, nil
}

// SweepCompleted completes every past-dated event that has not been read
// since its date passed. It returns how many events changed.
func (s *eventService) SweepCompleted(ctx context.Context) (int, error) {
	events, err := s.events.FindPastDue(ctx, s.now())
	if err != nil {
		return 0, fmt.Errorf("find past-due events: %w", err)
	}

	n := 0
	for i := range events {
		before := events[i].Status
		if err := s.syncer.sync(ctx, &events[i]); err != nil {
			return n, err
		}
		if events[i].Status != before {
			n++
		}
	}
	return n, nil
}

// SendReminders publishes one reminder per confirmed registration for events
// starting within window, then marks each event reminded.
func (s *eventService) SendReminders(ctx context.Context, window time.Duration) (int, error) {
	now := s.now()
	events, err := s.events.FindReminderDue(ctx, now, now.Add(window))
	if err != nil {
		return 0, fmt.Errorf("find reminder-due events: %w", err)
	}

	sent := 0
	for i := range events {
		e := &events[i]
		registrations, err := s.registrations.FindConfirmedByEvent(ctx, e.ID)
		if err != nil {
			return sent, fmt.Errorf("list attendees for event %d: %w", e.ID, err)
		}

		for _, r := range registrations {
			msg := eventMessage(models.KeyEventReminder, e, r.UserID, now)
			msg.TicketID = r.TicketID
			msg.Seats = r.Seats
			publish(s.publisher, msg)
			sent++
		}

		if err := s.events.MarkReminderSent(ctx, e.ID, now); err != nil {
			return sent, fmt.Errorf("mark reminder sent for event %d: %w", e.ID, err)
		}
		logging.Info().Uint("event_id", e.ID).Int("attendees", len(registrations)).Msg("reminders sent")
	}
	return sent, nil
}
