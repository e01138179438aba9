package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Eursukkul/eventsphere/internal/lifecycle"
	"github.com/Eursukkul/eventsphere/internal/logging"
	"github.com/Eursukkul/eventsphere/internal/models"
	"github.com/Eursukkul/eventsphere/internal/repository"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// EventInput carries host-supplied event fields. A nil field was not sent.
type EventInput struct {
	Title                *string
	Description          *string
	Date                 *time.Time
	EndDate              *time.Time
	Venue                *string
	LocationType         *string
	Type                 *string
	TeamLimit            *int
	TeamConfig           *models.TeamConfig
	Category             *string
	Tags                 []string
	Agenda               *string
	TicketPrice          *float64
	Currency             *string
	MaxAttendees         *int
	RegistrationDeadline *time.Time
	ImageURL             *string
	PosterURL            *string
	GalleryImages        []string
	OneSeatPerUser       *bool
	AllowCancellation    *bool
	EnableReminders      *bool
}

// applyCosmetic copies the fields a host may still change after approval.
func (in *EventInput) applyCosmetic(e *models.Event) {
	if in.ImageURL != nil {
		e.ImageURL = *in.ImageURL
	}
	if in.PosterURL != nil {
		e.PosterURL = *in.PosterURL
	}
	if in.GalleryImages != nil {
		e.GalleryImages = pq.StringArray(in.GalleryImages)
	}
	if in.Agenda != nil {
		e.Agenda = *in.Agenda
	}
}

func (in *EventInput) applyAll(e *models.Event) {
	in.applyCosmetic(e)
	setIf(&e.Title, in.Title)
	setIf(&e.Description, in.Description)
	if in.Date != nil {
		e.Date = in.Date
	}
	if in.EndDate != nil {
		e.EndDate = in.EndDate
	}
	setIf(&e.Venue, in.Venue)
	setIf(&e.LocationType, in.LocationType)
	setIf(&e.Type, in.Type)
	setIf(&e.TeamLimit, in.TeamLimit)
	setIf(&e.TeamConfig, in.TeamConfig)
	setIf(&e.Category, in.Category)
	if in.Tags != nil {
		e.Tags = pq.StringArray(in.Tags)
	}
	setIf(&e.TicketPrice, in.TicketPrice)
	setIf(&e.Currency, in.Currency)
	setIf(&e.MaxAttendees, in.MaxAttendees)
	if in.RegistrationDeadline != nil {
		e.RegistrationDeadline = in.RegistrationDeadline
	}
	setIf(&e.OneSeatPerUser, in.OneSeatPerUser)
	setIf(&e.AllowCancellation, in.AllowCancellation)
	setIf(&e.EnableReminders, in.EnableReminders)
}

func setIf[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}

// Settings is the host-facing view of an event's registration policy.
type Settings struct {
	IsActive             bool       `json:"is_active"`
	RegistrationDeadline *time.Time `json:"registration_deadline"`
	OneSeatPerUser       bool       `json:"one_seat_per_user"`
	AllowCancellation    bool       `json:"allow_cancellation"`
	EnableReminders      bool       `json:"enable_reminders"`
	MaxTicketsPerUser    int        `json:"max_tickets_per_user"`
}

func settingsOf(e *models.Event) Settings {
	return Settings{
		IsActive:             e.IsActive,
		RegistrationDeadline: e.RegistrationDeadline,
		OneSeatPerUser:       e.OneSeatPerUser,
		AllowCancellation:    e.AllowCancellation,
		EnableReminders:      e.EnableReminders,
		MaxTicketsPerUser:    max(e.TeamLimit, 1),
	}
}

// SettingsPatch holds the raw JSON of each settings key so that absent,
// null and loosely typed values can be told apart.
type SettingsPatch struct {
	IsActive             json.RawMessage
	OneSeatPerUser       json.RawMessage
	AllowCancellation    json.RawMessage
	EnableReminders      json.RawMessage
	RegistrationDeadline json.RawMessage
	MaxTicketsPerUser    json.RawMessage
}

type AttendeeRow struct {
	RegistrationID     uint                      `json:"id"`
	Name               string                    `json:"name"`
	Email              string                    `json:"email"`
	Seats              int                       `json:"seats"`
	TicketID           string                    `json:"ticket_id"`
	PaymentStatus      models.PaymentStatus      `json:"payment_status"`
	RegistrationStatus models.RegistrationStatus `json:"registration_status"`
}

type Insights struct {
	EventID            uint               `json:"event_id"`
	Title              string             `json:"title"`
	Status             models.EventStatus `json:"status"`
	TotalRegistrations int                `json:"total_registrations"`
	SeatsFilled        int                `json:"seats_filled"`
	MaxAttendees       int                `json:"max_attendees"`
	Revenue            float64            `json:"revenue"`
	TicketsGenerated   int64              `json:"tickets_generated"`
	Attendees          []AttendeeRow      `json:"attendees"`
}

// Host identifies the calling host.
type Host struct {
	ID   uint
	Name string
}

type HostService interface {
	CreateEvent(ctx context.Context, host Host, in EventInput) (*models.Event, error)
	UpdateEvent(ctx context.Context, hostID, eventID uint, in EventInput) (*models.Event, error)
	ToggleActive(ctx context.Context, hostID, eventID uint) (*models.Event, error)
	MyEvents(ctx context.Context, hostID uint) ([]models.Event, error)
	Registrations(ctx context.Context, hostID, eventID uint) ([]models.Registration, error)
	Insights(ctx context.Context, hostID, eventID uint) (*Insights, error)
	ExportCSV(ctx context.Context, hostID, eventID uint) ([]byte, error)
	GetSettings(ctx context.Context, hostID, eventID uint) (*models.Event, Settings, error)
	UpdateSettings(ctx context.Context, hostID, eventID uint, patch SettingsPatch) (Settings, error)
}

type HostOptions struct {
	// KeepApprovalOnCosmeticEdit lets an approved event keep its approval
	// when only allow-listed fields are edited.
	KeepApprovalOnCosmeticEdit bool
}

type hostService struct {
	tx            repository.TxRunner
	events        repository.EventRepository
	registrations repository.RegistrationRepository
	tickets       repository.TicketRepository
	publisher     Publisher
	opts          HostOptions
	syncer        *statusSyncer
	now           func() time.Time
}

func NewHostService(
	tx repository.TxRunner,
	events repository.EventRepository,
	registrations repository.RegistrationRepository,
	tickets repository.TicketRepository,
	publisher Publisher,
	opts HostOptions,
) HostService {
	s := &hostService{
		tx:            tx,
		events:        events,
		registrations: registrations,
		tickets:       tickets,
		publisher:     publisher,
		opts:          opts,
		now:           time.Now,
	}
	s.syncer = &statusSyncer{events: events, publisher: publisher, now: func() time.Time { return s.now() }}
	return s
}

// CreateEvent stores a new event owned by host. Approval fields are forced
// to pending whatever the input says.
func (s *hostService) CreateEvent(ctx context.Context, host Host, in EventInput) (*models.Event, error) {
	event := &models.Event{
		LocationType:      "in-person",
		Type:              models.EventTypeIndividual,
		TeamLimit:         1,
		TeamConfig:        models.TeamConfig{MinSize: 1, MaxSize: 1, AllowIndividual: true},
		Category:          "General",
		Currency:          "INR",
		Tags:              pq.StringArray{},
		GalleryImages:     pq.StringArray{},
		IsActive:          true,
		AllowCancellation: true,
		EnableReminders:   true,
	}
	in.applyAll(event)
	if in.TeamConfig == nil && in.TeamLimit != nil {
		event.TeamConfig.MaxSize = max(*in.TeamLimit, 1)
	}

	event.HostID = host.ID
	event.HostName = host.Name
	event.CurrentAttendees = 0
	event.Analytics = models.Analytics{}
	lifecycle.ResetToPending(event)

	if err := s.events.Create(ctx, event); err != nil {
		return nil, fmt.Errorf("create event: %w", err)
	}

	logging.Info().Uint("event_id", event.ID).Uint("host_id", host.ID).Msg("event submitted for approval")
	publish(s.publisher, eventMessage(models.KeyEventCreated, event, host.ID, s.now()))
	return event, nil
}

// UpdateEvent edits a host's event. Approved events accept only the
// allow-listed cosmetic fields. Every edit sends the event back to review
// unless KeepApprovalOnCosmeticEdit is set and the event was approved.
func (s *hostService) UpdateEvent(ctx context.Context, hostID, eventID uint, in EventInput) (*models.Event, error) {
	event, err := s.edit(ctx, hostID, eventID, func(e *models.Event) {
		wasApproved := e.Approved
		if wasApproved {
			in.applyCosmetic(e)
		} else {
			in.applyAll(e)
		}
		if !(wasApproved && s.opts.KeepApprovalOnCosmeticEdit) {
			lifecycle.ResetToPending(e)
		}
	}, s.events.Save)
	if err != nil {
		return nil, err
	}

	publish(s.publisher, eventMessage(models.KeyEventUpdated, event, hostID, s.now()))
	return event, nil
}

func (s *hostService) ToggleActive(ctx context.Context, hostID, eventID uint) (*models.Event, error) {
	return s.edit(ctx, hostID, eventID, func(e *models.Event) {
		e.IsActive = !e.IsActive
	}, s.events.SaveSettings)
}

// edit locks the host's event, applies change, syncs the result and writes
// it with persist, all in one transaction. Someone else's event reads as not
// found. A completion is announced after commit.
func (s *hostService) edit(
	ctx context.Context,
	hostID, eventID uint,
	change func(*models.Event),
	persist func(ctx context.Context, tx *gorm.DB, e *models.Event) error,
) (*models.Event, error) {
	var (
		event     *models.Event
		completed bool
	)

	err := s.tx.Transaction(ctx, func(tx *gorm.DB) error {
		var err error
		event, err = s.events.FindByIDForUpdate(ctx, tx, eventID)
		if errors.Is(err, gorm.ErrRecordNotFound) || (err == nil && event.HostID != hostID) {
			return ErrEventNotFound
		}
		if err != nil {
			return fmt.Errorf("load host event: %w", err)
		}

		change(event)
		if completed, err = s.syncer.repair(ctx, tx, event); err != nil {
			return err
		}
		if err := persist(ctx, tx, event); err != nil {
			return fmt.Errorf("save event: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if completed {
		s.syncer.announce(event)
	}
	return event, nil
}

func (s *hostService) MyEvents(ctx context.Context, hostID uint) ([]models.Event, error) {
	events, err := s.events.FindByHost(ctx, hostID)
	if err != nil {
		return nil, fmt.Errorf("list host events: %w", err)
	}
	if err := s.syncer.syncAll(ctx, events); err != nil {
		return nil, err
	}
	return events, nil
}

func (s *hostService) Registrations(ctx context.Context, hostID, eventID uint) ([]models.Registration, error) {
	if _, err := s.hostEvent(ctx, hostID, eventID); err != nil {
		return nil, err
	}
	registrations, err := s.registrations.FindByEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("list registrations: %w", err)
	}
	return registrations, nil
}

func (s *hostService) Insights(ctx context.Context, hostID, eventID uint) (*Insights, error) {
	event, err := s.hostEvent(ctx, hostID, eventID)
	if err != nil {
		return nil, err
	}

	confirmed, err := s.registrations.FindConfirmedByEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("list confirmed registrations: %w", err)
	}
	tickets, err := s.tickets.CountByEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("count tickets: %w", err)
	}

	insights := &Insights{
		EventID:            event.ID,
		Title:              event.Title,
		Status:             event.Status,
		TotalRegistrations: len(confirmed),
		MaxAttendees:       event.MaxAttendees,
		TicketsGenerated:   tickets,
		Attendees:          make([]AttendeeRow, 0, len(confirmed)),
	}
	for _, r := range confirmed {
		insights.SeatsFilled += r.Seats
		insights.Revenue += r.AmountPaid

		row := AttendeeRow{
			RegistrationID:     r.ID,
			Seats:              r.Seats,
			TicketID:           r.TicketID,
			PaymentStatus:      r.PaymentStatus,
			RegistrationStatus: r.RegistrationStatus,
		}
		if r.User != nil {
			row.Name, row.Email = r.User.Name, r.User.Email
		}
		insights.Attendees = append(insights.Attendees, row)
	}
	return insights, nil
}

func (s *hostService) ExportCSV(ctx context.Context, hostID, eventID uint) ([]byte, error) {
	registrations, err := s.Registrations(ctx, hostID, eventID)
	if err != nil {
		return nil, err
	}
	return RegistrationsCSV(registrations), nil
}

func (s *hostService) GetSettings(ctx context.Context, hostID, eventID uint) (*models.Event, Settings, error) {
	event, err := s.hostEvent(ctx, hostID, eventID)
	if err != nil {
		return nil, Settings{}, err
	}
	return event, settingsOf(event), nil
}

// UpdateSettings applies a settings patch. It writes only the settings
// columns and never touches approval state. maxTicketsPerUser and
// oneSeatPerUser are independent knobs.
func (s *hostService) UpdateSettings(ctx context.Context, hostID, eventID uint, patch SettingsPatch) (Settings, error) {
	var deadline *time.Time
	if patch.RegistrationDeadline != nil {
		var err error
		if deadline, err = ParseDeadline(patch.RegistrationDeadline); err != nil {
			return Settings{}, err
		}
	}

	event, err := s.edit(ctx, hostID, eventID, func(e *models.Event) {
		if patch.IsActive != nil {
			e.IsActive = CoerceBool(patch.IsActive, e.IsActive)
		}
		if patch.OneSeatPerUser != nil {
			e.OneSeatPerUser = CoerceBool(patch.OneSeatPerUser, e.OneSeatPerUser)
		}
		if patch.AllowCancellation != nil {
			e.AllowCancellation = CoerceBool(patch.AllowCancellation, e.AllowCancellation)
		}
		if patch.EnableReminders != nil {
			e.EnableReminders = CoerceBool(patch.EnableReminders, e.EnableReminders)
		}
		if patch.RegistrationDeadline != nil {
			e.RegistrationDeadline = deadline
		}
		if patch.MaxTicketsPerUser != nil {
			e.TeamLimit = CoerceTicketLimit(patch.MaxTicketsPerUser)
		}
	}, s.events.SaveSettings)
	if err != nil {
		return Settings{}, err
	}
	return settingsOf(event), nil
}

// hostEvent loads an event owned by hostID and syncs it. Someone else's
// event reads as not found.
func (s *hostService) hostEvent(ctx context.Context, hostID, eventID uint) (*models.Event, error) {
	event, err := s.events.FindByIDAndHost(ctx, eventID, hostID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrEventNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load host event: %w", err)
	}
	if err := s.syncer.sync(ctx, event); err != nil {
		return nil, err
	}
	return event, nil
}
