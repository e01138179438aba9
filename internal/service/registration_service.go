package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Eursukkul/eventsphere/internal/logging"
	"github.com/Eursukkul/eventsphere/internal/metrics"
	"github.com/Eursukkul/eventsphere/internal/models"
	"github.com/Eursukkul/eventsphere/internal/repository"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RegisterInput is one seat-booking attempt. PaymentStatus is settled by
// the checkout flow before the request reaches us and is trusted as given.
type RegisterInput struct {
	EventID          uint
	UserID           uint
	UserEmail        string
	Seats            int
	TeamName         string
	TeamMembers      []models.TeamMember
	Contact          string
	Phone            string
	Special          string
	PaymentStatus    models.PaymentStatus
	PaymentReference string
}

type RegisterResult struct {
	Registration *models.Registration
	Ticket       *models.Ticket
}

// RegistrationView pairs a registration with its ticket, if one exists.
type RegistrationView struct {
	Registration models.Registration
	Ticket       *models.Ticket
}

type RegistrationService interface {
	Register(ctx context.Context, in RegisterInput) (*RegisterResult, error)
	Cancel(ctx context.Context, userID, registrationID uint) (*models.Registration, error)
	MyRegistrations(ctx context.Context, userID uint) ([]RegistrationView, error)
}

type registrationService struct {
	tx            repository.TxRunner
	events        repository.EventRepository
	registrations repository.RegistrationRepository
	tickets       repository.TicketRepository
	codes         CodeGenerator
	publisher     Publisher
	syncer        *statusSyncer
	now           func() time.Time
}

func NewRegistrationService(
	tx repository.TxRunner,
	events repository.EventRepository,
	registrations repository.RegistrationRepository,
	tickets repository.TicketRepository,
	codes CodeGenerator,
	publisher Publisher,
) RegistrationService {
	s := &registrationService{
		tx:            tx,
		events:        events,
		registrations: registrations,
		tickets:       tickets,
		codes:         codes,
		publisher:     publisher,
		now:           time.Now,
	}
	s.syncer = &statusSyncer{events: events, publisher: publisher, now: s.clock}
	return s
}

func (s *registrationService) clock() time.Time { return s.now() }

// Register validates the attempt against the locked event row and, on
// success, writes the registration, its ticket and the counters in one
// transaction. A rejected attempt commits only the lifecycle status repair.
func (s *registrationService) Register(ctx context.Context, in RegisterInput) (*RegisterResult, error) {
	var (
		result    *RegisterResult
		verdict   error
		event     *models.Event
		completed bool
	)
	reject := func(err error) error {
		verdict = err
		return nil
	}

	err := s.tx.Transaction(ctx, func(tx *gorm.DB) error {
		// 1. Lock the event row; concurrent attempts on one event queue here
		var err error
		event, err = s.events.FindByIDForUpdate(ctx, tx, in.EventID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return reject(ErrEventNotFound)
		}
		if err != nil {
			return fmt.Errorf("load event: %w", err)
		}

		// 2. Repair status before any policy decision
		if completed, err = s.syncer.repair(ctx, tx, event); err != nil {
			return err
		}

		// 3. Open for registration
		if !event.IsActive || !event.Approved || event.Status != models.EventApproved {
			return reject(ErrEventClosed)
		}

		// 4. Deadline, 5. event date
		now := s.now()
		if event.RegistrationDeadline != nil && event.RegistrationDeadline.Before(now) {
			return reject(ErrDeadlinePassed)
		}
		if event.Date != nil && event.Date.Before(now) {
			return reject(ErrEventCompleted)
		}

		// 6. One seat per user
		if event.OneSeatPerUser {
			_, err := s.registrations.FindActiveByUserAndEvent(ctx, tx, in.UserID, event.ID)
			if err == nil {
				return reject(ErrAlreadyRegistered)
			}
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("check existing registration: %w", err)
			}
		}

		// 7. Payment
		if in.PaymentStatus != models.PaymentSuccess {
			return reject(ErrPaymentFailed)
		}

		// 8. Seat count
		seats, err := grantedSeats(event, in)
		if err != nil {
			return reject(err)
		}

		// 9. Capacity
		if avail := event.SeatsAvailable(); avail >= 0 && seats > avail {
			return reject(ErrNotEnoughSeats)
		}

		result, err = s.issue(ctx, tx, event, in, seats, now)
		return err
	})
	if err != nil {
		if errors.Is(err, ErrNotEnoughSeats) {
			metrics.RegistrationsTotal.WithLabelValues(outcomeLabel(err)).Inc()
			return nil, err
		}
		metrics.RegistrationsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("register: %w", err)
	}
	if completed {
		s.syncer.announce(event)
	}
	if verdict != nil {
		metrics.RegistrationsTotal.WithLabelValues(outcomeLabel(verdict)).Inc()
		return nil, verdict
	}

	metrics.RegistrationsTotal.WithLabelValues("success").Inc()
	metrics.SeatsGranted.Add(float64(result.Registration.Seats))
	logging.Info().
		Uint("event_id", event.ID).
		Uint("user_id", in.UserID).
		Int("seats", result.Registration.Seats).
		Str("ticket_id", result.Ticket.TicketID).
		Msg("registration confirmed")

	msg := eventMessage(models.KeyRegistrationConfirmed, event, in.UserID, s.now())
	msg.TicketID = result.Ticket.TicketID
	msg.Seats = result.Registration.Seats
	publish(s.publisher, msg)

	return result, nil
}

// issue creates the registration and ticket and takes the seats.
func (s *registrationService) issue(ctx context.Context, tx *gorm.DB, event *models.Event, in RegisterInput, seats int, now time.Time) (*RegisterResult, error) {
	ticketID := newTicketID(now)
	payload, err := json.Marshal(struct {
		TicketID string `json:"ticketId"`
		EventID  uint   `json:"eventId"`
		UserID   uint   `json:"userId"`
	}{ticketID, event.ID, in.UserID})
	if err != nil {
		return nil, fmt.Errorf("encode ticket payload: %w", err)
	}

	code, err := s.codes.DataURI(string(payload))
	if err != nil {
		return nil, fmt.Errorf("render ticket code: %w", err)
	}

	amount := float64(seats) * event.TicketPrice
	registration := &models.Registration{
		UserID:             in.UserID,
		EventID:            event.ID,
		Seats:              seats,
		TeamName:           in.TeamName,
		TeamMembers:        in.TeamMembers,
		Contact:            in.Contact,
		Phone:              in.Phone,
		Email:              in.UserEmail,
		Special:            in.Special,
		RegistrationStatus: models.RegistrationConfirmed,
		PaymentStatus:      in.PaymentStatus,
		PaymentReference:   in.PaymentReference,
		AmountPaid:         amount,
		TicketID:           ticketID,
		CheckInStatus:      models.CheckInNotStarted,
	}
	if err := s.registrations.Create(ctx, tx, registration); err != nil {
		return nil, fmt.Errorf("create registration: %w", err)
	}

	ticket := &models.Ticket{
		TicketID:  ticketID,
		UserID:    in.UserID,
		EventID:   event.ID,
		Seats:     seats,
		QRCode:    code,
		QRPayload: string(payload),
		Status:    models.TicketActive,
	}
	if err := s.tickets.Create(ctx, tx, ticket); err != nil {
		return nil, fmt.Errorf("create ticket: %w", err)
	}

	ok, err := s.events.ReserveSeats(ctx, tx, event.ID, seats, amount, now)
	if err != nil {
		return nil, fmt.Errorf("reserve seats: %w", err)
	}
	if !ok {
		// Rolls back the inserts above.
		return nil, ErrNotEnoughSeats
	}

	event.CurrentAttendees += seats
	event.Analytics.TotalRegistrations++
	event.Analytics.TotalTickets += seats
	event.Analytics.TotalRevenue += amount
	event.Analytics.LastRegistrationAt = &now

	return &RegisterResult{Registration: registration, Ticket: ticket}, nil
}

// grantedSeats resolves how many seats the attempt consumes.
func grantedSeats(event *models.Event, in RegisterInput) (int, error) {
	seats := in.Seats

	switch {
	case event.Type == models.EventTypeTeam:
		cfg := event.EffectiveTeamConfig()
		n := len(in.TeamMembers)
		if n == 0 {
			n = in.Seats
		}
		if n < cfg.MinSize || n > cfg.MaxSize {
			return 0, &TeamSizeError{Min: cfg.MinSize, Max: cfg.MaxSize}
		}
		seats = n
	case event.OneSeatPerUser:
		seats = 1
	}

	return max(seats, 1), nil
}

// newTicketID returns EVT-<unix millis>-<6 hex>. The ticket table's unique
// index is the real guarantee.
func newTicketID(now time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:6]
	return fmt.Sprintf("EVT-%d-%s", now.UnixMilli(), strings.ToUpper(suffix))
}

func outcomeLabel(err error) string {
	switch {
	case errors.Is(err, ErrEventNotFound):
		return "not_found"
	case errors.Is(err, ErrEventClosed):
		return "closed"
	case errors.Is(err, ErrDeadlinePassed):
		return "deadline"
	case errors.Is(err, ErrEventCompleted):
		return "completed"
	case errors.Is(err, ErrAlreadyRegistered):
		return "duplicate"
	case errors.Is(err, ErrPaymentFailed):
		return "payment"
	case errors.Is(err, ErrTeamSize):
		return "team_size"
	case errors.Is(err, ErrNotEnoughSeats):
		return "capacity"
	default:
		return "error"
	}
}

// Cancel releases the caller's seats if the event allows cancellation.
// Analytics keep counting the original registration.
func (s *registrationService) Cancel(ctx context.Context, userID, registrationID uint) (*models.Registration, error) {
	var (
		registration *models.Registration
		event        *models.Event
	)

	err := s.tx.Transaction(ctx, func(tx *gorm.DB) error {
		var err error
		registration, err = s.ownedRegistration(ctx, tx, userID, registrationID)
		if err != nil {
			return err
		}

		// Cancels of one event queue on the event row; the registration is
		// re-read under that lock so a concurrent cancel is seen.
		event, err = s.events.FindByIDForUpdate(ctx, tx, registration.EventID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrEventNotFound
		}
		if err != nil {
			return fmt.Errorf("load event: %w", err)
		}
		if registration, err = s.ownedRegistration(ctx, tx, userID, registrationID); err != nil {
			return err
		}
		if registration.RegistrationStatus == models.RegistrationCancelled {
			return ErrAlreadyCancelled
		}
		if !event.AllowCancellation {
			return ErrCancellationNotAllowed
		}

		if registration.TicketID != "" {
			if err := s.tickets.UpdateStatus(ctx, tx, registration.TicketID, models.TicketCancelled); err != nil {
				return fmt.Errorf("cancel ticket: %w", err)
			}
		}
		cancelled, err := s.registrations.Cancel(ctx, tx, registration.ID)
		if err != nil {
			return fmt.Errorf("cancel registration: %w", err)
		}
		if !cancelled {
			return ErrAlreadyCancelled
		}
		if registration.RegistrationStatus == models.RegistrationConfirmed {
			if err := s.events.ReleaseSeats(ctx, tx, event.ID, registration.Seats); err != nil {
				return fmt.Errorf("release seats: %w", err)
			}
			metrics.SeatsReleased.Add(float64(registration.Seats))
		}

		registration.RegistrationStatus = models.RegistrationCancelled
		registration.CheckInStatus = models.CheckInCancelled
		return nil
	})
	if err != nil {
		return nil, err
	}

	msg := eventMessage(models.KeyRegistrationCancelled, event, userID, s.now())
	msg.TicketID = registration.TicketID
	msg.Seats = registration.Seats
	publish(s.publisher, msg)

	return registration, nil
}

func (s *registrationService) ownedRegistration(ctx context.Context, tx *gorm.DB, userID, registrationID uint) (*models.Registration, error) {
	registration, err := s.registrations.FindByID(ctx, tx, registrationID)
	if errors.Is(err, gorm.ErrRecordNotFound) || (err == nil && registration.UserID != userID) {
		return nil, ErrRegistrationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load registration: %w", err)
	}
	return registration, nil
}

func (s *registrationService) MyRegistrations(ctx context.Context, userID uint) ([]RegistrationView, error) {
	registrations, err := s.registrations.FindByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list registrations: %w", err)
	}

	ticketIDs := make([]string, 0, len(registrations))
	for _, r := range registrations {
		if r.TicketID != "" {
			ticketIDs = append(ticketIDs, r.TicketID)
		}
	}

	byID := make(map[string]*models.Ticket, len(ticketIDs))
	if len(ticketIDs) > 0 {
		tickets, err := s.tickets.FindByTicketIDs(ctx, ticketIDs)
		if err != nil {
			return nil, fmt.Errorf("list tickets: %w", err)
		}
		for i := range tickets {
			byID[tickets[i].TicketID] = &tickets[i]
		}
	}

	views := make([]RegistrationView, len(registrations))
	for i, r := range registrations {
		if r.Event != nil {
			if err := s.syncer.sync(ctx, r.Event); err != nil {
				return nil, err
			}
		}
		views[i] = RegistrationView{Registration: r, Ticket: byID[r.TicketID]}
	}
	return views, nil
}
