//go:build integration

package service_test

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/Eursukkul/eventsphere/internal/models"
	"github.com/Eursukkul/eventsphere/internal/repository"
	"github.com/Eursukkul/eventsphere/internal/service"
	"github.com/Eursukkul/eventsphere/pkg/qrcode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestUsers(t *testing.T, n int) []models.User {
	t.Helper()
	users := make([]models.User, n)
	for i := range users {
		users[i] = models.User{
			Name:         fmt.Sprintf("Attendee %03d", i),
			Email:        fmt.Sprintf("attendee-%03d@example.com", i),
			PasswordHash: "x",
			Role:         models.RoleAttendee,
		}
	}
	require.NoError(t, testDB.Create(&users).Error)
	return users
}

func createOpenEvent(t *testing.T, capacity int, oneSeat bool) *models.Event {
	t.Helper()
	date := time.Now().Add(72 * time.Hour)
	event := &models.Event{
		Title:             "Gophers Meetup Pune",
		Date:              &date,
		MaxAttendees:      capacity,
		HostID:            1,
		Approved:          true,
		Status:            models.EventApproved,
		IsActive:          true,
		OneSeatPerUser:    oneSeat,
		AllowCancellation: true,
	}
	require.NoError(t, testDB.Create(event).Error)
	return event
}

func newRegistrationService() service.RegistrationService {
	return service.NewRegistrationService(
		repository.NewTxRunner(testDB),
		repository.NewEventRepository(testDB),
		repository.NewRegistrationRepository(testDB),
		repository.NewTicketRepository(testDB),
		qrcode.NewGenerator(),
		nil,
	)
}

// 40 attendees race for 25 seats: exactly 25 succeed, the rest see
// ErrNotEnoughSeats and the counter never exceeds capacity.
func TestConcurrentRegistration(t *testing.T) {
	cleanTables()
	users := createTestUsers(t, 40)
	event := createOpenEvent(t, 25, true)
	svc := newRegistrationService()

	var wg sync.WaitGroup
	var mu sync.Mutex
	var confirmed, full, other int

	wg.Add(len(users))
	for _, u := range users {
		go func(u models.User) {
			defer wg.Done()
			_, err := svc.Register(t.Context(), service.RegisterInput{
				EventID:       event.ID,
				UserID:        u.ID,
				UserEmail:     u.Email,
				Seats:         1,
				PaymentStatus: models.PaymentSuccess,
			})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				confirmed++
			case errors.Is(err, service.ErrNotEnoughSeats):
				full++
			default:
				other++
				t.Logf("unexpected error: %v", err)
			}
		}(u)
	}
	wg.Wait()

	assert.Equal(t, 25, confirmed)
	assert.Equal(t, 15, full)
	assert.Zero(t, other)

	var stored models.Event
	require.NoError(t, testDB.First(&stored, event.ID).Error)
	assert.Equal(t, 25, stored.CurrentAttendees)
	assert.Equal(t, 25, stored.Analytics.TotalRegistrations)

	var tickets int64
	testDB.Model(&models.Ticket{}).Where("event_id = ?", event.ID).Count(&tickets)
	assert.Equal(t, int64(25), tickets)
}

// The same attendee registering twice at once gets exactly one seat.
func TestConcurrentDuplicateRegistration(t *testing.T) {
	cleanTables()
	user := createTestUsers(t, 1)[0]
	event := createOpenEvent(t, 50, true)
	svc := newRegistrationService()

	const attempts = 8
	var wg sync.WaitGroup
	errs := make(chan error, attempts)

	wg.Add(attempts)
	for range attempts {
		go func() {
			defer wg.Done()
			_, err := svc.Register(t.Context(), service.RegisterInput{
				EventID:       event.ID,
				UserID:        user.ID,
				Seats:         1,
				PaymentStatus: models.PaymentSuccess,
			})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	var ok, dup int
	for err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, service.ErrAlreadyRegistered):
			dup++
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, attempts-1, dup)
}

func TestCancelReleasesSeats(t *testing.T) {
	cleanTables()
	users := createTestUsers(t, 2)
	event := createOpenEvent(t, 1, true)
	svc := newRegistrationService()

	first, err := svc.Register(t.Context(), service.RegisterInput{
		EventID: event.ID, UserID: users[0].ID, Seats: 1, PaymentStatus: models.PaymentSuccess,
	})
	require.NoError(t, err)

	_, err = svc.Register(t.Context(), service.RegisterInput{
		EventID: event.ID, UserID: users[1].ID, Seats: 1, PaymentStatus: models.PaymentSuccess,
	})
	assert.ErrorIs(t, err, service.ErrNotEnoughSeats)

	_, err = svc.Cancel(t.Context(), users[0].ID, first.Registration.ID)
	require.NoError(t, err)

	_, err = svc.Register(t.Context(), service.RegisterInput{
		EventID: event.ID, UserID: users[1].ID, Seats: 1, PaymentStatus: models.PaymentSuccess,
	})
	require.NoError(t, err)

	var stored models.Event
	require.NoError(t, testDB.First(&stored, event.ID).Error)
	assert.Equal(t, 1, stored.CurrentAttendees)
}

// Concurrent cancels of one registration release its seats exactly once.
func TestConcurrentCancel(t *testing.T) {
	cleanTables()
	users := createTestUsers(t, 2)
	event := createOpenEvent(t, 4, false)
	svc := newRegistrationService()

	res, err := svc.Register(t.Context(), service.RegisterInput{
		EventID: event.ID, UserID: users[0].ID, Seats: 3, PaymentStatus: models.PaymentSuccess,
	})
	require.NoError(t, err)
	_, err = svc.Register(t.Context(), service.RegisterInput{
		EventID: event.ID, UserID: users[1].ID, Seats: 1, PaymentStatus: models.PaymentSuccess,
	})
	require.NoError(t, err)

	const attempts = 10
	var wg sync.WaitGroup
	errs := make(chan error, attempts)
	wg.Add(attempts)
	for range attempts {
		go func() {
			defer wg.Done()
			_, err := svc.Cancel(t.Context(), users[0].ID, res.Registration.ID)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	var ok, already int
	for err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, service.ErrAlreadyCancelled):
			already++
		default:
			t.Logf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, attempts-1, already)

	var stored models.Event
	require.NoError(t, testDB.First(&stored, event.ID).Error)
	assert.Equal(t, 1, stored.CurrentAttendees)
}

// A scan racing a cancellation never turns a cancelled ticket into a used one.
func TestConcurrentCheckInAndCancel(t *testing.T) {
	cleanTables()
	user := createTestUsers(t, 1)[0]
	event := createOpenEvent(t, 10, true)
	svc := newRegistrationService()
	tickets := service.NewTicketService(
		repository.NewTxRunner(testDB),
		repository.NewTicketRepository(testDB),
		repository.NewRegistrationRepository(testDB),
	)

	res, err := svc.Register(t.Context(), service.RegisterInput{
		EventID: event.ID, UserID: user.ID, Seats: 1, PaymentStatus: models.PaymentSuccess,
	})
	require.NoError(t, err)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		_ = tickets.MarkUsed(t.Context(), res.Ticket.TicketID)
	}()
	go func() {
		defer wg.Done()
		_, _ = svc.Cancel(t.Context(), user.ID, res.Registration.ID)
	}()
	wg.Wait()

	var ticket models.Ticket
	require.NoError(t, testDB.Where("ticket_id = ?", res.Ticket.TicketID).First(&ticket).Error)
	var registration models.Registration
	require.NoError(t, testDB.First(&registration, res.Registration.ID).Error)

	assert.Equal(t, models.RegistrationCancelled, registration.RegistrationStatus)
	assert.Equal(t, models.TicketCancelled, ticket.Status)
	assert.Equal(t, models.CheckInCancelled, registration.CheckInStatus)
}
