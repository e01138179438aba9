package handler

import (
	"context"
	"io"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/Eursukkul/eventsphere/internal/middleware"
	"github.com/Eursukkul/eventsphere/internal/models"
	"github.com/Eursukkul/eventsphere/internal/service"
	"github.com/Eursukkul/eventsphere/internal/validation"
	"github.com/Eursukkul/eventsphere/pkg/storage"
	"github.com/labstack/echo/v4"
)

// --- Mock EventService ---

type mockEventService struct {
	listFn     func(ctx context.Context) ([]models.Event, error)
	featuredFn func(ctx context.Context) ([]models.Event, error)
	getFn      func(ctx context.Context, id uint) (*models.Event, error)
}

func (m *mockEventService) ListEvents(ctx context.Context) ([]models.Event, error) {
	return m.listFn(ctx)
}
func (m *mockEventService) FeaturedEvents(ctx context.Context) ([]models.Event, error) {
	return m.featuredFn(ctx)
}
func (m *mockEventService) GetEvent(ctx context.Context, id uint) (*models.Event, error) {
	return m.getFn(ctx, id)
}
func (m *mockEventService) SweepCompleted(ctx context.Context) (int, error) { return 0, nil }
func (m *mockEventService) SendReminders(ctx context.Context, window time.Duration) (int, error) {
	return 0, nil
}

// --- Mock RegistrationService ---

type mockRegistrationService struct {
	registerFn func(ctx context.Context, in service.RegisterInput) (*service.RegisterResult, error)
	cancelFn   func(ctx context.Context, userID, registrationID uint) (*models.Registration, error)
	mineFn     func(ctx context.Context, userID uint) ([]service.RegistrationView, error)
}

func (m *mockRegistrationService) Register(ctx context.Context, in service.RegisterInput) (*service.RegisterResult, error) {
	return m.registerFn(ctx, in)
}
func (m *mockRegistrationService) Cancel(ctx context.Context, userID, registrationID uint) (*models.Registration, error) {
	return m.cancelFn(ctx, userID, registrationID)
}
func (m *mockRegistrationService) MyRegistrations(ctx context.Context, userID uint) ([]service.RegistrationView, error) {
	return m.mineFn(ctx, userID)
}

// --- Mock HostService ---

type mockHostService struct {
	createFn         func(ctx context.Context, host service.Host, in service.EventInput) (*models.Event, error)
	updateFn         func(ctx context.Context, hostID, eventID uint, in service.EventInput) (*models.Event, error)
	toggleFn         func(ctx context.Context, hostID, eventID uint) (*models.Event, error)
	myEventsFn       func(ctx context.Context, hostID uint) ([]models.Event, error)
	registrationsFn  func(ctx context.Context, hostID, eventID uint) ([]models.Registration, error)
	insightsFn       func(ctx context.Context, hostID, eventID uint) (*service.Insights, error)
	exportFn         func(ctx context.Context, hostID, eventID uint) ([]byte, error)
	getSettingsFn    func(ctx context.Context, hostID, eventID uint) (*models.Event, service.Settings, error)
	updateSettingsFn func(ctx context.Context, hostID, eventID uint, patch service.SettingsPatch) (service.Settings, error)
}

func (m *mockHostService) CreateEvent(ctx context.Context, host service.Host, in service.EventInput) (*models.Event, error) {
	return m.createFn(ctx, host, in)
}
func (m *mockHostService) UpdateEvent(ctx context.Context, hostID, eventID uint, in service.EventInput) (*models.Event, error) {
	return m.updateFn(ctx, hostID, eventID, in)
}
func (m *mockHostService) ToggleActive(ctx context.Context, hostID, eventID uint) (*models.Event, error) {
	return m.toggleFn(ctx, hostID, eventID)
}
func (m *mockHostService) MyEvents(ctx context.Context, hostID uint) ([]models.Event, error) {
	return m.myEventsFn(ctx, hostID)
}
func (m *mockHostService) Registrations(ctx context.Context, hostID, eventID uint) ([]models.Registration, error) {
	return m.registrationsFn(ctx, hostID, eventID)
}
func (m *mockHostService) Insights(ctx context.Context, hostID, eventID uint) (*service.Insights, error) {
	return m.insightsFn(ctx, hostID, eventID)
}
func (m *mockHostService) ExportCSV(ctx context.Context, hostID, eventID uint) ([]byte, error) {
	return m.exportFn(ctx, hostID, eventID)
}
func (m *mockHostService) GetSettings(ctx context.Context, hostID, eventID uint) (*models.Event, service.Settings, error) {
	return m.getSettingsFn(ctx, hostID, eventID)
}
func (m *mockHostService) UpdateSettings(ctx context.Context, hostID, eventID uint, patch service.SettingsPatch) (service.Settings, error) {
	return m.updateSettingsFn(ctx, hostID, eventID, patch)
}

// --- Mock ReviewService ---

type mockReviewService struct {
	listFn      func(ctx context.Context, status string) ([]models.Event, error)
	approveFn   func(ctx context.Context, reviewerID, eventID uint, note string) (*models.Event, error)
	rejectFn    func(ctx context.Context, reviewerID, eventID uint, reason string) (*models.Event, error)
	setStatusFn func(ctx context.Context, eventID uint, status, reason string) (*models.Event, error)
	statsFn     func(ctx context.Context) (*service.Stats, error)
}

func (m *mockReviewService) ListEvents(ctx context.Context, status string) ([]models.Event, error) {
	return m.listFn(ctx, status)
}
func (m *mockReviewService) Approve(ctx context.Context, reviewerID, eventID uint, note string) (*models.Event, error) {
	return m.approveFn(ctx, reviewerID, eventID, note)
}
func (m *mockReviewService) Reject(ctx context.Context, reviewerID, eventID uint, reason string) (*models.Event, error) {
	return m.rejectFn(ctx, reviewerID, eventID, reason)
}
func (m *mockReviewService) SetStatus(ctx context.Context, eventID uint, status, reason string) (*models.Event, error) {
	return m.setStatusFn(ctx, eventID, status, reason)
}
func (m *mockReviewService) Stats(ctx context.Context) (*service.Stats, error) {
	return m.statsFn(ctx)
}

// --- Mock TicketService ---

type mockTicketService struct {
	getFn      func(ctx context.Context, ticketID string) (*models.Ticket, error)
	validateFn func(ctx context.Context, ticketID string) (*models.Registration, error)
	useFn      func(ctx context.Context, ticketID string) error
}

func (m *mockTicketService) GetTicket(ctx context.Context, ticketID string) (*models.Ticket, error) {
	return m.getFn(ctx, ticketID)
}
func (m *mockTicketService) Validate(ctx context.Context, ticketID string) (*models.Registration, error) {
	return m.validateFn(ctx, ticketID)
}
func (m *mockTicketService) MarkUsed(ctx context.Context, ticketID string) error {
	return m.useFn(ctx, ticketID)
}

// --- Mock AuthService ---

type mockAuthService struct {
	signupFn func(ctx context.Context, in service.SignupInput) (*service.Session, error)
	loginFn  func(ctx context.Context, email, password string) (*service.Session, error)
}

func (m *mockAuthService) Signup(ctx context.Context, in service.SignupInput) (*service.Session, error) {
	return m.signupFn(ctx, in)
}
func (m *mockAuthService) Login(ctx context.Context, email, password string) (*service.Session, error) {
	return m.loginFn(ctx, email, password)
}
func (m *mockAuthService) EnsureAdmin(ctx context.Context, name, email, password string) (*models.User, bool, error) {
	return nil, false, nil
}

// --- Mock ImageStore ---

type mockImages struct {
	saveFn func(originalName string, r io.Reader) (*storage.Stored, error)
}

func (m *mockImages) SaveImage(originalName string, r io.Reader) (*storage.Stored, error) {
	return m.saveFn(originalName, r)
}

// --- helpers ---

func newEcho() *echo.Echo {
	e := echo.New()
	e.Validator = validation.New()
	return e
}

// newContext builds a request context; a non-nil user is set as the caller.
func newContext(method, target, body string, user *models.User) (echo.Context, *httptest.ResponseRecorder) {
	e := newEcho()
	req := httptest.NewRequest(method, target, nil)
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if user != nil {
		middleware.SetCurrentUser(c, user)
	}
	return c, rec
}

func httpCode(err error) int {
	if he, ok := err.(*echo.HTTPError); ok {
		return he.Code
	}
	return 0
}
