package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Eursukkul/eventsphere/internal/models"
	"github.com/Eursukkul/eventsphere/internal/repository"
	"gorm.io/gorm"
)

// memStore is an in-memory stand-in for the database. Transactions are
// serialized and rolled back on error.
type memStore struct {
	txMu sync.Mutex
	mu   sync.Mutex

	nextID        uint
	events        map[uint]models.Event
	registrations map[uint]models.Registration
	tickets       map[string]models.Ticket
	reviews       []models.ReviewEntry
	users         map[uint]models.User
	notifications []models.Notification

	saveStatusCalls int
	failSaveStatus  error
}

func newMemStore() *memStore {
	return &memStore{
		events:        map[uint]models.Event{},
		registrations: map[uint]models.Registration{},
		tickets:       map[string]models.Ticket{},
		users:         map[uint]models.User{},
	}
}

func (s *memStore) id() uint {
	s.nextID++
	return s.nextID
}

type snapshot struct {
	nextID        uint
	events        map[uint]models.Event
	registrations map[uint]models.Registration
	tickets       map[string]models.Ticket
	reviews       []models.ReviewEntry
}

func (s *memStore) snapshot() snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := snapshot{
		nextID:        s.nextID,
		events:        make(map[uint]models.Event, len(s.events)),
		registrations: make(map[uint]models.Registration, len(s.registrations)),
		tickets:       make(map[string]models.Ticket, len(s.tickets)),
		reviews:       append([]models.ReviewEntry(nil), s.reviews...),
	}
	for k, v := range s.events {
		snap.events[k] = v
	}
	for k, v := range s.registrations {
		snap.registrations[k] = v
	}
	for k, v := range s.tickets {
		snap.tickets[k] = v
	}
	return snap
}

func (s *memStore) restore(snap snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID = snap.nextID
	s.events = snap.events
	s.registrations = snap.registrations
	s.tickets = snap.tickets
	s.reviews = snap.reviews
}

func (s *memStore) addEvent(e models.Event) *models.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e.ID == 0 {
		e.ID = s.id()
	}
	s.events[e.ID] = e
	return &e
}

func (s *memStore) event(id uint) models.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.events[id]
}

func (s *memStore) addUser(u models.User) models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u.ID == 0 {
		u.ID = s.id()
	}
	s.users[u.ID] = u
	return u
}

func (s *memStore) ticketList() []models.Ticket {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Ticket, 0, len(s.tickets))
	for _, t := range s.tickets {
		out = append(out, t)
	}
	return out
}

func (s *memStore) registrationList() []models.Registration {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Registration, 0, len(s.registrations))
	for _, r := range s.registrations {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// --- TxRunner ---

type memTx struct{ s *memStore }

func (t memTx) Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	t.s.txMu.Lock()
	defer t.s.txMu.Unlock()

	snap := t.s.snapshot()
	if err := fn(nil); err != nil {
		t.s.restore(snap)
		return err
	}
	return nil
}

// --- EventRepository ---

type memEventRepo struct{ s *memStore }

var _ repository.EventRepository = memEventRepo{}

func (r memEventRepo) Create(ctx context.Context, e *models.Event) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	e.ID = r.s.id()
	r.s.events[e.ID] = *e
	return nil
}

func (r memEventRepo) FindByID(ctx context.Context, id uint) (*models.Event, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	e, ok := r.s.events[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	for _, rv := range r.s.reviews {
		if rv.EventID == id {
			e.ReviewHistory = append(e.ReviewHistory, rv)
		}
	}
	return &e, nil
}

func (r memEventRepo) FindByIDForUpdate(ctx context.Context, tx *gorm.DB, id uint) (*models.Event, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	e, ok := r.s.events[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &e, nil
}

func (r memEventRepo) FindByIDAndHost(ctx context.Context, id, hostID uint) (*models.Event, error) {
	e, err := r.FindByIDForUpdate(ctx, nil, id)
	if err != nil {
		return nil, err
	}
	if e.HostID != hostID {
		return nil, gorm.ErrRecordNotFound
	}
	return e, nil
}

func (r memEventRepo) filter(keep func(models.Event) bool) []models.Event {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []models.Event{}
	for _, e := range r.s.events {
		if keep(e) {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r memEventRepo) FindPublic(ctx context.Context, now time.Time) ([]models.Event, error) {
	return r.filter(func(e models.Event) bool {
		return !e.AdminRejected && (e.Approved || (e.Date != nil && !e.Date.Before(now)))
	}), nil
}

func (r memEventRepo) FindFeatured(ctx context.Context, limit int) ([]models.Event, error) {
	out := r.filter(func(e models.Event) bool { return e.Approved && e.IsActive })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r memEventRepo) FindByHost(ctx context.Context, hostID uint) ([]models.Event, error) {
	return r.filter(func(e models.Event) bool { return e.HostID == hostID }), nil
}

func (r memEventRepo) FindAll(ctx context.Context, status string) ([]models.Event, error) {
	return r.filter(func(e models.Event) bool { return status == "" || string(e.Status) == status }), nil
}

func (r memEventRepo) FindPastDue(ctx context.Context, now time.Time) ([]models.Event, error) {
	return r.filter(func(e models.Event) bool {
		return e.Date != nil && e.Date.Before(now) && e.Status != models.EventCompleted
	}), nil
}

func (r memEventRepo) FindReminderDue(ctx context.Context, from, until time.Time) ([]models.Event, error) {
	return r.filter(func(e models.Event) bool {
		return e.Status == models.EventApproved && e.IsActive && e.EnableReminders &&
			e.Date != nil && !e.Date.Before(from) && e.Date.Before(until) && e.ReminderSentAt == nil
	}), nil
}

func (r memEventRepo) Save(ctx context.Context, tx *gorm.DB, e *models.Event) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored := r.s.events[e.ID]
	cp := *e
	cp.CurrentAttendees = stored.CurrentAttendees
	cp.Analytics = stored.Analytics
	cp.ReminderSentAt = stored.ReminderSentAt
	cp.ReviewHistory = nil
	r.s.events[e.ID] = cp
	return nil
}

func (r memEventRepo) SaveStatus(ctx context.Context, tx *gorm.DB, e *models.Event) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.failSaveStatus != nil {
		return r.s.failSaveStatus
	}
	r.s.saveStatusCalls++
	stored := r.s.events[e.ID]
	stored.Status = e.Status
	stored.IsActive = e.IsActive
	stored.AutoStatusUpdatedAt = e.AutoStatusUpdatedAt
	r.s.events[e.ID] = stored
	return nil
}

func (r memEventRepo) SaveSettings(ctx context.Context, tx *gorm.DB, e *models.Event) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored := r.s.events[e.ID]
	stored.IsActive = e.IsActive
	stored.OneSeatPerUser = e.OneSeatPerUser
	stored.AllowCancellation = e.AllowCancellation
	stored.EnableReminders = e.EnableReminders
	stored.RegistrationDeadline = e.RegistrationDeadline
	stored.TeamLimit = e.TeamLimit
	r.s.events[e.ID] = stored
	return nil
}

func (r memEventRepo) AppendReview(ctx context.Context, tx *gorm.DB, entry *models.ReviewEntry) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	entry.ID = r.s.id()
	r.s.reviews = append(r.s.reviews, *entry)
	return nil
}

func (r memEventRepo) ReserveSeats(ctx context.Context, tx *gorm.DB, eventID uint, seats int, revenue float64, at time.Time) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	e := r.s.events[eventID]
	if e.MaxAttendees != 0 && e.CurrentAttendees+seats > e.MaxAttendees {
		return false, nil
	}
	e.CurrentAttendees += seats
	e.Analytics.TotalRegistrations++
	e.Analytics.TotalTickets += seats
	e.Analytics.TotalRevenue += revenue
	e.Analytics.LastRegistrationAt = &at
	r.s.events[eventID] = e
	return true, nil
}

func (r memEventRepo) ReleaseSeats(ctx context.Context, tx *gorm.DB, eventID uint, seats int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	e := r.s.events[eventID]
	e.CurrentAttendees = max(e.CurrentAttendees-seats, 0)
	r.s.events[eventID] = e
	return nil
}

func (r memEventRepo) MarkReminderSent(ctx context.Context, id uint, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	e := r.s.events[id]
	e.ReminderSentAt = &at
	r.s.events[id] = e
	return nil
}

func (r memEventRepo) Count(ctx context.Context) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return int64(len(r.s.events)), nil
}

func (r memEventRepo) CountByStatus(ctx context.Context) (map[models.EventStatus]int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := map[models.EventStatus]int64{}
	for _, e := range r.s.events {
		out[e.Status]++
	}
	return out, nil
}

// --- RegistrationRepository ---

type memRegistrationRepo struct{ s *memStore }

var _ repository.RegistrationRepository = memRegistrationRepo{}

func (r memRegistrationRepo) Create(ctx context.Context, tx *gorm.DB, reg *models.Registration) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	reg.ID = r.s.id()
	r.s.registrations[reg.ID] = *reg
	return nil
}

func (r memRegistrationRepo) FindByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Registration, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	reg, ok := r.s.registrations[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &reg, nil
}

func (r memRegistrationRepo) FindActiveByUserAndEvent(ctx context.Context, tx *gorm.DB, userID, eventID uint) (*models.Registration, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, reg := range r.s.registrations {
		if reg.UserID == userID && reg.EventID == eventID && reg.RegistrationStatus != models.RegistrationCancelled {
			return &reg, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r memRegistrationRepo) list(keep func(models.Registration) bool) []models.Registration {
	out := []models.Registration{}
	for _, reg := range r.s.registrationList() {
		if keep(reg) {
			r.s.mu.Lock()
			if u, ok := r.s.users[reg.UserID]; ok {
				reg.User = &u
			}
			if e, ok := r.s.events[reg.EventID]; ok {
				reg.Event = &e
			}
			r.s.mu.Unlock()
			out = append(out, reg)
		}
	}
	return out
}

func (r memRegistrationRepo) FindByUser(ctx context.Context, userID uint) ([]models.Registration, error) {
	return r.list(func(reg models.Registration) bool { return reg.UserID == userID }), nil
}

func (r memRegistrationRepo) FindByEvent(ctx context.Context, eventID uint) ([]models.Registration, error) {
	return r.list(func(reg models.Registration) bool { return reg.EventID == eventID }), nil
}

func (r memRegistrationRepo) FindConfirmedByEvent(ctx context.Context, eventID uint) ([]models.Registration, error) {
	return r.list(func(reg models.Registration) bool {
		return reg.EventID == eventID && reg.RegistrationStatus == models.RegistrationConfirmed
	}), nil
}

func (r memRegistrationRepo) FindByTicketID(ctx context.Context, ticketID string) (*models.Registration, error) {
	out := r.list(func(reg models.Registration) bool { return reg.TicketID == ticketID })
	if len(out) == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &out[0], nil
}

func (r memRegistrationRepo) Cancel(ctx context.Context, tx *gorm.DB, id uint) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	reg, ok := r.s.registrations[id]
	if !ok || reg.RegistrationStatus == models.RegistrationCancelled {
		return false, nil
	}
	reg.RegistrationStatus = models.RegistrationCancelled
	reg.CheckInStatus = models.CheckInCancelled
	r.s.registrations[id] = reg
	return true, nil
}

func (r memRegistrationRepo) UpdateCheckIn(ctx context.Context, tx *gorm.DB, ticketID string, status models.CheckInStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, reg := range r.s.registrations {
		if reg.TicketID == ticketID && reg.RegistrationStatus != models.RegistrationCancelled {
			reg.CheckInStatus = status
			r.s.registrations[id] = reg
		}
	}
	return nil
}

func (r memRegistrationRepo) Count(ctx context.Context) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return int64(len(r.s.registrations)), nil
}

func (r memRegistrationRepo) DailyTrend(ctx context.Context) ([]repository.TrendPoint, error) {
	return []repository.TrendPoint{{Day: "2026-10-01", Count: int64(len(r.s.registrationList()))}}, nil
}

// --- TicketRepository ---

type memTicketRepo struct{ s *memStore }

var _ repository.TicketRepository = memTicketRepo{}

func (r memTicketRepo) Create(ctx context.Context, tx *gorm.DB, t *models.Ticket) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t.ID = r.s.id()
	r.s.tickets[t.TicketID] = *t
	return nil
}

func (r memTicketRepo) FindByTicketID(ctx context.Context, ticketID string) (*models.Ticket, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.tickets[ticketID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &t, nil
}

func (r memTicketRepo) FindByTicketIDs(ctx context.Context, ticketIDs []string) ([]models.Ticket, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []models.Ticket{}
	for _, id := range ticketIDs {
		if t, ok := r.s.tickets[id]; ok {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r memTicketRepo) UpdateStatus(ctx context.Context, tx *gorm.DB, ticketID string, status models.TicketStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t := r.s.tickets[ticketID]
	t.Status = status
	r.s.tickets[ticketID] = t
	return nil
}

func (r memTicketRepo) Transition(ctx context.Context, tx *gorm.DB, ticketID string, from, to models.TicketStatus) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.tickets[ticketID]
	if !ok || t.Status != from {
		return false, nil
	}
	t.Status = to
	r.s.tickets[ticketID] = t
	return true, nil
}

func (r memTicketRepo) CountByEvent(ctx context.Context, eventID uint) (int64, error) {
	var n int64
	for _, t := range r.s.ticketList() {
		if t.EventID == eventID {
			n++
		}
	}
	return n, nil
}

// --- UserRepository ---

type memUserRepo struct{ s *memStore }

var _ repository.UserRepository = memUserRepo{}

func (r memUserRepo) Create(ctx context.Context, u *models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u.ID = r.s.id()
	r.s.users[u.ID] = *u
	return nil
}

func (r memUserRepo) FindByID(ctx context.Context, id uint) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &u, nil
}

func (r memUserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r memUserRepo) Save(ctx context.Context, u *models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.users[u.ID] = *u
	return nil
}

func (r memUserRepo) Count(ctx context.Context) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return int64(len(r.s.users)), nil
}

// --- NotificationRepository ---

type memNotificationRepo struct{ s *memStore }

var _ repository.NotificationRepository = memNotificationRepo{}

func (r memNotificationRepo) Create(ctx context.Context, n *models.Notification) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	n.ID = r.s.id()
	r.s.notifications = append(r.s.notifications, *n)
	return nil
}

func (r memNotificationRepo) FindByUser(ctx context.Context, userID uint, limit int) ([]models.Notification, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []models.Notification{}
	for _, n := range r.s.notifications {
		if n.UserID == userID && len(out) < limit {
			out = append(out, n)
		}
	}
	return out, nil
}

func (r memNotificationRepo) MarkAllRead(ctx context.Context, userID uint, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i := range r.s.notifications {
		if r.s.notifications[i].UserID == userID && r.s.notifications[i].ReadAt == nil {
			r.s.notifications[i].ReadAt = &at
		}
	}
	return nil
}

// --- collaborators ---

type fakeCodes struct{ err error }

func (f fakeCodes) DataURI(payload string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return "data:image/png;base64,QR:" + payload, nil
}

type recordingPublisher struct {
	mu   sync.Mutex
	msgs []models.DomainEvent
	err  error
}

func (p *recordingPublisher) Publish(routingKey string, payload any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if msg, ok := payload.(models.DomainEvent); ok {
		p.msgs = append(p.msgs, msg)
	}
	return p.err
}

func (p *recordingPublisher) kinds() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.msgs))
	for i, m := range p.msgs {
		out[i] = m.Kind
	}
	return out
}
