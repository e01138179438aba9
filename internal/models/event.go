package models

import (
	"time"

	"github.com/lib/pq"
)

type EventStatus string

const (
	EventPending   EventStatus = "pending"
	EventApproved  EventStatus = "approved"
	EventRejected  EventStatus = "rejected"
	EventCompleted EventStatus = "completed"
)

func (s EventStatus) Valid() bool {
	switch s {
	case EventPending, EventApproved, EventRejected, EventCompleted:
		return true
	}
	return false
}

const (
	EventTypeIndividual = "individual"
	EventTypeTeam       = "team"
)

// TeamConfig governs team-type events. A zero MaxSize means the legacy
// TeamLimit applies.
type TeamConfig struct {
	MinSize         int  `json:"min_size"`
	MaxSize         int  `json:"max_size"`
	AllowIndividual bool `json:"allow_individual"`
}

// Analytics are running accumulators, never recomputed.
type Analytics struct {
	TotalRegistrations int        `gorm:"not null;default:0" json:"total_registrations"`
	TotalTickets       int        `gorm:"not null;default:0" json:"total_tickets"`
	TotalRevenue       float64    `gorm:"not null;default:0" json:"total_revenue"`
	LastRegistrationAt *time.Time `json:"last_registration_at,omitempty"`
}

type Event struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	Title        string         `gorm:"not null" json:"title"`
	Description  string         `json:"description"`
	Date         *time.Time     `gorm:"index" json:"date,omitempty"`
	EndDate      *time.Time     `json:"end_date,omitempty"`
	Venue        string         `json:"venue"`
	LocationType string         `gorm:"type:varchar(20);not null;default:'in-person'" json:"location_type"`
	Type         string         `gorm:"type:varchar(20);not null;default:'individual'" json:"type"`
	TeamLimit    int            `gorm:"not null;default:1" json:"team_limit"`
	TeamConfig   TeamConfig     `gorm:"embedded;embeddedPrefix:team_" json:"team_config"`
	Category     string         `gorm:"not null;default:'General'" json:"category"`
	Tags         pq.StringArray `gorm:"type:text[]" json:"tags"`
	Agenda       string         `json:"agenda"`

	TicketPrice float64 `gorm:"not null;default:0" json:"ticket_price"`
	Currency    string  `gorm:"type:varchar(8);not null;default:'INR'" json:"currency"`

	// MaxAttendees of 0 means unlimited.
	MaxAttendees     int `gorm:"not null;default:0" json:"max_attendees"`
	CurrentAttendees int `gorm:"not null;default:0" json:"current_attendees"`
	WaitlistCount    int `gorm:"not null;default:0" json:"waitlist_count"`

	ImageURL      string         `json:"image_url,omitempty"`
	PosterURL     string         `json:"poster_url,omitempty"`
	GalleryImages pq.StringArray `gorm:"type:text[]" json:"gallery_images"`

	HostID   uint   `gorm:"index;not null" json:"host_id"`
	HostName string `json:"host_name"`

	Approved      bool        `gorm:"not null" json:"approved"`
	AdminRejected bool        `gorm:"not null" json:"admin_rejected"`
	RejectReason  *string     `json:"reject_reason"`
	Status        EventStatus `gorm:"type:varchar(20);index;not null;default:'pending'" json:"status"`

	IsActive             bool       `gorm:"not null" json:"is_active"`
	RegistrationDeadline *time.Time `json:"registration_deadline,omitempty"`
	OneSeatPerUser       bool       `gorm:"not null" json:"one_seat_per_user"`
	AllowCancellation    bool       `gorm:"not null" json:"allow_cancellation"`
	EnableReminders      bool       `gorm:"not null" json:"enable_reminders"`

	Analytics           Analytics  `gorm:"embedded;embeddedPrefix:analytics_" json:"analytics"`
	AutoStatusUpdatedAt *time.Time `json:"auto_status_updated_at,omitempty"`
	ReminderSentAt      *time.Time `json:"-"`

	ReviewHistory []ReviewEntry `gorm:"foreignKey:EventID" json:"review_history"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ReviewEntry is one append-only row of an event's audit trail.
type ReviewEntry struct {
	ID         uint        `gorm:"primaryKey" json:"id"`
	EventID    uint        `gorm:"index;not null" json:"event_id"`
	ReviewerID uint        `gorm:"not null" json:"reviewer_id"`
	Status     EventStatus `gorm:"type:varchar(20);not null" json:"status"`
	Note       string      `json:"note,omitempty"`
	ReviewedAt time.Time   `gorm:"not null" json:"reviewed_at"`
}

func (ReviewEntry) TableName() string { return "event_reviews" }

// EffectiveTeamConfig resolves the team policy, falling back to the legacy
// TeamLimit when no MaxSize is configured. MaxSize is never below 1.
func (e *Event) EffectiveTeamConfig() TeamConfig {
	cfg := e.TeamConfig
	if cfg.MinSize <= 0 {
		cfg.MinSize = 1
	}
	maxSize := cfg.MaxSize
	if maxSize <= 0 {
		maxSize = e.TeamLimit
	}
	cfg.MaxSize = max(1, maxSize)
	return cfg
}

// SeatsAvailable returns -1 when the event has no capacity limit.
func (e *Event) SeatsAvailable() int {
	if e.MaxAttendees == 0 {
		return -1
	}
	return max(e.MaxAttendees-e.CurrentAttendees, 0)
}
