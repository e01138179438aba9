package dto

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/Eursukkul/eventsphere/internal/models"
	"github.com/Eursukkul/eventsphere/internal/service"
)

var (
	ErrInvalidTeamMembers = errors.New("team_members must be a list of members")
	ErrInvalidInterests   = errors.New("interests must be a list or a comma-separated string")
)

type SignupRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Role     string `json:"role"`
	// Intent is accepted as an alias of Role.
	Intent string `json:"intent"`
}

func (r *SignupRequest) Input() service.SignupInput {
	role := r.Role
	if role == "" {
		role = r.Intent
	}
	return service.SignupInput{
		Name:     r.Name,
		Email:    r.Email,
		Password: r.Password,
		Role:     models.Role(strings.ToLower(strings.TrimSpace(role))),
	}
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type RegisterRequest struct {
	Contact          string          `json:"contact"`
	Phone            string          `json:"phone"`
	Seats            json.RawMessage `json:"seats"`
	Special          string          `json:"special"`
	PaymentStatus    string          `json:"payment_status"`
	PaymentReference string          `json:"payment_reference"`
	TeamName         string          `json:"team_name"`
	TeamMembers      json.RawMessage `json:"team_members"`
}

// SeatCount reads seats given as a number or a numeric string. Anything
// else, and zero, means one seat.
func (r *RegisterRequest) SeatCount() int {
	var v any
	if err := json.Unmarshal(r.Seats, &v); err != nil {
		return 1
	}

	var n float64
	switch t := v.(type) {
	case float64:
		n = t
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 1
		}
		n = f
	default:
		return 1
	}
	if math.IsNaN(n) || math.IsInf(n, 0) || n == 0 {
		return 1
	}
	return int(math.Max(math.Min(n, math.MaxInt32), math.MinInt32))
}

// Members decodes team_members given as an array or as a JSON-encoded string
// holding an array.
func (r *RegisterRequest) Members() ([]models.TeamMember, error) {
	raw := bytes.TrimSpace(r.TeamMembers)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}

	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, ErrInvalidTeamMembers
		}
		if strings.TrimSpace(s) == "" {
			return nil, nil
		}
		raw = []byte(s)
	}

	var members []models.TeamMember
	if err := json.Unmarshal(raw, &members); err != nil {
		return nil, ErrInvalidTeamMembers
	}
	return members, nil
}

func (r *RegisterRequest) Input(eventID uint, user *models.User) (service.RegisterInput, error) {
	members, err := r.Members()
	if err != nil {
		return service.RegisterInput{}, err
	}

	status := models.PaymentStatus(strings.TrimSpace(r.PaymentStatus))
	if status == "" {
		status = models.PaymentSuccess
	}

	return service.RegisterInput{
		EventID:          eventID,
		UserID:           user.ID,
		UserEmail:        user.Email,
		Seats:            r.SeatCount(),
		TeamName:         strings.TrimSpace(r.TeamName),
		TeamMembers:      members,
		Contact:          r.Contact,
		Phone:            r.Phone,
		Special:          r.Special,
		PaymentStatus:    status,
		PaymentReference: r.PaymentReference,
	}, nil
}

type EventRequest struct {
	Title                *string            `json:"title" validate:"omitempty,min=1,max=200"`
	Description          *string            `json:"description"`
	Date                 *time.Time         `json:"date"`
	EndDate              *time.Time         `json:"end_date"`
	Venue                *string            `json:"venue"`
	LocationType         *string            `json:"location_type" validate:"omitempty,oneof=in-person virtual hybrid"`
	Type                 *string            `json:"type" validate:"omitempty,oneof=individual team"`
	TeamLimit            *int               `json:"team_limit" validate:"omitempty,gte=1"`
	TeamConfig           *models.TeamConfig `json:"team_config"`
	Category             *string            `json:"category"`
	Tags                 []string           `json:"tags"`
	Agenda               *string            `json:"agenda"`
	TicketPrice          *float64           `json:"ticket_price" validate:"omitempty,gte=0"`
	Currency             *string            `json:"currency"`
	MaxAttendees         *int               `json:"max_attendees" validate:"omitempty,gte=0"`
	RegistrationDeadline *time.Time         `json:"registration_deadline"`
	ImageURL             *string            `json:"image_url"`
	PosterURL            *string            `json:"poster_url"`
	GalleryImages        []string           `json:"gallery_images"`
	OneSeatPerUser       *bool              `json:"one_seat_per_user"`
	AllowCancellation    *bool              `json:"allow_cancellation"`
	EnableReminders      *bool              `json:"enable_reminders"`
}

func (r *EventRequest) Input() service.EventInput {
	return service.EventInput{
		Title:                r.Title,
		Description:          r.Description,
		Date:                 r.Date,
		EndDate:              r.EndDate,
		Venue:                r.Venue,
		LocationType:         r.LocationType,
		Type:                 r.Type,
		TeamLimit:            r.TeamLimit,
		TeamConfig:           r.TeamConfig,
		Category:             r.Category,
		Tags:                 r.Tags,
		Agenda:               r.Agenda,
		TicketPrice:          r.TicketPrice,
		Currency:             r.Currency,
		MaxAttendees:         r.MaxAttendees,
		RegistrationDeadline: r.RegistrationDeadline,
		ImageURL:             r.ImageURL,
		PosterURL:            r.PosterURL,
		GalleryImages:        r.GalleryImages,
		OneSeatPerUser:       r.OneSeatPerUser,
		AllowCancellation:    r.AllowCancellation,
		EnableReminders:      r.EnableReminders,
	}
}

// SettingsRequest keeps each value raw; see service.CoerceBool.
type SettingsRequest struct {
	IsActive             json.RawMessage `json:"is_active"`
	OneSeatPerUser       json.RawMessage `json:"one_seat_per_user"`
	AllowCancellation    json.RawMessage `json:"allow_cancellation"`
	EnableReminders      json.RawMessage `json:"enable_reminders"`
	RegistrationDeadline json.RawMessage `json:"registration_deadline"`
	MaxTicketsPerUser    json.RawMessage `json:"max_tickets_per_user"`
}

func (r *SettingsRequest) Patch() service.SettingsPatch {
	return service.SettingsPatch{
		IsActive:             r.IsActive,
		OneSeatPerUser:       r.OneSeatPerUser,
		AllowCancellation:    r.AllowCancellation,
		EnableReminders:      r.EnableReminders,
		RegistrationDeadline: r.RegistrationDeadline,
		MaxTicketsPerUser:    r.MaxTicketsPerUser,
	}
}

type ApproveRequest struct {
	Note string `json:"note"`
}

type RejectRequest struct {
	Reason string `json:"reason"`
}

type StatusRequest struct {
	Status string `json:"status"`
	Reason string `json:"reason"`
}

type ProfileRequest struct {
	Name       *string         `json:"name"`
	Phone      *string         `json:"phone"`
	RoleType   *string         `json:"role_type"`
	Interests  json.RawMessage `json:"interests"`
	ProfilePic *string         `json:"profile_pic"`
}

func (r *ProfileRequest) Input() (service.ProfileInput, error) {
	in := service.ProfileInput{
		Name:       r.Name,
		Phone:      r.Phone,
		RoleType:   r.RoleType,
		ProfilePic: r.ProfilePic,
	}

	raw := bytes.TrimSpace(r.Interests)
	switch {
	case len(raw) == 0 || bytes.Equal(raw, []byte("null")):
	case raw[0] == '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return in, ErrInvalidInterests
		}
		in.Interests = service.SplitInterests(s)
	default:
		var list []string
		if err := json.Unmarshal(raw, &list); err != nil {
			return in, ErrInvalidInterests
		}
		in.Interests = list
	}
	return in, nil
}
