package dto

import (
	"time"

	"github.com/Eursukkul/eventsphere/internal/models"
	"github.com/Eursukkul/eventsphere/internal/service"
)

type ErrorResponse struct {
	Message string `json:"message"`
}

type UserResponse struct {
	ID         uint        `json:"id"`
	Name       string      `json:"name"`
	Email      string      `json:"email"`
	Role       models.Role `json:"role"`
	ProfilePic string      `json:"profile_pic,omitempty"`
	Phone      string      `json:"phone,omitempty"`
	RoleType   string      `json:"role_type,omitempty"`
	Interests  []string    `json:"interests"`
}

func ToUserResponse(u *models.User) UserResponse {
	interests := []string(u.Interests)
	if interests == nil {
		interests = []string{}
	}
	return UserResponse{
		ID:         u.ID,
		Name:       u.Name,
		Email:      u.Email,
		Role:       u.Role,
		ProfilePic: u.ProfilePic,
		Phone:      u.Phone,
		RoleType:   u.RoleType,
		Interests:  interests,
	}
}

type AuthResponse struct {
	Message string       `json:"message"`
	Token   string       `json:"token"`
	User    UserResponse `json:"user"`
}

func ToAuthResponse(message string, s *service.Session) AuthResponse {
	return AuthResponse{Message: message, Token: s.Token, User: ToUserResponse(s.User)}
}

type EventResponse struct {
	models.Event
	// SeatsAvailable is -1 for events without a capacity limit.
	SeatsAvailable int `json:"seats_available"`
}

func ToEventResponse(e *models.Event) EventResponse {
	return EventResponse{Event: *e, SeatsAvailable: e.SeatsAvailable()}
}

func ToEventResponses(events []models.Event) []EventResponse {
	resp := make([]EventResponse, len(events))
	for i := range events {
		resp[i] = ToEventResponse(&events[i])
	}
	return resp
}

type EventActionResponse struct {
	Success bool          `json:"success"`
	Message string        `json:"message"`
	Event   EventResponse `json:"event"`
}

type TeamSizeResponse struct {
	Type            string `json:"type"`
	MinSize         int    `json:"min_size"`
	MaxSize         int    `json:"max_size"`
	AllowIndividual bool   `json:"allow_individual"`
}

func ToTeamSizeResponse(e *models.Event) TeamSizeResponse {
	cfg := e.EffectiveTeamConfig()
	return TeamSizeResponse{
		Type:            e.Type,
		MinSize:         cfg.MinSize,
		MaxSize:         cfg.MaxSize,
		AllowIndividual: cfg.AllowIndividual,
	}
}

type RegisterResponse struct {
	Success        bool   `json:"success"`
	Message        string `json:"message"`
	TicketID       string `json:"ticket_id"`
	QRCode         string `json:"qr_code"`
	RegistrationID uint   `json:"registration_id"`
}

func ToRegisterResponse(r *service.RegisterResult) RegisterResponse {
	return RegisterResponse{
		Success:        true,
		Message:        "Registered successfully",
		TicketID:       r.Ticket.TicketID,
		QRCode:         r.Ticket.QRCode,
		RegistrationID: r.Registration.ID,
	}
}

type MyRegistrationResponse struct {
	models.Registration
	Ticket *models.Ticket `json:"ticket,omitempty"`
}

func ToMyRegistrationResponses(views []service.RegistrationView) []MyRegistrationResponse {
	resp := make([]MyRegistrationResponse, len(views))
	for i, v := range views {
		resp[i] = MyRegistrationResponse{Registration: v.Registration, Ticket: v.Ticket}
	}
	return resp
}

type EventSummary struct {
	ID            uint               `json:"id"`
	Title         string             `json:"title"`
	Date          *time.Time         `json:"date"`
	Status        models.EventStatus `json:"status"`
	AdminRejected bool               `json:"admin_rejected"`
	RejectReason  *string            `json:"reject_reason"`
}

type SettingsResponse struct {
	Success  bool             `json:"success,omitempty"`
	Message  string           `json:"message,omitempty"`
	Event    *EventSummary    `json:"event,omitempty"`
	Settings service.Settings `json:"settings"`
}

func ToSettingsResponse(e *models.Event, s service.Settings) SettingsResponse {
	return SettingsResponse{
		Event: &EventSummary{
			ID:            e.ID,
			Title:         e.Title,
			Date:          e.Date,
			Status:        e.Status,
			AdminRejected: e.AdminRejected,
			RejectReason:  e.RejectReason,
		},
		Settings: s,
	}
}

type ToggleResponse struct {
	Success  bool `json:"success"`
	IsActive bool `json:"is_active"`
}

type ValidateTicketResponse struct {
	Valid        bool                 `json:"valid"`
	Registration *models.Registration `json:"registration"`
}

type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
