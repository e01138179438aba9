package models

import (
	"time"

	"gorm.io/datatypes"
)

type RegistrationStatus string

const (
	RegistrationPending    RegistrationStatus = "pending"
	RegistrationConfirmed  RegistrationStatus = "confirmed"
	RegistrationWaitlisted RegistrationStatus = "waitlisted"
	RegistrationCancelled  RegistrationStatus = "cancelled"
)

type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentSuccess PaymentStatus = "success"
	PaymentFailed  PaymentStatus = "failed"
)

type CheckInStatus string

const (
	CheckInNotStarted CheckInStatus = "not_started"
	CheckInCheckedIn  CheckInStatus = "checked_in"
	CheckInCancelled  CheckInStatus = "cancelled"
)

type TeamMember struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

type Registration struct {
	ID      uint `gorm:"primaryKey" json:"id"`
	UserID  uint `gorm:"index;not null" json:"user_id"`
	EventID uint `gorm:"index;not null" json:"event_id"`

	Seats       int                             `gorm:"not null;default:1" json:"seats"`
	TeamName    string                          `json:"team_name,omitempty"`
	TeamMembers datatypes.JSONSlice[TeamMember] `gorm:"type:jsonb" json:"team_members"`

	Contact string `json:"contact,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Email   string `json:"email,omitempty"`
	Special string `json:"special,omitempty"`

	RegistrationStatus RegistrationStatus `gorm:"type:varchar(20);not null;default:'pending'" json:"registration_status"`
	PaymentStatus      PaymentStatus      `gorm:"type:varchar(20);not null;default:'pending'" json:"payment_status"`
	PaymentReference   string             `json:"payment_reference,omitempty"`
	AmountPaid         float64            `gorm:"not null;default:0" json:"amount_paid"`

	TicketID      string        `gorm:"index" json:"ticket_id"`
	CheckInStatus CheckInStatus `gorm:"type:varchar(20);not null;default:'not_started'" json:"check_in_status"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	User  *User  `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Event *Event `gorm:"foreignKey:EventID" json:"event,omitempty"`
}
