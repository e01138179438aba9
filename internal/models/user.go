package models

import (
	"time"

	"github.com/lib/pq"
)

type Role string

const (
	RoleAttendee Role = "attendee"
	RoleHost     Role = "host"
	RoleAdmin    Role = "admin"
)

type User struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	Name         string         `json:"name"`
	Email        string         `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string         `gorm:"not null" json:"-"`
	Role         Role           `gorm:"type:varchar(20);not null;default:'attendee'" json:"role"`
	ProfilePic   string         `json:"profile_pic,omitempty"`
	Phone        string         `json:"phone,omitempty"`
	RoleType     string         `json:"role_type,omitempty"`
	Interests    pq.StringArray `gorm:"type:text[]" json:"interests"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}
