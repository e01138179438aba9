package models

import "time"

// Notification is an in-app message for one user, materialised by the
// worker from domain events.
type Notification struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	UserID    uint       `gorm:"index;not null" json:"user_id"`
	EventID   uint       `gorm:"index" json:"event_id"`
	Kind      string     `gorm:"type:varchar(40);not null" json:"kind"`
	Message   string     `gorm:"not null" json:"message"`
	ReadAt    *time.Time `json:"read_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}
