package models

import "time"

type TicketStatus string

const (
	TicketActive    TicketStatus = "active"
	TicketUsed      TicketStatus = "used"
	TicketCancelled TicketStatus = "cancelled"
)

type Ticket struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	TicketID string `gorm:"uniqueIndex;not null" json:"ticket_id"`
	UserID   uint   `gorm:"index;not null" json:"user_id"`
	EventID  uint   `gorm:"index;not null" json:"event_id"`
	Seats    int    `gorm:"not null;default:1" json:"seats"`

	// QRCode is a PNG data URI of QRPayload.
	QRCode    string       `gorm:"type:text" json:"qr_code"`
	QRPayload string       `gorm:"type:text" json:"qr_payload"`
	Status    TicketStatus `gorm:"type:varchar(20);not null;default:'active'" json:"status"`

	DownloadedAt *time.Time `json:"downloaded_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`

	User  *User  `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Event *Event `gorm:"foreignKey:EventID" json:"event,omitempty"`
}
