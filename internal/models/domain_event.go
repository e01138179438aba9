package models

import "time"

// Routing keys published on the "events" exchange.
const (
	KeyEventCreated          = "event.created"
	KeyEventUpdated          = "event.updated"
	KeyEventApproved         = "event.approved"
	KeyEventRejected         = "event.rejected"
	KeyEventStatusChanged    = "event.status_changed"
	KeyEventCompleted        = "event.completed"
	KeyEventReminder         = "event.reminder"
	KeyRegistrationConfirmed = "registration.confirmed"
	KeyRegistrationCancelled = "registration.cancelled"
)

// DomainEvent is the message body for every routing key. RecipientID is the
// user that should be told about it.
type DomainEvent struct {
	Kind        string      `json:"kind"`
	EventID     uint        `json:"event_id"`
	EventTitle  string      `json:"event_title"`
	Status      EventStatus `json:"status,omitempty"`
	RecipientID uint        `json:"recipient_id"`
	TicketID    string      `json:"ticket_id,omitempty"`
	Seats       int         `json:"seats,omitempty"`
	Note        string      `json:"note,omitempty"`
	OccurredAt  time.Time   `json:"occurred_at"`
}
