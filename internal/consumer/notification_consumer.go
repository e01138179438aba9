package consumer

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Eursukkul/eventsphere/internal/logging"
	"github.com/Eursukkul/eventsphere/internal/metrics"
	"github.com/Eursukkul/eventsphere/internal/models"
	"github.com/Eursukkul/eventsphere/internal/repository"
	amqp "github.com/rabbitmq/amqp091-go"
)

const storeTimeout = 5 * time.Second

// NotificationConsumer turns domain events into in-app notifications.
type NotificationConsumer struct {
	notifications repository.NotificationRepository
}

func NewNotificationConsumer(notifications repository.NotificationRepository) *NotificationConsumer {
	return &NotificationConsumer{notifications: notifications}
}

// Start handles deliveries until msgs is closed. The returned channel is
// closed once the last delivery has been handled.
func (nc *NotificationConsumer) Start(msgs <-chan amqp.Delivery) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		for msg := range msgs {
			nc.handleMessage(msg)
		}
		logging.With("consumer").Info().Msg("delivery channel closed, stopping consumer")
	}()
	return done
}

func (nc *NotificationConsumer) handleMessage(msg amqp.Delivery) {
	log := logging.With("consumer")

	var event models.DomainEvent
	if err := json.Unmarshal(msg.Body, &event); err != nil {
		log.Error().Err(err).Str("routing_key", msg.RoutingKey).Msg("failed to unmarshal domain event")
		_ = msg.Nack(false, false)
		return
	}
	if event.Kind == "" {
		event.Kind = msg.RoutingKey
	}

	text, ok := notificationText(event)
	if !ok || event.RecipientID == 0 {
		_ = msg.Ack(false)
		return
	}

	n := &models.Notification{
		UserID:  event.RecipientID,
		EventID: event.EventID,
		Kind:    event.Kind,
		Message: text,
	}

	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()
	if err := nc.notifications.Create(ctx, n); err != nil {
		log.Error().Err(err).Str("kind", event.Kind).Uint("user_id", event.RecipientID).Msg("failed to store notification")
		_ = msg.Nack(false, true)
		return
	}

	metrics.NotificationsStored.WithLabelValues(event.Kind).Inc()
	log.Debug().Str("kind", event.Kind).Uint("user_id", event.RecipientID).Msg("notification stored")
	_ = msg.Ack(false)
}

func notificationText(e models.DomainEvent) (string, bool) {
	switch e.Kind {
	case models.KeyEventCreated:
		return fmt.Sprintf("Your event %q was submitted for approval", e.EventTitle), true
	case models.KeyEventUpdated:
		if e.Status == models.EventPending {
			return fmt.Sprintf("Your event %q was updated and is awaiting review", e.EventTitle), true
		}
		return fmt.Sprintf("Your event %q was updated", e.EventTitle), true
	case models.KeyEventApproved:
		return fmt.Sprintf("Your event %q was approved", e.EventTitle), true
	case models.KeyEventRejected:
		if e.Note != "" {
			return fmt.Sprintf("Your event %q was rejected: %s", e.EventTitle, e.Note), true
		}
		return fmt.Sprintf("Your event %q was rejected", e.EventTitle), true
	case models.KeyEventStatusChanged:
		return fmt.Sprintf("The status of %q changed to %s", e.EventTitle, e.Status), true
	case models.KeyEventCompleted:
		return fmt.Sprintf("%q has ended", e.EventTitle), true
	case models.KeyEventReminder:
		return fmt.Sprintf("Reminder: %q starts soon", e.EventTitle), true
	case models.KeyRegistrationConfirmed:
		return fmt.Sprintf("You are registered for %q. Ticket %s", e.EventTitle, e.TicketID), true
	case models.KeyRegistrationCancelled:
		return fmt.Sprintf("Your registration for %q was cancelled", e.EventTitle), true
	}
	return "", false
}
