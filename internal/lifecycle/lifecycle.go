// Package lifecycle owns every mutation of an event's approval state.
//
// An event carries three approval signals (Approved, AdminRejected, Status).
// Review actions set all three together through Approve, Reject and
// ForceStatus; Sync repairs Status from the flags and the event date on
// every read, so a past-dated event reads as completed without a timer.
package lifecycle

import (
	"time"

	"github.com/Eursukkul/eventsphere/internal/models"
)

// DefaultRejectReason is stored when an admin rejects without a reason.
const DefaultRejectReason = "Not specified"

// Sync recomputes e.Status from its date and approval flags. Rules are
// evaluated in priority order and the first match wins. It reports whether
// anything changed; the caller persists Status, IsActive and
// AutoStatusUpdatedAt together when it did.
func Sync(e *models.Event, now time.Time) bool {
	if e == nil {
		return false
	}

	changed := false
	switch {
	case e.Date != nil && e.Date.Before(now):
		if e.Status != models.EventCompleted {
			e.Status = models.EventCompleted
			e.IsActive = false
			changed = true
		}
	case e.AdminRejected:
		if e.Status != models.EventRejected {
			e.Status = models.EventRejected
			changed = true
		}
	case e.Approved:
		if e.Status != models.EventApproved {
			e.Status = models.EventApproved
			changed = true
		}
	default:
		if e.Status != models.EventPending {
			e.Status = models.EventPending
			changed = true
		}
	}

	if changed {
		stamp := now
		e.AutoStatusUpdatedAt = &stamp
	}
	return changed
}

// Approve marks the event approved and returns the audit entry to append.
func Approve(e *models.Event, reviewerID uint, note string, now time.Time) models.ReviewEntry {
	setApproved(e)
	e.Status = models.EventApproved
	return models.ReviewEntry{
		EventID:    e.ID,
		ReviewerID: reviewerID,
		Status:     models.EventApproved,
		Note:       note,
		ReviewedAt: now,
	}
}

// Reject marks the event rejected and returns the audit entry to append.
// An empty reason is stored as DefaultRejectReason.
func Reject(e *models.Event, reviewerID uint, reason string, now time.Time) models.ReviewEntry {
	if reason == "" {
		reason = DefaultRejectReason
	}
	setRejected(e, reason)
	e.Status = models.EventRejected
	return models.ReviewEntry{
		EventID:    e.ID,
		ReviewerID: reviewerID,
		Status:     models.EventRejected,
		Note:       reason,
		ReviewedAt: now,
	}
}

// ForceStatus sets Status directly. Approved and rejected also rewrite the
// flags; an empty reason on rejection keeps the stored one. Pending and
// completed leave the flags untouched, so the next Sync may move the event
// back to the status the flags imply.
func ForceStatus(e *models.Event, status models.EventStatus, reason string) {
	e.Status = status
	switch status {
	case models.EventApproved:
		setApproved(e)
	case models.EventRejected:
		if reason == "" && e.RejectReason != nil {
			reason = *e.RejectReason
		}
		setRejected(e, reason)
		if reason == "" {
			e.RejectReason = nil
		}
	}
}

// ResetToPending sends the event back to review.
func ResetToPending(e *models.Event) {
	e.Approved = false
	e.AdminRejected = false
	e.RejectReason = nil
	e.Status = models.EventPending
}

func setApproved(e *models.Event) {
	e.Approved = true
	e.AdminRejected = false
	e.RejectReason = nil
}

func setRejected(e *models.Event, reason string) {
	e.Approved = false
	e.AdminRejected = true
	e.RejectReason = &reason
}
