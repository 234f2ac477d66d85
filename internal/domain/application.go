package domain

import (
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusApplied      Status = "Applied"
	StatusInterviewing Status = "Interviewing"
	StatusOffer        Status = "Offer"
	StatusRejected     Status = "Rejected"
)

// Statuses lists every valid application status, in display order.
var Statuses = []Status{StatusApplied, StatusInterviewing, StatusOffer, StatusRejected}

// Valid reports whether s is one of the enumerated statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusApplied, StatusInterviewing, StatusOffer, StatusRejected:
		return true
	}
	return false
}

// JobApplication is a single tracked application. OwnerID is set at creation
// and never reassigned; update paths must not carry it.
type JobApplication struct {
	ID      uuid.UUID
	OwnerID uuid.UUID

	Title   string
	Company string
	Status  Status

	DateApplied  time.Time
	Notes        string
	JobURL       string
	ReminderDate *time.Time

	AttachmentRef string

	CreatedAt time.Time
	UpdatedAt time.Time
}
