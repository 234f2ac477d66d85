package domain

import (
	"time"

	"github.com/google/uuid"
)

// ReminderEvent is emitted by the scanner for each application whose
// reminder date falls inside the current day window.
type ReminderEvent struct {
	ApplicationID uuid.UUID
	OwnerID       uuid.UUID

	Address string // owner email, resolved at scan time
	Title   string
	Company string

	ScheduledFor time.Time // start of the matched day window
	FiredAt      time.Time // actual emission time
}
