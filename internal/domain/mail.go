package domain

import (
	"time"

	"github.com/google/uuid"
)

// MailAttempt records one reminder send, success or failure.
// The log is append-only observability; the scan path never reads it,
// so a reminder date that stays set keeps firing on later days.
type MailAttempt struct {
	ID            uuid.UUID
	ApplicationID uuid.UUID
	OwnerID       uuid.UUID

	Address string
	Error   string

	StartedAt  time.Time
	FinishedAt time.Time
}
