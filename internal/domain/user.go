package domain

import (
	"time"

	"github.com/google/uuid"
)

// User is a row in the users table, owned by the auth service.
// This service only reads it to resolve notification addresses.
type User struct {
	ID    uuid.UUID
	Email string
	Name  string

	CreatedAt time.Time
}
