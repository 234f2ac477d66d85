// Package guard decides whether an identity may touch a record.
//
// The decision is pure: it runs over an already-fetched snapshot and has no
// side effects. Every read, update, or delete of a single application goes
// through Authorize; list queries filter by owner in SQL instead.
package guard

import (
	"github.com/google/uuid"

	"github.com/roshini1406/job-tracker1/internal/domain"
)

// Authorize returns nil when identity owns the application.
// A nil application yields domain.ErrNotFound regardless of identity;
// an owner mismatch yields domain.ErrUnauthorized. The two signals stay
// distinct so callers choose what to reveal.
func Authorize(app *domain.JobApplication, identity uuid.UUID) error {
	if app == nil {
		return domain.ErrNotFound
	}
	if app.OwnerID != identity {
		return domain.ErrUnauthorized
	}
	return nil
}
