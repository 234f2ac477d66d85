package guard

import (
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/roshini1406/job-tracker1/internal/domain"
)

func TestAuthorize_Owner_Allowed(t *testing.T) {
	owner := uuid.New()
	app := &domain.JobApplication{ID: uuid.New(), OwnerID: owner}

	if err := Authorize(app, owner); err != nil {
		t.Fatalf("expected nil for owner, got %v", err)
	}
}

func TestAuthorize_OtherIdentity_Unauthorized(t *testing.T) {
	app := &domain.JobApplication{ID: uuid.New(), OwnerID: uuid.New()}

	err := Authorize(app, uuid.New())
	if !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestAuthorize_MissingRecord_NotFound(t *testing.T) {
	// Missing record is NotFound for every identity, including a would-be owner.
	for i := 0; i < 3; i++ {
		err := Authorize(nil, uuid.New())
		if !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	}
}

func TestAuthorize_NotFoundAndUnauthorizedAreDistinct(t *testing.T) {
	if errors.Is(domain.ErrNotFound, domain.ErrUnauthorized) {
		t.Fatal("ErrNotFound and ErrUnauthorized must be distinct signals")
	}
}
