package auth

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// StaticTokenValidator resolves tokens from a fixed in-memory table.
// Development fallback for running without Redis; never use in production.
type StaticTokenValidator struct {
	tokens map[string]Identity
}

// NewStaticTokenValidator parses a comma-separated list of
// "token:user_uuid:email" triples.
func NewStaticTokenValidator(spec string) (*StaticTokenValidator, error) {
	tokens := make(map[string]Identity)
	for _, entry := range strings.Split(spec, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		parts := strings.SplitN(entry, ":", 3)
		if len(parts) != 3 || parts[0] == "" {
			return nil, fmt.Errorf("static token entry %q: want token:user_uuid:email", entry)
		}
		userID, err := uuid.Parse(parts[1])
		if err != nil {
			return nil, fmt.Errorf("static token entry %q: bad user id: %w", entry, err)
		}
		tokens[parts[0]] = Identity{UserID: userID, Email: parts[2]}
	}
	if len(tokens) == 0 {
		return nil, fmt.Errorf("no static tokens configured")
	}
	return &StaticTokenValidator{tokens: tokens}, nil
}

func (v *StaticTokenValidator) ValidateToken(ctx context.Context, token string) (*Identity, error) {
	id, ok := v.tokens[token]
	if !ok {
		return nil, ErrInvalidToken
	}
	return &id, nil
}
