package auth

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// tokenKeyPrefix matches the hashes the auth service writes on login:
// HSET authtoken:<token> user_id <uuid> email <addr>, with the session TTL.
const tokenKeyPrefix = "authtoken:"

// RedisTokenValidator validates tokens against the auth service's session
// store. Expiry is handled by Redis TTLs; a missing key is an invalid token.
type RedisTokenValidator struct {
	client *redis.Client
}

func NewRedisTokenValidator(client *redis.Client) *RedisTokenValidator {
	return &RedisTokenValidator{client: client}
}

func (v *RedisTokenValidator) ValidateToken(ctx context.Context, token string) (*Identity, error) {
	fields, err := v.client.HGetAll(ctx, tokenKeyPrefix+token).Result()
	if err != nil {
		return nil, fmt.Errorf("token lookup: %w", err)
	}
	if len(fields) == 0 {
		return nil, ErrInvalidToken
	}

	userID, err := uuid.Parse(fields["user_id"])
	if err != nil {
		return nil, ErrInvalidToken
	}

	return &Identity{UserID: userID, Email: fields["email"]}, nil
}
