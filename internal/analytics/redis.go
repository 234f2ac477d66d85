package analytics

import (
	"context"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/roshini1406/job-tracker1/internal/domain"
)

// RedisSink keeps per-owner daily counters of emitted reminders. Counters
// feed the "how many reminders did I get" view and expire on their own;
// losing one is harmless, so writes are best-effort.
type RedisSink struct {
	client    *redis.Client
	retention time.Duration
}

func NewRedisSink(client *redis.Client, retention time.Duration) *RedisSink {
	if retention <= 0 {
		retention = 30 * 24 * time.Hour
	}
	return &RedisSink{client: client, retention: retention}
}

func (s *RedisSink) ReminderEmitted(ctx context.Context, event domain.ReminderEvent) {
	key := buildKey(event.OwnerID.String(), event.FiredAt)

	pipe := s.client.Pipeline()
	pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, s.retention)

	if _, err := pipe.Exec(ctx); err != nil {
		log.Printf("analytics: reminder counter %s: %v", key, err)
	}
}

func buildKey(ownerID string, t time.Time) string {
	return "reminders:o:" + ownerID + ":" + t.UTC().Format("20060102")
}
