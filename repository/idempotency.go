package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// IdempotencyStore maps checkout Idempotency-Key headers to the order they
// produced, so a retried checkout returns the original order instead of
// charging twice.
type IdempotencyStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewIdempotencyStore(client *redis.Client, ttl time.Duration) *IdempotencyStore {
	return &IdempotencyStore{client: client, ttl: ttl}
}

func (s *IdempotencyStore) key(userID uuid.UUID, idempotencyKey string) string {
	return fmt.Sprintf("idem:user:%s:%s", userID, idempotencyKey)
}

// Lookup returns the order ID previously stored for this key, or uuid.Nil on
// a miss.
func (s *IdempotencyStore) Lookup(ctx context.Context, userID uuid.UUID, idempotencyKey string) (uuid.UUID, error) {
	val, err := s.client.Get(ctx, s.key(userID, idempotencyKey)).Result()
	if err == redis.Nil {
		return uuid.Nil, nil
	}
	if err != nil {
		return uuid.Nil, err
	}
	return uuid.Parse(val)
}

func (s *IdempotencyStore) Store(ctx context.Context, userID uuid.UUID, idempotencyKey string, orderID uuid.UUID) error {
	return s.client.Set(ctx, s.key(userID, idempotencyKey), orderID.String(), s.ttl).Err()
}
