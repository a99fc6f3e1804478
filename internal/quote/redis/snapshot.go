package redis

import (
	"context"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
)

const snapshotKeyPrefix = "stock_snapshot:"

// Snapshot is a short-TTL cache of per-ticket remaining stock. Listing pages
// poll quotes every second; the cache absorbs that load so Postgres only sees
// a read when a snapshot lapses. Values are overwritten wholesale from
// upstream inventory events, never decremented locally.
type Snapshot struct {
	Client *redis.Client
	TTL    time.Duration
}

func NewSnapshot(client *redis.Client, ttl time.Duration) *Snapshot {
	if ttl <= 0 {
		ttl = 5 * time.Second
	}
	return &Snapshot{Client: client, TTL: ttl}
}

// GetRemaining returns the cached remaining count for a ticket. The second
// return is false on a cache miss.
func (s *Snapshot) GetRemaining(ctx context.Context, ticketID string) (int, bool, error) {
	val, err := s.Client.Get(ctx, snapshotKeyPrefix+ticketID).Result()
	if err == redis.Nil {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	remaining, err := strconv.Atoi(val)
	if err != nil {
		// A corrupt entry is treated as a miss; it will be overwritten
		return 0, false, nil
	}
	return remaining, true, nil
}

// SetRemaining stores a fresh snapshot for a ticket.
func (s *Snapshot) SetRemaining(ctx context.Context, ticketID string, remaining int) error {
	return s.Client.Set(ctx, snapshotKeyPrefix+ticketID, strconv.Itoa(remaining), s.TTL).Err()
}

// Invalidate drops a ticket's snapshot so the next quote reads the database.
func (s *Snapshot) Invalidate(ctx context.Context, ticketID string) error {
	return s.Client.Del(ctx, snapshotKeyPrefix+ticketID).Err()
}
