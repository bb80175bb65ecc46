// Package redis keeps the audit trail of directory change events.
package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const trailKey = "audit:events"

// maxTrailLength caps how many entries the trail keeps, older entries fall
// off the end.
const maxTrailLength = 1000

// Repository represents the trail APIs against redis.
type Repository struct {
	client *redis.Client
}

// NewRepository creates a new redis repository.
func NewRepository(c *redis.Client) *Repository {
	return &Repository{
		client: c,
	}
}

// Record prepends one entry to the trail and trims it to the cap.
func (r *Repository) Record(ctx context.Context, entry []byte) error {
	if err := r.client.LPush(ctx, trailKey, entry).Err(); err != nil {
		return fmt.Errorf("lpush: %w", err)
	}

	if err := r.client.LTrim(ctx, trailKey, 0, maxTrailLength-1).Err(); err != nil {
		return fmt.Errorf("ltrim: %w", err)
	}
	return nil
}

// Recent returns up to n entries, newest first.
func (r *Repository) Recent(ctx context.Context, n int) ([]string, error) {
	if n <= 0 {
		return nil, nil
	}

	entries, err := r.client.LRange(ctx, trailKey, 0, int64(n-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("lrange: %w", err)
	}
	return entries, nil
}
