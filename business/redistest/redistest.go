// Package redistest provides setup and clean up for testing against redis.
package redistest

import (
	"context"
	"testing"
	"time"

	"github.com/orielmalik/people-directory/foundation/docker"
	"github.com/redis/go-redis/v9"
)

// NewRedisClient starts a redis container and returns a pinged client.
func NewRedisClient(t *testing.T, ctx context.Context, name string) *redis.Client {
	image := "redis:latest"
	internalPort := "6379"

	c, err := docker.StartContainer(image, name, internalPort, nil, nil)
	if err != nil {
		t.Fatalf("expected to create a redis container: %s", err)
	}

	client := redis.NewClient(&redis.Options{
		Addr:     c.HostPort,
		Password: "",
		DB:       0,
	})

	//slow machine
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(context.Background(), time.Minute*2)
		defer cancel()
	}

	for attempt := 1; ; attempt++ {
		pingErr := client.Ping(ctx).Err()
		if pingErr == nil {
			break
		}
		time.Sleep(time.Millisecond * 100 * time.Duration(attempt))
		if ctx.Err() != nil {
			t.Fatalf("expected to ping redis: %s", pingErr)
		}
	}

	t.Cleanup(func() {
		if err := client.Close(); err != nil {
			t.Errorf("failed to close redis client: %s", err)
		}

		if err := c.Stop(); err != nil {
			t.Errorf("failed to stop container %s: %s", c.Id, err)
		}
	})

	return client
}
