// Package cached decorates a person repository with a redis read-through
// cache on the point lookup. Listing queries pass straight to the inner
// store, a cache miss or a redis failure falls back to the inner store too,
// the cache never changes results, only latency.
package cached

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/orielmalik/people-directory/business/domain/person"
)

const keyPrefix = "person:"

// repository is the inner store being decorated.
type repository interface {
	GetByEmail(ctx context.Context, email string) (person.Person, error)
	GetByCountry(ctx context.Context, country string) ([]person.Person, error)
	GetByLastName(ctx context.Context, last string) ([]person.Person, error)
	GetByEmailField(ctx context.Context, email string) ([]person.Person, error)
	GetByBirthdateRange(ctx context.Context, min time.Time, max time.Time) ([]person.Person, error)
	GetAll(ctx context.Context) ([]person.Person, error)
	Create(ctx context.Context, p person.Person) error
	Save(ctx context.Context, p person.Person) error
	DeleteAll(ctx context.Context) error
}

// Repository wraps an inner repository with a redis cache.
type Repository struct {
	inner  repository
	client *redis.Client
	ttl    time.Duration
}

// NewRepository creates the decorator. Entries live for ttl at most, writes
// drop the affected keys.
func NewRepository(inner repository, client *redis.Client, ttl time.Duration) *Repository {
	return &Repository{
		inner:  inner,
		client: client,
		ttl:    ttl,
	}
}

// GetByEmail serves the point lookup from redis when it can and fills the
// cache on a miss.
func (r *Repository) GetByEmail(ctx context.Context, email string) (person.Person, error) {
	key := keyPrefix + email

	bs, err := r.client.Get(ctx, key).Bytes()
	if err == nil {
		var p person.Person
		if err := json.Unmarshal(bs, &p); err == nil {
			return p, nil
		}
		//unreadable entry, drop it and fall through
		_ = r.client.Del(ctx, key).Err()
	} else if !errors.Is(err, redis.Nil) {
		//redis being down must not take the lookup down with it
		return r.inner.GetByEmail(ctx, email)
	}

	p, err := r.inner.GetByEmail(ctx, email)
	if err != nil {
		return person.Person{}, err
	}

	if bs, err := json.Marshal(p); err == nil {
		_ = r.client.Set(ctx, key, bs, r.ttl).Err()
	}
	return p, nil
}

func (r *Repository) GetByCountry(ctx context.Context, country string) ([]person.Person, error) {
	return r.inner.GetByCountry(ctx, country)
}

func (r *Repository) GetByLastName(ctx context.Context, last string) ([]person.Person, error) {
	return r.inner.GetByLastName(ctx, last)
}

func (r *Repository) GetByEmailField(ctx context.Context, email string) ([]person.Person, error) {
	return r.inner.GetByEmailField(ctx, email)
}

func (r *Repository) GetByBirthdateRange(ctx context.Context, min time.Time, max time.Time) ([]person.Person, error) {
	return r.inner.GetByBirthdateRange(ctx, min, max)
}

func (r *Repository) GetAll(ctx context.Context) ([]person.Person, error) {
	return r.inner.GetAll(ctx)
}

// Create inserts through and drops any stale entry for the email.
func (r *Repository) Create(ctx context.Context, p person.Person) error {
	if err := r.inner.Create(ctx, p); err != nil {
		return err
	}
	_ = r.client.Del(ctx, keyPrefix+p.Email).Err()
	return nil
}

// Save writes through and invalidates the cached entry.
func (r *Repository) Save(ctx context.Context, p person.Person) error {
	if err := r.inner.Save(ctx, p); err != nil {
		return err
	}
	_ = r.client.Del(ctx, keyPrefix+p.Email).Err()
	return nil
}

// DeleteAll purges the inner store and every cached person entry.
func (r *Repository) DeleteAll(ctx context.Context) error {
	if err := r.inner.DeleteAll(ctx); err != nil {
		return err
	}

	iter := r.client.Scan(ctx, 0, keyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		_ = r.client.Del(ctx, iter.Val()).Err()
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("scan: %w", err)
	}
	return nil
}
