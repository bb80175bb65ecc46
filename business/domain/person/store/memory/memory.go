// Package memory provides an in memory repository used for testing.
package memory

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/orielmalik/people-directory/business/domain/person"
)

type Repository struct {
	People map[string]person.Person
	mu     sync.Mutex
}

// GetByEmail returns the person stored under email or sql.ErrNoRows.
func (r *Repository) GetByEmail(ctx context.Context, email string) (person.Person, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if p, ok := r.People[email]; ok {
		return p, nil
	}
	return person.Person{}, sql.ErrNoRows
}

func (r *Repository) GetByCountry(ctx context.Context, country string) ([]person.Person, error) {
	return r.filter(func(p person.Person) bool { return p.Address.Country == country }), nil
}

func (r *Repository) GetByLastName(ctx context.Context, last string) ([]person.Person, error) {
	return r.filter(func(p person.Person) bool { return p.Name.Last == last }), nil
}

func (r *Repository) GetByEmailField(ctx context.Context, email string) ([]person.Person, error) {
	return r.filter(func(p person.Person) bool { return p.Email == email }), nil
}

// GetByBirthdateRange returns every person whose birthdate falls inside the
// inclusive [min,max] window.
func (r *Repository) GetByBirthdateRange(ctx context.Context, min time.Time, max time.Time) ([]person.Person, error) {
	return r.filter(func(p person.Person) bool {
		return !p.Birthdate.Before(min) && !p.Birthdate.After(max)
	}), nil
}

func (r *Repository) GetAll(ctx context.Context) ([]person.Person, error) {
	return r.filter(func(person.Person) bool { return true }), nil
}

// Create inserts a new person and rejects an already used email, matching the
// unique key a real store puts on the email column.
func (r *Repository) Create(ctx context.Context, p person.Person) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.People[p.Email]; ok {
		return person.ErrEmailTaken
	}
	r.People[p.Email] = p
	return nil
}

// Save upserts the person keyed by email.
func (r *Repository) Save(ctx context.Context, p person.Person) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.People[p.Email] = p
	return nil
}

func (r *Repository) DeleteAll(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clear(r.People)
	return nil
}

func (r *Repository) filter(keep func(person.Person) bool) []person.Person {
	r.mu.Lock()
	defer r.mu.Unlock()

	results := make([]person.Person, 0, len(r.People))
	for _, p := range r.People {
		if keep(p) {
			results = append(results, p)
		}
	}
	return results
}
