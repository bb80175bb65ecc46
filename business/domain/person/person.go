// Package person provides the directory service for person records: creation
// with duplicate-identity enforcement, password-authenticated lookups and
// updates, and the filtered listing operations.
package person

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
)

const (
	uniqueViolation = "23505"

	// maxHumanAge caps the minimum-age listing. There is no documented
	// evidence of people living over 150 years.
	maxHumanAge = 150
)

var (
	ErrEmailTaken       = errors.New("email is already in use")
	ErrPersonNotFound   = errors.New("person not found")
	ErrPasswordMismatch = errors.New("password does not match")
	ErrInvalidEmail     = errors.New("malformed email address")
	ErrInvalidCountry   = errors.New("country must contain exactly two uppercase letters")
	ErrInvalidAge       = errors.New("age must be a whole number")
	ErrAgeLimit         = errors.New("no documented evidence of people living over 150 years")
)

// repository represents the decoupled store the service talks to. Absent rows
// are reported as sql.ErrNoRows. The store must enforce email uniqueness with
// a unique key: the duplicate check in Create is a fast path for a friendly
// error, under concurrent creates the key is the actual safety net.
type repository interface {
	GetByEmail(ctx context.Context, email string) (Person, error)
	GetByCountry(ctx context.Context, country string) ([]Person, error)
	GetByLastName(ctx context.Context, last string) ([]Person, error)
	GetByEmailField(ctx context.Context, email string) ([]Person, error)
	GetByBirthdateRange(ctx context.Context, min time.Time, max time.Time) ([]Person, error)
	GetAll(ctx context.Context) ([]Person, error)
	Create(ctx context.Context, p Person) error
	Save(ctx context.Context, p Person) error
	DeleteAll(ctx context.Context) error
}

// publisher represents the broker used to emit person lifecycle events.
type publisher interface {
	DeclareQueue(name string) error
	Publish(queue string, msg []byte) error
}

// Service represents the set of APIs used to interact with the person domain.
type Service struct {
	repo   repository
	broker publisher
}

// NewService creates a *Service and declares the events queue on the broker.
func NewService(repo repository, broker publisher) (*Service, error) {
	if err := broker.DeclareQueue(EventsQueue); err != nil {
		return nil, fmt.Errorf("declare queue: %w", err)
	}

	return &Service{
		repo:   repo,
		broker: broker,
	}, nil
}

// Create registers a new person. A person already stored under the same email
// returns ErrEmailTaken before anything else, then the email and country
// shapes are checked, and only then the record is persisted. Validation runs
// even though the duplicate check already touched the store.
func (s *Service) Create(ctx context.Context, np NewPerson) (Person, error) {
	_, err := s.repo.GetByEmail(ctx, np.Email)
	if err == nil {
		return Person{}, ErrEmailTaken
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return Person{}, fmt.Errorf("get by email: %w", err)
	}

	if !IsEmailAddress(np.Email) {
		return Person{}, ErrInvalidEmail
	}
	if !HasTwoUppercaseLetters(np.Address.Country) {
		return Person{}, ErrInvalidCountry
	}

	p := Person{
		Email:     np.Email,
		Password:  np.Password,
		Name:      np.Name,
		Address:   np.Address,
		Roles:     np.Roles,
		Birthdate: toDate(np.Birthdate),
	}

	if err := s.repo.Create(ctx, p); err != nil {
		//two creates racing past the duplicate check end up here
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return Person{}, ErrEmailTaken
		}
		if errors.Is(err, ErrEmailTaken) {
			return Person{}, ErrEmailTaken
		}
		return Person{}, fmt.Errorf("create: %w", err)
	}

	if err := publishEvent(s.broker, EventCreated, p.Email); err != nil {
		return Person{}, fmt.Errorf("publish: %w", err)
	}

	return p, nil
}

// Authenticate fetches the person stored under email and compares the stored
// password against the supplied one. Returns ErrPersonNotFound when no record
// exists and ErrPasswordMismatch when the comparison fails.
func (s *Service) Authenticate(ctx context.Context, email string, password string) (Person, error) {
	p, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Person{}, ErrPersonNotFound
		}
		return Person{}, fmt.Errorf("get by email: %w", err)
	}

	if p.Password != password {
		return Person{}, ErrPasswordMismatch
	}

	return p, nil
}

// Update replaces the mutable fields of the person stored under email after a
// password check. A missing record is reported as ErrPasswordMismatch, the
// password can not match a record that does not exist. An invalid replacement
// country falls back to the stored one instead of failing the request.
func (s *Service) Update(ctx context.Context, email string, password string, up UpdatePerson) error {
	existing, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrPasswordMismatch
		}
		return fmt.Errorf("get by email: %w", err)
	}

	if existing.Password != password {
		return ErrPasswordMismatch
	}

	merged := Person{
		Email:     existing.Email,
		Password:  existing.Password,
		Name:      up.Name,
		Address:   up.Address,
		Roles:     up.Roles,
		Birthdate: toDate(up.Birthdate),
	}

	if !HasTwoUppercaseLetters(up.Address.Country) {
		merged.Address.Country = existing.Address.Country
	}

	if err := s.repo.Save(ctx, merged); err != nil {
		return fmt.Errorf("save: %w", err)
	}
	return nil
}

// GetAll returns every person in the store, in store-defined order.
func (s *Service) GetAll(ctx context.Context) ([]Person, error) {
	pp, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("get all: %w", err)
	}
	return pp, nil
}

// GetByCountry returns every person whose country matches exactly.
func (s *Service) GetByCountry(ctx context.Context, country string) ([]Person, error) {
	pp, err := s.repo.GetByCountry(ctx, country)
	if err != nil {
		return nil, fmt.Errorf("get by country: %w", err)
	}
	return pp, nil
}

// GetByLastName returns every person with the given surname.
func (s *Service) GetByLastName(ctx context.Context, last string) ([]Person, error) {
	pp, err := s.repo.GetByLastName(ctx, last)
	if err != nil {
		return nil, fmt.Errorf("get by last name: %w", err)
	}
	return pp, nil
}

// GetByEmail returns the people whose email field matches the given value as
// a filtered scan, not a point lookup. The value must be a well formed email
// address, otherwise ErrInvalidEmail is returned before the store is queried.
func (s *Service) GetByEmail(ctx context.Context, email string) ([]Person, error) {
	if !IsEmailAddress(email) {
		return nil, ErrInvalidEmail
	}
	pp, err := s.repo.GetByEmailField(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("get by email field: %w", err)
	}
	return pp, nil
}

// GetByAgeRange translates the inclusive age bounds into an inclusive
// birthdate window relative to now and queries the store with it. Now is
// injected by the caller so the translation stays deterministic under test.
func (s *Service) GetByAgeRange(ctx context.Context, now time.Time, minAge int, maxAge int) ([]Person, error) {
	today := toDate(now)
	maxBirthdate := today.AddDate(-minAge, 0, 0)
	minBirthdate := today.AddDate(-maxAge, 0, 0)

	pp, err := s.repo.GetByBirthdateRange(ctx, minBirthdate, maxBirthdate)
	if err != nil {
		return nil, fmt.Errorf("get by birthdate range: %w", err)
	}
	return pp, nil
}

// GetByMaximumAge returns every person aged maxAge or younger.
func (s *Service) GetByMaximumAge(ctx context.Context, now time.Time, maxAge int) ([]Person, error) {
	return s.GetByAgeRange(ctx, now, 0, maxAge)
}

// GetByMinimumAge returns every person aged minAge or older, capped at
// maxHumanAge years. A bound of maxHumanAge or more returns ErrAgeLimit.
func (s *Service) GetByMinimumAge(ctx context.Context, now time.Time, minAge int) ([]Person, error) {
	if minAge >= maxHumanAge {
		return nil, ErrAgeLimit
	}
	return s.GetByAgeRange(ctx, now, minAge, maxHumanAge)
}

// DeleteAll unconditionally empties the store.
func (s *Service) DeleteAll(ctx context.Context) error {
	if err := s.repo.DeleteAll(ctx); err != nil {
		return fmt.Errorf("delete all: %w", err)
	}

	if err := publishEvent(s.broker, EventPurged, ""); err != nil {
		return fmt.Errorf("publish: %w", err)
	}
	return nil
}

// toDate drops the time component, birthdates compare at date granularity.
func toDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
