package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/orielmalik/people-directory/business/database/postgres"
	"github.com/orielmalik/people-directory/business/domain/person"
)

const cols = "email,password,first_name,last_name,country,city,zip,array_to_json(roles) AS roles,birthdate"

// Repository represents the set of APIs used to interact with postgres.
type Repository struct {
	client *postgres.Client
}

// NewRepository provides APIs to interact with the people table.
func NewRepository(pgClient *postgres.Client) *Repository {
	return &Repository{
		client: pgClient,
	}
}

// Create inserts a new person. The primary key on email makes a duplicate
// insert fail with a unique violation, which is what keeps two racing
// creations from both landing.
func (r *Repository) Create(ctx context.Context, p person.Person) error {
	const q = `
	INSERT INTO people
		(email,password,first_name,last_name,country,city,zip,roles,birthdate)
	VALUES
		($1,$2,$3,$4,$5,$6,$7,$8,$9)
	`
	dbPerson := toDBPerson(p)

	_, err := r.client.DB.ExecContext(ctx, q,
		dbPerson.Email,
		dbPerson.Password,
		dbPerson.FirstName,
		dbPerson.LastName,
		dbPerson.Country,
		dbPerson.City,
		dbPerson.Zip,
		dbPerson.Roles,
		dbPerson.Birthdate,
	)
	if err != nil {
		return fmt.Errorf("exec context: %w", err)
	}
	return nil
}

// Save upserts the person keyed by email.
func (r *Repository) Save(ctx context.Context, p person.Person) error {
	const q = `
	INSERT INTO people
		(email,password,first_name,last_name,country,city,zip,roles,birthdate)
	VALUES
		($1,$2,$3,$4,$5,$6,$7,$8,$9)
	ON CONFLICT (email) DO UPDATE SET
		password   = EXCLUDED.password,
		first_name = EXCLUDED.first_name,
		last_name  = EXCLUDED.last_name,
		country    = EXCLUDED.country,
		city       = EXCLUDED.city,
		zip        = EXCLUDED.zip,
		roles      = EXCLUDED.roles,
		birthdate  = EXCLUDED.birthdate
	`
	dbPerson := toDBPerson(p)

	_, err := r.client.DB.ExecContext(ctx, q,
		dbPerson.Email,
		dbPerson.Password,
		dbPerson.FirstName,
		dbPerson.LastName,
		dbPerson.Country,
		dbPerson.City,
		dbPerson.Zip,
		dbPerson.Roles,
		dbPerson.Birthdate,
	)
	if err != nil {
		return fmt.Errorf("exec context: %w", err)
	}
	return nil
}

// GetByEmail is the point lookup on the primary key. Absent rows surface as
// sql.ErrNoRows for the domain layer to translate.
func (r *Repository) GetByEmail(ctx context.Context, email string) (person.Person, error) {
	const q = `
	SELECT ` + cols + `
	FROM people
	WHERE email = $1
	`
	row := r.client.DB.QueryRowContext(ctx, q, email)

	p, err := scanPerson(row.Scan)
	if err != nil {
		return person.Person{}, err
	}
	return p.toDomainPerson(), nil
}

func (r *Repository) GetByCountry(ctx context.Context, country string) ([]person.Person, error) {
	const q = `
	SELECT ` + cols + `
	FROM people
	WHERE country = $1
	`
	return r.query(ctx, q, country)
}

func (r *Repository) GetByLastName(ctx context.Context, last string) ([]person.Person, error) {
	const q = `
	SELECT ` + cols + `
	FROM people
	WHERE last_name = $1
	`
	return r.query(ctx, q, last)
}

// GetByEmailField is the filtered scan over the email column, distinct from
// the point lookup.
func (r *Repository) GetByEmailField(ctx context.Context, email string) ([]person.Person, error) {
	const q = `
	SELECT ` + cols + `
	FROM people
	WHERE email = $1
	`
	return r.query(ctx, q, email)
}

// GetByBirthdateRange returns the people born inside the inclusive window.
func (r *Repository) GetByBirthdateRange(ctx context.Context, min time.Time, max time.Time) ([]person.Person, error) {
	const q = `
	SELECT ` + cols + `
	FROM people
	WHERE birthdate BETWEEN $1 AND $2
	`
	return r.query(ctx, q, min, max)
}

func (r *Repository) GetAll(ctx context.Context) ([]person.Person, error) {
	const q = `
	SELECT ` + cols + `
	FROM people
	`
	return r.query(ctx, q)
}

func (r *Repository) DeleteAll(ctx context.Context) error {
	const q = `
	DELETE FROM people
	`
	if _, err := r.client.DB.ExecContext(ctx, q); err != nil {
		return fmt.Errorf("exec context: %w", err)
	}
	return nil
}

func (r *Repository) query(ctx context.Context, q string, args ...any) ([]person.Person, error) {
	rows, err := r.client.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query context: %w", err)
	}
	defer rows.Close()

	var results []person.Person
	for rows.Next() {
		p, err := scanPerson(rows.Scan)
		if err != nil {
			return nil, err
		}
		results = append(results, p.toDomainPerson())
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return results, nil
}

func scanPerson(scan func(dest ...any) error) (Person, error) {
	var dbPerson Person
	var roles any

	if err := scan(
		&dbPerson.Email,
		&dbPerson.Password,
		&dbPerson.FirstName,
		&dbPerson.LastName,
		&dbPerson.Country,
		&dbPerson.City,
		&dbPerson.Zip,
		&roles,
		&dbPerson.Birthdate,
	); err != nil {
		return Person{}, fmt.Errorf("scanning row: %w", err)
	}

	switch t := roles.(type) {
	case []byte:
		if err := json.Unmarshal(t, &dbPerson.Roles); err != nil {
			return Person{}, fmt.Errorf("unmarshalling roles: %w", err)
		}
	case nil:
	default:
		return Person{}, fmt.Errorf("roles scanning: %T", roles)
	}
	return dbPerson, nil
}
