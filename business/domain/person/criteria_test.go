package person_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/orielmalik/people-directory/business/domain/person"
)

func TestParseCriteria(t *testing.T) {
	tests := map[string]struct {
		input    string
		expected person.Criteria
	}{
		"country":              {input: "country", expected: person.CriteriaCountry},
		"last":                 {input: "last", expected: person.CriteriaLastName},
		"maximumAge":           {input: "maximumAge", expected: person.CriteriaMaximumAge},
		"minimumAge":           {input: "minimumAge", expected: person.CriteriaMinimumAge},
		"email":                {input: "email", expected: person.CriteriaEmail},
		"unknown keyword":      {input: "firstName", expected: person.CriteriaAll},
		"case sensitive":       {input: "Country", expected: person.CriteriaAll},
		"empty":                {input: "", expected: person.CriteriaAll},
		"surrounding spaces":   {input: "  email  ", expected: person.CriteriaEmail},
		"no substring matches": {input: "maximumAges", expected: person.CriteriaAll},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			got := person.ParseCriteria(test.input)
			if got != test.expected {
				t.Errorf("expected %q to parse as %q, but got %q", test.input, test.expected, got)
			}
		})
	}
}

func TestSearch(t *testing.T) {
	now := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)

	seed := []person.Person{
		{
			Email:     "john@gmail.com",
			Password:  "test1234",
			Name:      person.Name{First: "John", Last: "Doe"},
			Address:   person.Address{Country: "US", City: "NYC"},
			Birthdate: birthdate(1990, 5, 12),
		},
		{
			Email:     "erika@gmail.com",
			Password:  "test1234",
			Name:      person.Name{First: "Erika", Last: "Mustermann"},
			Address:   person.Address{Country: "De", City: "Berlin"},
			Birthdate: birthdate(2000, 1, 1),
		},
	}

	service, _ := newTestService(t, seed...)

	tests := map[string]struct {
		query       person.Query
		expected    int
		expectedErr error
	}{
		"by country": {
			query:    person.Query{Criteria: person.CriteriaCountry, Value: "De"},
			expected: 1,
		},
		"by last name": {
			query:    person.Query{Criteria: person.CriteriaLastName, Value: "Doe"},
			expected: 1,
		},
		"by email": {
			query:    person.Query{Criteria: person.CriteriaEmail, Value: "john@gmail.com"},
			expected: 1,
		},
		"by maximum age": {
			query:    person.Query{Criteria: person.CriteriaMaximumAge, Value: "30"},
			expected: 1,
		},
		"by minimum age": {
			query:    person.Query{Criteria: person.CriteriaMinimumAge, Value: "30"},
			expected: 1,
		},
		"all": {
			query:    person.Query{Criteria: person.CriteriaAll},
			expected: 2,
		},
		"bad age value": {
			query:       person.Query{Criteria: person.CriteriaMaximumAge, Value: "abc"},
			expectedErr: person.ErrInvalidAge,
		},
		"minimum age over the limit": {
			query:       person.Query{Criteria: person.CriteriaMinimumAge, Value: "150"},
			expectedErr: person.ErrAgeLimit,
		},
		"malformed email value": {
			query:       person.Query{Criteria: person.CriteriaEmail, Value: "not-an-email"},
			expectedErr: person.ErrInvalidEmail,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			pp, err := service.Search(context.Background(), now, test.query)

			if test.expectedErr != nil {
				if !errors.Is(err, test.expectedErr) {
					t.Fatalf("expected error %q, but got %v", test.expectedErr, err)
				}
				return
			}

			if err != nil {
				t.Fatalf("expected the search to pass: %s", err)
			}
			if len(pp) != test.expected {
				t.Errorf("expected %d results, but got %d", test.expected, len(pp))
			}
		})
	}
}

func TestSearchMatchesDirectListing(t *testing.T) {
	seed := person.Person{
		Email:     "john@gmail.com",
		Password:  "test1234",
		Address:   person.Address{Country: "US"},
		Birthdate: birthdate(1990, 5, 12),
	}

	service, _ := newTestService(t, seed)

	direct, err := service.GetByEmail(context.Background(), seed.Email)
	if err != nil {
		t.Fatalf("expected the direct listing to pass: %s", err)
	}

	q := person.Query{Criteria: person.CriteriaEmail, Value: seed.Email}
	dispatched, err := service.Search(context.Background(), time.Now(), q)
	if err != nil {
		t.Fatalf("expected the dispatched search to pass: %s", err)
	}

	if len(direct) != len(dispatched) {
		t.Fatalf("expected the dispatched search to match the direct listing, got %d and %d", len(dispatched), len(direct))
	}
	if direct[0].Email != dispatched[0].Email {
		t.Errorf("expected email %q, but got %q", direct[0].Email, dispatched[0].Email)
	}
}
