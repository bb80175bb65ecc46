package people_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/orielmalik/people-directory/app/api/auth"
	"github.com/orielmalik/people-directory/app/api/errs"
	"github.com/orielmalik/people-directory/app/api/handlers/people"
	"github.com/orielmalik/people-directory/business/domain/person"
	"github.com/orielmalik/people-directory/business/domain/person/store/memory"
)

type nopBroker struct{}

func (nopBroker) DeclareQueue(name string) error      { return nil }
func (nopBroker) Publish(queue string, msg []byte) error { return nil }

func newTestHandler(t *testing.T, seed ...person.Person) (*people.Handler, *memory.Repository) {
	t.Helper()

	v, err := errs.NewAppValidator()
	if err != nil {
		t.Fatalf("expected to create the app validator: %s", err)
	}

	repo := &memory.Repository{People: make(map[string]person.Person)}
	for _, p := range seed {
		repo.People[p.Email] = p
	}

	service, err := person.NewService(repo, nopBroker{})
	if err != nil {
		t.Fatalf("expected to create the person service: %s", err)
	}

	h := people.Handler{
		Validator: v,
		People:    service,
		Auth:      auth.New(auth.NewMockKeyStore(t)),
		ActiveKID: "testKID",
		TokenAge:  time.Hour,
		Issuer:    "people-directory",
	}
	return &h, repo
}

func seedJohn() person.Person {
	return person.Person{
		Email:    "john@gmail.com",
		Password: "test1234",
		Name:     person.Name{First: "John", Last: "Doe"},
		Address:  person.Address{Country: "US", City: "NYC", Zip: "10001"},
		Roles:    []string{"user"},
		Birthdate: time.Date(1990, time.May, 12, 0, 0, 0, 0, time.UTC),
	}
}

func TestCreate(t *testing.T) {
	tests := map[string]struct {
		input         people.NewPerson
		expectError   bool
		statusCode    int
		invalidFields []string
	}{
		"success": {
			input: people.NewPerson{
				Email:     "erika@gmail.com",
				Password:  "test1234",
				Name:      people.Name{First: "Erika", Last: "Mustermann"},
				Address:   people.Address{Country: "DE", City: "Berlin", Zip: "10115"},
				Roles:     []string{"user"},
				Birthdate: "2000-01-01",
			},
			statusCode: http.StatusCreated,
		},
		"duplicated email": {
			input: people.NewPerson{
				Email:     "john@gmail.com",
				Password:  "test1234",
				Address:   people.Address{Country: "US"},
				Birthdate: "1990-05-12",
			},
			expectError: true,
			statusCode:  http.StatusConflict,
		},
		"duplicated email beats a bad country": {
			input: people.NewPerson{
				Email:     "john@gmail.com",
				Password:  "test1234",
				Address:   people.Address{Country: "usa"},
				Birthdate: "1990-05-12",
			},
			expectError: true,
			statusCode:  http.StatusConflict,
		},
		"malformed email": {
			input: people.NewPerson{
				Email:     "not-an-email",
				Password:  "test1234",
				Address:   people.Address{Country: "US"},
				Birthdate: "1990-05-12",
			},
			expectError: true,
			statusCode:  http.StatusBadRequest,
		},
		"invalid country": {
			input: people.NewPerson{
				Email:     "erika@gmail.com",
				Password:  "test1234",
				Address:   people.Address{Country: "germany"},
				Birthdate: "2000-01-01",
			},
			expectError: true,
			statusCode:  http.StatusBadRequest,
		},
		"missing required fields": {
			input:         people.NewPerson{},
			expectError:   true,
			statusCode:    http.StatusBadRequest,
			invalidFields: []string{"email", "password", "birthdate"},
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			h, _ := newTestHandler(t, seedJohn())

			var buff bytes.Buffer
			if err := json.NewEncoder(&buff).Encode(test.input); err != nil {
				t.Fatalf("expected the input to be encoded in json: %s", err)
			}

			r := httptest.NewRequest(http.MethodPost, "/v1/people", &buff)
			w := httptest.NewRecorder()

			err := h.Create(context.Background(), w, r)

			if !test.expectError {
				if err != nil {
					t.Fatalf("expected the person to be created: %s", err)
				}

				if w.Result().StatusCode != test.statusCode {
					t.Errorf("w.Status= %d, got %d", test.statusCode, w.Result().StatusCode)
				}

				var resp people.Token
				if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
					t.Fatalf("expected the response to carry a token: %s", err)
				}
				if resp.Token == "" {
					t.Error("expected a non empty token for the fresh identity")
				}
				return
			}

			var appErr *errs.AppError
			if !errors.As(err, &appErr) {
				t.Fatalf("expected the failure error to be an *AppError, got %T", err)
			}
			if appErr.Code != test.statusCode {
				t.Errorf("appErr.Code= %d, got %d", test.statusCode, appErr.Code)
			}

			for name := range appErr.Fields {
				var found bool
				for _, want := range test.invalidFields {
					if name == want {
						found = true
					}
				}
				if !found {
					t.Errorf("did not expect %q to be reported invalid", name)
				}
			}
		})
	}
}

func TestLogin(t *testing.T) {
	tests := map[string]struct {
		input       people.Credentials
		expectError bool
		statusCode  int
	}{
		"success": {
			input:      people.Credentials{Email: "john@gmail.com", Password: "test1234"},
			statusCode: http.StatusOK,
		},
		"unknown email": {
			input:       people.Credentials{Email: "ghost@gmail.com", Password: "test1234"},
			expectError: true,
			statusCode:  http.StatusNotFound,
		},
		"wrong password": {
			input:       people.Credentials{Email: "john@gmail.com", Password: "nope"},
			expectError: true,
			statusCode:  http.StatusUnauthorized,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			h, _ := newTestHandler(t, seedJohn())

			var buff bytes.Buffer
			if err := json.NewEncoder(&buff).Encode(test.input); err != nil {
				t.Fatalf("expected the input to be encoded in json: %s", err)
			}

			r := httptest.NewRequest(http.MethodPost, "/v1/people/login", &buff)
			w := httptest.NewRecorder()

			err := h.Login(context.Background(), w, r)

			if !test.expectError {
				if err != nil {
					t.Fatalf("expected the login to pass: %s", err)
				}

				var resp people.Token
				if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
					t.Fatalf("expected the response to carry a token: %s", err)
				}
				if resp.Token == "" {
					t.Error("expected a non empty token")
				}
				return
			}

			var appErr *errs.AppError
			if !errors.As(err, &appErr) {
				t.Fatalf("expected the failure error to be an *AppError, got %T", err)
			}
			if appErr.Code != test.statusCode {
				t.Errorf("appErr.Code= %d, got %d", test.statusCode, appErr.Code)
			}
		})
	}
}

func TestGetByEmail(t *testing.T) {
	tests := map[string]struct {
		email       string
		password    string
		expectError bool
		statusCode  int
	}{
		"success": {
			email:    "john@gmail.com",
			password: "test1234",
		},
		"unknown email": {
			email:       "ghost@gmail.com",
			password:    "test1234",
			expectError: true,
			statusCode:  http.StatusNotFound,
		},
		"wrong password": {
			email:       "john@gmail.com",
			password:    "nope",
			expectError: true,
			statusCode:  http.StatusUnauthorized,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			h, _ := newTestHandler(t, seedJohn())

			r := httptest.NewRequest(http.MethodGet, "/v1/people/"+test.email+"?password="+test.password, nil)
			r.SetPathValue("email", test.email)
			w := httptest.NewRecorder()

			err := h.GetByEmail(context.Background(), w, r)

			if !test.expectError {
				if err != nil {
					t.Fatalf("expected to fetch the person: %s", err)
				}

				var resp people.Person
				if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
					t.Fatalf("expected to decode the person from the response body: %s", err)
				}

				if resp.Email != test.email {
					t.Errorf("resp.Email= %s, got %s", test.email, resp.Email)
				}
				if resp.Password != "*" {
					t.Errorf("expected the password to be masked, got %q", resp.Password)
				}
				if resp.Birthdate != "1990-05-12" {
					t.Errorf("resp.Birthdate= %s, got %s", "1990-05-12", resp.Birthdate)
				}
				return
			}

			var appErr *errs.AppError
			if !errors.As(err, &appErr) {
				t.Fatalf("expected the failure error to be an *AppError, got %T", err)
			}
			if appErr.Code != test.statusCode {
				t.Errorf("appErr.Code= %d, got %d", test.statusCode, appErr.Code)
			}
		})
	}
}

func TestSearch(t *testing.T) {
	erika := person.Person{
		Email:     "erika@gmail.com",
		Password:  "secret",
		Name:      person.Name{First: "Erika", Last: "Mustermann"},
		Address:   person.Address{Country: "DE", City: "Berlin"},
		Birthdate: time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC),
	}

	tests := map[string]struct {
		query       string
		expected    int
		expectError bool
		statusCode  int
	}{
		"no criteria lists everyone": {
			query:    "",
			expected: 2,
		},
		"unknown criteria lists everyone": {
			query:    "criteria=firstName&value=John",
			expected: 2,
		},
		"by country": {
			query:    "criteria=country&value=DE",
			expected: 1,
		},
		"by last name": {
			query:    "criteria=last&value=Doe",
			expected: 1,
		},
		"by email": {
			query:    "criteria=email&value=john@gmail.com",
			expected: 1,
		},
		"bad age": {
			query:       "criteria=maximumAge&value=abc",
			expectError: true,
			statusCode:  http.StatusBadRequest,
		},
		"minimum age over the limit": {
			query:       "criteria=minimumAge&value=150",
			expectError: true,
			statusCode:  http.StatusBadRequest,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			h, _ := newTestHandler(t, seedJohn(), erika)

			r := httptest.NewRequest(http.MethodGet, "/v1/people?"+test.query, nil)
			w := httptest.NewRecorder()

			err := h.Search(context.Background(), w, r)

			if !test.expectError {
				if err != nil {
					t.Fatalf("expected the search to pass: %s", err)
				}

				var resp []people.Person
				if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
					t.Fatalf("expected to decode the people from the response body: %s", err)
				}

				if len(resp) != test.expected {
					t.Fatalf("expected %d results, got %d", test.expected, len(resp))
				}
				for _, p := range resp {
					if p.Password != "*" {
						t.Errorf("expected every password to be masked, got %q for %s", p.Password, p.Email)
					}
				}
				return
			}

			var appErr *errs.AppError
			if !errors.As(err, &appErr) {
				t.Fatalf("expected the failure error to be an *AppError, got %T", err)
			}
			if appErr.Code != test.statusCode {
				t.Errorf("appErr.Code= %d, got %d", test.statusCode, appErr.Code)
			}
		})
	}
}

func TestUpdate(t *testing.T) {
	tests := map[string]struct {
		query       string
		input       people.UpdatePerson
		expectError bool
		statusCode  int
	}{
		"success": {
			query: "email=john@gmail.com&password=test1234",
			input: people.UpdatePerson{
				Name:      people.Name{First: "John", Last: "Doe"},
				Address:   people.Address{Country: "DE", City: "Berlin", Zip: "10115"},
				Roles:     []string{"user"},
				Birthdate: "1990-05-12",
			},
			statusCode: http.StatusNoContent,
		},
		"invalid country still succeeds": {
			query: "email=john@gmail.com&password=test1234",
			input: people.UpdatePerson{
				Address:   people.Address{Country: "germany", City: "Boston"},
				Birthdate: "1990-05-12",
			},
			statusCode: http.StatusNoContent,
		},
		"wrong password": {
			query: "email=john@gmail.com&password=nope",
			input: people.UpdatePerson{
				Birthdate: "1990-05-12",
			},
			expectError: true,
			statusCode:  http.StatusUnauthorized,
		},
		"missing parameters": {
			query:       "",
			input:       people.UpdatePerson{Birthdate: "1990-05-12"},
			expectError: true,
			statusCode:  http.StatusBadRequest,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			h, repo := newTestHandler(t, seedJohn())

			var buff bytes.Buffer
			if err := json.NewEncoder(&buff).Encode(test.input); err != nil {
				t.Fatalf("expected the input to be encoded in json: %s", err)
			}

			r := httptest.NewRequest(http.MethodPut, "/v1/people?"+test.query, &buff)
			w := httptest.NewRecorder()

			err := h.Update(context.Background(), w, r)

			if !test.expectError {
				if err != nil {
					t.Fatalf("expected the update to pass: %s", err)
				}
				if w.Result().StatusCode != test.statusCode {
					t.Errorf("w.Status= %d, got %d", test.statusCode, w.Result().StatusCode)
				}

				stored := repo.People["john@gmail.com"]
				if stored.Address.City != test.input.Address.City {
					t.Errorf("expected the city to be %q, got %q", test.input.Address.City, stored.Address.City)
				}
				if stored.Password != "test1234" {
					t.Errorf("expected the stored password to survive the update, got %q", stored.Password)
				}
				return
			}

			var appErr *errs.AppError
			if !errors.As(err, &appErr) {
				t.Fatalf("expected the failure error to be an *AppError, got %T", err)
			}
			if appErr.Code != test.statusCode {
				t.Errorf("appErr.Code= %d, got %d", test.statusCode, appErr.Code)
			}
		})
	}
}

func TestUpdateIgnoresEmailField(t *testing.T) {
	h, repo := newTestHandler(t, seedJohn())

	up := people.UpdatePerson{
		Email:     "other@gmail.com",
		Address:   people.Address{Country: "US", City: "NYC"},
		Birthdate: "1990-05-12",
	}

	var buff bytes.Buffer
	if err := json.NewEncoder(&buff).Encode(up); err != nil {
		t.Fatalf("expected the input to be encoded in json: %s", err)
	}

	r := httptest.NewRequest(http.MethodPut, "/v1/people?email=john@gmail.com&password=test1234", &buff)
	w := httptest.NewRecorder()

	if err := h.Update(context.Background(), w, r); err != nil {
		t.Fatalf("expected the update to pass: %s", err)
	}

	if _, ok := repo.People["other@gmail.com"]; ok {
		t.Error("expected the email field in the payload to be ignored")
	}
	if _, ok := repo.People["john@gmail.com"]; !ok {
		t.Error("expected the record to stay under its original email")
	}
}

func TestDeleteAll(t *testing.T) {
	h, repo := newTestHandler(t, seedJohn())

	r := httptest.NewRequest(http.MethodDelete, "/v1/people", nil)
	w := httptest.NewRecorder()

	if err := h.DeleteAll(context.Background(), w, r); err != nil {
		t.Fatalf("expected delete all to pass: %s", err)
	}

	if w.Result().StatusCode != http.StatusNoContent {
		t.Errorf("w.Status= %d, got %d", http.StatusNoContent, w.Result().StatusCode)
	}
	if len(repo.People) != 0 {
		t.Errorf("expected an empty directory, got %d records", len(repo.People))
	}
}
