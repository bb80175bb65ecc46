// Package people provides the http handlers over the person directory.
package people

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/orielmalik/people-directory/app/api/auth"
	"github.com/orielmalik/people-directory/app/api/errs"
	"github.com/orielmalik/people-directory/business/domain/person"
	"github.com/orielmalik/people-directory/foundation/web"
)

// Handler represents the set of http handlers for person records.
type Handler struct {
	Validator *errs.AppValidator
	People    *person.Service
	Auth      *auth.Auth
	ActiveKID string
	TokenAge  time.Duration
	Issuer    string
}

// Create registers a new person and answers with a token for the fresh
// identity. Duplicated emails turn into a conflict before any shape checks.
func (h *Handler) Create(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	var np NewPerson
	if err := json.NewDecoder(r.Body).Decode(&np); err != nil {
		return errs.NewAppErrorf(http.StatusBadRequest, "invalid json data: %s", err.Error())
	}

	fields, ok := h.Validator.Check(np)
	if !ok {
		return errs.NewAppValidationError(http.StatusBadRequest, "invalid data", fields)
	}

	domainNew, err := np.toDomainNewPerson()
	if err != nil {
		return errs.NewAppError(http.StatusBadRequest, err.Error())
	}

	p, err := h.People.Create(ctx, domainNew)
	if err != nil {
		switch {
		case errors.Is(err, person.ErrEmailTaken):
			return errs.NewAppError(http.StatusConflict, err.Error())
		case errors.Is(err, person.ErrInvalidEmail), errors.Is(err, person.ErrInvalidCountry):
			return errs.NewAppError(http.StatusBadRequest, err.Error())
		}
		return errs.NewAppInternalErr(err)
	}

	tkn, err := h.token(p)
	if err != nil {
		return errs.NewAppInternalErr(err)
	}

	return web.Respond(ctx, w, http.StatusCreated, Token{Token: tkn})
}

// Login authenticates by email and password and answers with a token.
func (h *Handler) Login(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	var creds Credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		return errs.NewAppErrorf(http.StatusBadRequest, "invalid json data: %s", err.Error())
	}

	fields, ok := h.Validator.Check(creds)
	if !ok {
		return errs.NewAppValidationError(http.StatusBadRequest, "invalid data", fields)
	}

	p, err := h.People.Authenticate(ctx, creds.Email, creds.Password)
	if err != nil {
		switch {
		case errors.Is(err, person.ErrPersonNotFound):
			return errs.NewAppErrorf(http.StatusNotFound, "no person with email %q", creds.Email)
		case errors.Is(err, person.ErrPasswordMismatch):
			return errs.NewAppError(http.StatusUnauthorized, err.Error())
		}
		return errs.NewAppInternalErr(err)
	}

	tkn, err := h.token(p)
	if err != nil {
		return errs.NewAppInternalErr(err)
	}

	return web.Respond(ctx, w, http.StatusOK, Token{Token: tkn})
}

// GetByEmail is the password-authenticated point lookup. The password rides
// in the query string, matching the original wire contract.
func (h *Handler) GetByEmail(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	email := r.PathValue("email")
	password := r.URL.Query().Get("password")

	p, err := h.People.Authenticate(ctx, email, password)
	if err != nil {
		switch {
		case errors.Is(err, person.ErrPersonNotFound):
			return errs.NewAppErrorf(http.StatusNotFound, "no person with email %q", email)
		case errors.Is(err, person.ErrPasswordMismatch):
			return errs.NewAppError(http.StatusUnauthorized, err.Error())
		}
		return errs.NewAppInternalErr(err)
	}

	return web.Respond(ctx, w, http.StatusOK, fromDomainPerson(p))
}

// Search runs the listing selected by the criteria/value pair. No criteria
// means the full enumeration. Every returned view is password masked.
func (h *Handler) Search(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	q := person.Query{
		Criteria: person.ParseCriteria(r.URL.Query().Get("criteria")),
		Value:    r.URL.Query().Get("value"),
	}

	pp, err := h.People.Search(ctx, time.Now(), q)
	if err != nil {
		switch {
		case errors.Is(err, person.ErrInvalidAge),
			errors.Is(err, person.ErrAgeLimit),
			errors.Is(err, person.ErrInvalidEmail):
			return errs.NewAppError(http.StatusBadRequest, err.Error())
		}
		return errs.NewAppInternalErr(err)
	}

	return web.Respond(ctx, w, http.StatusOK, fromDomainPeople(pp))
}

// Update replaces the mutable fields of the record behind email after the
// password check. A missing record answers unauthorized too, it never leaks
// which emails exist.
func (h *Handler) Update(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	email := r.URL.Query().Get("email")
	password := r.URL.Query().Get("password")
	if email == "" || password == "" {
		return errs.NewAppError(http.StatusBadRequest, "email and password parameters are required")
	}

	var up UpdatePerson
	if err := json.NewDecoder(r.Body).Decode(&up); err != nil {
		return errs.NewAppErrorf(http.StatusBadRequest, "invalid json data: %s", err.Error())
	}

	fields, ok := h.Validator.Check(up)
	if !ok {
		return errs.NewAppValidationError(http.StatusBadRequest, "invalid data", fields)
	}

	domainUpdate, err := up.toDomainUpdatePerson()
	if err != nil {
		return errs.NewAppError(http.StatusBadRequest, err.Error())
	}

	if err := h.People.Update(ctx, email, password, domainUpdate); err != nil {
		if errors.Is(err, person.ErrPasswordMismatch) {
			return errs.NewAppError(http.StatusUnauthorized, err.Error())
		}
		return errs.NewAppInternalErr(err)
	}

	return web.Respond(ctx, w, http.StatusNoContent, nil)
}

// DeleteAll empties the whole directory.
func (h *Handler) DeleteAll(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	if err := h.People.DeleteAll(ctx); err != nil {
		return errs.NewAppInternalErr(err)
	}

	return web.Respond(ctx, w, http.StatusNoContent, nil)
}

func (h *Handler) token(p person.Person) (string, error) {
	now := time.Now()

	claims := auth.Claims{
		Roles: p.Roles,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   p.Email,
			Issuer:    h.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(h.TokenAge)),
		},
	}

	return h.Auth.GenerateToken(h.ActiveKID, claims)
}
