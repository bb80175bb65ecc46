// Package handlers wires the services together and registers the routes.
package handlers

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/orielmalik/people-directory/app/api/auth"
	"github.com/orielmalik/people-directory/app/api/errs"
	"github.com/orielmalik/people-directory/app/api/handlers/people"
	"github.com/orielmalik/people-directory/app/api/mid"
	"github.com/orielmalik/people-directory/business/broker/rabbitmq"
	"github.com/orielmalik/people-directory/business/database/postgres"
	"github.com/orielmalik/people-directory/business/domain/person"
	"github.com/orielmalik/people-directory/business/domain/person/store/cached"
	personPostgresRepo "github.com/orielmalik/people-directory/business/domain/person/store/postgres"
	"github.com/orielmalik/people-directory/foundation/web"
)

// Config carries everything route registration needs.
type Config struct {
	Shutdown       chan os.Signal
	Logger         *slog.Logger
	Validator      *errs.AppValidator
	PostgresClient *postgres.Client
	RedisClient    *redis.Client
	Broker         *rabbitmq.Client
	Keystore       auth.Keystore
	ActiveKID      string
	TokenAge       time.Duration
	Issuer         string
	CacheTTL       time.Duration
}

// RegisterRoutes builds the repository chain, the person service and the
// handlers, then registers every route on the app.
func RegisterRoutes(conf Config) (*web.App, error) {
	const version = "v1"

	app := web.NewApp(conf.Shutdown,
		mid.Logger(conf.Logger),
		mid.Errors(conf.Logger),
		mid.Panics(),
	)

	personRepo := cached.NewRepository(
		personPostgresRepo.NewRepository(conf.PostgresClient),
		conf.RedisClient,
		conf.CacheTTL,
	)

	personService, err := person.NewService(personRepo, conf.Broker)
	if err != nil {
		return nil, fmt.Errorf("new person service: %w", err)
	}

	a := auth.New(conf.Keystore)

	peopleHandler := people.Handler{
		Validator: conf.Validator,
		People:    personService,
		Auth:      a,
		ActiveKID: conf.ActiveKID,
		TokenAge:  conf.TokenAge,
		Issuer:    conf.Issuer,
	}

	//==========================================================================
	//people
	app.HandleFunc(http.MethodPost, version, "/people", peopleHandler.Create)
	app.HandleFunc(http.MethodPost, version, "/people/login", peopleHandler.Login)
	app.HandleFunc(http.MethodGet, version, "/people/{email}", peopleHandler.GetByEmail)
	app.HandleFunc(http.MethodGet, version, "/people", peopleHandler.Search)
	app.HandleFunc(http.MethodPut, version, "/people", peopleHandler.Update)
	app.HandleFunc(http.MethodDelete, version, "/people", peopleHandler.DeleteAll, mid.Authenticate(a))

	return app, nil
}
