// Package web is the small framework the handlers are built on: handlers
// that return errors, middleware chaining, and per request metadata.
package web

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"syscall"
	"time"

	"github.com/google/uuid"
)

// Handler represents the handler signature used across the app.
type Handler func(context.Context, http.ResponseWriter, *http.Request) error

// App wraps the standard mux, applies the middleware chain and owns the
// shutdown channel so an unrecoverable handler error can stop the service.
type App struct {
	mux      *http.ServeMux
	shutdown chan<- os.Signal
	mids     []Middleware
}

// NewApp creates an App with the given app level middlewares. They run around
// every registered handler, outermost first.
func NewApp(shutdown chan<- os.Signal, mids ...Middleware) *App {
	return &App{
		mux:      http.NewServeMux(),
		shutdown: shutdown,
		mids:     mids,
	}
}

// HandleFunc registers the handler for method and path under the version
// prefix. Route level middlewares wrap the handler first, then the app level
// ones around those.
func (a *App) HandleFunc(method string, version string, path string, handler Handler, mids ...Middleware) {
	handler = applyMiddlewares(handler, mids...)
	handler = applyMiddlewares(handler, a.mids...)

	h := func(w http.ResponseWriter, r *http.Request) {
		rm := requestMetadata{
			StartedAt: time.Now(),
			RequestId: uuid.New(),
		}
		ctx := injectRequestMetadata(r.Context(), &rm)

		if err := handler(ctx, w, r); err != nil {
			//an error that made it past the error middleware is not
			//recoverable, bring the service down gracefully
			a.SignalShutdown()
		}
	}

	finalPath := path
	if version != "" {
		finalPath = "/" + version + path
	}
	finalPath = fmt.Sprintf("%s %s", method, finalPath)

	a.mux.HandleFunc(finalPath, h)
}

// SignalShutdown sends a SIGTERM on the shutdown channel.
func (a *App) SignalShutdown() {
	a.shutdown <- syscall.SIGTERM
}

func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.mux.ServeHTTP(w, r)
}
