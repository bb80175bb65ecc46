package mid

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"path/filepath"

	"github.com/orielmalik/people-directory/app/api/errs"
	"github.com/orielmalik/people-directory/foundation/web"
)

// Errors does the error handling for the routes: trusted errors go back to
// the client as they are, everything else turns into a plain 500.
func Errors(logger *slog.Logger) web.Middleware {
	m := func(h web.Handler) web.Handler {
		handler := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			err := h(ctx, w, r)
			if err == nil {
				return nil
			}

			var appErr *errs.AppError
			if !errors.As(err, &appErr) {
				appErr = &errs.AppError{
					Code:    http.StatusInternalServerError,
					Message: err.Error(),
				}
			}

			logger.Error("handling error during request",
				"message", appErr.Message,
				"sourceFile", filepath.Base(appErr.FileName),
				"functionName", filepath.Base(appErr.FuncName),
			)

			//never leak internals to the client
			if appErr.Code == http.StatusInternalServerError {
				appErr.Message = http.StatusText(http.StatusInternalServerError)
			}

			if err := web.Respond(ctx, w, appErr.Code, appErr); err != nil {
				return errs.NewAppErrorf(http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
			}

			return nil
		}
		return handler
	}
	return m
}
