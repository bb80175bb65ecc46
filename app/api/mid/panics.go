package mid

import (
	"context"
	"net/http"
	"runtime/debug"

	"github.com/orielmalik/people-directory/app/api/errs"
	"github.com/orielmalik/people-directory/foundation/web"
)

// Panics recovers a panicking handler and hands the failure to the error
// middleware as an internal error.
func Panics() web.Middleware {
	m := func(h web.Handler) web.Handler {
		handler := func(ctx context.Context, w http.ResponseWriter, r *http.Request) (err error) {
			defer func() {
				if r := recover(); r != nil {
					stackTrace := debug.Stack()
					err = errs.NewAppErrorf(http.StatusInternalServerError, "PANIC[%v] STACK[%s]", r, string(stackTrace))
				}
			}()

			return h(ctx, w, r)
		}

		return handler
	}
	return m
}
