package resp

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/go-chi/chi/v5/middleware"

	"apitutor/internal/pkg/errs"
	"apitutor/internal/pkg/logx"
)

// Recoverer converts a panic in a downstream handler into the 500 envelope.
// The panic value and stack are logged, never sent to the client.
func Recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}

			logx.Error(
				fmt.Errorf("panic: %v", rec),
				"Recovered from handler panic",
				"request_id", middleware.GetReqID(r.Context()),
				"stack", string(debug.Stack()),
			)

			RespondError(w, r, errs.NewError(errs.ErrUnknown))
		}()

		next.ServeHTTP(w, r)
	})
}
