package httpapi

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/dmitrijs2005/stockkeeper/internal/server/auth"
)

const (
	msgNotAuthenticated = "Not authenticated"
	msgInvalidToken     = "Invalid or expired token"
)

// RequireAuth verifies the presented credential before any handler code
// runs and stores the resulting session on the request context.
//
// Invalid credentials and credentials without a usable identity get the same
// response body. Only the log level tells them apart.
func (a *API) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s, err := a.transport.Authenticate(a.verifier, r)
		if err != nil {
			ctx := r.Context()
			switch {
			case errors.Is(err, auth.ErrUnauthenticated):
				writeError(w, http.StatusUnauthorized, msgNotAuthenticated)
			case errors.Is(err, auth.ErrMalformedIdentity):
				a.log.Warn(ctx, "token verified but carries no identity", "path", r.URL.Path, "remote", r.RemoteAddr)
				writeError(w, http.StatusUnauthorized, msgInvalidToken)
			default:
				a.log.Info(ctx, "rejected token", "path", r.URL.Path, "error", err)
				writeError(w, http.StatusUnauthorized, msgInvalidToken)
			}
			return
		}

		next.ServeHTTP(w, r.WithContext(auth.WithSession(r.Context(), s)))
	})
}

func (a *API) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		a.log.Debug(r.Context(), "http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

// userID returns the caller's id as placed by RequireAuth.
func userID(r *http.Request) string {
	id, _ := auth.UserIDFromContext(r.Context())
	return id
}
