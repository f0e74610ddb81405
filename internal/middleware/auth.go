package middleware

import (
	"context"
	"log/slog"
	"net/http"

	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/ayush/student-rating/internal/auth"
	"github.com/ayush/student-rating/internal/lib/sl"
	"github.com/ayush/student-rating/internal/models"
	"github.com/ayush/student-rating/internal/response"
)

// SessionReader resolves a session id to its principal.
type SessionReader interface {
	Get(ctx context.Context, sessionID string) (*models.Principal, error)
}

// LoadPrincipal attaches the principal of a valid session cookie to the
// request context. Requests without one continue anonymously.
func LoadPrincipal(sessions SessionReader, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(auth.SessionCookie)
			if err != nil || cookie.Value == "" {
				next.ServeHTTP(w, r)
				return
			}

			p, err := sessions.Get(r.Context(), cookie.Value)
			if err != nil {
				log.Error("session lookup failed",
					slog.String("request_id", chimw.GetReqID(r.Context())),
					sl.Err(err),
				)
				next.ServeHTTP(w, r)
				return
			}
			if p == nil {
				next.ServeHTTP(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.WithPrincipal(r.Context(), p)))
		})
	}
}

// RequireAuth redirects anonymous requests to loginPath.
func RequireAuth(loginPath string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if auth.PrincipalFrom(r.Context()) == nil {
				http.Redirect(w, r, loginPath, http.StatusSeeOther)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAdmin answers 403 unless the request carries an admin principal.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !auth.PrincipalFrom(r.Context()).IsAdmin() {
			response.JSON(w, r, http.StatusForbidden, response.Error(models.ErrForbidden.Error()))
			return
		}
		next.ServeHTTP(w, r)
	})
}
