package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/rajeshautomates-creator/cricket-hub-live/internal/db"
	"github.com/rajeshautomates-creator/cricket-hub-live/pkg/models"
)

type contextKey string

const userKey contextKey = "user"

// UserFrom returns the authenticated user stored on the request context.
func UserFrom(ctx context.Context) (*models.User, bool) {
	u, ok := ctx.Value(userKey).(*models.User)
	return u, ok
}

// Authenticator resolves the X-API-Key header (or Bearer token) to a
// user and rejects requests below the required role. Scoring endpoints
// require admin; reads require viewer.
type Authenticator struct {
	users db.UserStore
}

// NewAuthenticator creates an authenticator over the user store.
func NewAuthenticator(users db.UserStore) *Authenticator {
	return &Authenticator{users: users}
}

// Require returns middleware enforcing the given minimum role.
func (a *Authenticator) Require(role models.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := apiKey(r)
			if key == "" {
				http.Error(w, `{"error":"missing api key"}`, http.StatusUnauthorized)
				return
			}

			user, err := a.users.GetUserByAPIKey(r.Context(), key)
			if errors.Is(err, db.ErrNotFound) {
				http.Error(w, `{"error":"invalid api key"}`, http.StatusUnauthorized)
				return
			}
			if err != nil {
				http.Error(w, `{"error":"auth lookup failed"}`, http.StatusInternalServerError)
				return
			}

			if !user.Role.AtLeast(role) {
				http.Error(w, `{"error":"insufficient role"}`, http.StatusForbidden)
				return
			}

			ctx := context.WithValue(r.Context(), userKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func apiKey(r *http.Request) string {
	if key := r.Header.Get("X-API-Key"); key != "" {
		return key
	}
	auth := r.Header.Get("Authorization")
	if strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	return ""
}
