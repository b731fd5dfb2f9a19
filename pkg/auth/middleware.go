package auth

import (
	"net/http"
	"strings"

	"go.uber.org/zap"

	apperrors "stylesync-backend/internal/errors"
	"stylesync-backend/pkg/api"
)

// Authenticate attaches the user named by a bearer token to the request.
// Requests without a token continue anonymously; a bad token is rejected so
// a shopper with a stale session learns to sign in again.
func Authenticate(verifier Verifier, logger *zap.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" || verifier == nil {
				next.ServeHTTP(w, r)
				return
			}
			if !strings.HasPrefix(header, "Bearer ") {
				api.FromError(w, apperrors.Unauthorized("malformed authorization header").Build())
				return
			}

			user, err := verifier.Verify(r.Context(), header)
			if err != nil {
				logger.Debug("Rejected access token", zap.Error(err))
				api.FromError(w, apperrors.Unauthorized("invalid or expired token").WithCause(err).Build())
				return
			}
			next.ServeHTTP(w, r.WithContext(SetUserInContext(r.Context(), user)))
		})
	}
}

// RequireUser rejects anonymous requests.
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := UserFromContext(r.Context()); !ok {
			api.FromError(w, apperrors.Unauthorized("authentication required").Build())
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAdmin rejects requests from users without the admin flag.
func RequireAdmin(next http.Handler) http.Handler {
	return RequireUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if user, _ := UserFromContext(r.Context()); !user.Admin {
			api.FromError(w, apperrors.Forbidden("admin access required").Build())
			return
		}
		next.ServeHTTP(w, r)
	}))
}
