package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
)

// SessionValidator defines the interface for resolving a session token to an
// authenticated principal.
type SessionValidator interface {
	Validate(ctx context.Context, token string) (Principal, error)
}

// Principal is the authenticated identity attached to a request context.
type Principal struct {
	ID      string
	Email   string
	IsAdmin bool
}

type contextKeyPrincipal struct{}

// ContextKeyPrincipal is exported for use in handlers
var ContextKeyPrincipal = contextKeyPrincipal{}

// GetPrincipal retrieves the authenticated principal from the context.
func GetPrincipal(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(ContextKeyPrincipal).(Principal)
	return p, ok
}

// TokenExtractor pulls a session token out of a request, or returns "" when
// none is present.
type TokenExtractor func(r *http.Request) string

// BearerToken extracts a token from the Authorization header. The scheme
// prefix is matched case-sensitively.
func BearerToken(r *http.Request) string {
	const bearerPrefix = "Bearer "
	if after, ok := strings.CutPrefix(r.Header.Get("Authorization"), bearerPrefix); ok {
		return after
	}
	return ""
}

// RequireAuth rejects requests that don't carry a valid session token and
// stores the resolved principal in the request context for handlers.
func RequireAuth(validator SessionValidator, extract TokenExtractor, logger *slog.Logger) func(http.Handler) http.Handler {
	if extract == nil {
		extract = BearerToken
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			token := extract(r)
			if token == "" {
				logger.WarnContext(ctx, "unauthorized access - missing token",
					"request_id", GetRequestID(ctx),
				)
				writeUnauthorized(w, "Missing session token")
				return
			}

			principal, err := validator.Validate(ctx, token)
			if err != nil {
				logger.WarnContext(ctx, "unauthorized access - invalid token",
					"error", err,
					"request_id", GetRequestID(ctx),
				)
				writeUnauthorized(w, "Invalid or expired token")
				return
			}

			ctx = context.WithValue(ctx, ContextKeyPrincipal, principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin rejects authenticated requests whose principal is not an
// admin. It must run after RequireAuth.
func RequireAdmin(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			principal, ok := GetPrincipal(ctx)
			if !ok {
				writeUnauthorized(w, "Missing session token")
				return
			}
			if !principal.IsAdmin {
				logger.WarnContext(ctx, "forbidden access - admin required",
					"user_id", principal.ID,
					"request_id", GetRequestID(ctx),
				)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusForbidden)
				_, _ = w.Write([]byte(`{"error":"forbidden","error_description":"Admin privileges required"}`))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func writeUnauthorized(w http.ResponseWriter, description string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"unauthorized","error_description":"` + description + `"}`))
}
