package auth

import (
	"context"
	"net/http"

	"tally/internal/log"
)

type contextKey string

const ownerContextKey contextKey = "owner_id"

// Middleware resolves the request's owner and stores it in the
// context. Requests the verifier rejects never reach the handlers.
func Middleware(verifier Verifier, logger *log.Logger) func(http.Handler) http.Handler {
	authLogger := logger.WithComponent(log.ComponentAuth)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ownerID, err := verifier.VerifyOwner(r.Context(), r)
			if err != nil {
				authLogger.WarnContext(r.Context(), "rejected request",
					log.FieldPath, r.URL.Path,
					log.FieldError, err)
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			ctx := context.WithValue(r.Context(), ownerContextKey, ownerID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OwnerFromContext returns the authenticated owner id, or "" when the
// middleware did not run.
func OwnerFromContext(ctx context.Context) string {
	owner, _ := ctx.Value(ownerContextKey).(string)
	return owner
}
