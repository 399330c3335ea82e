package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/studyforge/studyforge-api/internal/api/shared"
)

// UserIDHeader carries the caller's user ID. The header is supplied by
// the fronting gateway, which has already authenticated the caller;
// this service trusts it as-is.
const UserIDHeader = "X-User-ID"

// RequireUserID extracts the caller's user ID from the X-User-ID header
// and adds it to the request context. Requests without a well-formed
// user ID are rejected.
func RequireUserID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := r.Header.Get(UserIDHeader)
		if raw == "" {
			shared.RespondWithError(w, r, http.StatusUnauthorized, "X-User-ID header required")
			return
		}

		userID, err := uuid.Parse(raw)
		if err != nil || userID == uuid.Nil {
			shared.RespondWithError(w, r, http.StatusUnauthorized, "Invalid user ID")
			return
		}

		ctx := context.WithValue(r.Context(), shared.UserIDContextKey, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetUserID extracts the user ID from the request context.
// Returns the user ID and a boolean indicating if it was found.
func GetUserID(r *http.Request) (uuid.UUID, bool) {
	userID, ok := r.Context().Value(shared.UserIDContextKey).(uuid.UUID)
	return userID, ok
}
