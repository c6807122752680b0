package middleware

import (
	"context"
	"encoding/json"
	"net/http"

	"review-room/internal/model"
)

// authorizer is the slice of the auth service the guard needs: resolve a raw
// Authorization header into an identity, or reject.
type authorizer interface {
	Authorize(ctx context.Context, rawHeader string) (model.Identity, error)
}

type contextKey string

const identityContextKey contextKey = "identity"

type AuthMiddleware struct {
	auth authorizer
}

func NewAuthMiddleware(auth authorizer) *AuthMiddleware {
	return &AuthMiddleware{auth: auth}
}

// RequireAuth gates protected routes. On success the resolved identity rides
// the request context; handlers read it back with IdentityFromContext.
func (m *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, err := m.auth.Authorize(r.Context(), r.Header.Get("Authorization"))
		if err != nil {
			writeUnauthorized(w)
			return
		}

		ctx := context.WithValue(r.Context(), identityContextKey, identity)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func IdentityFromContext(ctx context.Context) (model.Identity, bool) {
	identity, ok := ctx.Value(identityContextKey).(model.Identity)
	return identity, ok
}

func writeUnauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(model.APIResponse{
		Success: false,
		Error: &model.APIError{
			Code:    "UNAUTHORIZED",
			Message: "Invalid or expired token",
		},
	})
}
