package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gavelworks/gavel-stack/auction/pkg/tokens"
)

type contextKey string

const SellerKey contextKey = "seller"

// AuthMiddleware gates write endpoints behind Bearer token auth and threads
// the caller identity into the request context. Handlers read the seller
// from the context; nothing downstream touches the Authorization header.
type AuthMiddleware struct {
	tokens *tokens.TokenGenerator
}

func NewAuthMiddleware(tg *tokens.TokenGenerator) *AuthMiddleware {
	return &AuthMiddleware{tokens: tg}
}

func (m *AuthMiddleware) RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			http.Error(w, "Missing authorization header", http.StatusUnauthorized)
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			http.Error(w, "Invalid authorization header", http.StatusUnauthorized)
			return
		}

		claims, err := m.tokens.Validate(parts[1])
		if err != nil {
			http.Error(w, "Invalid or expired token", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), SellerKey, claims.Username)
		next.ServeHTTP(w, r.WithContext(ctx))
	}
}

// GetSeller extracts the authenticated seller from the context.
// Returns empty string if the request was not authenticated.
func GetSeller(ctx context.Context) string {
	if seller, ok := ctx.Value(SellerKey).(string); ok {
		return seller
	}
	return ""
}
