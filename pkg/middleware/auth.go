package middleware

import (
	"net/http"
	"strings"

	"github.com/shashiranjanraj/commandes/pkg/auth"
	"github.com/shashiranjanraj/commandes/pkg/response"
)

// TokenParser verifies a bearer token.
type TokenParser interface {
	Parse(token string) (*auth.Claims, error)
}

// Auth requires a valid `Authorization: Bearer <token>` header and stores the
// verified claims on the request context.
func Auth(tokens TokenParser) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token, found := strings.CutPrefix(header, "Bearer ")
			if !found || strings.TrimSpace(token) == "" {
				response.Unauthorized(w, "Token manquant")
				return
			}

			claims, err := tokens.Parse(strings.TrimSpace(token))
			if err != nil {
				response.Unauthorized(w, "Token invalide")
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.WithClaims(r.Context(), claims)))
		})
	}
}
