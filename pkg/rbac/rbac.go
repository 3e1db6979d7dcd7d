// Package rbac restricts routes by the user type carried in the token.
package rbac

import (
	"net/http"

	"github.com/shashiranjanraj/commandes/pkg/auth"
	"github.com/shashiranjanraj/commandes/pkg/response"
)

// HasRole allows access only to users whose type is one of types.
// middleware.Auth must run first.
func HasRole(types ...string) func(http.Handler) http.Handler {
	allowed := make(map[string]bool, len(types))
	for _, t := range types {
		allowed[t] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := auth.ClaimsFromCtx(r.Context())
			if !ok {
				response.Unauthorized(w, "Token manquant")
				return
			}
			if !allowed[claims.Type] {
				response.Forbidden(w, "Accès refusé")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
