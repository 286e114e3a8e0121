package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/josvita0323/devhost-2025-sub000/models"
	"github.com/josvita0323/devhost-2025-sub000/services"
)

type contextKey string

const identityContextKey contextKey = "identity"

func writeAuthError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// Authenticate проверяет bearer-токен инъецированным верификатором и кладет
// подтвержденную личность вызывающего в контекст запроса.
func Authenticate(verifier services.TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				writeAuthError(w, http.StatusUnauthorized, "missing or malformed authorization header")
				return
			}

			identity, err := verifier.Verify(strings.TrimPrefix(header, "Bearer "))
			if err != nil {
				writeAuthError(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}

			ctx := context.WithValue(r.Context(), identityContextKey, *identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func Authorize(roles ...models.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, err := IdentityFromContext(r.Context())
			if err != nil {
				writeAuthError(w, http.StatusUnauthorized, "unauthorized")
				return
			}

			for _, role := range roles {
				if role == identity.Role {
					next.ServeHTTP(w, r)
					return
				}
			}

			writeAuthError(w, http.StatusForbidden, "forbidden")
		})
	}
}
