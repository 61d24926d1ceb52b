package rest

import (
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// authMiddleware validates a bearer token signed with the shared secret.
// Handlers behind it perform destructive operations, so unauthenticated
// requests are rejected outright.
func authMiddleware(secret string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				writeJSON(w, http.StatusUnauthorized, errorResponse{Success: false, Error: "missing bearer token"})
				return
			}
			tokenString := strings.TrimPrefix(header, "Bearer ")

			token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, jwt.ErrSignatureInvalid
				}
				return []byte(secret), nil
			})
			if err != nil || !token.Valid {
				writeJSON(w, http.StatusUnauthorized, errorResponse{Success: false, Error: "invalid token"})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
