package auth

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"
)

// Middleware rejects requests without a valid bearer token and stashes the
// resolved identity in the request context for the handlers downstream.
func Middleware(validator TokenValidator, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := extractBearer(r.Header.Get("Authorization"))
		if token == "" {
			writeUnauthorized(w, "missing or malformed authorization header")
			return
		}

		identity, err := validator.ValidateToken(r.Context(), token)
		if err != nil {
			if err != ErrInvalidToken {
				log.Printf("auth: token validation error: %v", err)
			}
			writeUnauthorized(w, "invalid token")
			return
		}

		next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), identity)))
	})
}

func extractBearer(header string) string {
	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}

func writeUnauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
