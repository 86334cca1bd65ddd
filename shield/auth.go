package shield

import (
	"encoding/json"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// RequireToken returns middleware that checks the Authorization header
// against a bcrypt hash of the access token. Install it only when a hash is
// configured; an empty hash would lock everyone out.
func RequireToken(tokenHash string) func(http.Handler) http.Handler {
	hash := []byte(tokenHash)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" || bcrypt.CompareHashAndPassword(hash, []byte(token)) != nil {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				json.NewEncoder(w).Encode(map[string]string{"error": "unauthorized"})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// HashToken generates the bcrypt hash to put in the config for a chosen
// access token.
func HashToken(token string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(token), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	// The overlay cannot always set headers on injected fetches.
	return r.URL.Query().Get("token")
}
