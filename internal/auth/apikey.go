// Package auth guards the /api/v1 routes with static API keys.
package auth

import (
	"crypto/subtle"
	"net/http"
)

// APIKeyMiddleware accepts a request whose X-API-Key header, or api_key
// query parameter, matches one of validKeys. With no keys configured every
// request passes.
func APIKeyMiddleware(validKeys []string) func(http.Handler) http.Handler {
	keys := make([][]byte, 0, len(validKeys))
	for _, k := range validKeys {
		if k != "" {
			keys = append(keys, []byte(k))
		}
	}

	return func(next http.Handler) http.Handler {
		if len(keys) == 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get("X-API-Key")
			if key == "" {
				key = r.URL.Query().Get("api_key")
			}
			if !matches(keys, []byte(key)) {
				w.Header().Set("WWW-Authenticate", `APIKey realm="nutrinorm"`)
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// matches compares against every key in constant time.
func matches(keys [][]byte, candidate []byte) bool {
	found := 0
	for _, k := range keys {
		found |= subtle.ConstantTimeCompare(k, candidate)
	}
	return found == 1 && len(candidate) > 0
}
