package server

import (
	"crypto/subtle"
	"net/http"
	"strings"
)

// withAuth guards a handler with an opaque bearer token. An empty
// configured token disables the check.
func (s *HTTPServer) withAuth(token string, next http.HandlerFunc) http.HandlerFunc {
	if token == "" {
		return next
	}
	return func(w http.ResponseWriter, r *http.Request) {
		supplied := bearerToken(r)
		if subtle.ConstantTimeCompare([]byte(supplied), []byte(token)) != 1 {
			writeJSON(w, http.StatusUnauthorized, map[string]interface{}{
				"success": false,
				"error":   "unauthorized",
			})
			return
		}
		next(w, r)
	}
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if rest, ok := strings.CutPrefix(header, "Bearer "); ok {
		return rest
	}
	return r.URL.Query().Get("token")
}
