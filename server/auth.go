package server

import (
	"crypto/subtle"
	"net/http"
)

// adminTokenMiddleware guards admin routes with a static token header.
func adminTokenMiddleware(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Not configured: allow everything
			if secret == "" {
				next.ServeHTTP(w, r)
				return
			}

			token := r.Header.Get("X-Admin-Token")
			if token == "" || subtle.ConstantTimeCompare([]byte(token), []byte(secret)) != 1 {
				writeError(w, "Unauthorized (invalid admin token).", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
