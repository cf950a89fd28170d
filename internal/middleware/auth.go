package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/priyansh-soni/honeypot-agent/pkg/utils"
)

// RequireAPIKey rejects requests whose x-api-key header does not match
// the configured secret.
func RequireAPIKey(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get("x-api-key")
			if key == "" || subtle.ConstantTimeCompare([]byte(key), []byte(secret)) != 1 {
				utils.RespondError(w, http.StatusForbidden, "invalid or missing API key")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
