package middleware

import (
	"net/http"

	h "partyplanner/internal/delivery/http/helpers"
)

// CredentialVerifier checks a viewer's basic-auth credentials.
type CredentialVerifier interface {
	Verify(user, password string) bool
}

const basicAuthChallenge = `Basic realm="partyplanner", charset="UTF-8"`

// RequireViewer rejects requests without valid basic-auth credentials with
// 401 and a WWW-Authenticate challenge. A nil verifier disables the check.
func RequireViewer(verifier CredentialVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if verifier == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, password, ok := r.BasicAuth()
			if !ok {
				w.Header().Set("WWW-Authenticate", basicAuthChallenge)
				h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "missing credentials")
				return
			}
			if !verifier.Verify(user, password) {
				w.Header().Set("WWW-Authenticate", basicAuthChallenge)
				h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "invalid credentials")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
