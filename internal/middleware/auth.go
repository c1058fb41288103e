package middleware

import (
	"log/slog"
	"net/http"

	"github.com/mmynk/duoledger/internal/auth"
)

// RequireToken returns a middleware that rejects requests whose Authorization
// header does not carry the configured token under the PIA scheme.
func RequireToken(verifier *auth.TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := auth.ParseHeader(r.Header.Get("Authorization"))
			if err == nil && !verifier.Verify(token) {
				err = auth.ErrInvalidToken
			}
			if err != nil {
				slog.Warn("Unauthorized request",
					"path", r.URL.Path,
					"request_id", RequestID(r.Context()),
					"error", err,
				)
				// Every rejection carries the same message.
				WriteJSON(w, http.StatusUnauthorized, Message(auth.ErrInvalidToken.Error()))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
