package auth

import (
	"net/http"
	"strings"

	"slackbridge/internal/apperr"
	"slackbridge/internal/respond"
	"slackbridge/internal/slack"
)

// RequireAuth gates a route behind a valid Slack bearer token. The token
// is re-verified against auth.test on every request; no caching. On
// success the identity and raw token are placed on the request context.
func RequireAuth(client *slack.Client, rw *respond.Writer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				rw.Error(w, r, apperr.New(apperr.CodeMissingAuthorization, "Authorization header is required"))
				return
			}

			token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer"))
			if token == "" || !strings.HasPrefix(header, "Bearer") {
				rw.Error(w, r, apperr.New(apperr.CodeMissingToken, "Bearer token is required"))
				return
			}

			identity, err := client.VerifyToken(r.Context(), token)
			if err != nil {
				rw.Error(w, r, apperr.Retag(err, apperr.CodeAuthenticationFailed))
				return
			}

			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), identity, token)))
		})
	}
}
