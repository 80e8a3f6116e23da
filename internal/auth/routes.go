package auth

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"slackbridge/internal/apperr"
	"slackbridge/internal/config"
	"slackbridge/internal/respond"
	"slackbridge/internal/slack"
)

// RegisterRoutes mounts the OAuth and identity endpoints.
func RegisterRoutes(r chi.Router, client *slack.Client, cfg *config.Config, rw *respond.Writer) {
	r.Route("/auth", func(r chi.Router) {
		r.Get("/oauth-url", handleOAuthURL(cfg, rw))
		r.Get("/callback", handleCallback(client, cfg, rw))
		r.Post("/verify", handleVerify(client, rw))

		r.Group(func(r chi.Router) {
			r.Use(RequireAuth(client, rw))
			r.Get("/me", handleMe(client, rw))
			r.Post("/logout", handleLogout(rw))
		})
	})
}

// newState generates the opaque CSRF state value: 32 random bytes,
// hex-encoded. The caller is responsible for round-tripping it; the server
// stores nothing.
func newState() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

func handleOAuthURL(cfg *config.Config, rw *respond.Writer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := cfg.ValidateOAuth(); err != nil {
			rw.Error(w, r, apperr.Wrap(apperr.CodeOAuthURLGeneration, err))
			return
		}

		state, err := newState()
		if err != nil {
			rw.Error(w, r, apperr.Wrap(apperr.CodeOAuthURLGeneration, err))
			return
		}

		rw.Success(w, map[string]string{
			"oauthUrl": cfg.OAuthURL(state),
			"state":    state,
		})
	}
}

func handleCallback(client *slack.Client, cfg *config.Config, rw *respond.Writer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()

		if oauthErr := query.Get("error"); oauthErr != "" {
			rw.Error(w, r, apperr.New(apperr.CodeOAuthError, "OAuth failed: "+oauthErr))
			return
		}

		code := query.Get("code")
		if code == "" {
			rw.Error(w, r, apperr.New(apperr.CodeMissingCode, "Authorization code is required"))
			return
		}

		grant, err := client.ExchangeCode(r.Context(), slack.ExchangeRequest{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			Code:         code,
			RedirectURI:  cfg.RedirectURI,
		})
		if err != nil {
			rw.Error(w, r, apperr.Retag(err, apperr.CodeOAuthCallback))
			return
		}

		user, err := client.GetUserInfo(r.Context(), grant.AccessToken, grant.AuthedUser.ID)
		if err != nil {
			rw.Error(w, r, apperr.Retag(err, apperr.CodeOAuthCallback))
			return
		}

		rw.Success(w, map[string]any{
			"accessToken": grant.AccessToken,
			"tokenType":   grant.TokenType,
			"scope":       grant.Scope,
			"team":        grant.Team,
			"user":        shapeUser(user, false),
		})
	}
}

type verifyRequest struct {
	AccessToken string `json:"accessToken"`
}

func handleVerify(client *slack.Client, rw *respond.Writer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req verifyRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			rw.Error(w, r, apperr.New(apperr.CodeValidation, "Invalid request body"))
			return
		}
		if req.AccessToken == "" {
			rw.Error(w, r, apperr.New(apperr.CodeValidation, `"accessToken" is required`))
			return
		}

		identity, err := client.VerifyToken(r.Context(), req.AccessToken)
		if err != nil {
			rw.Error(w, r, apperr.Retag(err, apperr.CodeTokenVerification))
			return
		}

		rw.Success(w, identity)
	}
}

func handleMe(client *slack.Client, rw *respond.Writer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, _ := IdentityFrom(r.Context())
		token, _ := TokenFrom(r.Context())

		user, err := client.GetUserInfo(r.Context(), token, identity.UserID)
		if err != nil {
			rw.Error(w, r, apperr.Retag(err, apperr.CodeGetUserInfo))
			return
		}

		rw.Success(w, shapeUser(user, true))
	}
}

func handleLogout(rw *respond.Writer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// Tokens are held by the caller, not this service. Nothing to revoke.
		rw.JSON(w, http.StatusOK, map[string]any{
			"success": true,
			"message": "Logged out successfully",
		})
	}
}

// shapeUser maps a Slack user record onto the fields this API exposes.
// The extended form adds timezone and status for /auth/me.
func shapeUser(u *slack.User, extended bool) map[string]any {
	shaped := map[string]any{
		"id":       u.ID,
		"name":     u.Name,
		"realName": u.RealName,
		"email":    u.Profile.Email,
		"image":    u.Profile.Image192,
	}
	if extended {
		shaped["timezone"] = u.TZ
		shaped["status"] = u.Profile.StatusText
	}
	return shaped
}
