package auth

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"slackbridge/internal/config"
	"slackbridge/internal/respond"
	"slackbridge/internal/slack"
)

type envelope struct {
	Success bool           `json:"success"`
	Error   string         `json:"error"`
	Message string         `json:"message"`
	Data    map[string]any `json:"data"`
}

func newRig(t *testing.T, upstream http.Handler) (chi.Router, *config.Config) {
	t.Helper()
	srv := httptest.NewServer(upstream)
	t.Cleanup(srv.Close)

	cfg := config.DefaultConfig()
	cfg.APIBaseURL = srv.URL
	cfg.ClientID = "client-id"
	cfg.ClientSecret = "client-secret"

	client := slack.New(srv.URL, 2*time.Second)
	rw := respond.New(false, slog.New(slog.NewTextHandler(io.Discard, nil)))

	r := chi.NewRouter()
	RegisterRoutes(r, client, cfg, rw)
	return r, cfg
}

func doRequest(t *testing.T, r http.Handler, method, path, body string, headers map[string]string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), "body: %s", w.Body.String())
	return w, env
}

func authTestOK(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"ok": true, "user_id": "U1", "user": "alice",
		"team_id": "T1", "team": "Acme", "url": "https://acme.slack.com/",
	})
}

var stateRe = regexp.MustCompile(`^[0-9a-f]{64}$`)

func TestOAuthURL(t *testing.T) {
	r, _ := newRig(t, http.NotFoundHandler())

	w, env := doRequest(t, r, "GET", "/auth/oauth-url", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.True(t, env.Success)

	state, _ := env.Data["state"].(string)
	oauthURL, _ := env.Data["oauthUrl"].(string)
	assert.Regexp(t, stateRe, state)
	assert.Contains(t, oauthURL, "state="+state)
	assert.Contains(t, oauthURL, "client_id=client-id")
	assert.Contains(t, oauthURL, "response_type=code")

	// State is unique per call.
	_, env2 := doRequest(t, r, "GET", "/auth/oauth-url", "", nil)
	assert.NotEqual(t, state, env2.Data["state"])
}

func TestOAuthURLMissingCredentials(t *testing.T) {
	r, cfg := newRig(t, http.NotFoundHandler())
	cfg.ClientID = ""
	cfg.ClientSecret = ""

	w, env := doRequest(t, r, "GET", "/auth/oauth-url", "", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "OAUTH_URL_GENERATION_FAILED", env.Error)
	assert.Contains(t, env.Message, "client_id")
}

func TestCallbackOAuthErrorShortCircuits(t *testing.T) {
	var upstreamCalls atomic.Int32
	r, _ := newRig(t, http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		upstreamCalls.Add(1)
	}))

	w, env := doRequest(t, r, "GET", "/auth/callback?error=access_denied", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "OAUTH_ERROR", env.Error)
	assert.Equal(t, "OAuth failed: access_denied", env.Message)
	assert.Zero(t, upstreamCalls.Load(), "exchange must not be attempted")
}

func TestCallbackMissingCode(t *testing.T) {
	r, _ := newRig(t, http.NotFoundHandler())

	w, env := doRequest(t, r, "GET", "/auth/callback?state=abc", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "MISSING_CODE", env.Error)
}

func TestCallbackSuccess(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/oauth.v2.access", func(w http.ResponseWriter, req *http.Request) {
		require.NoError(t, req.ParseForm())
		assert.Equal(t, "code-1", req.PostForm.Get("code"))
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"ok":           true,
			"access_token": "xoxp-new",
			"token_type":   "bearer",
			"scope":        "chat:write",
			"team":         map[string]any{"id": "T1", "name": "Acme"},
			"authed_user":  map[string]any{"id": "U1"},
		})
	})
	mux.HandleFunc("/users.info", func(w http.ResponseWriter, req *http.Request) {
		assert.Equal(t, "Bearer xoxp-new", req.Header.Get("Authorization"))
		assert.Equal(t, "U1", req.URL.Query().Get("user"))
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"ok": true,
			"user": map[string]any{
				"id": "U1", "name": "alice", "real_name": "Alice Example",
				"profile": map[string]any{"email": "alice@example.com", "image_192": "https://img/192.png"},
			},
		})
	})

	r, _ := newRig(t, mux)
	w, env := doRequest(t, r, "GET", "/auth/callback?code=code-1&state=abc", "", nil)
	require.Equal(t, http.StatusOK, w.Code, "body: %s", w.Body.String())
	require.True(t, env.Success)

	assert.Equal(t, "xoxp-new", env.Data["accessToken"])
	assert.Equal(t, "chat:write", env.Data["scope"])
	user, _ := env.Data["user"].(map[string]any)
	require.NotNil(t, user)
	assert.Equal(t, "alice", user["name"])
	assert.Equal(t, "alice@example.com", user["email"])
}

func TestCallbackExchangeFailure(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/oauth.v2.access", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"ok": false, "error": "invalid_code"})
	})

	r, _ := newRig(t, mux)
	w, env := doRequest(t, r, "GET", "/auth/callback?code=expired", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "OAUTH_CALLBACK_FAILED", env.Error)
	assert.Equal(t, "invalid_code", env.Message)
}

func TestVerifyMissingToken(t *testing.T) {
	r, _ := newRig(t, http.NotFoundHandler())

	w, env := doRequest(t, r, "POST", "/auth/verify", `{}`, map[string]string{"Content-Type": "application/json"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_ERROR", env.Error)
}

func TestVerifySuccess(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/auth.test", func(w http.ResponseWriter, req *http.Request) {
		assert.Equal(t, "Bearer xoxp-good", req.Header.Get("Authorization"))
		authTestOK(w)
	})

	r, _ := newRig(t, mux)
	w, env := doRequest(t, r, "POST", "/auth/verify", `{"accessToken":"xoxp-good"}`,
		map[string]string{"Content-Type": "application/json"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "U1", env.Data["userId"])
	assert.Equal(t, "T1", env.Data["teamId"])
}

func TestVerifyRejected(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/auth.test", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"ok": false, "error": "invalid_auth"})
	})

	r, _ := newRig(t, mux)
	w, env := doRequest(t, r, "POST", "/auth/verify", `{"accessToken":"xoxp-bad"}`,
		map[string]string{"Content-Type": "application/json"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "TOKEN_VERIFICATION_FAILED", env.Error)
	assert.Equal(t, "invalid_auth", env.Message)
}

func TestRequireAuthMissingHeader(t *testing.T) {
	r, _ := newRig(t, http.NotFoundHandler())

	w, env := doRequest(t, r, "GET", "/auth/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "MISSING_AUTHORIZATION", env.Error)
}

func TestRequireAuthEmptyToken(t *testing.T) {
	r, _ := newRig(t, http.NotFoundHandler())

	w, env := doRequest(t, r, "GET", "/auth/me", "", map[string]string{"Authorization": "Bearer "})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "MISSING_TOKEN", env.Error)
}

func TestRequireAuthRejectedToken(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/auth.test", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"ok": false, "error": "token_revoked"})
	})

	r, _ := newRig(t, mux)
	w, env := doRequest(t, r, "GET", "/auth/me", "", map[string]string{"Authorization": "Bearer xoxp-revoked"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "AUTHENTICATION_FAILED", env.Error)
	assert.Equal(t, "token_revoked", env.Message)
}

func TestMe(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/auth.test", func(w http.ResponseWriter, req *http.Request) {
		authTestOK(w)
	})
	mux.HandleFunc("/users.info", func(w http.ResponseWriter, req *http.Request) {
		assert.Equal(t, "U1", req.URL.Query().Get("user"))
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"ok": true,
			"user": map[string]any{
				"id": "U1", "name": "alice", "real_name": "Alice Example", "tz": "Europe/Berlin",
				"profile": map[string]any{
					"email": "alice@example.com", "image_192": "https://img/192.png",
					"status_text": "focusing",
				},
			},
		})
	})

	r, _ := newRig(t, mux)
	w, env := doRequest(t, r, "GET", "/auth/me", "", map[string]string{"Authorization": "Bearer xoxp-good"})
	require.Equal(t, http.StatusOK, w.Code, "body: %s", w.Body.String())

	assert.Equal(t, "alice", env.Data["name"])
	assert.Equal(t, "Europe/Berlin", env.Data["timezone"])
	assert.Equal(t, "focusing", env.Data["status"])
}

func TestLogout(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/auth.test", func(w http.ResponseWriter, req *http.Request) {
		authTestOK(w)
	})

	r, _ := newRig(t, mux)
	w, env := doRequest(t, r, "POST", "/auth/logout", "", map[string]string{"Authorization": "Bearer xoxp-good"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, env.Success)
	assert.Equal(t, "Logged out successfully", env.Message)
}
