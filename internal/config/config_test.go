package config

import (
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yml"))
	require.NoError(t, err)

	assert.Equal(t, 3000, cfg.Port)
	assert.Equal(t, EnvDevelopment, cfg.Environment)
	assert.Equal(t, "https://slack.com/api", cfg.APIBaseURL)
	assert.Equal(t, 10*time.Second, cfg.UpstreamTimeout)
	assert.Equal(t, 100, cfg.RateLimitRequests)
	assert.Equal(t, 15*time.Minute, cfg.RateLimitWindow)
	assert.Equal(t, DefaultScopes, cfg.Scopes)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("SLACKBRIDGE_CLIENT_ID", "client-123")
	t.Setenv("SLACKBRIDGE_CLIENT_SECRET", "secret-456")
	t.Setenv("SLACKBRIDGE_PORT", "8080")
	t.Setenv("SLACKBRIDGE_ENVIRONMENT", "production")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yml"))
	require.NoError(t, err)

	assert.Equal(t, "client-123", cfg.ClientID)
	assert.Equal(t, "secret-456", cfg.ClientSecret)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, EnvProduction, cfg.Environment)
	assert.False(t, cfg.Debug())
}

func TestLoadYAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "slackbridge.yml")
	content := "port: 9000\nfrontend_url: https://app.example.com\nupstream_timeout: 5s\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Port)
	assert.Equal(t, "https://app.example.com", cfg.FrontendURL)
	assert.Equal(t, 5*time.Second, cfg.UpstreamTimeout)
}

func TestValidate(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	bad := DefaultConfig()
	bad.Port = 0
	assert.Error(t, bad.Validate())

	bad = DefaultConfig()
	bad.Environment = "staging"
	assert.Error(t, bad.Validate())

	bad = DefaultConfig()
	bad.RateLimitRequests = 0
	assert.Error(t, bad.Validate())
}

func TestValidateOAuth(t *testing.T) {
	cfg := DefaultConfig()
	err := cfg.ValidateOAuth()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "client_id")
	assert.Contains(t, err.Error(), "client_secret")

	cfg.ClientID = "id"
	cfg.ClientSecret = "secret"
	assert.NoError(t, cfg.ValidateOAuth())
}

func TestOAuthURL(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ClientID = "client-123"
	cfg.Scopes = []string{"chat:write", "channels:read"}

	raw := cfg.OAuthURL("deadbeef")
	parsed, err := url.Parse(raw)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(raw, "https://slack.com/oauth/v2/authorize?"))
	q := parsed.Query()
	assert.Equal(t, "client-123", q.Get("client_id"))
	assert.Equal(t, "chat:write,channels:read", q.Get("scope"))
	assert.Equal(t, cfg.RedirectURI, q.Get("redirect_uri"))
	assert.Equal(t, "deadbeef", q.Get("state"))
	assert.Equal(t, "code", q.Get("response_type"))
}
