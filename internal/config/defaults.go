package config

import "time"

// DefaultScopes are the Slack OAuth scopes requested when none are configured.
var DefaultScopes = []string{
	"channels:read",
	"chat:write",
	"chat:write.public",
	"users:read",
	"users:read.email",
	"im:read",
	"im:write",
	"mpim:read",
	"mpim:write",
	"groups:read",
	"groups:write",
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Port:              3000,
		Environment:       EnvDevelopment,
		RedirectURI:       "http://localhost:3000/auth/callback",
		FrontendURL:       "http://localhost:3000",
		APIBaseURL:        "https://slack.com/api",
		AuthorizeURL:      "https://slack.com/oauth/v2/authorize",
		Scopes:            DefaultScopes,
		UpstreamTimeout:   10 * time.Second,
		RateLimitRequests: 100,
		RateLimitWindow:   15 * time.Minute,
	}
}
