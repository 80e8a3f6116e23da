package config

import "time"

// Environment selects runtime behavior such as error detail exposure.
type Environment string

const (
	EnvDevelopment Environment = "development"
	EnvProduction  Environment = "production"
)

// Config is the top-level slackbridge configuration, corresponding to
// slackbridge.yml with SLACKBRIDGE_* environment overrides.
type Config struct {
	Port        int         `yaml:"port" koanf:"port"`
	Environment Environment `yaml:"environment" koanf:"environment"`

	ClientID     string `yaml:"client_id" koanf:"client_id"`
	ClientSecret string `yaml:"client_secret" koanf:"client_secret"`
	RedirectURI  string `yaml:"redirect_uri" koanf:"redirect_uri"`

	// FrontendURL is the single origin allowed by CORS.
	FrontendURL string `yaml:"frontend_url" koanf:"frontend_url"`

	// APIBaseURL is the Slack Web API root. Overridable for tests.
	APIBaseURL string `yaml:"api_base_url" koanf:"api_base_url"`

	// AuthorizeURL is the browser-facing OAuth consent page.
	AuthorizeURL string `yaml:"authorize_url" koanf:"authorize_url"`

	// Scopes requested during the OAuth flow.
	Scopes []string `yaml:"scopes" koanf:"scopes"`

	// UpstreamTimeout bounds every outbound Slack call.
	UpstreamTimeout time.Duration `yaml:"upstream_timeout" koanf:"upstream_timeout"`

	// Inbound per-IP rate limit over a fixed window.
	RateLimitRequests int           `yaml:"rate_limit_requests" koanf:"rate_limit_requests"`
	RateLimitWindow   time.Duration `yaml:"rate_limit_window" koanf:"rate_limit_window"`
}

// Debug reports whether error responses may carry underlying error details.
func (c *Config) Debug() bool {
	return c.Environment != EnvProduction
}
