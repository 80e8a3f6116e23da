package auth

import (
	"context"

	"slackbridge/internal/slack"
)

type ctxKey int

const (
	identityKey ctxKey = iota
	tokenKey
)

// WithIdentity attaches the verified identity and its raw bearer token to
// the request context.
func WithIdentity(ctx context.Context, id *slack.Identity, token string) context.Context {
	ctx = context.WithValue(ctx, identityKey, id)
	return context.WithValue(ctx, tokenKey, token)
}

// IdentityFrom returns the verified identity, if the auth gate ran.
func IdentityFrom(ctx context.Context) (*slack.Identity, bool) {
	id, ok := ctx.Value(identityKey).(*slack.Identity)
	return id, ok
}

// TokenFrom returns the raw bearer token, if the auth gate ran.
func TokenFrom(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(tokenKey).(string)
	return token, ok
}
