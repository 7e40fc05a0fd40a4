package oauth

import (
	"context"
	"time"
)

const (
	// DefaultTokenTTL is assumed when a token response carries no lifetime.
	DefaultTokenTTL = 300 * time.Second

	// GraphDefaultScope is the scope requested by the Entra secret flow.
	GraphDefaultScope = "https://graph.microsoft.com/.default"

	// ClientAssertionType is the RFC 7523 assertion type for JWT client authentication.
	ClientAssertionType = "urn:ietf:params:oauth:client-assertion-type:jwt-bearer"
)

// IssuedToken is the result of a single token request.
type IssuedToken struct {
	AccessToken RedactedToken
	// TTL is the lifetime reported by the provider. Zero means unknown.
	TTL time.Duration
}

// TokenProvider obtains a fresh access token from an identity provider.
// Implementations perform one network round trip per call and never cache.
type TokenProvider interface {
	// Name identifies the provider in logs, metrics and errors.
	Name() string
	// Issue requests a new access token. Failures are *AuthError.
	Issue(ctx context.Context) (IssuedToken, error)
}

// TokenProviderFunc adapts a function to TokenProvider.
type TokenProviderFunc struct {
	ProviderName string
	IssueFunc    func(ctx context.Context) (IssuedToken, error)
}

// Name implements TokenProvider.
func (f TokenProviderFunc) Name() string {
	return f.ProviderName
}

// Issue implements TokenProvider.
func (f TokenProviderFunc) Issue(ctx context.Context) (IssuedToken, error) {
	return f.IssueFunc(ctx)
}
