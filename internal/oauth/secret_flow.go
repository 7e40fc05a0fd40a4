package oauth

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"sentinelmind/pkg/logging"
)

// DefaultAuthorityHost is the Microsoft identity platform host.
const DefaultAuthorityHost = "https://login.microsoftonline.com"

// SecretFlowConfig configures a shared-secret client-credentials grant.
type SecretFlowConfig struct {
	TenantID     string
	ClientID     string
	ClientSecret RedactedToken

	// AuthorityHost overrides DefaultAuthorityHost.
	AuthorityHost string
	// Scope overrides GraphDefaultScope.
	Scope string
	// HTTPClient is used for token requests. Defaults to a client with a
	// 30 second timeout.
	HTTPClient *http.Client
}

// SecretFlow obtains Microsoft Graph tokens for a confidential client.
type SecretFlow struct {
	cfg        clientcredentials.Config
	httpClient *http.Client
}

// NewSecretFlow validates cfg and creates a SecretFlow.
func NewSecretFlow(cfg SecretFlowConfig) (*SecretFlow, error) {
	if cfg.TenantID == "" || cfg.ClientID == "" || cfg.ClientSecret.IsEmpty() {
		return nil, fmt.Errorf("tenant id, client id and client secret are required")
	}

	authority := strings.TrimRight(cfg.AuthorityHost, "/")
	if authority == "" {
		authority = DefaultAuthorityHost
	}
	scope := cfg.Scope
	if scope == "" {
		scope = GraphDefaultScope
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	return &SecretFlow{
		cfg: clientcredentials.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret.Value(),
			TokenURL:     fmt.Sprintf("%s/%s/oauth2/v2.0/token", authority, cfg.TenantID),
			Scopes:       []string{scope},
			AuthStyle:    oauth2.AuthStyleInParams,
		},
		httpClient: httpClient,
	}, nil
}

// Name implements TokenProvider.
func (f *SecretFlow) Name() string {
	return "entra"
}

// TokenURL returns the token endpoint used by this flow.
func (f *SecretFlow) TokenURL() string {
	return f.cfg.TokenURL
}

// Issue implements TokenProvider.
func (f *SecretFlow) Issue(ctx context.Context) (IssuedToken, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, f.httpClient)

	tok, err := f.cfg.Token(ctx)
	if err != nil {
		authErr := newAuthError(f.Name(), err)
		logging.Error("SecretFlow", authErr, "Token request failed")
		return IssuedToken{}, authErr
	}
	if tok.AccessToken == "" {
		return IssuedToken{}, &AuthError{Provider: f.Name(), Err: fmt.Errorf("response did not contain an access token")}
	}

	return IssuedToken{
		AccessToken: NewRedactedToken(tok.AccessToken),
		TTL:         tokenTTL(tok),
	}, nil
}

// tokenTTL derives the remaining lifetime from the expiry x/oauth2 computed
// out of expires_in. Zero when the provider did not report one.
func tokenTTL(tok *oauth2.Token) time.Duration {
	if tok.Expiry.IsZero() {
		return 0
	}
	ttl := time.Until(tok.Expiry).Round(time.Second)
	if ttl < 0 {
		return 0
	}
	return ttl
}
