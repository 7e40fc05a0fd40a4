package oauth

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"sentinelmind/pkg/logging"
)

// AssertionFlowConfig configures a JWT-bearer client-credentials grant.
type AssertionFlowConfig struct {
	// OrgURL is the Okta org, e.g. https://example.okta.com.
	OrgURL   string
	ClientID string
	// Scopes is the space separated scope string sent with the grant.
	Scopes string
	Signer *AssertionSigner
	// HTTPClient is used for token requests. Defaults to a client with a
	// 30 second timeout.
	HTTPClient *http.Client
}

// AssertionFlow obtains tokens by presenting a signed client assertion.
type AssertionFlow struct {
	clientID   string
	tokenURL   string
	scopes     []string
	signer     *AssertionSigner
	httpClient *http.Client
}

// NewAssertionFlow validates cfg and creates an AssertionFlow.
func NewAssertionFlow(cfg AssertionFlowConfig) (*AssertionFlow, error) {
	orgURL := strings.TrimRight(cfg.OrgURL, "/")
	if orgURL == "" || cfg.ClientID == "" {
		return nil, fmt.Errorf("org url and client id are required")
	}
	if cfg.Signer == nil {
		return nil, fmt.Errorf("assertion signer is required")
	}
	scopes := strings.Fields(cfg.Scopes)
	if len(scopes) == 0 {
		return nil, fmt.Errorf("at least one scope is required")
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	return &AssertionFlow{
		clientID:   cfg.ClientID,
		tokenURL:   orgURL + "/oauth2/v1/token",
		scopes:     scopes,
		signer:     cfg.Signer,
		httpClient: httpClient,
	}, nil
}

// Name implements TokenProvider.
func (f *AssertionFlow) Name() string {
	return "okta"
}

// TokenURL returns the token endpoint, which is also the assertion audience.
func (f *AssertionFlow) TokenURL() string {
	return f.tokenURL
}

// Issue implements TokenProvider. Every call signs a new assertion.
func (f *AssertionFlow) Issue(ctx context.Context) (IssuedToken, error) {
	assertion, err := f.signer.Sign(f.tokenURL)
	if err != nil {
		return IssuedToken{}, &AuthError{Provider: f.Name(), Err: err}
	}

	cfg := clientcredentials.Config{
		ClientID:  f.clientID,
		TokenURL:  f.tokenURL,
		Scopes:    f.scopes,
		AuthStyle: oauth2.AuthStyleInParams,
		EndpointParams: url.Values{
			"client_assertion_type": {ClientAssertionType},
			"client_assertion":      {assertion},
		},
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, f.httpClient)
	tok, err := cfg.Token(ctx)
	if err != nil {
		authErr := newAuthError(f.Name(), err)
		logging.Error("AssertionFlow", authErr, "Token request failed")
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
