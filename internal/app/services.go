package app

import (
	"fmt"
	"net/http"
	"time"

	"github.com/mark3labs/mcp-go/server"

	"sentinelmind/internal/approval"
	"sentinelmind/internal/config"
	"sentinelmind/internal/directory"
	"sentinelmind/internal/entra"
	"sentinelmind/internal/metrics"
	"sentinelmind/internal/oauth"
	"sentinelmind/internal/okta"
	"sentinelmind/internal/tools"
	"sentinelmind/pkg/logging"
)

// ServerName is the MCP server name announced to clients.
const ServerName = "sentinelmind"

// Services holds every long-lived component. Entra and Okta are nil when the
// provider is not configured.
type Services struct {
	Metrics   *metrics.Metrics
	Entra     *entra.Service
	Okta      *okta.Service
	Lifecycle *approval.Lifecycle
	Registry  *tools.Registry
	MCPServer *server.MCPServer

	// EntraTokens and OktaTokens are the per-provider token caches.
	EntraTokens *oauth.TokenCache
	OktaTokens  *oauth.TokenCache
}

// InitializeServices builds the providers, directory clients, services and
// tool registry described by cfg.
func InitializeServices(cfg config.Config, version string) (*Services, error) {
	m := metrics.New()
	httpClient := &http.Client{Timeout: time.Duration(cfg.Directory.TimeoutSeconds) * time.Second}

	s := &Services{Metrics: m}

	if cfg.EntraConfigured() {
		flow, err := oauth.NewSecretFlow(oauth.SecretFlowConfig{
			TenantID:      cfg.Entra.TenantID,
			ClientID:      cfg.Entra.ClientID,
			ClientSecret:  oauth.NewRedactedToken(cfg.Entra.ClientSecret),
			AuthorityHost: cfg.Entra.AuthorityHost,
			HTTPClient:    httpClient,
		})
		if err != nil {
			return nil, fmt.Errorf("entra token provider: %w", err)
		}
		s.EntraTokens = oauth.NewTokenCache(flow, oauth.WithRefreshObserver(m.ObserveTokenRefresh))

		opts := []entra.Option{}
		if cfg.Entra.GraphBaseURL != "" {
			opts = append(opts, entra.WithBaseURL(cfg.Entra.GraphBaseURL))
		}
		s.Entra = entra.NewService(newDirectoryClient("graph", s.EntraTokens, httpClient, cfg.Directory, m), opts...)
		logging.Info("Services", "Entra provider configured for tenant %s", logging.TruncateID(cfg.Entra.TenantID))
	}

	if cfg.OktaConfigured() {
		key, err := oauth.LoadRSAPrivateKey(cfg.Okta.PrivateKeyPath)
		if err != nil {
			return nil, fmt.Errorf("okta private key: %w", err)
		}
		signer, err := oauth.NewAssertionSigner(cfg.Okta.ClientID, cfg.Okta.KeyID, key)
		if err != nil {
			return nil, fmt.Errorf("okta assertion signer: %w", err)
		}
		flow, err := oauth.NewAssertionFlow(oauth.AssertionFlowConfig{
			OrgURL:     cfg.Okta.OrgURL,
			ClientID:   cfg.Okta.ClientID,
			Scopes:     cfg.Okta.Scopes,
			Signer:     signer,
			HTTPClient: httpClient,
		})
		if err != nil {
			return nil, fmt.Errorf("okta token provider: %w", err)
		}
		s.OktaTokens = oauth.NewTokenCache(flow, oauth.WithRefreshObserver(m.ObserveTokenRefresh))
		s.Okta = okta.NewService(newDirectoryClient("okta", s.OktaTokens, httpClient, cfg.Directory, m), cfg.Okta.OrgURL)
		logging.Info("Services", "Okta provider configured for %s", cfg.Okta.OrgURL)
	}

	s.Lifecycle = approval.NewLifecycle(cfg.AllowWriteActions, m.ObserveGateDecision)
	if cfg.AllowWriteActions {
		logging.Warn("Services", "Write actions are enabled; approved non-dry-run requests will modify the directory")
	}

	registry, err := tools.NewRegistry(tools.Dependencies{
		Entra:     s.Entra,
		Okta:      s.Okta,
		Lifecycle: s.Lifecycle,
		Metrics:   m,
	})
	if err != nil {
		return nil, fmt.Errorf("tool registry: %w", err)
	}
	s.Registry = registry

	s.MCPServer = server.NewMCPServer(ServerName, version, server.WithToolCapabilities(false))
	registry.Register(s.MCPServer)

	return s, nil
}

func newDirectoryClient(name string, tokens directory.TokenSource, httpClient *http.Client, cfg config.DirectoryConfig, m *metrics.Metrics) *directory.Client {
	return directory.NewClient(name, tokens,
		directory.WithHTTPClient(httpClient),
		directory.WithRateLimit(cfg.RequestsPerSecond, cfg.Burst),
		directory.WithRequestObserver(m.ObserveDirectoryRequest),
	)
}
