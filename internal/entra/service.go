package entra

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"sentinelmind/internal/clock"
)

// DefaultGraphBaseURL is the Microsoft Graph v1.0 endpoint.
const DefaultGraphBaseURL = "https://graph.microsoft.com/v1.0"

// Directory is the subset of the directory client used here.
type Directory interface {
	Get(ctx context.Context, url string) (json.RawMessage, error)
	Patch(ctx context.Context, url string, body any) (json.RawMessage, error)
	Post(ctx context.Context, url string, body any) (json.RawMessage, error)
}

// Service runs Graph operations against one tenant.
type Service struct {
	dir     Directory
	baseURL string
	clock   clock.Clock
}

// Option configures a Service.
type Option func(*Service)

// WithBaseURL overrides DefaultGraphBaseURL.
func WithBaseURL(baseURL string) Option {
	return func(s *Service) {
		s.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithClock sets the time source for risk scoring and sign-in windows.
func WithClock(c clock.Clock) Option {
	return func(s *Service) {
		s.clock = c
	}
}

// NewService creates a Service on top of dir.
func NewService(dir Directory, opts ...Option) *Service {
	s := &Service{dir: dir, baseURL: DefaultGraphBaseURL}
	for _, opt := range opts {
		opt(s)
	}
	s.clock = clock.OrReal(s.clock)
	return s
}

// DisableServicePrincipal sets accountEnabled=false on the principal and
// returns Graph's response ({"ok":true} for 204).
func (s *Service) DisableServicePrincipal(ctx context.Context, id string) (json.RawMessage, error) {
	raw, err := s.dir.Patch(ctx, s.servicePrincipalURL(id), map[string]bool{"accountEnabled": false})
	if err != nil {
		return nil, fmt.Errorf("disable service principal: %w", err)
	}
	return raw, nil
}

// RevokeServicePrincipalSessions invalidates refresh tokens issued to the
// principal.
func (s *Service) RevokeServicePrincipalSessions(ctx context.Context, id string) (json.RawMessage, error) {
	raw, err := s.dir.Post(ctx, s.servicePrincipalURL(id)+"/revokeSignInSessions", nil)
	if err != nil {
		return nil, fmt.Errorf("revoke service principal sessions: %w", err)
	}
	return raw, nil
}

// RevokeUserSessions invalidates refresh tokens and session cookies of a user.
func (s *Service) RevokeUserSessions(ctx context.Context, userID string) (json.RawMessage, error) {
	u := fmt.Sprintf("%s/users/%s/revokeSignInSessions", s.baseURL, url.PathEscape(userID))
	raw, err := s.dir.Post(ctx, u, nil)
	if err != nil {
		return nil, fmt.Errorf("revoke user sessions: %w", err)
	}
	return raw, nil
}

func (s *Service) servicePrincipalURL(id string) string {
	return fmt.Sprintf("%s/servicePrincipals/%s", s.baseURL, url.PathEscape(id))
}

// odataQuery escapes v for use in a Graph query string. Spaces become %20
// rather than '+'.
func odataQuery(v string) string {
	return strings.ReplaceAll(url.QueryEscape(v), "+", "%20")
}
