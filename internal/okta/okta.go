// Package okta reads users, groups, apps and System Log events from the
// Okta management API. All operations are read only.
package okta

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"sentinelmind/internal/directory"
)

// Resource is an Okta management API collection.
type Resource string

const (
	Users  Resource = "users"
	Groups Resource = "groups"
	Apps   Resource = "apps"
	Logs   Resource = "logs"
)

// Getter is the subset of the directory client used here.
type Getter interface {
	Get(ctx context.Context, url string) (json.RawMessage, error)
}

// Service lists Okta resources for one org.
type Service struct {
	dir    Getter
	orgURL string
}

// NewService creates a Service for orgURL. Trailing slashes are ignored.
func NewService(dir Getter, orgURL string) *Service {
	return &Service{dir: dir, orgURL: strings.TrimRight(orgURL, "/")}
}

// List returns up to limit items of resource as returned by Okta.
func (s *Service) List(ctx context.Context, resource Resource, limit int) ([]json.RawMessage, error) {
	u := fmt.Sprintf("%s/api/v1/%s?limit=%d", s.orgURL, resource, limit)

	raw, err := s.dir.Get(ctx, u)
	if err != nil {
		return nil, fmt.Errorf("list okta %s: %w", resource, err)
	}
	return directory.DecodeArray(raw)
}

func (s *Service) ListUsers(ctx context.Context, limit int) ([]json.RawMessage, error) {
	return s.List(ctx, Users, limit)
}

func (s *Service) ListGroups(ctx context.Context, limit int) ([]json.RawMessage, error) {
	return s.List(ctx, Groups, limit)
}

func (s *Service) ListApps(ctx context.Context, limit int) ([]json.RawMessage, error) {
	return s.List(ctx, Apps, limit)
}

// RecentLogs returns the most recent System Log events.
func (s *Service) RecentLogs(ctx context.Context, limit int) ([]json.RawMessage, error) {
	return s.List(ctx, Logs, limit)
}
