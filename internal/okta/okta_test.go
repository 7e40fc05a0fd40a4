package okta

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sentinelmind/internal/directory"
	"sentinelmind/internal/oauth"
)

type fixedToken struct{}

func (fixedToken) Token(context.Context) (oauth.RedactedToken, error) {
	return oauth.NewRedactedToken("okta-token"), nil
}

func newTestService(t *testing.T, handler http.HandlerFunc) *Service {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client := directory.NewClient("okta", fixedToken{}, directory.WithHTTPClient(srv.Client()))
	return NewService(client, srv.URL+"//")
}

func TestService_List(t *testing.T) {
	tests := []struct {
		name string
		call func(*Service) (int, error)
		path string
	}{
		{name: "users", path: "/api/v1/users", call: func(s *Service) (int, error) {
			items, err := s.ListUsers(context.Background(), 5)
			return len(items), err
		}},
		{name: "groups", path: "/api/v1/groups", call: func(s *Service) (int, error) {
			items, err := s.ListGroups(context.Background(), 5)
			return len(items), err
		}},
		{name: "apps", path: "/api/v1/apps", call: func(s *Service) (int, error) {
			items, err := s.ListApps(context.Background(), 5)
			return len(items), err
		}},
		{name: "logs", path: "/api/v1/logs", call: func(s *Service) (int, error) {
			items, err := s.RecentLogs(context.Background(), 5)
			return len(items), err
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, tt.path, r.URL.Path)
				assert.Equal(t, "5", r.URL.Query().Get("limit"))
				assert.Equal(t, "Bearer okta-token", r.Header.Get("Authorization"))
				_, _ = w.Write([]byte(`[{"id":"1"},{"id":"2"}]`))
			})

			n, err := tt.call(svc)
			require.NoError(t, err)
			assert.Equal(t, 2, n)
		})
	}
}

func TestService_ListError(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"errorCode":"E0000006","errorSummary":"You do not have permission"}`))
	})

	_, err := svc.ListUsers(context.Background(), 1)

	var dirErr *directory.DirectoryError
	require.ErrorAs(t, err, &dirErr)
	assert.Equal(t, http.StatusForbidden, dirErr.Status)
	assert.Contains(t, dirErr.Body, "E0000006")
}

func TestService_ListNotAnArray(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":"1"}`))
	})

	_, err := svc.ListApps(context.Background(), 1)

	var shapeErr *directory.UnexpectedShapeError
	assert.ErrorAs(t, err, &shapeErr)
}
