package directory

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sentinelmind/internal/oauth"
)

type staticTokens struct {
	token string
	err   error
	calls atomic.Int32
}

func (s *staticTokens) Token(ctx context.Context) (oauth.RedactedToken, error) {
	s.calls.Add(1)
	if s.err != nil {
		return oauth.RedactedToken{}, s.err
	}
	return oauth.NewRedactedToken(s.token), nil
}

func TestClient_Get(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "Bearer tok-1", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"abc"}`))
	}))
	defer srv.Close()

	c := NewClient("graph", &staticTokens{token: "tok-1"})
	raw, err := c.Get(context.Background(), srv.URL+"/servicePrincipals/abc")
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"abc"}`, string(raw))
}

func TestClient_NonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":{"code":"Request_ResourceNotFound"}}`))
	}))
	defer srv.Close()

	url := srv.URL + "/servicePrincipals/missing"
	c := NewClient("graph", &staticTokens{token: "t"})
	_, err := c.Get(context.Background(), url)

	var dirErr *DirectoryError
	require.ErrorAs(t, err, &dirErr)
	assert.Equal(t, http.StatusNotFound, dirErr.Status)
	assert.Equal(t, url, dirErr.URL)
	assert.Equal(t, http.MethodGet, dirErr.Method)
	assert.Contains(t, dirErr.Body, "Request_ResourceNotFound")
	assert.Contains(t, dirErr.Error(), "HTTP 404")
}

type failingBody struct{}

func (failingBody) Read([]byte) (int, error) { return 0, errors.New("connection reset") }
func (failingBody) Close() error             { return nil }

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

func TestClient_ErrorBodyReadFailureYieldsEmptyBody(t *testing.T) {
	transport := roundTripFunc(func(r *http.Request) (*http.Response, error) {
		return &http.Response{
			StatusCode: http.StatusBadGateway,
			Body:       failingBody{},
			Header:     http.Header{},
			Request:    r,
		}, nil
	})

	c := NewClient("okta", &staticTokens{token: "t"}, WithHTTPClient(&http.Client{Transport: transport}))
	_, err := c.Get(context.Background(), "https://example.okta.com/api/v1/users")

	var dirErr *DirectoryError
	require.ErrorAs(t, err, &dirErr)
	assert.Equal(t, http.StatusBadGateway, dirErr.Status)
	assert.Empty(t, dirErr.Body)
}

func TestClient_PatchNoContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		body, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"accountEnabled":false}`, string(body))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := NewClient("graph", &staticTokens{token: "t"})
	raw, err := c.Patch(context.Background(), srv.URL, map[string]any{"accountEnabled": false})
	require.NoError(t, err)
	assert.JSONEq(t, `{"ok":true}`, string(raw))
}

func TestClient_PostWithoutBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Empty(t, r.Header.Get("Content-Type"))
		_, _ = w.Write([]byte(`{"value":true}`))
	}))
	defer srv.Close()

	c := NewClient("graph", &staticTokens{token: "t"})
	raw, err := c.Post(context.Background(), srv.URL, nil)
	require.NoError(t, err)
	assert.JSONEq(t, `{"value":true}`, string(raw))
}

func TestClient_TokenFailureSkipsRequest(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer srv.Close()

	authErr := &oauth.AuthError{Provider: "entra", Status: 401}
	c := NewClient("graph", &staticTokens{err: authErr})
	_, err := c.Get(context.Background(), srv.URL)

	var got *oauth.AuthError
	require.ErrorAs(t, err, &got)
	assert.Equal(t, 401, got.Status)
	assert.Equal(t, int32(0), hits.Load())
}

func TestClient_InvalidJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>gateway</html>`))
	}))
	defer srv.Close()

	c := NewClient("graph", &staticTokens{token: "t"})
	_, err := c.Get(context.Background(), srv.URL)

	var shapeErr *UnexpectedShapeError
	assert.ErrorAs(t, err, &shapeErr)
}

func TestClient_WriteWithNonJSONBodySucceeds(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte("OK"))
	}))
	defer srv.Close()

	c := NewClient("graph", &staticTokens{token: "t"})

	raw, err := c.Post(context.Background(), srv.URL, nil)
	require.NoError(t, err)
	assert.JSONEq(t, `{"ok":true}`, string(raw))

	raw, err = c.Patch(context.Background(), srv.URL, map[string]any{"accountEnabled": false})
	require.NoError(t, err)
	assert.JSONEq(t, `{"ok":true}`, string(raw))

	_, err = c.Get(context.Background(), srv.URL)
	var shapeErr *UnexpectedShapeError
	assert.ErrorAs(t, err, &shapeErr)
}

func TestClient_Observer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	var observed []string
	c := NewClient("graph", &staticTokens{token: "t"},
		WithRequestObserver(func(directory, method string, status int, _ time.Duration) {
			observed = append(observed, directory+" "+method+" "+http.StatusText(status))
		}))

	_, _ = c.Get(context.Background(), srv.URL)
	assert.Equal(t, []string{"graph GET Forbidden"}, observed)
}

func TestClient_RateLimitHonoursContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := NewClient("okta", &staticTokens{token: "t"}, WithRateLimit(0.001, 1))

	_, err := c.Get(context.Background(), srv.URL)
	require.NoError(t, err, "first request uses the burst")

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = c.Get(ctx, srv.URL)
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "request slot"))
}

func TestDecodeList(t *testing.T) {
	items, err := DecodeList(json.RawMessage(`{"value":[{"id":"1"},{"id":"2"}]}`))
	require.NoError(t, err)
	assert.Len(t, items, 2)

	items, err = DecodeList(json.RawMessage(`{"value":[]}`))
	require.NoError(t, err)
	assert.Empty(t, items)

	var shapeErr *UnexpectedShapeError
	_, err = DecodeList(json.RawMessage(`{"ok":true}`))
	assert.ErrorAs(t, err, &shapeErr)

	_, err = DecodeList(json.RawMessage(`[1,2]`))
	assert.ErrorAs(t, err, &shapeErr)
}

func TestDecodeArray(t *testing.T) {
	items, err := DecodeArray(json.RawMessage(`[{"id":"00u1"}]`))
	require.NoError(t, err)
	assert.Len(t, items, 1)

	items, err = DecodeArray(json.RawMessage(`null`))
	require.NoError(t, err)
	assert.NotNil(t, items)

	var shapeErr *UnexpectedShapeError
	_, err = DecodeArray(json.RawMessage(`{"errorCode":"E0000011"}`))
	assert.ErrorAs(t, err, &shapeErr)
}
