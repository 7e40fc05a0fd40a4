package directory

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"sentinelmind/internal/oauth"
	"sentinelmind/pkg/logging"
)

// DefaultHTTPTimeout bounds a single directory request.
const DefaultHTTPTimeout = 30 * time.Second

// maxErrorBody caps how much of an error response is kept.
const maxErrorBody = 64 << 10

var okResult = json.RawMessage(`{"ok":true}`)

// TokenSource supplies bearer tokens. *oauth.TokenCache implements it.
type TokenSource interface {
	Token(ctx context.Context) (oauth.RedactedToken, error)
}

// RequestObserver is notified after every request that reached the network.
// status is 0 when no response was received.
type RequestObserver func(directory, method string, status int, elapsed time.Duration)

// Client performs authenticated JSON requests against one directory.
type Client struct {
	name       string
	tokens     TokenSource
	httpClient *http.Client
	limiter    *rate.Limiter
	observer   RequestObserver
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithRateLimit paces outgoing requests to rps per second with the given
// burst. A non-positive rps disables pacing.
func WithRateLimit(rps float64, burst int) ClientOption {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithRequestObserver registers fn to be called after each request.
func WithRequestObserver(fn RequestObserver) ClientOption {
	return func(c *Client) {
		c.observer = fn
	}
}

// NewClient creates a client for the directory called name (used in errors,
// logs and metrics) that authenticates with tokens.
func NewClient(name string, tokens TokenSource, opts ...ClientOption) *Client {
	c := &Client{
		name:       name,
		tokens:     tokens,
		httpClient: &http.Client{Timeout: DefaultHTTPTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Name returns the directory name.
func (c *Client) Name() string {
	return c.name
}

// Get fetches url and returns the JSON body.
func (c *Client) Get(ctx context.Context, url string) (json.RawMessage, error) {
	return c.do(ctx, http.MethodGet, url, nil)
}

// Patch sends body as JSON to url.
func (c *Client) Patch(ctx context.Context, url string, body any) (json.RawMessage, error) {
	return c.do(ctx, http.MethodPatch, url, body)
}

// Post sends body as JSON to url. A nil body sends an empty request.
func (c *Client) Post(ctx context.Context, url string, body any) (json.RawMessage, error) {
	return c.do(ctx, http.MethodPost, url, body)
}

func (c *Client) do(ctx context.Context, method, url string, body any) (json.RawMessage, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("waiting for %s request slot: %w", c.name, err)
		}
	}

	token, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, err
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode %s request body: %w", method, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to build %s request: %w", method, err)
	}
	req.Header.Set("Authorization", "Bearer "+token.Value())
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	started := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.observe(method, 0, started)
		return nil, fmt.Errorf("%s %s request failed: %w", c.name, method, err)
	}
	defer resp.Body.Close()
	c.observe(method, resp.StatusCode, started)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		dirErr := &DirectoryError{
			Directory: c.name,
			Method:    method,
			Status:    resp.StatusCode,
			URL:       url,
			Body:      readBestEffort(resp.Body),
		}
		logging.Warn("DirectoryClient", "%s %s returned HTTP %d", c.name, method, resp.StatusCode)
		return nil, dirErr
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s %s response: %w", c.name, method, err)
	}
	if resp.StatusCode == http.StatusNoContent || len(bytes.TrimSpace(data)) == 0 {
		return okResult, nil
	}
	if !json.Valid(data) {
		// The write already happened; only reads depend on the body.
		if method != http.MethodGet {
			logging.Debug("DirectoryClient", "%s %s returned a non-JSON body, treating as ok", c.name, method)
			return okResult, nil
		}
		return nil, &UnexpectedShapeError{Expected: "JSON body"}
	}

	return json.RawMessage(data), nil
}

func (c *Client) observe(method string, status int, started time.Time) {
	if c.observer != nil {
		c.observer(c.name, method, status, time.Since(started))
	}
}

// readBestEffort returns whatever could be read from r. Read failures yield
// an empty string rather than masking the status error.
func readBestEffort(r io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(r, maxErrorBody))
	if err != nil {
		return ""
	}
	return string(data)
}
