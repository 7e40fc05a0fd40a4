package oauth

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"sentinelmind/internal/clock"
	"sentinelmind/pkg/logging"
)

// RefreshMargin is subtracted from a token's expiry when deciding whether the
// cached token may still be handed out.
const RefreshMargin = 10 * time.Second

// RefreshObserver is notified after every token request made by a cache.
type RefreshObserver func(provider string, err error, elapsed time.Duration)

type cachedToken struct {
	token     RedactedToken
	expiresAt time.Time
}

// TokenCache holds the most recent token of one provider and refreshes it on
// demand. Concurrent callers that find the cache empty or stale share a
// single provider request.
type TokenCache struct {
	provider TokenProvider
	clock    clock.Clock
	observer RefreshObserver

	mu      sync.RWMutex
	current *cachedToken

	group singleflight.Group
}

// CacheOption configures a TokenCache.
type CacheOption func(*TokenCache)

// WithCacheClock sets the time source used for expiry decisions.
func WithCacheClock(c clock.Clock) CacheOption {
	return func(tc *TokenCache) {
		tc.clock = c
	}
}

// WithRefreshObserver registers fn to be called after each token request.
func WithRefreshObserver(fn RefreshObserver) CacheOption {
	return func(tc *TokenCache) {
		tc.observer = fn
	}
}

// NewTokenCache creates an empty cache in front of provider.
func NewTokenCache(provider TokenProvider, opts ...CacheOption) *TokenCache {
	tc := &TokenCache{provider: provider}
	for _, opt := range opts {
		opt(tc)
	}
	tc.clock = clock.OrReal(tc.clock)
	return tc
}

// Provider returns the name of the underlying provider.
func (tc *TokenCache) Provider() string {
	return tc.provider.Name()
}

// Token returns a valid access token, requesting a new one when the cached
// token is missing or within RefreshMargin of expiry.
func (tc *TokenCache) Token(ctx context.Context) (RedactedToken, error) {
	if tok, ok := tc.fresh(); ok {
		return tok, nil
	}

	result, err, shared := tc.group.Do("token", func() (interface{}, error) {
		// Another flight may have finished while we waited.
		if tok, ok := tc.fresh(); ok {
			return tok, nil
		}
		// The shared request must not be cancelled by whichever caller
		// happened to start it.
		return tc.refresh(context.WithoutCancel(ctx))
	})
	if err != nil {
		return RedactedToken{}, err
	}
	if shared {
		logging.Debug("TokenCache", "Shared in-flight %s token request", tc.provider.Name())
	}

	return result.(RedactedToken), nil
}

// Invalidate drops the cached token so the next Token call refreshes.
func (tc *TokenCache) Invalidate() {
	tc.mu.Lock()
	tc.current = nil
	tc.mu.Unlock()
}

// ExpiresAt reports the expiry of the cached token, if any.
func (tc *TokenCache) ExpiresAt() (time.Time, bool) {
	tc.mu.RLock()
	defer tc.mu.RUnlock()
	if tc.current == nil {
		return time.Time{}, false
	}
	return tc.current.expiresAt, true
}

func (tc *TokenCache) fresh() (RedactedToken, bool) {
	tc.mu.RLock()
	defer tc.mu.RUnlock()
	if tc.current == nil {
		return RedactedToken{}, false
	}
	if !tc.clock.Now().Before(tc.current.expiresAt.Add(-RefreshMargin)) {
		return RedactedToken{}, false
	}
	return tc.current.token, true
}

func (tc *TokenCache) refresh(ctx context.Context) (RedactedToken, error) {
	started := time.Now()
	issued, err := tc.provider.Issue(ctx)
	if tc.observer != nil {
		tc.observer(tc.provider.Name(), err, time.Since(started))
	}
	if err != nil {
		// A failed refresh leaves any previous entry in place; it is stale
		// and will be retried by the next caller.
		return RedactedToken{}, err
	}

	ttl := issued.TTL
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}

	tc.mu.Lock()
	tc.current = &cachedToken{
		token:     issued.AccessToken,
		expiresAt: tc.clock.Now().Add(ttl),
	}
	tc.mu.Unlock()

	logging.Debug("TokenCache", "Cached %s token for %s", tc.provider.Name(), ttl)
	return issued.AccessToken, nil
}
