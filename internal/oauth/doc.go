// Package oauth acquires and caches the access tokens sentinelmind uses to
// call identity-provider APIs.
//
// # Flows
//
// Two OAuth2 client-credentials variants are supported:
//
//   - SecretFlow: confidential client authenticating with a shared secret
//     (Microsoft Entra ID, scope https://graph.microsoft.com/.default)
//   - AssertionFlow: client authenticating with a signed RS256 JWT client
//     assertion (Okta private_key_jwt)
//
// Both implement TokenProvider and report failures as *AuthError.
//
// # Caching
//
// TokenCache wraps exactly one TokenProvider. A cached token is reused while
// now < expiresAt - 10s. Refreshes are deduplicated with singleflight, so any
// number of concurrent callers hitting an empty or expired cache cause a
// single token request.
//
// # Security
//
// Tokens are held in memory only. Token values handed out by the cache are
// wrapped in RedactedToken, and token endpoint error bodies have their token
// fields replaced by [REDACTED] before they are logged or returned.
package oauth
