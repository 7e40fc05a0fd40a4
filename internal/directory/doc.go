// Package directory is a thin authenticated JSON client for identity
// directory APIs (Microsoft Graph, Okta management API).
//
// Every request carries a bearer token obtained from a token source, usually
// an oauth.TokenCache. A non-2xx response becomes a *DirectoryError with the
// status, URL and whatever part of the body could be read. Successful
// PATCH/POST calls without a body (204 No Content) return {"ok":true}.
//
// The client makes a single attempt per call; callers decide whether to retry.
package directory
