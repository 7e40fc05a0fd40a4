package oauth

import (
	"errors"
	"fmt"

	"golang.org/x/oauth2"
)

// AuthError reports a failed token request: a network failure, a non-2xx
// response from the token endpoint, or a response without an access token.
type AuthError struct {
	// Provider names the token provider, e.g. "entra" or "okta".
	Provider string
	// Status is the HTTP status of the token endpoint response, or 0 when
	// no response was received.
	Status int
	// Body is the token endpoint response body with token fields redacted.
	Body string
	// Err is the underlying cause, if any.
	Err error
}

func (e *AuthError) Error() string {
	if e.Status > 0 {
		if e.Body != "" {
			return fmt.Sprintf("%s token request failed: HTTP %d. Body: %s", e.Provider, e.Status, e.Body)
		}
		return fmt.Sprintf("%s token request failed: HTTP %d", e.Provider, e.Status)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s token request failed: %v", e.Provider, e.Err)
	}
	return fmt.Sprintf("%s token request failed", e.Provider)
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

// newAuthError converts an x/oauth2 error into an AuthError, lifting the
// status and redacted body out of an oauth2.RetrieveError.
func newAuthError(provider string, err error) *AuthError {
	authErr := &AuthError{Provider: provider, Err: err}

	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) {
		if retrieveErr.Response != nil {
			authErr.Status = retrieveErr.Response.StatusCode
		}
		authErr.Body = RedactTokenFields(string(retrieveErr.Body))
		// The RetrieveError message embeds the raw body.
		authErr.Err = nil
	}

	return authErr
}
