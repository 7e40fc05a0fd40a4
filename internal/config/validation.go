package config

import (
	"fmt"
	"net/url"
	"slices"
	"strings"

	"sentinelmind/pkg/logging"
)

// ValidationError represents a validation error with context
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

// Error implements the error interface
func (ve ValidationError) Error() string {
	if ve.Field == "" {
		return ve.Message
	}
	return fmt.Sprintf("field '%s': %s", ve.Field, ve.Message)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

// Error implements the error interface for multiple validation errors
func (ve ValidationErrors) Error() string {
	if len(ve) == 0 {
		return "no validation errors"
	}
	if len(ve) == 1 {
		return ve[0].Error()
	}

	var messages []string
	for _, err := range ve {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(messages, "; "))
}

// HasErrors returns true if there are any validation errors
func (ve ValidationErrors) HasErrors() bool {
	return len(ve) > 0
}

// Add adds a new validation error
func (ve *ValidationErrors) Add(field, message string, value ...interface{}) {
	var val interface{}
	if len(value) > 0 {
		val = value[0]
	}
	*ve = append(*ve, ValidationError{
		Field:   field,
		Value:   val,
		Message: message,
	})
}

// Validate checks the configuration and returns ValidationErrors describing
// every problem found.
func (c Config) Validate() error {
	var errs ValidationErrors

	switch c.Server.Transport {
	case TransportStdio:
	case TransportStreamableHTTP:
		if c.Server.Port < 1 || c.Server.Port > 65535 {
			errs.Add("server.port", "must be between 1 and 65535", c.Server.Port)
		}
	default:
		errs.Add("server.transport", fmt.Sprintf("must be one of: %s, %s", TransportStdio, TransportStreamableHTTP), c.Server.Transport)
	}

	if _, err := logging.ParseLevel(c.Logging.Level); err != nil {
		errs.Add("logging.level", err.Error(), c.Logging.Level)
	}

	if c.Directory.TimeoutSeconds < 0 {
		errs.Add("directory.timeoutSeconds", "must not be negative", c.Directory.TimeoutSeconds)
	}
	if c.Directory.RequestsPerSecond < 0 {
		errs.Add("directory.requestsPerSecond", "must not be negative", c.Directory.RequestsPerSecond)
	}

	if c.EntraConfigured() {
		requireAll(&errs, "entra", map[string]string{
			EnvTenantID:     c.Entra.TenantID,
			EnvClientID:     c.Entra.ClientID,
			EnvClientSecret: c.Entra.ClientSecret,
		})
	}

	if c.OktaConfigured() {
		requireAll(&errs, "okta", map[string]string{
			EnvOktaOrgURL:   c.Okta.OrgURL,
			EnvOktaClientID: c.Okta.ClientID,
			EnvOktaKeyID:    c.Okta.KeyID,
			EnvOktaPEMPath:  c.Okta.PrivateKeyPath,
			EnvOktaScopes:   c.Okta.Scopes,
		})
		if c.Okta.OrgURL != "" {
			if u, err := url.Parse(c.Okta.OrgURL); err != nil || u.Host == "" || (u.Scheme != "https" && u.Scheme != "http") {
				errs.Add("okta.orgUrl", "must be an absolute http(s) URL", c.Okta.OrgURL)
			}
		}
	}

	if !c.EntraConfigured() && !c.OktaConfigured() {
		errs.Add("", fmt.Sprintf("no identity provider configured: set %s/%s/%s or the %s* variables",
			EnvTenantID, EnvClientID, EnvClientSecret, "OKTA_"))
	}

	if errs.HasErrors() {
		return errs
	}
	return nil
}

// requireAll reports every empty setting of a partially configured provider.
func requireAll(errs *ValidationErrors, provider string, settings map[string]string) {
	var missing []string
	for name, value := range settings {
		if strings.TrimSpace(value) == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) == 0 {
		return
	}
	slices.Sort(missing)
	errs.Add(provider, fmt.Sprintf("partially configured, missing %s", strings.Join(missing, ", ")))
}
