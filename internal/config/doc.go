// Package config loads sentinelmind configuration.
//
// Configuration comes from an optional YAML file overlaid by environment
// variables; the environment always wins. The variables are:
//
//	TENANT_ID, CLIENT_ID, CLIENT_SECRET        Entra confidential client
//	OKTA_ORG_URL, OKTA_OAUTH_CLIENT_ID,
//	OKTA_OAUTH_KID, OKTA_OAUTH_PEM_PATH,
//	OKTA_OAUTH_SCOPES                          Okta service app
//	ALLOW_WRITE_ACTIONS                        boolean, default false
//	SENTINEL_LOG_FILE                          rotate logs into this file
//
// ALLOW_WRITE_ACTIONS is parsed with strconv.ParseBool. Values such as
// "false", "0" or "FALSE" disable writes; anything unparseable is rejected at
// startup instead of being treated as enabled.
//
// At least one identity provider must be fully configured. A provider with
// only some of its settings present is an error rather than being silently
// skipped.
package config
