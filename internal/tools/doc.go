// Package tools exposes the Entra and Okta operations as MCP tools.
//
// Every tool has a JSON Schema for its arguments. Calls are validated against
// it before dispatch; a call that fails validation returns an MCP error result
// without touching any directory. Write tools (disable and revoke) run through
// the approval lifecycle: a blocked call is a successful result with
// "executed": false, never an error.
//
// Okta tools are only registered when an Okta client is configured, and the
// Entra tools only when a Graph client is.
package tools
