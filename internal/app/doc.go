// Package app bootstraps sentinelmind: it loads configuration, initializes
// logging, builds the identity providers, directory clients and tool
// registry, and runs the MCP server on the selected transport.
//
// # Bootstrap sequence
//
//  1. Logging starts on stderr so configuration errors are visible.
//  2. Configuration is loaded from the optional YAML file and the
//     environment, then command line overrides are applied and validated.
//  3. Logging is re-initialized with the configured level, switching to a
//     rotating file when logging.file is set.
//  4. Services are created for every configured provider (see services.go).
//
// # Transports
//
// stdio (default) serves MCP frames on stdin/stdout. Nothing else may write
// to stdout in this mode.
//
// streamable-http listens on server.host:server.port and serves MCP on /mcp
// and Prometheus metrics on /metrics.
//
// Both transports stop when the context passed to Application.Run is
// cancelled; the command layer cancels it on SIGINT and SIGTERM.
package app
