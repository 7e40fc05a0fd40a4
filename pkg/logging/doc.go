// Package logging provides the structured logging used across sentinelmind.
//
// It is a thin layer over log/slog that tags every record with a subsystem
// and supports two sinks:
//
//   - a stream (stderr by default; stdout is reserved for the stdio MCP transport)
//   - a size-rotated file, backed by lumberjack
//
// # Usage
//
//	logging.InitForCLI(logging.LevelInfo, os.Stderr)
//
//	logging.Info("Bootstrap", "Starting sentinelmind %s", version)
//	logging.Debug("TokenCache", "Refreshing token for %s", providerName)
//	logging.Error("Directory", err, "GET %s failed", url)
//
// # Audit Logging
//
// Decisions about state-changing actions are recorded with Audit:
//
//	logging.Audit(logging.AuditEvent{
//	    Action:  "disable_service_principal",
//	    Outcome: "BLOCKED",
//	    Target:  servicePrincipalID,
//	    Reasons: decision.BlockingReasons,
//	})
//
// Audit events are logged at INFO level with an [AUDIT] prefix for easy
// filtering by log aggregation systems.
//
// Secrets must never be passed to this package. Token values are wrapped in
// oauth.RedactedToken and token endpoint bodies are redacted before logging.
package logging
