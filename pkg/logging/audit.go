package logging

import (
	"context"
	"log/slog"
)

// AuditEvent describes a security-relevant decision about a write action.
type AuditEvent struct {
	// Action is the tool-level action tag, e.g. "disable_service_principal".
	Action string
	// Outcome is a lifecycle state such as "GATED", "BLOCKED", "SUCCEEDED" or "FAILED".
	Outcome string
	// Target is the identifier of the directory object the action touches.
	Target string
	// Reasons lists blocking reasons for a blocked decision.
	Reasons []string
	// Error carries the failure for a failed execution.
	Error error
}

// Audit records an audit event at INFO with an [AUDIT] prefix so log
// pipelines can filter them.
func Audit(event AuditEvent) {
	logger := Logger()

	attrs := []slog.Attr{
		slog.String("subsystem", "Audit"),
		slog.String("action", event.Action),
		slog.String("outcome", event.Outcome),
		slog.String("target", TruncateID(event.Target)),
	}
	if len(event.Reasons) > 0 {
		attrs = append(attrs, slog.Any("reasons", event.Reasons))
	}
	if event.Error != nil {
		attrs = append(attrs, slog.String("error", event.Error.Error()))
	}

	logger.LogAttrs(context.Background(), slog.LevelInfo, "[AUDIT] "+event.Action, attrs...)
}

// TruncateID shortens an identifier for logging. Directory object ids are
// not secret but full values make log lines noisy.
func TruncateID(id string) string {
	const keep = 8
	if len(id) <= keep {
		return id
	}
	return id[:keep] + "..."
}
