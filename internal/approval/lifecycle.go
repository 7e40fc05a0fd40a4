package approval

import (
	"context"
	"encoding/json"

	"sentinelmind/pkg/logging"
)

// State is a write-action lifecycle state.
type State string

const (
	StateRequested State = "REQUESTED"
	StateGated     State = "GATED"
	StateBlocked   State = "BLOCKED"
	StateExecuting State = "EXECUTING"
	StateSucceeded State = "SUCCEEDED"
	StateFailed    State = "FAILED"
)

// Result is returned for both blocked and executed actions. A blocked action
// is a successful call with Executed=false.
type Result struct {
	OK       bool            `json:"ok"`
	Executed bool            `json:"executed"`
	Gate     Decision        `json:"gate"`
	Result   json.RawMessage `json:"result,omitempty"`
}

// ExecuteFunc performs the remote write once the gate has allowed it.
type ExecuteFunc func(ctx context.Context) (json.RawMessage, error)

// DecisionObserver is notified of every gate evaluation.
type DecisionObserver func(action string, canExecute bool)

// Lifecycle drives write actions through the gate.
type Lifecycle struct {
	writeActionsEnabled bool
	observer            DecisionObserver
}

// NewLifecycle creates a Lifecycle. writeActionsEnabled is the process-wide
// ALLOW_WRITE_ACTIONS setting.
func NewLifecycle(writeActionsEnabled bool, observer DecisionObserver) *Lifecycle {
	return &Lifecycle{writeActionsEnabled: writeActionsEnabled, observer: observer}
}

// WriteActionsEnabled reports the process-wide setting.
func (l *Lifecycle) WriteActionsEnabled() bool {
	return l.writeActionsEnabled
}

// Run evaluates req and calls exec only when the gate allows it. exec errors
// are returned unchanged; no retry is attempted.
func (l *Lifecycle) Run(ctx context.Context, req Request, exec ExecuteFunc) (Result, error) {
	logging.Debug("Approval", "%s %s on %s", StateRequested, req.Action, logging.TruncateID(req.TargetID))

	decision := Evaluate(req, l.writeActionsEnabled)
	if l.observer != nil {
		l.observer(req.Action, decision.CanExecute)
	}
	logging.Audit(logging.AuditEvent{
		Action:  req.Action,
		Outcome: string(StateGated),
		Target:  req.TargetID,
		Reasons: decision.BlockingReasons,
	})

	if !decision.CanExecute {
		logging.Audit(logging.AuditEvent{
			Action:  req.Action,
			Outcome: string(StateBlocked),
			Target:  req.TargetID,
			Reasons: decision.BlockingReasons,
		})
		return Result{OK: true, Executed: false, Gate: decision}, nil
	}

	logging.Info("Approval", "%s %s on %s", StateExecuting, req.Action, logging.TruncateID(req.TargetID))
	out, err := exec(ctx)
	if err != nil {
		logging.Audit(logging.AuditEvent{
			Action:  req.Action,
			Outcome: string(StateFailed),
			Target:  req.TargetID,
			Error:   err,
		})
		return Result{}, err
	}

	logging.Audit(logging.AuditEvent{
		Action:  req.Action,
		Outcome: string(StateSucceeded),
		Target:  req.TargetID,
	})
	return Result{OK: true, Executed: true, Gate: decision, Result: out}, nil
}
