// Package approval decides whether a state-changing action may run.
package approval

// Blocking reasons, in evaluation order.
const (
	ReasonWritesDisabled = "ALLOW_WRITE_ACTIONS is false"
	ReasonNotApproved    = "approved is not true"
	ReasonDryRun         = "dryRun is true"
)

// Request describes a write action awaiting a decision.
type Request struct {
	Action        string
	TargetID      string
	Justification string
	Approved      bool
	DryRun        bool
}

// Decision is the gate outcome. It is returned to callers verbatim, so the
// JSON names follow the tool payloads.
type Decision struct {
	Action              string   `json:"action"`
	TargetID            string   `json:"targetId"`
	Approved            bool     `json:"approved"`
	DryRun              bool     `json:"dryRun"`
	WriteActionsEnabled bool     `json:"allowWriteActions"`
	Justification       string   `json:"justification"`
	CanExecute          bool     `json:"canExecute"`
	BlockingReasons     []string `json:"reasons"`
}

// Evaluate checks every condition and collects all failures rather than
// stopping at the first one.
func Evaluate(req Request, writeActionsEnabled bool) Decision {
	reasons := []string{}
	if !writeActionsEnabled {
		reasons = append(reasons, ReasonWritesDisabled)
	}
	if !req.Approved {
		reasons = append(reasons, ReasonNotApproved)
	}
	if req.DryRun {
		reasons = append(reasons, ReasonDryRun)
	}

	return Decision{
		Action:              req.Action,
		TargetID:            req.TargetID,
		Approved:            req.Approved,
		DryRun:              req.DryRun,
		WriteActionsEnabled: writeActionsEnabled,
		Justification:       req.Justification,
		CanExecute:          len(reasons) == 0,
		BlockingReasons:     reasons,
	}
}
