// Package risk scores service principals from directory metadata.
//
// Scoring is additive over a fixed, ordered rule set and is a pure function
// of the snapshot and the evaluation time.
package risk

import "time"

// Level is the risk tier derived from a score.
type Level string

const (
	LevelLow    Level = "LOW"
	LevelMedium Level = "MEDIUM"
	LevelHigh   Level = "HIGH"
)

const (
	// ExpiryWindowDays is how close to expiry a credential must be to count.
	ExpiryWindowDays = 30
	// RecentCreationDays is the age below which a principal counts as new.
	RecentCreationDays = 30
	// AssignmentThreshold is the count above which assignments are flagged.
	AssignmentThreshold = 10

	mediumThreshold = 30
	highThreshold   = 60
)

// Signal texts, in rule order.
const (
	SignalNoOwners        = "No owners assigned"
	SignalSecretExpiring  = "Client secret expires within 30 days"
	SignalCertExpiring    = "Certificate expires within 30 days"
	SignalManyAssignments = "High number of app role assignments"
	SignalManyAssignedTo  = "Many principals assigned to this app"
	SignalRecentlyCreated = "Recently created service principal"
)

// PasswordCredential is a client secret registered on a service principal.
type PasswordCredential struct {
	KeyID       string
	DisplayName string
	Start       *time.Time
	End         *time.Time
}

// KeyCredential is a certificate registered on a service principal.
type KeyCredential struct {
	KeyID       string
	DisplayName string
	Type        string
	Usage       string
	Start       *time.Time
	End         *time.Time
}

// Snapshot is the subset of service principal state the scorer looks at.
type Snapshot struct {
	ID                  string
	DisplayName         string
	AppID               string
	Type                string
	CreatedAt           *time.Time
	Enabled             *bool
	PasswordCredentials []PasswordCredential
	KeyCredentials      []KeyCredential
	OwnerCount          int
	// RoleAssignmentsOut counts app roles granted to this principal.
	RoleAssignmentsOut int
	// RoleAssignmentsIn counts principals granted roles on this app.
	RoleAssignmentsIn int
}

// Assessment is the scorer output.
type Assessment struct {
	Score   int      `json:"riskScore"`
	Level   Level    `json:"riskLevel"`
	Signals []string `json:"signals"`
}

// DaysUntil returns ceil((t - now) / 24h). Past times yield zero or negative
// values. A nil t yields nil.
func DaysUntil(t *time.Time, now time.Time) *int {
	if t == nil {
		return nil
	}
	const day = 24 * time.Hour
	d := t.Sub(now)
	days := int(d / day)
	if d%day > 0 {
		days++
	}
	return &days
}

// LevelFor maps a score to its tier.
func LevelFor(score int) Level {
	switch {
	case score >= highThreshold:
		return LevelHigh
	case score >= mediumThreshold:
		return LevelMedium
	default:
		return LevelLow
	}
}

// Score evaluates every rule in order against s at time now.
func Score(s Snapshot, now time.Time) Assessment {
	a := Assessment{Signals: []string{}}
	add := func(points int, signal string) {
		a.Score += points
		a.Signals = append(a.Signals, signal)
	}

	if s.OwnerCount == 0 {
		add(15, SignalNoOwners)
	}

	for _, c := range s.PasswordCredentials {
		if expiresSoon(c.End, now) {
			add(20, SignalSecretExpiring)
			break
		}
	}

	for _, c := range s.KeyCredentials {
		if expiresSoon(c.End, now) {
			add(10, SignalCertExpiring)
			break
		}
	}

	if s.RoleAssignmentsOut > AssignmentThreshold {
		add(15, SignalManyAssignments)
	}

	if s.RoleAssignmentsIn > AssignmentThreshold {
		add(10, SignalManyAssignedTo)
	}

	if age := DaysUntil(s.CreatedAt, now); age != nil && *age > -RecentCreationDays {
		add(10, SignalRecentlyCreated)
	}

	a.Level = LevelFor(a.Score)
	return a
}

// Already-expired credentials count as expiring.
func expiresSoon(end *time.Time, now time.Time) bool {
	days := DaysUntil(end, now)
	return days != nil && *days <= ExpiryWindowDays
}
