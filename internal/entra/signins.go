package entra

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"sentinelmind/internal/directory"
	"sentinelmind/pkg/logging"
)

const signInTimeLayout = "2006-01-02T15:04:05.000Z07:00"

// SignInQuery selects recent sign-in events.
type SignInQuery struct {
	WindowMinutes int
	// UserPrincipalName restricts results to one user when set.
	UserPrincipalName string
	Top               int
}

// SignInReport is the normalized result of RecentSignIns.
type SignInReport struct {
	WindowMinutes int           `json:"windowMinutes"`
	Count         int           `json:"count"`
	Events        []SignInEvent `json:"events"`
}

type SignInEvent struct {
	CreatedDateTime         *string       `json:"createdDateTime,omitempty"`
	UserPrincipalName       *string       `json:"userPrincipalName,omitempty"`
	UserID                  *string       `json:"userId,omitempty"`
	IPAddress               *string       `json:"ipAddress,omitempty"`
	AppDisplayName          *string       `json:"appDisplayName,omitempty"`
	ResourceDisplayName     *string       `json:"resourceDisplayName,omitempty"`
	ClientAppUsed           *string       `json:"clientAppUsed,omitempty"`
	IsInteractive           *bool         `json:"isInteractive,omitempty"`
	ConditionalAccessStatus *string       `json:"conditionalAccessStatus,omitempty"`
	Status                  string        `json:"status"`
	FailureReason           *string       `json:"failureReason,omitempty"`
	RiskLevelAggregated     *string       `json:"riskLevelAggregated,omitempty"`
	RiskState               *string       `json:"riskState,omitempty"`
	DeviceDetail            *DeviceDetail `json:"deviceDetail,omitempty"`
	Location                *Location     `json:"location,omitempty"`
}

type DeviceDetail struct {
	OperatingSystem *string `json:"operatingSystem,omitempty"`
	Browser         *string `json:"browser,omitempty"`
	DeviceID        *string `json:"deviceId,omitempty"`
	TrustType       *string `json:"trustType,omitempty"`
}

type Location struct {
	City            *string `json:"city,omitempty"`
	State           *string `json:"state,omitempty"`
	CountryOrRegion *string `json:"countryOrRegion,omitempty"`
}

// graphSignIn mirrors the fields read from a Graph signIn resource.
type graphSignIn struct {
	SignInEvent
	Status *struct {
		ErrorCode     *int    `json:"errorCode"`
		FailureReason *string `json:"failureReason"`
	} `json:"status"`
}

// RecentSignIns returns sign-in events newer than the query window, newest
// first.
func (s *Service) RecentSignIns(ctx context.Context, q SignInQuery) (*SignInReport, error) {
	start := s.clock.Now().Add(-time.Duration(q.WindowMinutes) * time.Minute).UTC()

	filters := []string{"createdDateTime ge " + start.Format(signInTimeLayout)}
	if q.UserPrincipalName != "" {
		// OData string literals escape a quote by doubling it.
		upn := strings.ReplaceAll(q.UserPrincipalName, "'", "''")
		filters = append(filters, fmt.Sprintf("userPrincipalName eq '%s'", upn))
	}

	u := fmt.Sprintf("%s/auditLogs/signIns?$top=%d&$orderby=%s&$filter=%s",
		s.baseURL, q.Top, odataQuery("createdDateTime desc"), odataQuery(strings.Join(filters, " and ")))

	raw, err := s.dir.Get(ctx, u)
	if err != nil {
		return nil, fmt.Errorf("list sign-ins: %w", err)
	}

	items, err := directory.DecodeList(raw)
	if err != nil {
		logging.Error("Entra", err, "Unexpected Graph response shape")
		return nil, err
	}

	report := &SignInReport{
		WindowMinutes: q.WindowMinutes,
		Events:        make([]SignInEvent, 0, len(items)),
	}
	for _, item := range items {
		var in graphSignIn
		if err := json.Unmarshal(item, &in); err != nil {
			return nil, &directory.UnexpectedShapeError{Expected: "sign-in event object", Err: err}
		}
		report.Events = append(report.Events, normalizeSignIn(in))
	}
	report.Count = len(report.Events)

	return report, nil
}

func normalizeSignIn(in graphSignIn) SignInEvent {
	ev := in.SignInEvent
	ev.Status = "failure"
	if in.Status != nil {
		if in.Status.ErrorCode != nil && *in.Status.ErrorCode == 0 {
			ev.Status = "success"
		}
		ev.FailureReason = in.Status.FailureReason
	}
	return ev
}
