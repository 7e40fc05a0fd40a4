package entra

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"sentinelmind/internal/directory"
	"sentinelmind/internal/risk"
	"sentinelmind/pkg/logging"
)

const (
	servicePrincipalSelect = "id,displayName,appId,servicePrincipalType,createdDateTime,accountEnabled,passwordCredentials,keyCredentials"
	ownerSelect            = "id,displayName,userPrincipalName"
	assignmentPageSize     = 200
)

// InvestigateRequest selects what an investigation fetches.
type InvestigateRequest struct {
	ServicePrincipalID string
	IncludeAssignments bool
	IncludeOwners      bool
}

// Investigation is the normalized investigation result.
type Investigation struct {
	ServicePrincipal ServicePrincipal  `json:"servicePrincipal"`
	Owners           []Owner           `json:"owners"`
	Credentials      Credentials       `json:"credentials"`
	Assignments      *AssignmentCounts `json:"assignments"`
	RiskAssessment   risk.Assessment   `json:"riskAssessment"`
}

type ServicePrincipal struct {
	ID                   string  `json:"id"`
	DisplayName          *string `json:"displayName"`
	AppID                *string `json:"appId"`
	ServicePrincipalType *string `json:"servicePrincipalType"`
	CreatedDateTime      *string `json:"createdDateTime"`
	AccountEnabled       *bool   `json:"accountEnabled"`
}

type Owner struct {
	ID                string  `json:"id"`
	DisplayName       *string `json:"displayName,omitempty"`
	UserPrincipalName *string `json:"userPrincipalName,omitempty"`
}

type Credentials struct {
	PasswordCredentials []PasswordCredential `json:"passwordCredentials"`
	KeyCredentials      []KeyCredential      `json:"keyCredentials"`
}

// PasswordCredential is a client secret with its remaining lifetime in days.
// DaysRemaining is null when the secret has no parseable end date.
type PasswordCredential struct {
	KeyID         *string `json:"keyId,omitempty"`
	DisplayName   *string `json:"displayName,omitempty"`
	StartDateTime *string `json:"startDateTime,omitempty"`
	EndDateTime   *string `json:"endDateTime,omitempty"`
	DaysRemaining *int    `json:"daysRemaining"`
}

// KeyCredential is a certificate with its remaining lifetime in days.
type KeyCredential struct {
	KeyID         *string `json:"keyId,omitempty"`
	DisplayName   *string `json:"displayName,omitempty"`
	Type          *string `json:"type,omitempty"`
	Usage         *string `json:"usage,omitempty"`
	StartDateTime *string `json:"startDateTime,omitempty"`
	EndDateTime   *string `json:"endDateTime,omitempty"`
	DaysRemaining *int    `json:"daysRemaining"`
}

type AssignmentCounts struct {
	AppRoleAssignmentsCount int `json:"appRoleAssignmentsCount"`
	AppRoleAssignedToCount  int `json:"appRoleAssignedToCount"`
}

// graphServicePrincipal mirrors the $select'ed Graph resource.
type graphServicePrincipal struct {
	ID                   *string              `json:"id"`
	DisplayName          *string              `json:"displayName"`
	AppID                *string              `json:"appId"`
	ServicePrincipalType *string              `json:"servicePrincipalType"`
	CreatedDateTime      *string              `json:"createdDateTime"`
	AccountEnabled       *bool                `json:"accountEnabled"`
	PasswordCredentials  []PasswordCredential `json:"passwordCredentials"`
	KeyCredentials       []KeyCredential      `json:"keyCredentials"`
}

// InvestigateServicePrincipal fetches the principal, then its owners and
// role assignments concurrently, and scores the result.
func (s *Service) InvestigateServicePrincipal(ctx context.Context, req InvestigateRequest) (*Investigation, error) {
	spURL := s.servicePrincipalURL(req.ServicePrincipalID)

	raw, err := s.dir.Get(ctx, spURL+"?$select="+servicePrincipalSelect)
	if err != nil {
		return nil, fmt.Errorf("get service principal: %w", err)
	}

	var sp graphServicePrincipal
	if err := directory.DecodeObject(raw, &sp); err != nil {
		logging.Error("Entra", err, "Unexpected servicePrincipal shape")
		return nil, err
	}
	if sp.ID == nil || *sp.ID == "" {
		err := &directory.UnexpectedShapeError{Expected: "service principal with an id"}
		logging.Error("Entra", err, "Unexpected servicePrincipal shape")
		return nil, err
	}

	var owners []json.RawMessage
	var assignedOut, assignedIn []json.RawMessage

	g, gctx := errgroup.WithContext(ctx)
	if req.IncludeOwners {
		g.Go(func() error {
			var err error
			owners, err = s.getList(gctx, spURL+"/owners?$select="+ownerSelect)
			return err
		})
	}
	if req.IncludeAssignments {
		g.Go(func() error {
			var err error
			assignedOut, err = s.getList(gctx, fmt.Sprintf("%s/appRoleAssignments?$top=%d", spURL, assignmentPageSize))
			return err
		})
		g.Go(func() error {
			var err error
			assignedIn, err = s.getList(gctx, fmt.Sprintf("%s/appRoleAssignedTo?$top=%d", spURL, assignmentPageSize))
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	now := s.clock.Now()
	inv := &Investigation{
		ServicePrincipal: ServicePrincipal{
			ID:                   *sp.ID,
			DisplayName:          nonEmpty(sp.DisplayName),
			AppID:                nonEmpty(sp.AppID),
			ServicePrincipalType: nonEmpty(sp.ServicePrincipalType),
			CreatedDateTime:      nonEmpty(sp.CreatedDateTime),
			AccountEnabled:       sp.AccountEnabled,
		},
		Owners: normalizeOwners(owners),
		Credentials: Credentials{
			PasswordCredentials: make([]PasswordCredential, 0, len(sp.PasswordCredentials)),
			KeyCredentials:      make([]KeyCredential, 0, len(sp.KeyCredentials)),
		},
	}

	snapshot := risk.Snapshot{
		ID:                 *sp.ID,
		CreatedAt:          parseGraphTime(sp.CreatedDateTime),
		Enabled:            sp.AccountEnabled,
		OwnerCount:         len(owners),
		RoleAssignmentsOut: len(assignedOut),
		RoleAssignmentsIn:  len(assignedIn),
	}

	for _, c := range sp.PasswordCredentials {
		end := parseGraphTime(c.EndDateTime)
		c.DaysRemaining = risk.DaysUntil(end, now)
		inv.Credentials.PasswordCredentials = append(inv.Credentials.PasswordCredentials, c)
		snapshot.PasswordCredentials = append(snapshot.PasswordCredentials, risk.PasswordCredential{
			KeyID: deref(c.KeyID),
			Start: parseGraphTime(c.StartDateTime),
			End:   end,
		})
	}
	for _, c := range sp.KeyCredentials {
		end := parseGraphTime(c.EndDateTime)
		c.DaysRemaining = risk.DaysUntil(end, now)
		inv.Credentials.KeyCredentials = append(inv.Credentials.KeyCredentials, c)
		snapshot.KeyCredentials = append(snapshot.KeyCredentials, risk.KeyCredential{
			KeyID: deref(c.KeyID),
			Type:  deref(c.Type),
			Usage: deref(c.Usage),
			Start: parseGraphTime(c.StartDateTime),
			End:   end,
		})
	}

	if req.IncludeAssignments {
		inv.Assignments = &AssignmentCounts{
			AppRoleAssignmentsCount: len(assignedOut),
			AppRoleAssignedToCount:  len(assignedIn),
		}
	}

	inv.RiskAssessment = risk.Score(snapshot, now)

	logging.Info("Entra", "Investigated service principal %s: score %d (%s)",
		logging.TruncateID(*sp.ID), inv.RiskAssessment.Score, inv.RiskAssessment.Level)

	return inv, nil
}

// getList fetches a Graph collection. A response without a value array is
// treated as an empty collection.
func (s *Service) getList(ctx context.Context, u string) ([]json.RawMessage, error) {
	raw, err := s.dir.Get(ctx, u)
	if err != nil {
		return nil, err
	}
	items, err := directory.DecodeList(raw)
	if err != nil {
		logging.Debug("Entra", "Treating malformed collection as empty: %v", err)
		return nil, nil
	}
	return items, nil
}

func normalizeOwners(items []json.RawMessage) []Owner {
	owners := make([]Owner, 0, len(items))
	for _, item := range items {
		var o Owner
		if err := json.Unmarshal(item, &o); err != nil {
			// Still counts as an owner for scoring; keep a placeholder.
			owners = append(owners, Owner{})
			continue
		}
		owners = append(owners, o)
	}
	return owners
}

// parseGraphTime parses a Graph timestamp. Missing or malformed values yield nil.
func parseGraphTime(v *string) *time.Time {
	if v == nil || *v == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339Nano, *v)
	if err != nil {
		return nil
	}
	return &t
}

func nonEmpty(v *string) *string {
	if v == nil || *v == "" {
		return nil
	}
	return v
}

func deref(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}
