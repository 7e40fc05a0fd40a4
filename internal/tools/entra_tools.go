package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"sentinelmind/internal/approval"
	"sentinelmind/internal/entra"
)

// Tool names.
const (
	ToolInvestigateServicePrincipal    = "investigate_service_principal"
	ToolDisableServicePrincipal        = "disable_service_principal"
	ToolRevokeServicePrincipalSessions = "revoke_service_principal_sessions"
	ToolRevokeUserSessions             = "revoke_user_sessions"
	ToolSignInRecent                   = "signin_recent"
)

const (
	MinServicePrincipalIDLength = 10
	minSPJustificationLength    = 20
	minUserJustificationLength  = 10
)

const investigateSchema = `{
	"type": "object",
	"properties": {
		"servicePrincipalId": {"type": "string", "minLength": %d, "description": "Object id of the service principal"},
		"includeAssignments": {"type": "boolean", "default": true, "description": "Fetch app role assignments in both directions (default: true)"},
		"includeOwners": {"type": "boolean", "default": true, "description": "Fetch owners (default: true)"}
	},
	"required": ["servicePrincipalId"]
}`

const signInSchema = `{
	"type": "object",
	"properties": {
		"windowMinutes": {"type": "integer", "minimum": 1, "maximum": 1440, "default": 60, "description": "How far back to look, in minutes (default: 60)"},
		"userPrincipalName": {"type": "string", "format": "email", "description": "Only return sign-ins of this user"},
		"top": {"type": "integer", "minimum": 1, "maximum": 50, "default": 10, "description": "Maximum number of events (default: 10)"}
	}
}`

func (r *Registry) addEntraTools() error {
	svc := r.deps.Entra

	if err := r.add("entra", false, ToolInvestigateServicePrincipal,
		"Gather Microsoft Entra service principal metadata, owners, credentials, role assignments, and compute a risk score.",
		fmt.Sprintf(investigateSchema, MinServicePrincipalIDLength),
		func(ctx context.Context, args arguments) (any, error) {
			return svc.InvestigateServicePrincipal(ctx, entra.InvestigateRequest{
				ServicePrincipalID: args.str("servicePrincipalId"),
				IncludeAssignments: args.boolean("includeAssignments", true),
				IncludeOwners:      args.boolean("includeOwners", true),
			})
		},
	); err != nil {
		return err
	}

	if err := r.addWriteTool(ToolDisableServicePrincipal,
		"Disable a Microsoft Entra service principal (sets accountEnabled=false). Requires ALLOW_WRITE_ACTIONS, approved=true and dryRun=false.",
		"servicePrincipalId", MinServicePrincipalIDLength, minSPJustificationLength,
		svc.DisableServicePrincipal,
	); err != nil {
		return err
	}

	if err := r.addWriteTool(ToolRevokeServicePrincipalSessions,
		"Revoke sign-in sessions of a Microsoft Entra service principal. Requires ALLOW_WRITE_ACTIONS, approved=true and dryRun=false.",
		"servicePrincipalId", MinServicePrincipalIDLength, minSPJustificationLength,
		svc.RevokeServicePrincipalSessions,
	); err != nil {
		return err
	}

	if err := r.addWriteTool(ToolRevokeUserSessions,
		"Revoke all refresh tokens and session cookies of a Microsoft Entra user. Requires ALLOW_WRITE_ACTIONS, approved=true and dryRun=false.",
		"userId", 1, minUserJustificationLength,
		svc.RevokeUserSessions,
	); err != nil {
		return err
	}

	return r.add("entra", false, ToolSignInRecent,
		"Fetch recent Entra ID sign-in events from Microsoft Graph audit logs. Returns normalized fields for investigation.",
		signInSchema,
		func(ctx context.Context, args arguments) (any, error) {
			return svc.RecentSignIns(ctx, entra.SignInQuery{
				WindowMinutes:     args.integer("windowMinutes", 60),
				UserPrincipalName: args.str("userPrincipalName"),
				Top:               args.integer("top", 10),
			})
		},
	)
}

// addWriteTool registers a gated write action. approved defaults to false and
// dryRun to true, so an omitted flag never enables a write.
func (r *Registry) addWriteTool(name, description, targetArg string, minTarget, minJustification int, exec func(ctx context.Context, id string) (json.RawMessage, error)) error {
	schema := fmt.Sprintf(writeActionSchema, targetArg, minTarget, minJustification)

	return r.add("entra", true, name, description, schema, func(ctx context.Context, args arguments) (any, error) {
		target := args.str(targetArg)
		req := approval.Request{
			Action:        name,
			TargetID:      target,
			Justification: args.str("justification"),
			Approved:      args.boolean("approved", false),
			DryRun:        args.boolean("dryRun", true),
		}
		return r.deps.Lifecycle.Run(ctx, req, func(ctx context.Context) (json.RawMessage, error) {
			return exec(ctx, target)
		})
	})
}
