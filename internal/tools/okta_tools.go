package tools

import (
	"context"
	"fmt"

	"sentinelmind/internal/okta"
)

const (
	ToolOktaListUsers  = "okta_list_users"
	ToolOktaListGroups = "okta_list_groups"
	ToolOktaListApps   = "okta_list_apps"
	ToolOktaRecentLogs = "okta_recent_logs"
)

const defaultOktaLimit = 5

func (r *Registry) addOktaTools() error {
	tools := []struct {
		name        string
		description string
		resource    okta.Resource
		maxLimit    int
	}{
		{ToolOktaListUsers, "List Okta users (read only).", okta.Users, 200},
		{ToolOktaListGroups, "List Okta groups (read only).", okta.Groups, 200},
		{ToolOktaListApps, "List Okta apps (read only).", okta.Apps, 200},
		{ToolOktaRecentLogs, "Fetch recent Okta System Log events (read only).", okta.Logs, 50},
	}

	for _, t := range tools {
		resource := t.resource
		err := r.add("okta", false, t.name, t.description, fmt.Sprintf(listLimitSchema, t.maxLimit, defaultOktaLimit),
			func(ctx context.Context, args arguments) (any, error) {
				return r.deps.Okta.List(ctx, resource, args.integer("limit", defaultOktaLimit))
			})
		if err != nil {
			return err
		}
	}
	return nil
}
