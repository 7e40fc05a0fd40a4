package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"sentinelmind/internal/app"
	"sentinelmind/internal/entra"
	"sentinelmind/internal/risk"
	"sentinelmind/internal/tools"
)

var errEntraNotConfigured = errors.New("microsoft entra is not configured: set TENANT_ID, CLIENT_ID and CLIENT_SECRET")

type investigateOptions struct {
	includeAssignments bool
	includeOwners      bool
	outputJSON         bool
}

func newInvestigateCmd() *cobra.Command {
	opts := &investigateOptions{}

	cmd := &cobra.Command{
		Use:   "investigate <servicePrincipalId>",
		Short: "Investigate an Entra service principal and print its risk report",
		Long: `Fetches a service principal with its owners, credentials and app role
assignments from Microsoft Graph, scores it, and prints the report.

This is the same investigation the investigate_service_principal tool runs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			application, err := app.NewApplication(newAppConfig())
			if err != nil {
				return fmt.Errorf("failed to initialize application: %w", err)
			}
			defer application.Close()

			svc := application.Services().Entra
			if svc == nil {
				return errEntraNotConfigured
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			return runInvestigate(ctx, cmd.OutOrStdout(), application.Services().Registry, svc, args[0], opts)
		},
	}

	cmd.Flags().BoolVar(&opts.includeAssignments, "assignments", true, "Fetch app role assignments in both directions")
	cmd.Flags().BoolVar(&opts.includeOwners, "owners", true, "Fetch owners")
	cmd.Flags().BoolVar(&opts.outputJSON, "json", false, "Print the raw investigation as JSON")

	return cmd
}

type argumentValidator interface {
	Validate(tool string, args map[string]any) error
}

type investigator interface {
	InvestigateServicePrincipal(ctx context.Context, req entra.InvestigateRequest) (*entra.Investigation, error)
}

// runInvestigate checks the arguments against the investigate tool schema,
// so the CLI accepts exactly what the tool accepts.
func runInvestigate(ctx context.Context, w io.Writer, validator argumentValidator, svc investigator, id string, opts *investigateOptions) error {
	if err := validator.Validate(tools.ToolInvestigateServicePrincipal, map[string]any{
		"servicePrincipalId": id,
		"includeAssignments": opts.includeAssignments,
		"includeOwners":      opts.includeOwners,
	}); err != nil {
		return err
	}

	inv, err := svc.InvestigateServicePrincipal(ctx, entra.InvestigateRequest{
		ServicePrincipalID: id,
		IncludeAssignments: opts.includeAssignments,
		IncludeOwners:      opts.includeOwners,
	})
	if err != nil {
		return err
	}

	if opts.outputJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(inv)
	}

	renderInvestigation(w, inv)
	return nil
}

func renderInvestigation(w io.Writer, inv *entra.Investigation) {
	sp := inv.ServicePrincipal

	summary := table.NewWriter()
	summary.SetOutputMirror(w)
	summary.SetStyle(table.StyleRounded)
	summary.SetTitle("Service principal")
	summary.AppendRows([]table.Row{
		{text.FgHiCyan.Sprint("ID"), sp.ID},
		{text.FgHiCyan.Sprint("Display name"), orDash(sp.DisplayName)},
		{text.FgHiCyan.Sprint("App ID"), orDash(sp.AppID)},
		{text.FgHiCyan.Sprint("Type"), orDash(sp.ServicePrincipalType)},
		{text.FgHiCyan.Sprint("Created"), orDash(sp.CreatedDateTime)},
		{text.FgHiCyan.Sprint("Enabled"), boolOrDash(sp.AccountEnabled)},
		{text.FgHiCyan.Sprint("Owners"), strconv.Itoa(len(inv.Owners))},
		{text.FgHiCyan.Sprint("Secrets"), strconv.Itoa(len(inv.Credentials.PasswordCredentials))},
		{text.FgHiCyan.Sprint("Certificates"), strconv.Itoa(len(inv.Credentials.KeyCredentials))},
	})
	if a := inv.Assignments; a != nil {
		summary.AppendRows([]table.Row{
			{text.FgHiCyan.Sprint("Role assignments (out)"), strconv.Itoa(a.AppRoleAssignmentsCount)},
			{text.FgHiCyan.Sprint("Role assignments (in)"), strconv.Itoa(a.AppRoleAssignedToCount)},
		})
	} else {
		summary.AppendRow(table.Row{text.FgHiCyan.Sprint("Role assignments"), "not fetched"})
	}
	summary.Render()

	assessment := inv.RiskAssessment
	report := table.NewWriter()
	report.SetOutputMirror(w)
	report.SetStyle(table.StyleRounded)
	report.SetTitle("Risk")
	report.AppendHeader(table.Row{text.FgHiCyan.Sprint("SCORE"), text.FgHiCyan.Sprint("LEVEL"), text.FgHiCyan.Sprint("SIGNALS")})
	signals := "none"
	if len(assessment.Signals) > 0 {
		signals = strings.Join(assessment.Signals, "\n")
	}
	report.AppendRow(table.Row{assessment.Score, levelColor(assessment.Level).Sprint(string(assessment.Level)), signals})
	report.Render()
}

func levelColor(level risk.Level) text.Colors {
	switch level {
	case risk.LevelHigh:
		return text.Colors{text.FgHiRed, text.Bold}
	case risk.LevelMedium:
		return text.Colors{text.FgYellow}
	default:
		return text.Colors{text.FgGreen}
	}
}

func orDash(v *string) string {
	if v == nil || *v == "" {
		return "-"
	}
	return *v
}

func boolOrDash(v *bool) string {
	if v == nil {
		return "-"
	}
	return strconv.FormatBool(*v)
}

func init() {
	rootCmd.AddCommand(newInvestigateCmd())
}
