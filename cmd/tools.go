package cmd

import (
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"sentinelmind/internal/entra"
	"sentinelmind/internal/okta"
	"sentinelmind/internal/tools"
	textutil "sentinelmind/pkg/strings"
)

const maxDescriptionWidth = 72

func newToolsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tools",
		Short: "List the MCP tools sentinelmind can serve",
		Long: `Lists every tool with its provider and access mode. Tools of a provider
are only served when that provider is configured.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			registry, err := catalogRegistry()
			if err != nil {
				return err
			}
			renderTools(cmd.OutOrStdout(), registry.Definitions())
			return nil
		},
	}
}

// catalogRegistry builds a registry with every provider enabled. Its
// services are never called.
func catalogRegistry() (*tools.Registry, error) {
	return tools.NewRegistry(tools.Dependencies{
		Entra: entra.NewService(nil),
		Okta:  okta.NewService(nil, ""),
	})
}

func renderTools(w io.Writer, defs []tools.Definition) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{
		text.FgHiCyan.Sprint("NAME"),
		text.FgHiCyan.Sprint("PROVIDER"),
		text.FgHiCyan.Sprint("ACCESS"),
		text.FgHiCyan.Sprint("DESCRIPTION"),
	})

	for _, def := range defs {
		access := text.FgGreen.Sprint("read-only")
		if def.Destructive {
			access = text.FgYellow.Sprint("write (gated)")
		}
		t.AppendRow(table.Row{def.Tool.Name, def.Provider, access, textutil.Truncate(def.Tool.Description, maxDescriptionWidth)})
	}

	t.Render()
}

func init() {
	rootCmd.AddCommand(newToolsCmd())
}
