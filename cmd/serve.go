package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"sentinelmind/internal/app"
)

var (
	serveTransport string
	servePort      int
)

// serveCmd starts the MCP server.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the sentinelmind MCP server",
	Long: `Starts the MCP server and registers the tools of every configured identity
provider.

Transports:
  stdio (default)    MCP frames on stdin/stdout; logs go to stderr or the log file.
  streamable-http    MCP on http://<host>:<port>/mcp and Prometheus metrics on /metrics.

Configuration:
  Settings are read from the optional --config YAML file and then from the
  environment (TENANT_ID, CLIENT_ID, CLIENT_SECRET, ALLOW_WRITE_ACTIONS,
  OKTA_ORG_URL, OKTA_OAUTH_CLIENT_ID, OKTA_OAUTH_KID, OKTA_OAUTH_PEM_PATH,
  OKTA_OAUTH_SCOPES, SENTINEL_LOG_FILE). At least one provider must be fully
  configured.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func newAppConfig() *app.Config {
	cfg := app.NewConfig(configPath, GetVersion())
	cfg.LogLevel = logLevel
	return cfg
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := newAppConfig()
	cfg.Transport = serveTransport
	cfg.Port = servePort

	application, err := app.NewApplication(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	defer application.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return application.Run(ctx)
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveTransport, "transport", "", "MCP transport: stdio or streamable-http (overrides server.transport)")
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Listen port for streamable-http (overrides server.port)")
}
