package cmd

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"sentinelmind/internal/config"
	"sentinelmind/internal/oauth"
)

// Exit codes for CLI commands.
const (
	// ExitCodeSuccess indicates successful execution.
	ExitCodeSuccess = 0
	// ExitCodeError indicates a general error (command failed, invalid arguments).
	ExitCodeError = 1
	// ExitCodeConfig indicates the configuration is missing or invalid.
	ExitCodeConfig = 2
	// ExitCodeAuthFailed indicates an identity provider rejected the token request.
	ExitCodeAuthFailed = 3
)

// Flags shared by every command that loads configuration.
var (
	configPath string
	logLevel   string
)

// rootCmd represents the base command for the sentinelmind application.
var rootCmd = &cobra.Command{
	Use:   "sentinelmind",
	Short: "Identity-security MCP server for Microsoft Entra ID and Okta",
	Long: `sentinelmind exposes identity-security investigation and response tools to
AI agents over the Model Context Protocol.

Read-only tools investigate Entra service principals, list recent sign-ins
and query Okta. Write tools (disable a service principal, revoke sessions)
only run when ALLOW_WRITE_ACTIONS is true, the caller sets approved=true
and dryRun=false. Every write decision is audit-logged.`,
	// SilenceUsage prevents Cobra from printing the usage message on errors that are handled by the application.
	SilenceUsage: true,
}

// SetVersion sets the version for the root command.
// This function is typically called from the main package to inject the application version at build time.
func SetVersion(v string) {
	rootCmd.Version = v
}

// GetVersion returns the current version of the application.
func GetVersion() string {
	return rootCmd.Version
}

// Execute runs the root command. SIGINT and SIGTERM cancel the command
// context so servers shut down gracefully.
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "sentinelmind version %s\n" .Version}}`)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()

	if err != nil {
		os.Exit(getExitCode(err))
	}
}

// getExitCode determines the appropriate exit code based on the error type.
func getExitCode(err error) int {
	var validationErr config.ValidationError
	if errors.As(err, &validationErr) {
		return ExitCodeConfig
	}

	var validationErrs config.ValidationErrors
	if errors.As(err, &validationErrs) {
		return ExitCodeConfig
	}

	var authErr *oauth.AuthError
	if errors.As(err, &authErr) {
		return ExitCodeAuthFailed
	}

	return ExitCodeError
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a YAML configuration file (environment variables override it)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn or error (overrides logging.level)")

	rootCmd.AddCommand(newVersionCmd())
}
