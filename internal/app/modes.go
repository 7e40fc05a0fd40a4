package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/mark3labs/mcp-go/server"

	"sentinelmind/internal/config"
	"sentinelmind/pkg/logging"
)

const (
	mcpPath         = "/mcp"
	metricsPath     = "/metrics"
	shutdownTimeout = 5 * time.Second
)

// runStdio serves MCP on stdin/stdout until ctx is cancelled or stdin closes.
func runStdio(ctx context.Context, services *Services) error {
	logging.Info("Server", "Starting MCP server with stdio transport")

	stdio := server.NewStdioServer(services.MCPServer)
	err := stdio.Listen(ctx, os.Stdin, os.Stdout)
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("stdio server: %w", err)
	}

	logging.Info("Server", "Stdio transport stopped")
	return nil
}

// newHTTPHandler routes MCP and metrics on one mux.
func newHTTPHandler(services *Services) http.Handler {
	mux := http.NewServeMux()
	mux.Handle(mcpPath, server.NewStreamableHTTPServer(services.MCPServer))
	mux.Handle(metricsPath, services.Metrics.Handler())
	return mux
}

// runStreamableHTTP listens on cfg.Host:cfg.Port until ctx is cancelled, then
// shuts down gracefully.
func runStreamableHTTP(ctx context.Context, cfg config.ServerConfig, services *Services) error {
	addr := net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	return serveHTTP(ctx, listener, services)
}

func serveHTTP(ctx context.Context, listener net.Listener, services *Services) error {
	httpServer := &http.Server{
		Handler:           newHTTPHandler(services),
		ReadHeaderTimeout: 10 * time.Second,
	}

	logging.Info("Server", "Starting MCP server with streamable-http transport on %s (MCP %s, metrics %s)",
		listener.Addr(), mcpPath, metricsPath)

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.Serve(listener)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("streamable HTTP server: %w", err)
	case <-ctx.Done():
	}

	logging.Info("Server", "Shutting down streamable-http transport")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logging.Error("Server", err, "Error shutting down streamable HTTP server")
		return err
	}
	return nil
}
