package app

import (
	"context"
	"fmt"
	"io"
	"os"

	"sentinelmind/internal/config"
	"sentinelmind/pkg/logging"
)

// Application represents the main application structure that bootstraps and
// runs sentinelmind.
//
// Example usage:
//
//	cfg := app.NewConfig("/etc/sentinelmind/config.yaml", version)
//	application, err := app.NewApplication(cfg)
//	if err != nil {
//	    return fmt.Errorf("failed to initialize application: %w", err)
//	}
//	defer application.Close()
//	return application.Run(ctx)
type Application struct {
	config   *Config
	services *Services
}

// NewApplication loads configuration, initializes logging and builds all
// services. It fails when the configuration is invalid or a provider cannot
// be constructed, for example because its private key is unreadable.
func NewApplication(cfg *Config) (*Application, error) {
	var logOutput io.Writer = os.Stderr
	if cfg.LogOutput != nil {
		logOutput = cfg.LogOutput
	}

	// Bootstrap logging until the configured level is known.
	bootLevel, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		bootLevel = logging.LevelInfo
	}
	logging.InitForCLI(bootLevel, logOutput)

	settings, err := loadSettings(cfg)
	if err != nil {
		logging.Error("Bootstrap", err, "Failed to load configuration")
		return nil, err
	}
	cfg.Settings = &settings

	if err := initLogging(settings.Logging, logOutput); err != nil {
		return nil, err
	}

	logging.Info("Bootstrap", "Starting sentinelmind %s", cfg.Version)

	services, err := InitializeServices(settings, cfg.Version)
	if err != nil {
		logging.Error("Bootstrap", err, "Failed to initialize services")
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	return &Application{
		config:   cfg,
		services: services,
	}, nil
}

func loadSettings(cfg *Config) (config.Config, error) {
	settings, err := config.Load(cfg.ConfigPath, cfg.Lookup)
	if err != nil {
		return config.Config{}, fmt.Errorf("failed to load configuration: %w", err)
	}

	cfg.applyOverrides(&settings)
	if err := settings.Validate(); err != nil {
		return config.Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return settings, nil
}

func initLogging(cfg config.LoggingConfig, fallback io.Writer) error {
	level, err := logging.ParseLevel(cfg.Level)
	if err != nil {
		return err
	}

	if cfg.File == "" {
		logging.InitForCLI(level, fallback)
		return nil
	}

	if err := logging.InitForFile(level, logging.FileConfig{
		Filename:   cfg.File,
		MaxSizeMB:  cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAgeDays: cfg.MaxAgeDays,
		Compress:   cfg.Compress,
	}); err != nil {
		return fmt.Errorf("failed to open log file %s: %w", cfg.File, err)
	}
	logging.Info("Bootstrap", "Logging to %s", cfg.File)
	return nil
}

// Services returns the initialized services.
func (a *Application) Services() *Services {
	return a.services
}

// Run serves MCP on the configured transport until ctx is cancelled.
func (a *Application) Run(ctx context.Context) error {
	switch a.config.Settings.Server.Transport {
	case config.TransportStreamableHTTP:
		return runStreamableHTTP(ctx, a.config.Settings.Server, a.services)
	default:
		return runStdio(ctx, a.services)
	}
}

// Close releases the log file, if any.
func (a *Application) Close() error {
	return logging.Close()
}
