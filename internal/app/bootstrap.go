package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"appdeployer/internal/config"
	"appdeployer/pkg/logging"
)

// Application represents the worker process: configuration plus the wired
// services it runs.
//
// The Application follows a two-phase initialization pattern:
//  1. Bootstrap phase: Load configuration, initialize logging, setup services
//  2. Execution phase: Run the manager and HTTP server until shutdown
//
// Example usage:
//
//	cfg := app.NewConfig(false, "/etc/appdeployer/config.yaml")
//	application, err := app.NewApplication(cfg)
//	if err != nil {
//	    return fmt.Errorf("failed to create application: %w", err)
//	}
//	return application.Run(ctx)
type Application struct {
	config   *Config
	services *Services
}

// NewApplication creates and initializes a new application instance with the provided configuration.
// This function performs the complete bootstrap sequence:
//
//  1. Loads the worker configuration (defaults, file, environment)
//  2. Applies command-line overrides and validates the result
//  3. Configures logging
//  4. Connects to the cluster and builds the transport, reconciler and manager
func NewApplication(cfg *Config) (*Application, error) {
	if cfg.Worker == nil {
		workerCfg, err := config.Load(cfg.ConfigPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load configuration: %w", err)
		}
		cfg.Worker = &workerCfg
	}
	cfg.applyOverrides(cfg.Worker)

	if err := cfg.Worker.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	logging.Init(cfg.Worker.Logging.LogLevel(), cfg.Worker.Logging.LogFormat(), os.Stderr)

	services, err := InitializeServices(*cfg.Worker)
	if err != nil {
		logging.Error("Bootstrap", err, "Failed to initialize services")
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	return &Application{
		config:   cfg,
		services: services,
	}, nil
}

// Services returns the wired services.
func (a *Application) Services() *Services {
	return a.services
}

// Run executes the application
//
// Handles graceful shutdown via context cancellation and SIGINT/SIGTERM.
// The method blocks until the worker stops and returns the first error
// reported by the manager or the HTTP server.
func (a *Application) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	return a.services.Run(ctx)
}
