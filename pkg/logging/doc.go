// Package logging provides the structured logging used across appdeployer.
//
// It is a thin layer over Go's log/slog that keeps a printf-style API with a
// mandatory subsystem tag, so every line can be filtered by the component
// that produced it.
//
// # Usage
//
//	logging.Init(logging.LevelInfo, logging.FormatJSON, os.Stdout)
//
//	logging.Info("Reconciler", "Reconciled %s", name)
//	logging.Debug("Transport", "Received delivery %s", id)
//	logging.Warn("Manager", "Dropping malformed event: %v", err)
//	logging.Error("Gateway", err, "Failed to create namespace %s", ns)
//
// # Subsystems
//
//   - Bootstrap: application wiring and startup
//   - Config: configuration loading and validation
//   - Manager: receive loop, queue and worker pool
//   - Reconciler: per-application reconciliation
//   - Gateway: Kubernetes API access
//   - Transport: message broker connection and deliveries
//   - Server: health, metrics and status endpoints
//
// # Controller-runtime
//
// Init also installs a logr bridge as controller-runtime's global logger, so
// messages emitted by the Kubernetes client end up in the same handler with
// subsystem=controller-runtime.
package logging
