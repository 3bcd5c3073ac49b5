// Package app provides application bootstrap and lifecycle management for
// the worker.
//
// # Bootstrap
//
// NewApplication loads the configuration (defaults, then the optional YAML
// file, then environment variables), applies command-line overrides,
// validates it and initializes logging. InitializeServices then wires the
// components:
//
//  1. Cluster gateway from kubeconfig or in-cluster discovery
//  2. Event transport (RabbitMQ, or in-memory for dry runs)
//  3. Prometheus registry and reconciler metrics
//  4. Kubernetes Event recorder (unless reconciler.recordEvents is false)
//  5. ApplicationReconciler and the reconciliation Manager
//  6. HTTP server for /healthz, /readyz, /metrics and /status
//
// # Execution
//
// Run starts the manager and the HTTP server in an errgroup. The first
// failure cancels the other; SIGINT or SIGTERM cancel both. Systemd is
// notified with READY=1 once the manager consumes deliveries and with
// STOPPING=1 on the way out. The transport is closed on every exit path.
package app
