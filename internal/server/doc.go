// Package server exposes the worker over HTTP.
//
// Endpoints:
//
//   - GET /healthz: 200 while the process serves requests
//   - GET /readyz: 200 once the manager consumes deliveries, 503 before
//   - GET /metrics: Prometheus exposition of the worker's registry
//   - GET /status: every application's reconciliation status plus a summary
//   - GET /status/{name}: one application's status, 404 if unknown
//
// JSON bodies are wrapped in an Envelope with either a data or an error field.
package server
