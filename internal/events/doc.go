// Package events records Kubernetes Events for application reconciliations.
//
// Every Create or Update outcome produces one Event on the application's
// namespace so that `kubectl get events -n ns-<name>` shows what the worker
// did. Delete outcomes are not recorded since the namespace is going away.
//
// Messages are produced by MessageTemplateEngine, which supports simple
// variable substitution ({{.Name}}) and conditional blocks
// ({{if .Error}}...{{end}}).
//
// Usage:
//
//	recorder := events.NewRecorder(gateway, "appdeployer")
//	rec := reconciler.NewApplicationReconciler(gateway, builder, reconciler.ApplicationReconcilerConfig{
//		Recorder: recorder,
//	})
package events
