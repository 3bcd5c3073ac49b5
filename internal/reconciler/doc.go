// Package reconciler turns application lifecycle events into cluster state.
//
// # Overview
//
// The Manager reads deliveries from a transport, decodes them into
// lifecycle events and hands them to a pool of workers. Each worker calls
// the Reconciler and settles the delivery once the outcome is known.
//
// # Ordering
//
// Events are never coalesced. Events for the same application name are
// reconciled one at a time in arrival order; events for different names
// run in parallel up to ManagerConfig.WorkerCount.
//
// # Application reconciliation
//
// ApplicationReconciler handles a single event:
//
//   - Create and Update ensure the namespace ns-<name>, then create or
//     replace the Deployment, Service and Ingress in that order. A failing
//     kind does not stop the kinds after it; a failing namespace stops all
//     of them.
//   - Delete removes the namespace and leaves the cascade to the cluster.
//
// Transient API errors are retried within a step according to
// ApplicationReconcilerConfig.Retry.
//
// # Shutdown
//
// Cancelling the context passed to Manager.Run stops the receive loop.
// A step already talking to the cluster runs to completion; the remaining
// steps of that event are skipped and its delivery is requeued, as are
// deliveries that never reached a worker.
//
// Example usage:
//
//	rec := reconciler.NewApplicationReconciler(gw, manifest.NewBuilder(opts), reconciler.ApplicationReconcilerConfig{
//	    Retry: reconciler.DefaultRetry(),
//	})
//	manager := reconciler.NewManager(reconciler.ManagerConfig{WorkerCount: 4}, tr, rec, metrics)
//	if err := manager.Run(ctx); err != nil {
//	    return fmt.Errorf("reconciliation stopped: %w", err)
//	}
package reconciler
