package reconciler

import (
	"context"
	"time"

	"k8s.io/apimachinery/pkg/util/wait"

	"appdeployer/internal/lifecycle"
	"appdeployer/internal/transport"
)

// ReconcileRequest is one decoded event waiting for a worker.
type ReconcileRequest struct {
	// Name is the application name; requests with the same name are serialised.
	Name string

	// Event is the decoded lifecycle event.
	Event lifecycle.Event

	// Delivery is settled once the request has been processed.
	Delivery transport.Delivery

	// ReceivedAt is when the receive loop decoded the delivery.
	ReceivedAt time.Time
}

// Reconciler brings the cluster in line with a single lifecycle event.
type Reconciler interface {
	// Reconcile never returns an error: every failure is part of the Outcome.
	// Cancellation of ctx is honoured between resource-kind steps only.
	Reconcile(ctx context.Context, ev lifecycle.Event) Outcome
}

// ReconcileQueue holds requests awaiting reconciliation.
type ReconcileQueue interface {
	// Add appends req. It returns false once the queue is shutting down.
	Add(req ReconcileRequest) bool

	// Get retrieves the next request whose name is not being processed.
	// Blocks until a request is available or the context is cancelled.
	Get(ctx context.Context) (ReconcileRequest, bool)

	// Done marks a request as processed, releasing the next one for its name.
	Done(req ReconcileRequest)

	// Len returns the number of requests not yet handed to a worker.
	Len() int

	// Shutdown stops the queue and returns the requests that were never started.
	Shutdown() []ReconcileRequest
}

// ManagerConfig holds configuration for the Manager.
type ManagerConfig struct {
	// WorkerCount is the number of concurrent reconciliation workers.
	// Defaults to 4 if not specified.
	WorkerCount int
}

// DefaultWorkerCount is used when ManagerConfig.WorkerCount is zero.
const DefaultWorkerCount = 4

// ApplicationReconcilerConfig configures an ApplicationReconciler.
type ApplicationReconcilerConfig struct {
	// StepTimeout bounds each resource-kind step including its retries.
	// Defaults to 30 seconds.
	StepTimeout time.Duration

	// Retry is the backoff applied to transient API errors within a step.
	// Steps below 1 are raised to 1 (a single attempt).
	Retry wait.Backoff

	// TerminatingTimeout bounds how long a Create/Update waits for a
	// namespace left Terminating by an earlier Delete. Defaults to 5 minutes.
	TerminatingTimeout time.Duration

	// TerminatingPoll is the interval between namespace checks while
	// waiting. Defaults to 2 seconds.
	TerminatingPoll time.Duration

	// Recorder receives every outcome of a Create/Update event. Optional.
	Recorder OutcomeRecorder

	// Metrics receives every outcome. Optional.
	Metrics *Metrics
}

// DefaultStepTimeout is used when ApplicationReconcilerConfig.StepTimeout is zero.
const DefaultStepTimeout = 30 * time.Second

const (
	// DefaultTerminatingTimeout is used when TerminatingTimeout is zero.
	DefaultTerminatingTimeout = 5 * time.Minute

	// DefaultTerminatingPoll is used when TerminatingPoll is zero.
	DefaultTerminatingPoll = 2 * time.Second
)

// DefaultRetry is the default per-step backoff.
func DefaultRetry() wait.Backoff {
	return wait.Backoff{
		Steps:    4,
		Duration: 200 * time.Millisecond,
		Factor:   2.0,
		Jitter:   0.1,
	}
}

// OutcomeRecorder publishes reconcile outcomes outside the process.
type OutcomeRecorder interface {
	RecordOutcome(ctx context.Context, o Outcome) error
}

// ReconcileStatus is the last known reconciliation status of an application.
type ReconcileStatus struct {
	// Name is the application name.
	Name string `json:"name"`

	// State describes the current reconciliation state.
	State ReconcileState `json:"state"`

	// LastAction is the action of the most recent event.
	LastAction lifecycle.Action `json:"lastAction,omitempty"`

	// Image is the image of the most recent Create/Update event.
	Image string `json:"image,omitempty"`

	// LastDeliveryID identifies the most recent delivery for this name.
	LastDeliveryID string `json:"lastDeliveryId,omitempty"`

	// LastReconcileTime is when the last reconciliation finished.
	LastReconcileTime *time.Time `json:"lastReconcileTime,omitempty"`

	// LastError is the most recent error, if any.
	LastError string `json:"lastError,omitempty"`

	// Resources holds the per-resource results of the last reconciliation.
	Resources []ResourceStatus `json:"resources,omitempty"`

	// ReconcileCount is the number of reconciliations run for this name.
	ReconcileCount int `json:"reconcileCount"`

	// FailureCount is the number of reconciliations that did not fully succeed.
	FailureCount int `json:"failureCount"`
}

// ResourceStatus is the serialisable form of a ResourceResult.
type ResourceStatus struct {
	Kind      Kind      `json:"kind"`
	Name      string    `json:"name"`
	Operation Operation `json:"operation"`
	Attempts  int       `json:"attempts,omitempty"`
	Error     string    `json:"error,omitempty"`
}

// ReconcileState represents the state of an application's reconciliation.
type ReconcileState string

const (
	// StatePending means an event is queued for the application.
	StatePending ReconcileState = "Pending"

	// StateReconciling means reconciliation is in progress.
	StateReconciling ReconcileState = "Reconciling"

	// StateSynced means every resource was applied.
	StateSynced ReconcileState = "Synced"

	// StateDeleted means the application namespace was deleted or absent.
	StateDeleted ReconcileState = "Deleted"

	// StatePartiallySynced means some resource kinds failed to apply.
	StatePartiallySynced ReconcileState = "PartiallySynced"

	// StateFailed means the event could not be applied at all.
	StateFailed ReconcileState = "Failed"

	// StateInterrupted means shutdown stopped the reconciliation; the event
	// was returned to the queue.
	StateInterrupted ReconcileState = "Interrupted"
)
