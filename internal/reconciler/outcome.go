package reconciler

import (
	"errors"
	"time"

	"appdeployer/internal/lifecycle"
)

// Kind names a resource kind owned by an application.
type Kind string

const (
	KindNamespace  Kind = "Namespace"
	KindDeployment Kind = "Deployment"
	KindService    Kind = "Service"
	KindIngress    Kind = "Ingress"
)

// Operation is what a step did, or tried to do, to its resource.
type Operation string

const (
	// OperationNone means the step found nothing to change.
	OperationNone Operation = "none"

	// OperationGet means the step failed before deciding between create and replace.
	OperationGet Operation = "get"

	OperationCreate  Operation = "create"
	OperationReplace Operation = "replace"
	OperationDelete  Operation = "delete"
)

// Result classifies a whole event outcome. Values are used as metric labels.
type Result string

const (
	ResultSuccess     Result = "success"
	ResultPartial     Result = "partial"
	ResultFailed      Result = "failed"
	ResultInterrupted Result = "interrupted"
	ResultDropped     Result = "dropped"
)

// ResourceResult is the result of one resource-kind step.
type ResourceResult struct {
	Kind      Kind
	Name      string
	Operation Operation
	Attempts  int
	Err       error
}

// Outcome records everything one reconciliation did.
type Outcome struct {
	Event lifecycle.Event

	// Resources holds one entry per step that ran, in execution order.
	Resources []ResourceResult

	// EventErr is an event-level failure: malformed event, namespace
	// provisioning or namespace deletion.
	EventErr error

	// Interrupted is set when cancellation stopped the event between steps.
	Interrupted bool

	Started  time.Time
	Finished time.Time
}

// Err joins the event-level error with every per-resource error. A resource
// error already wrapped by EventErr is reported once.
func (o Outcome) Err() error {
	errs := []error{o.EventErr}
	for _, r := range o.Resources {
		if r.Err == nil || (o.EventErr != nil && errors.Is(o.EventErr, r.Err)) {
			continue
		}
		errs = append(errs, r.Err)
	}
	return errors.Join(errs...)
}

// Duration is the wall time spent on the event.
func (o Outcome) Duration() time.Duration {
	return o.Finished.Sub(o.Started)
}

// Result classifies the outcome.
func (o Outcome) Result() Result {
	if o.Interrupted {
		return ResultInterrupted
	}
	if o.EventErr != nil {
		if lifecycle.IsMalformed(o.EventErr) {
			return ResultDropped
		}
		return ResultFailed
	}

	// Namespace failures are event-level; only dependent kinds count here.
	applied, failed := 0, 0
	for _, r := range o.Resources {
		if r.Kind == KindNamespace {
			continue
		}
		applied++
		if r.Err != nil {
			failed++
		}
	}
	switch {
	case failed == 0:
		return ResultSuccess
	case failed == applied:
		return ResultFailed
	default:
		return ResultPartial
	}
}

// Failed returns the results of failed steps.
func (o Outcome) Failed() []ResourceResult {
	var failed []ResourceResult
	for _, r := range o.Resources {
		if r.Err != nil {
			failed = append(failed, r)
		}
	}
	return failed
}
