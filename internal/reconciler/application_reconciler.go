package reconciler

import (
	"context"
	"errors"
	"fmt"
	"time"

	appsv1 "k8s.io/api/apps/v1"
	corev1 "k8s.io/api/core/v1"
	networkingv1 "k8s.io/api/networking/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	"k8s.io/apimachinery/pkg/util/wait"
	"k8s.io/client-go/util/retry"
	"sigs.k8s.io/controller-runtime/pkg/client"

	"appdeployer/internal/cluster"
	"appdeployer/internal/lifecycle"
	"appdeployer/internal/manifest"
	"appdeployer/pkg/logging"
)

// errNamespaceTerminating is returned while a previous Delete is still
// draining the namespace. Within a step it is retried like a transient API
// error; across steps the reconciler keeps polling until TerminatingTimeout.
var errNamespaceTerminating = errors.New("namespace is terminating")

// ApplicationReconciler applies lifecycle events to the cluster.
//
// Create and Update ensure the namespace, then create-or-replace the
// Deployment, Service and Ingress in that order. Each dependent kind is
// attempted even if an earlier one failed. Delete removes the namespace
// and relies on the cluster to cascade to its contents.
type ApplicationReconciler struct {
	gateway     cluster.Gateway
	builder     manifest.Builder
	backoff     wait.Backoff
	stepTimeout time.Duration
	termTimeout time.Duration
	termPoll    time.Duration
	recorder    OutcomeRecorder
	metrics     *Metrics
	now         func() time.Time
}

// NewApplicationReconciler creates a reconciler writing through gw.
func NewApplicationReconciler(gw cluster.Gateway, builder manifest.Builder, cfg ApplicationReconcilerConfig) *ApplicationReconciler {
	if cfg.StepTimeout <= 0 {
		cfg.StepTimeout = DefaultStepTimeout
	}
	if cfg.Retry.Steps < 1 {
		cfg.Retry.Steps = 1
	}
	if cfg.TerminatingTimeout <= 0 {
		cfg.TerminatingTimeout = DefaultTerminatingTimeout
	}
	if cfg.TerminatingPoll <= 0 {
		cfg.TerminatingPoll = DefaultTerminatingPoll
	}
	return &ApplicationReconciler{
		gateway:     gw,
		builder:     builder,
		backoff:     cfg.Retry,
		stepTimeout: cfg.StepTimeout,
		termTimeout: cfg.TerminatingTimeout,
		termPoll:    cfg.TerminatingPoll,
		recorder:    cfg.Recorder,
		metrics:     cfg.Metrics,
		now:         time.Now,
	}
}

// Reconcile implements Reconciler.
func (r *ApplicationReconciler) Reconcile(ctx context.Context, ev lifecycle.Event) Outcome {
	out := Outcome{Event: ev, Started: r.now()}

	if err := ev.Validate(); err != nil {
		out.EventErr = err
	} else if ev.Action == lifecycle.ActionDelete {
		r.reconcileDelete(ctx, &out)
	} else {
		r.reconcileApply(ctx, &out)
	}

	out.Finished = r.now()
	r.report(ctx, out)
	return out
}

func (r *ApplicationReconciler) reconcileDelete(ctx context.Context, out *Outcome) {
	name := out.Event.Application.Name
	ns := manifest.NamespaceName(name)

	if ctx.Err() != nil {
		out.Interrupted = true
		return
	}

	res := ResourceResult{Kind: KindNamespace, Name: ns, Operation: OperationDelete}
	err := r.step(ctx, &res.Attempts, isTransient, func(stepCtx context.Context) error {
		return r.gateway.DeleteNamespace(stepCtx, ns)
	})
	switch {
	case err == nil:
	case errors.Is(err, cluster.ErrNotFound):
		res.Operation = OperationNone
	default:
		res.Err = err
		out.EventErr = &NamespaceDeleteError{Namespace: ns, Err: err}
	}
	out.Resources = append(out.Resources, res)
}

func (r *ApplicationReconciler) reconcileApply(ctx context.Context, out *Outcome) {
	name := out.Event.Application.Name
	desired := r.builder.Desired(name, out.Event.Application.Image)

	if ctx.Err() != nil {
		out.Interrupted = true
		return
	}

	nsResult, interrupted := r.ensureNamespace(ctx, desired.Namespace)
	if interrupted {
		out.Interrupted = true
		return
	}
	out.Resources = append(out.Resources, nsResult)
	if nsResult.Err != nil {
		out.EventErr = &NamespaceProvisionError{Namespace: desired.Namespace.Name, Err: nsResult.Err}
		return
	}

	steps := []struct {
		kind     Kind
		desired  client.Object
		existing func() client.Object
	}{
		{KindDeployment, desired.Deployment, func() client.Object { return &appsv1.Deployment{} }},
		{KindService, desired.Service, func() client.Object { return &corev1.Service{} }},
		{KindIngress, desired.Ingress, func() client.Object { return &networkingv1.Ingress{} }},
	}

	for _, s := range steps {
		if ctx.Err() != nil {
			out.Interrupted = true
			return
		}
		out.Resources = append(out.Resources, r.applyResource(ctx, s.kind, s.desired, s.existing))
	}
}

// ensureNamespace creates the namespace when the listing does not contain it.
// A namespace still Terminating from an earlier Delete is waited out, polling
// every termPoll for up to termTimeout. The second return value is true when
// ctx was cancelled during that wait; nothing has been written in that case.
func (r *ApplicationReconciler) ensureNamespace(ctx context.Context, ns *corev1.Namespace) (ResourceResult, bool) {
	res := ResourceResult{Kind: KindNamespace, Name: ns.Name, Operation: OperationNone}
	deadline := r.now().Add(r.termTimeout)

	for {
		err := r.ensureNamespaceOnce(ctx, ns, &res)
		if !errors.Is(err, errNamespaceTerminating) || !r.now().Before(deadline) {
			res.Err = err
			return res, false
		}

		logging.Info("Reconciler", "Namespace %s is terminating, checking again in %v", ns.Name, r.termPoll)
		timer := time.NewTimer(r.termPoll)
		select {
		case <-ctx.Done():
			timer.Stop()
			return res, true
		case <-timer.C:
		}
	}
}

func (r *ApplicationReconciler) ensureNamespaceOnce(ctx context.Context, ns *corev1.Namespace, res *ResourceResult) error {
	return r.step(ctx, &res.Attempts, isTransientOrTerminating, func(stepCtx context.Context) error {
		namespaces, err := r.gateway.ListNamespaces(stepCtx)
		if err != nil {
			return err
		}
		for i := range namespaces {
			if namespaces[i].Name != ns.Name {
				continue
			}
			if namespaces[i].Status.Phase == corev1.NamespaceTerminating {
				return fmt.Errorf("%s: %w", ns.Name, errNamespaceTerminating)
			}
			res.Operation = OperationNone
			return nil
		}

		res.Operation = OperationCreate
		err = r.gateway.CreateNamespace(stepCtx, ns.DeepCopy())
		if errors.Is(err, cluster.ErrAlreadyExists) {
			logging.Debug("Reconciler", "Namespace %s was created concurrently", ns.Name)
			res.Operation = OperationNone
			return nil
		}
		return err
	})
}

// applyResource creates desired or replaces the object of the same name.
func (r *ApplicationReconciler) applyResource(ctx context.Context, kind Kind, desired client.Object, newExisting func() client.Object) ResourceResult {
	res := ResourceResult{Kind: kind, Name: desired.GetName(), Operation: OperationGet}

	err := r.step(ctx, &res.Attempts, isTransientOrRaced, func(stepCtx context.Context) error {
		existing := newExisting()
		err := r.gateway.Get(stepCtx, desired.GetNamespace(), desired.GetName(), existing)
		switch {
		case errors.Is(err, cluster.ErrNotFound):
			res.Operation = OperationCreate
			return r.gateway.Create(stepCtx, desired.DeepCopyObject().(client.Object))
		case err != nil:
			res.Operation = OperationGet
			return err
		}

		res.Operation = OperationReplace
		obj := desired.DeepCopyObject().(client.Object)
		obj.SetResourceVersion(existing.GetResourceVersion())
		preserveAllocated(existing, obj)
		return r.gateway.Replace(stepCtx, obj)
	})

	if err != nil {
		res.Err = &ResourceApplyError{Kind: kind, Name: res.Name, Operation: res.Operation, Err: err}
	}
	return res
}

// preserveAllocated copies server-allocated fields that a full replace must
// not clear.
func preserveAllocated(existing, desired client.Object) {
	cur, ok := existing.(*corev1.Service)
	if !ok {
		return
	}
	svc, ok := desired.(*corev1.Service)
	if !ok {
		return
	}
	svc.Spec.ClusterIP = cur.Spec.ClusterIP
	svc.Spec.ClusterIPs = cur.Spec.ClusterIPs
	svc.Spec.IPFamilies = cur.Spec.IPFamilies
	svc.Spec.IPFamilyPolicy = cur.Spec.IPFamilyPolicy
}

// step runs fn under the retry policy. API calls use a context detached
// from ctx's cancellation so shutdown never interrupts a step mid-apply;
// the step timeout still bounds it.
func (r *ApplicationReconciler) step(ctx context.Context, attempts *int, retriable func(error) bool, fn func(context.Context) error) error {
	stepCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.stepTimeout)
	defer cancel()

	return retry.OnError(r.backoff, func(err error) bool {
		return stepCtx.Err() == nil && retriable(err)
	}, func() error {
		*attempts++
		return fn(stepCtx)
	})
}

// report emits the outcome to logs, metrics and the event recorder.
func (r *ApplicationReconciler) report(ctx context.Context, out Outcome) {
	ev := out.Event
	result := out.Result()

	switch result {
	case ResultSuccess:
		logging.Info("Reconciler", "Reconciled %s %s in %v", ev.Action, ev.Application.Name, out.Duration())
	case ResultInterrupted:
		logging.Warn("Reconciler", "Reconciliation of %s %s interrupted after %d step(s)",
			ev.Action, ev.Application.Name, len(out.Resources))
	case ResultDropped:
		logging.Warn("Reconciler", "Dropping %s event for %q: %v", ev.Action, ev.Application.Name, out.EventErr)
	default:
		for _, f := range out.Failed() {
			logging.Error("Reconciler", f.Err, "%s %s failed after %d attempt(s)", f.Kind, f.Name, f.Attempts)
		}
		logging.Warn("Reconciler", "Reconciliation of %s %s finished with result %s", ev.Action, ev.Application.Name, result)
	}

	r.metrics.RecordOutcome(out)

	if r.recorder == nil || ev.Action == lifecycle.ActionDelete ||
		result == ResultDropped || result == ResultInterrupted {
		return
	}
	// Namespace provisioning failed: there is no object to attach the event to.
	if errors.As(out.EventErr, new(*NamespaceProvisionError)) {
		return
	}
	recCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.stepTimeout)
	defer cancel()
	if err := r.recorder.RecordOutcome(recCtx, out); err != nil {
		logging.Debug("Reconciler", "Failed to record event for %s: %v", ev.Application.Name, err)
	}
}

// isTransient reports whether an API error is worth retrying.
func isTransient(err error) bool {
	return apierrors.IsTimeout(err) ||
		apierrors.IsServerTimeout(err) ||
		apierrors.IsTooManyRequests(err) ||
		apierrors.IsInternalError(err) ||
		apierrors.IsServiceUnavailable(err) ||
		apierrors.IsUnexpectedServerError(err)
}

func isTransientOrTerminating(err error) bool {
	return isTransient(err) || errors.Is(err, errNamespaceTerminating)
}

// isTransientOrRaced also retries the races of a get-then-write step: a
// conflicting replace or a create that lost against another writer.
func isTransientOrRaced(err error) bool {
	return isTransient(err) || apierrors.IsConflict(err) || errors.Is(err, cluster.ErrAlreadyExists)
}
