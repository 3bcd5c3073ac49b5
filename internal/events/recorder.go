package events

import (
	"context"
	"fmt"
	"strings"
	"time"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"sigs.k8s.io/controller-runtime/pkg/client"

	"appdeployer/internal/manifest"
	"appdeployer/internal/reconciler"
	"appdeployer/pkg/logging"
	strutil "appdeployer/pkg/strings"
)

// DefaultComponent is the event source component when none is configured.
const DefaultComponent = "appdeployer"

// maxMessageLength is the longest event message the API server accepts.
const maxMessageLength = 1024

// ObjectCreator creates cluster objects. cluster.Gateway satisfies it.
type ObjectCreator interface {
	Create(ctx context.Context, obj client.Object) error
}

// Recorder turns reconcile outcomes into Kubernetes Events attached to the
// application namespace. It implements reconciler.OutcomeRecorder.
type Recorder struct {
	creator   ObjectCreator
	templates *MessageTemplateEngine
	component string
	now       func() time.Time
}

// NewRecorder creates a Recorder writing events through creator.
func NewRecorder(creator ObjectCreator, component string) *Recorder {
	if component == "" {
		component = DefaultComponent
	}
	return &Recorder{
		creator:   creator,
		templates: NewMessageTemplateEngine(),
		component: component,
		now:       time.Now,
	}
}

// SetTemplate allows customizing the message template for a specific event reason.
func (r *Recorder) SetTemplate(reason EventReason, template string) {
	r.templates.SetTemplate(reason, template)
}

// RecordOutcome implements reconciler.OutcomeRecorder.
func (r *Recorder) RecordOutcome(ctx context.Context, o reconciler.Outcome) error {
	reason, ok := reasonFor(o.Result())
	if !ok {
		return nil
	}

	name := o.Event.Application.Name
	data := EventData{
		Name:      name,
		Namespace: manifest.NamespaceName(name),
		Action:    string(o.Event.Action),
		Image:     o.Event.Application.Image,
		Duration:  o.Duration(),
	}
	if err := o.Err(); err != nil {
		data.Error = err.Error()
	}
	var failed []string
	for _, f := range o.Failed() {
		failed = append(failed, string(f.Kind))
	}
	data.Failed = strings.Join(failed, ", ")

	message := r.templates.Render(reason, data)
	eventType := string(getEventType(reason))

	logging.Debug("events", "Generating application event: reason=%s, message=%s, type=%s",
		string(reason), message, eventType)

	event := r.buildEvent(data.Namespace, reason, message, eventType)
	if err := r.creator.Create(ctx, event); err != nil {
		return fmt.Errorf("failed to create event in %s: %w", data.Namespace, err)
	}
	return nil
}

func reasonFor(result reconciler.Result) (EventReason, bool) {
	switch result {
	case reconciler.ResultSuccess:
		return ReasonApplicationReconciled, true
	case reconciler.ResultPartial:
		return ReasonApplicationPartiallyReconciled, true
	case reconciler.ResultFailed:
		return ReasonApplicationReconcileFailed, true
	default:
		return "", false
	}
}

// buildEvent creates a corev1.Event whose involved object is the namespace.
func (r *Recorder) buildEvent(namespace string, reason EventReason, message, eventType string) *corev1.Event {
	message = strutil.TruncateBytes(message, maxMessageLength)
	now := metav1.NewTime(r.now())

	return &corev1.Event{
		ObjectMeta: metav1.ObjectMeta{
			GenerateName: namespace + "-",
			Namespace:    namespace,
			Labels: map[string]string{
				manifest.ManagedByLabel: manifest.ManagedByValue,
			},
		},
		InvolvedObject: corev1.ObjectReference{
			APIVersion: "v1",
			Kind:       "Namespace",
			Name:       namespace,
		},
		Reason:         string(reason),
		Message:        message,
		Type:           eventType,
		Source:         corev1.EventSource{Component: r.component},
		FirstTimestamp: now,
		LastTimestamp:  now,
		Count:          1,
	}
}
