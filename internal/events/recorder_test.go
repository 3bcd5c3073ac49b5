package events

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	corev1 "k8s.io/api/core/v1"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/client/fake"

	"appdeployer/internal/cluster"
	"appdeployer/internal/lifecycle"
	"appdeployer/internal/reconciler"
)

func newRecorder(t *testing.T) (*Recorder, client.Client) {
	t.Helper()
	c := fake.NewClientBuilder().WithScheme(cluster.NewScheme()).Build()
	r := NewRecorder(cluster.NewKubernetesGateway(c, ""), "")
	r.now = func() time.Time { return time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC) }
	return r, c
}

func listEvents(t *testing.T, c client.Client, namespace string) []corev1.Event {
	t.Helper()
	list := &corev1.EventList{}
	require.NoError(t, c.List(context.Background(), list, client.InNamespace(namespace)))
	return list.Items
}

func outcome(action lifecycle.Action, image string, failures ...reconciler.Kind) reconciler.Outcome {
	start := time.Now()
	o := reconciler.Outcome{
		Event:    lifecycle.New(action, "foo", image),
		Started:  start,
		Finished: start.Add(2 * time.Second),
	}
	failed := map[reconciler.Kind]bool{}
	for _, k := range failures {
		failed[k] = true
	}
	for _, k := range []reconciler.Kind{reconciler.KindNamespace, reconciler.KindDeployment, reconciler.KindService, reconciler.KindIngress} {
		res := reconciler.ResourceResult{Kind: k, Operation: reconciler.OperationCreate}
		if failed[k] {
			res.Err = errors.New(strings.ToLower(string(k)) + " rejected")
		}
		o.Resources = append(o.Resources, res)
	}
	return o
}

func TestRecorder_Success(t *testing.T) {
	r, c := newRecorder(t)

	require.NoError(t, r.RecordOutcome(context.Background(), outcome(lifecycle.ActionCreate, "v2")))

	events := listEvents(t, c, "ns-foo")
	require.Len(t, events, 1)
	ev := events[0]

	assert.Equal(t, string(ReasonApplicationReconciled), ev.Reason)
	assert.Equal(t, string(EventTypeNormal), ev.Type)
	assert.Equal(t, "Create of application foo applied image v2 in 2s", ev.Message)
	assert.Equal(t, "Namespace", ev.InvolvedObject.Kind)
	assert.Equal(t, "ns-foo", ev.InvolvedObject.Name)
	assert.Equal(t, DefaultComponent, ev.Source.Component)
	assert.Equal(t, int32(1), ev.Count)
	assert.True(t, strings.HasPrefix(ev.Name, "ns-foo-"))
}

func TestRecorder_Partial(t *testing.T) {
	r, c := newRecorder(t)

	require.NoError(t, r.RecordOutcome(context.Background(),
		outcome(lifecycle.ActionUpdate, "v3", reconciler.KindService, reconciler.KindIngress)))

	events := listEvents(t, c, "ns-foo")
	require.Len(t, events, 1)
	assert.Equal(t, string(ReasonApplicationPartiallyReconciled), events[0].Reason)
	assert.Equal(t, string(EventTypeWarning), events[0].Type)
	assert.Contains(t, events[0].Message, "failed: Service, Ingress")
	assert.Contains(t, events[0].Message, "ingress rejected")
}

func TestRecorder_Failed(t *testing.T) {
	r, c := newRecorder(t)

	require.NoError(t, r.RecordOutcome(context.Background(),
		outcome(lifecycle.ActionCreate, "v1", reconciler.KindDeployment, reconciler.KindService, reconciler.KindIngress)))

	events := listEvents(t, c, "ns-foo")
	require.Len(t, events, 1)
	assert.Equal(t, string(ReasonApplicationReconcileFailed), events[0].Reason)
}

func TestRecorder_SkipsInterruptedAndDropped(t *testing.T) {
	r, c := newRecorder(t)

	interrupted := outcome(lifecycle.ActionCreate, "v1")
	interrupted.Interrupted = true
	require.NoError(t, r.RecordOutcome(context.Background(), interrupted))

	dropped := reconciler.Outcome{
		Event:    lifecycle.Event{Action: lifecycle.ActionCreate, Application: lifecycle.Application{Name: "foo"}},
		EventErr: &lifecycle.MalformedEventError{Reason: lifecycle.ReasonMissingImage},
	}
	require.NoError(t, r.RecordOutcome(context.Background(), dropped))

	assert.Empty(t, listEvents(t, c, "ns-foo"))
}

func TestRecorder_TruncatesLongMessages(t *testing.T) {
	r, c := newRecorder(t)

	o := outcome(lifecycle.ActionCreate, "v1", reconciler.KindIngress)
	o.Resources[3].Err = errors.New(strings.Repeat("x", 4096))
	require.NoError(t, r.RecordOutcome(context.Background(), o))

	events := listEvents(t, c, "ns-foo")
	require.Len(t, events, 1)
	assert.Len(t, events[0].Message, maxMessageLength)
	assert.True(t, strings.HasSuffix(events[0].Message, "..."))
}

type failingCreator struct{}

func (failingCreator) Create(context.Context, client.Object) error {
	return errors.New("forbidden")
}

func TestRecorder_CreateError(t *testing.T) {
	r := NewRecorder(failingCreator{}, "worker")

	err := r.RecordOutcome(context.Background(), outcome(lifecycle.ActionCreate, "v1"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ns-foo")
	assert.Equal(t, "worker", r.component)
}
