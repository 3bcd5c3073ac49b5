package cluster

import (
	"context"
	"errors"
	"fmt"

	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	"sigs.k8s.io/controller-runtime/pkg/client"

	"appdeployer/pkg/logging"
)

var (
	// ErrNotFound is wrapped by every gateway error caused by a missing object.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists is wrapped by create errors for objects that already exist.
	ErrAlreadyExists = errors.New("already exists")
)

// Gateway is the cluster access the reconciler depends on.
//
// Errors for missing or duplicate objects wrap ErrNotFound / ErrAlreadyExists
// so callers can use errors.Is without importing apimachinery. The original
// API error stays in the chain for apierrors.Is* checks.
type Gateway interface {
	// ListNamespaces returns every namespace in the cluster.
	ListNamespaces(ctx context.Context) ([]corev1.Namespace, error)

	// CreateNamespace creates ns.
	CreateNamespace(ctx context.Context, ns *corev1.Namespace) error

	// DeleteNamespace deletes the named namespace; contained objects are
	// removed by the cluster's garbage collector.
	DeleteNamespace(ctx context.Context, name string) error

	// Get fetches namespace/name into obj.
	Get(ctx context.Context, namespace, name string, obj client.Object) error

	// Create creates obj in its namespace.
	Create(ctx context.Context, obj client.Object) error

	// Replace overwrites the stored object with obj. obj must carry the
	// resourceVersion of the object being replaced.
	Replace(ctx context.Context, obj client.Object) error
}

// KubernetesGateway implements Gateway on a controller-runtime client.
type KubernetesGateway struct {
	client       client.Client
	fieldManager string
}

// NewKubernetesGateway wraps c. fieldManager is recorded as the owner of
// every field written by the gateway.
func NewKubernetesGateway(c client.Client, fieldManager string) *KubernetesGateway {
	if fieldManager == "" {
		fieldManager = DefaultFieldManager
	}
	return &KubernetesGateway{client: c, fieldManager: fieldManager}
}

// Client returns the underlying controller-runtime client.
func (g *KubernetesGateway) Client() client.Client {
	return g.client
}

// ListNamespaces implements Gateway.
func (g *KubernetesGateway) ListNamespaces(ctx context.Context) ([]corev1.Namespace, error) {
	list := &corev1.NamespaceList{}
	if err := g.client.List(ctx, list); err != nil {
		return nil, fmt.Errorf("failed to list namespaces: %w", translate(err))
	}
	return list.Items, nil
}

// CreateNamespace implements Gateway.
func (g *KubernetesGateway) CreateNamespace(ctx context.Context, ns *corev1.Namespace) error {
	logging.Debug("Gateway", "Creating namespace %s", ns.Name)
	if err := g.client.Create(ctx, ns, client.FieldOwner(g.fieldManager)); err != nil {
		return fmt.Errorf("failed to create namespace %s: %w", ns.Name, translate(err))
	}
	return nil
}

// DeleteNamespace implements Gateway.
func (g *KubernetesGateway) DeleteNamespace(ctx context.Context, name string) error {
	logging.Debug("Gateway", "Deleting namespace %s", name)
	ns := &corev1.Namespace{}
	ns.Name = name
	if err := g.client.Delete(ctx, ns, client.PropagationPolicy("Background")); err != nil {
		return fmt.Errorf("failed to delete namespace %s: %w", name, translate(err))
	}
	return nil
}

// Get implements Gateway.
func (g *KubernetesGateway) Get(ctx context.Context, namespace, name string, obj client.Object) error {
	if err := g.client.Get(ctx, client.ObjectKey{Namespace: namespace, Name: name}, obj); err != nil {
		return fmt.Errorf("failed to get %s/%s: %w", namespace, name, translate(err))
	}
	return nil
}

// Create implements Gateway.
func (g *KubernetesGateway) Create(ctx context.Context, obj client.Object) error {
	logging.Debug("Gateway", "Creating %T %s/%s", obj, obj.GetNamespace(), obj.GetName())
	if err := g.client.Create(ctx, obj, client.FieldOwner(g.fieldManager)); err != nil {
		return fmt.Errorf("failed to create %s/%s: %w", obj.GetNamespace(), obj.GetName(), translate(err))
	}
	return nil
}

// Replace implements Gateway.
func (g *KubernetesGateway) Replace(ctx context.Context, obj client.Object) error {
	logging.Debug("Gateway", "Replacing %T %s/%s", obj, obj.GetNamespace(), obj.GetName())
	if err := g.client.Update(ctx, obj, client.FieldOwner(g.fieldManager)); err != nil {
		return fmt.Errorf("failed to replace %s/%s: %w", obj.GetNamespace(), obj.GetName(), translate(err))
	}
	return nil
}

// translate attaches the gateway sentinels to well-known API errors.
func translate(err error) error {
	switch {
	case apierrors.IsNotFound(err):
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	case apierrors.IsAlreadyExists(err):
		return fmt.Errorf("%w: %w", ErrAlreadyExists, err)
	default:
		return err
	}
}
