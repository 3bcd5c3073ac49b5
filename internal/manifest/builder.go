package manifest

import (
	appsv1 "k8s.io/api/apps/v1"
	corev1 "k8s.io/api/core/v1"
	networkingv1 "k8s.io/api/networking/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/util/intstr"
)

const (
	// DefaultRegistry is the image repository every application image tag is resolved against.
	DefaultRegistry = "localhost:5000/webapplication"

	// DefaultIngressHost is the host rule on every application Ingress.
	DefaultIngressHost = "k8s-app.local"

	// DefaultIngressClass is the ingress controller class.
	DefaultIngressClass = "nginx"

	// RewriteTargetAnnotation strips the application path prefix before proxying.
	RewriteTargetAnnotation = "nginx.ingress.kubernetes.io/rewrite-target"

	// ServicePort is the port exposed by the application Service.
	ServicePort int32 = 80

	// ContainerPort is the port the application container listens on.
	ContainerPort int32 = 8080

	// Replicas is fixed: deployments are single-replica, full-replace.
	Replicas int32 = 1

	// SelectorLabel is the pod label key matched by the Deployment and Service.
	SelectorLabel = "app"

	// ManagedByLabel marks namespaces created by this worker.
	ManagedByLabel = "app.kubernetes.io/managed-by"

	// ManagedByValue is the value of ManagedByLabel.
	ManagedByValue = "appdeployer"

	// ApplicationLabel records the owning application on the namespace.
	ApplicationLabel = "appdeployer/application"
)

// Options holds the environment-specific constants used when building objects.
type Options struct {
	Registry     string
	IngressHost  string
	IngressClass string
}

// DefaultOptions returns the options matching the platform defaults.
func DefaultOptions() Options {
	return Options{
		Registry:     DefaultRegistry,
		IngressHost:  DefaultIngressHost,
		IngressClass: DefaultIngressClass,
	}
}

// Builder derives the desired Kubernetes objects for an application.
// It is a pure value: no I/O, safe for concurrent use.
type Builder struct {
	opts Options
}

// NewBuilder returns a Builder; empty option fields fall back to the defaults.
func NewBuilder(opts Options) Builder {
	def := DefaultOptions()
	if opts.Registry == "" {
		opts.Registry = def.Registry
	}
	if opts.IngressHost == "" {
		opts.IngressHost = def.IngressHost
	}
	if opts.IngressClass == "" {
		opts.IngressClass = def.IngressClass
	}
	return Builder{opts: opts}
}

// Options returns the effective options.
func (b Builder) Options() Options { return b.opts }

// ImageRef resolves an image tag against the configured registry.
func (b Builder) ImageRef(image string) string {
	return b.opts.Registry + ":" + image
}

func selector(name string) map[string]string {
	return map[string]string{SelectorLabel: LabelName(name)}
}

// BuildNamespace returns the desired Namespace.
func (b Builder) BuildNamespace(name string) *corev1.Namespace {
	return &corev1.Namespace{
		TypeMeta: metav1.TypeMeta{APIVersion: "v1", Kind: "Namespace"},
		ObjectMeta: metav1.ObjectMeta{
			Name: NamespaceName(name),
			Labels: map[string]string{
				ManagedByLabel:   ManagedByValue,
				ApplicationLabel: name,
			},
		},
	}
}

// BuildDeployment returns the desired Deployment running the given image tag.
func (b Builder) BuildDeployment(name, image string) *appsv1.Deployment {
	replicas := Replicas
	return &appsv1.Deployment{
		TypeMeta: metav1.TypeMeta{APIVersion: "apps/v1", Kind: "Deployment"},
		ObjectMeta: metav1.ObjectMeta{
			Name:      DeploymentName(name),
			Namespace: NamespaceName(name),
			Labels:    selector(name),
		},
		Spec: appsv1.DeploymentSpec{
			Replicas: &replicas,
			Selector: &metav1.LabelSelector{MatchLabels: selector(name)},
			Template: corev1.PodTemplateSpec{
				ObjectMeta: metav1.ObjectMeta{Labels: selector(name)},
				Spec: corev1.PodSpec{
					Containers: []corev1.Container{
						{
							Name:  LabelName(name),
							Image: b.ImageRef(image),
							Ports: []corev1.ContainerPort{
								{ContainerPort: ContainerPort, Protocol: corev1.ProtocolTCP},
							},
						},
					},
				},
			},
		},
	}
}

// BuildService returns the desired Service (80 -> 8080/TCP).
func (b Builder) BuildService(name string) *corev1.Service {
	return &corev1.Service{
		TypeMeta: metav1.TypeMeta{APIVersion: "v1", Kind: "Service"},
		ObjectMeta: metav1.ObjectMeta{
			Name:      ServiceName(name),
			Namespace: NamespaceName(name),
			Labels:    selector(name),
		},
		Spec: corev1.ServiceSpec{
			Selector: selector(name),
			Ports: []corev1.ServicePort{
				{
					Port:       ServicePort,
					TargetPort: intstr.FromInt32(ContainerPort),
					Protocol:   corev1.ProtocolTCP,
				},
			},
		},
	}
}

// BuildIngress returns the desired Ingress routing /<name> to the Service.
func (b Builder) BuildIngress(name string) *networkingv1.Ingress {
	pathType := networkingv1.PathTypePrefix
	class := b.opts.IngressClass
	return &networkingv1.Ingress{
		TypeMeta: metav1.TypeMeta{APIVersion: "networking.k8s.io/v1", Kind: "Ingress"},
		ObjectMeta: metav1.ObjectMeta{
			Name:      IngressName(name),
			Namespace: NamespaceName(name),
			Annotations: map[string]string{
				RewriteTargetAnnotation: "/",
			},
		},
		Spec: networkingv1.IngressSpec{
			IngressClassName: &class,
			Rules: []networkingv1.IngressRule{
				{
					Host: b.opts.IngressHost,
					IngressRuleValue: networkingv1.IngressRuleValue{
						HTTP: &networkingv1.HTTPIngressRuleValue{
							Paths: []networkingv1.HTTPIngressPath{
								{
									Path:     PathFor(name),
									PathType: &pathType,
									Backend: networkingv1.IngressBackend{
										Service: &networkingv1.IngressServiceBackend{
											Name: ServiceName(name),
											Port: networkingv1.ServiceBackendPort{Number: ServicePort},
										},
									},
								},
							},
						},
					},
				},
			},
		},
	}
}

// DesiredSet is every object an application owns.
type DesiredSet struct {
	Namespace  *corev1.Namespace
	Deployment *appsv1.Deployment
	Service    *corev1.Service
	Ingress    *networkingv1.Ingress
}

// Desired builds the complete set for an application.
func (b Builder) Desired(name, image string) DesiredSet {
	return DesiredSet{
		Namespace:  b.BuildNamespace(name),
		Deployment: b.BuildDeployment(name, image),
		Service:    b.BuildService(name),
		Ingress:    b.BuildIngress(name),
	}
}

var defaultBuilder = NewBuilder(DefaultOptions())

// BuildNamespace builds the Namespace with default options.
func BuildNamespace(name string) *corev1.Namespace { return defaultBuilder.BuildNamespace(name) }

// BuildDeployment builds the Deployment with default options.
func BuildDeployment(name, image string) *appsv1.Deployment {
	return defaultBuilder.BuildDeployment(name, image)
}

// BuildService builds the Service with default options.
func BuildService(name string) *corev1.Service { return defaultBuilder.BuildService(name) }

// BuildIngress builds the Ingress with default options.
func BuildIngress(name string) *networkingv1.Ingress { return defaultBuilder.BuildIngress(name) }
