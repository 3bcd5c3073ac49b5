package manifest

// Derived identifiers. Every resource an application owns is named from the
// application name alone; the reconciler never matches on labels.

// NamespaceName returns the namespace holding all resources of an application.
func NamespaceName(name string) string { return "ns-" + name }

// LabelName returns the value of the "app" label on the application's pods.
func LabelName(name string) string { return "app-" + name }

// DeploymentName returns the application's Deployment name.
func DeploymentName(name string) string { return "app-" + name }

// ServiceName returns the application's Service name.
func ServiceName(name string) string { return "svc-" + name }

// IngressName returns the application's Ingress name.
func IngressName(name string) string { return "ingr-" + name }

// PathFor returns the ingress path prefix routed to the application.
func PathFor(name string) string { return "/" + name }
