// Package cluster provides the Kubernetes access used by the reconciler.
//
// Gateway is deliberately narrow: list/create/delete for namespaces and
// get/create/replace for namespaced objects. KubernetesGateway implements it
// on a controller-runtime client; tests use the same type over
// sigs.k8s.io/controller-runtime/pkg/client/fake.
package cluster
