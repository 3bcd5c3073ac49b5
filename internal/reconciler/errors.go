package reconciler

import "fmt"

// NamespaceProvisionError means the application namespace could not be
// looked up or created. No dependent resource was attempted.
type NamespaceProvisionError struct {
	Namespace string
	Err       error
}

func (e *NamespaceProvisionError) Error() string {
	return fmt.Sprintf("failed to provision namespace %s: %v", e.Namespace, e.Err)
}

func (e *NamespaceProvisionError) Unwrap() error {
	return e.Err
}

// ResourceApplyError means one resource kind could not be created or replaced.
type ResourceApplyError struct {
	Kind      Kind
	Name      string
	Operation Operation
	Err       error
}

func (e *ResourceApplyError) Error() string {
	return fmt.Sprintf("failed to %s %s %s: %v", e.Operation, e.Kind, e.Name, e.Err)
}

func (e *ResourceApplyError) Unwrap() error {
	return e.Err
}

// NamespaceDeleteError means the namespace deletion failed for a reason other
// than the namespace being absent.
type NamespaceDeleteError struct {
	Namespace string
	Err       error
}

func (e *NamespaceDeleteError) Error() string {
	return fmt.Sprintf("failed to delete namespace %s: %v", e.Namespace, e.Err)
}

func (e *NamespaceDeleteError) Unwrap() error {
	return e.Err
}
