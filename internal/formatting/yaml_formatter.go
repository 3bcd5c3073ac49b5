package formatting

import (
	"fmt"

	"sigs.k8s.io/yaml"

	"appdeployer/internal/manifest"
	"appdeployer/internal/reconciler"
)

// YAMLFormatter provides YAML output formatting.
//
// Values are converted through their JSON tags so the output matches the
// field names served over HTTP and used by Kubernetes objects.
type YAMLFormatter struct {
	options Options
}

// FormatStatuses implements Formatter.
func (f *YAMLFormatter) FormatStatuses(statuses []reconciler.ReconcileStatus, summary reconciler.MetricsSummary) error {
	if statuses == nil {
		statuses = []reconciler.ReconcileStatus{}
	}
	return f.write(statusesDocument{Applications: statuses, Summary: summary})
}

// FormatStatus implements Formatter.
func (f *YAMLFormatter) FormatStatus(status reconciler.ReconcileStatus) error {
	return f.write(status)
}

// FormatManifests writes a multi-document stream in apply order.
func (f *YAMLFormatter) FormatManifests(set manifest.DesiredSet) error {
	return manifest.Render(set, f.options.Out)
}

func (f *YAMLFormatter) write(v interface{}) error {
	data, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal YAML: %w", err)
	}
	_, err = f.options.Out.Write(data)
	return err
}
