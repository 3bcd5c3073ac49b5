package formatting

import (
	"fmt"

	"appdeployer/internal/manifest"
	"appdeployer/internal/reconciler"
)

// JSONFormatter provides JSON output formatting
type JSONFormatter struct {
	options Options
}

type statusesDocument struct {
	Applications []reconciler.ReconcileStatus `json:"applications"`
	Summary      reconciler.MetricsSummary    `json:"summary"`
}

// FormatStatuses implements Formatter.
func (f *JSONFormatter) FormatStatuses(statuses []reconciler.ReconcileStatus, summary reconciler.MetricsSummary) error {
	if statuses == nil {
		statuses = []reconciler.ReconcileStatus{}
	}
	return f.write(statusesDocument{Applications: statuses, Summary: summary})
}

// FormatStatus implements Formatter.
func (f *JSONFormatter) FormatStatus(status reconciler.ReconcileStatus) error {
	return f.write(status)
}

// FormatManifests writes the set as a JSON array in apply order.
func (f *JSONFormatter) FormatManifests(set manifest.DesiredSet) error {
	return f.write(set.Objects())
}

func (f *JSONFormatter) write(v interface{}) error {
	_, err := fmt.Fprintln(f.options.Out, PrettyJSON(v))
	return err
}
