package manifest

import (
	"fmt"
	"io"

	"sigs.k8s.io/yaml"
)

// Objects returns the set in apply order.
func (s DesiredSet) Objects() []interface{} {
	return []interface{}{s.Namespace, s.Deployment, s.Service, s.Ingress}
}

// Render writes the set as a multi-document YAML stream.
func Render(set DesiredSet, w io.Writer) error {
	for i, obj := range set.Objects() {
		data, err := yaml.Marshal(obj)
		if err != nil {
			return fmt.Errorf("failed to marshal object %d: %w", i, err)
		}
		if _, err := fmt.Fprintf(w, "---\n%s", data); err != nil {
			return err
		}
	}
	return nil
}
