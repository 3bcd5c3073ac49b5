package formatting

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"sigs.k8s.io/yaml"

	"appdeployer/internal/lifecycle"
	"appdeployer/internal/manifest"
	"appdeployer/internal/reconciler"
)

func sampleStatuses() []reconciler.ReconcileStatus {
	finished := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	return []reconciler.ReconcileStatus{
		{
			Name:              "bar",
			State:             reconciler.StatePartiallySynced,
			LastAction:        lifecycle.ActionUpdate,
			Image:             "v2",
			LastReconcileTime: &finished,
			LastError:         "Ingress ingr-bar: forbidden",
			ReconcileCount:    2,
			FailureCount:      1,
			Resources: []reconciler.ResourceStatus{
				{Kind: reconciler.KindNamespace, Name: "ns-bar", Operation: reconciler.OperationCreate, Attempts: 1},
				{Kind: reconciler.KindIngress, Name: "ingr-bar", Operation: reconciler.OperationReplace, Attempts: 1, Error: "forbidden"},
			},
		},
		{Name: "foo", State: reconciler.StateSynced, LastAction: lifecycle.ActionCreate, Image: "v1", ReconcileCount: 1},
	}
}

func TestParseFormat(t *testing.T) {
	for _, in := range []string{"table", "JSON", " yaml "} {
		_, err := ParseFormat(in)
		assert.NoError(t, err, in)
	}
	_, err := ParseFormat("xml")
	assert.Error(t, err)
}

func TestNew_SelectsFormatter(t *testing.T) {
	assert.IsType(t, &JSONFormatter{}, New(Options{Format: FormatJSON}))
	assert.IsType(t, &YAMLFormatter{}, New(Options{Format: FormatYAML}))
	assert.IsType(t, &TableFormatter{}, New(Options{Format: FormatTable}))
	assert.IsType(t, &TableFormatter{}, New(Options{}))
}

func TestTableFormatter_Statuses(t *testing.T) {
	var buf bytes.Buffer
	f := New(Options{Format: FormatTable, Out: &buf})

	require.NoError(t, f.FormatStatuses(sampleStatuses(), reconciler.MetricsSummary{TotalReconciles: 3, TotalPartial: 1, TotalSuccesses: 2}))

	out := buf.String()
	assert.Contains(t, out, "NAME")
	assert.Contains(t, out, "foo")
	assert.Contains(t, out, "PartiallySynced")
	assert.Contains(t, out, "3 reconciles")
	assert.Less(t, strings.Index(out, "bar"), strings.Index(out, "foo"))
}

func TestTableFormatter_EmptyQuiet(t *testing.T) {
	var buf bytes.Buffer
	f := New(Options{Format: FormatTable, Out: &buf, Quiet: true})

	require.NoError(t, f.FormatStatuses(nil, reconciler.MetricsSummary{}))
	assert.Contains(t, buf.String(), "No applications reconciled yet")
	assert.NotContains(t, buf.String(), "Summary:")
}

func TestTableFormatter_Status(t *testing.T) {
	var buf bytes.Buffer
	f := New(Options{Format: FormatTable, Out: &buf})

	require.NoError(t, f.FormatStatus(sampleStatuses()[0]))

	out := buf.String()
	assert.Contains(t, out, "ingr-bar")
	assert.Contains(t, out, "forbidden")
	assert.Contains(t, out, "OPERATION")
}

func TestTableFormatter_Manifests(t *testing.T) {
	var buf bytes.Buffer
	f := New(Options{Format: FormatTable, Out: &buf})

	require.NoError(t, f.FormatManifests(manifest.NewBuilder(manifest.DefaultOptions()).Desired("foo", "v1")))

	out := buf.String()
	for _, want := range []string{"ns-foo", "app-foo", "svc-foo", "ingr-foo", manifest.DefaultRegistry + ":v1", manifest.DefaultIngressHost + "/foo"} {
		assert.Contains(t, out, want)
	}
}

func TestJSONFormatter_Statuses(t *testing.T) {
	var buf bytes.Buffer
	f := New(Options{Format: FormatJSON, Out: &buf})

	require.NoError(t, f.FormatStatuses(nil, reconciler.MetricsSummary{TotalDropped: 2}))

	var doc struct {
		Applications []reconciler.ReconcileStatus `json:"applications"`
		Summary      reconciler.MetricsSummary    `json:"summary"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	assert.NotNil(t, doc.Applications)
	assert.Equal(t, int64(2), doc.Summary.TotalDropped)
}

func TestYAMLFormatter_UsesJSONFieldNames(t *testing.T) {
	var buf bytes.Buffer
	f := New(Options{Format: FormatYAML, Out: &buf})

	require.NoError(t, f.FormatStatus(sampleStatuses()[1]))
	assert.Contains(t, buf.String(), "lastAction: Create")

	var got reconciler.ReconcileStatus
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "foo", got.Name)
}

func TestYAMLFormatter_Manifests(t *testing.T) {
	var buf bytes.Buffer
	f := New(Options{Format: FormatYAML, Out: &buf})

	require.NoError(t, f.FormatManifests(manifest.NewBuilder(manifest.DefaultOptions()).Desired("foo", "v1")))
	assert.Equal(t, 4, strings.Count(buf.String(), "---\n"))
}
