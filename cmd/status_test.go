package cmd

import (
	"bytes"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"appdeployer/internal/lifecycle"
	"appdeployer/internal/reconciler"
	"appdeployer/internal/server"
)

type fakeStatusSource struct {
	statuses []reconciler.ReconcileStatus
}

func (f *fakeStatusSource) IsReady() bool { return true }

func (f *fakeStatusSource) GetStatus(name string) (reconciler.ReconcileStatus, bool) {
	for _, s := range f.statuses {
		if s.Name == name {
			return s, true
		}
	}
	return reconciler.ReconcileStatus{}, false
}

func (f *fakeStatusSource) GetAllStatuses() []reconciler.ReconcileStatus { return f.statuses }

func (f *fakeStatusSource) Metrics() *reconciler.Metrics { return nil }

func startStatusServer(t *testing.T) string {
	t.Helper()
	src := &fakeStatusSource{statuses: []reconciler.ReconcileStatus{
		{Name: "shop", State: reconciler.StateSynced, LastAction: lifecycle.ActionCreate, Image: "1.4.0", ReconcileCount: 1},
	}}
	srv := httptest.NewServer(server.NewRouter(src, nil))
	t.Cleanup(srv.Close)
	return srv.URL
}

func status(t *testing.T, endpoint, output string, args ...string) (string, error) {
	t.Helper()
	origEndpoint, origOutput, origQuiet, origTimeout := statusEndpoint, statusOutput, statusQuiet, statusTimeout
	statusEndpoint, statusOutput, statusQuiet, statusTimeout = endpoint, output, false, 2*time.Second
	t.Cleanup(func() {
		statusEndpoint, statusOutput, statusQuiet, statusTimeout = origEndpoint, origOutput, origQuiet, origTimeout
	})

	var out bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&out)
	err := runStatus(cmd, args)
	return out.String(), err
}

func TestStatus_All(t *testing.T) {
	out, err := status(t, startStatusServer(t)+"/", "table")
	require.NoError(t, err)

	assert.Contains(t, out, "shop")
	assert.Contains(t, out, "Synced")
	assert.Contains(t, out, "Summary:")
}

func TestStatus_Single(t *testing.T) {
	out, err := status(t, startStatusServer(t), "json", "shop")
	require.NoError(t, err)

	assert.Contains(t, out, `"name": "shop"`)
	assert.Contains(t, out, `"image": "1.4.0"`)
}

func TestStatus_UnknownApplication(t *testing.T) {
	_, err := status(t, startStatusServer(t), "table", "missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP 404")
	assert.Contains(t, err.Error(), "no status for application missing")
}

func TestStatus_Unreachable(t *testing.T) {
	srv := httptest.NewServer(nil)
	url := srv.URL
	srv.Close()

	_, err := status(t, url, "table")
	assert.ErrorContains(t, err, "failed to reach worker")
}
