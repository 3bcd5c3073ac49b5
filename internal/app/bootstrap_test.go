package app

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"appdeployer/internal/cluster"
	"appdeployer/internal/config"
	"appdeployer/internal/transport"
)

// useFakeCluster replaces the cluster connection for the duration of a test.
func useFakeCluster(t *testing.T) {
	t.Helper()
	original := newClusterGateway
	newClusterGateway = func(config.KubernetesConfig) (cluster.Gateway, error) {
		gw, _ := newFakeGateway()
		return gw, nil
	}
	t.Cleanup(func() { newClusterGateway = original })
}

func TestNewApplication_Overrides(t *testing.T) {
	useFakeCluster(t)

	worker := testWorkerConfig()
	cfg := &Config{
		Debug:         true,
		Workers:       7,
		ListenAddress: "127.0.0.1:9999",
		Worker:        &worker,
	}

	application, err := NewApplication(cfg)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Worker.Logging.Level)
	assert.Equal(t, 7, cfg.Worker.Reconciler.Workers)
	assert.Equal(t, "127.0.0.1:9999", cfg.Worker.Server.ListenAddress)
	assert.NotNil(t, application.Services().Server)
	assert.IsType(t, &transport.MemoryTransport{}, application.Services().Transport)
}

func TestNewApplication_FromFile(t *testing.T) {
	useFakeCluster(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("transport:\n  kind: memory\nserver:\n  listenAddress: \"\"\n"), 0644))

	application, err := NewApplication(NewConfig(false, path))
	require.NoError(t, err)
	assert.Nil(t, application.Services().Server)
}

func TestNewApplication_InvalidConfig(t *testing.T) {
	useFakeCluster(t)

	worker := testWorkerConfig()
	worker.Reconciler.Workers = 0
	_, err := NewApplication(&Config{Worker: &worker})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reconciler.workers")

	_, err = NewApplication(&Config{TransportKind: "kafka", Worker: &worker, Workers: 1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "transport.kind")
}

func TestNewApplication_MissingConfigFile(t *testing.T) {
	_, err := NewApplication(NewConfig(false, filepath.Join(t.TempDir(), "absent.yaml")))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load configuration")
}

func TestInitializeServices_UnknownTransport(t *testing.T) {
	useFakeCluster(t)

	cfg := testWorkerConfig()
	cfg.Transport.Kind = "kafka"
	_, err := InitializeServices(cfg)
	assert.Error(t, err)
}
