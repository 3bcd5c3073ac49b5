package config

import (
	"time"

	"appdeployer/internal/manifest"
)

const (
	// DefaultQueue is the queue name used when none is configured.
	DefaultQueue = "app-deployment"

	// DefaultListenAddress serves health, metrics and status.
	DefaultListenAddress = ":8080"
)

// GetDefaultConfig returns the default worker configuration.
func GetDefaultConfig() WorkerConfig {
	return WorkerConfig{
		Transport: TransportConfig{
			Kind:     TransportAMQP,
			Host:     "localhost",
			Port:     5672,
			VHost:    "/",
			Username: "guest",
			Password: "guest",
			Queue:    DefaultQueue,
		},
		Kubernetes: KubernetesConfig{
			FieldManager: "appdeployer",
		},
		Reconciler: ReconcilerConfig{
			Workers:     4,
			StepTimeout: 30 * time.Second,
			Retry: RetryConfig{
				Steps:           4,
				InitialInterval: 200 * time.Millisecond,
				Factor:          2.0,
				Jitter:          0.1,
			},
			RecordEvents:       true,
			TerminatingTimeout: 5 * time.Minute,
		},
		Manifest: ManifestConfig{
			Registry:     manifest.DefaultRegistry,
			IngressHost:  manifest.DefaultIngressHost,
			IngressClass: manifest.DefaultIngressClass,
		},
		Server: ServerConfig{
			ListenAddress: DefaultListenAddress,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}
