package config

import (
	"time"
)

// WorkerConfig is the top-level configuration structure for the worker.
type WorkerConfig struct {
	Transport  TransportConfig  `yaml:"transport"`
	Kubernetes KubernetesConfig `yaml:"kubernetes"`
	Reconciler ReconcilerConfig `yaml:"reconciler"`
	Manifest   ManifestConfig   `yaml:"manifest"`
	Server     ServerConfig     `yaml:"server"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// TransportKind selects the event transport implementation.
type TransportKind string

const (
	// TransportAMQP consumes from a RabbitMQ queue.
	TransportAMQP TransportKind = "amqp"

	// TransportMemory uses an in-process queue, for local dry runs.
	TransportMemory TransportKind = "memory"
)

// TransportConfig defines the queue lifecycle events are consumed from.
type TransportConfig struct {
	Kind     TransportKind `yaml:"kind,omitempty"`     // amqp or memory (default: amqp)
	Host     string        `yaml:"host,omitempty"`     // Broker host (env QUEUE_HOST)
	Port     int           `yaml:"port,omitempty"`     // Broker port (env QUEUE_PORT, default: 5672)
	VHost    string        `yaml:"vhost,omitempty"`    // Virtual host (env QUEUE_VHOST, default: /)
	Username string        `yaml:"username,omitempty"` // env QUEUE_USERNAME
	Password string        `yaml:"password,omitempty"` // env QUEUE_PASSWORD
	Queue    string        `yaml:"queue,omitempty"`    // Queue name (env QUEUE_NAME)
	Durable  bool          `yaml:"durable,omitempty"`  // Declare a durable queue (default: false)
	Prefetch int           `yaml:"prefetch,omitempty"` // Unacked delivery limit (default: 2x workers)
}

// KubernetesConfig defines how the worker reaches the cluster.
type KubernetesConfig struct {
	Kubeconfig   string `yaml:"kubeconfig,omitempty"`   // Path to a kubeconfig (env KUBECONFIG); empty uses in-cluster discovery
	Context      string `yaml:"context,omitempty"`      // kubeconfig context override
	FieldManager string `yaml:"fieldManager,omitempty"` // Field manager recorded on writes
}

// ReconcilerConfig tunes the reconciliation workers.
type ReconcilerConfig struct {
	Workers      int           `yaml:"workers,omitempty"`
	StepTimeout  time.Duration `yaml:"stepTimeout,omitempty"`
	Retry        RetryConfig   `yaml:"retry"`
	RecordEvents bool          `yaml:"recordEvents"`

	// TerminatingTimeout bounds the wait for a namespace that an earlier
	// Delete left Terminating.
	TerminatingTimeout time.Duration `yaml:"terminatingTimeout,omitempty"`
}

// RetryConfig is the backoff applied to transient API errors.
type RetryConfig struct {
	Steps           int           `yaml:"steps,omitempty"`
	InitialInterval time.Duration `yaml:"initialInterval,omitempty"`
	Factor          float64       `yaml:"factor,omitempty"`
	Jitter          float64       `yaml:"jitter,omitempty"`
}

// ManifestConfig overrides the constants used when building resources.
type ManifestConfig struct {
	Registry     string `yaml:"registry,omitempty"`
	IngressHost  string `yaml:"ingressHost,omitempty"`
	IngressClass string `yaml:"ingressClass,omitempty"`
}

// ServerConfig defines the health, metrics and status HTTP endpoint.
type ServerConfig struct {
	ListenAddress string `yaml:"listenAddress,omitempty"` // env APPDEPLOYER_LISTEN_ADDR; empty disables the server
}

// LoggingConfig defines log output.
type LoggingConfig struct {
	Level  string `yaml:"level,omitempty"`  // debug, info, warn, error (env APPDEPLOYER_LOG_LEVEL)
	Format string `yaml:"format,omitempty"` // text or json
}
