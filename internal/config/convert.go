package config

import (
	"k8s.io/apimachinery/pkg/util/wait"

	"appdeployer/internal/manifest"
	"appdeployer/internal/transport"
	"appdeployer/pkg/logging"
)

// AMQP returns the transport configuration for the RabbitMQ client. An unset
// prefetch defaults to twice the worker count.
func (c WorkerConfig) AMQP() transport.Config {
	prefetch := c.Transport.Prefetch
	if prefetch == 0 {
		prefetch = 2 * c.Reconciler.Workers
	}
	return transport.Config{
		Host:     c.Transport.Host,
		Port:     c.Transport.Port,
		VHost:    c.Transport.VHost,
		Username: c.Transport.Username,
		Password: c.Transport.Password,
		Queue:    c.Transport.Queue,
		Durable:  c.Transport.Durable,
		Prefetch: prefetch,
	}
}

// Backoff converts the retry settings for k8s.io/client-go/util/retry.
func (r RetryConfig) Backoff() wait.Backoff {
	return wait.Backoff{
		Steps:    r.Steps,
		Duration: r.InitialInterval,
		Factor:   r.Factor,
		Jitter:   r.Jitter,
	}
}

// Options converts the manifest overrides for manifest.NewBuilder.
func (m ManifestConfig) Options() manifest.Options {
	return manifest.Options{
		Registry:     m.Registry,
		IngressHost:  m.IngressHost,
		IngressClass: m.IngressClass,
	}
}

// LogLevel returns the parsed log level, INFO when unparseable.
func (l LoggingConfig) LogLevel() logging.LogLevel {
	level, _ := logging.ParseLevel(l.Level)
	return level
}

// LogFormat returns the configured log format.
func (l LoggingConfig) LogFormat() logging.Format {
	return logging.Format(l.Format)
}
