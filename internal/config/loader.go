package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"appdeployer/pkg/logging"
)

// Environment variables read by Load. The QUEUE_* names are the ones the
// upstream API and its deployment manifests already use.
const (
	EnvQueueHost     = "QUEUE_HOST"
	EnvQueuePort     = "QUEUE_PORT"
	EnvQueueName     = "QUEUE_NAME"
	EnvQueueUsername = "QUEUE_USERNAME"
	EnvQueuePassword = "QUEUE_PASSWORD"
	EnvQueueVHost    = "QUEUE_VHOST"
	EnvKubeconfig    = "KUBECONFIG"
	EnvListenAddress = "APPDEPLOYER_LISTEN_ADDR"
	EnvLogLevel      = "APPDEPLOYER_LOG_LEVEL"
)

// Load builds the worker configuration: defaults, then the YAML file at
// path (if path is non-empty), then environment overrides. The result is
// not validated; call Validate once command-line overrides are applied.
func Load(path string) (WorkerConfig, error) {
	config := GetDefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			errorType := "io"
			if errors.Is(err, os.ErrNotExist) {
				errorType = "missing"
			}
			return WorkerConfig{}, NewConfigurationError(path, errorType, "cannot read configuration file", err)
		}
		if err := yaml.Unmarshal(data, &config); err != nil {
			return WorkerConfig{}, NewConfigurationError(path, "parse", "malformed configuration file", err)
		}
		logging.Info("ConfigLoader", "Loaded configuration from %s", path)
	} else {
		logging.Debug("ConfigLoader", "No configuration file given, using defaults")
	}

	if err := applyEnv(&config); err != nil {
		return WorkerConfig{}, err
	}
	return config, nil
}

func applyEnv(config *WorkerConfig) error {
	setString := func(key string, dst *string) {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			*dst = v
			logging.Debug("ConfigLoader", "Using %s from environment", key)
		}
	}

	setString(EnvQueueHost, &config.Transport.Host)
	setString(EnvQueueName, &config.Transport.Queue)
	setString(EnvQueueUsername, &config.Transport.Username)
	setString(EnvQueuePassword, &config.Transport.Password)
	setString(EnvQueueVHost, &config.Transport.VHost)
	setString(EnvKubeconfig, &config.Kubernetes.Kubeconfig)
	setString(EnvListenAddress, &config.Server.ListenAddress)
	setString(EnvLogLevel, &config.Logging.Level)

	if v, ok := os.LookupEnv(EnvQueuePort); ok && v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvQueuePort, v, err)
		}
		config.Transport.Port = port
	}
	return nil
}
