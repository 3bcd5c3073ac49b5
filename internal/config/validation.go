package config

import (
	"fmt"
	"net"
	"strings"

	"appdeployer/pkg/logging"
)

// ValidationError represents a validation error with context
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

// Error implements the error interface
func (ve ValidationError) Error() string {
	if ve.Field == "" {
		return ve.Message
	}
	return fmt.Sprintf("field '%s': %s", ve.Field, ve.Message)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

// Error implements the error interface for multiple validation errors
func (ve ValidationErrors) Error() string {
	if len(ve) == 0 {
		return "no validation errors"
	}
	if len(ve) == 1 {
		return ve[0].Error()
	}

	var messages []string
	for _, err := range ve {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(messages, "; "))
}

// HasErrors returns true if there are any validation errors
func (ve ValidationErrors) HasErrors() bool {
	return len(ve) > 0
}

// Add adds a new validation error
func (ve *ValidationErrors) Add(field, message string, value ...interface{}) {
	var val interface{}
	if len(value) > 0 {
		val = value[0]
	}
	*ve = append(*ve, ValidationError{
		Field:   field,
		Value:   val,
		Message: message,
	})
}

// ValidateRequired checks if a required string field is not empty
func ValidateRequired(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return ValidationError{
			Field:   field,
			Value:   value,
			Message: "is required",
		}
	}
	return nil
}

// ValidateOneOf checks if a value is in a list of allowed values
func ValidateOneOf(field, value string, allowed []string) error {
	for _, allowedValue := range allowed {
		if value == allowedValue {
			return nil
		}
	}
	return ValidationError{
		Field:   field,
		Value:   value,
		Message: fmt.Sprintf("must be one of: %s", strings.Join(allowed, ", ")),
	}
}

// ValidatePort checks that value is a usable TCP port.
func ValidatePort(field string, value int) error {
	if value < 1 || value > 65535 {
		return ValidationError{
			Field:   field,
			Value:   value,
			Message: "must be between 1 and 65535",
		}
	}
	return nil
}

// Validate checks the configuration and returns ValidationErrors listing
// every problem found, or nil.
func (c WorkerConfig) Validate() error {
	var errs ValidationErrors
	collect := func(err error) {
		if ve, ok := err.(ValidationError); ok {
			errs = append(errs, ve)
		}
	}

	collect(ValidateOneOf("transport.kind", string(c.Transport.Kind),
		[]string{string(TransportAMQP), string(TransportMemory)}))
	if c.Transport.Kind == TransportAMQP {
		collect(ValidateRequired("transport.host", c.Transport.Host))
		collect(ValidateRequired("transport.queue", c.Transport.Queue))
		collect(ValidatePort("transport.port", c.Transport.Port))
	}
	if c.Transport.Prefetch < 0 {
		errs.Add("transport.prefetch", "must not be negative", c.Transport.Prefetch)
	}

	if c.Reconciler.Workers < 1 {
		errs.Add("reconciler.workers", "must be at least 1", c.Reconciler.Workers)
	}
	if c.Reconciler.StepTimeout <= 0 {
		errs.Add("reconciler.stepTimeout", "must be positive", c.Reconciler.StepTimeout)
	}
	if c.Reconciler.TerminatingTimeout < 0 {
		errs.Add("reconciler.terminatingTimeout", "must not be negative", c.Reconciler.TerminatingTimeout)
	}
	if c.Reconciler.Retry.Steps < 1 {
		errs.Add("reconciler.retry.steps", "must be at least 1", c.Reconciler.Retry.Steps)
	}
	if c.Reconciler.Retry.InitialInterval < 0 {
		errs.Add("reconciler.retry.initialInterval", "must not be negative", c.Reconciler.Retry.InitialInterval)
	}
	if c.Reconciler.Retry.Factor != 0 && c.Reconciler.Retry.Factor < 1 {
		errs.Add("reconciler.retry.factor", "must be 0 or at least 1", c.Reconciler.Retry.Factor)
	}
	if c.Reconciler.Retry.Jitter < 0 {
		errs.Add("reconciler.retry.jitter", "must not be negative", c.Reconciler.Retry.Jitter)
	}

	collect(ValidateRequired("manifest.registry", c.Manifest.Registry))
	collect(ValidateRequired("manifest.ingressHost", c.Manifest.IngressHost))

	if addr := c.Server.ListenAddress; addr != "" {
		if _, _, err := net.SplitHostPort(addr); err != nil {
			errs.Add("server.listenAddress", err.Error(), addr)
		}
	}

	if _, err := logging.ParseLevel(c.Logging.Level); err != nil {
		errs.Add("logging.level", err.Error(), c.Logging.Level)
	}
	collect(ValidateOneOf("logging.format", c.Logging.Format,
		[]string{string(logging.FormatText), string(logging.FormatJSON)}))

	if errs.HasErrors() {
		return errs
	}
	return nil
}
