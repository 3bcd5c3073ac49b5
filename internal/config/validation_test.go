package config

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*WorkerConfig)
		fields []string
	}{
		{
			name:   "defaults are valid",
			mutate: func(*WorkerConfig) {},
		},
		{
			name:   "unknown transport",
			mutate: func(c *WorkerConfig) { c.Transport.Kind = "kafka" },
			fields: []string{"transport.kind"},
		},
		{
			name: "amqp needs host and queue",
			mutate: func(c *WorkerConfig) {
				c.Transport.Host = ""
				c.Transport.Queue = " "
				c.Transport.Port = 70000
			},
			fields: []string{"transport.host", "transport.queue", "transport.port"},
		},
		{
			name: "memory transport ignores broker settings",
			mutate: func(c *WorkerConfig) {
				c.Transport.Kind = TransportMemory
				c.Transport.Host = ""
				c.Transport.Port = 0
			},
		},
		{
			name: "reconciler bounds",
			mutate: func(c *WorkerConfig) {
				c.Reconciler.Workers = 0
				c.Reconciler.StepTimeout = 0
				c.Reconciler.TerminatingTimeout = -time.Second
				c.Reconciler.Retry.Steps = 0
				c.Reconciler.Retry.Factor = 0.5
				c.Reconciler.Retry.Jitter = -1
				c.Reconciler.Retry.InitialInterval = -time.Second
			},
			fields: []string{
				"reconciler.workers", "reconciler.stepTimeout", "reconciler.terminatingTimeout", "reconciler.retry.steps",
				"reconciler.retry.initialInterval", "reconciler.retry.factor", "reconciler.retry.jitter",
			},
		},
		{
			name:   "manifest registry required",
			mutate: func(c *WorkerConfig) { c.Manifest.Registry = "" },
			fields: []string{"manifest.registry"},
		},
		{
			name:   "bad listen address",
			mutate: func(c *WorkerConfig) { c.Server.ListenAddress = "8080" },
			fields: []string{"server.listenAddress"},
		},
		{
			name:   "empty listen address disables server",
			mutate: func(c *WorkerConfig) { c.Server.ListenAddress = "" },
		},
		{
			name: "logging",
			mutate: func(c *WorkerConfig) {
				c.Logging.Level = "verbose"
				c.Logging.Format = "xml"
			},
			fields: []string{"logging.level", "logging.format"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := GetDefaultConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if len(tt.fields) == 0 {
				assert.NoError(t, err)
				return
			}

			var verrs ValidationErrors
			require.True(t, errors.As(err, &verrs), "expected ValidationErrors, got %v", err)

			var got []string
			for _, ve := range verrs {
				got = append(got, ve.Field)
			}
			assert.ElementsMatch(t, tt.fields, got)
		})
	}
}

func TestValidationErrors_Error(t *testing.T) {
	var errs ValidationErrors
	assert.Equal(t, "no validation errors", errs.Error())

	errs.Add("a", "is required")
	assert.Equal(t, "field 'a': is required", errs.Error())

	errs.Add("b", "must be positive", -1)
	assert.Equal(t, "validation failed: field 'a': is required; field 'b': must be positive", errs.Error())
	assert.Equal(t, -1, errs[1].Value)
}

func TestValidateHelpers(t *testing.T) {
	assert.NoError(t, ValidateRequired("name", "x"))
	assert.Error(t, ValidateRequired("name", "  "))

	assert.NoError(t, ValidateOneOf("kind", "amqp", []string{"amqp", "memory"}))
	err := ValidateOneOf("kind", "kafka", []string{"amqp", "memory"})
	assert.EqualError(t, err, "field 'kind': must be one of: amqp, memory")

	assert.NoError(t, ValidatePort("port", 5672))
	assert.Error(t, ValidatePort("port", 0))
}
