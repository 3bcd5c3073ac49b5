// Package formatting renders worker data for the command line.
//
// Status reports served by the worker and the desired resource set of an
// application can be written as a rich table, JSON or YAML.
package formatting

import (
	"fmt"
	"io"
	"os"
	"strings"

	"appdeployer/internal/manifest"
	"appdeployer/internal/reconciler"
)

// OutputFormat represents the desired output format
type OutputFormat string

const (
	FormatTable OutputFormat = "table" // Rich table output
	FormatJSON  OutputFormat = "json"  // JSON output
	FormatYAML  OutputFormat = "yaml"  // YAML output
)

// Formats lists the accepted output formats.
var Formats = []OutputFormat{FormatTable, FormatJSON, FormatYAML}

// ParseFormat matches s case-insensitively against the known formats.
func ParseFormat(s string) (OutputFormat, error) {
	f := OutputFormat(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Formats {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown output format %q (want table, json or yaml)", s)
}

// Options configures the formatter behavior
type Options struct {
	Format OutputFormat
	Out    io.Writer // Defaults to os.Stdout
	Quiet  bool      // Suppress decorative elements
}

// Formatter writes worker data in one output format.
type Formatter interface {
	// FormatStatuses writes every application status plus the worker summary.
	FormatStatuses(statuses []reconciler.ReconcileStatus, summary reconciler.MetricsSummary) error

	// FormatStatus writes a single application status with its resources.
	FormatStatus(status reconciler.ReconcileStatus) error

	// FormatManifests writes the desired resources of one application.
	FormatManifests(set manifest.DesiredSet) error
}

// New creates the formatter for options.Format. Unknown formats fall back
// to the table formatter.
func New(options Options) Formatter {
	if options.Out == nil {
		options.Out = os.Stdout
	}
	switch options.Format {
	case FormatJSON:
		return &JSONFormatter{options: options}
	case FormatYAML:
		return &YAMLFormatter{options: options}
	default:
		return &TableFormatter{options: options}
	}
}
