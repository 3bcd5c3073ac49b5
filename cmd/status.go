package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"appdeployer/internal/formatting"
	"appdeployer/internal/reconciler"
	"appdeployer/internal/server"
)

// DefaultStatusEndpoint is the worker address queried by the status command.
const DefaultStatusEndpoint = "http://localhost:8080"

var (
	statusEndpoint string
	statusOutput   string
	statusQuiet    bool
	statusTimeout  time.Duration
)

// statusCmd queries a running worker for reconciliation status.
var statusCmd = &cobra.Command{
	Use:   "status [NAME]",
	Short: "Show reconciliation status from a running worker",
	Long: `Queries the HTTP endpoint of a running worker and prints the last known
reconciliation status of every application, or of a single application when
NAME is given.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runStatus,
}

// statusResponse mirrors server.Envelope with a concrete payload type.
type statusResponse[T any] struct {
	Data  T      `json:"data"`
	Error string `json:"error"`
}

func runStatus(cmd *cobra.Command, args []string) error {
	format, err := formatting.ParseFormat(statusOutput)
	if err != nil {
		return err
	}
	f := formatting.New(formatting.Options{Format: format, Out: cmd.OutOrStdout(), Quiet: statusQuiet})

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, statusTimeout)
	defer cancel()

	if len(args) == 1 {
		var status reconciler.ReconcileStatus
		if err := getStatus(ctx, statusEndpoint, "/status/"+url.PathEscape(args[0]), &status); err != nil {
			return err
		}
		return f.FormatStatus(status)
	}

	var report server.StatusReport
	if err := getStatus(ctx, statusEndpoint, "/status", &report); err != nil {
		return err
	}
	return f.FormatStatuses(report.Applications, report.Summary)
}

// getStatus fetches endpoint+path and decodes the envelope payload into out.
func getStatus[T any](ctx context.Context, endpoint, path string, out *T) error {
	target := strings.TrimSuffix(endpoint, "/") + path
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return fmt.Errorf("invalid endpoint %q: %w", endpoint, err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to reach worker at %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	var env statusResponse[T]
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("unexpected response from %s (HTTP %d): %w", target, resp.StatusCode, err)
	}
	if resp.StatusCode != http.StatusOK {
		if env.Error != "" {
			return fmt.Errorf("worker returned HTTP %d: %s", resp.StatusCode, env.Error)
		}
		return fmt.Errorf("worker returned HTTP %d", resp.StatusCode)
	}

	*out = env.Data
	return nil
}

func init() {
	rootCmd.AddCommand(statusCmd)

	statusCmd.Flags().StringVar(&statusEndpoint, "endpoint", DefaultStatusEndpoint, "Base URL of the worker HTTP server")
	statusCmd.Flags().StringVarP(&statusOutput, "output", "o", string(formatting.FormatTable), "Output format: table, json or yaml")
	statusCmd.Flags().BoolVarP(&statusQuiet, "quiet", "q", false, "Suppress the summary lines")
	statusCmd.Flags().DurationVar(&statusTimeout, "timeout", 5*time.Second, "Request timeout")
}
