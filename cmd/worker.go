package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"appdeployer/internal/app"
)

var (
	workerTransport string
	workerListen    string
	workerCount     int
)

// workerCmd starts the reconciliation worker.
var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Consume lifecycle events and reconcile application resources",
	Long: `Starts the reconciliation worker.

The worker connects to the message broker and the Kubernetes cluster, then
processes every Create, Update and Delete event it receives. Events for the
same application are applied strictly in order; different applications are
reconciled in parallel by a pool of workers.

Configuration is layered: built-in defaults, then the --config file, then
environment variables (QUEUE_HOST, QUEUE_PORT, QUEUE_USERNAME, QUEUE_PASSWORD,
QUEUE_NAME, QUEUE_VHOST, KUBECONFIG, APPDEPLOYER_LISTEN_ADDR,
APPDEPLOYER_LOG_LEVEL), then the flags below.

The worker stops on SIGINT or SIGTERM. Events that were received but not yet
reconciled are returned to the queue.`,
	Args: cobra.NoArgs,
	RunE: runWorker,
}

func runWorker(cmd *cobra.Command, args []string) error {
	cfg := app.NewConfig(debug, configPath)
	cfg.TransportKind = workerTransport
	cfg.ListenAddress = workerListen
	cfg.Workers = workerCount

	application, err := app.NewApplication(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return application.Run(ctx)
}

func init() {
	rootCmd.AddCommand(workerCmd)

	workerCmd.Flags().StringVar(&workerTransport, "transport", "", "Transport kind: amqp or memory (overrides config)")
	workerCmd.Flags().StringVar(&workerListen, "listen", "", "HTTP listen address for health, metrics and status (overrides config)")
	workerCmd.Flags().IntVar(&workerCount, "workers", 0, "Number of concurrent reconciliation workers (overrides config)")
}
