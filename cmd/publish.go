package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"appdeployer/internal/config"
	"appdeployer/internal/lifecycle"
	"appdeployer/internal/transport"
	"appdeployer/pkg/logging"
)

var (
	publishImage   string
	publishTimeout time.Duration
)

// newPublisher opens the publisher used by the publish command. Tests
// replace it with an in-memory transport.
var newPublisher = func(cfg config.WorkerConfig) transport.Publisher {
	return transport.NewAMQPPublisher(cfg.AMQP())
}

// publishCmd sends a lifecycle event to the worker queue.
var publishCmd = &cobra.Command{
	Use:   "publish ACTION NAME",
	Short: "Publish a lifecycle event for an application",
	Long: `Publishes a Create, Update or Delete event for the named application to
the configured queue. Create and Update require --image.

Examples:
  appdeployer publish create shop --image 1.4.0
  appdeployer publish delete shop`,
	Args: cobra.ExactArgs(2),
	RunE: runPublish,
}

func runPublish(cmd *cobra.Command, args []string) error {
	action := lifecycle.ParseAction(args[0])
	if action == lifecycle.ActionUnknown {
		return fmt.Errorf("unknown action %q (want create, update or delete)", args[0])
	}

	body, err := lifecycle.Encode(lifecycle.New(action, args[1], publishImage))
	if err != nil {
		return fmt.Errorf("invalid event: %w", err)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	pub := newPublisher(cfg)
	defer func() {
		if err := pub.Close(); err != nil {
			logging.Warn("Publish", "Failed to close publisher: %v", err)
		}
	}()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	if err := pub.Publish(ctx, body); err != nil {
		return fmt.Errorf("failed to publish %s event for %s: %w", action, args[1], err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Published %s event for %s to %s\n", action, args[1], cfg.Transport.Queue)
	return nil
}

func init() {
	rootCmd.AddCommand(publishCmd)

	publishCmd.Flags().StringVar(&publishImage, "image", "", "Image tag to deploy (required for create and update)")
	publishCmd.Flags().DurationVar(&publishTimeout, "timeout", 10*time.Second, "Timeout for connecting and publishing")
}
