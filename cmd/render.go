package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"appdeployer/internal/formatting"
	"appdeployer/internal/manifest"
)

var (
	renderImage  string
	renderOutput string
)

// renderCmd prints the resources the worker would apply for an application.
var renderCmd = &cobra.Command{
	Use:   "render NAME",
	Short: "Print the resources generated for an application",
	Long: `Builds the Namespace, Deployment, Service and Ingress the worker applies for a
Create or Update event and prints them without contacting the cluster.

The registry and ingress settings come from the configuration file, so the
output matches what a worker with the same --config would apply.`,
	Args: cobra.ExactArgs(1),
	RunE: runRender,
}

func runRender(cmd *cobra.Command, args []string) error {
	if renderImage == "" {
		return fmt.Errorf("--image is required")
	}
	format, err := formatting.ParseFormat(renderOutput)
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	set := manifest.NewBuilder(cfg.Manifest.Options()).Desired(args[0], renderImage)
	return formatting.New(formatting.Options{Format: format, Out: cmd.OutOrStdout()}).FormatManifests(set)
}

func init() {
	rootCmd.AddCommand(renderCmd)

	renderCmd.Flags().StringVar(&renderImage, "image", "", "Image tag to deploy")
	renderCmd.Flags().StringVarP(&renderOutput, "output", "o", "yaml", "Output format: yaml, json or table")
}
