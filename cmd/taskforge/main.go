// Command taskforge turns simplified service YAML into ECS task definition
// JSON and publishes autoscaling configs to DynamoDB alongside deploys.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information (set by build)
var (
	Version   = "dev"
	BuildTime = "unknown"
)

// =============================================================================
// Exit Codes
// =============================================================================

const (
	ExitSuccess     = 0
	ExitConfigError = 1
)

func main() {
	os.Exit(run())
}

func run() int {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return ExitConfigError
	}
	return ExitSuccess
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "taskforge",
		Short: "ECS task definition generator",
		Long: `taskforge turns simplified service YAML into ECS task definition JSON
and publishes autoscaling configs to DynamoDB alongside deploys.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().String("log-level", "info", "logging level (debug, info, warn, error)")
	root.PersistentFlags().String("log-format", "json", "log output format (json, text)")

	root.AddCommand(newGenerateCmd())
	root.AddCommand(newPublishAutoscalingCmd())
	root.AddCommand(newVersionCmd())
	return root
}
