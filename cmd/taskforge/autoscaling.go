package main

import (
	"context"
	"log/slog"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	coreautoscaling "github.com/artpar/taskforge/internal/core/autoscaling"
	"github.com/artpar/taskforge/internal/core/spec"
	shellautoscaling "github.com/artpar/taskforge/internal/shell/autoscaling"
	"github.com/artpar/taskforge/internal/shell/ci"
)

// publishArgs carries the five positional arguments plus flags.
type publishArgs struct {
	YAMLPath    string
	Environment string
	ClusterName string
	ServiceName string
	AWSRegion   string

	VerifyQueue bool
}

func newPublishAutoscalingCmd() *cobra.Command {
	var verifyQueue bool

	cmd := &cobra.Command{
		Use:   "publish-autoscaling <yaml_file> <environment> <cluster_name> <service_name> <aws_region>",
		Short: "Publish the autoscaling config block to DynamoDB",
		Long: `Publishes the document's autoscaling_configs block to the per-cluster
DynamoDB config table. The command never fails the surrounding deploy:
every outcome exits 0 and is reported through the autoscaler_* CI outputs.`,
		Args: cobra.ExactArgs(5),
		RunE: func(cmd *cobra.Command, args []string) error {
			settings := loadSettings(cmd)
			logger := SetupLogger(settings)
			runPublish(cmd.Context(), logger, settings, publishArgs{
				YAMLPath:    args[0],
				Environment: args[1],
				ClusterName: args[2],
				ServiceName: args[3],
				AWSRegion:   args[4],
				VerifyQueue: verifyQueue,
			})
			return nil
		},
	}

	cmd.Flags().String("commit-sha", "", `git commit SHA stored with the record (default: GITHUB_SHA, then "unknown")`)
	cmd.Flags().BoolVar(&verifyQueue, "verify-queue", false, "probe the SQS queue referenced by sqs-backed policies")
	return cmd
}

func runPublish(ctx context.Context, logger *slog.Logger, settings *Settings, args publishArgs) {
	logger = logger.With(
		"service", args.ServiceName,
		"cluster", args.ClusterName,
		"environment", args.Environment)
	outputs := ci.NewWriter()

	report := func(res coreautoscaling.Result) {
		updatedAt := ""
		if res.UpdatedAt != 0 {
			updatedAt = strconv.FormatInt(res.UpdatedAt, 10)
		}
		set := func(name, value string) {
			if err := outputs.Set(name, value); err != nil {
				logger.Warn("cannot write CI output", "name", name, "error", err)
			}
		}
		set("autoscaler_published", strconv.FormatBool(res.Published()))
		set("autoscaler_service_key", res.ServiceKey)
		set("autoscaler_checksum", res.Checksum)
		set("autoscaler_updated_at", updatedAt)
	}

	raw, err := extractRawPolicy(args.YAMLPath, args.ServiceName)
	if err != nil {
		logger.Error("cannot read autoscaling config, deploy continues", "error", err)
		report(coreautoscaling.Result{Outcome: coreautoscaling.OutcomeFailed, Reason: err.Error()})
		return
	}

	if args.VerifyQueue {
		verifyQueueTarget(ctx, logger, settings, args.AWSRegion, raw)
	}

	store := shellautoscaling.NewStore(args.AWSRegion, settings.AWS, logger)
	res := coreautoscaling.NewPublisher(store, logger).Publish(ctx, raw, coreautoscaling.Request{
		Environment: args.Environment,
		Cluster:     args.ClusterName,
		Service:     args.ServiceName,
		CommitSHA:   settings.CommitSHA,
	})
	report(res)
}

// extractRawPolicy reads the document and returns the merged
// autoscaling_configs block for the service, nil when absent. Only the
// document structure is checked here; an otherwise incomplete service
// section does not stop the publish.
func extractRawPolicy(path, serviceName string) (map[string]any, error) {
	rawYAML, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	doc, err := spec.Parse(rawYAML)
	if err != nil {
		return nil, err
	}
	selector, err := doc.Selector(serviceName)
	if err != nil {
		return nil, err
	}
	merged, err := doc.Merged(selector)
	if err != nil {
		return nil, err
	}
	return coreautoscaling.ExtractPolicy(merged)
}

// verifyQueueTarget probes the SQS queue of an sqs-backed policy. Probing
// is advisory: failures log warnings and never change the publish outcome.
func verifyQueueTarget(ctx context.Context, logger *slog.Logger, settings *Settings, region string, raw map[string]any) {
	if raw == nil {
		return
	}
	policy, err := coreautoscaling.DecodePolicy(raw)
	if err != nil || policy.Provider == nil || policy.Provider.SQS == nil {
		return
	}
	queueURL := policy.Provider.SQS.QueueURL
	if queueURL == "" {
		return
	}
	shellautoscaling.NewQueueProbe(region, settings.AWS, logger).Verify(ctx, queueURL)
}
