package autoscaling

import (
	"context"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	sqstypes "github.com/aws/aws-sdk-go-v2/service/sqs/types"

	"github.com/artpar/taskforge/internal/shell/awsutil"
)

// sqsAPI is the slice of the SQS client the probe calls.
type sqsAPI interface {
	GetQueueAttributes(ctx context.Context, params *sqs.GetQueueAttributesInput, optFns ...func(*sqs.Options)) (*sqs.GetQueueAttributesOutput, error)
}

// QueueProbe checks that the queue an sqs-backed policy points at actually
// exists. Verification is advisory: a missing queue logs a warning and
// never blocks the publish.
type QueueProbe struct {
	client sqsAPI
	logger *slog.Logger
}

// NewQueueProbe builds the probe for one region.
func NewQueueProbe(region string, creds awsutil.Credentials, logger *slog.Logger) *QueueProbe {
	client := sqs.New(sqs.Options{
		Region:      region,
		Credentials: creds.Provider(),
	})
	return &QueueProbe{
		client: client,
		logger: logger.With("component", "queue_probe"),
	}
}

// Verify reports whether the queue answered an attribute fetch.
func (q *QueueProbe) Verify(ctx context.Context, queueURL string) bool {
	err := awsutil.Do(ctx, q.logger, "sqs.GetQueueAttributes", func(ctx context.Context) error {
		_, callErr := q.client.GetQueueAttributes(ctx, &sqs.GetQueueAttributesInput{
			QueueUrl:       aws.String(queueURL),
			AttributeNames: []sqstypes.QueueAttributeName{sqstypes.QueueAttributeNameQueueArn},
		})
		return callErr
	})
	if err != nil {
		q.logger.Warn("queue could not be verified", "queue_url", queueURL, "error", err)
		return false
	}
	q.logger.Info("queue verified", "queue_url", queueURL)
	return true
}
