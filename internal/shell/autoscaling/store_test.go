package autoscaling

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	ddbtypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	coreautoscaling "github.com/artpar/taskforge/internal/core/autoscaling"
)

func setupTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeDynamo struct {
	describeErr error
	putErr      error

	describedTable string
	putInput       *dynamodb.PutItemInput
}

func (f *fakeDynamo) DescribeTable(ctx context.Context, params *dynamodb.DescribeTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error) {
	f.describedTable = aws.ToString(params.TableName)
	if f.describeErr != nil {
		return nil, f.describeErr
	}
	return &dynamodb.DescribeTableOutput{}, nil
}

func (f *fakeDynamo) PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	f.putInput = params
	if f.putErr != nil {
		return nil, f.putErr
	}
	return &dynamodb.PutItemOutput{}, nil
}

func newTestStore(api *fakeDynamo) *Store {
	return &Store{client: api, logger: setupTestLogger()}
}

func testRecord(t *testing.T) coreautoscaling.Record {
	t.Helper()
	raw := map[string]any{
		"min_tasks": 2,
		"max_tasks": 50,
		"provider": map[string]any{
			"type": "sqs",
			"sqs": map[string]any{
				"queue_url": "https://sqs.us-east-1.amazonaws.com/123456789012/test-queue",
			},
		},
	}
	rec, err := coreautoscaling.NewRecord(raw, "production", "prod-cluster", "my-service", "abc123", 1700000000)
	require.NoError(t, err)
	return rec
}

func TestTableExists(t *testing.T) {
	api := &fakeDynamo{}
	exists, err := newTestStore(api).TableExists(context.Background(), "prod-cluster_ecs_autoscaling_config")
	require.NoError(t, err)
	assert.True(t, exists)
	assert.Equal(t, "prod-cluster_ecs_autoscaling_config", api.describedTable)
}

func TestTableExists_MissingTableIsNotAnError(t *testing.T) {
	api := &fakeDynamo{describeErr: &ddbtypes.ResourceNotFoundException{}}
	exists, err := newTestStore(api).TableExists(context.Background(), "missing_table")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestTableExists_TransportFailure(t *testing.T) {
	api := &fakeDynamo{describeErr: errors.New("connection refused")}
	_, err := newTestStore(api).TableExists(context.Background(), "prod-cluster_ecs_autoscaling_config")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestPutConditional(t *testing.T) {
	api := &fakeDynamo{}
	rec := testRecord(t)
	err := newTestStore(api).PutConditional(context.Background(), "prod-cluster_ecs_autoscaling_config", rec)
	require.NoError(t, err)

	require.NotNil(t, api.putInput)
	assert.Equal(t, "prod-cluster_ecs_autoscaling_config", aws.ToString(api.putInput.TableName))
	assert.Equal(t, putCondition, aws.ToString(api.putInput.ConditionExpression))

	now, ok := api.putInput.ExpressionAttributeValues[":now"].(*ddbtypes.AttributeValueMemberN)
	require.True(t, ok)
	assert.Equal(t, "1700000000", now.Value)

	key, ok := api.putInput.Item["service_key"].(*ddbtypes.AttributeValueMemberS)
	require.True(t, ok)
	assert.Equal(t, rec.ServiceKey, key.Value)
}

func TestPutConditional_NewerRecordWins(t *testing.T) {
	api := &fakeDynamo{putErr: &ddbtypes.ConditionalCheckFailedException{}}
	err := newTestStore(api).PutConditional(context.Background(), "prod-cluster_ecs_autoscaling_config", testRecord(t))
	assert.ErrorIs(t, err, coreautoscaling.ErrNewerRecordExists)
}

func TestPutConditional_TransportFailure(t *testing.T) {
	api := &fakeDynamo{putErr: errors.New("access denied")}
	err := newTestStore(api).PutConditional(context.Background(), "prod-cluster_ecs_autoscaling_config", testRecord(t))
	require.Error(t, err)
	assert.NotErrorIs(t, err, coreautoscaling.ErrNewerRecordExists)
}

type fakeSQS struct {
	err      error
	probedAt string
}

func (f *fakeSQS) GetQueueAttributes(ctx context.Context, params *sqs.GetQueueAttributesInput, optFns ...func(*sqs.Options)) (*sqs.GetQueueAttributesOutput, error) {
	f.probedAt = aws.ToString(params.QueueUrl)
	if f.err != nil {
		return nil, f.err
	}
	return &sqs.GetQueueAttributesOutput{}, nil
}

func TestQueueProbe(t *testing.T) {
	api := &fakeSQS{}
	probe := &QueueProbe{client: api, logger: setupTestLogger()}

	ok := probe.Verify(context.Background(), "https://sqs.us-east-1.amazonaws.com/123456789012/test-queue")
	assert.True(t, ok)
	assert.Equal(t, "https://sqs.us-east-1.amazonaws.com/123456789012/test-queue", api.probedAt)
}

func TestQueueProbe_MissingQueue(t *testing.T) {
	api := &fakeSQS{err: errors.New("AWS.SimpleQueueService.NonExistentQueue")}
	probe := &QueueProbe{client: api, logger: setupTestLogger()}

	ok := probe.Verify(context.Background(), "https://sqs.us-east-1.amazonaws.com/123456789012/gone")
	assert.False(t, ok)
}
