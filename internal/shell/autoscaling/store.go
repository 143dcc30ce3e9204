// Package autoscaling adapts DynamoDB and SQS for the autoscaling config
// publisher.
package autoscaling

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	ddbtypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	coreautoscaling "github.com/artpar/taskforge/internal/core/autoscaling"
	"github.com/artpar/taskforge/internal/shell/awsutil"
)

// putCondition rejects the write when a record with a later updated_at is
// already stored. Last writer wins only while it is actually last.
const putCondition = "attribute_not_exists(service_key) OR updated_at <= :now"

// dynamoAPI is the slice of the DynamoDB client the store calls.
type dynamoAPI interface {
	DescribeTable(ctx context.Context, params *dynamodb.DescribeTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
}

// Store persists autoscaling records in the per-cluster DynamoDB table.
type Store struct {
	client dynamoAPI
	logger *slog.Logger
}

// NewStore builds the store for one region.
func NewStore(region string, creds awsutil.Credentials, logger *slog.Logger) *Store {
	client := dynamodb.New(dynamodb.Options{
		Region:      region,
		Credentials: creds.Provider(),
	})
	return &Store{
		client: client,
		logger: logger.With("component", "autoscaling_store"),
	}
}

// TableExists reports whether the config table is reachable. A missing
// table is not an error; the publisher turns it into a skip.
func (s *Store) TableExists(ctx context.Context, table string) (bool, error) {
	err := awsutil.Do(ctx, s.logger, "dynamodb.DescribeTable", func(ctx context.Context) error {
		_, callErr := s.client.DescribeTable(ctx, &dynamodb.DescribeTableInput{
			TableName: aws.String(table),
		})
		return callErr
	})
	if err != nil {
		var notFound *ddbtypes.ResourceNotFoundException
		if errors.As(err, &notFound) {
			return false, nil
		}
		return false, fmt.Errorf("describing table %s: %w", table, err)
	}
	return true, nil
}

// PutConditional writes the record unless a newer one is already stored, in
// which case it returns ErrNewerRecordExists.
func (s *Store) PutConditional(ctx context.Context, table string, record coreautoscaling.Record) error {
	err := awsutil.Do(ctx, s.logger, "dynamodb.PutItem", func(ctx context.Context) error {
		_, callErr := s.client.PutItem(ctx, &dynamodb.PutItemInput{
			TableName:           aws.String(table),
			Item:                record.Item(),
			ConditionExpression: aws.String(putCondition),
			ExpressionAttributeValues: map[string]ddbtypes.AttributeValue{
				":now": &ddbtypes.AttributeValueMemberN{
					Value: strconv.FormatInt(record.UpdatedAt, 10),
				},
			},
		})
		return callErr
	})
	if err != nil {
		var conditionFailed *ddbtypes.ConditionalCheckFailedException
		if errors.As(err, &conditionFailed) {
			return coreautoscaling.ErrNewerRecordExists
		}
		return fmt.Errorf("putting record %s into %s: %w", record.ServiceKey, table, err)
	}
	return nil
}
