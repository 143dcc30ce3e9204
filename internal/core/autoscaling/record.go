package autoscaling

import (
	"fmt"
	"strconv"

	ddbtypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// =============================================================================
// Persisted Record
// =============================================================================

// TableName returns the per-cluster config table.
func TableName(cluster string) string {
	return cluster + "_ecs_autoscaling_config"
}

// ServiceKey builds the record's primary key.
func ServiceKey(environment, cluster, service string) string {
	return fmt.Sprintf("%s:%s:%s", environment, cluster, service)
}

// Record is one autoscaling config row. Config holds the policy snapshot
// with the schema version injected, exactly as checksummed.
type Record struct {
	ServiceKey  string
	Environment string
	Version     int
	Config      map[string]any
	Checksum    string
	CommitSHA   string
	UpdatedAt   int64
}

// NewRecord builds the row for a validated policy. commitSHA should already
// be resolved by the caller (flag, CI environment, or "unknown").
func NewRecord(raw map[string]any, environment, cluster, service, commitSHA string, updatedAt int64) (Record, error) {
	checksum, err := Checksum(raw)
	if err != nil {
		return Record{}, err
	}
	return Record{
		ServiceKey:  ServiceKey(environment, cluster, service),
		Environment: environment,
		Version:     schemaVersion,
		Config:      withVersion(raw),
		Checksum:    checksum,
		CommitSHA:   commitSHA,
		UpdatedAt:   updatedAt,
	}, nil
}

// Item renders the record as a DynamoDB item.
func (r Record) Item() map[string]ddbtypes.AttributeValue {
	return map[string]ddbtypes.AttributeValue{
		"service_key": &ddbtypes.AttributeValueMemberS{Value: r.ServiceKey},
		"env":         &ddbtypes.AttributeValueMemberS{Value: r.Environment},
		"version":     &ddbtypes.AttributeValueMemberN{Value: strconv.Itoa(r.Version)},
		"config":      attributeValue(r.Config),
		"checksum":    &ddbtypes.AttributeValueMemberS{Value: r.Checksum},
		"commit_sha":  &ddbtypes.AttributeValueMemberS{Value: r.CommitSHA},
		"updated_at":  &ddbtypes.AttributeValueMemberN{Value: strconv.FormatInt(r.UpdatedAt, 10)},
	}
}

// attributeValue converts a decoded YAML value tree into DynamoDB attribute
// form. YAML decoding only produces nil, bool, int, float64, string, []any
// and map[string]any; anything else falls back to its string rendering.
func attributeValue(v any) ddbtypes.AttributeValue {
	switch val := v.(type) {
	case nil:
		return &ddbtypes.AttributeValueMemberNULL{Value: true}
	case bool:
		return &ddbtypes.AttributeValueMemberBOOL{Value: val}
	case int:
		return &ddbtypes.AttributeValueMemberN{Value: strconv.Itoa(val)}
	case int64:
		return &ddbtypes.AttributeValueMemberN{Value: strconv.FormatInt(val, 10)}
	case float64:
		return &ddbtypes.AttributeValueMemberN{Value: strconv.FormatFloat(val, 'f', -1, 64)}
	case string:
		return &ddbtypes.AttributeValueMemberS{Value: val}
	case []any:
		list := make([]ddbtypes.AttributeValue, 0, len(val))
		for _, item := range val {
			list = append(list, attributeValue(item))
		}
		return &ddbtypes.AttributeValueMemberL{Value: list}
	case map[string]any:
		m := make(map[string]ddbtypes.AttributeValue, len(val))
		for k, item := range val {
			m[k] = attributeValue(item)
		}
		return &ddbtypes.AttributeValueMemberM{Value: m}
	default:
		return &ddbtypes.AttributeValueMemberS{Value: fmt.Sprintf("%v", val)}
	}
}
