// Package secrets adapts AWS Secrets Manager to the resolver's key
// discovery interface.
package secrets

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"

	"github.com/artpar/taskforge/internal/shell/awsutil"
)

// api is the slice of the Secrets Manager client the discoverer calls.
type api interface {
	GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
	DescribeSecret(ctx context.Context, params *secretsmanager.DescribeSecretInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.DescribeSecretOutput, error)
}

// Discoverer answers key discovery and ARN resolution against AWS Secrets
// Manager. Lookup failures are returned to the caller; the resolver treats
// them as fatal so a task definition never ships with missing secrets.
type Discoverer struct {
	client api
	logger *slog.Logger
}

// NewDiscoverer builds the adapter for one region.
func NewDiscoverer(region string, creds awsutil.Credentials, logger *slog.Logger) *Discoverer {
	client := secretsmanager.New(secretsmanager.Options{
		Region:      region,
		Credentials: creds.Provider(),
	})
	return &Discoverer{
		client: client,
		logger: logger.With("component", "secrets_discoverer"),
	}
}

// DiscoverKeys reads the secret value and returns its JSON object keys
// together with the full versioned ARN from the response. A secret that
// holds binary data or a non-object JSON value yields zero keys, not an
// error.
func (d *Discoverer) DiscoverKeys(ctx context.Context, secretName string) ([]string, string, error) {
	var out *secretsmanager.GetSecretValueOutput
	err := awsutil.Do(ctx, d.logger, "secretsmanager.GetSecretValue", func(ctx context.Context) error {
		var callErr error
		out, callErr = d.client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
			SecretId: aws.String(secretName),
		})
		return callErr
	})
	if err != nil {
		return nil, "", fmt.Errorf("getting secret value for %q: %w", secretName, err)
	}

	arn := aws.ToString(out.ARN)
	if out.SecretString == nil {
		d.logger.Warn("secret holds binary data, no keys to discover", "secret", secretName)
		return nil, arn, nil
	}

	var data map[string]json.RawMessage
	if err := json.Unmarshal([]byte(*out.SecretString), &data); err != nil {
		d.logger.Warn("secret does not contain a JSON object", "secret", secretName)
		return nil, arn, nil
	}

	keys := make([]string, 0, len(data))
	for key := range data {
		keys = append(keys, key)
	}
	d.logger.Info("discovered secret keys", "secret", secretName, "count", len(keys))
	return keys, arn, nil
}

// ResolveARN resolves a secret name to its full ARN without reading the
// value.
func (d *Discoverer) ResolveARN(ctx context.Context, secretName string) (string, error) {
	var out *secretsmanager.DescribeSecretOutput
	err := awsutil.Do(ctx, d.logger, "secretsmanager.DescribeSecret", func(ctx context.Context) error {
		var callErr error
		out, callErr = d.client.DescribeSecret(ctx, &secretsmanager.DescribeSecretInput{
			SecretId: aws.String(secretName),
		})
		return callErr
	})
	if err != nil {
		return "", fmt.Errorf("describing secret %q: %w", secretName, err)
	}
	return aws.ToString(out.ARN), nil
}
