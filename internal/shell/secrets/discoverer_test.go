package secrets

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeAPI struct {
	secretString *string
	arn          string
	getErr       error
	describeErr  error

	requestedID string
}

func (f *fakeAPI) GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error) {
	f.requestedID = aws.ToString(params.SecretId)
	if f.getErr != nil {
		return nil, f.getErr
	}
	return &secretsmanager.GetSecretValueOutput{
		ARN:          aws.String(f.arn),
		SecretString: f.secretString,
	}, nil
}

func (f *fakeAPI) DescribeSecret(ctx context.Context, params *secretsmanager.DescribeSecretInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.DescribeSecretOutput, error) {
	f.requestedID = aws.ToString(params.SecretId)
	if f.describeErr != nil {
		return nil, f.describeErr
	}
	return &secretsmanager.DescribeSecretOutput{ARN: aws.String(f.arn)}, nil
}

const testARN = "arn:aws:secretsmanager:eu-west-1:123456789012:secret:database-credentials-Ab1Cd2"

func newTestDiscoverer(api *fakeAPI) *Discoverer {
	return &Discoverer{client: api, logger: setupTestLogger()}
}

func TestDiscoverKeys_JSONObject(t *testing.T) {
	api := &fakeAPI{
		secretString: aws.String(`{"DB_HOST": "db.internal", "DB_PORT": "5432", "DB_PASSWORD": "hunter2"}`),
		arn:          testARN,
	}

	keys, arn, err := newTestDiscoverer(api).DiscoverKeys(context.Background(), "database-credentials")
	require.NoError(t, err)

	assert.Equal(t, "database-credentials", api.requestedID)
	assert.Equal(t, testARN, arn)
	assert.ElementsMatch(t, []string{"DB_HOST", "DB_PORT", "DB_PASSWORD"}, keys)
}

func TestDiscoverKeys_NonObjectSecret(t *testing.T) {
	api := &fakeAPI{
		secretString: aws.String(`"a plain string value"`),
		arn:          testARN,
	}

	keys, arn, err := newTestDiscoverer(api).DiscoverKeys(context.Background(), "plain-secret")
	require.NoError(t, err)
	assert.Empty(t, keys)
	assert.Equal(t, testARN, arn)
}

func TestDiscoverKeys_BinarySecret(t *testing.T) {
	api := &fakeAPI{arn: testARN}

	keys, arn, err := newTestDiscoverer(api).DiscoverKeys(context.Background(), "binary-secret")
	require.NoError(t, err)
	assert.Empty(t, keys)
	assert.Equal(t, testARN, arn)
}

func TestDiscoverKeys_LookupFailure(t *testing.T) {
	api := &fakeAPI{getErr: errors.New("ResourceNotFoundException: not found")}

	_, _, err := newTestDiscoverer(api).DiscoverKeys(context.Background(), "missing-secret")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing-secret")
}

func TestResolveARN(t *testing.T) {
	api := &fakeAPI{arn: testARN}

	arn, err := newTestDiscoverer(api).ResolveARN(context.Background(), "database-credentials")
	require.NoError(t, err)
	assert.Equal(t, testARN, arn)
	assert.Equal(t, "database-credentials", api.requestedID)
}

func TestResolveARN_Failure(t *testing.T) {
	api := &fakeAPI{describeErr: errors.New("access denied")}

	_, err := newTestDiscoverer(api).ResolveARN(context.Background(), "database-credentials")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "access denied")
}
