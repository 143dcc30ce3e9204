// Package awsutil carries the AWS plumbing shared by the shell adapters:
// static credential wiring and a bounded retry for throttled calls.
package awsutil

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	smithy "github.com/aws/smithy-go"
)

// =============================================================================
// Credentials
// =============================================================================

// Credentials holds the static AWS credentials for one run. Values come
// from explicit TASKFORGE_AWS_* overrides or the ambient AWS_* environment;
// resolution happens in the command layer.
type Credentials struct {
	AccessKeyID     string
	SecretAccessKey string
	SessionToken    string
}

// Provider renders the credentials as an SDK provider.
func (c Credentials) Provider() aws.CredentialsProvider {
	return credentials.NewStaticCredentialsProvider(c.AccessKeyID, c.SecretAccessKey, c.SessionToken)
}

// =============================================================================
// Bounded Retry
// =============================================================================

const maxAttempts = 3

// baseDelay doubles after each failed attempt. Overridable so tests do not
// sleep.
var baseDelay = 500 * time.Millisecond

// throttleCodes are API error codes that signal transient pressure rather
// than a caller mistake.
var throttleCodes = map[string]bool{
	"Throttling":                             true,
	"ThrottlingException":                    true,
	"TooManyRequestsException":               true,
	"RequestLimitExceeded":                   true,
	"RequestThrottledException":              true,
	"ProvisionedThroughputExceededException": true,
	"SlowDown":                               true,
}

// Do runs fn up to three times with exponential backoff between attempts.
// Only throttling and server-fault API errors are retried; everything else
// returns immediately. A context cancelled during backoff wins over the
// pending retry.
func Do(ctx context.Context, logger *slog.Logger, op string, fn func(context.Context) error) error {
	delay := baseDelay
	var err error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err = fn(ctx)
		if err == nil || !Retryable(err) || attempt == maxAttempts {
			return err
		}
		logger.Warn("retrying AWS call",
			"op", op,
			"attempt", attempt,
			"delay", delay.String(),
			"error", err)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
	}
	return err
}

// Retryable reports whether err is a throttling or server-fault API error.
func Retryable(err error) bool {
	var apiErr smithy.APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	if throttleCodes[apiErr.ErrorCode()] {
		return true
	}
	return apiErr.ErrorFault() == smithy.FaultServer
}
