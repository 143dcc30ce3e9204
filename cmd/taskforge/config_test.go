package main

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// Settings Tests
// =============================================================================

func clearEnv(t *testing.T) {
	t.Helper()
	envVars := []string{
		"TASKFORGE_LOG_LEVEL",
		"TASKFORGE_LOG_FORMAT",
		"TASKFORGE_COMMIT_SHA",
		"TASKFORGE_AWS_ACCESS_KEY_ID",
		"TASKFORGE_AWS_SECRET_ACCESS_KEY",
		"TASKFORGE_AWS_SESSION_TOKEN",
		"AWS_ACCESS_KEY_ID",
		"AWS_SECRET_ACCESS_KEY",
		"AWS_SESSION_TOKEN",
		"GITHUB_SHA",
	}
	for _, v := range envVars {
		// t.Setenv registers the restore; unset leaves the test run clean.
		t.Setenv(v, "")
		os.Unsetenv(v)
	}
}

func TestLoadSettings_Defaults(t *testing.T) {
	clearEnv(t)

	settings := loadSettings(newRootCmd())

	assert.Equal(t, "info", settings.LogLevel)
	assert.Equal(t, "json", settings.LogFormat)
	assert.Equal(t, "unknown", settings.CommitSHA)
	assert.Empty(t, settings.AWS.AccessKeyID)
}

func TestLoadSettings_EnvironmentOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("TASKFORGE_LOG_LEVEL", "debug")
	t.Setenv("TASKFORGE_LOG_FORMAT", "text")

	settings := loadSettings(newRootCmd())

	assert.Equal(t, "debug", settings.LogLevel)
	assert.Equal(t, "text", settings.LogFormat)
}

func TestLoadSettings_AmbientAWSCredentials(t *testing.T) {
	clearEnv(t)
	t.Setenv("AWS_ACCESS_KEY_ID", "AKIAAMBIENT")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "ambient-secret")
	t.Setenv("AWS_SESSION_TOKEN", "ambient-token")

	settings := loadSettings(newRootCmd())

	assert.Equal(t, "AKIAAMBIENT", settings.AWS.AccessKeyID)
	assert.Equal(t, "ambient-secret", settings.AWS.SecretAccessKey)
	assert.Equal(t, "ambient-token", settings.AWS.SessionToken)
}

func TestLoadSettings_PrefixedCredentialsWin(t *testing.T) {
	clearEnv(t)
	t.Setenv("AWS_ACCESS_KEY_ID", "AKIAAMBIENT")
	t.Setenv("TASKFORGE_AWS_ACCESS_KEY_ID", "AKIAOVERRIDE")

	settings := loadSettings(newRootCmd())

	assert.Equal(t, "AKIAOVERRIDE", settings.AWS.AccessKeyID)
}

func TestLoadSettings_CommitSHAResolution(t *testing.T) {
	clearEnv(t)
	t.Setenv("GITHUB_SHA", "deadbeef")

	settings := loadSettings(newRootCmd())
	assert.Equal(t, "deadbeef", settings.CommitSHA)

	// The flag beats the CI environment.
	cmd := newPublishAutoscalingCmd()
	require.NoError(t, cmd.Flags().Set("commit-sha", "abc123"))
	settings = loadSettings(cmd)
	assert.Equal(t, "abc123", settings.CommitSHA)
}

// =============================================================================
// Logger Setup Tests
// =============================================================================

func TestSetupLogger_Levels(t *testing.T) {
	debug := SetupLogger(&Settings{LogLevel: "debug", LogFormat: "text"})
	assert.True(t, debug.Enabled(context.Background(), slog.LevelDebug))

	warn := SetupLogger(&Settings{LogLevel: "warn", LogFormat: "json"})
	assert.False(t, warn.Enabled(context.Background(), slog.LevelInfo))
	assert.True(t, warn.Enabled(context.Background(), slog.LevelWarn))

	fallback := SetupLogger(&Settings{LogLevel: "nonsense"})
	assert.True(t, fallback.Enabled(context.Background(), slog.LevelInfo))
	assert.False(t, fallback.Enabled(context.Background(), slog.LevelDebug))
}
