package main

import (
	"log/slog"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/artpar/taskforge/internal/shell/awsutil"
)

// =============================================================================
// Settings
// =============================================================================

// Settings is the process configuration shared by the subcommands. Values
// come from flags first, then TASKFORGE_* environment overrides, then the
// conventional AWS / CI environment.
type Settings struct {
	LogLevel  string
	LogFormat string
	CommitSHA string
	AWS       awsutil.Credentials
}

// loadSettings builds the Settings for one invocation.
func loadSettings(cmd *cobra.Command) *Settings {
	v := viper.New()

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("commit.sha", "unknown")

	v.SetEnvPrefix("TASKFORGE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// The AWS and CI variables keep their conventional names alongside the
	// prefixed overrides.
	_ = v.BindEnv("aws.access_key_id", "TASKFORGE_AWS_ACCESS_KEY_ID", "AWS_ACCESS_KEY_ID")
	_ = v.BindEnv("aws.secret_access_key", "TASKFORGE_AWS_SECRET_ACCESS_KEY", "AWS_SECRET_ACCESS_KEY")
	_ = v.BindEnv("aws.session_token", "TASKFORGE_AWS_SESSION_TOKEN", "AWS_SESSION_TOKEN")
	_ = v.BindEnv("commit.sha", "TASKFORGE_COMMIT_SHA", "GITHUB_SHA")

	for key, flag := range map[string]string{
		"log.level":  "log-level",
		"log.format": "log-format",
		"commit.sha": "commit-sha",
	} {
		if f := cmd.Flag(flag); f != nil {
			_ = v.BindPFlag(key, f)
		}
	}

	return &Settings{
		LogLevel:  v.GetString("log.level"),
		LogFormat: v.GetString("log.format"),
		CommitSHA: v.GetString("commit.sha"),
		AWS: awsutil.Credentials{
			AccessKeyID:     v.GetString("aws.access_key_id"),
			SecretAccessKey: v.GetString("aws.secret_access_key"),
			SessionToken:    v.GetString("aws.session_token"),
		},
	}
}

// =============================================================================
// Logger Setup
// =============================================================================

// SetupLogger creates the run logger. All log output goes to stderr; stdout
// stays reserved for the generated document.
func SetupLogger(s *Settings) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(s.LogLevel) {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn", "warning":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	var handler slog.Handler
	if strings.ToLower(s.LogFormat) == "text" {
		handler = slog.NewTextHandler(os.Stderr, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	}

	return slog.New(handler).With("run_id", uuid.NewString())
}
