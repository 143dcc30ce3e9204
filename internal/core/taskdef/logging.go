package taskdef

// =============================================================================
// Log Configuration
// =============================================================================

// buildLogConfiguration returns the awslogs block every non-firelens
// container uses. All containers in a task share one log group; the stream
// prefix distinguishes them. The app container's "default" prefix is
// emitted as "/default" to keep existing log subscriptions matching.
func buildLogConfiguration(clusterName, appName, awsRegion, streamPrefix string) *LogConfiguration {
	if streamPrefix == "default" {
		streamPrefix = "/default"
	}
	return &LogConfiguration{
		LogDriver: "awslogs",
		Options: map[string]string{
			"awslogs-group":         LogGroup(clusterName, appName),
			"awslogs-region":        awsRegion,
			"awslogs-stream-prefix": streamPrefix,
		},
	}
}
