package taskdef

import (
	"fmt"
	"strings"
)

// =============================================================================
// Naming Conventions
// =============================================================================

// Container names within the task. The app container is always "app"; the
// sidecars and init container use fixed names so dependsOn edges and log
// routing stay stable across services.
const (
	AppContainerName       = "app"
	FluentBitContainerName = "fluent-bit"
	OtelContainerName      = "otel-collector"
	InitContainerName      = "init-container-for-secret-files"
)

// SharedVolumeName is the volume the init container writes secret files to
// and the app container reads them from.
const SharedVolumeName = "shared-volume"

// Family returns the task definition family for a cluster/service pair.
func Family(clusterName, appName string) string {
	return fmt.Sprintf("%s_%s", clusterName, appName)
}

// LogGroup returns the awslogs group shared by every container in the task.
func LogGroup(clusterName, appName string) string {
	return fmt.Sprintf("/ecs/%s/%s", clusterName, appName)
}

// WritableVolumeName derives a volume name from a writable directory path:
// /tmp becomes writable-tmp, /var/run becomes writable-var-run.
func WritableVolumeName(dir string) string {
	trimmed := strings.Trim(dir, "/")
	return "writable-" + strings.ReplaceAll(trimmed, "/", "-")
}
