package taskdef

import (
	"fmt"
	"strings"
)

// =============================================================================
// Init Container for Secret Files
// =============================================================================

// InitContainerImage runs the secret-file download script.
const InitContainerImage = "public.ecr.aws/aws-cli/aws-cli:latest"

// secretFetchScript downloads each name in SECRET_FILES onto the shared
// volume. Text retrieval is tried first; the CLI prints "None"/"null" for a
// missing SecretString, so those sentinels count as misses and trigger the
// binary fallback. Any secret that cannot be materialized fails the
// container, which fails the task via the SUCCESS dependency.
// %[1]s is the secrets files path.
const secretFetchScript = `for secret in ${SECRET_FILES//,/ }; do ` +
	`echo "Fetching $secret..."; ` +
	`SECRET_VALUE=$(aws secretsmanager get-secret-value --secret-id $secret --region $AWS_REGION --query SecretString --output text 2>/dev/null); ` +
	`STRING_RESULT=$?; ` +
	`if [ $STRING_RESULT -eq 0 ] && [ -n "$SECRET_VALUE" ] && [ "$SECRET_VALUE" != "null" ] && [ "$SECRET_VALUE" != "none" ] && [ "$SECRET_VALUE" != "None" ]; then ` +
	`echo "Found text secret, saving to %[1]s/$secret"; ` +
	`echo "$SECRET_VALUE" > %[1]s/$secret; ` +
	`else ` +
	`echo "Text retrieval failed or returned null, trying binary retrieval..."; ` +
	`aws secretsmanager get-secret-value --secret-id $secret --region $AWS_REGION --query SecretBinary --output text | base64 -d > %[1]s/$secret 2>/dev/null; ` +
	`BINARY_RESULT=$?; ` +
	`if [ $BINARY_RESULT -eq 0 ] && [ -s %[1]s/$secret ]; then ` +
	`echo "Found binary secret, saved to %[1]s/$secret"; ` +
	`else ` +
	`echo "Failed to retrieve $secret as either text or binary (text=$STRING_RESULT binary=$BINARY_RESULT)" >&2; ` +
	`exit 1; ` +
	`fi; ` +
	`fi; ` +
	`echo "Saved $secret to %[1]s/$secret"; ` +
	`done`

// buildInitContainer builds the non-essential container that materializes
// secret files before the app starts. The app container declares a SUCCESS
// dependency on it, so a failed download blocks the whole task.
func buildInitContainer(secretFiles []string, in Inputs, appName, secretsFilesPath string) ContainerDefinition {
	return ContainerDefinition{
		Name:       InitContainerName,
		Image:      InitContainerImage,
		Essential:  false,
		EntryPoint: []string{"/bin/sh"},
		Command:    []string{"-c", fmt.Sprintf(secretFetchScript, secretsFilesPath)},
		Environment: []KeyValuePair{
			{Name: "SECRET_FILES", Value: strings.Join(secretFiles, ",")},
			{Name: "AWS_REGION", Value: in.AWSRegion},
		},
		MountPoints: []MountPoint{
			{SourceVolume: SharedVolumeName, ContainerPath: secretsFilesPath},
		},
		LogConfiguration: buildLogConfiguration(in.ClusterName, appName, in.AWSRegion, "ssm-file-downloader"),
	}
}
