package taskdef

import (
	"github.com/artpar/taskforge/internal/core/spec"
)

// =============================================================================
// App Container
// =============================================================================

// buildAppContainer builds the primary container. When the fluent-bit
// sidecar is active the app logs through awsfirelens (empty options, the
// router owns the destination) and waits for the router to START; when
// secret files are configured it mounts the shared volume and waits for the
// init container to exit with SUCCESS.
func buildAppContainer(
	s *spec.ServiceSpec,
	in Inputs,
	imageURI string,
	environment []KeyValuePair,
	secretRefs []Secret,
	useFluentBit bool,
	hasSecretFiles bool,
) (ContainerDefinition, []string, error) {
	app := ContainerDefinition{
		Name:        AppContainerName,
		Image:       imageURI,
		Essential:   true,
		EntryPoint:  s.Entrypoint,
		Command:     s.Command,
		Environment: environment,
		Secrets:     secretRefs,
		StopTimeout: s.StopTimeout,
	}

	if useFluentBit {
		app.LogConfiguration = &LogConfiguration{
			LogDriver: "awsfirelens",
			Options:   map[string]string{},
		}
	} else {
		app.LogConfiguration = buildLogConfiguration(in.ClusterName, s.Name, in.AWSRegion, "default")
	}

	app.HealthCheck = buildHealthCheck(s.HealthCheck)
	app.PortMappings = buildPortMappings(s.Port, s.AdditionalPorts, s.AppProtocol, s.NetworkMode)

	linux, warnings, err := BuildLinuxParameters(s.LinuxParameters, s.LaunchType)
	if err != nil {
		return ContainerDefinition{}, nil, err
	}
	app.LinuxParameters = linux

	var dependsOn []ContainerDependency
	if hasSecretFiles {
		app.MountPoints = []MountPoint{{
			SourceVolume:  SharedVolumeName,
			ContainerPath: s.SecretsFilesPath,
		}}
		dependsOn = append(dependsOn, ContainerDependency{
			ContainerName: InitContainerName,
			Condition:     "SUCCESS",
		})
	}
	if useFluentBit {
		dependsOn = append(dependsOn, ContainerDependency{
			ContainerName: FluentBitContainerName,
			Condition:     "START",
		})
	}
	app.DependsOn = dependsOn

	return app, warnings, nil
}

// Health check timing defaults, applied when the block omits them.
const (
	defaultHealthInterval    = 30
	defaultHealthTimeout     = 5
	defaultHealthRetries     = 3
	defaultHealthStartPeriod = 10
)

// buildHealthCheck converts the health_check block. A plain string command
// gets wrapped for shell execution; a command vector is taken as-is.
func buildHealthCheck(hc *spec.HealthCheckSpec) *HealthCheck {
	if hc == nil || hc.Command.Empty() {
		return nil
	}

	command := append([]string(nil), hc.Command.Parts...)
	if !hc.Command.IsVector {
		command = []string{"CMD-SHELL", hc.Command.Parts[0]}
	}

	return &HealthCheck{
		Command:     command,
		Interval:    intOrDefault(hc.Interval, defaultHealthInterval),
		Timeout:     intOrDefault(hc.Timeout, defaultHealthTimeout),
		Retries:     intOrDefault(hc.Retries, defaultHealthRetries),
		StartPeriod: intOrDefault(hc.StartPeriod, defaultHealthStartPeriod),
	}
}

func intOrDefault(v *int, def int) int {
	if v != nil {
		return *v
	}
	return def
}
