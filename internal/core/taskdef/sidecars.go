package taskdef

import (
	"fmt"
	"strings"

	"github.com/artpar/taskforge/internal/core/spec"
)

// =============================================================================
// Sidecar Containers
// =============================================================================

// DefaultOtelImage is the public collector used when otel_collector names no
// custom image.
const DefaultOtelImage = "public.ecr.aws/aws-observability/aws-otel-collector:latest"

// DefaultOtelSSMName is the SSM parameter holding the collector config for
// the default image.
const DefaultOtelSSMName = "adot-config-global.yaml"

const (
	defaultFluentBitConfig = "extra.conf"
	defaultOtelMetricsPort = "8080"
	defaultOtelMetricsPath = "/metrics"
)

// buildFluentBitContainer builds the firelens log-router sidecar. It is
// essential: if the router dies the task must stop rather than lose logs.
func buildFluentBitContainer(fb *spec.FluentBitSpec, in Inputs, appName string) ContainerDefinition {
	configName := fb.ExtraConfig
	if configName == "" {
		configName = defaultFluentBitConfig
	}
	metadata := fb.ECSLogMetadata.String()
	if metadata == "" {
		metadata = "true"
	}
	serviceName := fb.ServiceName
	if serviceName == "" {
		serviceName = appName
	}

	return ContainerDefinition{
		Name:      FluentBitContainerName,
		Image:     fmt.Sprintf("%s/%s", in.Registry, strings.TrimSpace(fb.ImageName)),
		Essential: true,
		Environment: []KeyValuePair{
			{Name: "SERVICE_NAME", Value: serviceName},
			{Name: "ENV", Value: in.ClusterName},
		},
		HealthCheck: &HealthCheck{
			Command:     []string{"CMD-SHELL", "curl -f http://127.0.0.1:2020/api/v1/health || exit 1"},
			Interval:    10,
			Timeout:     5,
			Retries:     3,
			StartPeriod: 5,
		},
		LogConfiguration: buildLogConfiguration(in.ClusterName, appName, in.AWSRegion, "fluentbit"),
		FirelensConfiguration: &FirelensConfiguration{
			Type: "fluentbit",
			Options: map[string]string{
				"config-file-type":        "file",
				"config-file-value":       "extra/" + configName,
				"enable-ecs-log-metadata": metadata,
			},
		},
	}
}

// buildOtelContainer builds the OpenTelemetry collector sidecar. A custom
// image (image_name set) loads its config from /conf inside the image and
// reports SERVICE_NAME; the default public image loads config from the SSM
// parameter injected as the SSM_CONFIG secret.
func buildOtelContainer(oc *spec.OtelCollectorSpec, in Inputs, appName string) ContainerDefinition {
	imageName := strings.TrimSpace(oc.ImageName)
	custom := imageName != ""

	image := DefaultOtelImage
	if custom {
		image = fmt.Sprintf("%s/%s", in.Registry, imageName)
	}

	metricsPath := oc.MetricsPath
	if metricsPath == "" {
		metricsPath = defaultOtelMetricsPath
	}
	metricsPort := oc.MetricsPort.String()
	if metricsPort == "" {
		metricsPort = defaultOtelMetricsPort
	}

	environment := []KeyValuePair{
		{Name: "METRICS_PATH", Value: metricsPath},
		{Name: "METRICS_PORT", Value: metricsPort},
	}
	if custom {
		environment = append(environment, KeyValuePair{Name: "SERVICE_NAME", Value: appName})
	}

	extraConfig := strings.TrimSpace(oc.ExtraConfig)
	var command []string
	switch {
	case custom && extraConfig != "":
		command = []string{"--config", "/conf/" + extraConfig}
	case custom:
		command = []string{"--config", "/conf/config.yaml"}
	default:
		command = []string{"--config", "env:SSM_CONFIG"}
	}

	container := ContainerDefinition{
		Name:        OtelContainerName,
		Image:       image,
		Essential:   true,
		Command:     command,
		Environment: environment,
		PortMappings: []PortMapping{
			{Name: "otel-collector-4317-tcp", ContainerPort: 4317, HostPort: 4317, Protocol: "tcp", AppProtocol: "grpc"},
			{Name: "otel-collector-4318-tcp", ContainerPort: 4318, HostPort: 4318, Protocol: "tcp"},
		},
		LogConfiguration: buildLogConfiguration(in.ClusterName, appName, in.AWSRegion, "otel-collector"),
	}

	if !custom {
		ssm := strings.TrimSpace(oc.SSMName)
		if ssm == "" {
			ssm = DefaultOtelSSMName
		}
		container.Secrets = []Secret{{Name: "SSM_CONFIG", ValueFrom: ssm}}
	}

	return container
}
