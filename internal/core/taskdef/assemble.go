// Package taskdef assembles ECS task definition documents from resolved
// service specs. This is part of the Functional Core - all remote work
// (secret key discovery) happens before Assemble is called, so everything
// here is pure and deterministic.
package taskdef

import (
	"strconv"
	"strings"

	"github.com/artpar/taskforge/internal/core/platform"
	"github.com/artpar/taskforge/internal/core/secrets"
	"github.com/artpar/taskforge/internal/core/spec"
)

// =============================================================================
// Task Definition Assembly
// =============================================================================

// Inputs carries the per-invocation values supplied outside the YAML
// document, usually by the CI pipeline.
type Inputs struct {
	ClusterName string
	AWSRegion   string

	// Registry hosts sidecar images (fluent-bit, custom otel collectors).
	Registry string
	// ContainerRegistry hosts the app image. Often the same host as
	// Registry, but kept separate so app images can live elsewhere.
	ContainerRegistry string

	ImageName string
	Tag       string
}

// Assemble builds the complete task definition for a resolved service spec.
// Container order is fixed: init container (when secret files exist), the
// app, then sidecars. readonly_root_filesystem and writable_dirs apply to
// every container in the task, sidecars included. Returns the document and
// any warnings to surface to the operator.
func Assemble(s *spec.ServiceSpec, in Inputs, resolved []secrets.ResolvedSecret) (*TaskDefinition, []string, error) {
	appName := s.Name

	environment := make([]KeyValuePair, 0, len(s.Envs))
	for _, env := range s.Envs {
		environment = append(environment, KeyValuePair{Name: env.Name, Value: env.Value})
	}

	secretRefs := make([]Secret, 0, len(resolved))
	for _, rs := range resolved {
		secretRefs = append(secretRefs, Secret{Name: rs.Name, ValueFrom: rs.ValueFrom})
	}

	useFluentBit := s.FluentBit != nil && strings.TrimSpace(s.FluentBit.ImageName) != ""
	hasSecretFiles := len(s.SecretFiles) > 0
	imageURI := BuildImageURI(in.ContainerRegistry, in.ImageName, in.Tag)

	var containers []ContainerDefinition
	if hasSecretFiles {
		containers = append(containers, buildInitContainer(s.SecretFiles, in, appName, s.SecretsFilesPath))
	}

	app, warnings, err := buildAppContainer(s, in, imageURI, environment, secretRefs, useFluentBit, hasSecretFiles)
	if err != nil {
		return nil, nil, err
	}
	containers = append(containers, app)

	if useFluentBit {
		containers = append(containers, buildFluentBitContainer(s.FluentBit, in, appName))
	}
	if s.OtelCollector != nil {
		containers = append(containers, buildOtelContainer(s.OtelCollector, in, appName))
	}

	if s.ReadonlyRootFilesystem != nil {
		for i := range containers {
			v := *s.ReadonlyRootFilesystem
			containers[i].ReadonlyRootFilesystem = &v
		}
	}
	for i := range containers {
		for _, dir := range s.WritableDirs {
			containers[i].MountPoints = append(containers[i].MountPoints, MountPoint{
				SourceVolume:  WritableVolumeName(dir),
				ContainerPath: dir,
			})
		}
	}

	doc := &TaskDefinition{
		ContainerDefinitions:    containers,
		CPU:                     resourceString(s.CPU, platform.DefaultCPU),
		Memory:                  resourceString(s.Memory, platform.DefaultMemory),
		Family:                  Family(in.ClusterName, appName),
		TaskRoleArn:             s.RoleARN,
		ExecutionRoleArn:        s.RoleARN,
		NetworkMode:             s.NetworkMode,
		RequiresCompatibilities: []string{s.LaunchType},
	}

	if s.LaunchType == platform.LaunchTypeFargate {
		doc.RuntimePlatform = &RuntimePlatform{
			CPUArchitecture:       s.CPUArch,
			OperatingSystemFamily: "LINUX",
		}
	}
	if s.EphemeralStorage != nil {
		doc.EphemeralStorage = &EphemeralStorage{SizeInGiB: *s.EphemeralStorage}
	}

	var volumes []Volume
	if hasSecretFiles {
		volumes = append(volumes, Volume{Name: SharedVolumeName})
	}
	for _, dir := range s.WritableDirs {
		volumes = append(volumes, Volume{Name: WritableVolumeName(dir)})
	}
	doc.Volumes = volumes

	return doc, warnings, nil
}

// resourceString renders cpu/memory as the string values ECS expects,
// falling back to the Fargate minimum tier when unset.
func resourceString(v *int, def int) string {
	if v != nil {
		return strconv.Itoa(*v)
	}
	return strconv.Itoa(def)
}
