package taskdef

// =============================================================================
// ECS Task Definition Document Types
// =============================================================================

// TaskDefinition is the complete registration document, shaped for the
// register-task-definition JSON input. Field tags control exactly which
// keys appear: cpu and memory are always strings, volumes and the Fargate
// blocks appear only when used.
type TaskDefinition struct {
	ContainerDefinitions    []ContainerDefinition `json:"containerDefinitions"`
	CPU                     string                `json:"cpu"`
	Memory                  string                `json:"memory"`
	Family                  string                `json:"family"`
	TaskRoleArn             string                `json:"taskRoleArn"`
	ExecutionRoleArn        string                `json:"executionRoleArn"`
	NetworkMode             string                `json:"networkMode"`
	RequiresCompatibilities []string              `json:"requiresCompatibilities"`
	RuntimePlatform         *RuntimePlatform      `json:"runtimePlatform,omitempty"`
	EphemeralStorage        *EphemeralStorage     `json:"ephemeralStorage,omitempty"`
	Volumes                 []Volume              `json:"volumes,omitempty"`
}

// ContainerDefinition is one container entry. Empty collections are omitted
// except portMappings' hostPort and logConfiguration options, which must be
// present even when zero or empty.
type ContainerDefinition struct {
	Name                   string                 `json:"name"`
	Image                  string                 `json:"image"`
	Essential              bool                   `json:"essential"`
	EntryPoint             []string               `json:"entryPoint,omitempty"`
	Command                []string               `json:"command,omitempty"`
	Environment            []KeyValuePair         `json:"environment,omitempty"`
	Secrets                []Secret               `json:"secrets,omitempty"`
	StopTimeout            *int                   `json:"stopTimeout,omitempty"`
	HealthCheck            *HealthCheck           `json:"healthCheck,omitempty"`
	PortMappings           []PortMapping          `json:"portMappings,omitempty"`
	LinuxParameters        *LinuxParameters       `json:"linuxParameters,omitempty"`
	LogConfiguration       *LogConfiguration      `json:"logConfiguration,omitempty"`
	FirelensConfiguration  *FirelensConfiguration `json:"firelensConfiguration,omitempty"`
	MountPoints            []MountPoint           `json:"mountPoints,omitempty"`
	DependsOn              []ContainerDependency  `json:"dependsOn,omitempty"`
	ReadonlyRootFilesystem *bool                  `json:"readonlyRootFilesystem,omitempty"`
}

// KeyValuePair is one environment entry.
type KeyValuePair struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Secret is one container secret: the env var name and the locator ECS
// resolves at launch.
type Secret struct {
	Name      string `json:"name"`
	ValueFrom string `json:"valueFrom"`
}

// HealthCheck is a container health check with all timing fields resolved.
type HealthCheck struct {
	Command     []string `json:"command"`
	Interval    int      `json:"interval"`
	Timeout     int      `json:"timeout"`
	Retries     int      `json:"retries"`
	StartPeriod int      `json:"startPeriod"`
}

// PortMapping is one exposed port. HostPort has no omitempty: bridge
// networking emits hostPort 0 to request a dynamic host port.
type PortMapping struct {
	Name          string `json:"name"`
	ContainerPort int    `json:"containerPort"`
	HostPort      int    `json:"hostPort"`
	Protocol      string `json:"protocol"`
	AppProtocol   string `json:"appProtocol,omitempty"`
}

// LogConfiguration is a container log driver block. Options has no
// omitempty: the awsfirelens driver carries an empty options object.
type LogConfiguration struct {
	LogDriver string            `json:"logDriver"`
	Options   map[string]string `json:"options"`
}

// FirelensConfiguration configures the log-router sidecar.
type FirelensConfiguration struct {
	Type    string            `json:"type"`
	Options map[string]string `json:"options"`
}

// MountPoint attaches a task volume inside a container.
type MountPoint struct {
	SourceVolume  string `json:"sourceVolume"`
	ContainerPath string `json:"containerPath"`
}

// ContainerDependency orders container startup.
type ContainerDependency struct {
	ContainerName string `json:"containerName"`
	Condition     string `json:"condition"`
}

// Volume is a task-level volume. Host is a struct value so the document
// always carries the empty "host": {} object ECS expects.
type Volume struct {
	Name string     `json:"name"`
	Host HostVolume `json:"host"`
}

// HostVolume is intentionally empty.
type HostVolume struct{}

// RuntimePlatform is emitted for Fargate tasks only.
type RuntimePlatform struct {
	CPUArchitecture       string `json:"cpuArchitecture"`
	OperatingSystemFamily string `json:"operatingSystemFamily"`
}

// EphemeralStorage is the Fargate ephemeral disk size.
type EphemeralStorage struct {
	SizeInGiB int `json:"sizeInGiB"`
}

// LinuxParameters mirrors the ECS linuxParameters block. Pointers keep
// explicit zero values (swappiness 0, initProcessEnabled false) in the
// document while omitting fields that were never set.
type LinuxParameters struct {
	InitProcessEnabled *bool               `json:"initProcessEnabled,omitempty"`
	Capabilities       *KernelCapabilities `json:"capabilities,omitempty"`
	Tmpfs              []Tmpfs             `json:"tmpfs,omitempty"`
	Swappiness         *int                `json:"swappiness,omitempty"`
	MaxSwap            *int                `json:"maxSwap,omitempty"`
	SharedMemorySize   *int                `json:"sharedMemorySize,omitempty"`
	Devices            []Device            `json:"devices,omitempty"`
}

// KernelCapabilities lists capabilities to add or drop.
type KernelCapabilities struct {
	Add  []string `json:"add,omitempty"`
	Drop []string `json:"drop,omitempty"`
}

// Tmpfs is one in-memory mount.
type Tmpfs struct {
	ContainerPath string   `json:"containerPath"`
	Size          int      `json:"size"`
	MountOptions  []string `json:"mountOptions,omitempty"`
}

// Device is one host device mapping (EC2 only).
type Device struct {
	HostPath      string   `json:"hostPath"`
	ContainerPath string   `json:"containerPath"`
	Permissions   []string `json:"permissions"`
}
