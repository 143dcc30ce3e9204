package spec

import (
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// =============================================================================
// ServiceSpec - Main Output Type
// =============================================================================

// ServiceSpec is one fully resolved service configuration: the top-level
// document with the selected services_overrides entry already merged in.
// Name is always set to the selector that resolved it.
type ServiceSpec struct {
	Name         string     `yaml:"name"`
	ReplicaCount FlexString `yaml:"replica_count"`

	CPU         *int   `yaml:"cpu"`
	Memory      *int   `yaml:"memory"`
	CPUArch     string `yaml:"cpu_arch"`
	LaunchType  string `yaml:"launch_type"`
	NetworkMode string `yaml:"network_mode"`
	RoleARN     string `yaml:"role_arn"`

	Port            *int       `yaml:"port"`
	AdditionalPorts NamedPorts `yaml:"additional_ports"`
	AppProtocol     string     `yaml:"app_protocol"`

	Command     []string         `yaml:"command"`
	Entrypoint  []string         `yaml:"entrypoint"`
	StopTimeout *int             `yaml:"stop_timeout"`
	HealthCheck *HealthCheckSpec `yaml:"health_check"`
	Envs        EnvVars          `yaml:"envs"`

	Secrets          EnvVars     `yaml:"secrets"`
	SecretsEnvs      []SecretEnv `yaml:"secrets_envs"`
	SecretFiles      []string    `yaml:"secret_files"`
	SecretsFilesPath string      `yaml:"secrets_files_path"`

	WritableDirs           []string `yaml:"writable_dirs"`
	ReadonlyRootFilesystem *bool    `yaml:"readonly_root_filesystem"`
	EphemeralStorage       *int     `yaml:"ephemeral_storage"`

	FluentBit       *FluentBitSpec       `yaml:"fluent_bit_collector"`
	OtelCollector   *OtelCollectorSpec   `yaml:"otel_collector"`
	LinuxParameters *LinuxParametersSpec `yaml:"linux_parameters"`

	// Autoscaling carries the raw autoscaling_configs block. It is decoded
	// and validated by the autoscaling package, never here.
	Autoscaling map[string]any `yaml:"autoscaling_configs"`
}

// HealthCheckSpec is the health_check block. A plain shell string gets
// wrapped into CMD-SHELL form by the builder; a full command vector is
// passed through untouched.
type HealthCheckSpec struct {
	Command     FlexCommand `yaml:"command"`
	Interval    *int        `yaml:"interval"`
	Timeout     *int        `yaml:"timeout"`
	Retries     *int        `yaml:"retries"`
	StartPeriod *int        `yaml:"start_period"`
}

// SecretEnv is one secrets_envs entry. Which secret-reference shape it
// represents depends on the fields set; see the secrets package.
type SecretEnv struct {
	ID                  string   `yaml:"id"`
	Name                string   `yaml:"name"`
	Values              []string `yaml:"values"`
	AutoParseKeysToEnvs *bool    `yaml:"auto_parse_keys_to_envs"`
	EnvName             string   `yaml:"env_name"`
}

// AutoParse reports whether the entry expands keys into individual env vars.
// Defaults to true when the field is absent.
func (s SecretEnv) AutoParse() bool {
	return s.AutoParseKeysToEnvs == nil || *s.AutoParseKeysToEnvs
}

// FluentBitSpec is the fluent_bit_collector block. The sidecar is enabled
// only when image_name is non-empty.
type FluentBitSpec struct {
	ImageName      string     `yaml:"image_name"`
	ExtraConfig    string     `yaml:"extra_config"`
	ECSLogMetadata FlexString `yaml:"ecs_log_metadata"`
	ServiceName    string     `yaml:"service_name"`
}

// OtelCollectorSpec is the otel_collector block. Presence of the block
// enables the sidecar; an empty mapping selects the default public image.
type OtelCollectorSpec struct {
	ImageName   string     `yaml:"image_name"`
	ExtraConfig string     `yaml:"extra_config"`
	SSMName     string     `yaml:"ssm_name"`
	MetricsPort FlexString `yaml:"metrics_port"`
	MetricsPath string     `yaml:"metrics_path"`
}

// LinuxParametersSpec is the linux_parameters block. shared_memory_size and
// devices only apply to the EC2 launch type.
type LinuxParametersSpec struct {
	InitProcessEnabled *bool             `yaml:"init_process_enabled"`
	Capabilities       *CapabilitiesSpec `yaml:"capabilities"`
	Tmpfs              []TmpfsSpec       `yaml:"tmpfs"`
	Swappiness         *int              `yaml:"swappiness"`
	MaxSwap            *int              `yaml:"max_swap"`
	SharedMemorySize   *int              `yaml:"shared_memory_size"`
	Devices            []DeviceSpec      `yaml:"devices"`
}

// CapabilitiesSpec lists kernel capabilities to add or drop.
type CapabilitiesSpec struct {
	Add  []string `yaml:"add"`
	Drop []string `yaml:"drop"`
}

// TmpfsSpec is one tmpfs mount.
type TmpfsSpec struct {
	ContainerPath string   `yaml:"container_path"`
	Size          *int     `yaml:"size"`
	MountOptions  []string `yaml:"mount_options"`
}

// DeviceSpec is one host device mapping (EC2 only).
type DeviceSpec struct {
	HostPath      string   `yaml:"host_path"`
	ContainerPath string   `yaml:"container_path"`
	Permissions   []string `yaml:"permissions"`
}

// =============================================================================
// Flexible Scalar Types
// =============================================================================

// FlexString is a string field that also accepts YAML ints and bools,
// keeping the literal text exactly as written in the document.
type FlexString string

func (s *FlexString) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: expected a scalar value", node.Line)
	}
	*s = FlexString(node.Value)
	return nil
}

func (s FlexString) String() string {
	return string(s)
}

// FlexCommand accepts either a single shell string or a full command vector.
// IsVector records which form the document used, so the task definition
// builder knows whether shell wrapping is still needed.
type FlexCommand struct {
	Parts    []string
	IsVector bool
}

func (c *FlexCommand) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		*c = FlexCommand{Parts: []string{node.Value}}
		return nil
	case yaml.SequenceNode:
		var parts []string
		if err := node.Decode(&parts); err != nil {
			return fmt.Errorf("line %d: command vector entries must be strings: %w", node.Line, err)
		}
		*c = FlexCommand{Parts: parts, IsVector: true}
		return nil
	default:
		return fmt.Errorf("line %d: command must be a string or a list of strings", node.Line)
	}
}

// Empty reports whether no usable command was given.
func (c FlexCommand) Empty() bool {
	if len(c.Parts) == 0 {
		return true
	}
	return !c.IsVector && strings.TrimSpace(c.Parts[0]) == ""
}

// String renders the command as a single line for messages and assertions.
func (c FlexCommand) String() string {
	return strings.Join(c.Parts, " ")
}

// EnvVar is a single name/value pair from an ordered pair sequence.
type EnvVar struct {
	Name  string
	Value string
}

// EnvVars preserves the document order of an envs-style sequence, where each
// item is a mapping of one (or more) name: value pairs. Values keep their
// literal YAML text, so `true` stays "true" and `8080` stays "8080".
type EnvVars []EnvVar

func (e *EnvVars) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.SequenceNode {
		return fmt.Errorf("line %d: expected a sequence of name: value mappings", node.Line)
	}
	var out EnvVars
	for _, item := range node.Content {
		if item.Kind != yaml.MappingNode {
			return fmt.Errorf("line %d: expected a name: value mapping", item.Line)
		}
		for i := 0; i+1 < len(item.Content); i += 2 {
			key := item.Content[i]
			val := item.Content[i+1]
			if val.Kind != yaml.ScalarNode {
				return fmt.Errorf("line %d: value for %q must be a scalar", val.Line, key.Value)
			}
			out = append(out, EnvVar{Name: key.Value, Value: val.Value})
		}
	}
	*e = out
	return nil
}

// NamedPort is one additional port mapping: the declared name and the
// container port.
type NamedPort struct {
	Name string
	Port int
}

// NamedPorts preserves the document order of additional_ports.
type NamedPorts []NamedPort

func (p *NamedPorts) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.SequenceNode {
		return fmt.Errorf("line %d: expected a sequence of name: port mappings", node.Line)
	}
	var out NamedPorts
	for _, item := range node.Content {
		if item.Kind != yaml.MappingNode {
			return fmt.Errorf("line %d: expected a name: port mapping", item.Line)
		}
		for i := 0; i+1 < len(item.Content); i += 2 {
			key := item.Content[i]
			val := item.Content[i+1]
			port, err := strconv.Atoi(val.Value)
			if err != nil {
				return fmt.Errorf("line %d: port for %q must be an integer", val.Line, key.Value)
			}
			out = append(out, NamedPort{Name: key.Value, Port: port})
		}
	}
	*p = out
	return nil
}
