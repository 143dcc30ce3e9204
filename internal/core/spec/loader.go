package spec

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/artpar/taskforge/internal/core/platform"
)

// =============================================================================
// Defaults
// =============================================================================

const (
	// DefaultServiceName is used when neither the invocation nor the
	// document names the service.
	DefaultServiceName = "app"
	// DefaultSecretsFilesPath is where secret files land in the container.
	DefaultSecretsFilesPath = "/etc/secrets"
	// DefaultCPUArch is the cpu architecture emitted for Fargate tasks.
	DefaultCPUArch = "X86_64"
	// DefaultAppProtocol is assumed for port mappings unless overridden.
	DefaultAppProtocol = "http"

	overridesKey = "services_overrides"
)

// =============================================================================
// Parser Functions
// =============================================================================

// Document is a parsed service configuration, kept as a YAML node tree so
// override merging can observe explicit nulls and document order.
type Document struct {
	top *yaml.Node
}

// Parse parses raw YAML into a Document.
// This is a pure function - no I/O, no side effects.
func Parse(raw []byte) (*Document, error) {
	if strings.TrimSpace(string(raw)) == "" {
		return nil, ErrEmptyInput
	}

	var root yaml.Node
	if err := yaml.Unmarshal(raw, &root); err != nil {
		return nil, NewConfigError("", "invalid YAML syntax", ErrInvalidYAML)
	}
	if root.Kind == 0 {
		return nil, ErrEmptyInput
	}
	if root.Kind != yaml.DocumentNode || len(root.Content) == 0 {
		return nil, NewConfigError("", "config must be a YAML mapping", ErrNotMapping)
	}

	top := root.Content[0]
	if top.Kind != yaml.MappingNode {
		return nil, NewConfigError("", "config must be a YAML mapping", ErrNotMapping)
	}

	return &Document{top: top}, nil
}

// Selector resolves the service selector: the explicit name from the
// invocation when given, else the document's top-level name. Without either,
// the default name applies - unless overrides are present, in which case a
// selector is required to pick the right entry.
func (d *Document) Selector(explicit string) (string, error) {
	if s := strings.TrimSpace(explicit); s != "" {
		return s, nil
	}
	if name := scalarValue(mappingValue(d.top, "name")); name != "" {
		return name, nil
	}
	if ov := mappingValue(d.top, overridesKey); ov != nil && !isNullNode(ov) {
		return "", NewConfigError(overridesKey, "cannot pick an override entry without a service name", ErrSelectorMissing)
	}
	return DefaultServiceName, nil
}

// Merged returns the top-level mapping with the selector's overrides entry
// merged in and the services_overrides block itself dropped.
func (d *Document) Merged(selector string) (*yaml.Node, error) {
	base := withoutKey(d.top, overridesKey)

	overrides := mappingValue(d.top, overridesKey)
	if overrides == nil || isNullNode(overrides) {
		return base, nil
	}
	if overrides.Kind != yaml.MappingNode {
		return nil, NewConfigError(overridesKey, "services_overrides must be a mapping", ErrOverrideNotMapping)
	}

	entry := mappingValue(overrides, selector)
	if entry == nil || isNullNode(entry) {
		return base, nil
	}
	if entry.Kind != yaml.MappingNode {
		return nil, NewConfigError(
			fmt.Sprintf("%s.%s", overridesKey, selector),
			"override entry must be a mapping",
			ErrOverrideNotMapping,
		)
	}

	return mergeMappings(base, entry), nil
}

// Resolve merges, decodes, normalizes and validates the spec for one
// service. The explicit name takes precedence over the document's own name.
func (d *Document) Resolve(explicitName string) (*ServiceSpec, error) {
	selector, err := d.Selector(explicitName)
	if err != nil {
		return nil, err
	}

	merged, err := d.Merged(selector)
	if err != nil {
		return nil, err
	}

	var s ServiceSpec
	if err := merged.Decode(&s); err != nil {
		return nil, NewConfigError("", err.Error(), ErrInvalidYAML)
	}
	s.Name = selector

	normalize(&s)
	if err := validate(&s); err != nil {
		return nil, err
	}
	return &s, nil
}

// =============================================================================
// Normalization & Validation
// =============================================================================

// normalize applies documented defaults and canonical casing in place.
func normalize(s *ServiceSpec) {
	s.LaunchType = strings.ToUpper(strings.TrimSpace(s.LaunchType))
	if s.LaunchType == "" {
		s.LaunchType = platform.LaunchTypeFargate
	}
	s.NetworkMode = strings.ToLower(strings.TrimSpace(s.NetworkMode))
	if s.NetworkMode == "" {
		s.NetworkMode = platform.NetworkModeAWSVPC
	}
	if s.CPUArch == "" {
		s.CPUArch = DefaultCPUArch
	}
	if s.SecretsFilesPath == "" {
		s.SecretsFilesPath = DefaultSecretsFilesPath
	}
	if s.AppProtocol == "" {
		s.AppProtocol = DefaultAppProtocol
	}
}

// validate enforces the launch-type, resource and secret-reference rules
// that make a merged spec deployable.
func validate(s *ServiceSpec) error {
	if res := platform.CheckLaunchType(s.LaunchType); !res.Ok() {
		return NewConfigError("launch_type", res.Reason, ErrInvalidLaunchType)
	}
	if res := platform.CheckNetworkMode(s.LaunchType, s.NetworkMode); !res.Ok() {
		return NewConfigError("network_mode", res.Reason, ErrInvalidNetworkMode)
	}
	if strings.TrimSpace(s.RoleARN) == "" {
		return NewConfigError("role_arn", "role_arn is required", ErrRoleARNRequired)
	}
	if s.LaunchType == platform.LaunchTypeFargate && s.Memory == nil {
		return NewConfigError("memory", "memory is required for the FARGATE launch type", ErrInvalidMemory)
	}
	if res := platform.CheckCPU(s.LaunchType, s.CPU); !res.Ok() {
		return NewConfigError("cpu", res.Reason, ErrInvalidCPU)
	}
	if res := platform.CheckMemory(s.LaunchType, s.CPU, s.Memory); !res.Ok() {
		return NewConfigError("memory", res.Reason, ErrInvalidMemory)
	}
	return validateSecretEnvs(s.SecretsEnvs)
}

// validateSecretEnvs enforces the structural rules for secrets_envs entries;
// semantic resolution happens in the secrets package.
func validateSecretEnvs(entries []SecretEnv) error {
	for i, entry := range entries {
		field := fmt.Sprintf("secrets_envs[%d]", i)
		for j, v := range entry.Values {
			if strings.TrimSpace(v) == "" {
				return NewConfigError(
					fmt.Sprintf("%s.values[%d]", field, j),
					"must be a non-empty string",
					ErrInvalidSecretRef,
				)
			}
		}
		if entry.AutoParse() {
			continue
		}
		if strings.TrimSpace(entry.EnvName) == "" {
			return NewConfigError(field, "env_name is required when auto_parse_keys_to_envs is false", ErrInvalidSecretRef)
		}
		if strings.TrimSpace(entry.ID) == "" && strings.TrimSpace(entry.Name) == "" {
			return NewConfigError(field, "either id or name is required when auto_parse_keys_to_envs is false", ErrInvalidSecretRef)
		}
	}
	return nil
}

// scalarValue returns a node's text when it is a non-null scalar, else "".
func scalarValue(n *yaml.Node) string {
	if n == nil || n.Kind != yaml.ScalarNode || isNullNode(n) {
		return ""
	}
	return n.Value
}
