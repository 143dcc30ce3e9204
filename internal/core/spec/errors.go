// Package spec contains pure functions for parsing service configuration
// documents and resolving per-service overrides into one concrete spec.
// This is part of the Functional Core - all functions are pure with no I/O.
package spec

import (
	"errors"
	"fmt"
)

// =============================================================================
// Error Types
// =============================================================================

var (
	// Input validation errors
	ErrEmptyInput = errors.New("service config is empty")

	// YAML parsing errors
	ErrInvalidYAML = errors.New("invalid YAML syntax")
	ErrNotMapping  = errors.New("service config must be a YAML mapping")

	// Override resolution errors
	ErrSelectorMissing    = errors.New("service selector is required when services_overrides is present")
	ErrOverrideNotMapping = errors.New("services_overrides entry must be a mapping")

	// Platform validation errors
	ErrInvalidLaunchType  = errors.New("invalid launch type")
	ErrInvalidNetworkMode = errors.New("invalid network mode")
	ErrInvalidCPU         = errors.New("invalid CPU value")
	ErrInvalidMemory      = errors.New("invalid memory value")
	ErrRoleARNRequired    = errors.New("role_arn is required")

	// Secret reference errors
	ErrInvalidSecretRef = errors.New("invalid secret reference")

	// Linux parameters errors
	ErrInvalidLinuxParameters = errors.New("invalid linux parameters")
)

// ConfigError wraps errors with context about which field failed validation.
type ConfigError struct {
	Field   string // e.g., "secrets_envs[2].values[0]"
	Message string
	Err     error
}

func (e *ConfigError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return e.Message
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// NewConfigError creates a new ConfigError.
func NewConfigError(field, message string, err error) *ConfigError {
	return &ConfigError{
		Field:   field,
		Message: message,
		Err:     err,
	}
}
