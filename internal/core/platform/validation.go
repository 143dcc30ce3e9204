// Package platform provides launch-type and resource-tier validation.
// All functions are pure (no I/O); callers decide how failures surface.
package platform

import (
	"fmt"
	"sort"
)

// =============================================================================
// Types
// =============================================================================

// ValidationResult represents the outcome of a platform validation check.
type ValidationResult struct {
	// Allowed indicates whether the configuration is permitted
	Allowed bool

	// Reason explains why the configuration was rejected (empty if Allowed is true)
	Reason string
}

// Launch types. Fargate runs on provider-managed hosts with strict resource
// tiers; EC2 runs on operator-managed hosts with free-form sizing.
const (
	LaunchTypeFargate = "FARGATE"
	LaunchTypeEC2     = "EC2"
)

// Network modes accepted by the orchestrator.
const (
	NetworkModeAWSVPC = "awsvpc"
	NetworkModeBridge = "bridge"
	NetworkModeHost   = "host"
	NetworkModeNone   = "none"
)

// Resource defaults applied when the document omits sizing.
const (
	DefaultCPU    = 256
	DefaultMemory = 512
)

var validLaunchTypes = []string{LaunchTypeFargate, LaunchTypeEC2}

var validNetworkModes = []string{NetworkModeAWSVPC, NetworkModeBridge, NetworkModeHost, NetworkModeNone}

// fargateMemoryByCPU enumerates the memory values (MiB) each Fargate CPU
// tier permits.
var fargateMemoryByCPU = map[int][]int{
	256:  {512, 1024, 2048},
	512:  {1024, 2048, 3072, 4096},
	1024: {2048, 3072, 4096, 5120, 6144, 7168, 8192},
	2048: memoryRange(4096, 16384, 1024),
	4096: memoryRange(8192, 30720, 1024),
}

func memoryRange(from, to, step int) []int {
	var out []int
	for v := from; v <= to; v += step {
		out = append(out, v)
	}
	return out
}

// =============================================================================
// Validation Functions
// =============================================================================

// CheckLaunchType checks that the launch type is one of the supported values.
// Input is expected in canonical upper case.
func CheckLaunchType(launchType string) ValidationResult {
	for _, valid := range validLaunchTypes {
		if launchType == valid {
			return ValidationResult{Allowed: true}
		}
	}
	return ValidationResult{
		Allowed: false,
		Reason:  fmt.Sprintf("invalid launch_type: %s. Must be one of %v", launchType, validLaunchTypes),
	}
}

// CheckNetworkMode checks the network mode, including the Fargate restriction
// to awsvpc. Input is expected in canonical lower case.
func CheckNetworkMode(launchType, networkMode string) ValidationResult {
	known := false
	for _, valid := range validNetworkModes {
		if networkMode == valid {
			known = true
			break
		}
	}
	if !known {
		return ValidationResult{
			Allowed: false,
			Reason:  fmt.Sprintf("invalid network_mode: %s. Must be one of %v", networkMode, validNetworkModes),
		}
	}
	if launchType == LaunchTypeFargate && networkMode != NetworkModeAWSVPC {
		return ValidationResult{
			Allowed: false,
			Reason:  fmt.Sprintf("Fargate only supports 'awsvpc' network mode, got: %s", networkMode),
		}
	}
	return ValidationResult{Allowed: true}
}

// CheckCPU checks the cpu value for the launch type. Fargate accepts only the
// fixed tiers; EC2 accepts any positive integer or none at all.
func CheckCPU(launchType string, cpu *int) ValidationResult {
	if launchType == LaunchTypeFargate {
		value := DefaultCPU
		if cpu != nil {
			value = *cpu
		}
		if _, ok := fargateMemoryByCPU[value]; !ok {
			return ValidationResult{
				Allowed: false,
				Reason:  fmt.Sprintf("invalid CPU value: %d. Must be one of %v", value, fargateCPUTiers()),
			}
		}
		return ValidationResult{Allowed: true}
	}
	if cpu != nil && *cpu <= 0 {
		return ValidationResult{
			Allowed: false,
			Reason:  fmt.Sprintf("invalid CPU value: %d. Must be a positive integer", *cpu),
		}
	}
	return ValidationResult{Allowed: true}
}

// CheckMemory checks the memory value for the launch type. Under Fargate the
// value must fall in the cpu tier's enumerated set; under EC2 any positive
// integer (or none) is accepted.
func CheckMemory(launchType string, cpu, memory *int) ValidationResult {
	if launchType == LaunchTypeFargate {
		cpuValue := DefaultCPU
		if cpu != nil {
			cpuValue = *cpu
		}
		memValue := DefaultMemory
		if memory != nil {
			memValue = *memory
		}
		for _, allowed := range fargateMemoryByCPU[cpuValue] {
			if memValue == allowed {
				return ValidationResult{Allowed: true}
			}
		}
		return ValidationResult{
			Allowed: false,
			Reason:  fmt.Sprintf("invalid memory value %d for CPU %d", memValue, cpuValue),
		}
	}
	if memory != nil && *memory <= 0 {
		return ValidationResult{
			Allowed: false,
			Reason:  fmt.Sprintf("invalid memory value: %d. Must be a positive integer", *memory),
		}
	}
	return ValidationResult{Allowed: true}
}

func fargateCPUTiers() []int {
	tiers := make([]int, 0, len(fargateMemoryByCPU))
	for cpu := range fargateMemoryByCPU {
		tiers = append(tiers, cpu)
	}
	sort.Ints(tiers)
	return tiers
}

// =============================================================================
// Convenience Methods
// =============================================================================

// Ok returns true if the validation passed.
func (r ValidationResult) Ok() bool {
	return r.Allowed
}

// Error returns the reason as an error if validation failed, nil otherwise.
func (r ValidationResult) Error() error {
	if r.Allowed {
		return nil
	}
	return fmt.Errorf("platform validation failed: %s", r.Reason)
}
