package taskdef

import (
	"fmt"

	"github.com/artpar/taskforge/internal/core/platform"
	"github.com/artpar/taskforge/internal/core/spec"
)

// =============================================================================
// Linux Parameters
// =============================================================================

const (
	defaultTmpfsPath = "/tmp"
	defaultTmpfsSize = 64
)

// BuildLinuxParameters converts a linux_parameters block into its ECS form.
// shared_memory_size and devices only exist on EC2; under Fargate they are
// dropped with a warning instead of failing the build. Returns nil when the
// block is absent or nothing in it applies.
func BuildLinuxParameters(lp *spec.LinuxParametersSpec, launchType string) (*LinuxParameters, []string, error) {
	if lp == nil {
		return nil, nil, nil
	}

	out := &LinuxParameters{}
	set := false
	var warnings []string
	fargate := launchType == platform.LaunchTypeFargate

	if lp.InitProcessEnabled != nil {
		v := *lp.InitProcessEnabled
		out.InitProcessEnabled = &v
		set = true
	}

	if lp.Capabilities != nil && (len(lp.Capabilities.Add) > 0 || len(lp.Capabilities.Drop) > 0) {
		out.Capabilities = &KernelCapabilities{
			Add:  append([]string(nil), lp.Capabilities.Add...),
			Drop: append([]string(nil), lp.Capabilities.Drop...),
		}
		set = true
	}

	for i, t := range lp.Tmpfs {
		path := t.ContainerPath
		if path == "" {
			path = defaultTmpfsPath
		}
		size := defaultTmpfsSize
		if t.Size != nil {
			size = *t.Size
		}
		if size <= 0 {
			return nil, nil, spec.NewConfigError(
				fmt.Sprintf("linux_parameters.tmpfs[%d].size", i),
				"tmpfs size must be a positive integer (MiB)",
				spec.ErrInvalidLinuxParameters,
			)
		}
		out.Tmpfs = append(out.Tmpfs, Tmpfs{
			ContainerPath: path,
			Size:          size,
			MountOptions:  append([]string(nil), t.MountOptions...),
		})
		set = true
	}

	if lp.Swappiness != nil {
		if *lp.Swappiness < 0 || *lp.Swappiness > 100 {
			return nil, nil, spec.NewConfigError(
				"linux_parameters.swappiness",
				"swappiness must be between 0 and 100",
				spec.ErrInvalidLinuxParameters,
			)
		}
		v := *lp.Swappiness
		out.Swappiness = &v
		set = true
	}

	if lp.MaxSwap != nil {
		if *lp.MaxSwap < 0 {
			return nil, nil, spec.NewConfigError(
				"linux_parameters.max_swap",
				"max_swap must be a non-negative integer (MiB)",
				spec.ErrInvalidLinuxParameters,
			)
		}
		v := *lp.MaxSwap
		out.MaxSwap = &v
		set = true
	}

	if lp.SharedMemorySize != nil {
		if fargate {
			warnings = append(warnings, "linux_parameters.shared_memory_size is EC2-only, dropping it for the FARGATE launch type")
		} else {
			if *lp.SharedMemorySize <= 0 {
				return nil, nil, spec.NewConfigError(
					"linux_parameters.shared_memory_size",
					"shared_memory_size must be a positive integer (MiB)",
					spec.ErrInvalidLinuxParameters,
				)
			}
			v := *lp.SharedMemorySize
			out.SharedMemorySize = &v
			set = true
		}
	}

	if len(lp.Devices) > 0 {
		if fargate {
			warnings = append(warnings, "linux_parameters.devices is EC2-only, dropping it for the FARGATE launch type")
		} else {
			for i, d := range lp.Devices {
				if d.HostPath == "" {
					return nil, nil, spec.NewConfigError(
						fmt.Sprintf("linux_parameters.devices[%d].host_path", i),
						"host_path is required",
						spec.ErrInvalidLinuxParameters,
					)
				}
				containerPath := d.ContainerPath
				if containerPath == "" {
					containerPath = d.HostPath
				}
				permissions := append([]string(nil), d.Permissions...)
				if len(permissions) == 0 {
					permissions = []string{"read", "write"}
				}
				out.Devices = append(out.Devices, Device{
					HostPath:      d.HostPath,
					ContainerPath: containerPath,
					Permissions:   permissions,
				})
				set = true
			}
		}
	}

	if !set {
		return nil, warnings, nil
	}
	return out, warnings, nil
}
