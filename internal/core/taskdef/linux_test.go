package taskdef

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artpar/taskforge/internal/core/platform"
	"github.com/artpar/taskforge/internal/core/spec"
)

func TestBuildLinuxParameters_NilBlock(t *testing.T) {
	lp, warnings, err := BuildLinuxParameters(nil, platform.LaunchTypeFargate)
	require.NoError(t, err)
	assert.Nil(t, lp)
	assert.Empty(t, warnings)
}

func TestBuildLinuxParameters_EmptyBlockReturnsNil(t *testing.T) {
	lp, warnings, err := BuildLinuxParameters(&spec.LinuxParametersSpec{}, platform.LaunchTypeFargate)
	require.NoError(t, err)
	assert.Nil(t, lp)
	assert.Empty(t, warnings)
}

func TestBuildLinuxParameters_InitProcessKeepsExplicitFalse(t *testing.T) {
	disabled := false
	lp, _, err := BuildLinuxParameters(&spec.LinuxParametersSpec{InitProcessEnabled: &disabled}, platform.LaunchTypeFargate)
	require.NoError(t, err)
	require.NotNil(t, lp)
	require.NotNil(t, lp.InitProcessEnabled)
	assert.False(t, *lp.InitProcessEnabled)
}

func TestBuildLinuxParameters_Capabilities(t *testing.T) {
	in := &spec.LinuxParametersSpec{
		Capabilities: &spec.CapabilitiesSpec{
			Add:  []string{"SYS_PTRACE"},
			Drop: []string{"NET_RAW", "MKNOD"},
		},
	}
	lp, _, err := BuildLinuxParameters(in, platform.LaunchTypeFargate)
	require.NoError(t, err)
	require.NotNil(t, lp)
	require.NotNil(t, lp.Capabilities)
	assert.Equal(t, []string{"SYS_PTRACE"}, lp.Capabilities.Add)
	assert.Equal(t, []string{"NET_RAW", "MKNOD"}, lp.Capabilities.Drop)
}

func TestBuildLinuxParameters_TmpfsDefaults(t *testing.T) {
	in := &spec.LinuxParametersSpec{Tmpfs: []spec.TmpfsSpec{{}}}
	lp, _, err := BuildLinuxParameters(in, platform.LaunchTypeFargate)
	require.NoError(t, err)
	require.NotNil(t, lp)
	require.Len(t, lp.Tmpfs, 1)
	assert.Equal(t, "/tmp", lp.Tmpfs[0].ContainerPath)
	assert.Equal(t, 64, lp.Tmpfs[0].Size)
}

func TestBuildLinuxParameters_TmpfsExplicit(t *testing.T) {
	size := 128
	in := &spec.LinuxParametersSpec{Tmpfs: []spec.TmpfsSpec{{
		ContainerPath: "/run",
		Size:          &size,
		MountOptions:  []string{"noexec", "nosuid"},
	}}}
	lp, _, err := BuildLinuxParameters(in, platform.LaunchTypeFargate)
	require.NoError(t, err)
	require.Len(t, lp.Tmpfs, 1)
	assert.Equal(t, "/run", lp.Tmpfs[0].ContainerPath)
	assert.Equal(t, 128, lp.Tmpfs[0].Size)
	assert.Equal(t, []string{"noexec", "nosuid"}, lp.Tmpfs[0].MountOptions)
}

func TestBuildLinuxParameters_TmpfsRejectsNonPositiveSize(t *testing.T) {
	size := 0
	in := &spec.LinuxParametersSpec{Tmpfs: []spec.TmpfsSpec{{Size: &size}}}
	_, _, err := BuildLinuxParameters(in, platform.LaunchTypeFargate)
	require.Error(t, err)
	assert.ErrorIs(t, err, spec.ErrInvalidLinuxParameters)
}

func TestBuildLinuxParameters_SwappinessBounds(t *testing.T) {
	tests := []struct {
		value int
		ok    bool
	}{
		{0, true},
		{60, true},
		{100, true},
		{-1, false},
		{101, false},
	}

	for _, tt := range tests {
		v := tt.value
		lp, _, err := BuildLinuxParameters(&spec.LinuxParametersSpec{Swappiness: &v}, platform.LaunchTypeEC2)
		if tt.ok {
			require.NoError(t, err, "swappiness %d", tt.value)
			require.NotNil(t, lp.Swappiness)
			assert.Equal(t, tt.value, *lp.Swappiness)
		} else {
			assert.ErrorIs(t, err, spec.ErrInvalidLinuxParameters, "swappiness %d", tt.value)
		}
	}
}

func TestBuildLinuxParameters_MaxSwap(t *testing.T) {
	zero := 0
	lp, _, err := BuildLinuxParameters(&spec.LinuxParametersSpec{MaxSwap: &zero}, platform.LaunchTypeEC2)
	require.NoError(t, err)
	require.NotNil(t, lp.MaxSwap)
	assert.Equal(t, 0, *lp.MaxSwap)

	negative := -1
	_, _, err = BuildLinuxParameters(&spec.LinuxParametersSpec{MaxSwap: &negative}, platform.LaunchTypeEC2)
	assert.ErrorIs(t, err, spec.ErrInvalidLinuxParameters)
}

func TestBuildLinuxParameters_FargateDropsSharedMemoryWithWarning(t *testing.T) {
	size := 256
	lp, warnings, err := BuildLinuxParameters(&spec.LinuxParametersSpec{SharedMemorySize: &size}, platform.LaunchTypeFargate)
	require.NoError(t, err)
	assert.Nil(t, lp, "nothing else set, dropped field leaves an empty block")
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "shared_memory_size")
}

func TestBuildLinuxParameters_EC2KeepsSharedMemory(t *testing.T) {
	size := 256
	lp, warnings, err := BuildLinuxParameters(&spec.LinuxParametersSpec{SharedMemorySize: &size}, platform.LaunchTypeEC2)
	require.NoError(t, err)
	assert.Empty(t, warnings)
	require.NotNil(t, lp)
	require.NotNil(t, lp.SharedMemorySize)
	assert.Equal(t, 256, *lp.SharedMemorySize)
}

func TestBuildLinuxParameters_FargateDropsDevicesWithWarning(t *testing.T) {
	in := &spec.LinuxParametersSpec{
		Devices: []spec.DeviceSpec{{HostPath: "/dev/fuse"}},
	}
	lp, warnings, err := BuildLinuxParameters(in, platform.LaunchTypeFargate)
	require.NoError(t, err)
	assert.Nil(t, lp)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "devices")
}

func TestBuildLinuxParameters_EC2DeviceDefaults(t *testing.T) {
	in := &spec.LinuxParametersSpec{
		Devices: []spec.DeviceSpec{{HostPath: "/dev/fuse"}},
	}
	lp, _, err := BuildLinuxParameters(in, platform.LaunchTypeEC2)
	require.NoError(t, err)
	require.Len(t, lp.Devices, 1)
	assert.Equal(t, "/dev/fuse", lp.Devices[0].HostPath)
	assert.Equal(t, "/dev/fuse", lp.Devices[0].ContainerPath, "container path defaults to host path")
	assert.Equal(t, []string{"read", "write"}, lp.Devices[0].Permissions)
}

func TestBuildLinuxParameters_DeviceRequiresHostPath(t *testing.T) {
	in := &spec.LinuxParametersSpec{
		Devices: []spec.DeviceSpec{{ContainerPath: "/dev/fuse"}},
	}
	_, _, err := BuildLinuxParameters(in, platform.LaunchTypeEC2)
	require.Error(t, err)
	assert.ErrorIs(t, err, spec.ErrInvalidLinuxParameters)

	var cfgErr *spec.ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "linux_parameters.devices[0].host_path", cfgErr.Field)
}

func TestBuildLinuxParameters_MixedFargateBlock(t *testing.T) {
	// A block mixing portable and EC2-only fields keeps the portable ones.
	enabled := true
	shm := 128
	in := &spec.LinuxParametersSpec{
		InitProcessEnabled: &enabled,
		SharedMemorySize:   &shm,
	}
	lp, warnings, err := BuildLinuxParameters(in, platform.LaunchTypeFargate)
	require.NoError(t, err)
	require.NotNil(t, lp)
	require.NotNil(t, lp.InitProcessEnabled)
	assert.True(t, *lp.InitProcessEnabled)
	assert.Nil(t, lp.SharedMemorySize)
	assert.Len(t, warnings, 1)
}
