package taskdef

import (
	"github.com/artpar/taskforge/internal/core/platform"
	"github.com/artpar/taskforge/internal/core/spec"
)

// =============================================================================
// Port Mappings
// =============================================================================

// buildPortMappings builds the app container's port mappings. The primary
// port is always named "default"; additional ports keep their declared names
// and document order. Bridge networking leaves hostPort 0 so the agent
// assigns a dynamic host port; every other mode pins hostPort to the
// container port. appProtocol is added unless the service speaks plain tcp.
func buildPortMappings(mainPort *int, additional spec.NamedPorts, appProtocol, networkMode string) []PortMapping {
	dynamicHostPort := networkMode == platform.NetworkModeBridge

	var mappings []PortMapping
	add := func(name string, port int) {
		m := PortMapping{
			Name:          name,
			ContainerPort: port,
			Protocol:      "tcp",
		}
		if !dynamicHostPort {
			m.HostPort = port
		}
		if appProtocol != "tcp" {
			m.AppProtocol = appProtocol
		}
		mappings = append(mappings, m)
	}

	if mainPort != nil && *mainPort != 0 {
		add("default", *mainPort)
	}
	for _, p := range additional {
		add(p.Name, p.Port)
	}
	return mappings
}
