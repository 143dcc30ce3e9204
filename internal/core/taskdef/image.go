package taskdef

import (
	"fmt"
	"strings"
)

// =============================================================================
// Image Reference Handling
// =============================================================================

// ParseImageParts normalizes a raw image name. CI pipelines sometimes hand
// over a fully qualified reference, so a leading registry segment (any first
// path component containing a dot) is stripped, and a :tag suffix is split
// off. The suffix only wins when no explicit tag was supplied.
func ParseImageParts(imageName, tag string) (name, cleanTag string) {
	name, cleanTag = imageName, tag

	if strings.Contains(name, "/") {
		first, rest, _ := strings.Cut(name, "/")
		if strings.Contains(first, ".") {
			name = rest
		}
	}

	if strings.Contains(name, ":") {
		base, suffix, _ := strings.Cut(name, ":")
		name = base
		if cleanTag == "" {
			cleanTag = suffix
		}
	}

	return name, cleanTag
}

// BuildImageURI assembles the app image reference. An empty registry leaves
// the image name bare (useful for public images that already carry a host).
func BuildImageURI(containerRegistry, imageName, tag string) string {
	name, cleanTag := ParseImageParts(imageName, tag)
	if strings.TrimSpace(containerRegistry) == "" {
		return fmt.Sprintf("%s:%s", name, cleanTag)
	}
	return fmt.Sprintf("%s/%s:%s", containerRegistry, name, cleanTag)
}
