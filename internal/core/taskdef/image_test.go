package taskdef

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseImageParts_PlainNameAndTag(t *testing.T) {
	name, tag := ParseImageParts("payments-api", "v1.2.3")
	assert.Equal(t, "payments-api", name)
	assert.Equal(t, "v1.2.3", tag)
}

func TestParseImageParts_StripsEmbeddedRegistry(t *testing.T) {
	name, tag := ParseImageParts("123456789012.dkr.ecr.us-east-1.amazonaws.com/payments-api", "v1")
	assert.Equal(t, "payments-api", name)
	assert.Equal(t, "v1", tag)
}

func TestParseImageParts_KeepsNamespacePath(t *testing.T) {
	// A first segment without a dot is a namespace, not a registry.
	name, _ := ParseImageParts("team/payments-api", "v1")
	assert.Equal(t, "team/payments-api", name)
}

func TestParseImageParts_StripsRegistryKeepsNamespace(t *testing.T) {
	name, _ := ParseImageParts("registry.example.com/team/payments-api", "v1")
	assert.Equal(t, "team/payments-api", name)
}

func TestParseImageParts_EmbeddedTagUsedWhenTagEmpty(t *testing.T) {
	name, tag := ParseImageParts("payments-api:sha-abc123", "")
	assert.Equal(t, "payments-api", name)
	assert.Equal(t, "sha-abc123", tag)
}

func TestParseImageParts_ExplicitTagWinsOverEmbedded(t *testing.T) {
	name, tag := ParseImageParts("payments-api:old", "new")
	assert.Equal(t, "payments-api", name)
	assert.Equal(t, "new", tag)
}

func TestBuildImageURI(t *testing.T) {
	tests := []struct {
		name     string
		registry string
		image    string
		tag      string
		want     string
	}{
		{
			name:     "registry prepended",
			registry: "123456789012.dkr.ecr.eu-west-1.amazonaws.com",
			image:    "payments-api",
			tag:      "v2",
			want:     "123456789012.dkr.ecr.eu-west-1.amazonaws.com/payments-api:v2",
		},
		{
			name:     "empty registry leaves image bare",
			registry: "",
			image:    "payments-api",
			tag:      "v2",
			want:     "payments-api:v2",
		},
		{
			name:     "whitespace registry treated as empty",
			registry: "   ",
			image:    "payments-api",
			tag:      "v2",
			want:     "payments-api:v2",
		},
		{
			name:     "embedded registry stripped before prepending",
			registry: "registry.example.com",
			image:    "old.registry.example.com/payments-api:v1",
			tag:      "",
			want:     "registry.example.com/payments-api:v1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, BuildImageURI(tt.registry, tt.image, tt.tag))
		})
	}
}
