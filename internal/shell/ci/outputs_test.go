package ci

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriter_AppendsToOutputFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "github_output")
	w := &Writer{outputPath: path}

	require.NoError(t, w.Set("autoscaler_published", "true"))
	require.NoError(t, w.Set("autoscaler_service_key", "production:prod-cluster:my-service"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t,
		"autoscaler_published=true\nautoscaler_service_key=production:prod-cluster:my-service\n",
		string(data))
}

func TestWriter_FallsBackToWorkflowCommand(t *testing.T) {
	var buf bytes.Buffer
	w := &Writer{fallback: &buf}

	require.NoError(t, w.Set("replica_count", "3"))

	assert.Equal(t, "::set-output name=replica_count::3\n", buf.String())
}

func TestNewWriter_ReadsEnvironment(t *testing.T) {
	path := filepath.Join(t.TempDir(), "github_output")
	t.Setenv("GITHUB_OUTPUT", path)

	w := NewWriter()
	require.NoError(t, w.Set("checksum", "abc"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "checksum=abc\n", string(data))
}
