package testutil

import (
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// UpdateEnv names the environment variable that rewrites golden files.
const UpdateEnv = "NZTODO_GOLDEN_UPDATE"

var idPattern = regexp.MustCompile(`[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}`)

// MaskIDs replaces every list or task id in s with <id>.
func MaskIDs(s string) string {
	return idPattern.ReplaceAllString(s, "<id>")
}

// Golden compares output against testdata/<name>.golden after masking ids.
// With NZTODO_GOLDEN_UPDATE set, it rewrites the file instead.
func Golden(t *testing.T, name string, got string) {
	t.Helper()

	got = MaskIDs(got)
	goldenPath := filepath.Join("testdata", name+".golden")

	if os.Getenv(UpdateEnv) != "" {
		require.NoError(t, os.MkdirAll("testdata", 0755))
		require.NoError(t, os.WriteFile(goldenPath, []byte(got), 0644))
		return
	}

	want, err := os.ReadFile(goldenPath)
	require.NoError(t, err, "read golden file; got:\n%s", got)
	assert.Equal(t, string(want), got, "output mismatch for %s", name)
}
