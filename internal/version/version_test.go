package version

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestString(t *testing.T) {
	v, c, b := Version, GitCommit, BuildTime
	t.Cleanup(func() { Version, GitCommit, BuildTime = v, c, b })

	Version, GitCommit, BuildTime = "v1.2.0", "unknown", "unknown"
	require.Equal(t, "v1.2.0", String())

	GitCommit = "abc123"
	require.Equal(t, "v1.2.0 (abc123)", String())

	BuildTime = "2026-01-02T03:04:05Z"
	require.Equal(t, "v1.2.0 (abc123, 2026-01-02T03:04:05Z)", String())
}
