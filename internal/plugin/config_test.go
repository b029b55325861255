package plugin

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsLenient(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	require.Equal(t, DependencyPolicyLenient, cfg.DependencyPolicy)
	require.NotEmpty(t, cfg.SearchPaths)
}

func TestLoadConfigOverlaysDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := LoadConfig([]byte("log_level: debug\n"))
	require.NoError(t, err)
	require.Equal(t, "debug", cfg.LogLevel)
	require.Equal(t, DependencyPolicyLenient, cfg.DependencyPolicy)
}

func TestLoadConfigRejectsBadLogLevel(t *testing.T) {
	t.Parallel()

	_, err := LoadConfig([]byte("log_level: preposterous\n"))
	require.Error(t, err)
}

func TestLoadConfigRejectsMalformedYAML(t *testing.T) {
	t.Parallel()

	_, err := LoadConfig([]byte("not: [valid"))
	require.Error(t, err)
}
