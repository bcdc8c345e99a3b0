package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultsWhenUnset(t *testing.T) {
	os.Unsetenv("EDBXTRACT_LOG_LEVEL")
	os.Unsetenv("EDBXTRACT_OUTPUT_DIR")

	c, err := Load()
	require.NoError(t, err)
	require.Equal(t, "info", c.LogLevel)
	require.Equal(t, ".", c.OutputDir)
	require.Equal(t, int64(53687091200), c.MaxPSTBytes)
	require.Equal(t, "text", c.ReportFormat)
}

func TestLoad_EnvironmentOverridesDefault(t *testing.T) {
	os.Setenv("EDBXTRACT_LOG_LEVEL", "debug")
	defer os.Unsetenv("EDBXTRACT_LOG_LEVEL")

	c, err := Load()
	require.NoError(t, err)
	require.Equal(t, "debug", c.LogLevel)
}
