package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "09:00", cfg.Compliance.CallHoursStart)
	assert.Equal(t, "17:00", cfg.Compliance.CallHoursEnd)
	assert.Equal(t, "America/New_York", cfg.Compliance.Timezone)
	assert.Equal(t, 5*time.Second, cfg.Campaign.PacingDelay)
	assert.Equal(t, 1000, cfg.EventLog.Capacity)
	assert.Equal(t, "file", cfg.EventLog.Backend)
	assert.Equal(t, "file", cfg.DNC.Backend)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: 9090
compliance:
  timezone: Europe/London
event_log:
  backend: postgres
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "Europe/London", cfg.Compliance.Timezone)
	assert.Equal(t, "postgres", cfg.EventLog.Backend)
	// Untouched keys keep their defaults.
	assert.Equal(t, "09:00", cfg.Compliance.CallHoursStart)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  port: 9090\n"), 0o644))

	t.Setenv("VOB_SERVER_PORT", "7070")
	t.Setenv("VOB_ENVIRONMENT", "staging")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, "staging", cfg.Environment)
}

func TestLoad_ValidationFailures(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{
			name: "zero event log capacity",
			yaml: "event_log:\n  capacity: 0\n",
		},
		{
			name: "unknown event log backend",
			yaml: "event_log:\n  backend: s3\n",
		},
		{
			name: "unknown dnc backend",
			yaml: "dnc:\n  backend: dynamodb\n",
		},
		{
			name: "malformed provider url",
			yaml: "provider:\n  base_url: not-a-url\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.yaml), 0o644))

			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}

func TestLoad_MissingFileIgnored(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.Port)
}
