package paths

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewHonorsOverrides(t *testing.T) {
	t.Setenv(EnvConfigDir, "/custom/config")
	t.Setenv(EnvStateDir, "/custom/state")
	t.Setenv(EnvRuntimeDir, "/custom/run")

	p := New()

	assert.Equal(t, "/custom/config", p.ConfigDir())
	assert.Equal(t, "/custom/state", p.StateDir())
	assert.Equal(t, "/custom/run", p.RuntimeDir())
	assert.Equal(t, "/custom/config/deskctl.toml", p.UserConfigFile())
	assert.Equal(t, "/etc/deskctl/deskctl.toml", p.SystemConfigFile())
}

func TestStateDirFromXDGStateHome(t *testing.T) {
	t.Setenv(EnvStateDir, "")
	t.Setenv("XDG_STATE_HOME", "/xdg/state")

	p := New()
	assert.Equal(t, filepath.Join("/xdg/state", AppDirName), p.StateDir())
}

func TestPidfilePath(t *testing.T) {
	t.Setenv(EnvRuntimeDir, "/custom/run")

	tests := []struct {
		display string
		want    string
	}{
		{":1", "/custom/run/display-1.pid"},
		{":42", "/custom/run/display-42.pid"},
		// already stripped input stays usable
		{"7", "/custom/run/display-7.pid"},
	}

	p := New()
	for _, tt := range tests {
		t.Run(tt.display, func(t *testing.T) {
			assert.Equal(t, tt.want, p.PidfilePath(tt.display))
		})
	}
}

func TestSetupMarkerAndLogPaths(t *testing.T) {
	t.Setenv(EnvStateDir, "/custom/state")

	p := New()
	assert.Equal(t, "/custom/state/setup.done", p.SetupMarkerPath())
	assert.Equal(t, "/custom/state/deskctl.log", p.LogFilePath())
}

func TestEnsureDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b")
	require.NoError(t, EnsureDir(dir))

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	// idempotent
	require.NoError(t, EnsureDir(dir))
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"bare tilde", "~", home},
		{"tilde slash", "~/x/y", filepath.Join(home, "x", "y")},
		{"other user untouched", "~bob/x", "~bob/x"},
		{"absolute untouched", "/etc/deskctl", "/etc/deskctl"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExpandHome(tt.in))
		})
	}
}
