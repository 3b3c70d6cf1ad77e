// Package testutil provides small helpers shared by deskctl tests.
package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// IsolateDirs points every deskctl directory at fresh temp dirs so tests
// never touch real system state. Returns the config, state and runtime dirs.
func IsolateDirs(t *testing.T) (configDir, stateDir, runtimeDir string) {
	t.Helper()

	base := t.TempDir()
	configDir = filepath.Join(base, "config")
	stateDir = filepath.Join(base, "state")
	runtimeDir = filepath.Join(base, "run")

	t.Setenv("DESKCTL_CONFIG_DIR", configDir)
	t.Setenv("DESKCTL_STATE_DIR", stateDir)
	t.Setenv("DESKCTL_RUNTIME_DIR", runtimeDir)
	return configDir, stateDir, runtimeDir
}

// WriteFile writes content to path, creating parent directories.
func WriteFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

// EnvFile writes an init-style environment file into a temp dir and
// returns its path.
func EnvFile(t *testing.T, lines ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "deskctl")
	WriteFile(t, path, strings.Join(lines, "\n")+"\n")
	return path
}
