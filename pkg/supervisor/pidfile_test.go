package supervisor

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deskctl/deskctl/pkg/errors"
)

func TestPidfileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run", "display-1.pid")

	require.NoError(t, writePidfile(path, 4242))

	pid, err := readPidfile(path)
	require.NoError(t, err)
	assert.Equal(t, int32(4242), pid)

	require.NoError(t, removePidfile(path))
	_, err = readPidfile(path)
	assert.True(t, errors.IsErrorCode(err, errors.ErrNotFound))
}

func TestReadPidfileGarbage(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"text", "not-a-pid\n"},
		{"negative", "-5\n"},
		{"zero", "0\n"},
		{"empty", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "display-1.pid")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o644))

			_, err := readPidfile(path)
			require.Error(t, err)
			assert.True(t, errors.IsErrorCode(err, errors.ErrPidfile))
		})
	}
}

func TestRemovePidfileToleratesAbsence(t *testing.T) {
	assert.NoError(t, removePidfile(filepath.Join(t.TempDir(), "nope.pid")))
}

func TestWritePidfileOverwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "display-1.pid")

	require.NoError(t, writePidfile(path, 1))
	require.NoError(t, writePidfile(path, 2))

	pid, err := readPidfile(path)
	require.NoError(t, err)
	assert.Equal(t, int32(2), pid)
}
