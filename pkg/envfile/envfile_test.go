package envfile

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deskctl/deskctl/pkg/errors"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  map[string]string
	}{
		{
			name: "classic init defaults file",
			input: `# Defaults for the desktop session
USER="alice"
DISPLAY=":1"
GEOMETRY="1024x768"
DEPTH="16"
NAME="biolinux"
`,
			want: map[string]string{
				"USER":     "alice",
				"DISPLAY":  ":1",
				"GEOMETRY": "1024x768",
				"DEPTH":    "16",
				"NAME":     "biolinux",
			},
		},
		{
			name:  "unquoted values and export prefix",
			input: "export DISPLAY=:2\nDEPTH=24\n",
			want:  map[string]string{"DISPLAY": ":2", "DEPTH": "24"},
		},
		{
			name:  "single quotes",
			input: "NAME='my desktop'\n",
			want:  map[string]string{"NAME": "my desktop"},
		},
		{
			name:  "unquoted trailing comment stripped",
			input: "DEPTH=16 # default color depth\n",
			want:  map[string]string{"DEPTH": "16"},
		},
		{
			name:  "blank lines and comments skipped",
			input: "\n# comment\n\nUSER=bob\n",
			want:  map[string]string{"USER": "bob"},
		},
		{
			name:  "empty value",
			input: "USER=\n",
			want:  map[string]string{"USER": ""},
		},
		{
			name:  "later assignment wins",
			input: "DEPTH=8\nDEPTH=24\n",
			want:  map[string]string{"DEPTH": "24"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(strings.NewReader(tt.input))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseMalformed(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"missing equals", "USER alice\n"},
		{"key with spaces", "MY KEY=value\n"},
		{"empty key", "=value\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.input))
			require.Error(t, err)
			assert.True(t, errors.IsErrorCode(err, errors.ErrEnvFile))
		})
	}
}

func TestProviderRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deskctl")
	content := `USER="alice"
DISPLAY=":3"
DEPTH="24"
UNRELATED="ignored"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	got, err := New(path, false).Read()
	require.NoError(t, err)

	session, ok := got["session"].(map[string]interface{})
	require.True(t, ok, "expected nested session map, got %#v", got)
	assert.Equal(t, "alice", session["user"])
	assert.Equal(t, ":3", session["display"])
	assert.Equal(t, "24", session["depth"])

	_, hasUnrelated := got["UNRELATED"]
	assert.False(t, hasUnrelated, "unknown keys must not leak into config")
}

func TestProviderMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nope")

	// tolerated when the default location is absent
	got, err := New(path, true).Read()
	require.NoError(t, err)
	assert.Empty(t, got)

	// an explicitly requested file must exist
	_, err = New(path, false).Read()
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrFileAccess))
}
