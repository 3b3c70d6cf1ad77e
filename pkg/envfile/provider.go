package envfile

import (
	"os"

	"github.com/knadh/koanf/maps"

	"github.com/deskctl/deskctl/pkg/errors"
	"github.com/deskctl/deskctl/pkg/logging"
)

// KeyMap maps the environment file's variable names to configuration key
// paths. The variable surface is exactly the one the historical init script
// consumed, plus the server and setup-script locations.
var KeyMap = map[string]string{
	"USER":         "session.user",
	"DISPLAY":      "session.display",
	"GEOMETRY":     "session.geometry",
	"DEPTH":        "session.depth",
	"NAME":         "session.name",
	"SERVER_BIN":   "server.binary",
	"STOP_TIMEOUT": "server.stop_timeout",
	"SETUP_SCRIPT": "setup.script",
}

// EnvFile is a koanf provider over an init-style environment file.
type EnvFile struct {
	path      string
	missingOK bool
}

// New creates a provider for the environment file at path. With missingOK
// an absent file yields an empty layer instead of an error; this mirrors
// the init script, which sourced the file only when present.
func New(path string, missingOK bool) *EnvFile {
	return &EnvFile{path: path, missingOK: missingOK}
}

// ReadBytes is unsupported; the provider returns structured values.
func (e *EnvFile) ReadBytes() ([]byte, error) {
	return nil, errors.New(errors.ErrInternal, "envfile provider does not support raw bytes")
}

// Read parses the file and maps known variables onto nested config keys.
// Unknown variables are ignored with a debug log line.
func (e *EnvFile) Read() (map[string]interface{}, error) {
	logger := logging.GetLogger("envfile")

	f, err := os.Open(e.path)
	if err != nil {
		if os.IsNotExist(err) && e.missingOK {
			logger.Debug().Str("path", e.path).Msg("environment file absent, skipping layer")
			return map[string]interface{}{}, nil
		}
		return nil, errors.Wrapf(err, errors.ErrFileAccess,
			"failed to open environment file %s", e.path)
	}
	defer func() { _ = f.Close() }()

	vars, err := Parse(f)
	if err != nil {
		return nil, err
	}

	flat := make(map[string]interface{}, len(vars))
	for key, value := range vars {
		path, known := KeyMap[key]
		if !known {
			logger.Debug().Str("key", key).Str("path", e.path).Msg("ignoring unknown variable")
			continue
		}
		flat[path] = value
	}

	return maps.Unflatten(flat, "."), nil
}
