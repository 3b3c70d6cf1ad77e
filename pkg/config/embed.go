package config

import (
	_ "embed"
	"errors"
)

//go:embed deskctl.toml
var defaultConfig []byte

// DefaultTOML returns the built-in configuration file content, comments
// included. Used by `deskctl genconfig --defaults`.
func DefaultTOML() []byte {
	return defaultConfig
}

// rawBytesProvider implements koanf's Provider over in-memory bytes
type rawBytesProvider struct{ bytes []byte }

func (r *rawBytesProvider) ReadBytes() ([]byte, error) { return r.bytes, nil }
func (r *rawBytesProvider) Read() (map[string]interface{}, error) {
	return nil, errors.New("not implemented")
}
