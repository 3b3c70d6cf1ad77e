package config

import (
	gotoml "github.com/pelletier/go-toml/v2"

	"github.com/deskctl/deskctl/pkg/errors"
)

// MarshalTOML renders the effective configuration as TOML, used by
// `deskctl genconfig` so operators can snapshot the merged result of all
// layers into a single file.
func (c *Config) MarshalTOML() ([]byte, error) {
	out, err := gotoml.Marshal(c)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrInternal, "failed to marshal config")
	}
	return out, nil
}
