// Package config loads deskctl's layered configuration with koanf.
//
// Layers, later entries overriding earlier ones:
//
//  1. built-in defaults (embedded TOML)
//  2. system config: /etc/deskctl/deskctl.toml
//  3. user config:   $XDG_CONFIG_HOME/deskctl/deskctl.toml
//  4. environment file (init-style, default /etc/default/deskctl)
//  5. DESKCTL_* process environment variables
package config

import (
	"os"
	"regexp"
	"strings"
	"time"

	ktoml "github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/deskctl/deskctl/pkg/envfile"
	"github.com/deskctl/deskctl/pkg/errors"
	"github.com/deskctl/deskctl/pkg/logging"
	"github.com/deskctl/deskctl/pkg/paths"
)

// EnvPrefix is the prefix for configuration via process environment
const EnvPrefix = "DESKCTL_"

// DefaultStopTimeout bounds how long Stop waits before escalating
const DefaultStopTimeout = 10 * time.Second

// Config is deskctl's effective configuration after all layers merge.
type Config struct {
	Session SessionConfig `toml:"session"`
	Server  ServerConfig  `toml:"server"`
	Setup   SetupConfig   `toml:"setup"`
}

// SessionConfig describes the remote-desktop session to supervise.
type SessionConfig struct {
	User     string `toml:"user"`
	Display  string `toml:"display"`
	Geometry string `toml:"geometry"`
	Depth    int    `toml:"depth"`
	Name     string `toml:"name"`
}

// ServerConfig locates the desktop server binary and tunes shutdown.
type ServerConfig struct {
	Binary      string `toml:"binary"`
	StopTimeout string `toml:"stop_timeout"`
}

// SetupConfig locates the privileged one-time setup script.
type SetupConfig struct {
	Script string `toml:"script"`
}

// Timeout returns the parsed stop timeout, falling back to the default
// when the raw value is unusable. Load validates the value, so the
// fallback only matters for hand-built configs.
func (s ServerConfig) Timeout() time.Duration {
	d, err := time.ParseDuration(s.StopTimeout)
	if err != nil || d <= 0 {
		return DefaultStopTimeout
	}
	return d
}

// LoadOptions controls which sources Load consults.
type LoadOptions struct {
	// Paths resolves config file locations; nil means paths.New()
	Paths *paths.Paths

	// EnvFile is an explicit environment file. Empty means the default
	// location, whose absence is tolerated; an explicit file must exist.
	EnvFile string

	// Environ is the process environment; nil means os.Environ()
	Environ []string
}

// Load merges all configuration layers and validates the result.
func Load(opts LoadOptions) (*Config, error) {
	logger := logging.GetLogger("config")

	p := opts.Paths
	if p == nil {
		p = paths.New()
	}

	k := koanf.New(".")

	// 1. Built-in defaults
	if err := k.Load(&rawBytesProvider{bytes: defaultConfig}, ktoml.Parser()); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load built-in defaults")
	}

	// 2.-3. System then user TOML, when present
	for _, path := range []string{p.SystemConfigFile(), p.UserConfigFile()} {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := k.Load(file.Provider(path), ktoml.Parser()); err != nil {
			return nil, errors.Wrapf(err, errors.ErrConfigParse, "failed to load config from %s", path)
		}
		logger.Debug().Str("path", path).Msg("loaded config file")
	}

	// 4. Environment file
	envFilePath := opts.EnvFile
	missingOK := false
	if envFilePath == "" {
		envFilePath = paths.DefaultEnvFile
		missingOK = true
	}
	if err := k.Load(envfile.New(envFilePath, missingOK), nil); err != nil {
		return nil, err
	}

	// 5. DESKCTL_* process environment
	environ := opts.Environ
	if environ == nil {
		environ = os.Environ()
	}
	if flat := environLayer(environ); len(flat) > 0 {
		if err := k.Load(confmap.Provider(flat, "."), nil); err != nil {
			return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load environment overrides")
		}
	}

	cfg := &Config{
		Session: SessionConfig{
			User:     k.String("session.user"),
			Display:  k.String("session.display"),
			Geometry: k.String("session.geometry"),
			Depth:    k.Int("session.depth"),
			Name:     k.String("session.name"),
		},
		Server: ServerConfig{
			Binary:      k.String("server.binary"),
			StopTimeout: k.String("server.stop_timeout"),
		},
		Setup: SetupConfig{
			Script: k.String("setup.script"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// environLayer extracts DESKCTL_-prefixed variables that name known
// configuration keys, as a flat delim-separated map.
func environLayer(environ []string) map[string]interface{} {
	flat := make(map[string]interface{})
	for _, kv := range environ {
		key, value, found := strings.Cut(kv, "=")
		if !found || !strings.HasPrefix(key, EnvPrefix) {
			continue
		}
		if path, known := envfile.KeyMap[strings.TrimPrefix(key, EnvPrefix)]; known {
			flat[path] = value
		}
	}
	return flat
}

var (
	displayRe  = regexp.MustCompile(`^:[0-9]+$`)
	geometryRe = regexp.MustCompile(`^[0-9]+x[0-9]+$`)
)

// validDepths are the color depths the X server accepts
var validDepths = map[int]bool{8: true, 16: true, 24: true, 32: true}

// Validate rejects values that would produce a broken server command line.
// Everything is checked before any process is spawned.
func (c *Config) Validate() error {
	if !displayRe.MatchString(c.Session.Display) {
		return errors.Newf(errors.ErrConfigValid,
			"invalid display %q: must be of the form :N", c.Session.Display)
	}
	if !geometryRe.MatchString(c.Session.Geometry) {
		return errors.Newf(errors.ErrConfigValid,
			"invalid geometry %q: must be of the form WIDTHxHEIGHT", c.Session.Geometry)
	}
	if !validDepths[c.Session.Depth] {
		return errors.Newf(errors.ErrConfigValid,
			"invalid depth %d: must be one of 8, 16, 24, 32", c.Session.Depth)
	}
	if c.Server.Binary == "" {
		return errors.New(errors.ErrConfigValid, "server binary must not be empty")
	}
	if _, err := time.ParseDuration(c.Server.StopTimeout); err != nil {
		return errors.Wrapf(err, errors.ErrConfigValid,
			"invalid stop_timeout %q", c.Server.StopTimeout)
	}
	return nil
}
