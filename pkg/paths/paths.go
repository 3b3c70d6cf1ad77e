// Package paths provides centralized path handling for deskctl.
// It implements XDG Base Directory compliance for per-user state and falls
// back to the conventional system locations when running as root.
package paths

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"

	"github.com/deskctl/deskctl/pkg/errors"
)

// Environment variable names
const (
	// EnvConfigDir overrides the user configuration directory
	EnvConfigDir = "DESKCTL_CONFIG_DIR"

	// EnvStateDir overrides the state directory (markers, logs)
	EnvStateDir = "DESKCTL_STATE_DIR"

	// EnvRuntimeDir overrides the runtime directory (pidfiles)
	EnvRuntimeDir = "DESKCTL_RUNTIME_DIR"
)

// Default directories and files.
// These define deskctl's on-disk layout and are not user-configurable;
// user-facing settings belong in pkg/config.
const (
	// AppDirName is the directory name for deskctl-specific files
	AppDirName = "deskctl"

	// SystemConfigDir is where the system-wide TOML config lives
	SystemConfigDir = "/etc/deskctl"

	// ConfigFileName is the TOML configuration file name
	ConfigFileName = "deskctl.toml"

	// DefaultEnvFile is the init-style environment file sourced by default
	DefaultEnvFile = "/etc/default/deskctl"

	// RootRuntimeDir is the pidfile directory when running as root
	RootRuntimeDir = "/run/deskctl"

	// SetupMarkerName is the one-time setup marker file name
	SetupMarkerName = "setup.done"

	// LogFileName is the name of the log file
	LogFileName = "deskctl.log"
)

// Paths resolves the directories and files deskctl reads and writes.
type Paths struct {
	configDir  string
	stateDir   string
	runtimeDir string
}

// New creates a Paths instance, honoring DESKCTL_* overrides first and the
// XDG base directories otherwise. Root processes keep pidfiles under /run.
func New() *Paths {
	p := &Paths{}

	if dir := os.Getenv(EnvConfigDir); dir != "" {
		p.configDir = ExpandHome(dir)
	} else {
		p.configDir = filepath.Join(xdg.ConfigHome, AppDirName)
	}

	if dir := os.Getenv(EnvStateDir); dir != "" {
		p.stateDir = ExpandHome(dir)
	} else if stateHome := os.Getenv("XDG_STATE_HOME"); stateHome != "" {
		p.stateDir = filepath.Join(stateHome, AppDirName)
	} else {
		home, _ := os.UserHomeDir()
		p.stateDir = filepath.Join(home, ".local", "state", AppDirName)
	}

	if dir := os.Getenv(EnvRuntimeDir); dir != "" {
		p.runtimeDir = ExpandHome(dir)
	} else if os.Geteuid() == 0 {
		p.runtimeDir = RootRuntimeDir
	} else if xdg.RuntimeDir != "" {
		p.runtimeDir = filepath.Join(xdg.RuntimeDir, AppDirName)
	} else {
		p.runtimeDir = filepath.Join(p.stateDir, "run")
	}

	return p
}

// ConfigDir returns the user configuration directory
func (p *Paths) ConfigDir() string {
	return p.configDir
}

// UserConfigFile returns the path of the per-user TOML config file
func (p *Paths) UserConfigFile() string {
	return filepath.Join(p.configDir, ConfigFileName)
}

// SystemConfigFile returns the path of the system-wide TOML config file
func (p *Paths) SystemConfigFile() string {
	return filepath.Join(SystemConfigDir, ConfigFileName)
}

// StateDir returns the state directory for markers and logs
func (p *Paths) StateDir() string {
	return p.stateDir
}

// RuntimeDir returns the directory holding pidfiles
func (p *Paths) RuntimeDir() string {
	return p.runtimeDir
}

// PidfilePath returns the pidfile path for a given X display (e.g. ":1").
// The colon is stripped so the file name stays shell-friendly.
func (p *Paths) PidfilePath(display string) string {
	num := strings.TrimPrefix(display, ":")
	return filepath.Join(p.runtimeDir, fmt.Sprintf("display-%s.pid", num))
}

// SetupMarkerPath returns the path of the one-time setup marker file
func (p *Paths) SetupMarkerPath() string {
	return filepath.Join(p.stateDir, SetupMarkerName)
}

// LogFilePath returns the path to the deskctl log file
func (p *Paths) LogFilePath() string {
	return filepath.Join(p.stateDir, LogFileName)
}

// EnsureDir creates a directory with sane permissions if it does not exist
func EnsureDir(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrapf(err, errors.ErrDirCreate, "failed to create directory %s", dir)
	}
	return nil
}

// ExpandHome expands a leading ~ to the user's home directory
func ExpandHome(path string) string {
	if path == "" || path[0] != '~' {
		return path
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}

	if len(path) == 1 {
		return home
	}
	if path[1] == '/' || path[1] == filepath.Separator {
		return filepath.Join(home, path[2:])
	}

	// ~someuser is left alone
	return path
}
