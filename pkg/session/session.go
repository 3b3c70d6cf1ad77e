// Package session models a per-user remote-desktop session and builds the
// command lines for the desktop server, mirroring the classic init-script
// invocation:
//
//	vncserver :1 -geometry 1024x768 -depth 16 -name NAME
//	vncserver -kill :1
package session

import (
	"strconv"

	"github.com/deskctl/deskctl/pkg/config"
)

// Session describes one supervised desktop session.
type Session struct {
	// User is the system account owning the session. Empty means the
	// invoking user.
	User string

	// Display is the X display, ":N"
	Display string

	Geometry string
	Depth    int

	// Name is the desktop session name advertised by the server
	Name string

	// ServerBinary is the desktop server executable
	ServerBinary string
}

// FromConfig builds a Session from the effective configuration.
func FromConfig(cfg *config.Config) Session {
	return Session{
		User:         cfg.Session.User,
		Display:      cfg.Session.Display,
		Geometry:     cfg.Session.Geometry,
		Depth:        cfg.Session.Depth,
		Name:         cfg.Session.Name,
		ServerBinary: cfg.Server.Binary,
	}
}

// StartCommand returns the binary and arguments that launch the server.
func (s Session) StartCommand() (string, []string) {
	args := []string{
		s.Display,
		"-geometry", s.Geometry,
		"-depth", strconv.Itoa(s.Depth),
	}
	if s.Name != "" {
		args = append(args, "-name", s.Name)
	}
	return s.ServerBinary, args
}

// StopCommand returns the binary and arguments that ask the server to exit.
func (s Session) StopCommand() (string, []string) {
	return s.ServerBinary, []string{"-kill", s.Display}
}
