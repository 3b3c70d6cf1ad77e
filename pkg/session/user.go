package session

import (
	"os"
	"os/user"
	"strconv"
	"syscall"

	"github.com/deskctl/deskctl/pkg/errors"
)

// Identity is the resolved system account a session runs as.
type Identity struct {
	Username string
	Home     string

	// Credential is non-nil when the process must drop privileges to run
	// commands as the session user (root invoking for someone else).
	Credential *syscall.Credential
}

// ResolveIdentity looks up the account the session should run as.
//
// The historical init script ran `su <user> -c ...`; the in-process
// equivalent is spawning with a syscall.Credential. That only works when
// deskctl itself is root, so a non-root invocation for another user is
// rejected rather than silently running as the wrong account.
func (s Session) ResolveIdentity() (*Identity, error) {
	if s.User == "" {
		u, err := user.Current()
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrUserLookup, "failed to resolve current user")
		}
		return &Identity{Username: u.Username, Home: u.HomeDir}, nil
	}

	u, err := user.Lookup(s.User)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrUserLookup, "unknown user %q", s.User)
	}

	if os.Geteuid() != 0 {
		current, cerr := user.Current()
		if cerr == nil && current.Uid == u.Uid {
			return &Identity{Username: u.Username, Home: u.HomeDir}, nil
		}
		return nil, errors.Newf(errors.ErrPermission,
			"must be root to manage sessions for user %q", s.User)
	}

	uid, err := strconv.ParseUint(u.Uid, 10, 32)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrUserLookup, "non-numeric uid %q", u.Uid)
	}
	gid, err := strconv.ParseUint(u.Gid, 10, 32)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrUserLookup, "non-numeric gid %q", u.Gid)
	}

	return &Identity{
		Username:   u.Username,
		Home:       u.HomeDir,
		Credential: &syscall.Credential{Uid: uint32(uid), Gid: uint32(gid)},
	}, nil
}

// Environ builds the minimal child environment for the session user.
// `su -` starts from a clean slate; this mirrors that for the variables
// the desktop server actually consults.
func (i *Identity) Environ() []string {
	path := os.Getenv("PATH")
	if path == "" {
		path = "/usr/local/bin:/usr/bin:/bin"
	}
	return []string{
		"HOME=" + i.Home,
		"USER=" + i.Username,
		"LOGNAME=" + i.Username,
		"PATH=" + path,
	}
}
