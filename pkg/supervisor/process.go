package supervisor

import (
	"context"
	"os"
	"time"

	"github.com/shirou/gopsutil/v3/process"

	"github.com/deskctl/deskctl/pkg/session"
)

// liveProcess returns the process for pid if it exists and is running.
func liveProcess(ctx context.Context, pid int32) (*process.Process, bool) {
	p, err := process.NewProcessWithContext(ctx, pid)
	if err != nil {
		return nil, false
	}
	if !isAlive(ctx, p) {
		return nil, false
	}
	return p, true
}

// isAlive reports whether p is running and not a zombie. A killed server
// lingers unreaped when its parent does not wait (orphans under a PID 1
// that never reaps); for supervision purposes such a process is gone.
func isAlive(ctx context.Context, p *process.Process) bool {
	running, err := p.IsRunningWithContext(ctx)
	if err != nil || !running {
		return false
	}
	statuses, err := p.StatusWithContext(ctx)
	if err != nil {
		return true
	}
	for _, st := range statuses {
		if st == process.Zombie {
			return false
		}
	}
	return true
}

// findServerProcess scans the process table for the X server of the given
// session: a process whose argument list contains the display token,
// owned by the session user. The wrapper script daemonizes, so the PID we
// supervise has to be discovered rather than inherited. When several
// processes carry the display argument (server plus clients started with
// it), the oldest one is the server.
func findServerProcess(ctx context.Context, sess session.Session, username string) (*process.Process, error) {
	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return nil, err
	}

	self := int32(os.Getpid())
	var best *process.Process
	var bestCreate int64

	for _, p := range procs {
		if p.Pid == self {
			continue
		}
		if !matchesSession(ctx, p, sess, username) {
			continue
		}
		created, err := p.CreateTimeWithContext(ctx)
		if err != nil {
			created = time.Now().UnixMilli()
		}
		if best == nil || created < bestCreate {
			best = p
			bestCreate = created
		}
	}

	return best, nil
}

// matchesSession reports whether p looks like the session's display server.
func matchesSession(ctx context.Context, p *process.Process, sess session.Session, username string) bool {
	args, err := p.CmdlineSliceWithContext(ctx)
	if err != nil || len(args) == 0 {
		return false
	}

	hasDisplay := false
	for _, arg := range args {
		if arg == sess.Display {
			hasDisplay = true
			break
		}
	}
	if !hasDisplay {
		return false
	}

	if username != "" {
		owner, err := p.UsernameWithContext(ctx)
		if err != nil || owner != username {
			return false
		}
	}
	return isAlive(ctx, p)
}
