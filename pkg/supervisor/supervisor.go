// Package supervisor manages the lifecycle of a remote-desktop server
// process: spawn as the session user, track it through a pidfile, and take
// it down with bounded escalation. It replaces the historical init-script
// wrapper around vncserver.
package supervisor

import (
	"bytes"
	"context"
	"os/exec"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/process"
	"golang.org/x/sys/unix"

	"github.com/deskctl/deskctl/pkg/errors"
	"github.com/deskctl/deskctl/pkg/logging"
	"github.com/deskctl/deskctl/pkg/paths"
	"github.com/deskctl/deskctl/pkg/session"
)

// discoveryTimeout bounds how long Start waits for the daemonized server
// to appear in the process table.
const discoveryTimeout = 5 * time.Second

// pollInterval is the liveness polling cadence during start and stop.
const pollInterval = 100 * time.Millisecond

// Status is a point-in-time view of a session's server process.
type Status struct {
	Display   string    `json:"display" yaml:"display"`
	Name      string    `json:"name,omitempty" yaml:"name,omitempty"`
	User      string    `json:"user,omitempty" yaml:"user,omitempty"`
	Running   bool      `json:"running" yaml:"running"`
	PID       int32     `json:"pid,omitempty" yaml:"pid,omitempty"`
	StartedAt time.Time `json:"started_at,omitempty" yaml:"started_at,omitempty"`
	CPUPct    float64   `json:"cpu_percent,omitempty" yaml:"cpu_percent,omitempty"`
	RSSBytes  uint64    `json:"rss_bytes,omitempty" yaml:"rss_bytes,omitempty"`
}

// Uptime returns how long the server has been running, zero when stopped.
func (s *Status) Uptime() time.Duration {
	if !s.Running || s.StartedAt.IsZero() {
		return 0
	}
	return time.Since(s.StartedAt).Round(time.Second)
}

// Supervisor drives one session's server process.
type Supervisor struct {
	sess        session.Session
	paths       *paths.Paths
	stopTimeout time.Duration
	logger      zerolog.Logger
}

// New creates a Supervisor for the given session.
func New(sess session.Session, p *paths.Paths, stopTimeout time.Duration) *Supervisor {
	return &Supervisor{
		sess:        sess,
		paths:       p,
		stopTimeout: stopTimeout,
		logger:      logging.GetLogger("supervisor"),
	}
}

// Start launches the desktop server for the session. It refuses to start
// while the pidfile names a live process and cleans up stale pidfiles.
func (s *Supervisor) Start(ctx context.Context) (*Status, error) {
	id, err := s.sess.ResolveIdentity()
	if err != nil {
		return nil, err
	}

	if err := unix.Access(s.sess.ServerBinary, unix.X_OK); err != nil {
		return nil, errors.Wrapf(err, errors.ErrSpawn,
			"server binary %s is not executable", s.sess.ServerBinary)
	}

	pidfile := s.paths.PidfilePath(s.sess.Display)
	if pid, err := readPidfile(pidfile); err == nil {
		if _, alive := liveProcess(ctx, pid); alive {
			return nil, errors.Newf(errors.ErrSessionRunning,
				"session on display %s already running (pid %d)", s.sess.Display, pid).
				WithDetail("pid", pid)
		}
		s.logger.Info().Int32("pid", pid).Str("pidfile", pidfile).Msg("removing stale pidfile")
		if err := removePidfile(pidfile); err != nil {
			return nil, err
		}
	}

	bin, args := s.sess.StartCommand()
	if err := s.runAs(ctx, id, bin, args); err != nil {
		return nil, err
	}

	// The wrapper daemonizes; find the actual server it left behind.
	proc, err := s.awaitServer(ctx, id.Username)
	if err != nil {
		return nil, err
	}

	if err := writePidfile(pidfile, proc.Pid); err != nil {
		return nil, err
	}

	st := s.statusOf(ctx, proc)
	s.logger.Info().
		Str("display", s.sess.Display).
		Str("user", id.Username).
		Int32("pid", proc.Pid).
		Msg("session started")
	return st, nil
}

// Stop takes the session down. A session that is not running is a no-op
// success, matching init-script semantics.
func (s *Supervisor) Stop(ctx context.Context) error {
	id, err := s.sess.ResolveIdentity()
	if err != nil {
		return err
	}

	pidfile := s.paths.PidfilePath(s.sess.Display)
	proc := s.currentProcess(ctx, pidfile, id.Username)
	if proc == nil {
		s.logger.Debug().Str("display", s.sess.Display).Msg("session not running, nothing to stop")
		return removePidfile(pidfile)
	}

	// Ask nicely first, the way the init script did.
	bin, args := s.sess.StopCommand()
	if err := s.runAs(ctx, id, bin, args); err != nil {
		s.logger.Warn().Err(err).Msg("kill command failed, falling back to signals")
	}

	if err := s.awaitExit(ctx, proc); err != nil {
		return err
	}

	if err := removePidfile(pidfile); err != nil {
		return err
	}
	s.logger.Info().Str("display", s.sess.Display).Int32("pid", proc.Pid).Msg("session stopped")
	return nil
}

// Restart stops the session if running, then starts it.
func (s *Supervisor) Restart(ctx context.Context) (*Status, error) {
	if err := s.Stop(ctx); err != nil {
		return nil, err
	}
	return s.Start(ctx)
}

// Status reports the session's current state. Stale pidfiles are removed.
func (s *Supervisor) Status(ctx context.Context) (*Status, error) {
	id, err := s.sess.ResolveIdentity()
	if err != nil {
		return nil, err
	}

	pidfile := s.paths.PidfilePath(s.sess.Display)
	if proc := s.currentProcess(ctx, pidfile, id.Username); proc != nil {
		return s.statusOf(ctx, proc), nil
	}

	return &Status{
		Display: s.sess.Display,
		Name:    s.sess.Name,
		User:    id.Username,
		Running: false,
	}, nil
}

// currentProcess resolves the live server process via the pidfile, falling
// back to a process-table scan. Stale pidfiles are cleaned up on the way.
func (s *Supervisor) currentProcess(ctx context.Context, pidfile, username string) *process.Process {
	if pid, err := readPidfile(pidfile); err == nil {
		if proc, alive := liveProcess(ctx, pid); alive {
			return proc
		}
		s.logger.Debug().Int32("pid", pid).Msg("pidfile is stale")
		_ = removePidfile(pidfile)
	}

	proc, err := findServerProcess(ctx, s.sess, username)
	if err != nil {
		s.logger.Warn().Err(err).Msg("process scan failed")
		return nil
	}
	return proc
}

// awaitServer polls until the daemonized server shows up.
func (s *Supervisor) awaitServer(ctx context.Context, username string) (*process.Process, error) {
	deadline := time.Now().Add(discoveryTimeout)
	for {
		proc, err := findServerProcess(ctx, s.sess, username)
		if err == nil && proc != nil {
			return proc, nil
		}
		if time.Now().After(deadline) {
			return nil, errors.Newf(errors.ErrSpawn,
				"server for display %s did not appear within %s", s.sess.Display, discoveryTimeout)
		}
		select {
		case <-ctx.Done():
			return nil, errors.Wrap(ctx.Err(), errors.ErrSpawn, "interrupted while waiting for server")
		case <-time.After(pollInterval):
		}
	}
}

// awaitExit waits for the process to die, escalating SIGTERM at half the
// timeout and SIGKILL at the end.
func (s *Supervisor) awaitExit(ctx context.Context, proc *process.Process) error {
	deadline := time.Now().Add(s.stopTimeout)
	termAt := time.Now().Add(s.stopTimeout / 2)
	termSent := false

	for {
		if !isAlive(ctx, proc) {
			return nil
		}

		now := time.Now()
		switch {
		case now.After(deadline):
			s.logger.Warn().Int32("pid", proc.Pid).Msg("escalating to SIGKILL")
			_ = proc.SendSignalWithContext(ctx, unix.SIGKILL)
			time.Sleep(pollInterval)
			if isAlive(ctx, proc) {
				return errors.Newf(errors.ErrStop, "process %d survived SIGKILL", proc.Pid)
			}
			return nil
		case now.After(termAt) && !termSent:
			s.logger.Debug().Int32("pid", proc.Pid).Msg("sending SIGTERM")
			_ = proc.SendSignalWithContext(ctx, unix.SIGTERM)
			termSent = true
		}

		select {
		case <-ctx.Done():
			return errors.Wrap(ctx.Err(), errors.ErrStop, "interrupted while stopping")
		case <-time.After(pollInterval):
		}
	}
}

// runAs executes a command as the session user with a clean environment,
// in its own session group. Output is captured for error reporting.
func (s *Supervisor) runAs(ctx context.Context, id *session.Identity, bin string, args []string) error {
	logging.LogCommand(bin, args)

	cmd := exec.CommandContext(ctx, bin, args...)
	cmd.Env = id.Environ()
	cmd.Dir = id.Home

	attr := &syscall.SysProcAttr{Setsid: true}
	if id.Credential != nil {
		attr.Credential = id.Credential
	}
	cmd.SysProcAttr = attr

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return errors.Wrapf(err, errors.ErrSpawn, "%s failed", bin).
			WithDetail("stdout", stdout.String()).
			WithDetail("stderr", stderr.String())
	}

	s.logger.Debug().Str("command", bin).Msg("command completed")
	return nil
}

// statusOf fills a Status from a live process. Metric errors degrade to
// zero values rather than failing the whole status call.
func (s *Supervisor) statusOf(ctx context.Context, proc *process.Process) *Status {
	st := &Status{
		Display: s.sess.Display,
		Name:    s.sess.Name,
		Running: true,
		PID:     proc.Pid,
	}

	if owner, err := proc.UsernameWithContext(ctx); err == nil {
		st.User = owner
	}
	if created, err := proc.CreateTimeWithContext(ctx); err == nil {
		st.StartedAt = time.UnixMilli(created)
	}
	if cpu, err := proc.CPUPercentWithContext(ctx); err == nil {
		st.CPUPct = cpu
	}
	if mem, err := proc.MemoryInfoWithContext(ctx); err == nil && mem != nil {
		st.RSSBytes = mem.RSS
	}
	return st
}
