package supervisor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deskctl/deskctl/pkg/errors"
	"github.com/deskctl/deskctl/pkg/paths"
	"github.com/deskctl/deskctl/pkg/session"
)

// fakeServer writes a wrapper script that mimics vncserver: it daemonizes
// a long-lived child carrying the display argument and exits, and treats
// -kill as a no-op so stop tests exercise the signal escalation path.
//
// The child's loop keeps the shell from exec'ing the final command, so the
// discovered process retains the display argument in its cmdline.
func fakeServer(t *testing.T) string {
	return fakeServerWith(t, "#!/bin/sh\nwhile true; do sleep 1; done\n")
}

func fakeServerWith(t *testing.T, childScript string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("session supervision is unix-only")
	}

	dir := t.TempDir()
	child := filepath.Join(dir, "xserver")
	require.NoError(t, os.WriteFile(child, []byte(childScript), 0o755))

	wrapper := filepath.Join(dir, "vncserver")
	script := fmt.Sprintf(`#!/bin/sh
if [ "$1" = "-kill" ]; then
    exit 0
fi
%s "$@" </dev/null >/dev/null 2>&1 &
exit 0
`, child)
	require.NoError(t, os.WriteFile(wrapper, []byte(script), 0o755))

	return wrapper
}

func testSupervisor(t *testing.T, display, binary string) *Supervisor {
	t.Helper()
	t.Setenv(paths.EnvRuntimeDir, filepath.Join(t.TempDir(), "run"))
	t.Setenv(paths.EnvStateDir, filepath.Join(t.TempDir(), "state"))

	sess := session.Session{
		Display:      display,
		Geometry:     "640x480",
		Depth:        16,
		Name:         "test-desktop",
		ServerBinary: binary,
	}
	return New(sess, paths.New(), 3*time.Second)
}

func TestStartStatusStopCycle(t *testing.T) {
	sup := testSupervisor(t, ":71", fakeServer(t))
	ctx := context.Background()

	st, err := sup.Start(ctx)
	require.NoError(t, err)
	assert.True(t, st.Running)
	assert.Greater(t, st.PID, int32(0))
	assert.Equal(t, ":71", st.Display)

	// pidfile recorded
	pid, err := readPidfile(sup.paths.PidfilePath(":71"))
	require.NoError(t, err)
	assert.Equal(t, st.PID, pid)

	// second start is refused while the session lives
	_, err = sup.Start(ctx)
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrSessionRunning))

	// status agrees
	st2, err := sup.Status(ctx)
	require.NoError(t, err)
	assert.True(t, st2.Running)
	assert.Equal(t, pid, st2.PID)

	// stop brings it down and clears the pidfile
	require.NoError(t, sup.Stop(ctx))

	_, alive := liveProcess(ctx, pid)
	assert.False(t, alive, "server process should be gone after Stop")

	_, err = readPidfile(sup.paths.PidfilePath(":71"))
	assert.True(t, errors.IsErrorCode(err, errors.ErrNotFound))

	// stopping again is a tolerant no-op
	assert.NoError(t, sup.Stop(ctx))
}

func TestStopKillsTermImmuneServer(t *testing.T) {
	// The child ignores SIGTERM, forcing escalation to SIGKILL. The killed
	// process can linger as an unreaped zombie when nothing waits on it;
	// Stop must still treat it as gone and clear the pidfile.
	sup := testSupervisor(t, ":76",
		fakeServerWith(t, "#!/bin/sh\ntrap '' TERM\nwhile true; do sleep 1; done\n"))
	ctx := context.Background()

	_, err := sup.Start(ctx)
	require.NoError(t, err)

	require.NoError(t, sup.Stop(ctx))

	_, err = readPidfile(sup.paths.PidfilePath(":76"))
	assert.True(t, errors.IsErrorCode(err, errors.ErrNotFound))

	st, err := sup.Status(ctx)
	require.NoError(t, err)
	assert.False(t, st.Running, "a killed but unreaped server must read as stopped")
}

func TestStartMissingBinary(t *testing.T) {
	sup := testSupervisor(t, ":72", "/no/such/server")

	_, err := sup.Start(context.Background())
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrSpawn))
}

func TestStatusNotRunning(t *testing.T) {
	sup := testSupervisor(t, ":73", fakeServer(t))

	st, err := sup.Status(context.Background())
	require.NoError(t, err)
	assert.False(t, st.Running)
	assert.Equal(t, int32(0), st.PID)
	assert.Equal(t, ":73", st.Display)
	assert.Zero(t, st.Uptime())
}

func TestStatusCleansStalePidfile(t *testing.T) {
	sup := testSupervisor(t, ":74", fakeServer(t))

	// A PID far above any real pid_max never names a live process
	pidfile := sup.paths.PidfilePath(":74")
	require.NoError(t, writePidfile(pidfile, 99999999))

	st, err := sup.Status(context.Background())
	require.NoError(t, err)
	assert.False(t, st.Running)

	_, err = readPidfile(pidfile)
	assert.True(t, errors.IsErrorCode(err, errors.ErrNotFound), "stale pidfile should be removed")
}

func TestRestartFromStopped(t *testing.T) {
	sup := testSupervisor(t, ":75", fakeServer(t))
	ctx := context.Background()

	st, err := sup.Restart(ctx)
	require.NoError(t, err)
	assert.True(t, st.Running)

	t.Cleanup(func() { _ = sup.Stop(ctx) })
}
