package supervisor

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/deskctl/deskctl/pkg/errors"
	"github.com/deskctl/deskctl/pkg/paths"
)

// writePidfile records the server PID, creating the runtime directory as
// needed. The write goes through a temp file and rename so a concurrent
// reader never sees a partial PID.
func writePidfile(path string, pid int32) error {
	if err := paths.EnsureDir(filepath.Dir(path)); err != nil {
		return err
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, []byte(strconv.Itoa(int(pid))+"\n"), 0o644); err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite, "failed to write pidfile %s", path)
	}
	if err := os.Rename(tmp, path); err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite, "failed to move pidfile into place")
	}
	return nil
}

// readPidfile returns the recorded PID. Absence is ErrNotFound; garbage
// content is ErrPidfile.
func readPidfile(path string) (int32, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, errors.Newf(errors.ErrNotFound, "no pidfile at %s", path)
		}
		return 0, errors.Wrapf(err, errors.ErrPidfile, "failed to read pidfile %s", path)
	}

	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || pid <= 0 {
		return 0, errors.Newf(errors.ErrPidfile, "pidfile %s does not contain a PID", path)
	}
	return int32(pid), nil
}

// removePidfile deletes the pidfile, tolerating its absence.
func removePidfile(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return errors.Wrapf(err, errors.ErrPidfile, "failed to remove pidfile %s", path)
	}
	return nil
}
