package setup

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/deskctl/deskctl/pkg/errors"
	"github.com/deskctl/deskctl/pkg/paths"
)

// Outcome records how the one-time setup prompt was answered.
type Outcome string

const (
	// OutcomeAccepted means the setup script ran successfully
	OutcomeAccepted Outcome = "accepted"

	// OutcomeDeclined means the user said no; we do not ask again
	OutcomeDeclined Outcome = "declined"
)

// Marker is the on-disk record that the prompt has been answered. The
// original login snippet touched an empty flag file; an empty marker is
// therefore still honored as "answered".
type Marker struct {
	Outcome Outcome
	Time    time.Time
}

// ReadMarker loads the marker, returning (nil, nil) when no marker exists.
func ReadMarker(path string) (*Marker, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, errors.ErrMarker, "failed to read marker %s", path)
	}

	m := &Marker{}
	fields := strings.Fields(string(data))
	if len(fields) >= 1 {
		m.Outcome = Outcome(fields[0])
	}
	if len(fields) >= 2 {
		if ts, err := time.Parse(time.RFC3339, fields[1]); err == nil {
			m.Time = ts
		}
	}
	return m, nil
}

// WriteMarker records an outcome with the current time.
func WriteMarker(path string, outcome Outcome) error {
	if err := paths.EnsureDir(filepath.Dir(path)); err != nil {
		return err
	}

	line := string(outcome) + " " + time.Now().UTC().Format(time.RFC3339) + "\n"
	if err := os.WriteFile(path, []byte(line), 0o644); err != nil {
		return errors.Wrapf(err, errors.ErrMarker, "failed to write marker %s", path)
	}
	return nil
}
