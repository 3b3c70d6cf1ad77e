package setup

import (
	"bytes"
	"context"
	"io"
	"os"
	"os/exec"
	"time"

	"github.com/rs/zerolog"

	"github.com/deskctl/deskctl/pkg/errors"
	"github.com/deskctl/deskctl/pkg/logging"
)

// scriptTimeout bounds a runaway setup script
const scriptTimeout = 5 * time.Minute

// ScriptRunner executes the privileged setup script, echoing its output to
// the user while keeping a copy for error reporting.
type ScriptRunner struct {
	logger  zerolog.Logger
	timeout time.Duration

	// Stdout/Stderr default to the process streams; tests redirect them
	Stdout io.Writer
	Stderr io.Writer
}

// NewScriptRunner creates a runner with the default timeout.
func NewScriptRunner() *ScriptRunner {
	return &ScriptRunner{
		logger:  logging.GetLogger("setup.runner"),
		timeout: scriptTimeout,
		Stdout:  os.Stdout,
		Stderr:  os.Stderr,
	}
}

// Run executes the script and waits for it to finish.
func (r *ScriptRunner) Run(ctx context.Context, script string, args ...string) error {
	if script == "" {
		return errors.New(errors.ErrInvalidInput, "no setup script configured")
	}
	if _, err := os.Stat(script); err != nil {
		return errors.Wrapf(err, errors.ErrNotFound, "setup script %s not found", script)
	}

	r.logger.Info().Str("script", script).Strs("args", args).Msg("running setup script")

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, script, args...)
	cmd.Env = os.Environ()

	var stdout, stderr bytes.Buffer
	cmd.Stdout = io.MultiWriter(r.Stdout, &stdout)
	cmd.Stderr = io.MultiWriter(r.Stderr, &stderr)

	if err := cmd.Run(); err != nil {
		r.logger.Error().
			Err(err).
			Str("script", script).
			Str("stderr", stderr.String()).
			Msg("setup script failed")
		return errors.Wrapf(err, errors.ErrScriptExecute,
			"setup script %s failed", script).
			WithDetail("stderr", stderr.String())
	}

	r.logger.Info().Str("script", script).Msg("setup script completed")
	return nil
}
