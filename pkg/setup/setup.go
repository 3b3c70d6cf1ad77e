// Package setup implements the one-time, interactive setup flow for the
// remote-desktop add-on: show a notice, ask once, run the privileged setup
// script on consent, and record the answer in a marker file so the user is
// never asked twice.
package setup

import (
	"context"
	_ "embed"
	"fmt"
	"io"

	"github.com/pterm/pterm"

	"github.com/deskctl/deskctl/pkg/display"
	"github.com/deskctl/deskctl/pkg/logging"
)

//go:embed notice.md
var noticeMarkdown string

// RunState describes what the setup flow did.
type RunState string

const (
	// StateAlreadyDone means a marker existed and --force was not given
	StateAlreadyDone RunState = "already-done"

	// StateSkipped means stdin was not a terminal; nothing was recorded
	// so a future interactive session will still be asked
	StateSkipped RunState = "skipped"

	// StateAccepted means the script ran and succeeded
	StateAccepted RunState = "accepted"

	// StateDeclined means the user said no; recorded so we stop asking
	StateDeclined RunState = "declined"
)

// Result reports the outcome of one setup invocation.
type Result struct {
	State RunState

	// Prior is the pre-existing marker when State is StateAlreadyDone
	Prior *Marker
}

// Prompter asks the user a yes/no question.
type Prompter interface {
	Confirm(message string) (bool, error)
}

// TerminalPrompter prompts on the controlling terminal.
type TerminalPrompter struct{}

// Confirm shows an interactive yes/no prompt.
func (TerminalPrompter) Confirm(message string) (bool, error) {
	return pterm.DefaultInteractiveConfirm.Show(message)
}

// Options configures a setup run.
type Options struct {
	// Script is the privileged setup script to execute on consent
	Script string

	// MarkerPath is where the answer is recorded
	MarkerPath string

	// Force re-asks even when a marker exists
	Force bool

	// AssumeYes runs the script without prompting (unattended provisioning)
	AssumeYes bool

	// Interactive tells whether stdin is a terminal; the caller decides
	// so the flow itself stays testable
	Interactive bool

	// Out receives the rendered notice; defaults to io.Discard when nil
	Out io.Writer

	// Prompter defaults to TerminalPrompter
	Prompter Prompter

	// Runner defaults to NewScriptRunner()
	Runner *ScriptRunner
}

// Run drives the one-time setup flow.
func Run(ctx context.Context, opts Options) (*Result, error) {
	logger := logging.GetLogger("setup")

	if opts.Out == nil {
		opts.Out = io.Discard
	}
	if opts.Prompter == nil {
		opts.Prompter = TerminalPrompter{}
	}
	if opts.Runner == nil {
		opts.Runner = NewScriptRunner()
	}

	marker, err := ReadMarker(opts.MarkerPath)
	if err != nil {
		return nil, err
	}
	if marker != nil && !opts.Force {
		logger.Debug().Str("outcome", string(marker.Outcome)).Msg("setup already answered")
		return &Result{State: StateAlreadyDone, Prior: marker}, nil
	}

	// Never block a non-interactive session on a prompt. No marker is
	// written either: the next interactive login should still ask.
	if !opts.AssumeYes && !opts.Interactive {
		logger.Debug().Msg("non-interactive session, skipping setup prompt")
		return &Result{State: StateSkipped}, nil
	}

	fmt.Fprint(opts.Out, display.RenderMarkdown(noticeMarkdown))

	confirmed := true
	if !opts.AssumeYes {
		confirmed, err = opts.Prompter.Confirm("Run the remote desktop add-on setup now?")
		if err != nil {
			return nil, err
		}
	}

	if !confirmed {
		if err := WriteMarker(opts.MarkerPath, OutcomeDeclined); err != nil {
			return nil, err
		}
		logger.Info().Msg("setup declined")
		return &Result{State: StateDeclined}, nil
	}

	// A failed script leaves no marker so the prompt can re-offer later.
	if err := opts.Runner.Run(ctx, opts.Script); err != nil {
		return nil, err
	}

	if err := WriteMarker(opts.MarkerPath, OutcomeAccepted); err != nil {
		return nil, err
	}
	logger.Info().Str("script", opts.Script).Msg("setup completed")
	return &Result{State: StateAccepted}, nil
}
