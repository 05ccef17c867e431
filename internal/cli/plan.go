package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/aretw0/voyage"
	"github.com/aretw0/voyage/internal/presentation/tui"
	"github.com/aretw0/voyage/pkg/domain"
	"github.com/aretw0/voyage/pkg/runner"
	"github.com/muesli/termenv"
)

// PlanOptions configures an interactive planning session.
type PlanOptions struct {
	Setup

	// SessionID resumes (or creates) a persisted session. Empty mints a new ID.
	SessionID string
	// Fresh discards any stored state for SessionID first.
	Fresh bool
	// JSON switches to JSON-lines input and output.
	JSON bool
	// Rich renders markdown with glamour and colors system messages.
	Rich bool
	// Timeout re-asks the pending question after this long. Zero waits forever.
	Timeout time.Duration
	// Text is the initial request, used only when the session is created.
	Text string

	In  io.Reader
	Out io.Writer
}

// RunPlan runs one planning session until it terminates, the input ends or the user exits.
func RunPlan(ctx context.Context, opts PlanOptions) error {
	planner, logger, err := NewPlanner(opts.Setup)
	if err != nil {
		return err
	}
	defer planner.Close()

	return runPlan(ctx, planner, opts, logger)
}

func runPlan(ctx context.Context, planner *voyage.Planner, opts PlanOptions, logger *slog.Logger) error {
	quiet := opts.JSON
	sessionID := opts.SessionID
	if sessionID == "" {
		sessionID = voyage.NewSessionID()
	}
	sessions := planner.Sessions()

	if opts.Fresh {
		if err := sessions.Delete(ctx, sessionID); err != nil {
			return fmt.Errorf("failed to reset session: %w", err)
		}
	}

	profile := termenv.Ascii
	if opts.Rich {
		profile = termenv.ColorProfile()
	}
	if !quiet {
		tui.PrintBanner(opts.Out, profile)
	}

	state, created, err := sessions.LoadOrStart(ctx, sessionID, func(ctx context.Context) (*domain.SessionState, error) {
		return planner.Start(ctx, sessionID, opts.Text)
	})
	if state == nil {
		return fmt.Errorf("failed to init session: %w", err)
	}
	startErr := err
	logSessionStatus(opts.Out, logger, state, created, quiet)

	runnerOpts := []runner.Option{
		runner.WithLogger(logger),
		runner.WithSessions(sessions, sessionID),
		runner.WithPromptTimeout(opts.Timeout),
	}
	switch {
	case opts.JSON:
		runnerOpts = append(runnerOpts, runner.WithInputHandler(runner.NewJSONHandler(opts.In, opts.Out)))
	case opts.Rich:
		render, err := tui.NewRenderer()
		if err != nil {
			return fmt.Errorf("failed to init renderer: %w", err)
		}
		runnerOpts = append(runnerOpts,
			runner.WithIO(opts.In, opts.Out),
			runner.WithRenderer(render),
			runner.WithSystemRenderer(tui.NewSystemRenderer(profile)),
		)
	default:
		runnerOpts = append(runnerOpts, runner.WithIO(opts.In, opts.Out))
	}

	final, runErr := runner.NewRunner(runnerOpts...).Run(ctx, planner, state)
	if runErr == nil {
		runErr = startErr
	}
	logCompletion(opts.Out, final, runErr, quiet)
	return handleExecutionError(runErr)
}
