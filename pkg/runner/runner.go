package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/aretw0/voyage/internal/logging"
	"github.com/aretw0/voyage/pkg/domain"
	"github.com/aretw0/voyage/pkg/ports"
	"github.com/aretw0/voyage/pkg/session"
)

// ExitCommand leaves the loop without answering. A persisted session can be resumed later.
const ExitCommand = "exit"

// ErrInterrupted is returned when a signal or the caller's context stops the loop.
var ErrInterrupted = errors.New("interrupted")

// Runner handles the interactive loop of a planning session using provided IO.
// It uses an IOHandler strategy to abstract the interaction mode (Text vs JSON).
type Runner struct {
	// Handler is the strategy for IO. If nil, a TextHandler over Input/Output is used.
	Handler IOHandler

	// Logger is used for internal debug logging.
	// If nil, a no-op logger is used.
	Logger *slog.Logger

	// Sessions persists each step under SessionID. If nil, sessions are ephemeral.
	Sessions  *session.Manager
	SessionID string

	// PromptTimeout re-asks the pending question after this long. Zero waits forever.
	PromptTimeout time.Duration

	Input          io.Reader
	Output         io.Writer
	Renderer       ContentRenderer
	SystemRenderer ContentRenderer
}

// NewRunner creates a new Runner with default Stdin/Stdout.
func NewRunner(opts ...Option) *Runner {
	r := &Runner{
		Input:  os.Stdin,
		Output: os.Stdout,
		Logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run drives state until it terminates, the input ends, or the user types "exit".
// It returns the last state seen. Answers the engine cannot parse are reported and
// asked again; a collaborator failure renders the terminated session and returns its error.
func (r *Runner) Run(ctx context.Context, engine ports.StatelessEngine, state *domain.SessionState) (*domain.SessionState, error) {
	if state == nil {
		return nil, domain.ErrSessionNotFound
	}
	handler := r.resolveHandler()

	signals := NewSignalManager(ctx)
	defer signals.Stop()

	for {
		ctx := signals.Context()

		// A. Render
		actions, waiting, err := engine.Render(ctx, state)
		if err != nil {
			return state, fmt.Errorf("render error: %w", err)
		}

		// B. Output
		if _, err := handler.Output(ctx, actions); err != nil {
			return state, fmt.Errorf("output error: %w", err)
		}
		if !waiting {
			return state, nil
		}

		// C. Input
		input, err := r.readInput(ctx, handler, signals)
		if err != nil {
			if err == io.EOF {
				return state, nil
			}
			return state, err
		}
		if strings.EqualFold(input, ExitCommand) {
			r.Logger.Debug("runner: leaving session", "session_id", r.SessionID, "stage", state.Stage)
			return state, nil
		}

		// D. Navigate and commit
		next, err := r.navigate(ctx, engine, state, input)
		switch {
		case err == nil:
			state = next
		case domain.IsInputError(err):
			if err := handler.SystemOutput(ctx, fmt.Sprintf("Could not use that answer: %v. Please try again.", err)); err != nil {
				return state, err
			}
		case next != nil && next.Terminated():
			if actions, _, rerr := engine.Render(ctx, next); rerr == nil {
				_, _ = handler.Output(ctx, actions)
			}
			return next, err
		case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
			return state, fmt.Errorf("%w: %w", ErrInterrupted, err)
		default:
			return state, fmt.Errorf("navigation error: %w", err)
		}
	}
}

// navigate applies one answer, through the session manager when one is configured.
func (r *Runner) navigate(ctx context.Context, engine ports.StatelessEngine, state *domain.SessionState, input string) (*domain.SessionState, error) {
	if r.Sessions == nil || r.SessionID == "" {
		return engine.Navigate(ctx, state, input)
	}
	next, err := r.Sessions.Apply(ctx, r.SessionID, func(ctx context.Context, current *domain.SessionState) (*domain.SessionState, error) {
		return engine.Navigate(ctx, current, input)
	})
	if next != nil {
		r.Logger.Debug("state saved", "session_id", r.SessionID, "stage", next.Stage)
	}
	return next, err
}

// readInput waits for one answer. A prompt timeout re-asks; it never answers for the user.
func (r *Runner) readInput(ctx context.Context, handler IOHandler, signals *SignalManager) (string, error) {
	for {
		inputCtx, cancel := r.inputContext(ctx)
		val, err := handler.Input(inputCtx)
		cancel()
		if err == nil {
			return val, nil
		}

		signals.CheckRace()
		if ctx.Err() != nil {
			r.Logger.Debug("runner input: context cancelled", "err", ctx.Err())
			return "", fmt.Errorf("%w: %w", ErrInterrupted, ctx.Err())
		}
		if errors.Is(err, context.DeadlineExceeded) {
			if err := handler.SystemOutput(ctx, "Still waiting for your answer."); err != nil {
				return "", err
			}
			continue
		}
		if err == io.EOF {
			return "", err
		}
		return "", fmt.Errorf("input error: %w", err)
	}
}

func (r *Runner) inputContext(parent context.Context) (context.Context, context.CancelFunc) {
	if r.PromptTimeout > 0 {
		return context.WithTimeout(parent, r.PromptTimeout)
	}
	return parent, func() {}
}

// resolveHandler ensures a valid IOHandler is set.
func (r *Runner) resolveHandler() IOHandler {
	if r.Handler != nil {
		return r.Handler
	}
	// Memoize so repeated Run calls share one input pump.
	r.Handler = NewTextHandler(r.Input, r.Output,
		WithTextHandlerRenderer(r.Renderer),
		WithTextHandlerSystemRenderer(r.SystemRenderer),
	)
	return r.Handler
}
