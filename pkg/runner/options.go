package runner

import (
	"io"
	"log/slog"
	"time"

	"github.com/aretw0/voyage/pkg/session"
)

// Option defines a functional option for configuring the Runner.
type Option func(*Runner)

// WithSessions persists every step through the manager under sessionID.
// Without it, sessions are ephemeral.
func WithSessions(manager *session.Manager, sessionID string) Option {
	return func(r *Runner) {
		r.Sessions = manager
		r.SessionID = sessionID
	}
}

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		if logger != nil {
			r.Logger = logger
		}
	}
}

// WithInputHandler configures a custom IOHandler.
func WithInputHandler(handler IOHandler) Option {
	return func(r *Runner) {
		r.Handler = handler
	}
}

// WithIO sets the streams of the default text handler.
func WithIO(in io.Reader, out io.Writer) Option {
	return func(r *Runner) {
		r.Input = in
		r.Output = out
	}
}

// WithRenderer configures the content renderer of the default text handler.
func WithRenderer(renderer ContentRenderer) Option {
	return func(r *Runner) {
		r.Renderer = renderer
	}
}

// WithSystemRenderer styles system messages of the default text handler.
func WithSystemRenderer(renderer ContentRenderer) Option {
	return func(r *Runner) {
		r.SystemRenderer = renderer
	}
}

// WithPromptTimeout re-asks the pending question when no answer arrives in time.
func WithPromptTimeout(d time.Duration) Option {
	return func(r *Runner) {
		r.PromptTimeout = d
	}
}
