package runner

import (
	"context"

	"github.com/aretw0/voyage/pkg/domain"
	"github.com/aretw0/voyage/pkg/ports"
	"github.com/aretw0/voyage/pkg/session"
)

// RichResponse combines state and rendering actions for rich clients (Web, MCP, etc).
type RichResponse struct {
	State   *domain.SessionState   `json:"state"`
	Actions []domain.ActionRequest `json:"actions,omitempty"`
	Waiting bool                   `json:"waiting"`

	// Diff is set by NavigateAndRender when the answer changed the session.
	Diff *domain.SessionDiff `json:"diff,omitempty"`
}

// StartAndRender creates a session (or loads it when the ID exists) and renders it.
// The text is sanitized first, like any other answer.
func StartAndRender(ctx context.Context, engine ports.StatelessEngine, sessions *session.Manager, sessionID, text string) (*RichResponse, bool, error) {
	clean, err := SanitizeInput(text)
	if err != nil {
		return nil, false, err
	}
	state, created, err := sessions.LoadOrStart(ctx, sessionID, func(ctx context.Context) (*domain.SessionState, error) {
		return engine.Start(ctx, sessionID, clean)
	})
	if state == nil {
		return nil, created, err
	}
	resp, rerr := Respond(ctx, engine, state)
	if err == nil {
		err = rerr
	}
	return resp, created, err
}

// NavigateAndRender applies one answer under the session lock and renders the result.
// When the engine terminates the session, the terminated state is returned with the error.
func NavigateAndRender(ctx context.Context, engine ports.StatelessEngine, sessions *session.Manager, sessionID, input string) (*RichResponse, error) {
	clean, err := SanitizeInput(input)
	if err != nil {
		return nil, err
	}
	var prev *domain.SessionState
	state, err := sessions.Apply(ctx, sessionID, func(ctx context.Context, current *domain.SessionState) (*domain.SessionState, error) {
		prev = current.Clone()
		return engine.Navigate(ctx, current, clean)
	})
	if state == nil {
		return nil, err
	}
	resp, rerr := Respond(ctx, engine, state)
	if err == nil {
		err = rerr
	}
	if resp != nil && prev != nil {
		resp.Diff = domain.Diff(prev, state)
	}
	return resp, err
}

// Respond renders a state without advancing it.
func Respond(ctx context.Context, engine ports.StatelessEngine, state *domain.SessionState) (*RichResponse, error) {
	actions, waiting, err := engine.Render(ctx, state)
	if err != nil {
		// The state is still returned so the client can recover.
		return &RichResponse{State: state, Waiting: waiting}, err
	}
	return &RichResponse{State: state, Actions: actions, Waiting: waiting}, nil
}
