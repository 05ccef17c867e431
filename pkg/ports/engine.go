package ports

import (
	"context"

	"github.com/aretw0/voyage/pkg/domain"
)

// StatelessEngine is a planning core that keeps no session state of its own.
// Adapters (HTTP, MCP, runner) load a state, call it, and persist the result.
type StatelessEngine interface {
	// Start creates a session and runs it up to the first suspend point.
	Start(ctx context.Context, sessionID string, text string) (*domain.SessionState, error)

	// Render calculates the presentation for a state without advancing it.
	// The boolean reports whether the session is waiting for input.
	Render(ctx context.Context, state *domain.SessionState) ([]domain.ActionRequest, bool, error)

	// Navigate applies a textual answer to the pending input and returns the new state.
	Navigate(ctx context.Context, state *domain.SessionState, input string) (*domain.SessionState, error)
}
